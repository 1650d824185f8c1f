package port

import "context"

// ObjectStore lists and downloads raw source files, keyed by path.
type ObjectStore interface {
	// List returns object keys under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Download writes the object to localPath.
	Download(ctx context.Context, key, localPath string) error
}

// Extractor turns a downloaded file into plain text. An empty string
// means "no usable text", which is not an error.
type Extractor interface {
	Extract(path string) (string, error)
}
