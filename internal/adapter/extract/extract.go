// Package extract converts downloaded files into plain text for chunking.
package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// FileExtractor dispatches on the file extension. Plain text formats
// are read as-is, CSV rows are flattened to lines, PDFs go through
// pdfcpu. An unsupported extension yields an empty string, not an
// error, so callers can skip the file and keep ingesting.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor { return &FileExtractor{} }

func (e *FileExtractor) Extract(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	case ".csv":
		return extractCSV(path)
	case ".pdf":
		return extractPDF(path)
	default:
		return "", nil
	}
}

func extractCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv %s: %w", path, err)
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(strings.Join(row, ", "))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractPDF(path string) (string, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", fmt.Errorf("read pdf %s: %w", path, err)
	}
	pageCount := pdfCtx.PageCount

	outDir, err := os.MkdirTemp("", "docqa-pdf-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("extract pdf %s: %w", path, err)
	}

	// pdfcpu writes one content file per page; stitch them back in order.
	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err != nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text, ok := pageTexts[pageNum]
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
