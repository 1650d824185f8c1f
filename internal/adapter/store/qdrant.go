package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// QdrantIndex is a minimal REST client to a Qdrant server. It assumes
// cosine distance and creates the collection on first use if missing.
type QdrantIndex struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
	seq        atomic.Uint64
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

func NewQdrantIndex(cfg QdrantConfig) (*QdrantIndex, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	q := &QdrantIndex{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     cfg.Dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 when the collection already exists with the same schema.
	if err := q.putJSON(fmt.Sprintf("%s/collections/%s", q.url, q.collection), body); err != nil {
		return nil, err
	}
	if n, err := q.Count(); err == nil {
		q.seq.Store(uint64(n))
	}
	return q, nil
}

func (q *QdrantIndex) Upsert(entries []port.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		points[i] = map[string]any{
			"id":     q.seq.Add(1),
			"vector": e.Vector,
			"payload": map[string]any{
				"source": e.Chunk.Source,
				"offset": e.Chunk.StartOffset,
				"text":   e.Chunk.Text,
			},
		}
	}
	body := map[string]any{"points": points}
	return q.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection), body)
}

func (q *QdrantIndex) Search(vector []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := q.postJSON(fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := domain.Chunk{}
		if v, ok := r.Payload["source"].(string); ok {
			chunk.Source = v
		}
		if v, ok := r.Payload["offset"].(float64); ok {
			chunk.StartOffset = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			chunk.Text = v
		}
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: r.Score})
	}
	return results, nil
}

func (q *QdrantIndex) Count() (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	req := map[string]any{"exact": true}
	if err := q.postJSON(fmt.Sprintf("%s/collections/%s/points/count", q.url, q.collection), req, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (q *QdrantIndex) Available() bool {
	if q == nil || q.client == nil {
		return false
	}
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/collections/%s", q.url, q.collection), nil)
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300
}

func (q *QdrantIndex) Clear() error {
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", q.url, q.collection), nil)
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	q.seq.Store(0)
	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": "Cosine",
		},
	}
	return q.putJSON(fmt.Sprintf("%s/collections/%s", q.url, q.collection), body)
}

func (q *QdrantIndex) Close() error { return nil }

func (q *QdrantIndex) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (q *QdrantIndex) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
