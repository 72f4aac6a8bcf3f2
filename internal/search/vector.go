package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/marcusholm/graphbench/internal/config"
)

// bulkBatchSize bounds the number of documents per _bulk request. OpenSearch
// rejects oversized request bodies long before this limit matters for
// benchmark-scale corpora.
const bulkBatchSize = 500

// Document is one stored chunk with its embedding.
type Document struct {
	ID       string                 `json:"-"`
	Text     string                 `json:"text"`
	Vector   []float32              `json:"vector"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Hit is one search result.
type Hit struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]interface{}
}

// BulkStore indexes the documents in batches. Every document is validated
// up front: a single bad vector fails the whole call before anything is
// written, so a partial load never silently passes.
func (c *Client) BulkStore(ctx context.Context, docs []Document) error {
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document %d has no id", i)
		}
		if len(doc.Vector) != c.cfg.Dimension {
			return fmt.Errorf("document %s has vector dimension %d, want %d", doc.ID, len(doc.Vector), c.cfg.Dimension)
		}
	}

	for start := 0; start < len(docs); start += bulkBatchSize {
		end := start + bulkBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := c.storeBatch(ctx, docs[start:end]); err != nil {
			return fmt.Errorf("storing documents %d-%d: %w", start, end-1, err)
		}
		c.logf("stored %d/%d documents in %s", end, len(docs), c.cfg.Index)
	}
	return nil
}

func (c *Client) storeBatch(ctx context.Context, docs []Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		action := map[string]interface{}{
			"index": map[string]interface{}{"_index": c.cfg.Index, "_id": doc.ID},
		}
		if err := enc.Encode(action); err != nil {
			return err
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}

	var data []byte
	err := c.call(ctx, func() error {
		var err error
		data, err = c.do(ctx, http.MethodPost, "/_bulk", "application/x-ndjson", buf.Bytes())
		return err
	})
	if err != nil {
		return err
	}

	// The bulk endpoint reports per-item failures inside a 200.
	var result struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string `json:"_id"`
			Error *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("decoding bulk response: %w", err)
	}
	if result.Errors {
		for _, item := range result.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("indexing document %s: %s: %s", op.ID, op.Error.Type, op.Error.Reason)
				}
			}
		}
		return fmt.Errorf("bulk indexing reported errors")
	}
	return nil
}

// Search returns the k nearest documents to the query vector, using the
// configured query mode. Hits below the configured minimum score are
// dropped.
func (c *Client) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	if len(vector) != c.cfg.Dimension {
		return nil, fmt.Errorf("query vector dimension %d, want %d", len(vector), c.cfg.Dimension)
	}

	var query map[string]interface{}
	switch c.cfg.SearchType {
	case config.SearchScriptScore:
		query = scriptScoreQuery(vector)
	default:
		query = knnQuery(vector, k)
	}

	req := map[string]interface{}{
		"size":  k,
		"query": query,
	}
	if c.cfg.MinScore > 0 {
		req["min_score"] = c.cfg.MinScore
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = c.call(ctx, func() error {
		var err error
		data, err = c.do(ctx, http.MethodPost, "/"+c.cfg.Index+"/_search", "application/json", body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", c.cfg.Index, err)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				ID     string   `json:"_id"`
				Score  float64  `json:"_score"`
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits.Hits))
	for _, h := range result.Hits.Hits {
		hits = append(hits, Hit{
			ID:       h.ID,
			Score:    h.Score,
			Text:     h.Source.Text,
			Metadata: h.Source.Metadata,
		})
	}
	return hits, nil
}

func knnQuery(vector []float32, k int) map[string]interface{} {
	return map[string]interface{}{
		"knn": map[string]interface{}{
			"vector": map[string]interface{}{
				"vector": vector,
				"k":      k,
			},
		},
	}
}

// scriptScoreQuery runs an exact scan instead of the hnsw graph. Slower,
// but exact; used to sanity-check approximate recall.
func scriptScoreQuery(vector []float32) map[string]interface{} {
	return map[string]interface{}{
		"script_score": map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"script": map[string]interface{}{
				"source": "knn_score",
				"lang":   "knn",
				"params": map[string]interface{}{
					"field":       "vector",
					"query_value": vector,
					"space_type":  spaceType,
				},
			},
		},
	}
}
