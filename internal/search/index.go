package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// hnsw parameters for the vector field. Tuned for recall over speed; the
// benchmark measures retrieval quality, not latency.
const (
	efConstruction = 512
	efSearch       = 512
	hnswM          = 16
	spaceType      = "cosinesimil"
)

func indexBody(dimension int) map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{
				"knn":                      true,
				"knn.algo_param.ef_search": efSearch,
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"vector": map[string]interface{}{
					"type":      "knn_vector",
					"dimension": dimension,
					"method": map[string]interface{}{
						"name":       "hnsw",
						"space_type": spaceType,
						"engine":     "nmslib",
						"parameters": map[string]interface{}{
							"ef_construction": efConstruction,
							"m":               hnswM,
						},
					},
				},
				"text": map[string]interface{}{"type": "text"},
				"metadata": map[string]interface{}{
					"type":    "object",
					"enabled": true,
				},
			},
		},
	}
}

// EnsureIndex creates the vector index if it is missing. An existing index
// whose vector mapping does not match the configured dimension is dropped
// and recreated; stored vectors of the wrong length are useless anyway.
func (c *Client) EnsureIndex(ctx context.Context) error {
	dimension, err := c.indexDimension(ctx)
	if err != nil {
		if IsNotFound(err) {
			return c.createIndex(ctx)
		}
		return fmt.Errorf("inspecting index %s: %w", c.cfg.Index, err)
	}

	if dimension == c.cfg.Dimension {
		c.logf("index %s exists with dimension %d", c.cfg.Index, dimension)
		return nil
	}

	c.logf("index %s has dimension %d, want %d; recreating", c.cfg.Index, dimension, c.cfg.Dimension)
	if err := c.DeleteIndex(ctx); err != nil {
		return fmt.Errorf("dropping mismatched index %s: %w", c.cfg.Index, err)
	}
	return c.createIndex(ctx)
}

func (c *Client) createIndex(ctx context.Context) error {
	body, err := json.Marshal(indexBody(c.cfg.Dimension))
	if err != nil {
		return err
	}
	err = c.call(ctx, func() error {
		_, err := c.do(ctx, http.MethodPut, "/"+c.cfg.Index, "application/json", body)
		return err
	})
	if err != nil {
		return fmt.Errorf("creating index %s: %w", c.cfg.Index, err)
	}
	c.logf("created index %s with dimension %d", c.cfg.Index, c.cfg.Dimension)
	return nil
}

// indexDimension reads the index mapping and extracts the vector field's
// dimension. A missing index surfaces as a 404 StatusError.
func (c *Client) indexDimension(ctx context.Context) (int, error) {
	var data []byte
	err := c.call(ctx, func() error {
		var err error
		data, err = c.do(ctx, http.MethodGet, "/"+c.cfg.Index+"/_mapping", "", nil)
		return err
	})
	if err != nil {
		return 0, err
	}

	var mapping map[string]struct {
		Mappings struct {
			Properties struct {
				Vector struct {
					Dimension int `json:"dimension"`
				} `json:"vector"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return 0, fmt.Errorf("decoding mapping: %w", err)
	}
	for _, idx := range mapping {
		return idx.Mappings.Properties.Vector.Dimension, nil
	}
	return 0, fmt.Errorf("mapping response for %s named no index", c.cfg.Index)
}

// DeleteIndex removes the index. A missing index is already the desired
// state, so 404 is success.
func (c *Client) DeleteIndex(ctx context.Context) error {
	err := c.call(ctx, func() error {
		_, err := c.do(ctx, http.MethodDelete, "/"+c.cfg.Index, "", nil)
		return err
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting index %s: %w", c.cfg.Index, err)
	}
	return nil
}
