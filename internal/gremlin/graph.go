package gremlin

import (
	"context"
	"fmt"
	"sort"
)

// Graph operations for loading and querying benchmark data. Identifiers
// and values travel as bindings; property keys are interpolated and must
// come from trusted callers.

// AddVertex upserts a vertex with the given label, id, and properties.
func (c *Client) AddVertex(ctx context.Context, label, id string, properties map[string]interface{}) error {
	query := "g.V(vid).fold().coalesce(unfold(), addV(vlabel).property(id, vid))"
	bindings := map[string]interface{}{
		"vid":    id,
		"vlabel": label,
	}
	for i, key := range sortedKeys(properties) {
		name := fmt.Sprintf("p%d", i)
		query += fmt.Sprintf(".property('%s', %s)", key, name)
		bindings[name] = properties[key]
	}
	_, err := c.Submit(ctx, query, bindings)
	return err
}

// AddEdge upserts an edge between two existing vertices.
func (c *Client) AddEdge(ctx context.Context, label, fromID, toID string, properties map[string]interface{}) error {
	query := "g.V(fromId).as('a').V(toId).coalesce(__.inE(elabel).where(outV().as('a')), addE(elabel).from('a'))"
	bindings := map[string]interface{}{
		"fromId": fromID,
		"toId":   toID,
		"elabel": label,
	}
	for i, key := range sortedKeys(properties) {
		name := fmt.Sprintf("p%d", i)
		query += fmt.Sprintf(".property('%s', %s)", key, name)
		bindings[name] = properties[key]
	}
	_, err := c.Submit(ctx, query, bindings)
	return err
}

// Vertices returns up to limit vertices of the given label with their
// properties.
func (c *Client) Vertices(ctx context.Context, label string, limit int) (*Result, error) {
	return c.Submit(ctx, "g.V().hasLabel(vlabel).limit(lim).valueMap(true)", map[string]interface{}{
		"vlabel": label,
		"lim":    limit,
	})
}

// Edges returns up to limit edges of the given label with their
// properties.
func (c *Client) Edges(ctx context.Context, label string, limit int) (*Result, error) {
	return c.Submit(ctx, "g.E().hasLabel(elabel).limit(lim).valueMap(true)", map[string]interface{}{
		"elabel": label,
		"lim":    limit,
	})
}

// Neighbors returns up to limit vertices adjacent to the given vertex in
// either direction.
func (c *Client) Neighbors(ctx context.Context, id string, limit int) (*Result, error) {
	return c.Submit(ctx, "g.V(vid).both().limit(lim).valueMap(true)", map[string]interface{}{
		"vid": id,
		"lim": limit,
	})
}

// CountVertices returns the total vertex count.
func (c *Client) CountVertices(ctx context.Context) (*Result, error) {
	return c.Submit(ctx, "g.V().count()", nil)
}

// Drop removes every vertex and edge. Used between benchmark runs.
func (c *Client) Drop(ctx context.Context) error {
	_, err := c.Submit(ctx, "g.V().drop()", nil)
	return err
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
