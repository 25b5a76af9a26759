package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ProductsClient covers the product catalogue.
type ProductsClient struct {
	core *core
	base string
}

// All fetches products, restricted to the given ids when any are supplied.
func (c *ProductsClient) All(ctx context.Context, ids []int) ([]Product, error) {
	path := c.base + "/"
	if len(ids) > 0 {
		path += "?ids=" + joinIDs(ids)
	}
	var products []Product
	if err := c.core.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Summarize asks the backend for generated summaries of the given products,
// capped at length words. An empty id list is a no-op.
func (c *ProductsClient) Summarize(ctx context.Context, ids []int, length int) ([]ProductSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	path := fmt.Sprintf("%s/summarize?length=%d", c.base, length)
	var summaries []ProductSummary
	if err := c.core.do(ctx, http.MethodPost, path, ids, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
