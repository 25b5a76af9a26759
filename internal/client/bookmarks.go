package client

import (
	"context"
	"fmt"
	"net/http"
)

// BookmarksClient covers the current user's saved products.
type BookmarksClient struct {
	core *core
	base string
}

// List returns all bookmarks of the current user.
func (c *BookmarksClient) List(ctx context.Context) ([]Bookmark, error) {
	var bookmarks []Bookmark
	if err := c.core.do(ctx, http.MethodGet, c.base, nil, &bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// Add bookmarks a product.
func (c *BookmarksClient) Add(ctx context.Context, productID int) (*Bookmark, error) {
	body := struct {
		ProductID int `json:"product_id"`
	}{ProductID: productID}
	var bookmark Bookmark
	if err := c.core.do(ctx, http.MethodPost, c.base, body, &bookmark); err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// Remove deletes the bookmark for a product.
func (c *BookmarksClient) Remove(ctx context.Context, productID int) error {
	return c.core.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", c.base, productID), nil, nil)
}
