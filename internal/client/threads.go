package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyContent rejects a thread post that carries neither a query nor
// answers; the backend would refuse it anyway.
var ErrEmptyContent = errors.New("client: either query text or answers must be provided")

// ThreadsClient covers the current user's search threads.
type ThreadsClient struct {
	core *core
	base string
}

// ThreadContent is what a submission wants to tell the backend. An empty
// Query (after trimming) means "query unchanged, omit it".
type ThreadContent struct {
	Query   string
	Answers []Answer
}

type threadPostPayload struct {
	Query   string   `json:"query,omitempty"`
	Answers []Answer `json:"answers,omitempty"`
}

// List returns the user's threads, most recent first.
func (c *ThreadsClient) List(ctx context.Context) ([]Thread, error) {
	var threads []Thread
	if err := c.core.do(ctx, http.MethodGet, c.base, nil, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// Create opens a new thread, optionally seeded with an initial query, and
// returns its first evaluation.
func (c *ThreadsClient) Create(ctx context.Context, query string) (*QueryEvaluation, error) {
	var body any
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		body = threadPostPayload{Query: trimmed}
	}
	var eval QueryEvaluation
	if err := c.core.do(ctx, http.MethodPost, c.base, body, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

// Evaluation fetches the current evaluation of an existing thread.
func (c *ThreadsClient) Evaluation(ctx context.Context, tid int) (*QueryEvaluation, error) {
	var eval QueryEvaluation
	if err := c.core.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", c.base, tid), nil, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

// Post submits new query text and/or answers to a thread. Query text is
// trimmed and dropped when empty; answers are dropped unless they carry text
// or a removal request.
func (c *ThreadsClient) Post(ctx context.Context, tid int, content ThreadContent) (*QueryEvaluation, error) {
	payload := threadPostPayload{Query: strings.TrimSpace(content.Query)}
	for _, a := range content.Answers {
		a.Answer = strings.TrimSpace(a.Answer)
		if a.Remove || a.Answer != "" {
			payload.Answers = append(payload.Answers, a)
		}
	}
	if payload.Query == "" && len(payload.Answers) == 0 {
		return nil, ErrEmptyContent
	}

	var eval QueryEvaluation
	if err := c.core.do(ctx, http.MethodPost, fmt.Sprintf("%s/%d", c.base, tid), payload, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

// Delete removes a thread and its history.
func (c *ThreadsClient) Delete(ctx context.Context, tid int) error {
	return c.core.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", c.base, tid), nil, nil)
}

// Recommendations returns the ranked products for a thread. The rerank flag
// requests the slower, higher quality ordering.
func (c *ThreadsClient) Recommendations(ctx context.Context, tid int, rerank bool) ([]Product, error) {
	var products []Product
	path := fmt.Sprintf("%s/%d/recommendations?rerank=%t", c.base, tid, rerank)
	if err := c.core.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}
