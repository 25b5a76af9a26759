package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threadsServer(t *testing.T, handle func(r *http.Request, body []byte) any) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		resp := handle(r, raw)
		if resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, staticToken("tok")), srv
}

func TestThreadsCreateTrimsQuery(t *testing.T) {
	var body map[string]any
	c, _ := threadsServer(t, func(r *http.Request, raw []byte) any {
		require.NoError(t, json.Unmarshal(raw, &body))
		return QueryEvaluation{ThreadID: 1, Valid: true}
	})

	_, err := c.Threads.Create(context.Background(), "  hiking boots  ")
	require.NoError(t, err)
	assert.Equal(t, "hiking boots", body["query"])
}

func TestThreadsCreateEmptyQueryOmitsBody(t *testing.T) {
	var raw []byte
	c, _ := threadsServer(t, func(r *http.Request, body []byte) any {
		raw = body
		return QueryEvaluation{ThreadID: 1}
	})

	_, err := c.Threads.Create(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestThreadsPostFiltersAnswers(t *testing.T) {
	var body map[string]any
	c, _ := threadsServer(t, func(r *http.Request, raw []byte) any {
		assert.Equal(t, "/me/threads/7", r.URL.Path)
		require.NoError(t, json.Unmarshal(raw, &body))
		return QueryEvaluation{ThreadID: 7, Valid: true}
	})

	_, err := c.Threads.Post(context.Background(), 7, ThreadContent{
		Query: "  boots  ",
		Answers: []Answer{
			{ID: 1, Answer: "  black  "},
			// Empty without a removal request: dropped client-side.
			{ID: 2, Answer: "   "},
			{ID: 3, Answer: "", Remove: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "boots", body["query"])
	answers := body["answers"].([]any)
	require.Len(t, answers, 2)
	first := answers[0].(map[string]any)
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "black", first["answer"])
	second := answers[1].(map[string]any)
	assert.Equal(t, float64(3), second["id"])
	assert.Equal(t, true, second["remove"])
}

func TestThreadsPostRejectsEmptyContent(t *testing.T) {
	called := false
	c, _ := threadsServer(t, func(r *http.Request, raw []byte) any {
		called = true
		return QueryEvaluation{}
	})

	_, err := c.Threads.Post(context.Background(), 7, ThreadContent{
		Query:   "   ",
		Answers: []Answer{{ID: 1, Answer: "  "}},
	})

	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.False(t, called, "nothing should reach the backend")
}

func TestThreadsRecommendationsPath(t *testing.T) {
	var url string
	c, _ := threadsServer(t, func(r *http.Request, raw []byte) any {
		url = r.URL.String()
		return []Product{{ID: 3, Title: "Boot", Price: 99.5}}
	})

	products, err := c.Threads.Recommendations(context.Background(), 42, true)
	require.NoError(t, err)
	assert.Equal(t, "/me/threads/42/recommendations?rerank=true", url)
	require.Len(t, products, 1)
	assert.Equal(t, "Boot", products[0].Title)
}

func TestThreadsDelete(t *testing.T) {
	var method, path string
	c, _ := threadsServer(t, func(r *http.Request, raw []byte) any {
		method, path = r.Method, r.URL.Path
		return nil
	})

	require.NoError(t, c.Threads.Delete(context.Background(), 9))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/me/threads/9", path)
}

func TestProductsSummarizeEmptyIsNoop(t *testing.T) {
	called := false
	c, _ := threadsServer(t, func(r *http.Request, raw []byte) any {
		called = true
		return nil
	})

	summaries, err := c.Products.Summarize(context.Background(), nil, 25)
	require.NoError(t, err)
	assert.Nil(t, summaries)
	assert.False(t, called)
}

func TestProductsAllJoinsIDs(t *testing.T) {
	var url string
	c, _ := threadsServer(t, func(r *http.Request, raw []byte) any {
		url = r.URL.String()
		return []Product{}
	})

	_, err := c.Products.All(context.Background(), []int{3, 1, 4})
	require.NoError(t, err)
	assert.Equal(t, "/products/?ids=3,1,4", url)
}
