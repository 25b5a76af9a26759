package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"kaleido/internal/client"
)

// ErrNoThread is returned when a submission is attempted before the session
// is bound to a thread.
var ErrNoThread = errors.New("search: session has no active thread")

// ThreadAPI is the slice of the backend the session needs. Satisfied by
// *client.ThreadsClient.
type ThreadAPI interface {
	Create(ctx context.Context, query string) (*client.QueryEvaluation, error)
	Evaluation(ctx context.Context, tid int) (*client.QueryEvaluation, error)
	Post(ctx context.Context, tid int, content client.ThreadContent) (*client.QueryEvaluation, error)
	Recommendations(ctx context.Context, tid int, rerank bool) ([]client.Product, error)
}

// Session owns the refinement state of one open thread view: the canonical
// query evaluation, the last-submitted query baseline, the pending answer
// drafts, and the rerank preference. One Session is constructed per thread
// view and discarded with it; it is never shared across threads.
//
// Thread-mutating operations are single-flight per operation and thread: a
// second call while one is outstanding joins the in-flight request and
// receives its result instead of issuing a duplicate. Busy is the advisory
// flag views use to disable inputs while a request is outstanding.
type Session struct {
	threads ThreadAPI

	mu        sync.Mutex
	threadID  int
	eval      *client.QueryEvaluation
	lastQuery string
	drafts    *DraftStore
	rerank    bool

	flight   singleflight.Group
	inFlight atomic.Int32
}

// NewSession returns a session with no thread bound yet.
func NewSession(threads ThreadAPI) *Session {
	return &Session{
		threads: threads,
		drafts:  NewDraftStore(),
	}
}

// Start creates a new thread, optionally seeded with a query, and binds the
// session to it.
func (s *Session) Start(ctx context.Context, query string) (*client.QueryEvaluation, error) {
	eval, err := s.guard("create", func() (*client.QueryEvaluation, error) {
		return s.threads.Create(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adopt(eval, query)
	return eval, nil
}

// Resume binds the session to an existing thread and loads its current
// evaluation.
func (s *Session) Resume(ctx context.Context, tid int) (*client.QueryEvaluation, error) {
	eval, err := s.guard(fmt.Sprintf("resume:%d", tid), func() (*client.QueryEvaluation, error) {
		return s.threads.Evaluation(ctx, tid)
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adopt(eval, "")
	return eval, nil
}

// Submit decides what, if anything, to send for a user-initiated search.
// With unchanged query text and no pending drafts it returns the prior
// evaluation without touching the network. On success the canonical
// evaluation is replaced, the query baseline moves to the response's cleaned
// query (or the submitted text), and the drafts are cleared. On any failure
// evaluation and drafts stay exactly as they were.
func (s *Session) Submit(ctx context.Context, query string) (*client.QueryEvaluation, error) {
	s.mu.Lock()
	if s.threadID == 0 && s.eval == nil {
		s.mu.Unlock()
		return nil, ErrNoThread
	}
	tid := s.threadID
	queryChanged := query != s.lastQuery
	if !queryChanged && s.drafts.Empty() {
		prior := s.eval
		s.mu.Unlock()
		return prior, nil
	}
	content := client.ThreadContent{Answers: s.drafts.Payload()}
	if queryChanged {
		content.Query = query
	}
	s.mu.Unlock()

	eval, err := s.guard(fmt.Sprintf("post:%d", tid), func() (*client.QueryEvaluation, error) {
		return s.threads.Post(ctx, tid, content)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adopt(eval, query)
	return eval, nil
}

// Recommendations fetches the ranked products for the bound thread using the
// session's rerank preference.
func (s *Session) Recommendations(ctx context.Context) ([]client.Product, error) {
	s.mu.Lock()
	tid := s.threadID
	rerank := s.rerank
	s.mu.Unlock()
	if tid == 0 {
		return nil, ErrNoThread
	}

	key := fmt.Sprintf("recs:%d:%t", tid, rerank)
	result, err, _ := s.flight.Do(key, func() (any, error) {
		s.inFlight.Add(1)
		defer s.inFlight.Add(-1)
		return s.threads.Recommendations(ctx, tid, rerank)
	})
	if err != nil {
		return nil, err
	}
	return result.([]client.Product), nil
}

// SetAnswer records a pending edit to one clarifying question.
func (s *Session) SetAnswer(id int, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts.SetAnswer(id, raw)
}

// PendingAnswer returns the drafted, not yet submitted answer for a
// question, if any.
func (s *Session) PendingAnswer(id int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.Pending(id)
}

// HasDrafts reports whether any edits are waiting to be submitted.
func (s *Session) HasDrafts() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.drafts.Empty()
}

// Evaluation returns the canonical snapshot. Callers must treat it as
// read-only.
func (s *Session) Evaluation() *client.QueryEvaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eval
}

// LastQuery returns the baseline used for query change detection.
func (s *Session) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// ThreadID returns the bound thread, 0 before Start or Resume.
func (s *Session) ThreadID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

// Busy reports whether a guarded operation is outstanding. Advisory: views
// use it to disable inputs, the single-flight discipline is what prevents
// duplicate requests.
func (s *Session) Busy() bool {
	return s.inFlight.Load() > 0
}

// SetRerank flips the rerank preference for future recommendation fetches.
func (s *Session) SetRerank(rerank bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rerank = rerank
}

// Rerank returns the current rerank preference.
func (s *Session) Rerank() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rerank
}

// adopt installs a fresh evaluation as canonical state. Caller holds mu.
func (s *Session) adopt(eval *client.QueryEvaluation, submitted string) {
	DedupeEvaluation(eval)
	s.eval = eval
	s.threadID = eval.ThreadID
	if eval.CleanedQuery != "" {
		s.lastQuery = eval.CleanedQuery
	} else {
		s.lastQuery = submitted
	}
	s.drafts.Rebase(eval.AnsweredQuestions)
	s.drafts.Clear()
}

// guard runs one thread-mutating call single-flight under the busy flag.
func (s *Session) guard(key string, fn func() (*client.QueryEvaluation, error)) (*client.QueryEvaluation, error) {
	result, err, _ := s.flight.Do(key, func() (any, error) {
		s.inFlight.Add(1)
		defer s.inFlight.Add(-1)
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return result.(*client.QueryEvaluation), nil
}
