// Package search implements the thread query-refinement engine: pending
// answer drafts, question deduplication before render, the submission
// decision logic, and the per-session busy discipline.
package search

import (
	"strings"

	"kaleido/internal/client"
)

type draftEntry struct {
	id     int
	text   string
	remove bool
}

// DraftStore accumulates per-question answer edits between submissions.
// Entries keep the order of their first edit; re-editing an answer
// overwrites in place. The store lives only as long as its thread view.
type DraftStore struct {
	entries  []draftEntry
	index    map[int]int    // question id -> position in entries
	baseline map[int]string // last submitted answer per question id
}

// NewDraftStore returns an empty store with no submitted baseline.
func NewDraftStore() *DraftStore {
	return &DraftStore{
		index:    make(map[int]int),
		baseline: make(map[int]string),
	}
}

// Rebase replaces the submitted-answer baseline with the answered questions
// of a fresh evaluation. Pending entries are not touched; callers clear them
// separately on a confirmed submission.
func (d *DraftStore) Rebase(answered []client.AnsweredQuestion) {
	d.baseline = make(map[int]string, len(answered))
	for _, q := range answered {
		d.baseline[q.ID] = q.Answer
	}
}

// SetAnswer records an edit to one question's answer. Clearing a previously
// answered question becomes a removal request; retyping the already
// submitted text cancels the pending edit entirely, so no-op submissions
// never leave the store.
func (d *DraftStore) SetAnswer(id int, raw string) {
	trimmed := strings.TrimSpace(raw)
	previous, answered := d.baseline[id]
	remove := answered && trimmed == ""

	if trimmed == previous {
		d.delete(id)
		return
	}
	if pos, ok := d.index[id]; ok {
		d.entries[pos].text = trimmed
		d.entries[pos].remove = remove
		return
	}
	d.index[id] = len(d.entries)
	d.entries = append(d.entries, draftEntry{id: id, text: trimmed, remove: remove})
}

// Pending returns the drafted text for a question, if any.
func (d *DraftStore) Pending(id int) (string, bool) {
	pos, ok := d.index[id]
	if !ok {
		return "", false
	}
	return d.entries[pos].text, true
}

// Payload returns the pending entries in first-edit order, ready to submit.
func (d *DraftStore) Payload() []client.Answer {
	if len(d.entries) == 0 {
		return nil
	}
	answers := make([]client.Answer, len(d.entries))
	for i, entry := range d.entries {
		answers[i] = client.Answer{ID: entry.id, Answer: entry.text, Remove: entry.remove}
	}
	return answers
}

// Empty reports whether there is nothing to submit.
func (d *DraftStore) Empty() bool {
	return len(d.entries) == 0
}

// Clear drops all pending entries. Called after a confirmed submission.
func (d *DraftStore) Clear() {
	d.entries = nil
	d.index = make(map[int]int)
}

func (d *DraftStore) delete(id int) {
	pos, ok := d.index[id]
	if !ok {
		return
	}
	d.entries = append(d.entries[:pos], d.entries[pos+1:]...)
	delete(d.index, id)
	for i := pos; i < len(d.entries); i++ {
		d.index[d.entries[i].id] = i
	}
}
