package search

import "kaleido/internal/client"

// MergeUnique filters the given lists against one shared seen-id set,
// threading it across lists in caller order: the first occurrence of an id
// anywhere wins, later occurrences are dropped even when they appear in a
// different list. Survivors keep their list's relative order, and one output
// list is returned per input list.
func MergeUnique[T any](id func(T) int, lists ...[]T) [][]T {
	seen := make(map[int]struct{})
	out := make([][]T, len(lists))
	for i, list := range lists {
		kept := make([]T, 0, len(list))
		for _, item := range list {
			key := id(item)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, item)
		}
		out[i] = kept
	}
	return out
}

// DedupeEvaluation enforces the unique-question-id invariant on an
// evaluation before it is rendered: a backend may list a question under both
// answered and follow-up during partial updates, or repeat one within a
// list. Answered questions take precedence.
func DedupeEvaluation(eval *client.QueryEvaluation) {
	if eval == nil {
		return
	}
	seen := make(map[int]struct{})
	answered := eval.AnsweredQuestions[:0]
	for _, q := range eval.AnsweredQuestions {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		answered = append(answered, q)
	}
	followUp := eval.FollowUpQuestions[:0]
	for _, q := range eval.FollowUpQuestions {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		followUp = append(followUp, q)
	}
	eval.AnsweredQuestions = answered
	eval.FollowUpQuestions = followUp
}
