package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaleido/internal/client"
)

func answeredBaseline() []client.AnsweredQuestion {
	return []client.AnsweredQuestion{
		{ID: 1, Short: "Budget", Answer: "under $100"},
		{ID: 2, Short: "Color", Answer: "black"},
	}
}

func TestDraftStoreRecordsEdits(t *testing.T) {
	d := NewDraftStore()

	d.SetAnswer(7, "  waterproof  ")

	text, ok := d.Pending(7)
	require.True(t, ok)
	assert.Equal(t, "waterproof", text)
	assert.False(t, d.Empty())
	assert.Equal(t, []client.Answer{{ID: 7, Answer: "waterproof"}}, d.Payload())
}

func TestDraftStoreOverwritesInPlace(t *testing.T) {
	d := NewDraftStore()

	d.SetAnswer(1, "red")
	d.SetAnswer(2, "large")
	d.SetAnswer(1, "blue")

	// Re-editing keeps the first-edit position.
	assert.Equal(t, []client.Answer{
		{ID: 1, Answer: "blue"},
		{ID: 2, Answer: "large"},
	}, d.Payload())
}

func TestDraftStoreClearingAnsweredRequestsRemoval(t *testing.T) {
	d := NewDraftStore()
	d.Rebase(answeredBaseline())

	d.SetAnswer(1, "   ")

	require.Equal(t, []client.Answer{{ID: 1, Answer: "", Remove: true}}, d.Payload())
}

func TestDraftStoreClearingUnansweredIsNoop(t *testing.T) {
	d := NewDraftStore()
	d.Rebase(answeredBaseline())

	// Questions 8 and 9 were never answered; blanking them changes nothing.
	d.SetAnswer(8, "")
	d.SetAnswer(9, "something")
	d.SetAnswer(9, "  ")

	assert.True(t, d.Empty())
	_, ok := d.Pending(9)
	assert.False(t, ok)
}

func TestDraftStoreRetypingSubmittedAnswerCancelsEdit(t *testing.T) {
	d := NewDraftStore()
	d.Rebase(answeredBaseline())

	d.SetAnswer(2, "white")
	require.False(t, d.Empty())

	// Typing the originally submitted answer back means nothing changed.
	d.SetAnswer(2, " black ")
	assert.True(t, d.Empty())
	assert.Nil(t, d.Payload())
}

func TestDraftStoreDeleteReindexes(t *testing.T) {
	d := NewDraftStore()
	d.Rebase(answeredBaseline())

	d.SetAnswer(1, "over $200")
	d.SetAnswer(3, "leather")
	d.SetAnswer(4, "brown")

	// Cancelling the first entry must not orphan the later positions.
	d.SetAnswer(1, "under $100")

	assert.Equal(t, []client.Answer{
		{ID: 3, Answer: "leather"},
		{ID: 4, Answer: "brown"},
	}, d.Payload())

	d.SetAnswer(3, "suede")
	text, ok := d.Pending(3)
	require.True(t, ok)
	assert.Equal(t, "suede", text)
}

func TestDraftStoreClear(t *testing.T) {
	d := NewDraftStore()
	d.SetAnswer(1, "red")
	d.SetAnswer(2, "large")

	d.Clear()

	assert.True(t, d.Empty())
	assert.Nil(t, d.Payload())

	// The store keeps working after a clear.
	d.SetAnswer(2, "small")
	assert.Equal(t, []client.Answer{{ID: 2, Answer: "small"}}, d.Payload())
}

func TestDraftStoreRebaseReplacesBaseline(t *testing.T) {
	d := NewDraftStore()
	d.Rebase(answeredBaseline())

	d.Rebase([]client.AnsweredQuestion{{ID: 5, Answer: "wool"}})

	// Old baseline is gone: blanking question 1 is no longer a removal.
	d.SetAnswer(1, "")
	assert.True(t, d.Empty())

	d.SetAnswer(5, "")
	assert.Equal(t, []client.Answer{{ID: 5, Answer: "", Remove: true}}, d.Payload())
}
