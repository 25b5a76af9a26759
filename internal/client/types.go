package client

import (
	"fmt"
	"strings"
	"time"
)

// User is the authenticated account as the backend reports it.
type User struct {
	ID         int    `json:"id"`
	SubID      string `json:"sub_id"`
	Username   string `json:"username"`
	PictureURL string `json:"picture_url"`
}

// Token carries the bearer token issued after an external login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Thread is one persisted search session of the current user.
type Thread struct {
	ThreadID  int     `json:"thread_id"`
	CreatedAt UTCTime `json:"created_at"`
	UpdatedAt UTCTime `json:"updated_at"`
}

// AnsweredQuestion is a clarifying question the user has already answered,
// together with the submitted answer text.
type AnsweredQuestion struct {
	ID     int    `json:"id"`
	Short  string `json:"short"`
	Long   string `json:"long"`
	Answer string `json:"answer"`
}

// FollowUpQuestion is a clarifying question the backend still wants answered.
type FollowUpQuestion struct {
	ID    int    `json:"id"`
	Short string `json:"short"`
	Long  string `json:"long"`
}

// Answer is one entry of the submission payload. Remove requests that a
// previously answered question be cleared rather than re-answered.
type Answer struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
	Remove bool   `json:"remove,omitempty"`
}

// QueryEvaluation is the backend's current assessment of a thread: whether
// the query is specific enough, the cleaned query text, and the answered and
// still-open clarifying questions.
type QueryEvaluation struct {
	ThreadID          int                `json:"thread_id"`
	Valid             bool               `json:"valid"`
	CleanedQuery      string             `json:"cleaned_query,omitempty"`
	AnsweredQuestions []AnsweredQuestion `json:"answered_questions"`
	FollowUpQuestions []FollowUpQuestion `json:"follow_up_questions"`
}

// Product is one recommendation result.
type Product struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

// ProductSummary is a short generated description of a product.
type ProductSummary struct {
	ID      int    `json:"id"`
	Summary string `json:"summary"`
}

// Bookmark marks a product the user saved.
type Bookmark struct {
	ProductID int     `json:"product_id"`
	CreatedAt UTCTime `json:"created_at"`
}

// UTCTime decodes the backend's naive timestamps ("2006-01-02T15:04:05",
// no zone designator) as UTC instants.
type UTCTime struct {
	time.Time
}

var utcLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

func (t *UTCTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range utcLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("client: unsupported timestamp %q", raw)
}

func (t UTCTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format("2006-01-02T15:04:05.999999") + `"`), nil
}
