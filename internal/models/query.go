package models

import "strings"

const (
	// DefaultK is the number of fragments retrieved for a chat answer.
	DefaultK = 10
	// MaxK caps the number of fragments a caller can request.
	MaxK = 100
)

// ChatQuery is a chat request.
type ChatQuery struct {
	Query          string `json:"query" validate:"required,max=8000"`
	ConversationID string `json:"conversation_id" validate:"max=255"`
}

// Validate trims the query and checks it.
func (q *ChatQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	return ValidateStruct(q)
}

// RetrieveQuery is a direct retrieval request.
type RetrieveQuery struct {
	Query          string `json:"query" validate:"required,max=8000"`
	ConversationID string `json:"conversation_id" validate:"max=255"`
	K              int    `json:"k,omitempty" validate:"gte=0"`
}

// Validate trims the query, checks it, and caps K. A zero K becomes DefaultK.
func (q *RetrieveQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if err := ValidateStruct(q); err != nil {
		return err
	}
	if q.K == 0 {
		q.K = DefaultK
	}
	if q.K > MaxK {
		q.K = MaxK
	}
	return nil
}
