// Package models defines the data structures shared by the fragment store, retrieval and evaluation.
package models

import "time"

// Fragment is one embedded piece of a user's conversation. Fragments are append-only.
type Fragment struct {
	ID             string    `json:"id"`
	Seq            int64     `json:"seq"`
	UserID         int64     `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	Text           string    `json:"text"`
	Embedding      []float32 `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// FragmentInput is the input for storing a fragment without retrieval.
type FragmentInput struct {
	ConversationID string `json:"conversation_id" validate:"max=255"`
	Text           string `json:"text" validate:"required"`
}
