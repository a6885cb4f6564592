package models

// RetrievalResult is a fragment ranked against a query. Similarity is cosine, in [-1, 1].
type RetrievalResult struct {
	FragmentID     string  `json:"fragment_id"`
	ConversationID string  `json:"conversation_id"`
	Text           string  `json:"text"`
	Similarity     float64 `json:"similarity"`
}

// RetrieveResponse is the response body of a retrieval request.
type RetrieveResponse struct {
	Query     string             `json:"query"`
	Results   []*RetrievalResult `json:"results"`
	QueryTime int64              `json:"query_time_ms"`
}
