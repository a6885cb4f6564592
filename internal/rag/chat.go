package rag

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/hyperjump/solace/internal/generation"
	"github.com/hyperjump/solace/internal/metrics"
	"github.com/hyperjump/solace/internal/models"
	"github.com/hyperjump/solace/internal/stream"
)

// ChatConfig tunes the chat service.
type ChatConfig struct {
	// K is the number of fragments retrieved per question.
	K int
	// SystemInstructions are placed at the top of every RAG prompt.
	SystemInstructions string
}

// ChatService answers questions, with the user's history as context when the user is known.
type ChatService struct {
	retriever *Retriever
	plain     generation.Generator
	rag       generation.Generator
	cfg       ChatConfig
	logger    *zap.Logger
}

// NewChatService creates a chat service. plain answers anonymous questions; rag answers
// questions with retrieved context.
func NewChatService(retriever *Retriever, plain, rag generation.Generator, cfg ChatConfig, logger *zap.Logger) *ChatService {
	if cfg.K <= 0 {
		cfg.K = models.DefaultK
	}
	if cfg.SystemInstructions == "" {
		cfg.SystemInstructions = DefaultSystemInstructions("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{retriever: retriever, plain: plain, rag: rag, cfg: cfg, logger: logger}
}

// StreamRAG retrieves the user's related fragments, records the question, and streams an
// answer grounded on them. Retrieval errors are returned before any streaming starts.
func (s *ChatService) StreamRAG(ctx context.Context, userID int64, conversationID, query string) (iter.Seq2[string, error], error) {
	results, err := s.retriever.Retrieve(ctx, userID, conversationID, query, s.cfg.K)
	if err != nil {
		return nil, err
	}
	prompt := BuildPrompt(s.cfg.SystemInstructions, results, query)
	s.logger.Debug("streaming rag answer",
		zap.Int64("user_id", userID),
		zap.Int("context_documents", len(results)),
		zap.String("model", s.rag.Model()),
	)
	metrics.StreamsStarted.WithLabelValues("rag").Inc()
	return stream.Relay(s.rag.GenerateStream(ctx, prompt)), nil
}

// StreamPlain streams an answer to query with no retrieval and no persistence.
func (s *ChatService) StreamPlain(ctx context.Context, query string) iter.Seq2[string, error] {
	metrics.StreamsStarted.WithLabelValues("plain").Inc()
	return stream.Relay(s.plain.GenerateStream(ctx, query))
}

// RememberAnswer stores a completed answer as a fragment of the user's history.
func (s *ChatService) RememberAnswer(ctx context.Context, userID int64, conversationID, answer string) error {
	if answer == "" {
		return nil
	}
	_, err := s.retriever.Index(ctx, userID, conversationID, answer)
	return err
}

// Retriever returns the underlying retriever.
func (s *ChatService) Retriever() *Retriever {
	return s.retriever
}
