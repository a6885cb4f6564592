package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/auth"
	"github.com/hyperjump/solace/internal/metrics"
	"github.com/hyperjump/solace/internal/models"
	"github.com/hyperjump/solace/internal/storage"
)

// handleChat streams an answer. Authenticated users get answers grounded on their own
// history, and their question is recorded; anonymous callers get a plain answer.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var query models.ChatQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	user := auth.UserFromContext(ctx)
	if user == nil {
		s.logger.Debug("plain chat request", zap.String("request_id", requestID(r)))
		s.writeSSE(w, r, s.chat.StreamPlain(ctx, query.Query))
		return
	}

	s.logger.Debug("rag chat request",
		zap.String("request_id", requestID(r)),
		zap.Int64("user_id", user.ID),
		zap.String("conversation_id", query.ConversationID))
	deltas, err := s.chat.StreamRAG(ctx, user.ID, query.ConversationID, query.Query)
	if err != nil {
		metrics.StreamFailures.WithLabelValues("before_first_byte").Inc()
		s.respondAppError(w, r, err)
		return
	}
	answer, completed := s.writeSSE(w, r, deltas)
	if completed && s.config.RAG.StoreAnswers {
		if err := s.chat.RememberAnswer(ctx, user.ID, query.ConversationID, answer); err != nil {
			s.logger.Warn("failed to store answer", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}
}

func (s *Server) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	res, err := s.evaluations.Evaluate(r.Context(), user.ID)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"data":          res.Evaluation,
		"cache_state":   res.State,
		"evaluation_id": res.RecordID,
	})
}

func (s *Server) handleEvaluationHistory(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	limit, ok := s.intParam(w, r, "limit", s.config.Evaluation.HistoryLimit, 100)
	if !ok {
		return
	}
	records, err := s.evaluations.History(r.Context(), user.ID, limit)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    records,
	})
}

func (s *Server) handleIndexFragment(w http.ResponseWriter, r *http.Request) {
	var input models.FragmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.ValidateStruct(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user := auth.UserFromContext(r.Context())
	id, err := s.chat.Retriever().Index(r.Context(), user.ID, input.ConversationID, input.Text)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id, "status": "indexed"})
}

func (s *Server) handleRecentFragments(w http.ResponseWriter, r *http.Request) {
	k, ok := s.intParam(w, r, "k", s.config.Evaluation.RecentCount, models.MaxK)
	if !ok {
		return
	}
	user := auth.UserFromContext(r.Context())
	fragments, err := s.store.Recent(r.Context(), user.ID, k)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	if fragments == nil {
		fragments = []*models.Fragment{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"fragments": fragments})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var query models.RetrieveQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	start := time.Now()
	user := auth.UserFromContext(r.Context())
	results, err := s.chat.Retriever().Retrieve(r.Context(), user.ID, query.ConversationID, query.Query, query.K)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	if results == nil {
		results = []*models.RetrievalResult{}
	}
	s.respondJSON(w, http.StatusOK, &models.RetrieveResponse{
		Query:     query.Query,
		Results:   results,
		QueryTime: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.logger.Error("status: store stats failed", zap.Error(err))
		s.respondAppError(w, r, err)
		return
	}
	user := auth.UserFromContext(ctx)
	mine, err := s.store.Count(ctx, user.ID)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	evaluations, err := s.evaluations.Count(ctx, user.ID)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	resp := map[string]interface{}{
		"fragments":        stats.Fragments,
		"users":            stats.Users,
		"user_fragments":   mine,
		"user_evaluations": evaluations,
	}

	configInfo := map[string]interface{}{
		"storage_backend":      stats.Backend,
		"embedding_provider":   s.config.Embedding.Provider,
		"embedding_dimensions": s.config.Embedding.Dimensions,
		"generation_provider":  s.config.Generation.Provider,
		"rag_k":                s.config.RAG.K,
		"cache_backend":        s.config.Cache.Backend,
		"throttle_window":      s.config.Evaluation.ThrottleWindow.String(),
		"cache_horizon":        s.config.Evaluation.CacheHorizon.String(),
	}
	if stats.Backend == string(storage.BackendSQLite) {
		configInfo["database_path"] = s.config.Storage.DatabasePath
		paths := []string{s.config.Storage.DatabasePath}
		if s.config.Evaluation.DatabaseDriver == "sqlite" {
			paths = append(paths, s.config.Evaluation.DatabaseDSN)
		}
		if diskBytes, err := storage.SQLiteFootprint(paths...); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

// intParam reads an optional positive integer query parameter, capped at max.
func (s *Server) intParam(w http.ResponseWriter, r *http.Request, name string, def, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		s.respondError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	if n > max {
		n = max
	}
	return n, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondAppError maps err's kind to a status code. Server-side failures are logged.
func (s *Server) respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", requestID(r)),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
	}
	s.respondError(w, status, clientMessage(err))
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
