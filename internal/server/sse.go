package server

import (
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/metrics"
)

// writeSSE relays deltas as server-sent events: one `data: {"text": ...}` event per delta,
// then `data: [DONE]`. The event-stream headers are only committed with the first delta, so
// an error before it is still answered with a JSON error and a proper status code. An error
// after it ends the stream with a `data: {"error": ...}` frame and no [DONE].
// It returns the full text relayed and whether the stream completed.
func (s *Server) writeSSE(w http.ResponseWriter, r *http.Request, deltas iter.Seq2[string, error]) (string, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return "", false
	}

	var (
		started bool
		full    strings.Builder
	)
	begin := func() {
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		started = true
	}

	for delta, err := range deltas {
		if err != nil {
			if !started {
				metrics.StreamFailures.WithLabelValues("before_first_byte").Inc()
				s.respondAppError(w, r, err)
				return "", false
			}
			metrics.StreamFailures.WithLabelValues("mid_stream").Inc()
			s.logger.Warn("stream failed",
				zap.String("request_id", requestID(r)),
				zap.Int("bytes_sent", full.Len()),
				zap.Error(err))
			payload, _ := json.Marshal(map[string]string{"error": clientMessage(err)})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			return full.String(), false
		}
		if !started {
			begin()
		}
		payload, _ := json.Marshal(map[string]string{"text": delta})
		if _, werr := fmt.Fprintf(w, "data: %s\n\n", payload); werr != nil {
			// Client went away; stop pulling from the provider.
			return full.String(), false
		}
		flusher.Flush()
		full.WriteString(delta)
	}

	if !started {
		begin()
	}
	_, _ = w.Write([]byte("data: [DONE]\n\n"))
	flusher.Flush()
	return full.String(), true
}

// clientMessage is the error text exposed to API clients. Internal errors are not detailed.
func clientMessage(err error) string {
	if apperr.KindOf(err) == apperr.KindInternal {
		return "internal error"
	}
	return err.Error()
}
