package apiv1

import (
	"errors"
	"net/http"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/infra/metrics"
)

func (s *Server) handleChatQuota(w http.ResponseWriter, r *http.Request) {
	q, err := s.d.Chat.Quota(r.Context(), subject(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChatQuota(q))
}

// handleChatUsage is called by the chat service before it invokes the model.
func (s *Server) handleChatUsage(w http.ResponseWriter, r *http.Request) {
	q, err := s.d.Chat.Consume(r.Context(), subject(r.Context()))
	switch {
	case errors.Is(err, domain.ErrChatLimitReached):
		metrics.IncChatGate("limited")
		writeJSON(w, http.StatusTooManyRequests, struct {
			Error string    `json:"error"`
			Quota ChatQuota `json:"quota"`
		}{Error: err.Error(), Quota: toChatQuota(q)})
		return
	case err != nil:
		s.writeError(w, r, err)
		return
	}
	if q.Premium {
		metrics.IncChatGate("premium")
	} else {
		metrics.IncChatGate("allowed")
	}
	writeJSON(w, http.StatusOK, toChatQuota(q))
}
