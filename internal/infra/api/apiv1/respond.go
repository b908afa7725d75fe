package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/infra/logging"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidPlan),
		errors.Is(err, domain.ErrInvalidCoupon),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrProcessorNotConfigured):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnresolvedUser):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrChatLimitReached):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrTransientProcessor):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	l := logging.With(r.Context(), s.log)

	var ev *zerolog.Event
	switch {
	case status >= 500:
		ev = l.Error()
	case errors.Is(err, domain.ErrInvalidSignature):
		ev = l.Warn()
	default:
		ev = l.Debug()
	}
	ev.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// decode reads a JSON body into dst and validates its struct tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing request body"})
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid field: " + verrs[0].Field()})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return false
	}
	return true
}

func pageFrom(r *http.Request) model.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return model.NewPage(page, limit)
}

type pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func paginationFor(p model.Page, total int) pagination {
	return pagination{Total: total, Page: p.Page, Limit: p.Limit, Pages: p.Pages(total)}
}
