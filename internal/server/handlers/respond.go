package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/fantasy11/internal/validation"
)

// responder пишет JSON ответы; ошибки в форме {"detail": ...}
type responder struct {
	logger *slog.Logger
}

// fieldDetail повторяет элемент списка ошибок валидации
type fieldDetail struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, map[string]string{"detail": message}, statusCode)
}

// sendValidationError отвечает 422 со списком ошибок по полям
func (h responder) sendValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		h.sendError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	detail := []fieldDetail{{Loc: []string{"body", verr.Field}, Msg: verr.Error()}}
	h.sendJSON(w, map[string]any{"detail": detail}, http.StatusUnprocessableEntity)
}

func (h responder) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	h.sendError(w, "internal server error", http.StatusInternalServerError)
}

// pageParams читает skip/limit из query; limit ограничен сверху maxLimit
func pageParams(r *http.Request, defaultLimit, maxLimit int) (skip, limit int, ok bool) {
	skip, limit = 0, defaultLimit
	q := r.URL.Query()
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		limit = min(n, maxLimit)
	}
	return skip, limit, true
}
