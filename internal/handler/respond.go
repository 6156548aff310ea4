package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/avelara/comanda/internal/domain/catalog"
	"github.com/avelara/comanda/internal/domain/order"
	"github.com/avelara/comanda/internal/domain/promotion"
	"github.com/avelara/comanda/internal/domain/table"
)

// errorResponse is the error envelope for every non-2xx API response.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Code: status, Message: msg})
}

// respondDomainError maps domain errors onto the API error envelope. Errors
// that carry no domain meaning surface as 500 and are logged with the request
// context.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, table.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, promotion.ErrInvalidCode),
		errors.Is(err, promotion.ErrExpired):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, order.ErrOrderClosed):
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	var (
		invalidErr    *order.InvalidInputError
		transitionErr *order.IllegalTransitionError
		lockedErr     *order.ItemLockedError
		missingErr    *order.ItemNotFoundError
	)
	switch {
	case errors.As(err, &invalidErr):
		respondError(w, http.StatusBadRequest, invalidErr.Error())
	case errors.As(err, &transitionErr):
		respondError(w, http.StatusConflict, transitionErr.Error())
	case errors.As(err, &lockedErr):
		respondError(w, http.StatusConflict, lockedErr.Error())
	case errors.As(err, &missingErr):
		respondError(w, http.StatusNotFound, missingErr.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
