package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"office-ledger/internal/errors"
)

// actorHeader carries the authenticated account id. The identity provider
// sits in front of this service and is trusted as-is.
const actorHeader = "X-Account-ID"

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{Data: data}
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")

	errResponse := Error{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}

	w.WriteHeader(appErr.HTTPStatus())
	json.NewEncoder(w).Encode(Response{Error: &errResponse})
}

// writeServiceError renders any service failure. Everything the services
// return is an AppError already; anything else is unexpected.
func writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		writeError(w, appErr)
		return
	}
	writeError(w, errors.NewAppError(errors.InternalError, "an unexpected error occurred").WithDetails(err.Error()))
}

// actorID extracts the authenticated caller from the request.
func actorID(r *http.Request) (uuid.UUID, *errors.AppError) {
	raw := r.Header.Get(actorHeader)
	if raw == "" {
		return uuid.Nil, errors.NewAppError(errors.ValidationError, "missing "+actorHeader+" header")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.NewAppError(errors.ValidationError, "invalid "+actorHeader+" header")
	}
	return id, nil
}
