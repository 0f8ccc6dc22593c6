package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FromError convierte un error de cualquier capa en AppError.
// Los sentinels de dominio se mapean a su status; el resto es 500.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	switch {
	case stderrors.Is(err, cdnsign.ErrValidation), stderrors.Is(err, core.ErrInvalid):
		return ErrBadRequest.WithCause(err)
	case stderrors.Is(err, core.ErrNotFound):
		return ErrNotFound.WithCause(err)
	case stderrors.Is(err, cdnsign.ErrSigning):
		return ErrSigningFailed.WithCause(err)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return ErrServiceUnavailable.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe la respuesta JSON del error. Los 5xx se loguean con la causa.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, nil, err)
}

// WriteErrorCtx igual que WriteError pero loguea con el logger del request.
func WriteErrorCtx(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log := logger.L()
		if r != nil {
			log = logger.From(r.Context())
		}
		log.Error("request failed",
			logger.String("code", appErr.Code),
			logger.Status(appErr.HTTPStatus),
			logger.Err(appErr.Err),
		)
	}

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
