package server

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/vizlab/pkg/errors"
)

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidChart, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidField, errors.ErrCodeInvalidMessage, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeMalformedRow:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound,
		errors.ErrCodeSessionNotFound, errors.ErrCodeSnapshotNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	if stderrors.As(err, new(*errors.RowError)) {
		return http.StatusUnprocessableEntity
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := Status(err)
	code := errors.GetCode(err)
	switch {
	case code != "":
	case status == http.StatusUnprocessableEntity:
		code = errors.ErrCodeMalformedRow
	case status == http.StatusGatewayTimeout:
		code = errors.ErrCodeTimeout
	default:
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, map[string]any{"error": msg, "code": code})
}
