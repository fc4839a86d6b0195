package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/examsheet"
	"github.com/stemsi/gscribe-backend/internal/identity"
	"github.com/stemsi/gscribe-backend/internal/response"
	"github.com/stemsi/gscribe-backend/internal/service"
)

// failService maps a service error onto the response envelope. Order
// matters: wrapped errors can match more than one sentinel.
func failService(c *gin.Context, log zerolog.Logger, err error) {
	var fe *examsheet.FormatError
	switch {
	case errors.As(err, &fe):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrExamFormatInvalid, map[string]string{
			"reason": fe.Reason,
			"cell":   fe.Cell,
		})
	case errors.Is(err, service.ErrResponseNotRecorded):
		response.Fail(c, http.StatusBadGateway, response.ErrResponseNotRecorded)
	case errors.Is(err, service.ErrInvalidStoredCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrStoredCredentialsInvalid)
	case errors.Is(err, service.ErrNotAuthorized):
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthorized)
	case errors.Is(err, identity.ErrInvalidIdentity):
		response.Fail(c, http.StatusUnauthorized, response.ErrIdentityInvalid)
	case errors.Is(err, identity.ErrInvalidAuthCode):
		response.Fail(c, http.StatusBadRequest, response.ErrAuthCodeInvalid)
	case errors.Is(err, service.ErrSpreadsheetAccess):
		response.Fail(c, http.StatusBadRequest, response.ErrSpreadsheetUnavailable)
	case errors.Is(err, service.ErrMalformedRequest):
		response.Fail(c, http.StatusBadRequest, response.ErrMalformedRequest)
	case errors.Is(err, service.ErrExamAlreadyTaken):
		response.Fail(c, http.StatusBadRequest, response.ErrExamAlreadyTaken)
	case errors.Is(err, service.ErrIncorrectExamID):
		response.Fail(c, http.StatusBadRequest, response.ErrIncorrectExamID)
	case errors.Is(err, service.ErrIncompleteAnswers):
		response.Fail(c, http.StatusBadRequest, response.ErrIncompleteAnswers)
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
	default:
		log.Error().
			Err(err).
			Str("request_id", response.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
