// Package responses maps domain results and errors onto HTTP responses.
package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/store"
)

// ErrorBody is the uniform error envelope. Message is the short
// human-readable translation; raw provider payloads never appear here.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// WriteError translates an error into a status code and envelope.
func WriteError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorBody{Error: "record not found"})
		return
	}

	kind := generrors.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case generrors.KindValidation, generrors.KindConfiguration:
		status = http.StatusBadRequest
	case generrors.KindCredentials:
		status = http.StatusUnauthorized
	case generrors.KindQuotaExhausted, generrors.KindRateLimit:
		status = http.StatusTooManyRequests
	case generrors.KindTransport, generrors.KindUnavailable:
		status = http.StatusBadGateway
	case generrors.KindMalformedOutput, generrors.KindMissingField, generrors.KindEmptyResponse:
		status = http.StatusBadGateway
	}
	c.JSON(status, ErrorBody{Error: generrors.UserMessage(err), Kind: string(kind)})
}
