package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/logforms/internal/common"
)

type errorResponse struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code      string                   `json:"code"`
	Message   string                   `json:"message"`
	Hint      string                   `json:"hint,omitempty"`
	Details   []common.ValidationError `json:"details,omitempty"`
	Retryable bool                     `json:"retryable,omitempty"`
	RequestID string                   `json:"requestId,omitempty"`
}

// fail writes err as a JSON error response and aborts the chain. Production
// responses carry only the localized message; elsewhere the underlying
// error text is appended.
func (s *Server) fail(c *gin.Context, err error) {
	ae := common.AsAppError(err)
	status := ae.HTTPStatus()

	logger := common.LoggerFromContext(c.Request.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("http.request.failed", "kind", ae.Kind, "code", ae.Code, "status", status, "err", ae)
	} else {
		logger.Warn("http.request.failed", "kind", ae.Kind, "code", ae.Code, "status", status, "err", ae)
	}

	msg := userMessage(c.GetHeader("Accept-Language"), ae)
	if !s.cfg.IsProduction() {
		msg += " (" + ae.Error() + ")"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: errorPayload{
		Code:      ae.Code,
		Message:   msg,
		Hint:      ae.Hint,
		Details:   ae.Details,
		Retryable: ae.Retryable(),
		RequestID: common.RequestIDFromContext(c.Request.Context()),
	}})
}

// bind decodes the JSON body into dst and runs its validate tags. On failure
// the response has been written and false is returned.
func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			s.fail(c, tooLarge(tooBig.Limit, err))
		case errors.Is(err, io.EOF):
			s.fail(c, common.InputError(common.CodeInvalidRequest, "request body is required", err))
		default:
			s.fail(c, common.InputError(common.CodeInvalidRequest, "request body is not valid JSON", err))
		}
		return false
	}
	if err := common.ValidateStruct(dst); err != nil {
		s.fail(c, err)
		return false
	}
	return true
}
