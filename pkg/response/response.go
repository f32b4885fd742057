package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-task-tracker/pkg/apperror"
)

// MsgCouldNotValidate is returned for every rejected bearer token, whatever the reason.
const MsgCouldNotValidate = "Could not validate credentials"

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Detail    any    `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// MessageBody is returned by operations that have no resource to show.
type MessageBody struct {
	Message string `json:"message"`
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindMalformed, apperror.KindBadSignature, apperror.KindExpired, apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindConflict:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalid:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Success writes data as the response body.
func Success[T any](c *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, data)
}

// Message writes {"message": msg} with 200.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageBody{Message: msg})
}

// Error aborts the request with status and detail.
func Error(c *gin.Context, status int, detail any) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, ErrorBody{Detail: detail, RequestID: c.GetString("request_id")})
}

// Invalid aborts with 422 and per-field details.
func Invalid(c *gin.Context, details map[string]string) {
	Error(c, http.StatusUnprocessableEntity, details)
}

// Fail aborts the request with the status and message err's kind maps to.
// Token failure reasons and internal causes never reach the client.
func Fail(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := StatusOf(kind)

	var detail string
	switch kind {
	case apperror.KindMalformed, apperror.KindBadSignature, apperror.KindExpired:
		detail = MsgCouldNotValidate
	case apperror.KindInternal:
		detail = http.StatusText(http.StatusInternalServerError)
	default:
		detail = apperror.MessageOf(err)
	}
	_ = c.Error(err)
	Error(c, status, detail)
}
