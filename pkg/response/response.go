package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/teamtask/pkg/logger"
)

// Response is the envelope every API reply uses. Code is 0 on success and
// repeats the HTTP status otherwise.
type Response struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// AppError is a failure the API reports to the caller as is.
type AppError struct {
	HTTPStatus int
	Message    string
	Fields     map[string]string // per-field detail, validation only
}

func (e *AppError) Error() string {
	return e.Message
}

func newError(status int, msg string) *AppError {
	return &AppError{HTTPStatus: status, Message: msg}
}

func NewBadRequest(msg string) *AppError   { return newError(http.StatusBadRequest, msg) }
func NewUnauthorized(msg string) *AppError { return newError(http.StatusUnauthorized, msg) }
func NewForbidden(msg string) *AppError    { return newError(http.StatusForbidden, msg) }
func NewNotFound(msg string) *AppError     { return newError(http.StatusNotFound, msg) }
func NewConflict(msg string) *AppError     { return newError(http.StatusConflict, msg) }
func NewServerError(msg string) *AppError  { return newError(http.StatusInternalServerError, msg) }

// NewValidation reports field-level problems, e.g. {"status": "Status must be one of: ..."}.
func NewValidation(fields map[string]string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Message: "ok", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Message: "created", Data: data})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: msg})
}

// Error writes err as an envelope. Anything other than an *AppError is
// logged and reported as a 500.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		appErr = NewServerError(err.Error())
	}
	c.JSON(appErr.HTTPStatus, Response{
		Code:    appErr.HTTPStatus,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}
