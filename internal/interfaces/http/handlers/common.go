// Package handlers implements the HTTP API handlers.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/seistrack/famview/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status.  Server-side
// errors are masked with the generic message for their code; client errors
// keep their detail.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if errors.IsServerError(code) {
		message = errors.DefaultMessageForCode(code)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    string(code),
		Message: message,
	})
}

// floatQuery parses a float query parameter, falling back to def when absent.
func floatQuery(c *gin.Context, name string, def float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeBadRequest,
			"query parameter "+name+" must be a number")
	}
	return v, nil
}

// intQuery parses an int query parameter, falling back to def when absent.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeBadRequest,
			"query parameter "+name+" must be an integer")
	}
	return v, nil
}

// requiredFloatQuery parses a float query parameter that must be present.
func requiredFloatQuery(c *gin.Context, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errors.New(errors.ErrCodeBadRequest,
			"query parameter "+name+" is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeBadRequest,
			"query parameter "+name+" must be a number")
	}
	return v, nil
}

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeBadRequest,
			"path parameter "+name+" must be an integer")
	}
	return v, nil
}
