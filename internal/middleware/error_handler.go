package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"route_registry/internal/services"
	"route_registry/internal/validation"
)

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Timestamp   string      `json:"timestamp"`
	Status      int         `json:"status"`
	Error       string      `json:"error"`
	Message     string      `json:"message,omitempty"`
	FieldErrors FieldErrors `json:"fieldErrors,omitempty"`
}

// FieldErrors marshals as a JSON object whose keys keep declaration order.
type FieldErrors []validation.FieldError

func (f FieldErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fe := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fe.Field)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(fe.Message)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ErrorHandler writes the envelope for the last error a handler attached with
// c.Error. Handlers must not write a response themselves when they fail.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, envelope := Translate(err)
		if status >= http.StatusInternalServerError {
			logrus.WithError(err).WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			}).Error("request failed")
		}
		c.JSON(status, envelope)
	}
}

// Translate decides the status and body for err. Business failures whose
// message contains "already exists" are conflicts; all others are bad
// requests.
func Translate(err error) (int, ErrorEnvelope) {
	var (
		verr   *validation.Error
		bizErr *services.Error
	)

	switch {
	case errors.As(err, &verr):
		env := newEnvelope(http.StatusBadRequest)
		env.FieldErrors = FieldErrors(verr.Fields)
		return http.StatusBadRequest, env
	case errors.As(err, &bizErr):
		status := http.StatusBadRequest
		if strings.Contains(strings.ToLower(bizErr.Message), "already exists") {
			status = http.StatusConflict
		}
		env := newEnvelope(status)
		env.Message = bizErr.Message
		return status, env
	default:
		env := newEnvelope(http.StatusInternalServerError)
		env.Message = "Unexpected error"
		return http.StatusInternalServerError, env
	}
}

func newEnvelope(status int) ErrorEnvelope {
	return ErrorEnvelope{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Status:    status,
		Error:     http.StatusText(status),
	}
}
