package raymonds

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// UserMessage converts any client error into text suitable for an inline
// error element.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return http.StatusText(apiErr.StatusCode)
	case errors.Is(err, ErrValidation):
		msg := strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
		if msg == "" {
			return "Invalid input"
		}
		return strings.ToUpper(msg[:1]) + msg[1:]
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond"
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	case strings.HasPrefix(err.Error(), "request failed"):
		return "Unable to reach the RaymondsIndex server"
	default:
		return "Something went wrong"
	}
}
