package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"seatview/model"
)

// APIError is returned when the seat server responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
	// Message is the server-provided "message" field, when the body had one.
	Message string
}

func (e *APIError) Error() string {
	if e == nil {
		return "seat api error"
	}
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	return fmt.Sprintf("seat api error: %s: %s", e.Status, detail)
}

// NetworkError is returned when a request could not be sent or completed.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError is returned when a 2xx body is not JSON of the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsConflict reports whether the server refused a booking because the seat
// was taken or locked by someone else.
func IsConflict(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusConflict
	}
	return false
}

// BookingMessage is the text shown to the user once a booking request settles.
func BookingMessage(result model.BookingResult, err error) string {
	if err == nil {
		return result.Message
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Booking failed: " + apiErr.Status
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return "Booking failed: unexpected response"
	}
	if errors.Is(err, context.Canceled) {
		return "Booking cancelled"
	}
	return "Booking failed: server unreachable"
}

func messageFromBody(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
