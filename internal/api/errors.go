package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
)

var (
	// ErrNoToken means no bearer token has been saved yet.
	ErrNoToken = errors.New("not logged in")
	// ErrNoProfile means a response did not contain a usable user.
	ErrNoProfile = errors.New("response has no user profile")
	// ErrNotDemo means a friend code is not one of the built-in demo contacts.
	ErrNotDemo = errors.New("friend code is not a demo contact")
)

// RequestError is returned for any non-2xx response.
type RequestError struct {
	Status     int
	StatusText string
	Message    string
	Code       string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("API Error: %d %s", e.Status, e.StatusText)
}

func newRequestError(resp *http.Response, body []byte) *RequestError {
	p := mapper.Decode(body)
	if inner, ok := p.Object("error"); ok {
		p = inner
	}
	return &RequestError{
		Status:     resp.StatusCode,
		StatusText: strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "),
		Message:    p.String("message"),
		Code:       p.String("code"),
	}
}

// AuthError is returned when login or signup cannot establish a profile.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProfileUpdateError is returned when every profile update path failed.
type ProfileUpdateError struct {
	UserID string
	Err    error
}

func (e *ProfileUpdateError) Error() string {
	return fmt.Sprintf("update profile %s: %v", e.UserID, e.Err)
}

func (e *ProfileUpdateError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
