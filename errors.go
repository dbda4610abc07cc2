package ramik

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionEnded is wrapped by every error that clears the stored session.
	// Callers should send the user back through Login.
	ErrSessionEnded = errors.New("ramik: session ended")

	// ErrSessionExpired is returned before any network call when the stored
	// session is missing or past its expiry.
	ErrSessionExpired = fmt.Errorf("%w: token expired, please login again", ErrSessionEnded)

	// ErrUnauthorized is returned when the backend answers 401 to an
	// authenticated request.
	ErrUnauthorized = fmt.Errorf("%w: unauthorized, please login again", ErrSessionEnded)

	// ErrMalformedResponse is returned when a 2xx response body is not valid JSON
	// or does not have the expected envelope.
	ErrMalformedResponse = errors.New("ramik: malformed response")

	// ErrInvalidInput is returned when a request payload fails shape validation.
	ErrInvalidInput = errors.New("ramik: invalid input")

	// ErrMediaNotConfigured is returned when an upload is attempted without
	// cloud name, API key and secret.
	ErrMediaNotConfigured = errors.New("ramik: media upload not configured")
)

// RequestError is returned for any non-2xx response other than the 401
// handled as ErrUnauthorized.
type RequestError struct {
	Method string
	Path   string
	Status int
	// Body is the raw response body text.
	Body string
	// Message is the server-provided message: the "message" field of a JSON
	// body when present, otherwise the body text.
	Message string
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("ramik: %s %s: %s", e.Method, e.Path, msg)
}

// newRequestError builds a RequestError, extracting {message} from JSON bodies.
func newRequestError(method, path string, status int, body []byte) *RequestError {
	text := strings.TrimSpace(string(body))
	return &RequestError{
		Method:  method,
		Path:    path,
		Status:  status,
		Body:    text,
		Message: serverMessage(body, text),
	}
}

func serverMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error.Message != "" {
			return payload.Error.Message
		}
	}
	return fallback
}

// UploadError reports a file the media service rejected.
type UploadError struct {
	File    string
	Status  int
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("ramik: upload %q: %v", e.File, e.Err)
	case e.Message != "":
		return fmt.Sprintf("ramik: upload %q rejected (status %d): %s", e.File, e.Status, e.Message)
	default:
		return fmt.Sprintf("ramik: upload %q rejected with status %d", e.File, e.Status)
	}
}

func (e *UploadError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a RequestError with the given status code.
func IsStatus(err error, status int) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == status
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
