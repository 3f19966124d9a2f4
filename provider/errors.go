package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownProvider is returned for an ID missing from the table.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrMissingCredential is returned when a provider needs a key and none was given.
	ErrMissingCredential = errors.New("missing credential")
	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("unknown mode")
)

// HTTPError is a non-2xx answer from a provider.
type HTTPError struct {
	Provider ID
	Status   int
	Message  string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Message)
}

// TransportError is a failure to reach a provider at all.
type TransportError struct {
	Provider ID
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EmptyResponseError is a 2xx answer with nothing at the expected path.
type EmptyResponseError struct {
	Provider ID
	// Err is the decode failure, if the body was not even well-formed.
	Err error
}

func (e *EmptyResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s returned an unreadable response: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s returned an empty response", e.Provider)
}

func (e *EmptyResponseError) Unwrap() error { return e.Err }

// IsTransport reports whether err is an HTTPError or TransportError.
func IsTransport(err error) bool {
	var he *HTTPError
	var te *TransportError
	return errors.As(err, &he) || errors.As(err, &te)
}

// IsDecode reports whether err is an EmptyResponseError.
func IsDecode(err error) bool {
	var ee *EmptyResponseError
	return errors.As(err, &ee)
}

// upstreamMessage pulls a human-readable message out of an error body,
// falling back to the truncated body itself.
func upstreamMessage(body []byte) string {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err == nil {
		switch e := raw["error"].(type) {
		case map[string]any:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		case string:
			if e != "" {
				return e
			}
		}
		if msg, ok := raw["message"].(string); ok && msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "no response body"
	}
	return truncate(msg, 500)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
