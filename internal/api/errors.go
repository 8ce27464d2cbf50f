package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cloudctl/internal/gateway"
)

// errNotFound is returned by do for a 404. Gateways turn it into a
// *gateway.NotFoundError naming the resource.
var errNotFound = errors.New("not found")

// Error is a non-success API response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
		ID      int    `json:"ID"`
	} `json:"errors"`
	Message string `json:"message"`
}

func checkStatus(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return gateway.ErrUnauthorized
	case code == http.StatusNotFound:
		return errNotFound
	}

	apiErr := &Error{StatusCode: code}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		switch {
		case len(eb.Errors) > 0:
			apiErr.Message = eb.Errors[0].Message
		default:
			apiErr.Message = eb.Message
		}
	}
	return apiErr
}

// notFound converts errNotFound into a typed gateway error.
func notFound(err error, kind, ref string) error {
	if errors.Is(err, errNotFound) {
		return &gateway.NotFoundError{Kind: kind, Ref: ref}
	}
	return err
}
