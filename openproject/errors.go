package openproject

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the OpenProject API.
type Error struct {
	Status     int
	Identifier string
	Message    string
	Attribute  string
	Body       string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v %v (%v)", e.Status, http.StatusText(e.Status), e.Message)
	}

	return fmt.Sprintf("%v %v", e.Status, http.StatusText(e.Status))
}

// IsConflict returns true if err is an HTTP 409 response.
func IsConflict(err error) bool {
	return status(err) == http.StatusConflict
}

// IsNotFound returns true if err is an HTTP 404 response.
func IsNotFound(err error) bool {
	return status(err) == http.StatusNotFound
}

// IsParentConflict returns true if err is a rejection of the parent link of a new work package
// i.e. a 409 Conflict or a 422 whose error details name the 'parent' attribute.
func IsParentConflict(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Status {
	case http.StatusConflict:
		return true

	case http.StatusUnprocessableEntity:
		return strings.EqualFold(e.Attribute, "parent")
	}

	return false
}

func status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}

	return 0
}

func decodeError(status int, body []byte) *Error {
	e := Error{
		Status: status,
		Body:   strings.TrimSpace(string(body)),
	}

	reply := struct {
		Identifier string `json:"errorIdentifier"`
		Message    string `json:"message"`
		Embedded   struct {
			Details struct {
				Attribute string `json:"attribute"`
			} `json:"details"`
			Errors []struct {
				Message  string `json:"message"`
				Embedded struct {
					Details struct {
						Attribute string `json:"attribute"`
					} `json:"details"`
				} `json:"_embedded"`
			} `json:"errors"`
		} `json:"_embedded"`
	}{}

	if err := json.Unmarshal(body, &reply); err == nil {
		e.Identifier = reply.Identifier
		e.Message = reply.Message
		e.Attribute = reply.Embedded.Details.Attribute

		// multiple errors are wrapped in a MultipleErrors response
		for _, v := range reply.Embedded.Errors {
			if strings.EqualFold(v.Embedded.Details.Attribute, "parent") {
				e.Attribute = v.Embedded.Details.Attribute
			}
		}
	}

	return &e
}
