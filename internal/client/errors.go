package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FetchFailure is returned for every backend call that did not produce a 2xx
// response with a decodable body. Status is 0 for transport failures.
type FetchFailure struct {
	Op      string
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *FetchFailure) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s %s: HTTP error! status: %d: %s", e.Op, e.URL, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: HTTP error! status: %d", e.Op, e.URL, e.Status)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
}

func (e *FetchFailure) Unwrap() error {
	return e.Err
}

// UserMessage is what an admin sees: the server-provided message, else the
// transport error text.
func (e *FetchFailure) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Status != 0 {
		return "Error"
	}
	return "unknown error"
}

// StatusOf returns the HTTP status carried by err, 0 when there is none.
func StatusOf(err error) int {
	var ff *FetchFailure
	if errors.As(err, &ff) {
		return ff.Status
	}
	return 0
}

// serverMessage pulls {"message": "..."} out of an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
