package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a backend-assigned todo identifier. The client never makes one up.
// Backends encode it either as a JSON string or a JSON number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("todo id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("todo id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Todo is the domain model for a todo entry as returned by the backend.
type Todo struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Draft is the writable part of a todo (create and update bodies).
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Credentials are read at submission time and never persisted.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EditRequest carries operator input for an update. A nil field means the
// operator cancelled that prompt.
type EditRequest struct {
	ID          ID
	Title       *string
	Description *string
}

// Cancelled reports whether either value is missing.
func (r EditRequest) Cancelled() bool {
	return r.Title == nil || r.Description == nil
}

// Draft returns the update body. Only valid when !Cancelled().
func (r EditRequest) Draft() Draft {
	return Draft{Title: *r.Title, Description: *r.Description}
}
