// Package jsonapi provides JSON:API documents for run and sequence
// resources.
package jsonapi

import (
	"encoding/json"
	"time"
)

// Document is a JSON:API top-level document.
// See: https://jsonapi.org/format/#document-structure
type Document struct {
	Data   any     `json:"data,omitempty"`
	Meta   *Meta   `json:"meta,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Meta holds non-standard meta-information.
type Meta map[string]any

// Links holds the links of a resource.
type Links struct {
	Self string `json:"self,omitempty"`
}

// Resource is a JSON:API resource object.
type Resource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes any    `json:"attributes"`
	Links      *Links `json:"links,omitempty"`
}

// Error is a JSON:API error object.
// See: https://jsonapi.org/format/#error-objects
type Error struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// NewResource creates a resource of the given type.
func NewResource(resourceType, id string, attrs any) *Resource {
	return &Resource{Type: resourceType, ID: id, Attributes: attrs}
}

// NewSingleResponse wraps one resource.
func NewSingleResponse(resource *Resource) *Document {
	return &Document{Data: resource}
}

// NewListResponse wraps a resource collection. A nil slice is written as
// an empty array.
func NewListResponse(resources []*Resource) *Document {
	if resources == nil {
		resources = []*Resource{}
	}
	return &Document{Data: resources}
}

// NewErrorResponse wraps error objects.
func NewErrorResponse(errs ...Error) *Document {
	return &Document{Errors: errs}
}

// NewError creates an error object.
func NewError(status, title, detail string) Error {
	return Error{Status: status, Title: title, Detail: detail}
}

// DateTime writes a time as RFC 3339 in UTC, or null when zero.
type DateTime time.Time

// NewDateTime converts t.
func NewDateTime(t time.Time) DateTime { return DateTime(t) }

// Time returns the underlying time.
func (dt DateTime) Time() time.Time { return time.Time(dt) }

// MarshalJSON implements json.Marshaler.
func (dt DateTime) MarshalJSON() ([]byte, error) {
	t := time.Time(dt)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// UnmarshalJSON implements json.Unmarshaler.
func (dt *DateTime) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*dt = DateTime{}
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return err
	}
	*dt = DateTime(t)
	return nil
}
