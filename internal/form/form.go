// Package form binds and validates the venue, artist and show forms.  Every
// form accepts both urlencoded bodies (checkboxes, repeated genres fields)
// and JSON.
package form

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ValidationError lists the offending fields of a rejected form.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid form fields: %s", strings.Join(names, ", "))
}

type errorSet map[string]string

func (s errorSet) add(field, msg string) {
	if _, ok := s[field]; !ok {
		s[field] = msg
	}
}

func (s errorSet) err() error {
	if len(s) == 0 {
		return nil
	}
	return &ValidationError{Fields: s}
}

// Bool is a checkbox value.  A browser submits "y" or "on" for a ticked box
// and nothing for an unticked one.
type Bool bool

// UnmarshalParam implements echo.BindUnmarshaler.
func (b *Bool) UnmarshalParam(param string) error {
	*b = Bool(truthy(param))
	return nil
}

// UnmarshalJSON accepts JSON booleans as well as the checkbox strings.
func (b *Bool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = Bool(t)
	case string:
		*b = Bool(truthy(t))
	case float64:
		*b = t != 0
	case nil:
		*b = false
	default:
		return fmt.Errorf("cannot use %s as a boolean", data)
	}
	return nil
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}

// optional turns an empty string into a missing value.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// checkLink records an error unless link is empty or an absolute http(s) URL.
func checkLink(errs errorSet, field, link string) {
	if link == "" {
		return
	}
	u, err := url.ParseRequestURI(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs.add(field, "must be an http or https URL")
	}
}
