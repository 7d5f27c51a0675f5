package message

import (
	"slices"
	"strings"
)

// Headers is a case-insensitive multi-value header bag.
// Names are stored lower-cased, in order of first insertion; values keep their insertion order.
// The zero value is an empty bag ready to use.
type Headers struct {
	// names lists header names in order of first insertion.
	names []string
	// values maps a lower-cased name to its values.
	values map[string][]string
}

// NewHeaders creates an empty header bag.
func NewHeaders() *Headers {
	return &Headers{}
}

// Add appends a value to a header.
func (h *Headers) Add(name, value string) {
	key := strings.ToLower(name)

	h.ensure(key)
	h.values[key] = append(h.values[key], value)
}

// Set replaces every value of a header.
func (h *Headers) Set(name string, values ...string) {
	key := strings.ToLower(name)

	h.ensure(key)
	h.values[key] = slices.Clone(values)
}

// Del removes a header with all its values.
func (h *Headers) Del(name string) {
	key := strings.ToLower(name)

	if _, ok := h.values[key]; !ok {
		return
	}

	delete(h.values, key)

	h.names = slices.DeleteFunc(h.names, func(n string) bool {
		return n == key
	})
}

// Get returns the first value of a header and whether the header is present.
func (h *Headers) Get(name string) (string, bool) {
	values, ok := h.values[strings.ToLower(name)]
	if !ok || len(values) == 0 {
		return "", ok
	}

	return values[0], true
}

// Values returns a copy of every value of a header, or nil if it is absent.
func (h *Headers) Values(name string) []string {
	values, ok := h.values[strings.ToLower(name)]
	if !ok {
		return nil
	}

	return slices.Clone(values)
}

// Has reports whether the header is present.
func (h *Headers) Has(name string) bool {
	_, ok := h.values[strings.ToLower(name)]

	return ok
}

// Names returns the lower-cased header names in insertion order.
func (h *Headers) Names() []string {
	return slices.Clone(h.names)
}

// Len returns the number of distinct headers.
func (h *Headers) Len() int {
	return len(h.names)
}

// Lines renders every value as a "name: value" line, preserving order.
func (h *Headers) Lines() []string {
	lines := make([]string, 0, len(h.names))

	for _, name := range h.names {
		for _, value := range h.values[name] {
			lines = append(lines, name+": "+value)
		}
	}

	return lines
}

// Map returns a copy of the bag as a plain map.
func (h *Headers) Map() map[string][]string {
	result := make(map[string][]string, len(h.names))

	for _, name := range h.names {
		result[name] = slices.Clone(h.values[name])
	}

	return result
}

// Clone returns a deep copy of the bag.
func (h *Headers) Clone() *Headers {
	clone := &Headers{
		names:  slices.Clone(h.names),
		values: make(map[string][]string, len(h.values)),
	}

	for name, values := range h.values {
		clone.values[name] = slices.Clone(values)
	}

	return clone
}

func (h *Headers) ensure(key string) {
	if h.values == nil {
		h.values = make(map[string][]string)
	}

	if _, ok := h.values[key]; !ok {
		h.names = append(h.names, key)
		h.values[key] = nil
	}
}
