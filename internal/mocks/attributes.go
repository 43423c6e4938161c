package mocks

import (
	"fmt"

	"github.com/mkessler/zipsum/internal/ports"
)

// Attributes implements ports.Attributes for testing. Every call is appended
// to Calls in order, so tests can assert the exact relax/restore sequence
// around an overwrite.
type Attributes struct {
	// Hidden maps paths to their hidden state
	Hidden map[string]bool
	// ReadOnly maps paths to their read-only state
	ReadOnly map[string]bool
	// Calls records every method invocation in order
	Calls []string
	// Errors maps method names to errors
	Errors map[string]error
}

// NewAttributes creates a new mock attribute adapter.
func NewAttributes() *Attributes {
	return &Attributes{
		Hidden:   make(map[string]bool),
		ReadOnly: make(map[string]bool),
		Errors:   make(map[string]error),
	}
}

// IsHidden returns the configured hidden state.
func (m *Attributes) IsHidden(path string) (bool, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("IsHidden(%s)", path))
	if err, ok := m.Errors["IsHidden"]; ok {
		return false, err
	}
	return m.Hidden[path], nil
}

// SetHidden updates the hidden state.
func (m *Attributes) SetHidden(path string, hidden bool) error {
	m.Calls = append(m.Calls, fmt.Sprintf("SetHidden(%s,%t)", path, hidden))
	if err, ok := m.Errors["SetHidden"]; ok {
		return err
	}
	m.Hidden[path] = hidden
	return nil
}

// IsWritable returns the inverse of the configured read-only state.
func (m *Attributes) IsWritable(path string) (bool, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("IsWritable(%s)", path))
	if err, ok := m.Errors["IsWritable"]; ok {
		return false, err
	}
	return !m.ReadOnly[path], nil
}

// SetWritable updates the read-only state.
func (m *Attributes) SetWritable(path string, writable bool) error {
	m.Calls = append(m.Calls, fmt.Sprintf("SetWritable(%s,%t)", path, writable))
	if err, ok := m.Errors["SetWritable"]; ok {
		return err
	}
	m.ReadOnly[path] = !writable
	return nil
}

// Compile-time check that Attributes implements ports.Attributes.
var _ ports.Attributes = (*Attributes)(nil)
