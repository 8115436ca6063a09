// Package scope enumerates the greenhouse gas reporting scopes and their
// storage tables.
package scope

import (
	"errors"
	"strings"
)

type Scope string

const (
	// Direct covers owned or controlled sources such as fuel combustion.
	Direct Scope = "scope_1"
	// Energy covers purchased electricity net of renewable certificates.
	Energy Scope = "scope_2"
	// ValueChain covers upstream and downstream indirect activity.
	ValueChain Scope = "scope_3"
)

// All lists every scope in reporting order.
var All = []Scope{Direct, Energy, ValueChain}

var ErrInvalidScope = errors.New("invalid_scope")

// Parse accepts the canonical identifiers plus the short forms "1", "2", "3".
func Parse(raw string) (Scope, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case string(Direct), "1", "scope1":
		return Direct, nil
	case string(Energy), "2", "scope2":
		return Energy, nil
	case string(ValueChain), "3", "scope3":
		return ValueChain, nil
	default:
		return "", ErrInvalidScope
	}
}

func (s Scope) Valid() bool {
	switch s {
	case Direct, Energy, ValueChain:
		return true
	default:
		return false
	}
}

// Table returns the record table for the scope.
func (s Scope) Table() string {
	return string(s) + "_emissions"
}

// FromTable is the inverse of Table.
func FromTable(table string) (Scope, bool) {
	for _, s := range All {
		if s.Table() == table {
			return s, true
		}
	}
	return "", false
}

// Label is the human readable name used in charts and exports.
func (s Scope) Label() string {
	switch s {
	case Direct:
		return "Scope 1"
	case Energy:
		return "Scope 2"
	case ValueChain:
		return "Scope 3"
	default:
		return string(s)
	}
}

// Color is the chart colour assigned to the scope.
func (s Scope) Color() string {
	switch s {
	case Direct:
		return "#f97316"
	case Energy:
		return "#eab308"
	case ValueChain:
		return "#22c55e"
	default:
		return "#94a3b8"
	}
}
