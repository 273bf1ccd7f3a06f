package evidence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocatorState is whether the failing locator was found in the test sources.
// The zero value is unknown.
type LocatorState int

const (
	LocatorUnknown LocatorState = iota
	LocatorFound
	LocatorNotFound
)

// NumLocatorStates is the number of locator states, for state-indexed tables.
const NumLocatorStates = 3

func (l LocatorState) String() string {
	switch l {
	case LocatorFound:
		return "found"
	case LocatorNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Known reports whether the lookup produced an answer.
func (l LocatorState) Known() bool {
	return l == LocatorFound || l == LocatorNotFound
}

// MarshalJSON encodes found as true, not_found as false and unknown as null.
func (l LocatorState) MarshalJSON() ([]byte, error) {
	switch l {
	case LocatorFound:
		return []byte("true"), nil
	case LocatorNotFound:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (l *LocatorState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null":
		*l = LocatorUnknown
		return nil
	case "true":
		*l = LocatorFound
		return nil
	case "false":
		*l = LocatorNotFound
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("locator state: %w", err)
	}
	return l.parse(s)
}

func (l *LocatorState) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("locator state: expected scalar at line %d", node.Line)
	}
	if node.Tag == "!!null" {
		*l = LocatorUnknown
		return nil
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			*l = LocatorFound
		} else {
			*l = LocatorNotFound
		}
		return nil
	}
	return l.parse(node.Value)
}

func (l LocatorState) MarshalYAML() (interface{}, error) {
	switch l {
	case LocatorFound:
		return true, nil
	case LocatorNotFound:
		return false, nil
	default:
		return nil, nil
	}
}

func (l *LocatorState) parse(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown", "null", "~":
		*l = LocatorUnknown
	case "found", "true", "yes":
		*l = LocatorFound
	case "not_found", "false", "no":
		*l = LocatorNotFound
	default:
		return fmt.Errorf("locator state: unrecognized value %q", s)
	}
	return nil
}
