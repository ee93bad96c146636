// Package validate checks inbound raw messages against the schema catalog.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/udite/city-telemetry/internal/catalog"
	"github.com/udite/city-telemetry/internal/event"
)

// Validation failure taxonomy. Every failure is terminal for its message and
// wraps exactly one of these sentinels so callers can classify with errors.Is.
var (
	ErrMalformedPayload      = errors.New("malformed payload")
	ErrMissingMandatoryField = errors.New("missing mandatory field")
	ErrUnknownCategory       = errors.New("unknown event_type")
	ErrMissingField          = errors.New("missing field")
	ErrMissingSubfield       = errors.New("missing subfield")
	ErrValueNotAllowed       = errors.New("value not allowed")
	ErrValueOutOfRange       = errors.New("value out of range")
	ErrNotNumeric            = errors.New("value is not a number")
)

// Validate decodes a raw message, checks structural completeness and value
// coherence against the catalog, and returns the typed event. It is a pure
// function over its input and the static catalog.
func Validate(raw []byte) (event.Event, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedPayload, err)
	}

	if _, ok := payload["event_type"]; !ok {
		return nil, fmt.Errorf("%w: event_type", ErrMissingMandatoryField)
	}
	if _, ok := payload["timestamp"]; !ok {
		return nil, fmt.Errorf("%w: timestamp", ErrMissingMandatoryField)
	}

	tag, _ := payload["event_type"].(string)
	cat, err := event.ParseCategory(tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, tag)
	}

	schema, ok := catalog.Lookup(cat)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, tag)
	}

	if err := checkRequired(payload, cat, schema); err != nil {
		return nil, err
	}
	if err := checkCoherence(payload, schema); err != nil {
		return nil, err
	}

	evt, err := event.Decode(cat, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return evt, nil
}

func checkRequired(payload map[string]any, cat event.Category, schema catalog.Schema) error {
	for _, spec := range schema.Required {
		value, ok := payload[spec.Name]
		if !ok {
			return fmt.Errorf("%w: %q for event_type %q", ErrMissingField, spec.Name, cat)
		}
		if len(spec.Subfields) == 0 {
			continue
		}
		group, isGroup := value.(map[string]any)
		for _, sub := range spec.Subfields {
			if !isGroup {
				return fmt.Errorf("%w: %q in field %q for event_type %q",
					ErrMissingSubfield, sub, spec.Name, cat)
			}
			if _, ok := group[sub]; !ok {
				return fmt.Errorf("%w: %q in field %q for event_type %q",
					ErrMissingSubfield, sub, spec.Name, cat)
			}
		}
	}
	return nil
}

// checkCoherence applies the category's value constraints. A constrained path
// absent from the payload is skipped: constraints are enforced only when the
// field is present, requiredness is checkRequired's concern.
func checkCoherence(payload map[string]any, schema catalog.Schema) error {
	for _, fc := range schema.Constraints {
		value, ok := lookupPath(payload, fc.Path)
		if !ok {
			continue
		}
		if err := checkValue(fc.Path, value, fc.Constraint); err != nil {
			return err
		}
	}
	return nil
}

func lookupPath(payload map[string]any, path catalog.FieldPath) (any, bool) {
	if path.Group == "" {
		v, ok := payload[path.Field]
		return v, ok
	}
	group, ok := payload[path.Group].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := group[path.Field]
	return v, ok
}

func checkValue(path catalog.FieldPath, value any, c catalog.Constraint) error {
	switch c.Kind {
	case catalog.ConstraintEnum:
		s, _ := value.(string)
		for _, allowed := range c.Allowed {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("%w: field %s: value '%v' not in %v",
			ErrValueNotAllowed, path, value, c.Allowed)

	case catalog.ConstraintRange:
		n, ok := value.(float64)
		if !ok {
			return fmt.Errorf("%w: field %s: value '%v'", ErrNotNumeric, path, value)
		}
		if n < c.Min || n > c.Max {
			return fmt.Errorf("%w: field %s: value %v out of range [%v, %v]",
				ErrValueOutOfRange, path, n, c.Min, c.Max)
		}
	}
	return nil
}
