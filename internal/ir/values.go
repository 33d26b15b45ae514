package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is one named classification bucket of a control signal.
type Value struct {
	Name         string   `json:"name" yaml:"name"`
	Instructions []string `json:"instructions" yaml:"instructions"`
}

// ValueMapping is an ordered mapping from value name to instruction names.
// It serializes as a JSON object whose key order is the slice order.
type ValueMapping []Value

// Names returns the value names in order.
func (m ValueMapping) Names() []string {
	names := make([]string, len(m))
	for i, v := range m {
		names[i] = v.Name
	}
	return names
}

// Lookup returns the instructions of the named value.
func (m ValueMapping) Lookup(name string) ([]string, bool) {
	for _, v := range m {
		if v.Name == name {
			return v.Instructions, true
		}
	}
	return nil, false
}

// Instructions returns the deduplicated union of every value's instructions,
// in first-appearance order.
func (m ValueMapping) Instructions() []string {
	seen := make(map[string]bool)
	union := []string{}
	for _, v := range m {
		for _, inst := range v.Instructions {
			if seen[inst] {
				continue
			}
			seen[inst] = true
			union = append(union, inst)
		}
	}
	return union
}

// Clone returns a deep copy of the mapping.
func (m ValueMapping) Clone() ValueMapping {
	if m == nil {
		return nil
	}
	out := make(ValueMapping, len(m))
	for i, v := range m {
		out[i] = Value{Name: v.Name, Instructions: append([]string{}, v.Instructions...)}
	}
	return out
}

// MarshalJSON writes the mapping as an object, preserving order.
func (m ValueMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		insts := v.Instructions
		if insts == nil {
			insts = []string{}
		}
		list, err := json.Marshal(insts)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of string lists, preserving key order.
// Duplicate keys are rejected.
func (m *ValueMapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("values: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("values: expected object, got %v", tok)
	}

	out := ValueMapping{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("values: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("values: expected key, got %v", tok)
		}
		if seen[name] {
			return fmt.Errorf("values: duplicate value name %q", name)
		}
		seen[name] = true

		var insts []string
		if err := dec.Decode(&insts); err != nil {
			return fmt.Errorf("values[%q]: %w", name, err)
		}
		if insts == nil {
			insts = []string{}
		}
		out = append(out, Value{Name: name, Instructions: insts})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("values: %w", err)
	}

	*m = out
	return nil
}
