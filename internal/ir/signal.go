package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// TimestampLayout is the wall-clock format of created_at and generated code headers.
const TimestampLayout = "2006-01-02 15:04:05"

// ControlSignal is a committed, persisted control-signal definition.
// Field order matches the record store document.
type ControlSignal struct {
	Name         string       `json:"name"`
	EncodingType EncodingType `json:"encoding_type"`
	Width        int          `json:"width"`
	Values       ValueMapping `json:"values"`
	CreatedAt    string       `json:"created_at"`
	Instructions []string     `json:"instructions"`
	SignalID     string       `json:"signal_id"`
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// NewSignalID derives a record ID from t with microsecond disambiguation,
// e.g. 20250102_150405_123456.
func NewSignalID(t time.Time) string {
	return fmt.Sprintf("%s_%06d", t.Format("20060102_150405"), t.Nanosecond()/int(time.Microsecond))
}

// NormalizeName trims surrounding space and applies Unicode NFC so that
// visually identical names compare equal.
func NormalizeName(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// CreatedTime parses CreatedAt in the local time zone.
// ok is false when the timestamp is missing or unparseable.
func (s ControlSignal) CreatedTime() (t time.Time, ok bool) {
	t, err := time.ParseInLocation(TimestampLayout, s.CreatedAt, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clone returns a deep copy of the record.
func (s ControlSignal) Clone() ControlSignal {
	out := s
	out.Values = s.Values.Clone()
	out.Instructions = append([]string{}, s.Instructions...)
	return out
}

// RecordError reports a record that violates the ControlSignal invariants.
type RecordError struct {
	SignalID string
	Problems []string
}

func (e *RecordError) Error() string {
	id := e.SignalID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("invalid signal record %s: %s", id, strings.Join(e.Problems, "; "))
}

// Validate checks the record invariants: required fields, known encoding,
// width consistent with the encoding, disjoint values, and instructions equal
// to the union of all values.
func (s ControlSignal) Validate() error {
	var problems []string

	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, "name is empty")
	}
	if strings.TrimSpace(s.SignalID) == "" {
		problems = append(problems, "signal_id is empty")
	}
	if !s.EncodingType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown encoding_type %q", s.EncodingType))
	} else if want := Width(s.EncodingType, len(s.Values)); s.Width != want {
		problems = append(problems, fmt.Sprintf("width %d does not match %s with %d value(s) (want %d)",
			s.Width, s.EncodingType, len(s.Values), want))
	}

	owner := make(map[string]string)
	for _, v := range s.Values {
		if strings.TrimSpace(v.Name) == "" {
			problems = append(problems, "value with empty name")
		}
		for _, inst := range v.Instructions {
			if prev, ok := owner[inst]; ok && prev != v.Name {
				problems = append(problems, fmt.Sprintf("instruction %q assigned to both %q and %q", inst, prev, v.Name))
				continue
			}
			owner[inst] = v.Name
		}
	}

	listed := make(map[string]bool, len(s.Instructions))
	for _, inst := range s.Instructions {
		listed[inst] = true
		if _, ok := owner[inst]; !ok {
			problems = append(problems, fmt.Sprintf("instruction %q is not assigned to any value", inst))
		}
	}
	for _, inst := range s.Values.Instructions() {
		if !listed[inst] {
			problems = append(problems, fmt.Sprintf("instruction %q missing from instructions", inst))
		}
	}

	if len(problems) > 0 {
		return &RecordError{SignalID: s.SignalID, Problems: problems}
	}
	return nil
}

// MarshalJSON writes an absent instruction list as [] so the record
// decodes again under UnmarshalJSON.
func (s ControlSignal) MarshalJSON() ([]byte, error) {
	type plain ControlSignal
	p := plain(s)
	if p.Instructions == nil {
		p.Instructions = []string{}
	}
	return json.Marshal(p)
}

// signalDocument mirrors ControlSignal with pointer fields so that missing
// keys can be told apart from zero values.
type signalDocument struct {
	Name         *string       `json:"name"`
	EncodingType *EncodingType `json:"encoding_type"`
	Width        *int          `json:"width"`
	Values       *ValueMapping `json:"values"`
	CreatedAt    *string       `json:"created_at"`
	Instructions *[]string     `json:"instructions"`
	SignalID     *string       `json:"signal_id"`
}

// UnmarshalJSON decodes a record strictly: unknown fields and missing
// required fields are errors.
func (s *ControlSignal) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc signalDocument
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("signal record: %w", err)
	}

	var missing []string
	if doc.Name == nil {
		missing = append(missing, "name")
	}
	if doc.EncodingType == nil {
		missing = append(missing, "encoding_type")
	}
	if doc.Width == nil {
		missing = append(missing, "width")
	}
	if doc.Values == nil {
		missing = append(missing, "values")
	}
	if doc.CreatedAt == nil {
		missing = append(missing, "created_at")
	}
	if doc.Instructions == nil {
		missing = append(missing, "instructions")
	}
	if doc.SignalID == nil {
		missing = append(missing, "signal_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("signal record: missing field(s) %s", strings.Join(missing, ", "))
	}

	*s = ControlSignal{
		Name:         *doc.Name,
		EncodingType: *doc.EncodingType,
		Width:        *doc.Width,
		Values:       *doc.Values,
		CreatedAt:    *doc.CreatedAt,
		Instructions: *doc.Instructions,
		SignalID:     *doc.SignalID,
	}
	return nil
}
