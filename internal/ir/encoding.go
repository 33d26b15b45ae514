package ir

import (
	"fmt"
	"math/bits"
	"strings"
)

// EncodingType selects how a control signal's values are encoded in hardware.
type EncodingType string

const (
	OneHot EncodingType = "OneHot"
	Binary EncodingType = "Binary"
	Gray   EncodingType = "Gray"
)

// EncodingTypes lists the supported encodings in display order.
var EncodingTypes = []EncodingType{OneHot, Binary, Gray}

// Valid reports whether e is one of the supported encodings.
func (e EncodingType) Valid() bool {
	switch e {
	case OneHot, Binary, Gray:
		return true
	}
	return false
}

func (e EncodingType) String() string { return string(e) }

// ParseEncodingType parses an encoding name, ignoring case and surrounding space.
// An empty string selects OneHot.
func ParseEncodingType(s string) (EncodingType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OneHot, nil
	}
	for _, e := range EncodingTypes {
		if strings.EqualFold(s, string(e)) {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown encoding type %q: must be one of %v", s, EncodingTypes)
}

// Width returns the signal bit-width for valueCount values.
//
// OneHot uses one bit per value. Binary and Gray need enough bits to
// represent valueCount-1, so zero or one value yields width 0.
func Width(enc EncodingType, valueCount int) int {
	if valueCount <= 0 {
		return 0
	}
	if enc == OneHot {
		return valueCount
	}
	return bits.Len(uint(valueCount - 1))
}
