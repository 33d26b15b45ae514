package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidthOneHotIsValueCount(t *testing.T) {
	for n := 0; n <= 40; n++ {
		assert.Equal(t, n, Width(OneHot, n), "OneHot with %d values", n)
	}
}

func TestWidthBinaryAndGray(t *testing.T) {
	tests := []struct {
		values int
		want   int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{16, 4},
		{17, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Width(Binary, tt.values), "Binary with %d values", tt.values)
		assert.Equal(t, tt.want, Width(Gray, tt.values), "Gray with %d values", tt.values)
	}
}

func TestParseEncodingType(t *testing.T) {
	tests := []struct {
		in   string
		want EncodingType
	}{
		{"OneHot", OneHot},
		{"onehot", OneHot},
		{" Binary ", Binary},
		{"GRAY", Gray},
		{"", OneHot},
	}
	for _, tt := range tests {
		got, err := ParseEncodingType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseEncodingType("Thermometer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Thermometer")
}

func TestEncodingTypeValid(t *testing.T) {
	for _, e := range EncodingTypes {
		assert.True(t, e.Valid(), e)
	}
	assert.False(t, EncodingType("onehot").Valid())
	assert.False(t, EncodingType("").Valid())
}
