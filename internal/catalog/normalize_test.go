package catalog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEncodingRISCVAdd(t *testing.T) {
	in := "0000000----------000-----0110011"
	want := "0000000??????????000?????0110011"
	assert.Len(t, in, 32)
	assert.Equal(t, want, NormalizeEncoding(in))
}

func TestNormalizeEncodingSpacesAndLetters(t *testing.T) {
	assert.Equal(t, "000?0000?????????", NormalizeEncoding("000 0000-----rd--"))
	assert.Equal(t, "", NormalizeEncoding(""))
	assert.Equal(t, "????", NormalizeEncoding("    "))
}

func TestNormalizeEncodingProperties(t *testing.T) {
	alphabet := []byte("01- x?\tab")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		raw := make([]byte, rng.Intn(40))
		for j := range raw {
			raw[j] = alphabet[rng.Intn(len(alphabet))]
		}
		got := NormalizeEncoding(string(raw))

		if !assert.Len(t, got, len(raw)) {
			continue
		}
		for j := range raw {
			switch raw[j] {
			case '0', '1':
				assert.Equal(t, raw[j], got[j], "position %d of %q", j, raw)
			default:
				assert.Equal(t, byte('?'), got[j], "position %d of %q", j, raw)
			}
		}
	}
}
