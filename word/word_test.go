package word

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLast(t *testing.T) {
	assert.Equal(t, uint16(0x0f), Last(0xabcf, B4))
	assert.Equal(t, uint16(0xbcf), Last(0xabcf, B12))
}

func TestFirst(t *testing.T) {
	assert.Equal(t, uint16(0xa), First(0xabcf, B4))
}

func TestRange(t *testing.T) {
	// 0b1010_1011_1100_1111, bits 5..8 (1-indexed) == 0b1011 == 0xb
	assert.Equal(t, uint16(0xb), Range(0xabcf, B5, B8))
}

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(0x8000, B1))
	assert.False(t, IsSet(0x7fff, B1))
}

func TestUnset(t *testing.T) {
	assert.Equal(t, uint16(0x7fff), Unset(0xffff, B1, B1))
}

func TestFlip(t *testing.T) {
	assert.Equal(t, uint16(0x0000), Flip(0xffff, B1, B16))
}

func TestLoHi(t *testing.T) {
	assert.Equal(t, byte(0xcd), Lo(0xabcd))
	assert.Equal(t, byte(0xab), Hi(0xabcd))
}
