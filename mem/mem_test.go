package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWrite(t *testing.T) {
	r := New()
	r.Write(0x1000, 0xbeef)
	assert.Equal(t, uint16(0xbeef), r.Read(0x1000))
}

func TestLoad(t *testing.T) {
	r := New()
	r.Load([]uint16{1, 2, 3}, 0xfffe)
	assert.Equal(t, uint16(1), r.Read(0xfffe))
	assert.Equal(t, uint16(2), r.Read(0xffff))
	assert.Equal(t, uint16(3), r.Read(0x0000)) // wraps
}

func TestIterWrapAndCopyWrap(t *testing.T) {
	r := New()
	r.Write(0xfffe, 10)
	r.Write(0xffff, 20)
	r.Write(0x0000, 30)
	got := r.IterWrap(0xfffe, 3)
	assert.Equal(t, []uint16{10, 20, 30}, got)

	r2 := New()
	r2.CopyWrap([]uint16{100, 200, 300}, 0xffff)
	assert.Equal(t, uint16(100), r2.Read(0xffff))
	assert.Equal(t, uint16(200), r2.Read(0x0000))
	assert.Equal(t, uint16(300), r2.Read(0x0001))
}

func TestGetString(t *testing.T) {
	r := New()
	msg := "hi"
	for i, c := range msg {
		r.Write(uint16(i), uint16(c))
	}
	assert.Equal(t, "hi", r.GetString(0))
}
