package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dcpu16/asm/ast"
)

func TestKeyboardGetNextFIFO(t *testing.T) {
	k := NewKeyboard()
	m := &fakeMachine{}
	k.PressKey('a')
	k.PressKey('b')

	m.SetReg(ast.A, 1) // GET_NEXT
	_, err := k.Interrupt(m)
	assert.NoError(t, err)
	assert.Equal(t, uint16('a'), m.Reg(ast.C))

	_, err = k.Interrupt(m)
	assert.NoError(t, err)
	assert.Equal(t, uint16('b'), m.Reg(ast.C))

	_, err = k.Interrupt(m) // buffer empty
	assert.NoError(t, err)
	assert.Equal(t, uint16(0), m.Reg(ast.C))
}

func TestKeyboardBufferCapsAtEight(t *testing.T) {
	k := NewKeyboard()
	for i := 0; i < 10; i++ {
		k.PressKey('a' + uint16(i))
	}
	assert.Len(t, k.keyBuffer, 8)
	assert.Equal(t, uint16('a'+2), k.keyBuffer[0])
}

func TestKeyboardCheckKey(t *testing.T) {
	k := NewKeyboard()
	m := &fakeMachine{}
	k.PressKey(KeyShift)

	m.SetReg(ast.A, 2) // CHECK_KEY
	m.SetReg(ast.B, KeyShift)
	_, err := k.Interrupt(m)
	assert.NoError(t, err)
	assert.Equal(t, uint16(1), m.Reg(ast.C))

	k.ReleaseKey(KeyShift)
	_, err = k.Interrupt(m)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0), m.Reg(ast.C))
}

func TestKeyboardClearBuffer(t *testing.T) {
	k := NewKeyboard()
	m := &fakeMachine{}
	k.PressKey('x')
	m.SetReg(ast.A, 0) // CLEAR_BUFFER
	_, err := k.Interrupt(m)
	assert.NoError(t, err)
	assert.Empty(t, k.keyBuffer)
}

func TestKeyboardTickFiresOnlyWhenIntSet(t *testing.T) {
	k := NewKeyboard()
	m := &fakeMachine{}
	k.PressKey('q')
	res, err := k.Tick(m, 0)
	assert.NoError(t, err)
	assert.False(t, res.Interrupt)

	m.SetReg(ast.A, 3) // SET_INT
	m.SetReg(ast.B, 0x50)
	k.Interrupt(m)
	k.PressKey('r')
	res, err = k.Tick(m, 0)
	assert.NoError(t, err)
	assert.True(t, res.Interrupt)
	assert.Equal(t, uint16(0x50), res.Message)
}
