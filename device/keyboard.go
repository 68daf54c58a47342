package device

import (
	"fmt"

	"dcpu16/asm/ast"
)

type keyboardCommand uint16

const (
	keyboardClearBuffer keyboardCommand = 0x0
	keyboardGetNext     keyboardCommand = 0x1
	keyboardCheckKey    keyboardCommand = 0x2
	keyboardSetInt      keyboardCommand = 0x3
)

// Named keys outside the ASCII range a Keyboard reports. ASCII keys (0x20
// through 0x7f) are encoded as their own character code.
const (
	KeyBackspace uint16 = 0x10
	KeyReturn    uint16 = 0x11
	KeyInsert    uint16 = 0x12
	KeyDelete    uint16 = 0x13
	KeyUp        uint16 = 0x80
	KeyDown      uint16 = 0x81
	KeyLeft      uint16 = 0x82
	KeyRight     uint16 = 0x83
	KeyShift     uint16 = 0x90
	KeyControl   uint16 = 0x91
)

func isValidKey(k uint16) bool {
	switch k {
	case KeyBackspace, KeyReturn, KeyInsert, KeyDelete,
		KeyUp, KeyDown, KeyLeft, KeyRight, KeyShift, KeyControl:
		return true
	}
	return k >= 0x20 && k <= 0x7f
}

// Keyboard is the generic keyboard: an 8-entry typed-key FIFO plus
// instantaneous key-down state for CHECK_KEY, fed by PressKey/ReleaseKey
// from whatever front end (a host terminal, a test) is driving input.
type Keyboard struct {
	keyBuffer []uint16
	intMsg    uint16
	pressed   map[uint16]bool
	dirty     bool
}

// NewKeyboard returns an empty, disabled Keyboard.
func NewKeyboard() *Keyboard {
	return &Keyboard{pressed: make(map[uint16]bool)}
}

// PressKey records a key-down event: it marks the key pressed for CHECK_KEY
// and appends it to the typed-key buffer (dropping the oldest entry past
// 8 queued keys), matching the original backend's behavior.
func (k *Keyboard) PressKey(key uint16) {
	if !isValidKey(key) {
		return
	}
	k.pressed[key] = true
	k.keyBuffer = append(k.keyBuffer, key)
	if len(k.keyBuffer) > 8 {
		k.keyBuffer = k.keyBuffer[1:]
	}
	k.dirty = true
}

// ReleaseKey records a key-up event.
func (k *Keyboard) ReleaseKey(key uint16) {
	if !isValidKey(key) {
		return
	}
	k.pressed[key] = false
}

func (k *Keyboard) HardwareID() uint32      { return 0x30cf7406 }
func (k *Keyboard) HardwareVersion() uint16 { return 1 }
func (k *Keyboard) Manufacturer() uint32    { return 0x1c6c8b36 }

func (k *Keyboard) Interrupt(m Machine) (int, error) {
	a := m.Reg(ast.A)
	b := m.Reg(ast.B)
	switch keyboardCommand(a) {
	case keyboardClearBuffer:
		k.keyBuffer = nil
	case keyboardGetNext:
		if len(k.keyBuffer) == 0 {
			m.SetReg(ast.C, 0)
		} else {
			m.SetReg(ast.C, k.keyBuffer[0])
			k.keyBuffer = k.keyBuffer[1:]
		}
	case keyboardCheckKey:
		if !isValidKey(b) {
			return 0, InvalidCommandError{Command: 0xffff}
		}
		if k.pressed[b] {
			m.SetReg(ast.C, 1)
		} else {
			m.SetReg(ast.C, 0)
		}
	case keyboardSetInt:
		k.intMsg = b
	default:
		return 0, InvalidCommandError{Command: a}
	}
	return 0, nil
}

func (k *Keyboard) Tick(m Machine, currentTick uint64) (TickResult, error) {
	if k.dirty {
		k.dirty = false
		if k.intMsg != 0 {
			return TickResult{Interrupt: true, Message: k.intMsg}, nil
		}
	}
	return TickResult{}, nil
}

func (k *Keyboard) Inspect() string {
	if k.intMsg == 0 {
		return "generic keyboard: disabled"
	}
	return fmt.Sprintf("generic keyboard: int message %#x, %d keys queued", k.intMsg, len(k.keyBuffer))
}
