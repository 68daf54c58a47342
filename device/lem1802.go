package device

import (
	"fmt"

	"dcpu16/asm/ast"
	"dcpu16/word"
)

type lemCommand uint16

const (
	lemMemMapScreen   lemCommand = 0x0
	lemMemMapFont     lemCommand = 0x1
	lemMemMapPalette  lemCommand = 0x2
	lemSetBorderColor lemCommand = 0x3
)

const (
	maskIndex    = 0xf
	screenHeight = 96
	screenWidth  = 128
	screenSize   = screenWidth * screenHeight
	charHeight   = 8
	charWidth    = 4
	charSize     = charHeight * charWidth
	nbChars      = 32 * 12
	vramWords    = 386
)

// Color is an unpacked LEM1802 palette entry, normalized to [0,1] for easy
// rendering.
type Color struct {
	R, G, B  float32
	Blinking bool
}

// colorFromPacked unpacks a palette word's 4-bit RGB nibbles using word's
// 1-indexed-from-MSB bit ranges (bits 15..0 are word.B1..word.B16).
func colorFromPacked(c uint16) Color {
	return Color{
		R: float32(word.Range(c, word.B5, word.B8)) / 0xf,
		G: float32(word.Range(c, word.B9, word.B12)) / 0xf,
		B: float32(word.Range(c, word.B13, word.B16)) / 0xf,
	}
}

type videoWord struct {
	charIdx, bgIdx, fgIdx uint16
	blinking              bool
}

func videoWordFromPacked(w uint16) videoWord {
	return videoWord{
		charIdx:  word.Range(w, word.B10, word.B16),
		bgIdx:    word.Range(w, word.B5, word.B8),
		fgIdx:    word.Range(w, word.B1, word.B4),
		blinking: word.IsSet(w, word.B9),
	}
}

// Screen is a fully decoded LEM1802 frame: one Color per pixel, row-major,
// top to bottom then left to right.
type Screen [screenSize]Color

// RawScreen is the snapshot of VRAM/font/palette a LEM1802 renders from.
type RawScreen struct {
	Vram    [vramWords]uint16
	Font    [256]uint16
	Palette [16]uint16
}

func (r *RawScreen) getFont(charIdx uint16) uint32 {
	w0, w1 := r.Font[charIdx*2], r.Font[charIdx*2+1]
	return uint32(w0)<<16 | uint32(w1)
}

func (r *RawScreen) getColor(idx uint16) Color {
	return colorFromPacked(r.Palette[idx])
}

func (r *RawScreen) addChar(screen *Screen, charOffset uint16) {
	vw := videoWordFromPacked(r.Vram[charOffset])
	fontItem := r.getFont(vw.charIdx)
	for x := uint16(0); x < charWidth; x++ {
		for y := uint16(0); y < charHeight; y++ {
			bit := (fontItem >> (x*charHeight + 7 - y)) & 1
			colorIdx := vw.bgIdx
			if bit != 0 {
				colorIdx = vw.fgIdx
			}
			color := r.getColor(colorIdx)
			color.Blinking = vw.blinking

			byteOffset := (charOffset/32)*(charSize*32) + (charOffset%32)*charWidth
			idx := byteOffset + (charWidth - x - 1) + screenWidth*(charHeight-y-1)
			screen[idx] = color
		}
	}
}

// Render decodes the RawScreen into a full Screen of pixels.
func (r *RawScreen) Render() *Screen {
	screen := &Screen{}
	for offset := uint16(0); offset < nbChars; offset++ {
		r.addChar(screen, offset)
	}
	return screen
}

// LEM1802 is the generic color graphics card: a 128x96 character-cell
// display driven entirely through its VRAM/font/palette memory maps.
type LEM1802 struct {
	videoMap, fontMap, paletteMap uint16
	borderColorIndex              uint16
}

// NewLEM1802 returns a disabled LEM1802 (no memory map set).
func NewLEM1802() *LEM1802 {
	return &LEM1802{}
}

func (l *LEM1802) HardwareID() uint32      { return 0x7349f615 }
func (l *LEM1802) HardwareVersion() uint16 { return 0x1802 }
func (l *LEM1802) Manufacturer() uint32    { return 0x1c6c8b36 }

func (l *LEM1802) Interrupt(m Machine) (int, error) {
	a := m.Reg(ast.A)
	b := m.Reg(ast.B)
	switch lemCommand(a) {
	case lemMemMapScreen:
		l.videoMap = b
	case lemMemMapFont:
		l.fontMap = b
	case lemMemMapPalette:
		l.paletteMap = b
	case lemSetBorderColor:
		l.borderColorIndex = b & maskIndex
	default:
		return 0, InvalidCommandError{Command: a}
	}
	return 0, nil
}

func (l *LEM1802) Tick(m Machine, currentTick uint64) (TickResult, error) {
	return TickResult{}, nil
}

func (l *LEM1802) Inspect() string {
	if l.videoMap == 0 {
		return "LEM1802: disabled"
	}
	return fmt.Sprintf("LEM1802: vram at %#x, border color %#x", l.videoMap, l.borderColorIndex)
}

// BorderColor returns the current border color, resolved against the
// built-in palette or the mapped one.
func (l *LEM1802) BorderColor(m Machine) Color {
	return l.snapshot(m).getColor(l.borderColorIndex)
}

// Enabled reports whether MEM_MAP_SCREEN has mapped a non-zero address.
func (l *LEM1802) Enabled() bool { return l.videoMap != 0 }

// GetRawScreen copies the mapped VRAM/font/palette out of m's RAM, falling
// back to the built-in font and palette when unmapped. It returns nil when
// the screen has not been mapped at all.
func (l *LEM1802) GetRawScreen(m Machine) *RawScreen {
	if l.videoMap == 0 {
		return nil
	}
	return l.snapshot(m)
}

func (l *LEM1802) snapshot(m Machine) *RawScreen {
	r := &RawScreen{}
	copy(r.Vram[:], m.Ram().IterWrap(l.videoMap, vramWords))
	if l.fontMap == 0 {
		r.Font = defaultFont
	} else {
		copy(r.Font[:], m.Ram().IterWrap(l.fontMap, 256))
	}
	if l.paletteMap == 0 {
		r.Palette = defaultPalette
	} else {
		copy(r.Palette[:], m.Ram().IterWrap(l.paletteMap, 16))
	}
	return r
}

// Taken from the built-in LEM1802 font and palette ROM every reference
// emulator ships with.
var defaultFont = [256]uint16{
	0x000F, 0x0808, 0x080F, 0x0808, 0x08F8, 0x0808, 0x00FF, 0x0808,
	0x0808, 0x0808, 0x08FF, 0x0808, 0x00FF, 0x1414, 0xFF00, 0xFF08,
	0x1F10, 0x1714, 0xFC04, 0xF414, 0x1710, 0x1714, 0xF404, 0xF414,
	0xFF00, 0xF714, 0x1414, 0x1414, 0xF700, 0xF714, 0x1417, 0x1414,
	0x0F08, 0x0F08, 0x14F4, 0x1414, 0xF808, 0xF808, 0x0F08, 0x0F08,
	0x001F, 0x1414, 0x00FC, 0x1414, 0xF808, 0xF808, 0xFF08, 0xFF08,
	0x14FF, 0x1414, 0x080F, 0x0000, 0x00F8, 0x0808, 0xFFFF, 0xFFFF,
	0xF0F0, 0xF0F0, 0xFFFF, 0x0000, 0x0000, 0xFFFF, 0x0F0F, 0x0F0F,
	0x0000, 0x0000, 0x005f, 0x0000, 0x0300, 0x0300, 0x3e14, 0x3e00,
	0x266b, 0x3200, 0x611c, 0x4300, 0x3629, 0x7650, 0x0002, 0x0100,
	0x1c22, 0x4100, 0x4122, 0x1c00, 0x1408, 0x1400, 0x081c, 0x0800,
	0x4020, 0x0000, 0x0808, 0x0800, 0x0040, 0x0000, 0x601c, 0x0300,
	0x3e49, 0x3e00, 0x427f, 0x4000, 0x6259, 0x4600, 0x2249, 0x3600,
	0x0f08, 0x7f00, 0x2745, 0x3900, 0x3e49, 0x3200, 0x6119, 0x0700,
	0x3649, 0x3600, 0x2649, 0x3e00, 0x0024, 0x0000, 0x4024, 0x0000,
	0x0814, 0x2200, 0x1414, 0x1400, 0x2214, 0x0800, 0x0259, 0x0600,
	0x3e59, 0x5e00, 0x7e09, 0x7e00, 0x7f49, 0x3600, 0x3e41, 0x2200,
	0x7f41, 0x3e00, 0x7f49, 0x4100, 0x7f09, 0x0100, 0x3e41, 0x7a00,
	0x7f08, 0x7f00, 0x417f, 0x4100, 0x2040, 0x3f00, 0x7f08, 0x7700,
	0x7f40, 0x4000, 0x7f06, 0x7f00, 0x7f01, 0x7e00, 0x3e41, 0x3e00,
	0x7f09, 0x0600, 0x3e61, 0x7e00, 0x7f09, 0x7600, 0x2649, 0x3200,
	0x017f, 0x0100, 0x3f40, 0x7f00, 0x1f60, 0x1f00, 0x7f30, 0x7f00,
	0x7708, 0x7700, 0x0778, 0x0700, 0x7149, 0x4700, 0x007f, 0x4100,
	0x031c, 0x6000, 0x417f, 0x0000, 0x0201, 0x0200, 0x8080, 0x8000,
	0x0001, 0x0200, 0x2454, 0x7800, 0x7f44, 0x3800, 0x3844, 0x2800,
	0x3844, 0x7f00, 0x3854, 0x5800, 0x087e, 0x0900, 0x4854, 0x3c00,
	0x7f04, 0x7800, 0x047d, 0x0000, 0x2040, 0x3d00, 0x7f10, 0x6c00,
	0x017f, 0x0000, 0x7c18, 0x7c00, 0x7c04, 0x7800, 0x3844, 0x3800,
	0x7c14, 0x0800, 0x0814, 0x7c00, 0x7c04, 0x0800, 0x4854, 0x2400,
	0x043e, 0x4400, 0x3c40, 0x7c00, 0x1c60, 0x1c00, 0x7c30, 0x7c00,
	0x6c10, 0x6c00, 0x4c50, 0x3c00, 0x6454, 0x4c00, 0x0836, 0x4100,
	0x0077, 0x0000, 0x4136, 0x0800, 0x0201, 0x0201, 0x0205, 0x0200,
}

var defaultPalette = [16]uint16{
	0x000, 0x00a, 0x0a0, 0x0aa, 0xa00, 0xa0a, 0xa50, 0xaaa,
	0x555, 0x55f, 0x5f5, 0x5ff, 0xf55, 0xf5f, 0xff5, 0xfff,
}
