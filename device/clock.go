package device

import (
	"fmt"
	"time"

	"dcpu16/asm/ast"
)

type clockCommand uint16

const (
	clockSetSpeed    clockCommand = 0x0
	clockGetTicks    clockCommand = 0x1
	clockSetInt      clockCommand = 0x2
	clockRealTime    clockCommand = 0x10
	clockRunTime     clockCommand = 0x11
	clockSetRealTime clockCommand = 0x12
	clockReset       clockCommand = 0xffff
)

// Clock is the generic clock device: a programmable interrupt timer plus,
// as an extension present in the original implementation this spec was
// distilled from, wall-clock read/write commands (REAL_TIME, RUN_TIME,
// SET_REAL_TIME).
type Clock struct {
	ticksPerSecond uint64
	speed          uint16
	intMsg         uint16
	lastCall       uint64
	nextTick       uint64
	deltaTime      time.Duration
}

// NewClock returns a Clock ticking at ticksPerSecond (conventionally
// 100000, per the DCPU-16 hardware spec).
func NewClock(ticksPerSecond uint64) *Clock {
	return &Clock{ticksPerSecond: ticksPerSecond}
}

func (c *Clock) HardwareID() uint32      { return 0x12d0b402 }
func (c *Clock) HardwareVersion() uint16 { return 1 }
func (c *Clock) Manufacturer() uint32    { return 0x1c6c8b36 }

func (c *Clock) Interrupt(m Machine) (int, error) {
	a := m.Reg(ast.A)
	b := m.Reg(ast.B)
	switch clockCommand(a) {
	case clockSetSpeed:
		c.speed = b
	case clockGetTicks:
		m.SetReg(ast.C, uint16(c.lastCall))
		c.lastCall = 0
	case clockSetInt:
		c.intMsg = b
	case clockRealTime:
		encodeTime(m, time.Now().Add(c.deltaTime))
	case clockRunTime:
		encodeTime(m, time.Time{}.Add(c.deltaTime))
	case clockSetRealTime:
		c.deltaTime = time.Since(decodeTime(m))
	case clockReset:
		*c = Clock{ticksPerSecond: c.ticksPerSecond}
	default:
		return 0, InvalidCommandError{Command: a}
	}
	return 0, nil
}

func (c *Clock) Tick(m Machine, currentTick uint64) (TickResult, error) {
	if c.speed != 0 && c.intMsg != 0 && currentTick >= c.nextTick {
		c.lastCall++
		c.nextTick = currentTick + uint64(c.speed)*c.ticksPerSecond/60
		return TickResult{Interrupt: true, Message: c.intMsg}, nil
	}
	return TickResult{}, nil
}

func (c *Clock) Inspect() string {
	if c.speed == 0 || c.intMsg == 0 {
		return "generic clock: disabled"
	}
	return fmt.Sprintf("generic clock: %.1f fps, int message %#x, %d fires since last GET_TICKS",
		60.0/float64(c.speed), c.intMsg, c.lastCall)
}

func encodeTime(m Machine, t time.Time) {
	m.SetReg(ast.B, uint16(t.Year()))
	m.SetReg(ast.C, uint16(t.Month())<<8|uint16(t.Day()))
	m.SetReg(ast.X, uint16(t.Hour())<<8|uint16(t.Minute()))
	m.SetReg(ast.Y, uint16(t.Second()))
	m.SetReg(ast.Z, uint16(t.Nanosecond()/1_000_000))
}

func decodeTime(m Machine) time.Time {
	year := int(m.Reg(ast.B))
	month := time.Month(m.Reg(ast.C) >> 8)
	day := int(m.Reg(ast.C) & 0xff)
	hour := int(m.Reg(ast.X) >> 8)
	minute := int(m.Reg(ast.X) & 0xff)
	second := int(m.Reg(ast.Y))
	nsec := int(m.Reg(ast.Z)) * 1_000_000
	return time.Date(year, month, day, hour, minute, second, nsec, time.UTC)
}
