package device

import (
	"fmt"

	"dcpu16/asm/ast"
)

const (
	sectorsPerTrack = 18
	totalSectors    = 1440
	sectorWords     = 512

	trackSeekTicks  = 100000 / 24
	sectorSeekTicks = 2400
)

type m35fdCommand uint16

const (
	m35fdPollDevice   m35fdCommand = 0
	m35fdSetInt       m35fdCommand = 1
	m35fdReadSector   m35fdCommand = 2
	m35fdWriteSector  m35fdCommand = 3
)

// StateCode is the disk-drive status POLL_DEVICE reports in register B.
type StateCode uint16

const (
	StateNoMedia StateCode = 0
	StateReady   StateCode = 1
	StateReadyWP StateCode = 2
	StateBusy    StateCode = 3
)

// ErrorCode is the last-operation error POLL_DEVICE reports in register C.
type ErrorCode uint16

const (
	ErrorNone      ErrorCode = 0
	ErrorBusy      ErrorCode = 1
	ErrorNoMedia   ErrorCode = 2
	ErrorProtected ErrorCode = 3
	ErrorEject     ErrorCode = 4
	ErrorBadSector ErrorCode = 5
	ErrorBroken    ErrorCode = 0xffff
)

type diskSide int

const (
	sideRead diskSide = iota
	sideWrite
)

type diskOperation struct {
	tickDelay uint64
	sector    uint16
	address   uint16
	side      diskSide
}

// Floppy is a disk image: 1440 sectors of 512 words each.
type Floppy struct {
	Data            [totalSectors][sectorWords]uint16
	WriteProtected  bool
}

// NewFloppy returns a blank, writable floppy disk.
func NewFloppy() *Floppy {
	return &Floppy{}
}

// M35FD is the generic 3.5" floppy drive.
type M35FD struct {
	floppy          *Floppy
	lastError       ErrorCode
	intMsg          uint16
	op              *diskOperation
	currentSector   uint16
	doIntNextTick   bool
}

// NewM35FD returns an empty drive (no floppy loaded).
func NewM35FD() *M35FD {
	return &M35FD{}
}

// Eject removes the loaded floppy, cancelling any pending operation with
// ErrorEject, and returns it (nil if none was loaded).
func (d *M35FD) Eject() *Floppy {
	d.interruptPendingOperation()
	f := d.floppy
	d.floppy = nil
	return f
}

// Load inserts a floppy, cancelling any operation pending against a
// previously loaded one.
func (d *M35FD) Load(f *Floppy) {
	d.interruptPendingOperation()
	d.floppy = f
}

func (d *M35FD) interruptPendingOperation() {
	if d.op != nil {
		d.op = nil
		d.currentSector = 0
		d.lastError = ErrorEject
		d.doIntNextTick = true
	}
}

func (d *M35FD) HardwareID() uint32      { return 0x4fd524c5 }
func (d *M35FD) HardwareVersion() uint16 { return 0x000b }
func (d *M35FD) Manufacturer() uint32    { return 0x1eb37e91 }

func (d *M35FD) Interrupt(m Machine) (int, error) {
	a := m.Reg(ast.A)
	switch m35fdCommand(a) {
	case m35fdPollDevice:
		m.SetReg(ast.B, uint16(d.state()))
		m.SetReg(ast.C, uint16(d.lastError))
	case m35fdSetInt:
		d.intMsg = m.Reg(ast.X)
	case m35fdReadSector:
		d.startUserCommand(m, sideRead)
	case m35fdWriteSector:
		d.startUserCommand(m, sideWrite)
	default:
		return 0, InvalidCommandError{Command: a}
	}
	return 0, nil
}

func (d *M35FD) state() StateCode {
	if d.floppy == nil {
		return StateNoMedia
	}
	if d.op != nil {
		return StateBusy
	}
	if d.floppy.WriteProtected {
		return StateReadyWP
	}
	return StateReady
}

func (d *M35FD) startUserCommand(m Machine, side diskSide) {
	sector := m.Reg(ast.X)
	address := m.Reg(ast.Y)

	switch {
	case sector >= totalSectors:
		d.lastError = ErrorBadSector
	case d.op != nil:
		d.lastError = ErrorBusy
	case d.floppy == nil:
		d.lastError = ErrorNoMedia
	case side == sideWrite && d.floppy.WriteProtected:
		d.lastError = ErrorProtected
	default:
		delay := sectorDistance(d.currentSector, sector)
		d.op = &diskOperation{tickDelay: delay, sector: sector, address: address, side: side}
		d.currentSector = sector
		d.lastError = ErrorNone
	}

	if d.lastError == ErrorNone {
		m.SetReg(ast.B, 1)
	} else {
		m.SetReg(ast.B, 0)
	}
}

func (d *M35FD) Tick(m Machine, currentTick uint64) (TickResult, error) {
	modified := false
	if d.op != nil {
		switch {
		case d.floppy == nil:
			d.lastError = ErrorEject
			d.op = nil
			modified = true
		case d.op.tickDelay == 0:
			d.doOperation(m, d.op)
			d.lastError = ErrorNone
			d.op = nil
			modified = true
		default:
			d.op.tickDelay--
		}
	}

	if (modified || d.doIntNextTick) && d.intMsg != 0 {
		d.doIntNextTick = false
		return TickResult{Interrupt: true, Message: d.intMsg}, nil
	}
	return TickResult{}, nil
}

func (d *M35FD) doOperation(m Machine, op *diskOperation) {
	sector := &d.floppy.Data[op.sector]
	switch op.side {
	case sideRead:
		m.Ram().CopyWrap(sector[:], op.address)
	case sideWrite:
		copy(sector[:], m.Ram().IterWrap(op.address, sectorWords))
	}
}

func (d *M35FD) Inspect() string {
	if d.intMsg == 0 {
		return "m35fd: disabled"
	}
	if d.floppy == nil {
		return fmt.Sprintf("m35fd: int message %#x, no floppy loaded", d.intMsg)
	}
	kind := "read-write"
	if d.floppy.WriteProtected {
		kind = "read-only"
	}
	return fmt.Sprintf("m35fd: int message %#x, floppy loaded (%s), last error %d", d.intMsg, kind, d.lastError)
}

func sectorDistance(from, to uint16) uint64 {
	sectorsToSkip := absDiff(int(from%sectorsPerTrack), int(to%sectorsPerTrack))
	tracksToSkip := absDiff(int(from/sectorsPerTrack), int(to/sectorsPerTrack))
	return uint64(tracksToSkip)*trackSeekTicks + uint64(sectorsToSkip)*sectorSeekTicks
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
