package cpu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"dcpu16/asm/ast"
	"dcpu16/dasm"
	"dcpu16/device"
)

type model struct {
	cpu     *Cpu
	devices []device.Device

	program     []uint16
	offset      uint16
	currentTick uint64

	prevPC uint16
	error  error
}

const wordsPerPage = 8
const pageCount = 5

// Init loads the program into Ram at offset and sets PC there.
func (m model) Init() tea.Cmd {
	m.cpu.Load(m.program, m.offset)
	m.cpu.SetPC(m.offset)
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.cpu.PC()
			if err := m.step(); err != nil {
				m.error = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// step advances the CPU one tick, then every device one tick, routing any
// resulting hardware interrupt back into the CPU queue -- the same
// CPU-then-devices ordering as machine.Computer.Tick, duplicated here in
// miniature since the debugger lives in package cpu and so cannot import
// package machine without creating an import cycle.
func (m *model) step() error {
	if _, err := m.cpu.Tick(m.devices); err != nil {
		return err
	}
	for _, d := range m.devices {
		result, err := d.Tick(m.cpu, m.currentTick)
		if err != nil {
			return err
		}
		if result.Interrupt {
			m.cpu.TriggerInterrupt(result.Message)
		}
	}
	m.currentTick++
	return nil
}

// renderPage renders one page of RAM as a disassembly listing starting at
// start, highlighting the instruction at PC.
func (m model) renderPage(start uint16) string {
	words := m.cpu.ram.IterWrap(start, wordsPerPage*3)
	d := dasm.New(dasm.NewSliceSource(words))

	var b strings.Builder
	fmt.Fprintf(&b, "%04x | ", start)
	for i := 0; i < wordsPerPage; i++ {
		entry, ok := d.Next()
		if !ok {
			break
		}
		addr := start + entry.Address
		text := entry.Text()
		if addr == m.cpu.PC() {
			fmt.Fprintf(&b, "[%04x %s] ", addr, text)
		} else {
			fmt.Fprintf(&b, " %04x %s  ", addr, text)
		}
	}
	return b.String()
}

func (m model) status() string {
	var devs strings.Builder
	for i, d := range m.devices {
		fmt.Fprintf(&devs, "dev%d: %s\n", i, d.Inspect())
	}
	return fmt.Sprintf(`
 PC: %04x (%04x)
 SP: %04x
 EX: %04x
 IA: %04x
  A: %04x  B: %04x  C: %04x
  X: %04x  Y: %04x  Z: %04x
  I: %04x  J: %04x
halted: %v  tick: %d
%s`,
		m.cpu.PC(), m.prevPC,
		m.cpu.SP(), m.cpu.EX(), m.cpu.IA(),
		m.cpu.Reg(ast.A), m.cpu.Reg(ast.B), m.cpu.Reg(ast.C),
		m.cpu.Reg(ast.X), m.cpu.Reg(ast.Y), m.cpu.Reg(ast.Z),
		m.cpu.Reg(ast.I), m.cpu.Reg(ast.J),
		m.cpu.Halted(), m.currentTick,
		devs.String(),
	)
}

func (m model) pageTable() string {
	var b strings.Builder
	fmt.Fprintf(&b, "addr | disassembly\n")
	pc := int(m.cpu.PC())
	for p := 0; p < pageCount; p++ {
		start := uint16(pc + p*wordsPerPage*3)
		b.WriteString(m.renderPage(start))
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(m.cpu.LogQueue),
	)
}

// Debug loads program into Ram at offset, attaches devices, then runs an
// interactive single-step TUI: space/j advances one tick, q quits.
func (c *Cpu) Debug(program []uint16, offset uint16, devices []device.Device) {
	p, err := tea.NewProgram(model{
		cpu:     c,
		devices: devices,
		program: program,
		offset:  offset,
	}).Run()
	if err != nil {
		panic(err)
	}
	m := p.(model)
	if m.error != nil {
		fmt.Println("Error:", m.error)
	}
}
