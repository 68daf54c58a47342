package device

import "fmt"

// InvalidCommandError reports a command code in register A that a device
// does not recognize.
type InvalidCommandError struct {
	Command uint16
}

func (e InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid hardware command: %#x", e.Command)
}

// BackendStoppedError reports that a device's host-side backend (the
// keyboard's input source, the screen's rendering surface) is gone --
// raised by the out-of-core-scope graphics/input thread, named here so the
// contract is in one place even though no in-tree backend implements it.
type BackendStoppedError struct {
	Which string
}

func (e BackendStoppedError) Error() string {
	return fmt.Sprintf("the %s backend stopped", e.Which)
}
