package session

import (
	"github.com/BurntSushi/wlb/wl"
	"golang.org/x/sys/unix"
)

// KeyEscape is the evdev code of the Escape key.
const KeyEscape = 1

// handleCapabilities asks for a keyboard whenever the seat says it has one.
func (s *State) handleCapabilities(ev wl.SeatCapabilitiesEvent) error {
	if !ev.HasKeyboard() {
		return nil
	}
	_, err := ev.Seat.GetKeyboard()
	return err
}

// handleKeymap closes the keymap descriptor; key codes are matched raw.
func (s *State) handleKeymap(ev wl.KeyboardKeymapEvent) {
	if ev.Fd < 0 {
		return
	}
	if err := unix.Close(ev.Fd); err != nil {
		s.log.Debug("closing keymap", "fd", ev.Fd, "err", err)
	}
}

func (s *State) handleKey(ev wl.KeyboardKeyEvent) {
	if ev.Key != KeyEscape {
		return
	}
	if in, ok := s.Phase.(*Initialized); ok {
		in.Running = false
	}
}
