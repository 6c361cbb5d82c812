package session

import (
	"github.com/BurntSushi/wlb"
	"github.com/BurntSushi/wlb/wl"
	"github.com/BurntSushi/wlb/xdg"
	"github.com/pkg/errors"
)

// EventSource is the blocking event queue of a connection. *wlb.Conn
// implements it.
type EventSource interface {
	WaitForEvent() (wlb.Event, error)
	PollForEvent() (wlb.Event, error)
}

var _ EventSource = (*wlb.Conn)(nil)

// Dispatch hands one event to its handler. Events the session has no use
// for, or that arrive in the wrong phase, are ignored. A returned error
// comes from the connection and is fatal.
func (s *State) Dispatch(ev wlb.Event) error {
	switch ev := ev.(type) {
	case wl.RegistryGlobalEvent:
		return s.handleGlobal(ev)
	case xdg.WmBasePingEvent:
		return ev.WmBase.Pong(ev.Serial)
	case xdg.SurfaceConfigureEvent:
		return s.handleConfigure(ev)
	case xdg.ToplevelCloseEvent:
		s.handleClose()
	case wl.SeatCapabilitiesEvent:
		return s.handleCapabilities(ev)
	case wl.KeyboardKeymapEvent:
		s.handleKeymap(ev)
	case wl.KeyboardKeyEvent:
		s.handleKey(ev)
	}
	return nil
}

// BlockingDispatch waits for at least one event, then dispatches
// everything already queued. It stops early once the session is done.
func (s *State) BlockingDispatch(src EventSource) error {
	ev, err := src.WaitForEvent()
	if err != nil {
		return errors.Wrap(err, "dispatch")
	}
	for ev != nil {
		if err := s.Dispatch(ev); err != nil {
			return errors.Wrap(err, "dispatch")
		}
		if !s.Running() {
			return nil
		}
		ev, err = src.PollForEvent()
		if err != nil {
			return errors.Wrap(err, "dispatch")
		}
	}
	return nil
}

// DispatchPending dispatches queued events without blocking.
func (s *State) DispatchPending(src EventSource) error {
	for s.Running() {
		ev, err := src.PollForEvent()
		if err != nil {
			return errors.Wrap(err, "dispatch")
		}
		if ev == nil {
			return nil
		}
		if err := s.Dispatch(ev); err != nil {
			return errors.Wrap(err, "dispatch")
		}
	}
	return nil
}

// Run dispatches until the window is closed or the connection fails.
func (s *State) Run(src EventSource) error {
	for s.Running() {
		if err := s.BlockingDispatch(src); err != nil {
			return err
		}
	}
	return nil
}
