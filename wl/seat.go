package wl

import (
	"github.com/BurntSushi/wlb"
	"github.com/pkg/errors"
)

const (
	SeatInterface = "wl_seat"

	seatGetKeyboard = 1

	seatCapabilities = 0
	seatName         = 1

	keyboardKeymap     = 0
	keyboardEnter      = 1
	keyboardLeave      = 2
	keyboardKey        = 3
	keyboardModifiers  = 4
	keyboardRepeatInfo = 5
)

// Seat capability bits.
const (
	SeatCapabilityPointer  = 1
	SeatCapabilityKeyboard = 2
	SeatCapabilityTouch    = 4
)

// Key states carried by KeyboardKeyEvent.
const (
	KeyStateReleased = 0
	KeyStatePressed  = 1
)

// Seat is a wl_seat, a group of input devices.
type Seat struct {
	Id wlb.Id
	c  wlb.Client
}

func BindSeat(r *Registry, name, version uint32) (*Seat, error) {
	seat := &Seat{c: r.c}
	id, err := r.bind(name, SeatInterface, version, func(id wlb.Id) wlb.EventDecoder {
		return seat.decode
	})
	if err != nil {
		return nil, err
	}
	seat.Id = id
	return seat, nil
}

// GetKeyboard creates a wl_keyboard for the seat.
func (seat *Seat) GetKeyboard() (*Keyboard, error) {
	id, err := seat.c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "get_keyboard")
	}
	kb := &Keyboard{Id: id, c: seat.c}
	seat.c.Register(id, kb.decode)

	err = seat.c.SendRequest(wlb.NewEncoder().Object(id).Message(seat.Id, seatGetKeyboard))
	if err != nil {
		return nil, errors.Wrap(err, "get_keyboard")
	}
	return kb, nil
}

// SeatCapabilitiesEvent lists the device kinds the seat has.
type SeatCapabilitiesEvent struct {
	Seat         *Seat
	Capabilities uint32
}

func (SeatCapabilitiesEvent) ImplementsEvent() {}

// HasKeyboard reports whether the keyboard bit is set.
func (ev SeatCapabilitiesEvent) HasKeyboard() bool {
	return ev.Capabilities&SeatCapabilityKeyboard != 0
}

type SeatNameEvent struct {
	Seat *Seat
	Name string
}

func (SeatNameEvent) ImplementsEvent() {}

func (seat *Seat) decode(d *wlb.Decoder) (wlb.Event, error) {
	switch d.Opcode() {
	case seatCapabilities:
		return SeatCapabilitiesEvent{Seat: seat, Capabilities: d.Uint32()}, d.Err()
	case seatName:
		return SeatNameEvent{Seat: seat, Name: d.String()}, d.Err()
	}
	return unknown(d), nil
}

// Keyboard is a wl_keyboard.
type Keyboard struct {
	Id wlb.Id
	c  wlb.Client
}

// KeyboardKeymapEvent hands over the keymap as a file descriptor. The
// receiver owns Fd and must close it.
type KeyboardKeymapEvent struct {
	Keyboard *Keyboard
	Format   uint32
	Fd       int
	Size     uint32
}

func (KeyboardKeymapEvent) ImplementsEvent() {}

type KeyboardEnterEvent struct {
	Keyboard *Keyboard
	Serial   uint32
	Surface  wlb.Id
	Keys     []byte
}

func (KeyboardEnterEvent) ImplementsEvent() {}

type KeyboardLeaveEvent struct {
	Keyboard *Keyboard
	Serial   uint32
	Surface  wlb.Id
}

func (KeyboardLeaveEvent) ImplementsEvent() {}

// KeyboardKeyEvent carries an evdev key code.
type KeyboardKeyEvent struct {
	Keyboard *Keyboard
	Serial   uint32
	Time     uint32
	Key      uint32
	State    uint32
}

func (KeyboardKeyEvent) ImplementsEvent() {}

type KeyboardModifiersEvent struct {
	Keyboard      *Keyboard
	Serial        uint32
	ModsDepressed uint32
	ModsLatched   uint32
	ModsLocked    uint32
	Group         uint32
}

func (KeyboardModifiersEvent) ImplementsEvent() {}

type KeyboardRepeatInfoEvent struct {
	Keyboard *Keyboard
	Rate     int32
	Delay    int32
}

func (KeyboardRepeatInfoEvent) ImplementsEvent() {}

func (kb *Keyboard) decode(d *wlb.Decoder) (wlb.Event, error) {
	switch d.Opcode() {
	case keyboardKeymap:
		ev := KeyboardKeymapEvent{Keyboard: kb}
		ev.Format = d.Uint32()
		ev.Fd = d.Fd()
		ev.Size = d.Uint32()
		return ev, d.Err()
	case keyboardEnter:
		ev := KeyboardEnterEvent{Keyboard: kb}
		ev.Serial = d.Uint32()
		ev.Surface = d.Object()
		ev.Keys = d.Array()
		return ev, d.Err()
	case keyboardLeave:
		ev := KeyboardLeaveEvent{Keyboard: kb}
		ev.Serial = d.Uint32()
		ev.Surface = d.Object()
		return ev, d.Err()
	case keyboardKey:
		ev := KeyboardKeyEvent{Keyboard: kb}
		ev.Serial = d.Uint32()
		ev.Time = d.Uint32()
		ev.Key = d.Uint32()
		ev.State = d.Uint32()
		return ev, d.Err()
	case keyboardModifiers:
		ev := KeyboardModifiersEvent{Keyboard: kb}
		ev.Serial = d.Uint32()
		ev.ModsDepressed = d.Uint32()
		ev.ModsLatched = d.Uint32()
		ev.ModsLocked = d.Uint32()
		ev.Group = d.Uint32()
		return ev, d.Err()
	case keyboardRepeatInfo:
		ev := KeyboardRepeatInfoEvent{Keyboard: kb}
		ev.Rate = d.Int32()
		ev.Delay = d.Int32()
		return ev, d.Err()
	}
	return unknown(d), nil
}
