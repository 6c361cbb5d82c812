package wlb

// Event is an interface that can contain any of the events sent by the
// compositor. Use a type switch to extract the event structs defined by
// the protocol packages.
type Event interface {
	ImplementsEvent()
}

// EventDecoder turns the arguments of one message into a typed event.
// Binding packages register one decoder per object they create.
type EventDecoder func(d *Decoder) (Event, error)

// UnknownEvent carries a message from an object with no registered decoder,
// or an opcode the decoder does not know.
type UnknownEvent struct {
	Message
}

func (UnknownEvent) ImplementsEvent() {}

// Client is the part of a connection that protocol bindings use. *Conn
// implements it.
type Client interface {
	NewId() (Id, error)
	Register(id Id, decode EventDecoder)
	SendRequest(msg Message) error
}

var _ Client = (*Conn)(nil)
