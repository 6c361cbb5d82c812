// Package wlbtest provides a recording wlb.Client for tests of the binding
// packages and of code driving them. Nothing is sent anywhere; requests
// are kept in order and events can be fed back through the registered
// decoders.
package wlbtest

import (
	"github.com/BurntSushi/wlb"
)

// Client records every request and every decoder registration.
type Client struct {
	Requests []wlb.Message
	Decoders map[wlb.Id]wlb.EventDecoder

	// Fail, when set, is returned by SendRequest instead of recording.
	Fail error

	next wlb.Id
}

func NewClient() *Client {
	return &Client{
		Decoders: make(map[wlb.Id]wlb.EventDecoder),
		next:     wlb.DisplayId + 1,
	}
}

func (c *Client) NewId() (wlb.Id, error) {
	id := c.next
	c.next++
	return id, nil
}

func (c *Client) Register(id wlb.Id, decode wlb.EventDecoder) {
	c.Decoders[id] = decode
}

func (c *Client) SendRequest(msg wlb.Message) error {
	if c.Fail != nil {
		return c.Fail
	}
	c.Requests = append(c.Requests, msg)
	return nil
}

// Reset forgets the recorded requests.
func (c *Client) Reset() {
	c.Requests = nil
}

// Last returns the most recent request, or a zero Message.
func (c *Client) Last() wlb.Message {
	if len(c.Requests) == 0 {
		return wlb.Message{}
	}
	return c.Requests[len(c.Requests)-1]
}

// Calls lists the recorded requests as (object, opcode) pairs, which is
// usually what an ordering assertion needs.
func (c *Client) Calls() []Call {
	calls := make([]Call, len(c.Requests))
	for i, req := range c.Requests {
		calls[i] = Call{Object: req.Sender, Opcode: req.Opcode}
	}
	return calls
}

// Call identifies a request by target object and opcode.
type Call struct {
	Object wlb.Id
	Opcode uint16
}

// Deliver decodes an event from object id as the connection would.
func (c *Client) Deliver(id wlb.Id, opcode uint16, args *wlb.Encoder) (wlb.Event, error) {
	if args == nil {
		args = wlb.NewEncoder()
	}
	msg := args.Message(id, opcode)
	decode := c.Decoders[id]
	if decode == nil {
		return wlb.UnknownEvent{Message: msg}, nil
	}
	return decode(wlb.NewDecoder(msg, nil))
}
