// Copyright 2009 The XGB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The WLB package implements the client side of the Wayland wire protocol.
// It is modeled on XGB: a connection, an event queue fed by a read
// goroutine, and typed events returned from WaitForEvent.
package wlb

import (
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	readBuffer = 100

	// Maximum number of file descriptors carried by one sendmsg, as in
	// libwayland.
	maxFds = 28
)

// A Conn represents a connection to a Wayland compositor.
type Conn struct {
	conn    *net.UnixConn
	display string
	debug   bool

	nextId  Id
	freeIds []Id
	objects map[Id]EventDecoder
	cookies map[Id]*SyncCookie

	events    queue
	fds       []int
	eventChan chan bool
	closed    chan struct{}
	err       error

	newIdLock   sync.Mutex
	writeLock   sync.Mutex
	dequeueLock sync.Mutex
	cookieLock  sync.Mutex
	objectLock  sync.Mutex
}

// NewConn creates a new connection instance. It resolves the compositor
// socket from the environment (see conn.go) and starts reading events.
func NewConn() (*Conn, error) {
	return NewConnDisplay("")
}

// NewConnDisplay is just like NewConn, but allows a specific display to be
// used instead of $WAYLAND_DISPLAY.
//
// Examples:
//
//	NewConnDisplay("wayland-1") -> $XDG_RUNTIME_DIR/wayland-1
//	NewConnDisplay("/run/user/1000/wayland-0") -> /run/user/1000/wayland-0
func NewConnDisplay(display string) (*Conn, error) {
	conn := &Conn{}

	err := conn.connect(display)
	if err != nil {
		return nil, err
	}
	return postNewConn(conn)
}

func postNewConn(c *Conn) (*Conn, error) {
	c.nextId = DisplayId + 1
	c.objects = make(map[Id]EventDecoder)
	c.cookies = make(map[Id]*SyncCookie)
	c.events = queue{make([]Message, 100), 0, 0}

	c.newReadChannels()
	return c, nil
}

// Close closes the connection to the compositor. Pending WaitForEvent
// calls return an error once the read goroutine has stopped.
func (c *Conn) Close() {
	c.conn.Close()
	<-c.closed
}

// Display returns the socket path this connection was opened on.
func (c *Conn) Display() string {
	return c.display
}

// Id is used for all Wayland object identifiers.
type Id uint32

const (
	// DisplayId is the object id of the wl_display singleton.
	DisplayId Id = 1

	maxClientId Id = 0xfeffffff
)

// NewId returns an unused object id for use with requests like
// wl_compositor.create_surface. Ids released by the compositor through
// wl_display.delete_id are reused first.
func (c *Conn) NewId() (Id, error) {
	c.newIdLock.Lock()
	defer c.newIdLock.Unlock()

	if n := len(c.freeIds); n > 0 {
		id := c.freeIds[n-1]
		c.freeIds = c.freeIds[:n-1]
		return id, nil
	}
	if c.nextId > maxClientId {
		return 0, errors.New("there are no more available object identifiers")
	}
	id := c.nextId
	c.nextId++
	return id, nil
}

func (c *Conn) releaseId(id Id) {
	c.objectLock.Lock()
	delete(c.objects, id)
	c.objectLock.Unlock()

	c.newIdLock.Lock()
	c.freeIds = append(c.freeIds, id)
	c.newIdLock.Unlock()
}

// Register associates an event decoder with a client-created object.
// Events sent by objects with no decoder are returned as UnknownEvent.
func (c *Conn) Register(id Id, decode EventDecoder) {
	c.objectLock.Lock()
	c.objects[id] = decode
	c.objectLock.Unlock()
}

// SendRequest writes a single request to the compositor. File descriptors
// in msg.Fds are passed as SCM_RIGHTS ancillary data.
func (c *Conn) SendRequest(msg Message) error {
	buf, err := msg.Bytes()
	if err != nil {
		return err
	}
	var oob []byte
	if len(msg.Fds) > maxFds {
		return errors.Errorf("request carries %d file descriptors, at most %d allowed",
			len(msg.Fds), maxFds)
	}
	if len(msg.Fds) > 0 {
		oob = unix.UnixRights(msg.Fds...)
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	if c.debug {
		logger.Debug("request", "object", msg.Sender, "opcode", msg.Opcode,
			"size", len(buf), "fds", len(msg.Fds))
	}
	if _, _, err := c.conn.WriteMsgUnix(buf, oob, nil); err != nil {
		return errors.Wrap(err, "wayland write")
	}
	return nil
}

// A simple queue used to stow away events.
type queue struct {
	data []Message
	a, b int
}

func (q *queue) queue(item Message) {
	if q.b == len(q.data) {
		if q.a > 0 {
			copy(q.data, q.data[q.a:q.b])
			q.a, q.b = 0, q.b-q.a
		} else {
			newData := make([]Message, (len(q.data)*3)/2)
			copy(newData, q.data)
			q.data = newData
		}
	}
	q.data[q.b] = item
	q.b++
}

func (q *queue) dequeue() (Message, bool) {
	if q.a < q.b {
		item := q.data[q.a]
		q.data[q.a] = Message{}
		q.a++
		return item, true
	}
	return Message{}, false
}

func (c *Conn) newReadChannels() {
	c.eventChan = make(chan bool, readBuffer)
	c.closed = make(chan struct{})

	go c.readLoop()
}

// readLoop frames incoming bytes into messages. Sync callbacks are routed
// to their cookies here; everything else is queued for WaitForEvent.
func (c *Conn) readLoop() {
	defer c.shutdown()

	buf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(maxFds*4))
	var pending []byte
	for {
		n, oobn, _, _, err := c.conn.ReadMsgUnix(buf, oob)
		if err != nil {
			c.setErr(errors.Wrap(err, "wayland read"))
			return
		}
		if n == 0 && oobn == 0 {
			c.setErr(io.EOF)
			return
		}
		if oobn > 0 {
			fds, err := parseRights(oob[:oobn])
			if err != nil {
				c.setErr(err)
				return
			}
			c.dequeueLock.Lock()
			c.fds = append(c.fds, fds...)
			c.dequeueLock.Unlock()
		}

		pending = append(pending, buf[:n]...)
		off := 0
		for len(pending)-off >= headerSize {
			msg, size, err := parseHeader(pending[off:])
			if err != nil {
				c.setErr(err)
				return
			}
			if len(pending)-off < size {
				break
			}
			msg.Data = append([]byte(nil), pending[off+headerSize:off+size]...)
			off += size
			c.deliver(msg)
		}
		pending = pending[:copy(pending, pending[off:])]
	}
}

func parseRights(oob []byte) ([]int, error) {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, errors.Wrap(err, "parse control message")
	}
	var fds []int
	for _, scm := range scms {
		rights, err := unix.ParseUnixRights(&scm)
		if err != nil {
			continue
		}
		fds = append(fds, rights...)
	}
	return fds, nil
}

func (c *Conn) deliver(msg Message) {
	c.cookieLock.Lock()
	cookie, ok := c.cookies[msg.Sender]
	if ok {
		delete(c.cookies, msg.Sender)
	}
	c.cookieLock.Unlock()

	if ok {
		var serial uint32
		if len(msg.Data) >= 4 {
			serial = Get32(msg.Data)
		}
		cookie.done <- serial
		return
	}

	c.dequeueLock.Lock()
	c.events.queue(msg)
	c.dequeueLock.Unlock()
	select {
	case c.eventChan <- true:
	default:
	}
}

func (c *Conn) setErr(err error) {
	c.dequeueLock.Lock()
	if c.err == nil {
		c.err = err
	}
	c.dequeueLock.Unlock()
}

func (c *Conn) readErr() error {
	c.dequeueLock.Lock()
	defer c.dequeueLock.Unlock()
	if c.err == nil {
		return errors.New("event channel has been closed")
	}
	return c.err
}

func (c *Conn) shutdown() {
	c.dequeueLock.Lock()
	for _, fd := range c.fds {
		unix.Close(fd)
	}
	c.fds = nil
	c.dequeueLock.Unlock()

	close(c.eventChan)
	close(c.closed)
}

// nextFd hands out received file descriptors in arrival order.
func (c *Conn) nextFd() (int, error) {
	c.dequeueLock.Lock()
	defer c.dequeueLock.Unlock()
	if len(c.fds) == 0 {
		return -1, errors.New("event expects a file descriptor but none was received")
	}
	fd := c.fds[0]
	c.fds = c.fds[1:]
	return fd, nil
}

func (c *Conn) dequeue() (Message, bool) {
	c.dequeueLock.Lock()
	defer c.dequeueLock.Unlock()
	return c.events.dequeue()
}

// WaitForEvent returns the next event from the compositor.
// It will block until an event is available.
func (c *Conn) WaitForEvent() (Event, error) {
	for {
		if msg, ok := c.dequeue(); ok {
			ev, err := c.decode(msg)
			if err != nil {
				return nil, err
			}
			if ev != nil {
				return ev, nil
			}
			continue
		}
		if !<-c.eventChan {
			return nil, c.readErr()
		}
	}
}

// PollForEvent returns the next event from the compositor if one is
// available in the internal queue. It never blocks; (nil, nil) means the
// queue is empty.
func (c *Conn) PollForEvent() (Event, error) {
	for {
		msg, ok := c.dequeue()
		if !ok {
			return nil, nil
		}
		ev, err := c.decode(msg)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			return ev, nil
		}
	}
}

// decode turns a queued message into a typed event. wl_display events are
// consumed here and yield a nil event.
func (c *Conn) decode(msg Message) (Event, error) {
	if c.debug {
		logger.Debug("event", "object", msg.Sender, "opcode", msg.Opcode,
			"size", len(msg.Data))
	}
	if msg.Sender == DisplayId {
		return nil, c.handleDisplay(msg)
	}

	c.objectLock.Lock()
	decode := c.objects[msg.Sender]
	c.objectLock.Unlock()
	if decode == nil {
		return UnknownEvent{msg}, nil
	}
	ev, err := decode(NewDecoder(msg, c.nextFd))
	if err != nil {
		return nil, errors.Wrapf(err, "decode event %d of object %d",
			msg.Opcode, msg.Sender)
	}
	return ev, nil
}
