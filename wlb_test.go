package wlb

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type testEvent struct {
	Value uint32
}

func (testEvent) ImplementsEvent() {}

type testFdEvent struct {
	Fd int
}

func (testFdEvent) ImplementsEvent() {}

func decodeTest(d *Decoder) (Event, error) {
	switch d.Opcode() {
	case 0:
		return testEvent{Value: d.Uint32()}, d.Err()
	case 1:
		return testFdEvent{Fd: d.Fd()}, d.Err()
	}
	return UnknownEvent{}, nil
}

func TestConnOpenClose(t *testing.T) {
	client, server := socketPair(t)
	defer server.Close()

	defer leaksMonitor("open-close").checkTesting(t)

	c, err := postNewConn(&Conn{conn: client})
	if err != nil {
		t.Fatalf("connect error: %v", err)
	}

	closeErr := make(chan struct{})
	go func() {
		c.Close()
		close(closeErr)
	}()
	closeTimeout := time.Second
	select {
	case <-closeErr:
	case <-time.After(closeTimeout):
		t.Errorf("*Conn.Close() not responded for %v", closeTimeout)
	}
}

func TestNewIdSequence(t *testing.T) {
	c, _ := newTestConn(t)

	for want := Id(2); want < 6; want++ {
		id, err := c.NewId()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestSendRequest(t *testing.T) {
	c, s := newTestConn(t)

	err := c.SendRequest(NewEncoder().Uint32(9).String("hi").Message(4, 2))
	require.NoError(t, err)

	msg := s.next()
	assert.Equal(t, Id(4), msg.Sender)
	assert.Equal(t, uint16(2), msg.Opcode)
	d := NewDecoder(msg, nil)
	assert.Equal(t, uint32(9), d.Uint32())
	assert.Equal(t, "hi", d.String())
	assert.NoError(t, d.Err())
}

func TestSendRequestWithFd(t *testing.T) {
	c, s := newTestConn(t)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	err = c.SendRequest(NewEncoder().Fd(int(w.Fd())).Uint32(1).Message(3, 0))
	require.NoError(t, err)

	msg := s.next()
	require.Len(t, msg.Fds, 1)
	defer unix.Close(msg.Fds[0])

	_, err = unix.Write(msg.Fds[0], []byte("ok"))
	require.NoError(t, err)
	buf := make([]byte, 2)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(buf))
}

func TestWaitForEvent(t *testing.T) {
	c, s := newTestConn(t)

	id, err := c.NewId()
	require.NoError(t, err)
	c.Register(id, decodeTest)

	s.send(NewEncoder().Uint32(7).Message(id, 0))
	s.send(NewEncoder().Uint32(8).Message(id, 0))

	ev, err := c.WaitForEvent()
	require.NoError(t, err)
	assert.Equal(t, testEvent{Value: 7}, ev)

	ev, err = c.WaitForEvent()
	require.NoError(t, err)
	assert.Equal(t, testEvent{Value: 8}, ev)
}

func TestUnknownSender(t *testing.T) {
	c, s := newTestConn(t)

	s.send(NewEncoder().Uint32(1).Message(42, 3))

	ev, err := c.WaitForEvent()
	require.NoError(t, err)
	unknown, ok := ev.(UnknownEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, Id(42), unknown.Sender)
	assert.Equal(t, uint16(3), unknown.Opcode)
}

func TestPollForEventEmpty(t *testing.T) {
	c, _ := newTestConn(t)

	ev, err := c.PollForEvent()
	assert.NoError(t, err)
	assert.Nil(t, ev)
}

func TestSync(t *testing.T) {
	c, s := newTestConn(t)

	id, err := c.NewId()
	require.NoError(t, err)
	c.Register(id, decodeTest)

	cookie, err := c.Sync()
	require.NoError(t, err)

	req := s.next()
	assert.Equal(t, DisplayId, req.Sender)
	assert.Equal(t, uint16(displaySync), req.Opcode)
	assert.Equal(t, uint32(cookie.Callback), Get32(req.Data))

	s.send(NewEncoder().Uint32(5).Message(id, 0))
	s.send(NewEncoder().Uint32(42).Message(cookie.Callback, callbackDone))

	serial, err := cookie.Wait()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), serial)

	// The event sent before the done is already queued.
	ev, err := c.PollForEvent()
	require.NoError(t, err)
	assert.Equal(t, testEvent{Value: 5}, ev)

	ev, err = c.PollForEvent()
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestSyncAfterDisconnect(t *testing.T) {
	c, s := newTestConn(t)

	cookie, err := c.Sync()
	require.NoError(t, err)
	s.next()
	s.conn.Close()

	_, err = cookie.Wait()
	assert.ErrorIs(t, err, io.EOF)
}

func TestProtocolError(t *testing.T) {
	c, s := newTestConn(t)

	s.send(NewEncoder().Object(3).Uint32(2).String("invalid serial").Message(DisplayId, displayError))

	ev, err := c.WaitForEvent()
	assert.Nil(t, ev)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, Id(3), perr.ObjectId)
	assert.Equal(t, uint32(2), perr.Code)
	assert.Equal(t, "invalid serial", perr.Message)
}

func TestDeleteIdReleasesId(t *testing.T) {
	c, s := newTestConn(t)

	id, err := c.NewId()
	require.NoError(t, err)
	c.Register(id, decodeTest)

	s.send(NewEncoder().Uint32(uint32(id)).Message(DisplayId, displayDeleteId))
	s.send(NewEncoder().Uint32(1).Message(id, 0))

	// delete_id is consumed by the connection; the object is gone by the
	// time its late event is decoded.
	ev, err := c.WaitForEvent()
	require.NoError(t, err)
	assert.IsType(t, UnknownEvent{}, ev)

	again, err := c.NewId()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestEventWithFd(t *testing.T) {
	c, s := newTestConn(t)

	id, err := c.NewId()
	require.NoError(t, err)
	c.Register(id, decodeTest)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	s.send(NewEncoder().Fd(int(w.Fd())).Message(id, 1))

	ev, err := c.WaitForEvent()
	require.NoError(t, err)
	fdEv, ok := ev.(testFdEvent)
	require.True(t, ok, "got %T", ev)
	defer unix.Close(fdEv.Fd)

	_, err = unix.Write(fdEv.Fd, []byte("k"))
	require.NoError(t, err)
	buf := make([]byte, 1)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "k", string(buf))
}

func TestWaitForEventAfterDisconnect(t *testing.T) {
	c, s := newTestConn(t)

	s.send(NewEncoder().Uint32(1).Message(9, 0))
	s.conn.Close()

	// Events read before the disconnect are still delivered.
	ev, err := c.WaitForEvent()
	require.NoError(t, err)
	assert.IsType(t, UnknownEvent{}, ev)

	_, err = c.WaitForEvent()
	assert.ErrorIs(t, err, io.EOF)
}
