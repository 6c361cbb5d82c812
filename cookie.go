package wlb

import (
	"github.com/pkg/errors"
)

const (
	displaySync        = 0
	displayGetRegistry = 1

	displayError    = 0
	displayDeleteId = 1

	callbackDone = 0
)

// SyncCookie is returned by Sync. The read goroutine delivers the
// wl_callback.done event for the cookie's callback straight to the cookie,
// the way XGB pairs replies with request cookies.
type SyncCookie struct {
	Callback Id
	done     chan uint32
	closed   <-chan struct{}
	c        *Conn
}

// Sync asks the compositor to emit a done event once every request sent
// before it has been processed. Use the returned cookie's Wait as a round
// trip barrier.
func (c *Conn) Sync() (*SyncCookie, error) {
	id, err := c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "sync")
	}
	cookie := &SyncCookie{
		Callback: id,
		done:     make(chan uint32, 1),
		closed:   c.closed,
		c:        c,
	}

	c.cookieLock.Lock()
	c.cookies[id] = cookie
	c.cookieLock.Unlock()

	err = c.SendRequest(NewEncoder().Object(id).Message(DisplayId, displaySync))
	if err != nil {
		c.cookieLock.Lock()
		delete(c.cookies, id)
		c.cookieLock.Unlock()
		return nil, errors.Wrap(err, "sync")
	}
	return cookie, nil
}

// Wait blocks until the compositor answers the sync request and returns
// the callback data (the event serial). Every event sent before the answer
// is already queued when Wait returns.
func (cookie *SyncCookie) Wait() (uint32, error) {
	select {
	case serial := <-cookie.done:
		return serial, nil
	case <-cookie.closed:
	}
	select {
	case serial := <-cookie.done:
		return serial, nil
	default:
		return 0, cookie.c.readErr()
	}
}

// handleDisplay consumes events sent by the wl_display singleton.
func (c *Conn) handleDisplay(msg Message) error {
	d := NewDecoder(msg, c.nextFd)
	switch msg.Opcode {
	case displayError:
		perr := &ProtocolError{
			ObjectId: d.Object(),
			Code:     d.Uint32(),
			Message:  d.String(),
		}
		if err := d.Err(); err != nil {
			return errors.Wrap(err, "decode wl_display.error")
		}
		return perr
	case displayDeleteId:
		id := Id(d.Uint32())
		if err := d.Err(); err != nil {
			return errors.Wrap(err, "decode wl_display.delete_id")
		}
		c.releaseId(id)
	default:
		logger.Warn("unknown wl_display event", "opcode", msg.Opcode)
	}
	return nil
}
