package wl

import (
	"github.com/BurntSushi/wlb"
	"github.com/pkg/errors"
)

const (
	CompositorInterface = "wl_compositor"

	compositorCreateSurface = 0

	surfaceAttach = 1
	surfaceCommit = 6

	surfaceEnter = 0
	surfaceLeave = 1

	bufferRelease = 0
)

type Compositor struct {
	Id wlb.Id
	c  wlb.Client
}

// BindCompositor binds a wl_compositor global. It has no events.
func BindCompositor(r *Registry, name, version uint32) (*Compositor, error) {
	id, err := r.bind(name, CompositorInterface, version, nil)
	if err != nil {
		return nil, err
	}
	return &Compositor{Id: id, c: r.c}, nil
}

// CreateSurface asks the compositor for a new wl_surface.
func (comp *Compositor) CreateSurface() (*Surface, error) {
	id, err := comp.c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "create_surface")
	}
	s := &Surface{Id: id, c: comp.c}
	comp.c.Register(id, s.decode)

	err = comp.c.SendRequest(wlb.NewEncoder().Object(id).Message(comp.Id, compositorCreateSurface))
	if err != nil {
		return nil, errors.Wrap(err, "create_surface")
	}
	return s, nil
}

// Surface is a wl_surface, a rectangular area that buffers are attached to.
type Surface struct {
	Id wlb.Id
	c  wlb.Client
}

// Attach sets buf as the pending content of the surface. A nil buf
// detaches the current content.
func (s *Surface) Attach(buf *Buffer, x, y int32) error {
	var bufId wlb.Id
	if buf != nil {
		bufId = buf.Id
	}
	msg := wlb.NewEncoder().Object(bufId).Int32(x).Int32(y).Message(s.Id, surfaceAttach)
	return errors.Wrap(s.c.SendRequest(msg), "attach")
}

// Commit applies the pending surface state.
func (s *Surface) Commit() error {
	return errors.Wrap(s.c.SendRequest(wlb.NewEncoder().Message(s.Id, surfaceCommit)), "commit")
}

// SurfaceEnterEvent is sent when the surface becomes visible on an output.
type SurfaceEnterEvent struct {
	Surface *Surface
	Output  wlb.Id
}

func (SurfaceEnterEvent) ImplementsEvent() {}

type SurfaceLeaveEvent struct {
	Surface *Surface
	Output  wlb.Id
}

func (SurfaceLeaveEvent) ImplementsEvent() {}

func (s *Surface) decode(d *wlb.Decoder) (wlb.Event, error) {
	switch d.Opcode() {
	case surfaceEnter:
		return SurfaceEnterEvent{Surface: s, Output: d.Object()}, d.Err()
	case surfaceLeave:
		return SurfaceLeaveEvent{Surface: s, Output: d.Object()}, d.Err()
	}
	return unknown(d), nil
}

// Buffer is a wl_buffer. Buffers are created by factory interfaces such as
// wp_single_pixel_buffer_manager_v1, which call NewBuffer for the id.
type Buffer struct {
	Id wlb.Id
	c  wlb.Client
}

// NewBuffer allocates an id for a buffer that a factory request is about
// to create.
func NewBuffer(c wlb.Client) (*Buffer, error) {
	id, err := c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "new buffer")
	}
	b := &Buffer{Id: id, c: c}
	c.Register(id, b.decode)
	return b, nil
}

// BufferReleaseEvent means the compositor no longer reads from the buffer.
type BufferReleaseEvent struct {
	Buffer *Buffer
}

func (BufferReleaseEvent) ImplementsEvent() {}

func (b *Buffer) decode(d *wlb.Decoder) (wlb.Event, error) {
	if d.Opcode() == bufferRelease {
		return BufferReleaseEvent{Buffer: b}, nil
	}
	return unknown(d), nil
}
