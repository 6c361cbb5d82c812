package wp

import (
	"github.com/BurntSushi/wlb"
	"github.com/BurntSushi/wlb/wl"
	"github.com/pkg/errors"
)

const (
	SinglePixelBufferManagerInterface = "wp_single_pixel_buffer_manager_v1"

	singlePixelCreateU32RGBABuffer = 1
)

// SinglePixelBufferManager is the wp_single_pixel_buffer_manager_v1 global.
type SinglePixelBufferManager struct {
	Id wlb.Id
	c  wlb.Client
}

func BindSinglePixelBufferManager(r *wl.Registry, name, version uint32) (*SinglePixelBufferManager, error) {
	c := r.Client()
	id, err := c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "bind "+SinglePixelBufferManagerInterface)
	}
	if err := r.BindId(name, SinglePixelBufferManagerInterface, version, id); err != nil {
		return nil, err
	}
	return &SinglePixelBufferManager{Id: id, c: c}, nil
}

// CreateU32RGBABuffer creates a 1x1 buffer. The channels are premultiplied
// by alpha and scaled so that 0xffffffff is full intensity.
func (m *SinglePixelBufferManager) CreateU32RGBABuffer(r, g, b, a uint32) (*wl.Buffer, error) {
	buf, err := wl.NewBuffer(m.c)
	if err != nil {
		return nil, err
	}
	msg := wlb.NewEncoder().
		Object(buf.Id).
		Uint32(r).
		Uint32(g).
		Uint32(b).
		Uint32(a).
		Message(m.Id, singlePixelCreateU32RGBABuffer)
	if err := m.c.SendRequest(msg); err != nil {
		return nil, errors.Wrap(err, "create_u32_rgba_buffer")
	}
	return buf, nil
}
