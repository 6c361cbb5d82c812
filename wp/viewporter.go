// Package wp binds two small wayland-protocols extensions: wp_viewporter,
// which scales a surface, and wp_single_pixel_buffer_manager_v1, which
// creates 1x1 buffers of a solid colour without shared memory.
package wp

import (
	"github.com/BurntSushi/wlb"
	"github.com/BurntSushi/wlb/wl"
	"github.com/pkg/errors"
)

const (
	ViewporterInterface = "wp_viewporter"

	viewporterGetViewport = 1

	viewportSetSource      = 1
	viewportSetDestination = 2
)

// Viewporter is the wp_viewporter global. Neither it nor its viewports send
// events.
type Viewporter struct {
	Id wlb.Id
	c  wlb.Client
}

func BindViewporter(r *wl.Registry, name, version uint32) (*Viewporter, error) {
	c := r.Client()
	id, err := c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "bind "+ViewporterInterface)
	}
	if err := r.BindId(name, ViewporterInterface, version, id); err != nil {
		return nil, err
	}
	return &Viewporter{Id: id, c: c}, nil
}

// GetViewport creates the viewport of surface. A surface has at most one.
func (vp *Viewporter) GetViewport(surface *wl.Surface) (*Viewport, error) {
	id, err := vp.c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "get_viewport")
	}
	msg := wlb.NewEncoder().Object(id).Object(surface.Id).Message(vp.Id, viewporterGetViewport)
	if err := vp.c.SendRequest(msg); err != nil {
		return nil, errors.Wrap(err, "get_viewport")
	}
	return &Viewport{Id: id, c: vp.c}, nil
}

type Viewport struct {
	Id wlb.Id
	c  wlb.Client
}

// SetSource selects the part of the buffer to show, in buffer coordinates.
func (v *Viewport) SetSource(x, y, width, height float64) error {
	msg := wlb.NewEncoder().
		Fixed(x).
		Fixed(y).
		Fixed(width).
		Fixed(height).
		Message(v.Id, viewportSetSource)
	return errors.Wrap(v.c.SendRequest(msg), "set_source")
}

// SetDestination sets the surface size in surface-local pixels.
func (v *Viewport) SetDestination(width, height int32) error {
	msg := wlb.NewEncoder().Int32(width).Int32(height).Message(v.Id, viewportSetDestination)
	return errors.Wrap(v.c.SendRequest(msg), "set_destination")
}
