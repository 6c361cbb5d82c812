// Package session drives a single solid-colour window through the Wayland
// capability negotiation and the xdg-shell window lifecycle.
//
// A State starts Uninitialized. Registry announcements fill in the five
// globals it needs; once all are bound, TryInitialize creates the surface,
// the toplevel and the buffer, and the State becomes Initialized until the
// window is closed.
package session

import (
	"log/slog"

	"github.com/BurntSushi/wlb/wl"
	"github.com/BurntSushi/wlb/wp"
	"github.com/BurntSushi/wlb/xdg"
	"github.com/pkg/errors"
)

// Options are the fixed parameters of the window.
type Options struct {
	Title string
	AppId string
	Color Color
	Size  int32

	Logger *slog.Logger
}

// Phase is either *Uninitialized or *Initialized.
type Phase interface {
	isPhase()
}

// Uninitialized collects the globals announced so far. A nil field has not
// been announced yet.
type Uninitialized struct {
	Registry *wl.Registry

	Compositor               *wl.Compositor
	SinglePixelBufferManager *wp.SinglePixelBufferManager
	Viewporter               *wp.Viewporter
	Seat                     *wl.Seat
	WmBase                   *xdg.WmBase
}

func (*Uninitialized) isPhase() {}

func (u *Uninitialized) complete() bool {
	return u.Compositor != nil &&
		u.SinglePixelBufferManager != nil &&
		u.Viewporter != nil &&
		u.Seat != nil &&
		u.WmBase != nil
}

// Missing returns the interface names that have not been bound yet.
func (u *Uninitialized) Missing() []string {
	var missing []string
	if u.Compositor == nil {
		missing = append(missing, wl.CompositorInterface)
	}
	if u.SinglePixelBufferManager == nil {
		missing = append(missing, wp.SinglePixelBufferManagerInterface)
	}
	if u.Viewporter == nil {
		missing = append(missing, wp.ViewporterInterface)
	}
	if u.Seat == nil {
		missing = append(missing, wl.SeatInterface)
	}
	if u.WmBase == nil {
		missing = append(missing, xdg.WmBaseInterface)
	}
	return missing
}

// Initialized owns the window. The globals and the created objects never
// change; Viewport is set on the first configure and Running is cleared
// once, when the window is to be closed.
type Initialized struct {
	Registry *wl.Registry

	Compositor               *wl.Compositor
	SinglePixelBufferManager *wp.SinglePixelBufferManager
	Viewporter               *wp.Viewporter
	Seat                     *wl.Seat
	WmBase                   *xdg.WmBase

	Surface    *wl.Surface
	XdgSurface *xdg.Surface
	Toplevel   *xdg.Toplevel
	Buffer     *wl.Buffer
	Viewport   *wp.Viewport

	Running bool
}

func (*Initialized) isPhase() {}

// State is the session. It is owned by the dispatch loop; nothing else may
// touch it.
type State struct {
	Phase Phase

	opts Options
	log  *slog.Logger
}

// New returns an uninitialized session that binds globals through registry.
func New(registry *wl.Registry, opts Options) *State {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &State{
		Phase: &Uninitialized{Registry: registry},
		opts:  opts,
		log:   log,
	}
}

// Running reports whether the dispatch loop should keep going: always
// while uninitialized, and until the window is closed afterwards.
func (s *State) Running() bool {
	if in, ok := s.Phase.(*Initialized); ok {
		return in.Running
	}
	return true
}

// TryInitialize creates the window once every global is bound. It does
// nothing otherwise, so it can be called after every registry update.
func (s *State) TryInitialize() error {
	u, ok := s.Phase.(*Uninitialized)
	if !ok || !u.complete() {
		return nil
	}

	surface, err := u.Compositor.CreateSurface()
	if err != nil {
		return err
	}
	xdgSurface, err := u.WmBase.GetXdgSurface(surface)
	if err != nil {
		return err
	}
	toplevel, err := xdgSurface.GetToplevel()
	if err != nil {
		return err
	}
	if err := toplevel.SetTitle(s.opts.Title); err != nil {
		return err
	}
	if s.opts.AppId != "" {
		if err := toplevel.SetAppId(s.opts.AppId); err != nil {
			return err
		}
	}

	// The first commit carries no buffer; it makes the compositor send
	// the initial configure.
	if err := surface.Commit(); err != nil {
		return err
	}

	c := s.opts.Color
	buffer, err := u.SinglePixelBufferManager.CreateU32RGBABuffer(c.R, c.G, c.B, c.A)
	if err != nil {
		return errors.Wrap(err, "allocate buffer")
	}

	s.Phase = &Initialized{
		Registry:                 u.Registry,
		Compositor:               u.Compositor,
		SinglePixelBufferManager: u.SinglePixelBufferManager,
		Viewporter:               u.Viewporter,
		Seat:                     u.Seat,
		WmBase:                   u.WmBase,
		Surface:                  surface,
		XdgSurface:               xdgSurface,
		Toplevel:                 toplevel,
		Buffer:                   buffer,
		Running:                  true,
	}
	s.log.Info("window created", "title", s.opts.Title, "surface", surface.Id)
	return nil
}
