// Package xdg binds the xdg-shell window-management protocol: xdg_wm_base,
// xdg_surface and xdg_toplevel.
package xdg

import (
	"github.com/BurntSushi/wlb"
	"github.com/BurntSushi/wlb/wl"
	"github.com/pkg/errors"
)

const (
	WmBaseInterface = "xdg_wm_base"

	wmBaseGetXdgSurface = 2
	wmBasePong          = 3
	wmBasePing          = 0

	surfaceGetToplevel  = 1
	surfaceAckConfigure = 4
	surfaceConfigure    = 0

	toplevelSetTitle  = 2
	toplevelSetAppId  = 3
	toplevelConfigure = 0
	toplevelClose     = 1
)

// WmBase is the xdg_wm_base global.
type WmBase struct {
	Id wlb.Id
	c  wlb.Client
}

func BindWmBase(r *wl.Registry, name, version uint32) (*WmBase, error) {
	c := r.Client()
	id, err := c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "bind "+WmBaseInterface)
	}
	wm := &WmBase{Id: id, c: c}
	c.Register(id, wm.decode)
	if err := r.BindId(name, WmBaseInterface, version, id); err != nil {
		return nil, err
	}
	return wm, nil
}

// Pong answers a ping. The compositor may treat a client that does not
// answer as unresponsive.
func (wm *WmBase) Pong(serial uint32) error {
	msg := wlb.NewEncoder().Uint32(serial).Message(wm.Id, wmBasePong)
	return errors.Wrap(wm.c.SendRequest(msg), "pong")
}

// GetXdgSurface gives the surface the xdg_surface role.
func (wm *WmBase) GetXdgSurface(surface *wl.Surface) (*Surface, error) {
	id, err := wm.c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "get_xdg_surface")
	}
	s := &Surface{Id: id, c: wm.c}
	wm.c.Register(id, s.decode)

	msg := wlb.NewEncoder().Object(id).Object(surface.Id).Message(wm.Id, wmBaseGetXdgSurface)
	if err := wm.c.SendRequest(msg); err != nil {
		return nil, errors.Wrap(err, "get_xdg_surface")
	}
	return s, nil
}

type WmBasePingEvent struct {
	WmBase *WmBase
	Serial uint32
}

func (WmBasePingEvent) ImplementsEvent() {}

func (wm *WmBase) decode(d *wlb.Decoder) (wlb.Event, error) {
	if d.Opcode() == wmBasePing {
		return WmBasePingEvent{WmBase: wm, Serial: d.Uint32()}, d.Err()
	}
	return wlb.UnknownEvent{Message: wlb.Message{Sender: d.Sender(), Opcode: d.Opcode()}}, nil
}

// Surface is an xdg_surface.
type Surface struct {
	Id wlb.Id
	c  wlb.Client
}

func (s *Surface) GetToplevel() (*Toplevel, error) {
	id, err := s.c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "get_toplevel")
	}
	t := &Toplevel{Id: id, c: s.c}
	s.c.Register(id, t.decode)

	if err := s.c.SendRequest(wlb.NewEncoder().Object(id).Message(s.Id, surfaceGetToplevel)); err != nil {
		return nil, errors.Wrap(err, "get_toplevel")
	}
	return t, nil
}

// AckConfigure acknowledges the configure event with the given serial.
func (s *Surface) AckConfigure(serial uint32) error {
	msg := wlb.NewEncoder().Uint32(serial).Message(s.Id, surfaceAckConfigure)
	return errors.Wrap(s.c.SendRequest(msg), "ack_configure")
}

// SurfaceConfigureEvent ends a configure sequence. It must be acknowledged
// before the next commit that depends on it.
type SurfaceConfigureEvent struct {
	Surface *Surface
	Serial  uint32
}

func (SurfaceConfigureEvent) ImplementsEvent() {}

func (s *Surface) decode(d *wlb.Decoder) (wlb.Event, error) {
	if d.Opcode() == surfaceConfigure {
		return SurfaceConfigureEvent{Surface: s, Serial: d.Uint32()}, d.Err()
	}
	return wlb.UnknownEvent{Message: wlb.Message{Sender: d.Sender(), Opcode: d.Opcode()}}, nil
}

// Toplevel is an xdg_toplevel, a regular desktop window.
type Toplevel struct {
	Id wlb.Id
	c  wlb.Client
}

func (t *Toplevel) SetTitle(title string) error {
	msg := wlb.NewEncoder().String(title).Message(t.Id, toplevelSetTitle)
	return errors.Wrap(t.c.SendRequest(msg), "set_title")
}

func (t *Toplevel) SetAppId(appId string) error {
	msg := wlb.NewEncoder().String(appId).Message(t.Id, toplevelSetAppId)
	return errors.Wrap(t.c.SendRequest(msg), "set_app_id")
}

// ToplevelConfigureEvent suggests a size; 0 means the client decides.
type ToplevelConfigureEvent struct {
	Toplevel *Toplevel
	Width    int32
	Height   int32
	States   []uint32
}

func (ToplevelConfigureEvent) ImplementsEvent() {}

// ToplevelCloseEvent asks the client to close the window.
type ToplevelCloseEvent struct {
	Toplevel *Toplevel
}

func (ToplevelCloseEvent) ImplementsEvent() {}

func (t *Toplevel) decode(d *wlb.Decoder) (wlb.Event, error) {
	switch d.Opcode() {
	case toplevelConfigure:
		ev := ToplevelConfigureEvent{Toplevel: t}
		ev.Width = d.Int32()
		ev.Height = d.Int32()
		states := d.Array()
		for i := 0; i+4 <= len(states); i += 4 {
			ev.States = append(ev.States, wlb.Get32(states[i:]))
		}
		return ev, d.Err()
	case toplevelClose:
		return ToplevelCloseEvent{Toplevel: t}, nil
	}
	return wlb.UnknownEvent{Message: wlb.Message{Sender: d.Sender(), Opcode: d.Opcode()}}, nil
}
