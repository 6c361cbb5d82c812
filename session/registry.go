package session

import (
	"github.com/BurntSushi/wlb/wl"
	"github.com/BurntSushi/wlb/wp"
	"github.com/BurntSushi/wlb/xdg"
)

// bindVersion is the version requested for every global.
const bindVersion = 1

// handleGlobal binds the five globals the window needs. Anything else, and
// any announcement after initialization, is ignored.
func (s *State) handleGlobal(ev wl.RegistryGlobalEvent) error {
	u, ok := s.Phase.(*Uninitialized)
	if !ok {
		return nil
	}

	var err error
	switch ev.Interface {
	case wl.CompositorInterface:
		u.Compositor, err = wl.BindCompositor(ev.Registry, ev.Name, bindVersion)
	case wp.SinglePixelBufferManagerInterface:
		u.SinglePixelBufferManager, err = wp.BindSinglePixelBufferManager(ev.Registry, ev.Name, bindVersion)
	case wp.ViewporterInterface:
		u.Viewporter, err = wp.BindViewporter(ev.Registry, ev.Name, bindVersion)
	case wl.SeatInterface:
		u.Seat, err = wl.BindSeat(ev.Registry, ev.Name, bindVersion)
	case xdg.WmBaseInterface:
		u.WmBase, err = xdg.BindWmBase(ev.Registry, ev.Name, bindVersion)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Debug("bound global", "interface", ev.Interface, "name", ev.Name)
	return s.TryInitialize()
}
