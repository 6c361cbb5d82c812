package session

import (
	"github.com/BurntSushi/wlb/xdg"
)

// handleConfigure acknowledges the configure and redraws. The ack must go
// out before the attach and commit it applies to.
func (s *State) handleConfigure(ev xdg.SurfaceConfigureEvent) error {
	in, ok := s.Phase.(*Initialized)
	if !ok || ev.Surface != in.XdgSurface {
		return nil
	}

	if err := in.XdgSurface.AckConfigure(ev.Serial); err != nil {
		return err
	}

	if in.Viewport == nil {
		viewport, err := in.Viewporter.GetViewport(in.Surface)
		if err != nil {
			return err
		}
		if err := viewport.SetSource(0, 0, 1, 1); err != nil {
			return err
		}
		if err := viewport.SetDestination(s.opts.Size, s.opts.Size); err != nil {
			return err
		}
		in.Viewport = viewport
	}

	if err := in.Surface.Attach(in.Buffer, 0, 0); err != nil {
		return err
	}
	s.log.Debug("configured", "serial", ev.Serial)
	return in.Surface.Commit()
}

func (s *State) handleClose() {
	if in, ok := s.Phase.(*Initialized); ok {
		in.Running = false
	}
}
