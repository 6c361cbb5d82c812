/*
Package WLB provides a small Wayland Go Binding: a low-level API to talk to a
Wayland compositor over its unix socket.

It is modeled on XGB. A Conn owns the socket and a read goroutine that
frames incoming messages into an event queue; WaitForEvent and PollForEvent
hand back typed events which are extracted with a type switch. Requests are
written immediately, in the order they are made.

Protocol objects live in sub-packages: wl (the core protocol), xdg
(xdg-shell) and wp (viewporter and single-pixel buffers). They are written
against the Client interface, so they can be exercised without a
compositor.

# Example

This is a terse example that connects, lists the globals the compositor
announces and exits. A complete program that opens a window can be found in
examples/solid.

	package main

	import (
		"fmt"
		"log"

		"github.com/BurntSushi/wlb"
		"github.com/BurntSushi/wlb/wl"
	)

	func main() {
		X, err := wlb.NewConn()
		if err != nil {
			log.Fatal(err)
		}
		defer X.Close()

		if _, err := wl.GetRegistry(X); err != nil {
			log.Fatal(err)
		}
		cookie, err := X.Sync()
		if err != nil {
			log.Fatal(err)
		}
		if _, err := cookie.Wait(); err != nil {
			log.Fatal(err)
		}
		for {
			ev, err := X.PollForEvent()
			if err != nil {
				log.Fatal(err)
			}
			if ev == nil {
				return
			}
			if g, ok := ev.(wl.RegistryGlobalEvent); ok {
				fmt.Printf("%d: %s v%d\n", g.Name, g.Interface, g.Version)
			}
		}
	}

# Connecting

NewConn looks at $WAYLAND_SOCKET first, then $WAYLAND_DISPLAY (default
"wayland-0") relative to $XDG_RUNTIME_DIR. Setting $WAYLAND_DEBUG to 1 or
"client" logs every request and event at debug level; see SetLogger.

# Errors

A wl_display.error event is returned from WaitForEvent as a *ProtocolError.
The compositor disconnects after sending one, so it should be treated as
fatal. Read failures close the event queue and are returned the same way.

# What does not work

Only the requests and events the bindings in this module need are
implemented. There is no shared-memory buffer support and no frame
callbacks.
*/
package wlb
