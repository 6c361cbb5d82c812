// Package wl binds the core Wayland protocol objects the wlb examples use:
// the registry, the compositor with its surfaces and buffers, and the seat
// with its keyboard.
package wl

import (
	"github.com/BurntSushi/wlb"
	"github.com/pkg/errors"
)

const (
	displayGetRegistry = 1

	registryBind = 0

	registryGlobal       = 0
	registryGlobalRemove = 1
)

// Registry is the wl_registry object. The compositor announces every global
// on it right after it is created.
type Registry struct {
	Id wlb.Id
	c  wlb.Client
}

// GetRegistry sends wl_display.get_registry.
func GetRegistry(c wlb.Client) (*Registry, error) {
	id, err := c.NewId()
	if err != nil {
		return nil, errors.Wrap(err, "get_registry")
	}
	r := &Registry{Id: id, c: c}
	c.Register(id, r.decode)

	err = c.SendRequest(wlb.NewEncoder().Object(id).Message(wlb.DisplayId, displayGetRegistry))
	if err != nil {
		return nil, errors.Wrap(err, "get_registry")
	}
	return r, nil
}

// Client returns the connection the registry was created on.
func (r *Registry) Client() wlb.Client {
	return r.c
}

// BindId binds the global called name to the client-allocated id. The
// caller registers a decoder for id before calling BindId.
func (r *Registry) BindId(name uint32, iface string, version uint32, id wlb.Id) error {
	msg := wlb.NewEncoder().
		Uint32(name).
		String(iface).
		Uint32(version).
		Object(id).
		Message(r.Id, registryBind)
	if err := r.c.SendRequest(msg); err != nil {
		return errors.Wrapf(err, "bind %s", iface)
	}
	return nil
}

// bind allocates an id, registers decode for it (if any) and binds.
func (r *Registry) bind(name uint32, iface string, version uint32,
	decode func(id wlb.Id) wlb.EventDecoder) (wlb.Id, error) {

	id, err := r.c.NewId()
	if err != nil {
		return 0, errors.Wrapf(err, "bind %s", iface)
	}
	if decode != nil {
		r.c.Register(id, decode(id))
	}
	return id, r.BindId(name, iface, version, id)
}

// RegistryGlobalEvent announces a global object.
type RegistryGlobalEvent struct {
	Registry  *Registry
	Name      uint32
	Interface string
	Version   uint32
}

func (RegistryGlobalEvent) ImplementsEvent() {}

// RegistryGlobalRemoveEvent announces that a global went away.
type RegistryGlobalRemoveEvent struct {
	Registry *Registry
	Name     uint32
}

func (RegistryGlobalRemoveEvent) ImplementsEvent() {}

func (r *Registry) decode(d *wlb.Decoder) (wlb.Event, error) {
	switch d.Opcode() {
	case registryGlobal:
		ev := RegistryGlobalEvent{Registry: r}
		ev.Name = d.Uint32()
		ev.Interface = d.String()
		ev.Version = d.Uint32()
		return ev, d.Err()
	case registryGlobalRemove:
		ev := RegistryGlobalRemoveEvent{Registry: r}
		ev.Name = d.Uint32()
		return ev, d.Err()
	}
	return unknown(d), nil
}

func unknown(d *wlb.Decoder) wlb.Event {
	return wlb.UnknownEvent{Message: wlb.Message{Sender: d.Sender(), Opcode: d.Opcode()}}
}
