// Copyright 2009 The XGB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wlb

import (
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const defaultDisplay = "wayland-0"

// environment holds the variables libwayland clients honour.
type environment struct {
	Display    string `env:"WAYLAND_DISPLAY"`
	Socket     string `env:"WAYLAND_SOCKET"`
	RuntimeDir string `env:"XDG_RUNTIME_DIR"`
	Debug      string `env:"WAYLAND_DEBUG"`
}

func readEnvironment() (environment, error) {
	var e environment
	if err := env.Parse(&e); err != nil {
		return e, errors.Wrap(err, "parse wayland environment")
	}
	return e, nil
}

// connect opens the socket to the compositor. An explicit display wins;
// otherwise an inherited $WAYLAND_SOCKET is used before $WAYLAND_DISPLAY.
func (c *Conn) connect(display string) error {
	e, err := readEnvironment()
	if err != nil {
		return err
	}
	c.debug = e.Debug == "1" || e.Debug == "client"

	if display == "" && e.Socket != "" {
		conn, err := socketFromFd(e.Socket)
		if err != nil {
			return err
		}
		// The descriptor must not be inherited a second time.
		os.Unsetenv("WAYLAND_SOCKET")
		c.conn = conn
		c.display = "WAYLAND_SOCKET=" + e.Socket
		return nil
	}

	path, err := socketPath(display, e)
	if err != nil {
		return err
	}
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return errors.Wrapf(err, "connect to %s", path)
	}
	c.conn = conn
	c.display = path
	return nil
}

// socketPath resolves a display name to a socket path. Absolute names are
// used as they are; relative ones live in $XDG_RUNTIME_DIR.
func socketPath(display string, e environment) (string, error) {
	if display == "" {
		display = e.Display
	}
	if display == "" {
		display = defaultDisplay
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	if e.RuntimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set in the environment")
	}
	return filepath.Join(e.RuntimeDir, display), nil
}

func socketFromFd(s string) (*net.UnixConn, error) {
	fd, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.Wrapf(err, "WAYLAND_SOCKET=%q", s)
	}
	unix.CloseOnExec(fd)

	f := os.NewFile(uintptr(fd), "wayland-socket")
	defer f.Close()
	fc, err := net.FileConn(f)
	if err != nil {
		return nil, errors.Wrap(err, "WAYLAND_SOCKET")
	}
	conn, ok := fc.(*net.UnixConn)
	if !ok {
		fc.Close()
		return nil, errors.Errorf("WAYLAND_SOCKET=%s is not a unix socket", s)
	}
	return conn, nil
}
