package wlb

import (
	"bytes"
	"net"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// socketPair returns two connected unix stream sockets.
func socketPair(t *testing.T) (client, server *net.UnixConn) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	return fileUnixConn(t, fds[0], "client"), fileUnixConn(t, fds[1], "server")
}

func fileUnixConn(t *testing.T, fd int, name string) *net.UnixConn {
	t.Helper()
	f := os.NewFile(uintptr(fd), name)
	defer f.Close()
	fc, err := net.FileConn(f)
	require.NoError(t, err)
	conn, ok := fc.(*net.UnixConn)
	require.True(t, ok, "%s is not a unix socket", name)
	return conn
}

// dummyCompositor is the far end of a test connection. It reads whole
// requests and writes raw events.
type dummyCompositor struct {
	t       *testing.T
	conn    *net.UnixConn
	pending []byte
	fds     []int
}

// newTestConn connects a Conn to a dummy compositor over a socketpair.
func newTestConn(t *testing.T) (*Conn, *dummyCompositor) {
	t.Helper()
	client, server := socketPair(t)
	c, err := postNewConn(&Conn{conn: client, display: "socketpair"})
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close()
		server.Close()
	})
	return c, &dummyCompositor{t: t, conn: server}
}

func (s *dummyCompositor) next() Message {
	s.t.Helper()
	buf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(maxFds*4))
	for {
		if len(s.pending) >= headerSize {
			msg, size, err := parseHeader(s.pending)
			require.NoError(s.t, err)
			if len(s.pending) >= size {
				msg.Data = append([]byte(nil), s.pending[headerSize:size]...)
				msg.Fds, s.fds = s.fds, nil
				s.pending = s.pending[size:]
				return msg
			}
		}
		s.conn.SetReadDeadline(time.Now().Add(time.Second))
		n, oobn, _, _, err := s.conn.ReadMsgUnix(buf, oob)
		require.NoError(s.t, err)
		if oobn > 0 {
			fds, err := parseRights(oob[:oobn])
			require.NoError(s.t, err)
			s.fds = append(s.fds, fds...)
		}
		s.pending = append(s.pending, buf[:n]...)
	}
}

func (s *dummyCompositor) send(msg Message) {
	s.t.Helper()
	buf, err := msg.Bytes()
	require.NoError(s.t, err)
	var oob []byte
	if len(msg.Fds) > 0 {
		oob = unix.UnixRights(msg.Fds...)
	}
	_, _, err = s.conn.WriteMsgUnix(buf, oob, nil)
	require.NoError(s.t, err)
}

// ispired by https://golang.org/src/runtime/debug/stack.go?s=587:606#L21
// stack returns a formatted stack trace of all goroutines.
// It calls runtime.Stack with a large enough buffer to capture the entire trace.
func stack() []byte {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}

type goroutine struct {
	id    int
	name  string
	stack []byte
}

type leaks struct {
	name       string
	goroutines map[int]goroutine
}

func leaksMonitor(name string) leaks {
	return leaks{
		name,
		leaks{}.collectGoroutines(),
	}
}

func (_ leaks) collectGoroutines() map[int]goroutine {
	res := make(map[int]goroutine)
	stacks := bytes.Split(stack(), []byte{'\n', '\n'})

	regexpId := regexp.MustCompile(`^\s*goroutine\s*(\d+)`)
	for _, st := range stacks {
		lines := bytes.Split(st, []byte{'\n'})
		if len(lines) < 2 {
			panic("routine stack has less than two lines: " + string(st))
		}

		idMatches := regexpId.FindSubmatch(lines[0])
		if len(idMatches) < 2 {
			panic("no id found in goroutine stack's first line: " + string(lines[0]))
		}
		id, err := strconv.Atoi(string(idMatches[1]))
		if err != nil {
			panic("converting goroutine id to number error: " + err.Error())
		}
		if _, ok := res[id]; ok {
			panic("2 goroutines with same id: " + strconv.Itoa(id))
		}
		res[id] = goroutine{id, strings.TrimSpace(string(lines[1])), st}
	}
	return res
}

func (l leaks) leakingGoroutines() []goroutine {
	var res []goroutine
	for id, gr := range l.collectGoroutines() {
		if _, ok := l.goroutines[id]; !ok {
			res = append(res, gr)
		}
	}
	return res
}

// checkTesting fails t if goroutines started since the monitor was created
// are still running after a grace period.
func (l leaks) checkTesting(t *testing.T) {
	t.Helper()
	leakTimeout := time.Second
	deadline := time.Now().Add(leakTimeout)
	for {
		lgrs := l.leakingGoroutines()
		if len(lgrs) == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Errorf("%s: %d goroutine leaks", l.name, len(lgrs))
			for _, gr := range lgrs {
				t.Log(gr.name, "\n", string(gr.stack))
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLeaks(t *testing.T) {
	lm := leaksMonitor("lm")
	if lgrs := lm.leakingGoroutines(); len(lgrs) != 0 {
		t.Errorf("leakingGoroutines returned %d leaking goroutines, want 0", len(lgrs))
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		<-done
		close(stopped)
	}()

	if lgrs := lm.leakingGoroutines(); len(lgrs) != 1 {
		t.Errorf("leakingGoroutines returned %d leaking goroutines, want 1", len(lgrs))
	}

	close(done)
	<-stopped
	lm.checkTesting(t)
}
