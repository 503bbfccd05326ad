// File: internal/service/service.go
// Author: momentics <momentics@gmail.com>
//
// Control-socket service bootstrapped into the reactor. The listener is a
// persistent event; every connection is a one-shot event re-added after
// each read.

package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/momentics/cndevent/api"
	"github.com/momentics/cndevent/control"
	"github.com/momentics/cndevent/internal/logging"
	"github.com/momentics/cndevent/internal/transport"
	"github.com/momentics/cndevent/reactor"
)

// EndOfReply terminates every reply on the control socket.
const EndOfReply = "."

const (
	readChunk   = 512
	maxLineSize = 4096
)

// Service answers control commands over a unix socket.
type Service struct {
	path    string
	logger  *logging.Logger
	metrics *control.MetricsRegistry
	probes  *control.DebugProbes

	loop   *reactor.Loop
	ln     *transport.Listener
	accept reactor.Event

	mu       sync.Mutex
	sessions map[*session]struct{}
}

type session struct {
	conn *transport.Conn
	ev   reactor.Event
	buf  []byte
}

// New creates a Service for socketPath. metrics and probes may be nil.
func New(socketPath string, logger *logging.Logger, metrics *control.MetricsRegistry, probes *control.DebugProbes) *Service {
	return &Service{
		path:     socketPath,
		logger:   logger,
		metrics:  metrics,
		probes:   probes,
		sessions: make(map[*session]struct{}),
	}
}

// Bootstrap binds the socket and registers the accept event. It is meant
// for reactor.WithBootstrap.
func (s *Service) Bootstrap(l *reactor.Loop) error {
	ln, err := transport.Listen(s.path)
	if err != nil {
		return err
	}
	if err := s.accept.Set(ln.FD(), true, api.HandlerFunc(s.onAccept), nil); err != nil {
		_ = ln.Close()
		return fmt.Errorf("configure accept event: %w", err)
	}
	if err := l.Add(&s.accept); err != nil {
		_ = ln.Close()
		return fmt.Errorf("register accept event: %w", err)
	}
	s.loop = l
	s.ln = ln
	if s.probes != nil {
		s.probes.RegisterProbe("watch_table", func() any { return l.Snapshot() })
		s.probes.RegisterProbe("sessions", func() any { return s.Sessions() })
	}
	s.logger.Info().Str("socket", s.path).Int("fd", ln.FD()).Log("control socket listening")
	return nil
}

// Sessions returns the number of open connections.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) onAccept(int, any) {
	for {
		conn, err := s.ln.Accept()
		if errors.Is(err, transport.ErrWouldBlock) {
			return
		}
		if err != nil {
			s.logger.Warning().Err(err).Log("accept failed")
			return
		}
		sess := &session{conn: conn}
		if err := sess.ev.Set(conn.FD(), false, api.HandlerFunc(s.onReadable), sess); err != nil {
			s.logger.Warning().Err(err).Int("fd", conn.FD()).Log("configure session failed")
			_ = conn.Close()
			continue
		}
		if err := s.loop.Add(&sess.ev); err != nil {
			s.logger.Warning().Err(err).Int("fd", conn.FD()).Log("session rejected")
			_, _ = conn.Write([]byte("error: " + err.Error() + "\n" + EndOfReply + "\n"))
			_ = conn.Close()
			continue
		}
		s.mu.Lock()
		s.sessions[sess] = struct{}{}
		s.mu.Unlock()
		s.metrics.Add("service.accepted", 1)
		s.logger.Debug().Int("fd", conn.FD()).Log("session opened")
	}
}

func (s *Service) onReadable(fd int, ctx any) {
	sess := ctx.(*session)
	var chunk [readChunk]byte
	// a peer that half-closed still gets replies to the lines it sent
	eof := false
	for {
		n, err := sess.conn.Read(chunk[:])
		if errors.Is(err, transport.ErrWouldBlock) {
			break
		}
		if errors.Is(err, io.EOF) {
			eof = true
			break
		}
		if err != nil {
			s.logger.Warning().Err(err).Int("fd", fd).Log("session read failed")
			s.closeSession(sess)
			return
		}
		sess.buf = append(sess.buf, chunk[:n]...)
		if len(sess.buf) > maxLineSize {
			s.logger.Warning().Int("fd", fd).Log("command line too long")
			s.closeSession(sess)
			return
		}
	}

	for {
		i := bytes.IndexByte(sess.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(sess.buf[:i]))
		sess.buf = sess.buf[i+1:]
		if line == "" {
			continue
		}
		if line == "quit" {
			s.closeSession(sess)
			return
		}
		reply := s.Execute(line)
		if _, err := sess.conn.Write([]byte(reply + EndOfReply + "\n")); err != nil {
			s.logger.Warning().Err(err).Int("fd", fd).Log("session write failed")
			s.closeSession(sess)
			return
		}
	}

	if eof {
		s.closeSession(sess)
		return
	}
	if err := s.loop.Add(&sess.ev); err != nil {
		s.logger.Warning().Err(err).Int("fd", fd).Log("session re-arm failed")
		s.closeSession(sess)
	}
}

// Execute runs one command and returns its reply lines, each ending in a
// newline.
func (s *Service) Execute(cmd string) string {
	s.metrics.Add("service.commands", 1)
	switch cmd {
	case "ping":
		return "pong\n"
	case "dump":
		var b strings.Builder
		if err := s.loop.Dump(&b); err != nil {
			return "error: " + err.Error() + "\n"
		}
		return b.String()
	case "stats":
		return formatSorted(s.metrics.GetSnapshot())
	case "probes":
		if s.probes == nil {
			return ""
		}
		return formatSorted(s.probes.DumpState())
	default:
		return fmt.Sprintf("error: unknown command %q\n", cmd)
	}
}

func formatSorted[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v\n", k, m[k])
	}
	return b.String()
}

func (s *Service) closeSession(sess *session) {
	// one-shot events are usually already removed by firing
	_ = s.loop.Del(&sess.ev)
	if err := sess.conn.Close(); err != nil {
		s.logger.Warning().Err(err).Log("session close failed")
	}
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.logger.Debug().Int("fd", sess.ev.FD()).Log("session closed")
}

// Close deregisters and closes every descriptor the service owns. Call it
// after the loop has stopped.
func (s *Service) Close() error {
	if s.ln == nil {
		return nil
	}
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		s.closeSession(sess)
	}
	_ = s.loop.Del(&s.accept)
	err := s.ln.Close()
	s.ln = nil
	return err
}
