// Package server implements the TCP collaborator: a gnet event-loop
// listener that frames the length-prefixed text protocol (internal/
// protocol) around the Engine. Grounded on the teacher's
// internal/adapter/tcp/server.go gnet.BuiltinEventEngine pattern
// (OnBoot/OnOpen/OnClose/OnTraffic/OnTick/Shutdown, atomic connection
// and request counters), rewired from its binary opcode framing onto
// KVMemo's text protocol and from its per-tenant store lookup onto a
// single Engine.
package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/gnet/v2"

	"github.com/kvmemo/kvmemo/internal/engine"
	kvmemoerrs "github.com/kvmemo/kvmemo/internal/errs"
	"github.com/kvmemo/kvmemo/internal/logging"
	"github.com/kvmemo/kvmemo/internal/metrics"
	"github.com/kvmemo/kvmemo/internal/protocol"
)

// TCPServer is the gnet-backed listener for KVMemo's wire protocol.
type TCPServer struct {
	gnet.BuiltinEventEngine

	engine  *engine.Engine
	log     logging.Logger
	metrics metrics.Interface
	eng     gnet.Engine
	mu      sync.Mutex

	connections atomic.Int64
	requests    atomic.Uint64
	errorCount  atomic.Uint64

	startTime time.Time
	started   atomic.Bool
}

// connCtx is the per-connection state gnet hands back on every
// OnTraffic call via c.Context().
type connCtx struct {
	id string
}

// New returns a TCPServer dispatching to engine.
func New(e *engine.Engine, log logging.Logger, m metrics.Interface) *TCPServer {
	return &TCPServer{engine: e, log: log, metrics: m}
}

// ListenAndServe blocks running the gnet event loop on addr (e.g.
// ":6390"). It returns when the engine stops or an unrecoverable
// listener error occurs.
func (s *TCPServer) ListenAndServe(addr string) error {
	s.startTime = time.Now()
	s.started.Store(true)
	s.log.Info("tcp server starting", "addr", addr)

	return gnet.Run(s, "tcp://"+addr,
		gnet.WithMulticore(true),
		gnet.WithReusePort(true),
		gnet.WithTCPKeepAlive(time.Minute),
		gnet.WithTicker(true),
	)
}

func (s *TCPServer) OnBoot(eng gnet.Engine) gnet.Action {
	s.mu.Lock()
	s.eng = eng
	s.mu.Unlock()
	s.log.Info("tcp server booted")
	return gnet.None
}

func (s *TCPServer) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	s.connections.Add(1)
	c.SetContext(&connCtx{id: uuid.NewString()})
	return nil, gnet.None
}

func (s *TCPServer) OnClose(c gnet.Conn, err error) gnet.Action {
	s.connections.Add(-1)
	if err != nil {
		s.errorCount.Add(1)
	}
	return gnet.None
}

// OnTraffic consumes as many complete request frames as are currently
// buffered. A malformed frame header — an unparseable length, or more
// than 32 bytes with no CRLF — terminates the connection. A frame whose
// payload is shorter than its declared length is not treated as
// malformed: it is left in the buffer for the next call.
func (s *TCPServer) OnTraffic(c gnet.Conn) gnet.Action {
	defer kvmemoerrs.Guard(s.log)()

	for {
		buf, err := c.Peek(-1)
		if err != nil {
			s.errorCount.Add(1)
			return gnet.Close
		}

		length, headerLen, ok, err := protocol.ParseFrameHeader(buf)
		if err != nil {
			s.errorCount.Add(1)
			return gnet.Close
		}
		if !ok {
			return gnet.None
		}
		if len(buf) < headerLen+length {
			return gnet.None
		}

		payload := buf[headerLen : headerLen+length]
		s.handleFrame(c, payload)
		c.Discard(headerLen + length)
	}
}

func (s *TCPServer) handleFrame(c gnet.Conn, payload []byte) {
	ctx, _ := c.Context().(*connCtx)
	var connID string
	if ctx != nil {
		connID = ctx.id
	}
	c.AsyncWrite(s.dispatch(connID, payload), nil)
}

// dispatch parses and executes a single command frame, returning the
// exact reply bytes to write back. It touches nothing gnet-specific so
// it can be exercised directly in tests.
func (s *TCPServer) dispatch(connID string, payload []byte) []byte {
	s.requests.Add(1)

	cmd, err := protocol.ParseCommand(payload)
	if err != nil {
		s.errorCount.Add(1)
		s.log.Debug("malformed command", "conn", connID, "err", err)
		return protocol.EncodeError(err.Error())
	}

	switch cmd.Kind {
	case protocol.CmdSet:
		if err := s.engine.Set(cmd.Key, cmd.Value, cmd.TTLMs); err != nil {
			s.errorCount.Add(1)
			return protocol.EncodeError(err.Error())
		}
		s.metrics.IncSet()
		return protocol.EncodeOK()

	case protocol.CmdGet:
		value, ok := s.engine.Get(cmd.Key)
		if !ok {
			s.metrics.IncMiss()
			return protocol.EncodeNil()
		}
		s.metrics.IncHit()
		return protocol.EncodeBulk(value)

	case protocol.CmdDel:
		s.engine.Delete(cmd.Key)
		s.metrics.IncDelete()
		return protocol.EncodeOK()

	default:
		s.errorCount.Add(1)
		return protocol.EncodeError(kvmemoerrs.Protocol("unhandled command kind").Error())
	}
}

// OnTick also doubles as the periodic reporter for the engine's
// memory-used/key-count gauges: nothing else calls Engine.Stats on a
// schedule, and those gauges would otherwise sit frozen at zero between
// whatever admin HTTP requests happen to land.
func (s *TCPServer) OnTick() (time.Duration, gnet.Action) {
	if !s.started.Load() {
		return time.Minute, gnet.None
	}
	stats := s.engine.Stats()
	s.log.Info("tcp server stats",
		"connections", s.connections.Load(),
		"requests", s.requests.Load(),
		"errors", s.errorCount.Load(),
		"keys", stats.TotalKeys,
		"memory_used", stats.MemoryUsed,
		"uptime", time.Since(s.startTime).String())
	return 30 * time.Second, gnet.None
}

// Shutdown stops the gnet engine, waiting up to timeout for in-flight
// connections to drain.
func (s *TCPServer) Shutdown(timeout time.Duration) error {
	if !s.started.Swap(false) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.mu.Lock()
	eng := s.eng
	s.mu.Unlock()
	return eng.Stop(ctx)
}

// Stats reports the connection, request, and error counters. The admin
// HTTP surface does not read them; OnTick logs the same counters.
func (s *TCPServer) Stats() (connections int64, requests uint64, errs uint64) {
	return s.connections.Load(), s.requests.Load(), s.errorCount.Load()
}
