// Package server implements the server half of Yuzu: the mutation
// tracker, patch batcher, and session layer described in spec §4,
// wired to either the built-in WebSocket transport or a host-supplied
// external transport (spec §4.6).
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/yuzu-sync/yuzu/jsonvalue"
	"github.com/yuzu-sync/yuzu/wire"
	"github.com/yuzu-sync/yuzu/yuzulog"
)

// Options configures a Server (spec §6, "Server constructor
// configuration").
type Options struct {
	// Initial is the tree's initial value; any Go value json.Marshal can
	// encode (struct, map, slice, primitive).
	Initial any

	// ServerRef, if set, is a host-owned HTTP server to attach the
	// WebSocket handler to. New does not touch it: Server.ListenAndServe
	// mounts the handler at Path beside ServerRef's own Handler and
	// serves it, or the host mounts Server.Handler() itself.
	ServerRef *http.Server

	// ServerPort, if set (and ServerRef is nil and ExternalTransport is
	// false), binds a new HTTP server to this port (spec's
	// serverConfig.port).
	ServerPort int

	// Path is the WebSocket upgrade path, default DefaultPath.
	Path string

	// BatchDelay is the patch coalescing window; 0 disables batching
	// (spec §4.2).
	BatchDelay time.Duration

	// Authenticate gates connection admission during the upgrade
	// handshake (spec §4.6). Optional.
	Authenticate AuthenticateFunc

	// ExternalTransport switches to external mode (spec §4.6): the
	// library creates no transport of its own, the host calls OnMessage
	// whenever Yuzu wants to send, and drives inbound bytes through the
	// Server's HandleClientMessage.
	ExternalTransport bool
	OnMessage         func(id wire.ClientID, buf []byte) error

	// Logger receives all log output; defaults to yuzulog.New(LogLevel),
	// where the zero LogLevel is yuzulog.LevelDebug.
	Logger yuzulog.Logger
	// LogLevel is only consulted when Logger is nil.
	LogLevel yuzulog.Level
}

// Server is the authoritative state tree plus the machinery that
// observes, batches, and broadcasts every mutation (spec §2).
type Server struct {
	opts      Options
	logger    yuzulog.Logger
	tracker   *tracker
	batcher   *batcher
	transport wire.ServerTransport
	ws        *wsTransport // nil in external mode

	State *State
}

// New constructs a Server. At least one of ServerRef, ServerPort, or
// ExternalTransport must be set; in external mode OnMessage must be
// set too (spec §6's construction-misconfiguration rule, spec §7).
func New(opts Options) (*Server, error) {
	if opts.ServerRef == nil && opts.ServerPort == 0 && !opts.ExternalTransport {
		return nil, fmt.Errorf("server: one of ServerRef, ServerPort, or ExternalTransport must be set")
	}
	if opts.ExternalTransport && opts.OnMessage == nil {
		return nil, fmt.Errorf("server: external transport requires OnMessage")
	}

	logger := opts.Logger
	if logger == nil {
		logger = yuzulog.New(opts.LogLevel)
	}

	initial, err := jsonvalue.From(opts.Initial)
	if err != nil {
		return nil, fmt.Errorf("server: Initial: %w", err)
	}

	s := &Server{opts: opts, logger: logger}

	s.tracker = newTracker(initial, s.onPatch)
	s.batcher = newBatcher(opts.BatchDelay, s.sendPatch, s.sendPatchBatch)
	s.State = &State{t: s.tracker}

	if opts.ExternalTransport {
		s.transport = wire.ServerTransportFunc(opts.OnMessage)
	} else {
		s.ws = newWSTransport(opts.Path, opts.Authenticate, logger)
		s.ws.onMessage = s.HandleClientMessage
		s.transport = s.ws
	}

	return s, nil
}

// onPatch is the tracker's callback: every observed write enters the
// batcher (spec data flow, §2).
func (s *Server) onPatch(p wire.Patch) {
	s.batcher.Add(p)
}

func (s *Server) sendPatch(p wire.Patch) {
	s.broadcast(wire.NewPatchMessage(p))
}

func (s *Server) sendPatchBatch(patches []wire.Patch) {
	s.broadcast(wire.NewPatchBatchMessage(patches))
}

func (s *Server) broadcast(msg any) {
	buf, err := wire.Marshal(msg)
	if err != nil {
		s.logger.Errorf("marshal: %v", err)
		return
	}
	if err := s.transport.Send("", buf); err != nil {
		s.logger.Warnf("broadcast: %v", err)
	}
}

// HandleClientMessage is the external-mode entry point the host calls
// with inbound wire bytes (spec §4.6); it is also what the built-in
// WebSocket transport calls internally. Malformed messages are logged
// and discarded; unknown message types are silently ignored (spec §7).
func (s *Server) HandleClientMessage(buf []byte, id wire.ClientID) {
	msg, err := wire.Decode(buf)
	if err != nil {
		if err == wire.ErrUnknownType {
			return
		}
		s.logger.Errorf("malformed client message: %v", err)
		return
	}
	switch msg.(type) {
	case wire.CompleteRequest:
		s.handleComplete(id)
	default:
		// Any other decoded shape arriving from a client is unexpected
		// (clients only ever send complete requests, spec §6) but is
		// still just ignored rather than treated as an error.
	}
}

func (s *Server) handleComplete(id wire.ClientID) {
	snapshot := s.tracker.snapshot()
	reply := wire.NewCompleteReply(snapshot)
	buf, err := wire.Marshal(reply)
	if err != nil {
		s.logger.Errorf("marshal complete reply: %v", err)
		return
	}
	if err := s.transport.Send(id, buf); err != nil {
		s.logger.Warnf("send complete reply to %s: %v", id, err)
	}
}

// Handler returns the WebSocket upgrade http.Handler to mount at
// opts.Path, for hosts that want to attach Yuzu to their own router
// instead of using ListenAndServe (spec's serverRef option).
func (s *Server) Handler() http.Handler {
	if s.ws == nil {
		return http.NotFoundHandler()
	}
	return s.ws.Handler()
}

// ListenAndServe starts serving, either on ServerRef (registering the
// handler beside its existing Handler and serving it) or on a freshly bound
// ServerPort. It blocks until the server stops or ctx is canceled. Not
// used in external mode.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.ws == nil {
		return fmt.Errorf("server: ListenAndServe is not used in external transport mode")
	}

	if s.opts.ServerRef != nil {
		mux := http.NewServeMux()
		mux.Handle(s.ws.path, s.ws.Handler())
		if s.opts.ServerRef.Handler == nil {
			s.opts.ServerRef.Handler = mux
		} else {
			existing := s.opts.ServerRef.Handler
			mux.Handle("/", existing)
			s.opts.ServerRef.Handler = mux
		}
		return s.serveWithContext(ctx, s.opts.ServerRef)
	}

	addr := fmt.Sprintf(":%d", s.opts.ServerPort)
	mux := http.NewServeMux()
	mux.Handle(s.ws.path, s.ws.Handler())
	httpServer := &http.Server{Addr: addr, Handler: mux}
	return s.serveWithContext(ctx, httpServer)
}

func (s *Server) serveWithContext(ctx context.Context, httpServer *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		ln, err := net.Listen("tcp", httpServer.Addr)
		if err != nil {
			errCh <- err
			return
		}
		s.logger.Logf("listening on %s%s", httpServer.Addr, s.ws.path)
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Close stops the patch batcher's timer (spec §4.2: any buffered
// patches are dropped). It does not close open WebSocket connections,
// and ListenAndServe's http.Server shutdown does not close them either.
func (s *Server) Close() {
	s.batcher.Close()
}
