// Package chatserver implements the connection multiplexer: it accepts
// clients, frames and dispatches their packets, and on a tick interval
// persists the user-PK counter and emits diagnostics to the manager.
//
// The spec this is built from describes a single-threaded, readiness-based
// poll loop so that all mutable server state is touched by exactly one
// thread and needs no locking. Go has no idiomatic rendering of a hand
// rolled EAGAIN/poll loop, so this keeps the same invariant a different
// way: one goroutine per connection does blocking reads and forwards
// decoded frames over a channel; a single dispatch goroutine is the only
// reader of that channel and the only thing that ever touches the session
// table or the shared counters.
package chatserver

import (
	"context"
	"io"
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/glennswest/chatd/internal/accounts"
	"github.com/glennswest/chatd/internal/chat"
	"github.com/glennswest/chatd/internal/protocol"
)

// DefaultCapacity is the reference slot capacity from the original
// implementation's MAX_FDS.
const DefaultCapacity = 5

// DefaultTick is the readiness-wait timeout driving persistence sync and
// diagnostic emission.
const DefaultTick = 5 * time.Second

// Server is the connection multiplexer.
type Server struct {
	listener net.Listener
	accounts *accounts.Handler
	chat     *chat.Counter
	mgmt     io.Writer

	capacity int
	tick     time.Duration

	sessions map[uint64]*session
	nextID   uint64
	events   chan connEvent
	done     chan struct{}

	diagBuf []byte
}

// New builds a Server listening on l. mgmt may be nil if no management
// connection is available yet; diagnostics are skipped in that case.
func New(l net.Listener, accountsHandler *accounts.Handler, chatCounter *chat.Counter, mgmt io.Writer) *Server {
	return &Server{
		listener: l,
		accounts: accountsHandler,
		chat:     chatCounter,
		mgmt:     mgmt,
		capacity: DefaultCapacity,
		tick:     DefaultTick,
		sessions: make(map[uint64]*session),
		events:   make(chan connEvent),
		done:     make(chan struct{}),
		diagBuf:  protocol.NewDiagnosticBuffer(),
	}
}

// Run accepts connections and drives the dispatch loop until ctx is
// cancelled or a persistence error makes continuing unsafe, per spec §4.2's
// "persistence errors on the USER_PK sync are fatal to the loop".
func (s *Server) Run(ctx context.Context) error {
	// runCtx is cancelled on every exit path, including a fatal tick
	// error, so acceptLoop's blocked send to s.events (once this loop has
	// stopped consuming it) always has a way to unblock and return.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		s.acceptLoop(runCtx)
	}()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stop()
			close(s.done)
			s.listener.Close()
			s.closeAll()
			<-acceptDone
			return nil

		case ev := <-s.events:
			s.handleEvent(ctx, ev)

		case <-ticker.C:
			if err := s.onTick(ctx); err != nil {
				log.Errorf("chatserver: tick persistence failed: %v", err)
				stop()
				close(s.done)
				s.listener.Close()
				s.closeAll()
				<-acceptDone
				return err
			}
		}
	}
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Errorf("chatserver: accept: %v", err)
				return
			}
		}

		// id is assigned by admit() on the dispatch loop, the single owner
		// of nextID, so accept and dispatch never race over it.
		sess := newSession(0, conn)

		// Slot admission happens on the dispatch loop's schedule via a
		// synthetic event so capacity checks never race with dispatch.
		select {
		case s.events <- connEvent{session: sess, kind: eventAccepted}:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

const eventAccepted eventKind = -1

func (s *Server) handleEvent(ctx context.Context, ev connEvent) {
	if ev.kind == eventAccepted {
		s.admit(ev.session)
		return
	}

	if _, ok := s.sessions[ev.session.id]; !ok {
		// Stale event for a session already removed; the read goroutine's
		// next blocked read unblocked after we closed the connection.
		return
	}

	switch ev.kind {
	case eventFrame:
		s.dispatch(ctx, ev.session, ev.header, ev.payload)
	case eventReadError:
		// A malformed header or a short payload (spec §8 scenario 3): still
		// owed a SYS_ERROR reply before the slot is freed, same as any
		// handler error in dispatch.
		s.writeError(ev.session, ev.header.Type)
		s.closeSession(ev.session)
	case eventClosed:
		s.closeSession(ev.session)
	}
}

// writeError encodes and writes an EC_INV_REQ response addressed to reqType.
// reqType is the zero value when the header itself failed to decode; the
// zero packet type still falls through to EC_INV_REQ like any other
// unrecognized type.
func (s *Server) writeError(sess *session, reqType uint8) {
	errResp, ok := protocol.EncodeError(protocol.Version, protocol.Coded(protocol.ECInvReq), reqType)
	if ok {
		sess.conn.Write(errResp.Encode())
	}
}

func (s *Server) admit(sess *session) {
	if len(s.sessions) >= s.capacity {
		sess.conn.Close()
		return
	}
	s.nextID++
	sess.id = s.nextID
	sess.clientID = s.nextID
	s.sessions[sess.id] = sess
	go readLoop(sess, s.events, s.done)
}

func (s *Server) closeSession(sess *session) {
	sess.conn.Close()
	sess.state = stateClosed
	delete(s.sessions, sess.id)
}

func (s *Server) closeAll() {
	for _, sess := range s.sessions {
		sess.conn.Close()
	}
	s.sessions = make(map[uint64]*session)
}

// userCount recomputes the authenticated-user count by scanning sessions,
// matching the spec's "user_count is recomputable by scanning slots".
func (s *Server) userCount() uint16 {
	var n uint16
	for _, sess := range s.sessions {
		if sess.state == stateAuthed {
			n++
		}
	}
	return n
}

func (s *Server) onTick(ctx context.Context) error {
	if err := s.accounts.SyncUserIndex(ctx); err != nil {
		return err
	}

	if s.mgmt == nil {
		return nil
	}
	protocol.UpdateDiagnosticBuffer(s.diagBuf, s.userCount(), s.chat.Count())
	if _, err := s.mgmt.Write(s.diagBuf); err != nil {
		// The manager is expected to drain promptly; a write failure here
		// does not affect any client session (spec §4.2).
		log.Warnf("chatserver: diagnostic write failed: %v", err)
	}
	return nil
}
