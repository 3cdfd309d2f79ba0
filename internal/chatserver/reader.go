package chatserver

import (
	"io"

	"github.com/glennswest/chatd/internal/protocol"
)

// eventKind discriminates the events a connection's read goroutine can
// raise to the dispatch loop.
type eventKind int

const (
	eventFrame eventKind = iota
	eventReadError
	eventClosed
)

// connEvent is produced by a session's read goroutine and consumed only by
// the dispatch loop, which is the sole owner of session and server state —
// the Go analogue of the spec's single-threaded readiness loop.
type connEvent struct {
	session *session
	kind    eventKind
	header  protocol.Header
	payload []byte
}

// readLoop performs blocking reads of framed packets and forwards each
// decoded frame, or any read failure, to events. It returns once the
// connection errors or is closed. done is closed on server shutdown so a
// read goroutine whose connection was just torn down by closeAll never
// blocks forever trying to deliver one last event nobody will consume.
func readLoop(s *session, events chan<- connEvent, done <-chan struct{}) {
	header := make([]byte, 6)
	for {
		if _, err := io.ReadFull(s.conn, header); err != nil {
			send(events, done, connEvent{session: s, kind: eventClosed})
			return
		}

		h, err := protocol.DecodeHeader(header, protocol.ClientDialect)
		if err != nil {
			send(events, done, connEvent{session: s, kind: eventReadError})
			return
		}

		payload := make([]byte, h.PayloadLen)
		if h.PayloadLen > 0 {
			if _, err := io.ReadFull(s.conn, payload); err != nil {
				// A short payload (spec §8 scenario 3): the header declared
				// more bytes than the client actually sent. h.Type travels
				// with the event so the dispatch loop can still emit a
				// properly-addressed SYS_ERROR before closing the session.
				send(events, done, connEvent{session: s, kind: eventReadError, header: h})
				return
			}
		}

		if !send(events, done, connEvent{session: s, kind: eventFrame, header: h, payload: payload}) {
			return
		}
	}
}

func send(events chan<- connEvent, done <-chan struct{}, ev connEvent) bool {
	select {
	case events <- ev:
		return true
	case <-done:
		return false
	}
}
