package chatserver

import (
	"context"

	"github.com/glennswest/chatd/internal/protocol"
)

// dispatch runs the per-connection read/dispatch cycle's decode-and-handle
// phase for one already-framed packet, then writes whatever response (or
// error) the handler produces and updates the session's state.
func (s *Server) dispatch(ctx context.Context, sess *session, h protocol.Header, payload []byte) {
	reqType := h.Type

	resp, err := s.handle(ctx, sess, reqType, payload)

	if protocol.PacketType(reqType) == protocol.AccLogout {
		// Logout never produces a response packet, success or failure, and
		// always terminates the session (spec §4.2, §7).
		s.closeSession(sess)
		return
	}

	if err != nil {
		if errResp, ok := protocol.EncodeError(protocol.Version, protocol.AsCoded(err), reqType); ok {
			sess.conn.Write(errResp.Encode())
		}
		s.closeSession(sess)
		return
	}

	if protocol.PacketType(reqType) == protocol.ChtSend {
		// No reply is sent to the sender on a successful CHT_SEND.
		return
	}

	if _, werr := sess.conn.Write(resp.Encode()); werr != nil {
		s.closeSession(sess)
	}
}

// handle runs the account/chat business logic for one request and returns
// the response to encode. err is a *protocol.CodedError produced by the
// accounts/chat packages, or protocol.Coded(EC_INV_REQ) for anything this
// multiplexer rejects outright (unauthenticated, reserved, or unknown
// packet types).
func (s *Server) handle(ctx context.Context, sess *session, reqType uint8, payload []byte) (protocol.Response, error) {
	switch protocol.PacketType(reqType) {
	case protocol.AccLogin:
		login, err := protocol.DecodeLoginPayload(payload)
		if err != nil {
			return protocol.Response{}, err
		}
		userID, err := s.accounts.Login(ctx, login)
		if err != nil {
			return protocol.Response{}, err
		}
		sess.state = stateAuthed
		sess.clientID = uint64(userID)
		sess.username = login.Username
		return protocol.SuccessWithUserID(protocol.Version, userID), nil

	case protocol.AccCreate:
		login, err := protocol.DecodeLoginPayload(payload)
		if err != nil {
			return protocol.Response{}, err
		}
		userID, err := s.accounts.Create(ctx, login)
		if err != nil {
			return protocol.Response{}, err
		}
		sess.state = stateAuthed
		sess.clientID = uint64(userID)
		sess.username = login.Username
		return protocol.SuccessWithUserID(protocol.Version, userID), nil

	case protocol.AccEdit:
		if sess.state != stateAuthed {
			return protocol.Response{}, protocol.Coded(protocol.ECInvReq)
		}
		edit, err := protocol.DecodeEditPayload(payload)
		if err != nil {
			return protocol.Response{}, err
		}
		if err := s.accounts.Edit(ctx, sess.username, edit); err != nil {
			return protocol.Response{}, err
		}
		return protocol.SuccessEmpty(protocol.Version), nil

	case protocol.ChtSend:
		if sess.state != stateAuthed {
			return protocol.Response{}, protocol.Coded(protocol.ECInvReq)
		}
		msg, err := protocol.DecodeChatPayload(payload)
		if err != nil {
			return protocol.Response{}, err
		}
		s.chat.Handle(msg.Message)
		return protocol.Response{}, nil

	default:
		// LST_GET, GRP_JOIN/EXIT/CREATE, and anything unrecognized are
		// reserved or unknown: both route to EC_INV_REQ (spec §4.2, §9).
		return protocol.Response{}, protocol.Coded(protocol.ECInvReq)
	}
}
