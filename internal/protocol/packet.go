// Package protocol implements the wire codec: the two header dialects and
// the BER-tagged payload fields used by the chat server, the starter, and
// the server manager.
package protocol

import "errors"

// PacketType identifies the kind of packet carried by a client-dialect header.
type PacketType uint8

// Client-dialect packet types (see spec §6).
const (
	SysSuccess PacketType = 0x00
	SysError   PacketType = 0x01

	AccLogin        PacketType = 0x0A
	AccLoginSuccess PacketType = 0x0B
	AccLogout       PacketType = 0x0C
	AccCreate       PacketType = 0x0D
	AccEdit         PacketType = 0x0E

	ChtSend PacketType = 0x14

	LstGet      PacketType = 0x1E
	LstResponse PacketType = 0x1F

	GrpJoin   PacketType = 0x28
	GrpExit   PacketType = 0x29
	GrpCreate PacketType = 0x2A

	// SvrDiagnostic is sent server->manager on the client dialect with
	// sender_id=0, payload_len=10.
	SvrDiagnostic PacketType = 0x0A
)

// ManagerPacketType identifies the kind of packet carried by a manager-dialect header.
type ManagerPacketType uint8

const (
	ManSuccess ManagerPacketType = 0x00
	ManError   ManagerPacketType = 0x01

	UsrOnline  ManagerPacketType = 0x0B
	SvrOnline  ManagerPacketType = 0x0C
	SvrOffline ManagerPacketType = 0x0D

	SvrStart ManagerPacketType = 0x14
	SvrStop  ManagerPacketType = 0x15
)

// Version is the current client-dialect protocol version.
const Version uint8 = 3

// ErrorCode is the closed set of error codes a SYS_ERROR packet can carry.
type ErrorCode uint8

const (
	ECGood        ErrorCode = 0x00
	ECInvUserID   ErrorCode = 0x0B
	ECInvAuthInfo ErrorCode = 0x0C
	ECUserExists  ErrorCode = 0x0D
	ECServer      ErrorCode = 0x15
	ECInvReq      ErrorCode = 0x1F
	ECReqTimeout  ErrorCode = 0x20
)

// errorText is the fixed human-readable table from spec §4.1.
var errorText = map[ErrorCode]string{
	ECInvUserID:   "Invalid User ID",
	ECInvAuthInfo: "Invalid Authentication",
	ECUserExists:  "User Already Exist",
	ECServer:      "Server Error",
	ECInvReq:      "Invalid message",
	ECReqTimeout:  "message Timeout",
}

func (c ErrorCode) String() string {
	if s, ok := errorText[c]; ok {
		return s
	}
	return "Unknown Error"
}

// CodedError carries a protocol ErrorCode through Go's normal error path so
// handlers never need to inspect error strings to decide what to send back
// on the wire.
type CodedError struct {
	Code ErrorCode
}

func (e *CodedError) Error() string { return e.Code.String() }

// Coded wraps code in a *CodedError.
func Coded(code ErrorCode) error { return &CodedError{Code: code} }

// AsCoded extracts the ErrorCode carried by err, defaulting to EC_SERVER for
// any error that didn't originate from this package.
func AsCoded(err error) ErrorCode {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ECServer
}
