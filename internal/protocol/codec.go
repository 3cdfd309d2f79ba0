package protocol

// Response is an encodable client-dialect reply: a header plus its already
// BER-encoded payload bytes.
type Response struct {
	Type     uint8
	Version  uint8
	SenderID uint16
	Payload  []byte
}

// Encode writes the 6-byte header followed by the payload. payload_len is
// set to the exact byte count of Payload.
func (r Response) Encode() []byte {
	h := Header{
		Type:       r.Type,
		Version:    r.Version,
		SenderID:   r.SenderID,
		PayloadLen: uint16(len(r.Payload)),
	}
	buf := h.Encode(ClientDialect)
	return append(buf, r.Payload...)
}

// SuccessWithUserID builds the ACC_LOGIN_SUCCESS / ACC_CREATE success reply:
// a single INTEGER field carrying the assigned user_id.
func SuccessWithUserID(version uint8, userID uint16) Response {
	return Response{
		Type:    uint8(AccLoginSuccess),
		Version: version,
		Payload: encodeInt(uint32(userID)),
	}
}

// SuccessEmpty builds a SYS_SUCCESS reply with no payload, used for ACC_EDIT.
func SuccessEmpty(version uint8) Response {
	return Response{
		Type:    uint8(SysSuccess),
		Version: version,
		Payload: nil,
	}
}

// EncodeError builds a SYS_ERROR response: {INTEGER code}{STRING text}.
// Per spec §4.1, ACC_LOGOUT never produces an error packet: for that
// requestType it returns ok=false and an empty Response, and callers send
// a packet only when ok is true.
func EncodeError(version uint8, code ErrorCode, requestType uint8) (resp Response, ok bool) {
	if PacketType(requestType) == AccLogout {
		return Response{}, false
	}
	payload := append(encodeInt(uint32(code)), encodeString(code.String())...)
	return Response{
		Type:    uint8(SysError),
		Version: version,
		Payload: payload,
	}, true
}

// DiagnosticPayloadLen is the fixed payload length declared in the
// diagnostic packet's header (spec §6).
const DiagnosticPayloadLen = 10

// NewDiagnosticBuffer builds the 16-byte diagnostic message once, with
// constant header/tag/length bytes and zeroed counter values. Call
// UpdateDiagnosticBuffer on the returned slice on every tick; only the two
// integer value positions are rewritten in place.
func NewDiagnosticBuffer() []byte {
	buf := make([]byte, 16)
	h := Header{
		Type:       uint8(SvrDiagnostic),
		Version:    Version,
		SenderID:   0,
		PayloadLen: DiagnosticPayloadLen,
	}
	copy(buf[0:6], h.Encode(ClientDialect))
	buf[6] = byte(TagInt)
	buf[7] = 2
	// buf[8:10] is user_count, filled by UpdateDiagnosticBuffer.
	buf[10] = byte(TagInt)
	buf[11] = 4
	// buf[12:16] is msg_count, filled by UpdateDiagnosticBuffer.
	return buf
}

// UpdateDiagnosticBuffer rewrites the user_count (offset 8) and msg_count
// (offset 12) value positions of a buffer built by NewDiagnosticBuffer.
func UpdateDiagnosticBuffer(buf []byte, userCount uint16, msgCount uint32) {
	buf[8] = byte(userCount >> 8)
	buf[9] = byte(userCount)
	buf[12] = byte(msgCount >> 24)
	buf[13] = byte(msgCount >> 16)
	buf[14] = byte(msgCount >> 8)
	buf[15] = byte(msgCount)
}
