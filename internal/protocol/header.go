package protocol

import "encoding/binary"

// Dialect distinguishes the 6-byte client header from the 4-byte manager
// header. Modeled as a discriminator on a single Header type rather than
// two distinct structs, since every field but SenderID is shared between
// the two (spec §9 rearchitecture hint).
type Dialect uint8

const (
	ClientDialect Dialect = iota
	ManagerDialect
)

// Len returns the on-wire header size for the dialect.
func (d Dialect) Len() int {
	if d == ManagerDialect {
		return 4
	}
	return 6
}

// Header is the decoded form of either dialect's fixed-size header.
// SenderID is always 0 under ManagerDialect.
type Header struct {
	Type       uint8
	Version    uint8
	SenderID   uint16
	PayloadLen uint16
}

// DecodeHeader reads a dialect header from buf, converting big-endian wire
// integers to host form. It fails with EC_INV_REQ if fewer bytes than the
// dialect's header size are available.
func DecodeHeader(buf []byte, dialect Dialect) (Header, error) {
	n := dialect.Len()
	if len(buf) < n {
		return Header{}, Coded(ECInvReq)
	}

	h := Header{
		Type:    buf[0],
		Version: buf[1],
	}
	if dialect == ManagerDialect {
		h.PayloadLen = binary.BigEndian.Uint16(buf[2:4])
		return h, nil
	}
	h.SenderID = binary.BigEndian.Uint16(buf[2:4])
	h.PayloadLen = binary.BigEndian.Uint16(buf[4:6])
	return h, nil
}

// Encode writes the header in its wire form for the given dialect.
func (h Header) Encode(dialect Dialect) []byte {
	buf := make([]byte, dialect.Len())
	buf[0] = h.Type
	buf[1] = h.Version
	if dialect == ManagerDialect {
		binary.BigEndian.PutUint16(buf[2:4], h.PayloadLen)
		return buf
	}
	binary.BigEndian.PutUint16(buf[2:4], h.SenderID)
	binary.BigEndian.PutUint16(buf[4:6], h.PayloadLen)
	return buf
}
