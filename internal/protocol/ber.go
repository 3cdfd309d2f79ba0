package protocol

import "encoding/binary"

// Tag is the one-byte BER field discriminator. Only INTEGER and STRING are
// produced or consumed by this implementation; the rest are reserved and
// must be tolerated on read but need not be encoded (spec §3).
type Tag uint8

const (
	TagBool     Tag = 0x01
	TagInt      Tag = 0x02
	TagNull     Tag = 0x05
	TagEnum     Tag = 0x0A
	TagString   Tag = 0x0C
	TagSeq      Tag = 0x10
	TagPrintStr Tag = 0x13
	TagUTCTime  Tag = 0x17
	TagTime     Tag = 0x18
	TagSeqOf    Tag = 0x30
)

// encodeInt writes a BER INTEGER field using the narrowest of 1, 2, or 4
// big-endian bytes that holds v.
func encodeInt(v uint32) []byte {
	switch {
	case v <= 0xFF:
		return []byte{byte(TagInt), 1, byte(v)}
	case v <= 0xFFFF:
		buf := make([]byte, 4)
		buf[0] = byte(TagInt)
		buf[1] = 2
		binary.BigEndian.PutUint16(buf[2:], uint16(v))
		return buf
	default:
		buf := make([]byte, 6)
		buf[0] = byte(TagInt)
		buf[1] = 4
		binary.BigEndian.PutUint32(buf[2:], v)
		return buf
	}
}

// encodeString writes a BER STRING field: UTF-8 bytes, not NUL-terminated.
func encodeString(s string) []byte {
	b := []byte(s)
	buf := make([]byte, 2+len(b))
	buf[0] = byte(TagString)
	buf[1] = byte(len(b))
	copy(buf[2:], b)
	return buf
}

// fieldReader walks a BER-tagged payload field by field, enforcing that no
// read crosses the declared payload boundary.
type fieldReader struct {
	buf []byte
	pos int
}

func newFieldReader(buf []byte) *fieldReader {
	return &fieldReader{buf: buf}
}

// next returns the tag, length, and value of the next field, advancing the
// cursor past it. It fails with EC_INV_REQ if the tag/length header or the
// declared value length exceeds the remaining bytes.
func (r *fieldReader) next() (Tag, []byte, error) {
	if r.pos+2 > len(r.buf) {
		return 0, nil, Coded(ECInvReq)
	}
	tag := Tag(r.buf[r.pos])
	length := int(r.buf[r.pos+1])
	start := r.pos + 2
	if start+length > len(r.buf) {
		return 0, nil, Coded(ECInvReq)
	}
	r.pos = start + length
	return tag, r.buf[start : start+length], nil
}

// expectString reads the next field and requires it to be a STRING.
func (r *fieldReader) expectString() (string, error) {
	tag, value, err := r.next()
	if err != nil {
		return "", err
	}
	if tag != TagString {
		return "", Coded(ECInvReq)
	}
	return string(value), nil
}

