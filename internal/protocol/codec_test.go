package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeaderClientDialect(t *testing.T) {
	buf := []byte{0x0D, 0x03, 0x00, 0x00, 0x00, 0x09}
	h, err := DecodeHeader(buf, ClientDialect)
	require.NoError(t, err)
	assert.Equal(t, uint8(AccCreate), h.Type)
	assert.Equal(t, uint8(3), h.Version)
	assert.Equal(t, uint16(0), h.SenderID)
	assert.Equal(t, uint16(9), h.PayloadLen)
}

func TestDecodeHeaderShortBufferIsInvalidRequest(t *testing.T) {
	_, err := DecodeHeader([]byte{0x0D, 0x03}, ClientDialect)
	require.Error(t, err)
	assert.Equal(t, ECInvReq, AsCoded(err))
}

func TestDecodeHeaderManagerDialect(t *testing.T) {
	buf := []byte{0x14, 0x03, 0x00, 0x00}
	h, err := DecodeHeader(buf, ManagerDialect)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x14), h.Type)
	assert.Equal(t, uint16(0), h.PayloadLen)
}

// TestHandshakeScenario reproduces spec §8 scenario 1 verbatim.
func TestHandshakeScenario(t *testing.T) {
	payload := []byte{0x0C, 0x03, 'a', 'l', 'i', 0x0C, 0x02, 'p', 'w'}
	login, err := DecodeLoginPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "ali", login.Username)
	assert.Equal(t, "pw", login.Password)

	resp := SuccessWithUserID(Version, 1)
	assert.Equal(t, []byte{0x0B, 0x03, 0x00, 0x00, 0x00, 0x03, 0x02, 0x01, 0x01}, resp.Encode())
}

func TestEncodeDecodeRoundTripLoginPayload(t *testing.T) {
	payload := append(encodeString("someone"), encodeString("hunter2")...)
	got, err := DecodeLoginPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, LoginPayload{Username: "someone", Password: "hunter2"}, got)
}

func TestDecodePayloadShortYieldsInvalidRequest(t *testing.T) {
	_, err := DecodeLoginPayload([]byte{0x0C, 0x05, 'a', 'b'})
	require.Error(t, err)
	assert.Equal(t, ECInvReq, AsCoded(err))
}

func TestEncodeErrorSuppressedForLogout(t *testing.T) {
	_, ok := EncodeError(Version, ECInvReq, uint8(AccLogout))
	assert.False(t, ok)
}

func TestEncodeErrorPayload(t *testing.T) {
	resp, ok := EncodeError(Version, ECInvAuthInfo, uint8(AccLogin))
	require.True(t, ok)
	assert.Equal(t, uint8(SysError), resp.Type)

	encoded := resp.Encode()
	// header(6) + {tag,len,code}(3) + {tag,len,"Invalid Authentication"}(2+22)
	want := len("Invalid Authentication")
	assert.Equal(t, 6+3+2+want, len(encoded))
}

// TestDiagnosticScenario reproduces spec §8 scenario 4 verbatim.
func TestDiagnosticScenario(t *testing.T) {
	buf := NewDiagnosticBuffer()
	UpdateDiagnosticBuffer(buf, 2, 7)
	want := []byte{0x0A, 0x03, 0x00, 0x00, 0x00, 0x0A, 0x02, 0x02, 0x00, 0x02, 0x02, 0x04, 0x00, 0x00, 0x00, 0x07}
	assert.Equal(t, want, buf)
}

func TestEncodeIntWidthSelection(t *testing.T) {
	assert.Equal(t, []byte{0x02, 0x01, 0xFF}, encodeInt(255))
	assert.Equal(t, []byte{0x02, 0x02, 0x01, 0x00}, encodeInt(256))
	assert.Equal(t, []byte{0x02, 0x04, 0x00, 0x01, 0x00, 0x00}, encodeInt(65536))
}
