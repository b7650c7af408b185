package cipherbox

import "encoding/binary"

// fakeAuthenticator is a minimal Authenticator used by tests: a plain
// monotonic counter and a fixed AAD shape of
// seq(8) || contentType(1) || version(2) || length(2), the conventional
// TLS 1.2 GCM AAD spec §6 describes as owned by the Authenticator.
type fakeAuthenticator struct {
	seq     uint64
	macLen  int
	version ProtocolVersion
}

func (a *fakeAuthenticator) SequenceNumber() uint64 { return a.seq }

func (a *fakeAuthenticator) MACLen() int { return a.macLen }

func (a *fakeAuthenticator) AcquireAuthenticationBytes(ct ContentType, plaintextLen int) []byte {
	aad := make([]byte, 13)
	binary.BigEndian.PutUint64(aad[0:8], a.seq)
	aad[8] = byte(ct)
	binary.BigEndian.PutUint16(aad[9:11], uint16(a.version))
	binary.BigEndian.PutUint16(aad[11:13], uint16(plaintextLen))
	a.seq++
	return aad
}
