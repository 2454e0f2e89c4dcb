package common

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setQRSecret(t *testing.T) {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	assert.Nil(t, err)
	os.Setenv("API_QRC_SECRET", hex.EncodeToString(key))
	t.Cleanup(func() { os.Unsetenv("API_QRC_SECRET") })
}

func TestTicketQRRoundtrip(t *testing.T) {
	setQRSecret(t)

	encrypted, err := EncodeTicketQR(42, "8b6f8a34-code")
	assert.Nil(t, err)
	assert.NotEmpty(t, encrypted)

	payload, err := DecodeTicketQR(encrypted)
	assert.Nil(t, err)
	assert.Equal(t, uint(42), payload.TicketID)
	assert.Equal(t, "8b6f8a34-code", payload.Code)
}

func TestDecodeTicketQRRejectsTampering(t *testing.T) {
	setQRSecret(t)

	encrypted, err := EncodeTicketQR(42, "8b6f8a34-code")
	assert.Nil(t, err)

	tampered := []byte(encrypted)
	last := len(tampered) - 1
	if tampered[last] == 'a' {
		tampered[last] = 'b'
	} else {
		tampered[last] = 'a'
	}

	_, err = DecodeTicketQR(string(tampered))
	assert.NotNil(t, err)

	_, err = DecodeTicketQR("not-hex")
	assert.NotNil(t, err)
}
