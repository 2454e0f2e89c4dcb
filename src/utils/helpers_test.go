package utils

import (
	"crypto/rand"
	"etix/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDiscount(t *testing.T) {
	assert.Equal(t, 90.0, ApplyDiscount(100, types.DISCOUNT_PERCENTAGE, 10))
	assert.Equal(t, 0.0, ApplyDiscount(100, types.DISCOUNT_PERCENTAGE, 100))
	assert.Equal(t, 75.5, ApplyDiscount(100.5, types.DISCOUNT_FIXED, 25))
	assert.Equal(t, 0.0, ApplyDiscount(10, types.DISCOUNT_FIXED, 25), "discount below zero clamps to zero")
	assert.Equal(t, 100.0, ApplyDiscount(100, types.DiscountType("unknown"), 10))
}

func TestGenerateTicketCode(t *testing.T) {
	a := GenerateTicketCode()
	b := GenerateTicketCode()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestEventSlug(t *testing.T) {
	startsAt := time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC)
	s := EventSlug("Summer Jam & Friends", startsAt)
	assert.Equal(t, "summer-jam-and-friends-2026-10-01", s)
}

func TestEncryptDecryptMessage(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	assert.Nil(t, err)

	message := `{"ticketId":42,"code":"abc"}`
	encrypted, err := EncryptMessage(key, message)
	assert.Nil(t, err)
	assert.NotEqual(t, message, encrypted)

	decrypted, err := DecryptMessage(key, encrypted)
	assert.Nil(t, err)
	assert.Equal(t, message, *decrypted)
}

func TestDecryptMessageRejectsGarbage(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	assert.Nil(t, err)

	_, err = DecryptMessage(key, "not-hex")
	assert.NotNil(t, err)

	_, err = DecryptMessage(key, "abcd")
	assert.NotNil(t, err)
}
