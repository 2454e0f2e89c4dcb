package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"etix/src/config"
	"etix/src/types"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

func IsProd() bool {
	return config.API_ENV == string(types.Production)
}

// GenerateTicketCode returns the unique code stamped on every ticket row.
func GenerateTicketCode() string {
	return uuid.New().String()
}

// EventSlug builds a URL-safe identifier from the event name and start date.
func EventSlug(name string, startsAt time.Time) string {
	return slug.Make(fmt.Sprintf("%s-%s", name, startsAt.Format("2006-01-02")))
}

// ApplyDiscount computes the post-promo price, clamped at zero.
func ApplyDiscount(price float64, discountType types.DiscountType, amount float64) float64 {
	var final float64
	switch discountType {
	case types.DISCOUNT_PERCENTAGE:
		final = price - price*amount/100
	case types.DISCOUNT_FIXED:
		final = price - amount
	default:
		final = price
	}
	if final < 0 {
		return 0
	}
	return final
}

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(cipherText) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}
