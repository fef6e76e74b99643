package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SealLoanTerms generates an HMAC over the priced terms of a loan so that
// later edits to principal, rate, tenure or EMI can be detected
func SealLoanTerms(loanID, principal, rate string, tenureMonths int, emi, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%s|%s|%s|%d|%s", loanID, principal, rate, tenureMonths, emi)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySeal reports whether seal matches the HMAC of the given terms
func VerifySeal(seal, loanID, principal, rate string, tenureMonths int, emi, secret string) bool {
	want := SealLoanTerms(loanID, principal, rate, tenureMonths, emi, secret)
	return hmac.Equal([]byte(seal), []byte(want))
}

// Encrypt encrypts a string with AES-GCM and returns nonce+ciphertext hex encoded
func Encrypt(data string, key []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(data), nil)
	return hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt
func Decrypt(encryptedData string, key []byte) (string, error) {
	if len(encryptedData) == 0 {
		return "", nil
	}
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	data, err := hex.DecodeString(encryptedData)
	if err != nil {
		return "", fmt.Errorf("failed to decode hex: %w", err)
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("encrypted data too short: %d bytes", len(data))
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 16, 24, or 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return gcm, nil
}
