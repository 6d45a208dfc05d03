package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/ontoforge/ontoforge/errors"
)

// AES-256-GCM parameters. The encoded form concatenates
// hex(nonce) + hex(tag) + hex(ciphertext) so a record is reversible
// without a separate framing format.
const (
	nonceLength = 12
	tagLength   = 16
)

// keyBytes decodes and length-checks the hex key, marking failures with
// the caller's sentinel: a bad key is a configuration problem when
// encrypting but an authentication failure when decrypting, since the
// stored record cannot be opened.
func keyBytes(hexKey string, mark error) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.Mark(errors.New("encryption key must be hex encoded"), mark)
	}
	if len(key) != 32 {
		return nil, errors.Mark(errors.Newf("encryption key must be 32 bytes, got %d", len(key)), mark)
	}
	return key, nil
}

// Encrypt seals plaintext with AES-256-GCM under the given hex key and a
// fresh random 96-bit nonce. The result is hex: nonce, auth tag, then
// ciphertext.
func Encrypt(plaintext, hexKey string) (string, error) {
	key, err := keyBytes(hexKey, errors.ErrConfiguration)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Wrap(err, "failed to create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Wrap(err, "failed to create GCM")
	}

	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}

	// Seal appends ciphertext||tag; the stored layout wants nonce, tag,
	// ciphertext, so split the tag back off the end.
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	ct := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	return hex.EncodeToString(nonce) + hex.EncodeToString(tag) + hex.EncodeToString(ct), nil
}

// Decrypt opens a record produced by Encrypt. A wrong or malformed key,
// truncated record, or failed authentication tag yields
// ErrAuthentication, never silently corrupt plaintext.
func Decrypt(encoded, hexKey string) (string, error) {
	key, err := keyBytes(hexKey, errors.ErrAuthentication)
	if err != nil {
		return "", err
	}

	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", errors.Mark(errors.New("ciphertext is not valid hex"), errors.ErrAuthentication)
	}
	if len(raw) < nonceLength+tagLength {
		return "", errors.Mark(errors.New("ciphertext too short"), errors.ErrAuthentication)
	}

	nonce := raw[:nonceLength]
	tag := raw[nonceLength : nonceLength+tagLength]
	ct := raw[nonceLength+tagLength:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Wrap(err, "failed to create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Wrap(err, "failed to create GCM")
	}

	// Reassemble ciphertext||tag for Open.
	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Mark(errors.New("decryption failed: authentication tag mismatch"), errors.ErrAuthentication)
	}

	return string(plaintext), nil
}
