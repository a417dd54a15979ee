// Package requestid mints opaque correlation ids for HTTP requests.
package requestid

import (
	"crypto/rand"
	"encoding/hex"
	"io"
)

// New returns a 32-character hex id with 128 bits of entropy.
func New() (string, error) {
	var b [16]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
