package model

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID draws 64 random bits and hex-encodes them, matching the teacher's
// crypto/rand-backed key generation (internal/infrastructure/keygen). It
// retries against idx's live set until it draws an id not already in use.
func (idx *Index) NewID() (string, error) {
	for {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			return "", err
		}
		id := hex.EncodeToString(b[:])

		idx.mu.RLock()
		_, taken := idx.live[id]
		idx.mu.RUnlock()
		if !taken {
			return id, nil
		}
	}
}
