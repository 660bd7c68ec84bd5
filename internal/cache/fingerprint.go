package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"codexplain/internal/models"
)

// fingerprintPayload is the canonical input to the request fingerprint.
// Field order is fixed; encoding/json emits struct fields in declaration
// order, so identical inputs always produce identical bytes.
type fingerprintPayload struct {
	Code       string      `json:"code"`
	K          int         `json:"k"`
	Mode       models.Mode `json:"mode"`
	RagEnabled bool        `json:"rag_enabled"`
}

// Fingerprint derives the cache key for a request. It is a pure function of
// (code, mode, rag_enabled, k): identical inputs map to the identical key,
// and the SHA-256 digest keeps distinct inputs from colliding in practice.
// The mode prefix keeps keys readable in logs.
func Fingerprint(mode models.Mode, code string, ragEnabled bool, k int) string {
	canonical, err := json.Marshal(fingerprintPayload{
		Code:       code,
		K:          k,
		Mode:       mode,
		RagEnabled: ragEnabled,
	})
	if err != nil {
		// Marshalling plain strings/ints cannot fail; keep a defined key anyway.
		canonical = []byte(fmt.Sprintf("%s|%t|%d|%s", mode, ragEnabled, k, code))
	}
	digest := sha256.Sum256(canonical)
	return string(mode) + ":" + hex.EncodeToString(digest[:])
}
