package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Memo stores evidence-tool results for the lifetime of one verification run
type Memo[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	Len() int
	Flush()
}

// MemoKey derives a memo key from a tool and the reference it was invoked with
func MemoKey(tool, reference string) string {
	hash := sha256.Sum256([]byte(tool + "\x00" + reference))
	return "verifact:v1:" + tool + ":" + hex.EncodeToString(hash[:])
}
