package analytics

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashVisitor derives the anonymous visitor identity from IP address
// and user agent. Only the truncated digest is ever stored; the raw IP
// never reaches the database.
func HashVisitor(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + ":" + userAgent))
	return hex.EncodeToString(sum[:])[:16]
}
