package ws

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// newConnID returns a random identifier correlating one socket's
// lifecycle events. Falls back to a timestamp if the reader fails.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "t" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf)
}
