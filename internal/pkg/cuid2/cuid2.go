package cuid2

import (
	"crypto/rand"
	"strings"
	"time"
)

// Base62 alphabet: 0-9, A-Z, a-z
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	timestampLength = 6
	defaultLength   = 18
)

// EncodeTimestamp encodes Unix seconds as a fixed-width base62 string that
// sorts lexicographically in time order.
func EncodeTimestamp(seconds int64) string {
	out := make([]byte, timestampLength)
	for i := timestampLength - 1; i >= 0; i-- {
		out[i] = alphabet[seconds%62]
		seconds /= 62
	}
	return string(out)
}

// randomString draws n base62 characters from crypto/rand. Bytes are masked
// to 6 bits and values >= 62 are rejected to keep the distribution uniform.
func randomString(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	buf := make([]byte, n+n/4+4)
	for sb.Len() < n {
		if _, err := rand.Read(buf); err != nil {
			panic("cuid2: reading random bytes: " + err.Error())
		}
		for _, b := range buf {
			v := b & 0x3f
			if v >= 62 {
				continue
			}
			sb.WriteByte(alphabet[v])
			if sb.Len() == n {
				break
			}
		}
	}
	return sb.String()
}

// New returns a time-sortable id such as "cat_1rK5iqaB3cD5eF7gH9iJ1k".
func New(prefix string) string {
	return NewAt(prefix, time.Now())
}

// NewAt is New with an explicit creation time.
func NewAt(prefix string, t time.Time) string {
	return prefix + "_" + EncodeTimestamp(t.Unix()) + randomString(defaultLength)
}
