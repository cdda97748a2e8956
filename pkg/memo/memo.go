// Package memo generates the per-swap correlation identifier and matches it
// against on-chain event data.
package memo

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// Length is the size of a memo in bytes.
	Length = 16
	// EVMTopicLength is the width of an indexed EVM log topic.
	EVMTopicLength = 32
)

var ErrInvalidMemo = errors.New("invalid memo")

// Memo is an opaque random identifier attached to every transaction of a swap.
type Memo [Length]byte

// Generate returns a memo read from the system's cryptographic random source.
func Generate() (Memo, error) {
	var m Memo
	if _, err := rand.Read(m[:]); err != nil {
		return Memo{}, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return m, nil
}

// ParseHex decodes a memo from its 32 character hex form, with or without 0x prefix.
func ParseHex(s string) (Memo, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s), "0x"))
	if err != nil {
		return Memo{}, fmt.Errorf("%w: %v", ErrInvalidMemo, err)
	}
	if len(raw) != Length {
		return Memo{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidMemo, Length, len(raw))
	}
	var m Memo
	copy(m[:], raw)
	return m, nil
}

// Hex returns the lowercase hex encoding without prefix.
func (m Memo) Hex() string {
	return hex.EncodeToString(m[:])
}

func (m Memo) String() string {
	return m.Hex()
}

// IsZero reports whether the memo was never populated.
func (m Memo) IsZero() bool {
	return m == Memo{}
}

// Padded returns the memo right-padded with zero bytes to width.
// Widths smaller than Length return the unpadded memo.
func (m Memo) Padded(width int) []byte {
	if width < Length {
		width = Length
	}
	out := make([]byte, width)
	copy(out, m[:])
	return out
}

// Topic returns the memo as a 32 byte indexed log topic.
func (m Memo) Topic() [EVMTopicLength]byte {
	var t [EVMTopicLength]byte
	copy(t[:], m[:])
	return t
}

// MatchesPadded reports whether b is exactly the memo followed by zero bytes.
func (m Memo) MatchesPadded(b []byte) bool {
	if len(b) < Length {
		return false
	}
	return bytes.Equal(b, m.Padded(len(b)))
}

// FoundInLog reports whether line carries the memo's hex form as a whole
// token. A memo that is only a prefix or suffix of a longer hex run does not match.
func (m Memo) FoundInLog(line string) bool {
	needle := m.Hex()
	haystack := strings.ToLower(line)
	for offset := 0; ; {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)
		if (start == 0 || !isHexDigit(haystack[start-1])) && (end == len(haystack) || !isHexDigit(haystack[end])) {
			return true
		}
		offset = start + 1
	}
}

// FoundInLogs reports whether any line carries the memo.
func (m Memo) FoundInLogs(lines []string) bool {
	for _, l := range lines {
		if m.FoundInLog(l) {
			return true
		}
	}
	return false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}
