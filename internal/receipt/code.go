// Package receipt generates receipt codes and renders the one receipt model
// shared by the text preview, the PDF export and the WhatsApp composer.
package receipt

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

const (
	codePrefix   = "BQ"
	suffixLength = 3
	base36       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// GenerateReceiptCode builds BQ-YYYYMMDD-NNNN-XXX from the UTC date, the last
// four digits of the epoch milliseconds and three random base36 characters.
// Codes are only probably unique; the orders collection enforces uniqueness.
func GenerateReceiptCode(now time.Time, random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}
	suffix, err := randomBase36(random, suffixLength)
	if err != nil {
		return "", fmt.Errorf("receipt code suffix: %w", err)
	}
	millis := now.UnixMilli() % 10000
	if millis < 0 {
		millis = -millis
	}
	return fmt.Sprintf("%s-%s-%04d-%s", codePrefix, codeDate(now), millis, suffix), nil
}

// codeDate formats the UTC date as YYYYMMDD, clamping years outside 0-9999 so
// the field always has eight digits.
func codeDate(now time.Time) string {
	now = now.UTC()
	switch y := now.Year(); {
	case y < 0:
		return "00000101"
	case y > 9999:
		return "99991231"
	}
	return now.Format("20060102")
}

func randomBase36(random io.Reader, n int) (string, error) {
	// 252 is the largest multiple of 36 that fits in a byte; higher values are
	// rejected so every character is equally likely.
	const limit = 252
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := io.ReadFull(random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, base36[int(b)%len(base36)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
