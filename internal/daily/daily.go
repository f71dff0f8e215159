package daily

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/robalobadob/ycdle/internal/apperr"
)

const secondsPerDay = 24 * 60 * 60

var dateKeyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ValidDateKey reports whether s has the YYYY-MM-DD shape.
func ValidDateKey(s string) bool {
	return dateKeyRe.MatchString(s)
}

// ParseDateKey validates s and returns UTC midnight of that date.
func ParseDateKey(s string) (time.Time, error) {
	if !ValidDateKey(s) {
		return time.Time{}, apperr.New("daily.date_key", apperr.KindInvalidInput, "date key must be YYYY-MM-DD")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Wrap("daily.date_key", apperr.KindInvalidInput, err)
	}
	return t, nil
}

// DayNumber returns the number of whole days between 1970-01-01 and the UTC
// calendar date of t. Every clock on the same UTC day gets the same number.
func DayNumber(t time.Time) int64 {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// DayStart returns UTC midnight of day.
func DayStart(day int64) time.Time {
	return time.Unix(day*secondsPerDay, 0).UTC()
}

// NextMidnight returns the first instant of the UTC day after t.
func NextMidnight(t time.Time) time.Time {
	return DayStart(DayNumber(t) + 1)
}

// SelectIndex maps (seed, day) onto [0, n):
//
//	BE32(SHA-256(seed + ":" + decimal(day))[0:4]) mod n
//
// Other implementations reproduce this bit for bit, so the field order, the
// separator, the truncation and the modulus are fixed.
func SelectIndex(seed string, day int64, n int) (int, error) {
	if n <= 0 {
		return 0, apperr.New("daily.select", apperr.KindNoCandidates, "candidate pool is empty")
	}
	sum := sha256.Sum256([]byte(seed + ":" + strconv.FormatInt(day, 10)))
	v := binary.BigEndian.Uint32(sum[:4])
	return int(uint64(v) % uint64(n)), nil
}

// Fingerprint returns a short, non-reversible tag for seed so operators can
// tell which secret a response was computed with.
func Fingerprint(seed string) string {
	sum := blake2b.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:4])
}
