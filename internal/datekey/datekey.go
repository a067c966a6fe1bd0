package datekey

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

// Layout is the stable calendar-day form used everywhere: YYYY-MM-DD.
const Layout = "2006-01-02"

// Key returns YYYY-MM-DD in UTC.
func Key(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse converts a YYYY-MM-DD string back into a UTC time.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// Parts holds a calendar date decomposed for grading. Month is always 1-12.
type Parts struct {
	Year  int
	Month int
	Day   int
}

// PartsOf decomposes a date into grading integers. This is the single place
// event dates are split into year/month/day; callers must not re-derive the
// month elsewhere (some upstreams hand out 0-indexed months).
func PartsOf(t time.Time) Parts {
	y, m, d := t.UTC().Date()
	return Parts{Year: y, Month: int(m), Day: d}
}

// Key renders the parts back into YYYY-MM-DD form.
func (p Parts) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, p.Day)
}

// Index returns a deterministic catalog index for a date using
// HMAC(salt, YYYY-MM-DD) % n.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(Key(date)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}
