package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Counter names for the sequential ID allocator
const (
	CounterGrievance   = "grievance"
	CounterAppointment = "appointment"
)

// SequentialIDDigits is the fixed width of the numeric suffix in
// human-readable identifiers like GRV00000001.
const SequentialIDDigits = 8

// MaxSequentialIDValue is the largest value representable in the fixed
// 8-digit format. Values beyond it must never be silently truncated.
const MaxSequentialIDValue = 99_999_999

// ErrIDSpaceExhausted is returned when a counter value no longer fits the
// fixed-width identifier format.
var ErrIDSpaceExhausted = errors.New("sequential id space exhausted")

// SequenceCounter stores the last issued value for named monotonic counters.
// One row per name; the value only ever moves forward, in increments of one,
// through a single atomic upsert statement.
type SequenceCounter struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }

// SequenceCounterFilter represents filter criteria for counter queries
type SequenceCounterFilter struct {
	Name *string
}

// sequentialIDPattern matches the persisted identifier format exactly:
// known prefix, eight decimal digits, no separators.
var sequentialIDPattern = regexp.MustCompile(`^(GRV|APT)\d{8}$`)

// IsSequentialID reports whether s is a well-formed persisted identifier.
func IsSequentialID(s string) bool {
	return sequentialIDPattern.MatchString(s)
}

// FormatSequentialID renders a counter value as a fixed-width identifier,
// e.g. ("GRV", 1) -> "GRV00000001". Values outside [1, MaxSequentialIDValue]
// are rejected; overflow surfaces as ErrIDSpaceExhausted.
func FormatSequentialID(prefix string, value int64) (string, error) {
	if value < 1 {
		return "", fmt.Errorf("sequential id value must be positive, got %d", value)
	}
	if value > MaxSequentialIDValue {
		return "", fmt.Errorf("value %d exceeds %d-digit format: %w", value, SequentialIDDigits, ErrIDSpaceExhausted)
	}
	return fmt.Sprintf("%s%0*d", prefix, SequentialIDDigits, value), nil
}

// ParseSequentialID extracts the numeric suffix of an identifier carrying
// the given prefix. Malformed identifiers return ok=false rather than an
// error so migration scans can skip them.
func ParseSequentialID(prefix, id string) (int64, bool) {
	if len(id) != len(prefix)+SequentialIDDigits || id[:len(prefix)] != prefix {
		return 0, false
	}
	n, err := strconv.ParseInt(id[len(prefix):], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
