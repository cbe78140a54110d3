package clock

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so stores and tokens are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Real returns the actual current time in UTC.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// IDGenerator produces the random part of generated upload names.
type IDGenerator interface {
	New() string
}

// ShortIDGenerator returns the first block of a random UUID, which is enough
// to keep names unique within a millisecond.
type ShortIDGenerator struct{}

func (ShortIDGenerator) New() string {
	id := uuid.New().String()
	return id[:8]
}
