package ports

import (
	"context"

	"github.com/bft-labs/scalesim/internal/domain"
)

// ReadingSource loads the ordered readings to replay.
// Implementations skip the header row and return domain.ErrMalformedReading
// for rows that do not hold exactly the expected number of integers.
type ReadingSource interface {
	Load(ctx context.Context) ([]domain.Reading, error)
}
