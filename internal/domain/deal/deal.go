package deal

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested deal does not exist.
var ErrNotFound = errors.New("deal not found")

// Urgency buckets a deal by how close it is to expiring.
type Urgency string

const (
	UrgencyCritical Urgency = "critical" // under 2 hours left
	UrgencyHigh     Urgency = "high"     // under 6 hours left
	UrgencyMedium   Urgency = "medium"   // under 12 hours left
	UrgencyLow      Urgency = "low"
)

// Deal is a time-limited promotion bundling a set of products.
type Deal struct {
	ID         string
	Title      string
	ProductIDs []string
	ExpiresAt  time.Time
	Position   int
}

// Expired reports whether the deal is past its expiry at the given time.
func (d Deal) Expired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}

// UrgencyAt buckets the remaining lifetime of the deal.
func (d Deal) UrgencyAt(now time.Time) Urgency {
	left := d.ExpiresAt.Sub(now)
	switch {
	case left <= 2*time.Hour:
		return UrgencyCritical
	case left <= 6*time.Hour:
		return UrgencyHigh
	case left <= 12*time.Hour:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Enriched is a deal with its product set resolved and scored for display.
type Enriched struct {
	Deal
	Urgency  Urgency
	Products []ScoredProduct
}

// Repository defines read operations for deals.
type Repository interface {
	List(ctx context.Context) ([]Deal, error)
	GetByID(ctx context.Context, id string) (*Deal, error)
	Active(ctx context.Context, now time.Time) ([]Deal, error)
}
