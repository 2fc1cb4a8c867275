package session

import "context"

// Activity is the performed/paid projection used for treatment enrichment
// and dashboard figures.
type Activity struct {
	TreatmentID int64
	Date        string
	Performed   bool
	Paid        bool
}

// Repository is the persistence boundary for sessions.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id int64) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id int64) error
	// List returns sessions in chronological order (date ASC, time ASC).
	List(ctx context.Context, q ListQuery) ([]*Session, int, error)
	// ActivityFor returns the activity projection for the given treatments.
	ActivityFor(ctx context.Context, treatmentIDs []int64) ([]Activity, error)
	// CountOnDate counts sessions falling on a single ISO date.
	CountOnDate(ctx context.Context, date string) (int, error)
	// CountBetween counts sessions within an inclusive ISO date range.
	CountBetween(ctx context.Context, from, to string) (int, error)
}
