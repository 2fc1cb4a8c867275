package treatment

import "context"

// Repository is the persistence boundary for treatments.
type Repository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, id int64) (*Treatment, error)
	// Update replaces every mutable field. patient_id is immutable.
	Update(ctx context.Context, t *Treatment) error
	// Delete removes the treatment and, via cascade, its sessions.
	Delete(ctx context.Context, id int64) error
	// List returns treatments newest first (start_date DESC, id DESC).
	List(ctx context.Context, q ListQuery) ([]*Treatment, int, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
}
