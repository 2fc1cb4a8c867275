package patient

import "context"

type Repository interface {
	// Create persists a new patient and assigns its id.
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*Patient, error)

	// Update replaces every mutable field of the patient identified by p.ID.
	// Returns ErrNotFound if the id is absent.
	Update(ctx context.Context, p *Patient) error

	// Delete removes the patient and, through the store's cascade, every
	// treatment and session owned by it. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// List returns patients matching q ordered by (name, first_name),
	// plus the total count before pagination.
	List(ctx context.Context, q ListQuery) ([]*Patient, int, error)

	// Count returns the number of patients in the store.
	Count(ctx context.Context) (int, error)
}
