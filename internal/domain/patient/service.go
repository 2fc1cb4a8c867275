package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kinedesk/kinedesk/internal/platform/querycache"
	"github.com/kinedesk/kinedesk/pkg/isodate"
	"github.com/kinedesk/kinedesk/pkg/validation"
)

type Service struct {
	repo  Repository
	cache *querycache.Cache
	log   zerolog.Logger
}

func NewService(repo Repository, cache *querycache.Cache, log zerolog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	normalize(p)
	if err := validate(p); err != nil {
		return err
	}
	if p.CreatedAt == "" {
		p.CreatedAt = isodate.Today()
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("creating patient: %w", err)
	}
	s.invalidate()
	s.log.Info().Int64("patient_id", p.ID).Msg("patient created")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces every mutable field of the stored patient with p's values.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	normalize(p)
	if err := validate(p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.invalidate()
	s.log.Info().Int64("patient_id", p.ID).Msg("patient updated")
	return nil
}

// Delete removes the patient together with all owned treatments and sessions.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	s.log.Info().Int64("patient_id", id).Msg("patient deleted with descendants")
	return nil
}

// List serves patient rows through the query cache.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Patient, int, error) {
	type result struct {
		Rows  []*Patient
		Total int
	}
	key := querycache.Key("patients",
		"search="+strings.ToLower(q.Search),
		fmt.Sprintf("limit=%d", q.Limit),
		fmt.Sprintf("offset=%d", q.Offset),
	)
	res, err := querycache.Through(s.cache, key, func() (result, error) {
		rows, total, err := s.repo.List(ctx, q)
		return result{Rows: rows, Total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Rows, res.Total, nil
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.InvalidateAll()
	}
}

func normalize(p *Patient) {
	p.Name = strings.TrimSpace(p.Name)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.NationalID = strings.TrimSpace(p.NationalID)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Address = strings.TrimSpace(p.Address)
	p.Notes = strings.TrimSpace(p.Notes)
}

func validate(p *Patient) error {
	var fields []string
	if p.Name == "" {
		fields = append(fields, "name is required")
	}
	if p.BirthDate != "" && !isodate.ValidDate(p.BirthDate) {
		fields = append(fields, "birth_date must be an ISO date (YYYY-MM-DD)")
	}
	return validation.New(fields...)
}
