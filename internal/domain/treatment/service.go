package treatment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kinedesk/kinedesk/internal/platform/querycache"
	"github.com/kinedesk/kinedesk/pkg/isodate"
	"github.com/kinedesk/kinedesk/pkg/validation"
)

// SessionLister supplies the session activity needed for enrichment.
// The session package implements it through an adapter wired in main.
type SessionLister interface {
	ActivityFor(ctx context.Context, treatmentIDs []int64) ([]SessionActivity, error)
}

type Service struct {
	repo     Repository
	sessions SessionLister
	cache    *querycache.Cache
	log      zerolog.Logger
}

func NewService(repo Repository, sessions SessionLister, cache *querycache.Cache, log zerolog.Logger) *Service {
	return &Service{repo: repo, sessions: sessions, cache: cache, log: log}
}

func (s *Service) Create(ctx context.Context, t *Treatment) error {
	normalize(t)
	if err := validate(t, false); err != nil {
		return err
	}
	if t.StartDate == "" {
		t.StartDate = isodate.Today()
	}
	if t.CreatedAt == "" {
		t.CreatedAt = isodate.Today()
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return fmt.Errorf("creating treatment: %w", err)
	}
	s.invalidate()
	s.log.Info().Int64("treatment_id", t.ID).Int64("patient_id", t.PatientID).Msg("treatment created")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Treatment, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces every mutable field. The owning patient never changes.
func (s *Service) Update(ctx context.Context, t *Treatment) error {
	normalize(t)
	if err := validate(t, true); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}
	s.invalidate()
	s.log.Info().Int64("treatment_id", t.ID).Msg("treatment updated")
	return nil
}

// Delete removes the treatment together with all of its sessions.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	s.log.Info().Int64("treatment_id", id).Msg("treatment deleted with sessions")
	return nil
}

// List serves raw treatment rows through the query cache.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Treatment, int, error) {
	type result struct {
		Rows  []*Treatment
		Total int
	}
	res, err := querycache.Through(s.cache, listKey("treatments", q), func() (result, error) {
		rows, total, err := s.repo.List(ctx, q)
		return result{Rows: rows, Total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Rows, res.Total, nil
}

// ListEnriched lists treatments with their derived session figures attached.
func (s *Service) ListEnriched(ctx context.Context, q ListQuery) ([]*Enriched, int, error) {
	type result struct {
		Rows  []*Enriched
		Total int
	}
	res, err := querycache.Through(s.cache, listKey("treatments:enriched", q), func() (result, error) {
		rows, total, err := s.repo.List(ctx, q)
		if err != nil {
			return result{}, err
		}
		ids := make([]int64, len(rows))
		for i, t := range rows {
			ids[i] = t.ID
		}
		activity, err := s.sessions.ActivityFor(ctx, ids)
		if err != nil {
			return result{}, fmt.Errorf("loading session activity: %w", err)
		}
		return result{Rows: Enrich(rows, activity), Total: total}, nil
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

func listKey(kind string, q ListQuery) string {
	return querycache.Key(kind,
		fmt.Sprintf("patient=%d", q.PatientID),
		"status="+string(q.Status),
		fmt.Sprintf("limit=%d", q.Limit),
		fmt.Sprintf("offset=%d", q.Offset),
	)
}

func normalize(t *Treatment) {
	t.Diagnosis = strings.TrimSpace(t.Diagnosis)
	t.CareType = strings.TrimSpace(t.CareType)
	t.Notes = strings.TrimSpace(t.Notes)
	if t.PlannedSessions == 0 {
		t.PlannedSessions = 10
	}
	if t.Status == "" {
		t.Status = StatusOngoing
	}
}

func validate(t *Treatment, update bool) error {
	var fields []string
	if !update && t.PatientID <= 0 {
		fields = append(fields, "patient_id is required")
	}
	if t.PlannedSessions <= 0 {
		fields = append(fields, "planned_sessions must be positive")
	}
	if t.TariffPerSession < 0 {
		fields = append(fields, "tariff_per_session must not be negative")
	}
	if t.StartDate != "" && !isodate.ValidDate(t.StartDate) {
		fields = append(fields, "start_date must be an ISO date (YYYY-MM-DD)")
	}
	if !t.Status.Valid() {
		fields = append(fields, "status must be one of Ongoing, Completed, Archived")
	}
	return validation.New(fields...)
}
