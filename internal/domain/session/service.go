package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kinedesk/kinedesk/internal/platform/querycache"
	"github.com/kinedesk/kinedesk/pkg/isodate"
	"github.com/kinedesk/kinedesk/pkg/validation"
)

const (
	minDuration     = 15
	maxDuration     = 240
	defaultDuration = 45
)

type Service struct {
	repo  Repository
	cache *querycache.Cache
	log   zerolog.Logger
}

func NewService(repo Repository, cache *querycache.Cache, log zerolog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

func (s *Service) Create(ctx context.Context, sess *Session) error {
	normalize(sess)
	if err := validate(sess, false); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	s.invalidate()
	s.log.Info().Int64("session_id", sess.ID).Int64("treatment_id", sess.TreatmentID).
		Str("date", sess.Date).Msg("session created")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Session, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces every mutable field. The owning treatment never changes.
func (s *Service) Update(ctx context.Context, sess *Session) error {
	normalize(sess)
	if err := validate(sess, true); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, sess); err != nil {
		return err
	}
	s.invalidate()
	s.log.Info().Int64("session_id", sess.ID).Msg("session updated")
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	s.log.Info().Int64("session_id", id).Msg("session deleted")
	return nil
}

// SetPerformed and SetPaid flip a single flag without touching the rest of
// the row. The two flags are independent of each other.
func (s *Service) SetPerformed(ctx context.Context, id int64, performed bool) (*Session, error) {
	return s.setFlag(ctx, id, func(sess *Session) { sess.Performed = performed })
}

func (s *Service) SetPaid(ctx context.Context, id int64, paid bool) (*Session, error) {
	return s.setFlag(ctx, id, func(sess *Session) { sess.Paid = paid })
}

func (s *Service) setFlag(ctx context.Context, id int64, apply func(*Session)) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(sess)
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, err
	}
	s.invalidate()
	return sess, nil
}

// List serves session rows through the query cache, oldest first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Session, int, error) {
	if err := validateQuery(q); err != nil {
		return nil, 0, err
	}
	type result struct {
		Rows  []*Session
		Total int
	}
	key := querycache.Key("sessions",
		fmt.Sprintf("treatment=%d", q.TreatmentID),
		"from="+q.FromDate,
		"to="+q.ToDate,
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

func normalize(sess *Session) {
	sess.Date = strings.TrimSpace(sess.Date)
	sess.Time = strings.TrimSpace(sess.Time)
	sess.Notes = strings.TrimSpace(sess.Notes)
	if sess.DurationMinutes == 0 {
		sess.DurationMinutes = defaultDuration
	}
}

func validate(sess *Session, update bool) error {
	var fields []string
	if !update && sess.TreatmentID <= 0 {
		fields = append(fields, "treatment_id is required")
	}
	if sess.Date == "" {
		fields = append(fields, "date is required")
	} else if !isodate.ValidDate(sess.Date) {
		fields = append(fields, "date must be an ISO date (YYYY-MM-DD)")
	}
	if sess.Time != "" && !isodate.ValidTime(sess.Time) {
		fields = append(fields, "time must be HH:MM")
	}
	if sess.DurationMinutes < minDuration || sess.DurationMinutes > maxDuration {
		fields = append(fields, fmt.Sprintf("duration_minutes must be between %d and %d", minDuration, maxDuration))
	}
	if sess.Cost < 0 {
		fields = append(fields, "cost must not be negative")
	}
	if !validPain(sess.PainBefore) {
		fields = append(fields, "pain_before must be between 0 and 10")
	}
	if !validPain(sess.PainAfter) {
		fields = append(fields, "pain_after must be between 0 and 10")
	}
	return validation.New(fields...)
}

func validPain(p *int) bool {
	return p == nil || (*p >= 0 && *p <= 10)
}

func validateQuery(q ListQuery) error {
	var fields []string
	if q.FromDate != "" && !isodate.ValidDate(q.FromDate) {
		fields = append(fields, "from must be an ISO date (YYYY-MM-DD)")
	}
	if q.ToDate != "" && !isodate.ValidDate(q.ToDate) {
		fields = append(fields, "to must be an ISO date (YYYY-MM-DD)")
	}
	return validation.New(fields...)
}
