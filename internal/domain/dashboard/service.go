package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kinedesk/kinedesk/internal/domain/patient"
	"github.com/kinedesk/kinedesk/internal/domain/session"
	"github.com/kinedesk/kinedesk/internal/domain/treatment"
	"github.com/kinedesk/kinedesk/internal/platform/querycache"
	"github.com/kinedesk/kinedesk/pkg/isodate"
	"github.com/kinedesk/kinedesk/pkg/validation"
)

// Metrics is the practice-at-a-glance header of the dashboard.
type Metrics struct {
	Patients          int `json:"patients"`
	OngoingTreatments int `json:"ongoing_treatments"`
	SessionsToday     int `json:"sessions_today"`
	SessionsThisWeek  int `json:"sessions_this_week"`
}

// UpcomingSession is a session in the next few days with enough patient
// context to make a reminder call.
type UpcomingSession struct {
	SessionID   int64  `json:"session_id"`
	TreatmentID int64  `json:"treatment_id"`
	PatientID   int64  `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Phone       string `json:"phone"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// CalendarEvent feeds the agenda widget. Start is "YYYY-MM-DD HH:MM";
// sessions without a set time land at midnight so they still render.
type CalendarEvent struct {
	SessionID int64  `json:"session_id"`
	Title     string `json:"title"`
	Start     string `json:"start"`
	Performed bool   `json:"performed"`
}

const upcomingWindowDays = 7

type Service struct {
	patients   patient.Repository
	treatments treatment.Repository
	sessions   session.Repository
	cache      *querycache.Cache
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(p patient.Repository, t treatment.Repository, s session.Repository,
	cache *querycache.Cache, log zerolog.Logger) *Service {
	return &Service{patients: p, treatments: t, sessions: s, cache: cache, log: log, now: time.Now}
}

// Metrics computes the headline counts, served through the query cache so
// repeated dashboard loads within the TTL cost one round of queries.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	today := s.today()
	return querycache.Through(s.cache, querycache.Key("dashboard:metrics", "day="+today), func() (Metrics, error) {
		var m Metrics
		var err error
		if m.Patients, err = s.patients.Count(ctx); err != nil {
			return m, fmt.Errorf("counting patients: %w", err)
		}
		if m.OngoingTreatments, err = s.treatments.CountByStatus(ctx, treatment.StatusOngoing); err != nil {
			return m, fmt.Errorf("counting ongoing treatments: %w", err)
		}
		if m.SessionsToday, err = s.sessions.CountOnDate(ctx, today); err != nil {
			return m, fmt.Errorf("counting today's sessions: %w", err)
		}
		monday, sunday := isodate.WeekBounds(s.now())
		if m.SessionsThisWeek, err = s.sessions.CountBetween(ctx, monday, sunday); err != nil {
			return m, fmt.Errorf("counting the week's sessions: %w", err)
		}
		return m, nil
	})
}

// Upcoming lists sessions scheduled from today through the next week,
// chronological, each joined with its patient's name and phone.
func (s *Service) Upcoming(ctx context.Context) ([]UpcomingSession, error) {
	today := s.today()
	to := s.now().AddDate(0, 0, upcomingWindowDays).Format(isodate.DateLayout)
	key := querycache.Key("dashboard:upcoming", "from="+today, "to="+to)

	return querycache.Through(s.cache, key, func() ([]UpcomingSession, error) {
		rows, _, err := s.sessions.List(ctx, session.ListQuery{FromDate: today, ToDate: to})
		if err != nil {
			return nil, fmt.Errorf("listing upcoming sessions: %w", err)
		}

		out := make([]UpcomingSession, 0, len(rows))
		join := newJoiner(s.patients, s.treatments)
		for _, sess := range rows {
			p, err := join.patientOf(ctx, sess.TreatmentID)
			if err != nil {
				return nil, err
			}
			out = append(out, UpcomingSession{
				SessionID:   sess.ID,
				TreatmentID: sess.TreatmentID,
				PatientID:   p.ID,
				PatientName: p.FullName(),
				Phone:       p.Phone,
				Date:        sess.Date,
				Time:        sess.Time,
			})
		}
		return out, nil
	})
}

// Calendar returns agenda events for an inclusive date range.
func (s *Service) Calendar(ctx context.Context, from, to string) ([]CalendarEvent, error) {
	var fields []string
	if !isodate.ValidDate(from) {
		fields = append(fields, "from must be an ISO date (YYYY-MM-DD)")
	}
	if !isodate.ValidDate(to) {
		fields = append(fields, "to must be an ISO date (YYYY-MM-DD)")
	}
	if err := validation.New(fields...); err != nil {
		return nil, err
	}

	key := querycache.Key("dashboard:calendar", "from="+from, "to="+to)
	return querycache.Through(s.cache, key, func() ([]CalendarEvent, error) {
		rows, _, err := s.sessions.List(ctx, session.ListQuery{FromDate: from, ToDate: to})
		if err != nil {
			return nil, fmt.Errorf("listing calendar sessions: %w", err)
		}

		out := make([]CalendarEvent, 0, len(rows))
		join := newJoiner(s.patients, s.treatments)
		for _, sess := range rows {
			p, err := join.patientOf(ctx, sess.TreatmentID)
			if err != nil {
				return nil, err
			}
			at := sess.Time
			if at == "" {
				at = "00:00"
			}
			out = append(out, CalendarEvent{
				SessionID: sess.ID,
				Title:     p.FullName(),
				Start:     sess.Date + " " + at,
				Performed: sess.Performed,
			})
		}
		return out, nil
	})
}

func (s *Service) today() string {
	return s.now().Format(isodate.DateLayout)
}

// joiner memoizes the treatment -> patient lookups within one request.
type joiner struct {
	patients   patient.Repository
	treatments treatment.Repository
	byTreat    map[int64]*patient.Patient
	byID       map[int64]*patient.Patient
}

func newJoiner(p patient.Repository, t treatment.Repository) *joiner {
	return &joiner{
		patients:   p,
		treatments: t,
		byTreat:    make(map[int64]*patient.Patient),
		byID:       make(map[int64]*patient.Patient),
	}
}

func (j *joiner) patientOf(ctx context.Context, treatmentID int64) (*patient.Patient, error) {
	if p, ok := j.byTreat[treatmentID]; ok {
		return p, nil
	}
	tr, err := j.treatments.GetByID(ctx, treatmentID)
	if err != nil {
		return nil, fmt.Errorf("loading treatment %d: %w", treatmentID, err)
	}
	p, ok := j.byID[tr.PatientID]
	if !ok {
		if p, err = j.patients.GetByID(ctx, tr.PatientID); err != nil {
			return nil, fmt.Errorf("loading patient %d: %w", tr.PatientID, err)
		}
		j.byID[tr.PatientID] = p
	}
	j.byTreat[treatmentID] = p
	return p, nil
}
