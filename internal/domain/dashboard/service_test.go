package dashboard

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kinedesk/kinedesk/internal/domain/patient"
	"github.com/kinedesk/kinedesk/internal/domain/session"
	"github.com/kinedesk/kinedesk/internal/domain/treatment"
	"github.com/kinedesk/kinedesk/internal/platform/querycache"
	"github.com/kinedesk/kinedesk/pkg/validation"
)

// -- Fakes --

type fakePatients struct {
	rows map[int64]*patient.Patient
}

func (f *fakePatients) Create(_ context.Context, p *patient.Patient) error { return nil }
func (f *fakePatients) Update(_ context.Context, p *patient.Patient) error { return nil }
func (f *fakePatients) Delete(_ context.Context, id int64) error           { return nil }
func (f *fakePatients) List(_ context.Context, q patient.ListQuery) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}

func (f *fakePatients) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (f *fakePatients) Count(_ context.Context) (int, error) {
	return len(f.rows), nil
}

type fakeTreatments struct {
	rows map[int64]*treatment.Treatment
}

func (f *fakeTreatments) Create(_ context.Context, t *treatment.Treatment) error { return nil }
func (f *fakeTreatments) Update(_ context.Context, t *treatment.Treatment) error { return nil }
func (f *fakeTreatments) Delete(_ context.Context, id int64) error               { return nil }
func (f *fakeTreatments) List(_ context.Context, q treatment.ListQuery) ([]*treatment.Treatment, int, error) {
	return nil, 0, nil
}

func (f *fakeTreatments) GetByID(_ context.Context, id int64) (*treatment.Treatment, error) {
	t, ok := f.rows[id]
	if !ok {
		return nil, treatment.ErrNotFound
	}
	return t, nil
}

func (f *fakeTreatments) CountByStatus(_ context.Context, status treatment.Status) (int, error) {
	n := 0
	for _, t := range f.rows {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeSessions struct {
	rows map[int64]*session.Session
}

func (f *fakeSessions) Create(_ context.Context, s *session.Session) error { return nil }
func (f *fakeSessions) Update(_ context.Context, s *session.Session) error { return nil }
func (f *fakeSessions) Delete(_ context.Context, id int64) error           { return nil }
func (f *fakeSessions) GetByID(_ context.Context, id int64) (*session.Session, error) {
	return nil, session.ErrNotFound
}
func (f *fakeSessions) ActivityFor(_ context.Context, ids []int64) ([]session.Activity, error) {
	return nil, nil
}

func (f *fakeSessions) List(_ context.Context, q session.ListQuery) ([]*session.Session, int, error) {
	var out []*session.Session
	for _, s := range f.rows {
		if q.FromDate != "" && s.Date < q.FromDate {
			continue
		}
		if q.ToDate != "" && s.Date > q.ToDate {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, len(out), nil
}

func (f *fakeSessions) CountOnDate(_ context.Context, date string) (int, error) {
	n := 0
	for _, s := range f.rows {
		if s.Date == date {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) CountBetween(_ context.Context, from, to string) (int, error) {
	n := 0
	for _, s := range f.rows {
		if s.Date >= from && s.Date <= to {
			n++
		}
	}
	return n, nil
}

// Friday 2026-08-28. The week runs Monday 08-24 through Sunday 08-30.
var testNow = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func newTestService() (*Service, *fakePatients, *fakeTreatments, *fakeSessions) {
	p := &fakePatients{rows: map[int64]*patient.Patient{
		1: {ID: 1, Name: "Idrissi", FirstName: "Amina", Phone: "0600000001"},
		2: {ID: 2, Name: "Alaoui", FirstName: "Karim", Phone: "0600000002"},
	}}
	t := &fakeTreatments{rows: map[int64]*treatment.Treatment{
		31: {ID: 31, PatientID: 1, Status: treatment.StatusOngoing},
		32: {ID: 32, PatientID: 2, Status: treatment.StatusCompleted},
	}}
	s := &fakeSessions{rows: map[int64]*session.Session{
		112: {ID: 112, TreatmentID: 31, Date: "2026-08-28", Time: "09:00"},
		113: {ID: 113, TreatmentID: 31, Date: "2026-08-29", Time: "14:30"},
		114: {ID: 114, TreatmentID: 32, Date: "2026-09-10"},
		115: {ID: 115, TreatmentID: 32, Date: "2026-08-20", Performed: true},
	}}
	svc := NewService(p, t, s, querycache.New(time.Minute), zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc, p, t, s
}

// -- Tests --

func TestMetrics(t *testing.T) {
	svc, _, _, _ := newTestService()

	m, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics() error: %v", err)
	}
	if m.Patients != 2 {
		t.Errorf("patients = %d, want 2", m.Patients)
	}
	if m.OngoingTreatments != 1 {
		t.Errorf("ongoing = %d, want 1", m.OngoingTreatments)
	}
	if m.SessionsToday != 1 {
		t.Errorf("today = %d, want 1", m.SessionsToday)
	}
	// 08-28 and 08-29 fall in the Monday-to-Sunday week, 08-20 and 09-10 do not.
	if m.SessionsThisWeek != 2 {
		t.Errorf("this week = %d, want 2", m.SessionsThisWeek)
	}
}

func TestUpcoming_WindowAndJoin(t *testing.T) {
	svc, _, _, _ := newTestService()

	rows, err := svc.Upcoming(context.Background())
	if err != nil {
		t.Fatalf("Upcoming() error: %v", err)
	}
	// Window is today through +7 days: 08-28 and 08-29 qualify,
	// 08-20 is past and 09-10 is beyond the window.
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	first := rows[0]
	if first.SessionID != 112 {
		t.Errorf("first session = %d, want the earliest", first.SessionID)
	}
	if first.PatientName != "Idrissi Amina" || first.Phone != "0600000001" {
		t.Errorf("patient join: %+v", first)
	}
}

func TestCalendar_EventsAndMidnightFallback(t *testing.T) {
	svc, _, _, _ := newTestService()

	events, err := svc.Calendar(context.Background(), "2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatalf("Calendar() error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	e := events[0]
	if e.Title != "Alaoui Karim" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Start != "2026-09-10 00:00" {
		t.Errorf("start = %q, want midnight fallback", e.Start)
	}
}

func TestCalendar_RejectsBadRange(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Calendar(context.Background(), "not-a-date", "2026-09-30")
	if !validation.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
