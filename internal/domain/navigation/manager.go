package navigation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// PatientRow, TreatmentRow and SessionRow are the thin projections the
// drill-down lists render. The full records live with their own domains.
type PatientRow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type TreatmentRow struct {
	ID        int64  `json:"id"`
	Diagnosis string `json:"diagnosis"`
	StartDate string `json:"start_date"`
	Status    string `json:"status"`
}

type SessionRow struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Performed bool   `json:"performed"`
	Paid      bool   `json:"paid"`
}

// DataSource supplies the rows visible at each level. Wired in main over the
// domain services so reads share the query cache.
type DataSource interface {
	Patients(ctx context.Context, search string) ([]PatientRow, error)
	Treatments(ctx context.Context, patientID int64) ([]TreatmentRow, error)
	Sessions(ctx context.Context, treatmentID int64) ([]SessionRow, error)
}

// View is the state plus the rows visible at the current level. At most one
// of the row slices is populated.
type View struct {
	State      State          `json:"state"`
	Patients   []PatientRow   `json:"patients,omitempty"`
	Treatments []TreatmentRow `json:"treatments,omitempty"`
	Sessions   []SessionRow   `json:"sessions,omitempty"`
}

// Manager serializes transitions on a single shared drill-down state.
type Manager struct {
	mu    sync.Mutex
	state State
	data  DataSource
	log   zerolog.Logger
}

func NewManager(data DataSource, log zerolog.Logger) *Manager {
	return &Manager{state: NewState(), data: data, log: log}
}

// View fetches the current level's rows and reconciles the selection against
// them, so a selection deleted elsewhere collapses on the next read.
func (m *Manager) View(ctx context.Context, search string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{State: m.state}
	switch m.state.Level {
	case LevelPatients:
		rows, err := m.data.Patients(ctx, search)
		if err != nil {
			return View{}, err
		}
		m.state = m.state.Reconcile(rowIDs(rows, func(r PatientRow) int64 { return r.ID }))
		v.State, v.Patients = m.state, rows
	case LevelTreatments:
		rows, err := m.data.Treatments(ctx, m.state.PatientID)
		if err != nil {
			return View{}, err
		}
		m.state = m.state.Reconcile(rowIDs(rows, func(r TreatmentRow) int64 { return r.ID }))
		v.State, v.Treatments = m.state, rows
	case LevelSessions:
		rows, err := m.data.Sessions(ctx, m.state.TreatmentID)
		if err != nil {
			return View{}, err
		}
		m.state = m.state.Reconcile(rowIDs(rows, func(r SessionRow) int64 { return r.ID }))
		v.State, v.Sessions = m.state, rows
	}
	return v, nil
}

func (m *Manager) GoDashboard() State { return m.apply(func(s State) State { return s.GoDashboard() }) }
func (m *Manager) GoPatients() State  { return m.apply(func(s State) State { return s.GoPatients() }) }

func (m *Manager) Back() State { return m.apply(State.Back) }

func (m *Manager) OpenTreatments() (State, error) {
	return m.applyErr(State.OpenTreatments)
}

func (m *Manager) OpenSessions() (State, error) {
	return m.applyErr(State.OpenSessions)
}

func (m *Manager) SelectPatient(id int64) (State, error) {
	return m.applyErr(func(s State) (State, error) { return s.SelectPatient(id) })
}

func (m *Manager) SelectTreatment(id int64) (State, error) {
	return m.applyErr(func(s State) (State, error) { return s.SelectTreatment(id) })
}

func (m *Manager) SelectSession(id int64) (State, error) {
	return m.applyErr(func(s State) (State, error) { return s.SelectSession(id) })
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) apply(fn func(State) State) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = fn(m.state)
	m.log.Debug().Str("level", string(m.state.Level)).Msg("navigation moved")
	return m.state
}

func (m *Manager) applyErr(fn func(State) (State, error)) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(m.state)
	if err != nil {
		return m.state, err
	}
	m.state = next
	m.log.Debug().Str("level", string(m.state.Level)).Msg("navigation moved")
	return m.state, nil
}

func rowIDs[T any](rows []T, id func(T) int64) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = id(r)
	}
	return ids
}
