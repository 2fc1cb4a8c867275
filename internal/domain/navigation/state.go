package navigation

// Level is a depth in the drill-down hierarchy.
type Level string

const (
	LevelDashboard  Level = "dashboard"
	LevelPatients   Level = "patients"
	LevelTreatments Level = "treatments"
	LevelSessions   Level = "sessions"
)

// State is an immutable snapshot of where the user is in the drill-down and
// what is selected at each depth. A zero id means no selection. Transitions
// return a new State and never mutate the receiver.
type State struct {
	Level       Level `json:"level"`
	PatientID   int64 `json:"patient_id"`
	TreatmentID int64 `json:"treatment_id"`
	SessionID   int64 `json:"session_id"`
}

// NewState starts at the dashboard with nothing selected.
func NewState() State {
	return State{Level: LevelDashboard}
}

// GoDashboard jumps to the top. All selections are cleared: re-entering a
// level always starts fresh.
func (s State) GoDashboard() State {
	return State{Level: LevelDashboard}
}

// GoPatients enters the patient list, dropping any selections.
func (s State) GoPatients() State {
	return State{Level: LevelPatients}
}

// OpenTreatments drills into the selected patient's treatments. Descendant
// selections are reset; the patient selection is kept as the anchor.
func (s State) OpenTreatments() (State, error) {
	if s.PatientID == 0 {
		return s, ErrNoPatientSelected
	}
	return State{Level: LevelTreatments, PatientID: s.PatientID}, nil
}

// OpenSessions drills into the selected treatment's sessions.
func (s State) OpenSessions() (State, error) {
	if s.TreatmentID == 0 {
		return s, ErrNoTreatmentSelected
	}
	return State{Level: LevelSessions, PatientID: s.PatientID, TreatmentID: s.TreatmentID}, nil
}

// Back climbs one level, dropping the selection that belonged to the level
// being left. Backing out of the dashboard is a no-op.
func (s State) Back() State {
	switch s.Level {
	case LevelSessions:
		return State{Level: LevelTreatments, PatientID: s.PatientID}
	case LevelTreatments:
		return State{Level: LevelPatients}
	case LevelPatients:
		return State{Level: LevelDashboard}
	default:
		return s
	}
}

// SelectPatient records a patient selection. Only valid while the patient
// list is showing; selecting replaces any previous choice.
func (s State) SelectPatient(id int64) (State, error) {
	if s.Level != LevelPatients {
		return s, ErrWrongLevel
	}
	s.PatientID = id
	s.TreatmentID = 0
	s.SessionID = 0
	return s, nil
}

func (s State) SelectTreatment(id int64) (State, error) {
	if s.Level != LevelTreatments {
		return s, ErrWrongLevel
	}
	s.TreatmentID = id
	s.SessionID = 0
	return s, nil
}

func (s State) SelectSession(id int64) (State, error) {
	if s.Level != LevelSessions {
		return s, ErrWrongLevel
	}
	s.SessionID = id
	return s, nil
}

// Reconcile drops the current level's selection when its row is no longer in
// the visible set, e.g. after a delete or a filter change. Selections at
// other levels are untouched.
func (s State) Reconcile(visible []int64) State {
	switch s.Level {
	case LevelPatients:
		if s.PatientID != 0 && !contains(visible, s.PatientID) {
			s.PatientID, s.TreatmentID, s.SessionID = 0, 0, 0
		}
	case LevelTreatments:
		if s.TreatmentID != 0 && !contains(visible, s.TreatmentID) {
			s.TreatmentID, s.SessionID = 0, 0
		}
	case LevelSessions:
		if s.SessionID != 0 && !contains(visible, s.SessionID) {
			s.SessionID = 0
		}
	}
	return s
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
