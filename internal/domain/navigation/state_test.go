package navigation

import "testing"

func TestDrillDown_HappyPath(t *testing.T) {
	s := NewState()
	if s.Level != LevelDashboard {
		t.Fatalf("start level = %s", s.Level)
	}

	s = s.GoPatients()
	s, err := s.SelectPatient(7)
	if err != nil {
		t.Fatal(err)
	}

	s, err = s.OpenTreatments()
	if err != nil {
		t.Fatal(err)
	}
	if s.Level != LevelTreatments || s.PatientID != 7 {
		t.Fatalf("after OpenTreatments: %+v", s)
	}

	s, err = s.SelectTreatment(31)
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.OpenSessions()
	if err != nil {
		t.Fatal(err)
	}
	if s.Level != LevelSessions || s.PatientID != 7 || s.TreatmentID != 31 {
		t.Fatalf("after OpenSessions: %+v", s)
	}

	if _, err := s.SelectSession(112); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_GuardsRequireSelection(t *testing.T) {
	s := NewState().GoPatients()

	if _, err := s.OpenTreatments(); err != ErrNoPatientSelected {
		t.Errorf("OpenTreatments err = %v, want ErrNoPatientSelected", err)
	}
	if _, err := s.OpenSessions(); err != ErrNoTreatmentSelected {
		t.Errorf("OpenSessions err = %v, want ErrNoTreatmentSelected", err)
	}
}

func TestSelect_RejectsWrongLevel(t *testing.T) {
	s := NewState() // dashboard
	if _, err := s.SelectPatient(1); err != ErrWrongLevel {
		t.Errorf("SelectPatient at dashboard err = %v, want ErrWrongLevel", err)
	}

	s = s.GoPatients()
	if _, err := s.SelectTreatment(1); err != ErrWrongLevel {
		t.Errorf("SelectTreatment at patients err = %v, want ErrWrongLevel", err)
	}
	if _, err := s.SelectSession(1); err != ErrWrongLevel {
		t.Errorf("SelectSession at patients err = %v, want ErrWrongLevel", err)
	}
}

func TestSelectPatient_ResetsDescendants(t *testing.T) {
	s := drilledToSessions(t, 7, 31)
	s = s.Back().Back() // back to patients, keeps nothing below

	s, err := s.SelectPatient(8)
	if err != nil {
		t.Fatal(err)
	}
	if s.TreatmentID != 0 || s.SessionID != 0 {
		t.Errorf("descendant selections survived a new patient choice: %+v", s)
	}
}

func TestBack_DropsLeavingLevelsSelection(t *testing.T) {
	s := drilledToSessions(t, 7, 31)
	s, err := s.SelectSession(112)
	if err != nil {
		t.Fatal(err)
	}

	s = s.Back()
	if s.Level != LevelTreatments {
		t.Fatalf("level = %s", s.Level)
	}
	if s.SessionID != 0 {
		t.Error("session selection survived leaving the sessions level")
	}
	if s.PatientID != 7 {
		t.Error("patient anchor must survive backing to treatments")
	}
	// Re-entering treatments starts with no treatment selected.
	if s.TreatmentID != 0 {
		t.Error("treatment selection must reset when re-entering the level")
	}

	s = s.Back()
	if s.Level != LevelPatients || s.PatientID != 0 {
		t.Errorf("backing to patients must clear the patient selection: %+v", s)
	}

	s = s.Back()
	if s.Level != LevelDashboard {
		t.Fatalf("level = %s", s.Level)
	}
	if got := s.Back(); got != s {
		t.Error("Back at dashboard must be a no-op")
	}
}

func TestGoDashboard_ClearsEverything(t *testing.T) {
	s := drilledToSessions(t, 7, 31)
	s = s.GoDashboard()
	if s != (State{Level: LevelDashboard}) {
		t.Errorf("dashboard state = %+v, want empty", s)
	}
}

func TestReconcile_CollapsesStaleSelection(t *testing.T) {
	s := NewState().GoPatients()
	s, err := s.SelectPatient(7)
	if err != nil {
		t.Fatal(err)
	}

	// Patient 7 vanished (deleted or filtered out).
	s = s.Reconcile([]int64{3, 4})
	if s.PatientID != 0 {
		t.Errorf("stale patient selection kept: %+v", s)
	}

	// Present selections are untouched.
	s, err = s.SelectPatient(3)
	if err != nil {
		t.Fatal(err)
	}
	s = s.Reconcile([]int64{3, 4})
	if s.PatientID != 3 {
		t.Errorf("valid selection dropped: %+v", s)
	}
}

func TestReconcile_SessionsLevelOnlyDropsSession(t *testing.T) {
	s := drilledToSessions(t, 7, 31)
	s, err := s.SelectSession(112)
	if err != nil {
		t.Fatal(err)
	}

	s = s.Reconcile([]int64{113, 114})
	if s.SessionID != 0 {
		t.Error("stale session selection kept")
	}
	if s.PatientID != 7 || s.TreatmentID != 31 {
		t.Errorf("ancestor selections must survive: %+v", s)
	}
}

func drilledToSessions(t *testing.T, patientID, treatmentID int64) State {
	t.Helper()
	s := NewState().GoPatients()
	s, err := s.SelectPatient(patientID)
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.OpenTreatments()
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.SelectTreatment(treatmentID)
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.OpenSessions()
	if err != nil {
		t.Fatal(err)
	}
	return s
}
