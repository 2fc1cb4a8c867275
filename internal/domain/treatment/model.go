package treatment

// Status is the lifecycle state of a course of care.
type Status string

const (
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
	StatusArchived  Status = "Archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Treatment is a prescribed course of care for a patient. Money amounts are
// per-session tariffs; dates are ISO strings (YYYY-MM-DD).
type Treatment struct {
	ID               int64   `db:"id" json:"id"`
	PatientID        int64   `db:"patient_id" json:"patient_id"`
	Diagnosis        string  `db:"diagnosis" json:"diagnosis"`
	CareType         string  `db:"care_type" json:"care_type"`
	StartDate        string  `db:"start_date" json:"start_date"`
	PlannedSessions  int     `db:"planned_sessions" json:"planned_sessions"`
	TariffPerSession float64 `db:"tariff_per_session" json:"tariff_per_session"`
	Notes            string  `db:"notes" json:"notes"`
	Status           Status  `db:"status" json:"status"`
	CreatedAt        string  `db:"created_at" json:"created_at"`
}

// Enriched is a treatment with its derived activity figures attached. The
// derived fields are computed from session rows and never stored.
type Enriched struct {
	Treatment
	SessionsDone int     `json:"sessions_done"`
	SessionsPaid int     `json:"sessions_paid"`
	Progress     float64 `json:"progress"`
	AmountDue    float64 `json:"amount_due"`
}

// ListQuery filters the treatment listing. Zero values mean "no filter".
type ListQuery struct {
	PatientID int64
	Status    Status
	Limit     int
	Offset    int
}
