package session

// Session is a single visit within a treatment. Date is an ISO string
// (YYYY-MM-DD), Time is HH:MM or empty when the slot has no set time.
// Performed and paid are independent flags; pain scores are optional 0-10.
type Session struct {
	ID              int64   `db:"id" json:"id"`
	TreatmentID     int64   `db:"treatment_id" json:"treatment_id"`
	Date            string  `db:"date" json:"date"`
	Time            string  `db:"time" json:"time"`
	DurationMinutes int     `db:"duration_minutes" json:"duration_minutes"`
	Cost            float64 `db:"cost" json:"cost"`
	Performed       bool    `db:"performed" json:"performed"`
	Paid            bool    `db:"paid" json:"paid"`
	PainBefore      *int    `db:"pain_before" json:"pain_before"`
	PainAfter       *int    `db:"pain_after" json:"pain_after"`
	Notes           string  `db:"notes" json:"notes"`
	CreatedAt       string  `db:"created_at" json:"created_at"`
}

// ListQuery filters the session listing. FromDate and ToDate are inclusive
// ISO date bounds; empty means unbounded on that side.
type ListQuery struct {
	TreatmentID int64
	FromDate    string
	ToDate      string
	Limit       int
	Offset      int
}
