package treatment

// SessionActivity is the slice of a session that matters for enrichment.
// Callers project their session rows down to this to avoid a package cycle.
type SessionActivity struct {
	TreatmentID int64
	Performed   bool
	Paid        bool
}

// Enrich attaches derived figures to each treatment from the given session
// activity. It is a pure function: inputs are read only, the result is newly
// allocated, and calling it twice with the same inputs yields the same output.
//
// Per treatment:
//
//	sessions_done = count of performed sessions
//	sessions_paid = count of paid sessions
//	progress      = sessions_done / planned_sessions (0 when planned is 0)
//	amount_due    = (sessions_done - sessions_paid) * tariff_per_session
//
// amount_due is deliberately not clamped at zero: paid-but-not-performed
// sessions show up as a negative balance, i.e. a credit.
func Enrich(treatments []*Treatment, activity []SessionActivity) []*Enriched {
	type tally struct{ done, paid int }
	tallies := make(map[int64]tally, len(treatments))
	for _, a := range activity {
		t := tallies[a.TreatmentID]
		if a.Performed {
			t.done++
		}
		if a.Paid {
			t.paid++
		}
		tallies[a.TreatmentID] = t
	}

	out := make([]*Enriched, 0, len(treatments))
	for _, tr := range treatments {
		t := tallies[tr.ID]
		e := &Enriched{
			Treatment:    *tr,
			SessionsDone: t.done,
			SessionsPaid: t.paid,
			AmountDue:    float64(t.done-t.paid) * tr.TariffPerSession,
		}
		if tr.PlannedSessions > 0 {
			e.Progress = float64(t.done) / float64(tr.PlannedSessions)
		}
		out = append(out, e)
	}
	return out
}
