package navigation

import "errors"

var (
	ErrNoPatientSelected   = errors.New("no patient selected")
	ErrNoTreatmentSelected = errors.New("no treatment selected")
	ErrWrongLevel          = errors.New("selection does not match the current level")
)
