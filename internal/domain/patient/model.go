package patient

import "strings"

// Patient maps to the patients table. Name holds the family name and is the
// only required field; everything else is contact detail. Dates travel as
// ISO 8601 text.
type Patient struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	FirstName  string `db:"first_name" json:"first_name"`
	NationalID string `db:"national_id" json:"national_id"`
	BirthDate  string `db:"birth_date" json:"birth_date,omitempty"`
	Phone      string `db:"phone" json:"phone"`
	Email      string `db:"email" json:"email"`
	Address    string `db:"address" json:"address"`
	Notes      string `db:"notes" json:"notes"`
	CreatedAt  string `db:"created_at" json:"created_at"`
}

// FullName returns "Name FirstName" with missing parts trimmed away.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.FirstName)
}

// ListQuery defines filtering and pagination for patient list queries. Search
// matches a case-insensitive substring across name, first name, phone and
// national id.
type ListQuery struct {
	Search string
	Limit  int
	Offset int
}
