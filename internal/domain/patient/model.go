package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. Every patient belongs to exactly one
// doctor; AccountID is set once the patient registers a portal login.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DoctorID  uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	AccountID *uuid.UUID `db:"account_id" json:"account_id,omitempty"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Gender    string     `db:"gender" json:"gender"`
	BirthDate time.Time  `db:"birth_date" json:"birth_date"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns the patient's display name as used in reports.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
