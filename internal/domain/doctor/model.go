package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table. A doctor profile may be linked to a
// login account; the link is what grants the account the doctor role.
type Doctor struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	AccountID    *uuid.UUID `db:"account_id" json:"account_id,omitempty"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	FullName     string     `db:"full_name" json:"full_name"`
	Institutions []string   `db:"institutions" json:"institutions"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
