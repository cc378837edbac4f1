package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Portal roles. A session's role is resolved at login by scanning the doctor
// and patient tables; it is never stored on the account itself.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
	RoleUnknown = "unknown"
)

type contextKey string

const (
	AccountIDKey contextKey = "account_id"
	UsernameKey  contextKey = "username"
	RoleKey      contextKey = "role"
	OwnerIDKey   contextKey = "owner_id"
)

// Claims is the session token payload. OwnerID is the doctor or patient
// profile the session acts as, depending on Role.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
	OwnerID  string `json:"owner_id,omitempty"`
}

func AccountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(AccountIDKey).(string)
	return id
}

func UsernameFromContext(ctx context.Context) string {
	u, _ := ctx.Value(UsernameKey).(string)
	return u
}

func RoleFromContext(ctx context.Context) string {
	r, _ := ctx.Value(RoleKey).(string)
	return r
}

func OwnerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(OwnerIDKey).(string)
	return id
}
