package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssegota/daignostics/internal/domain/doctor"
	"github.com/ssegota/daignostics/internal/domain/patient"
	"github.com/ssegota/daignostics/internal/platform/auth"
	"github.com/ssegota/daignostics/internal/platform/db"
)

// DoctorStore is the slice of the doctor repository role resolution and
// doctor registration need.
type DoctorStore interface {
	Create(ctx context.Context, d *doctor.Doctor) error
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*doctor.Doctor, error)
}

// PatientStore is the slice of the patient repository role resolution and
// patient account linking need.
type PatientStore interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*patient.Patient, error)
	GetByEmail(ctx context.Context, email string) (*patient.Patient, error)
	LinkAccount(ctx context.Context, id, accountID uuid.UUID) error
}

type Service struct {
	accounts AccountRepository
	doctors  DoctorStore
	patients PatientStore
	issuer   *auth.TokenIssuer
	txdb     db.TxStarter
}

// NewService wires the account service. txdb scopes multi-write registration
// flows to a single transaction; a nil txdb runs them unwrapped.
func NewService(accounts AccountRepository, doctors DoctorStore, patients PatientStore, issuer *auth.TokenIssuer, txdb db.TxStarter) *Service {
	return &Service{accounts: accounts, doctors: doctors, patients: patients, issuer: issuer, txdb: txdb}
}

const minPasswordLength = 8

func (s *Service) createAccount(ctx context.Context, username, email, password string) (*Account, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("username %s is taken", username)
	}
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s is already registered", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &Account{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RegisterDoctor provisions a login account and the matching doctor profile
// in one step.
func (s *Service) RegisterDoctor(ctx context.Context, username, email, password, fullName string, institutions []string) (*Account, *doctor.Doctor, error) {
	if fullName == "" {
		return nil, nil, fmt.Errorf("full_name is required")
	}
	if existing, err := s.doctors.GetByUsernameOrEmail(ctx, username, email); err == nil && existing != nil {
		return nil, nil, fmt.Errorf("a doctor profile already exists for this username or email")
	}

	// The account and its doctor profile land together or not at all.
	var a *Account
	var d *doctor.Doctor
	err := db.InTx(ctx, s.txdb, func(ctx context.Context) error {
		var err error
		a, err = s.createAccount(ctx, username, email, password)
		if err != nil {
			return err
		}
		d = &doctor.Doctor{
			AccountID:    &a.ID,
			Username:     username,
			Email:        email,
			FullName:     fullName,
			Institutions: institutions,
		}
		if err := s.doctors.Create(ctx, d); err != nil {
			return fmt.Errorf("create doctor profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return a, d, nil
}

// RegisterPatient provisions a login for an existing patient record. The
// patient must already have been created by their doctor with a matching
// email; registration links the new account to that record.
func (s *Service) RegisterPatient(ctx context.Context, username, email, password string) (*Account, *patient.Patient, error) {
	p, err := s.patients.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("no patient record found for email %s; ask your doctor to add it first", email)
	}
	if p.AccountID != nil {
		return nil, nil, fmt.Errorf("patient record for %s is already linked to an account", email)
	}

	var a *Account
	err = db.InTx(ctx, s.txdb, func(ctx context.Context) error {
		var err error
		a, err = s.createAccount(ctx, username, email, password)
		if err != nil {
			return err
		}
		if err := s.patients.LinkAccount(ctx, p.ID, a.ID); err != nil {
			return fmt.Errorf("link patient record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	p.AccountID = &a.ID
	return a, p, nil
}

// ResolveRole determines the session role for an account: a doctor profile
// matching the username or email wins; otherwise a patient record linked to
// the account or sharing its email; otherwise "unknown". The second return
// value is the matched profile's ID.
func (s *Service) ResolveRole(ctx context.Context, accountID uuid.UUID, username, email string) (string, string) {
	if d, err := s.doctors.GetByUsernameOrEmail(ctx, username, email); err == nil && d != nil {
		return auth.RoleDoctor, d.ID.String()
	}
	if p, err := s.patients.GetByAccountID(ctx, accountID); err == nil && p != nil {
		return auth.RolePatient, p.ID.String()
	}
	if p, err := s.patients.GetByEmail(ctx, email); err == nil && p != nil {
		// The record predates the account; adopt it.
		if p.AccountID == nil {
			_ = s.patients.LinkAccount(ctx, p.ID, accountID)
		}
		return auth.RolePatient, p.ID.String()
	}
	return auth.RoleUnknown, ""
}

// LoginResult is what a successful login returns to the client.
type LoginResult struct {
	Token   string   `json:"token"`
	Role    string   `json:"role"`
	OwnerID string   `json:"owner_id,omitempty"`
	Account *Account `json:"account"`
}

// Login authenticates by username or email and issues a session token with
// the resolved role.
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	a, err := s.accounts.GetByUsername(ctx, identifier)
	if err != nil {
		a, err = s.accounts.GetByEmail(ctx, identifier)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	role, ownerID := s.ResolveRole(ctx, a.ID, a.Username, a.Email)

	token, err := s.issuer.Issue(a.ID.String(), a.Username, role, ownerID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	_ = s.accounts.UpdateLastLogin(ctx, a.ID)

	return &LoginResult{Token: token, Role: role, OwnerID: ownerID, Account: a}, nil
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.accounts.GetByID(ctx, id)
}
