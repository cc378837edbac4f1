package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	doctors DoctorRepository
}

func NewService(doctors DoctorRepository) *Service {
	return &Service{doctors: doctors}
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.Username == "" {
		return fmt.Errorf("username is required")
	}
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return fmt.Errorf("valid email is required")
	}
	if d.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if existing, err := s.doctors.GetByUsernameOrEmail(ctx, d.Username, d.Email); err == nil && existing != nil {
		return fmt.Errorf("doctor with username %s or email %s already exists", d.Username, d.Email)
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) GetDoctorByAccountID(ctx context.Context, accountID uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByAccountID(ctx, accountID)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.Email != "" && !strings.Contains(d.Email, "@") {
		return fmt.Errorf("invalid email: %s", d.Email)
	}
	existing, err := s.doctors.GetByID(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("doctor not found")
	}
	if d.Email == "" {
		d.Email = existing.Email
	}
	if d.FullName == "" {
		d.FullName = existing.FullName
	}
	if d.Institutions == nil {
		d.Institutions = existing.Institutions
	}
	if d.AccountID == nil {
		d.AccountID = existing.AccountID
	}
	d.Username = existing.Username
	return s.doctors.Update(ctx, d)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}
