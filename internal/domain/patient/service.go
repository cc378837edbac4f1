package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DoctorGetter is the slice of the doctor domain the patient service needs
// to validate transfers.
type DoctorGetter interface {
	Exists(ctx context.Context, id uuid.UUID) bool
}

type Service struct {
	patients PatientRepository
	doctors  DoctorGetter
}

func NewService(patients PatientRepository, doctors DoctorGetter) *Service {
	return &Service{patients: patients, doctors: doctors}
}

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true, "unknown": true,
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.Gender == "" {
		p.Gender = "unknown"
	}
	if !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("birth_date is required")
	}
	if p.BirthDate.After(time.Now()) {
		return fmt.Errorf("birth_date cannot be in the future")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetPatientByAccountID(ctx context.Context, accountID uuid.UUID) (*Patient, error) {
	return s.patients.GetByAccountID(ctx, accountID)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	existing, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("patient not found")
	}
	if p.FirstName == "" {
		p.FirstName = existing.FirstName
	}
	if p.LastName == "" {
		p.LastName = existing.LastName
	}
	if p.Gender == "" {
		p.Gender = existing.Gender
	}
	if !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if p.BirthDate.IsZero() {
		p.BirthDate = existing.BirthDate
	}
	if p.Email == nil {
		p.Email = existing.Email
	}
	p.DoctorID = existing.DoctorID
	return s.patients.Update(ctx, p)
}

// ListPatients returns the doctor's patients with the filter and sort
// applied in memory, so age filtering uses calendar age at call time.
func (s *Service) ListPatients(ctx context.Context, doctorID uuid.UUID, f Filter, sortBy SortField, desc bool) ([]*Patient, error) {
	items, err := s.patients.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	items = Apply(items, f, time.Now())
	Sort(items, sortBy, desc)
	return items, nil
}

// DeletePatient removes a patient record. The database rejects the delete
// while experiments or reports still reference the patient.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return fmt.Errorf("patient not found")
	}
	return s.patients.Delete(ctx, id)
}

// TransferPatient reassigns a patient from one doctor to another. The
// patient must currently belong to fromDoctorID.
func (s *Service) TransferPatient(ctx context.Context, patientID, fromDoctorID, toDoctorID uuid.UUID) error {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return fmt.Errorf("patient not found")
	}
	if p.DoctorID != fromDoctorID {
		return fmt.Errorf("patient does not belong to the requesting doctor")
	}
	if toDoctorID == uuid.Nil || toDoctorID == fromDoctorID {
		return fmt.Errorf("invalid target doctor")
	}
	if s.doctors != nil && !s.doctors.Exists(ctx, toDoctorID) {
		return fmt.Errorf("target doctor not found")
	}
	return s.patients.Transfer(ctx, patientID, toDoctorID)
}
