package admin

import (
	"context"
	"strconv"

	"github.com/Deeppati2005/hms/internal/domain/account"
	"github.com/Deeppati2005/hms/internal/domain/scheduling"
)

const msgPatientDeleted = "Patient deleted successfully"

// Accounts is the part of account.Service the console needs.
type Accounts interface {
	List(ctx context.Context, role account.Role) ([]*account.Account, error)
	GetByID(ctx context.Context, role account.Role, id int64) (*account.Account, error)
	GetByUsername(ctx context.Context, role account.Role, username string) (*account.Account, error)
	PrimaryAdmin(ctx context.Context) (*account.Account, error)
	UpdateProfileByUsername(ctx context.Context, role account.Role, username string, patch account.ProfilePatch) (*account.Account, error)
	UpdateDoctorStatus(ctx context.Context, id int64, status string) (*account.StatusUpdate, error)
	DeletePatient(ctx context.Context, username string) error
}

// Appointments is the part of scheduling.Service the console needs.
type Appointments interface {
	ListAppointments(ctx context.Context) ([]*scheduling.Appointment, error)
}

// DoctorStatus is a doctor's approval state as seen by an admin.
type DoctorStatus struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Status   string `json:"status"`
	Approved bool   `json:"approved"`
}

// Service is the admin console: profile management, doctor approval and
// clinic-wide listings.
type Service struct {
	accounts     Accounts
	appointments Appointments
}

func NewService(accounts Accounts, appointments Appointments) *Service {
	return &Service{accounts: accounts, appointments: appointments}
}

func (s *Service) ListAdmins(ctx context.Context) ([]*account.Account, error) {
	return s.accounts.List(ctx, account.RoleAdmin)
}

func (s *Service) GetAdmin(ctx context.Context, username string) (*account.Account, error) {
	return s.accounts.GetByUsername(ctx, account.RoleAdmin, username)
}

// Profile returns the primary admin.
func (s *Service) Profile(ctx context.Context) (*account.Account, error) {
	return s.accounts.PrimaryAdmin(ctx)
}

// UpdateProfile edits the admin named in the patch, or the primary admin
// when the patch names none.
func (s *Service) UpdateProfile(ctx context.Context, patch account.ProfilePatch) (*account.Account, error) {
	username := patch.Username
	if username == "" {
		primary, err := s.accounts.PrimaryAdmin(ctx)
		if err != nil {
			return nil, err
		}
		username = primary.Username
	}
	return s.accounts.UpdateProfileByUsername(ctx, account.RoleAdmin, username, patch)
}

func (s *Service) DoctorStatus(ctx context.Context, id int64) (*DoctorStatus, error) {
	d, err := s.accounts.GetByID(ctx, account.RoleDoctor, id)
	if err != nil {
		return nil, err
	}
	status := ""
	if d.Status != nil {
		status = *d.Status
	}
	return &DoctorStatus{
		ID:       strconv.FormatInt(d.ID, 10),
		Username: d.Username,
		Status:   status,
		Approved: status == account.DoctorApproved,
	}, nil
}

func (s *Service) SetDoctorStatus(ctx context.Context, id int64, status string) (*account.StatusUpdate, error) {
	return s.accounts.UpdateDoctorStatus(ctx, id, status)
}

func (s *Service) ListDoctors(ctx context.Context) ([]*account.Account, error) {
	return s.accounts.List(ctx, account.RoleDoctor)
}

func (s *Service) ListPatients(ctx context.Context) ([]*account.Account, error) {
	return s.accounts.List(ctx, account.RolePatient)
}

func (s *Service) ListAppointments(ctx context.Context) ([]*scheduling.Appointment, error) {
	return s.appointments.ListAppointments(ctx)
}

// DeletePatient removes a patient account. Their appointments are kept.
func (s *Service) DeletePatient(ctx context.Context, username string) (string, error) {
	if err := s.accounts.DeletePatient(ctx, username); err != nil {
		return "", err
	}
	return msgPatientDeleted, nil
}
