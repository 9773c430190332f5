package account

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Deeppati2005/hms/internal/platform/apperr"
	"github.com/Deeppati2005/hms/internal/platform/auth"
)

const (
	msgUsernameTaken   = "Username already exists"
	msgUserNotFound    = "User not found"
	msgAnswerIncorrect = "Security answer incorrect"
	msgResetOK         = "Password reset successfully"
	msgFieldsRequired  = "All fields are required"
	msgStatusUpdated   = "Status updated successfully"
	msgBadCredentials  = "Invalid username or password"
)

// Service implements registration, login, password reset and profile
// editing once for every role.
type Service struct {
	repo         Repository
	hasher       auth.Hasher
	strictStatus bool
}

// NewService creates the account service. With strictStatus, doctor status
// updates must name a known approval state.
func NewService(repo Repository, hasher auth.Hasher, strictStatus bool) *Service {
	return &Service{repo: repo, hasher: hasher, strictStatus: strictStatus}
}

func notFound(role Role) error {
	return apperr.NotFound(role.Title() + " not found")
}

// normalizeUsername is applied at every entry point that takes a username so
// that lookups agree with what Register stored.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func checkRole(role Role) error {
	if !role.Valid() {
		return apperr.Validationf("unknown role %q", role)
	}
	return nil
}

func (s *Service) hash(secret string) (string, error) {
	h, err := s.hasher.Hash(secret)
	if errors.Is(err, auth.ErrSecretTooLong) {
		return "", apperr.Validation("Password must be at most 72 bytes")
	}
	return h, err
}

func (s *Service) hashAnswer(answer string) (string, error) {
	if answer == "" {
		return "", nil
	}
	h, err := s.hasher.Hash(auth.NormalizeAnswer(answer))
	if errors.Is(err, auth.ErrSecretTooLong) {
		return "", apperr.Validation("Security answer must be at most 72 bytes")
	}
	return h, err
}

// Register creates an account. Doctors always start pending.
func (s *Service) Register(ctx context.Context, role Role, req RegisterRequest) (*Account, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	req.Username = normalizeUsername(req.Username)
	if req.Username == "" {
		return nil, apperr.Validation("Username is required")
	}
	if req.Password == "" {
		return nil, apperr.Validation("Password is required")
	}

	exists, err := s.repo.ExistsByUsername(ctx, role, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict(msgUsernameTaken)
	}

	a := &Account{
		Role:             role,
		Username:         req.Username,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		SecurityQuestion: req.SecurityQuestion,
	}
	if a.PasswordHash, err = s.hash(req.Password); err != nil {
		return nil, err
	}
	if a.SecurityAnswerHash, err = s.hashAnswer(req.SecurityAnswer); err != nil {
		return nil, err
	}
	if role == RoleDoctor {
		status := DoctorPending
		a.Status = &status
		a.Specialty = req.Specialty
		a.Experience = req.Experience
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.Conflict(msgUsernameTaken)
		}
		return nil, err
	}
	return a, nil
}

// Login returns the account when the password matches. Unknown users and
// wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, role Role, username, password string) (*Account, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByUsername(ctx, role, normalizeUsername(username))
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound(msgBadCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(a.PasswordHash, password) {
		return nil, apperr.NotFound(msgBadCredentials)
	}
	return a, nil
}

// CheckUsernameAvailability reports whether username is free for role.
func (s *Service) CheckUsernameAvailability(ctx context.Context, role Role, username string) (bool, error) {
	if err := checkRole(role); err != nil {
		return false, err
	}
	exists, err := s.repo.ExistsByUsername(ctx, role, normalizeUsername(username))
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// ResetPassword replaces the password after checking the security answer
// case-insensitively.
func (s *Service) ResetPassword(ctx context.Context, role Role, req ResetPasswordRequest) (string, error) {
	if err := checkRole(role); err != nil {
		return "", err
	}
	req.Username = normalizeUsername(req.Username)
	if req.Username == "" || req.SecurityAnswer == "" || req.NewPassword == "" {
		return "", apperr.Validation(msgFieldsRequired)
	}

	a, err := s.repo.GetByUsername(ctx, role, req.Username)
	if errors.Is(err, ErrNotFound) {
		return "", apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return "", err
	}
	if !s.hasher.Compare(a.SecurityAnswerHash, auth.NormalizeAnswer(req.SecurityAnswer)) {
		return "", apperr.Validation(msgAnswerIncorrect)
	}

	if a.PasswordHash, err = s.hash(req.NewPassword); err != nil {
		return "", err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", apperr.NotFound(msgUserNotFound)
		}
		return "", err
	}
	return msgResetOK, nil
}

func (s *Service) GetByID(ctx context.Context, role Role, id int64) (*Account, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, role, id)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound(role)
	}
	return a, err
}

func (s *Service) GetByUsername(ctx context.Context, role Role, username string) (*Account, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByUsername(ctx, role, normalizeUsername(username))
	if errors.Is(err, ErrNotFound) {
		return nil, notFound(role)
	}
	return a, err
}

func (s *Service) List(ctx context.Context, role Role) ([]*Account, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, role)
}

// PrimaryAdmin returns the first admin ever registered.
func (s *Service) PrimaryAdmin(ctx context.Context) (*Account, error) {
	a, err := s.repo.First(ctx, RoleAdmin)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound(RoleAdmin)
	}
	return a, err
}

// UpdateProfileByID applies patch to the account with id.
func (s *Service) UpdateProfileByID(ctx context.Context, role Role, id int64, patch ProfilePatch) (*Account, error) {
	a, err := s.GetByID(ctx, role, id)
	if err != nil {
		return nil, err
	}
	return s.applyProfile(ctx, a, patch)
}

// UpdateProfileByUsername applies patch to the account with username.
func (s *Service) UpdateProfileByUsername(ctx context.Context, role Role, username string, patch ProfilePatch) (*Account, error) {
	a, err := s.GetByUsername(ctx, role, username)
	if err != nil {
		return nil, err
	}
	return s.applyProfile(ctx, a, patch)
}

func (s *Service) applyProfile(ctx context.Context, a *Account, patch ProfilePatch) (*Account, error) {
	a.Name = patch.Name
	a.Email = patch.Email
	a.Phone = patch.Phone
	a.SecurityQuestion = patch.SecurityQuestion

	var err error
	if patch.SecurityAnswer != "" {
		if a.SecurityAnswerHash, err = s.hashAnswer(patch.SecurityAnswer); err != nil {
			return nil, err
		}
	}
	if patch.Password != "" {
		if a.PasswordHash, err = s.hash(patch.Password); err != nil {
			return nil, err
		}
	}
	if a.Role == RoleDoctor {
		a.Specialty = patch.Specialty
		a.Experience = patch.Experience
	}

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(a.Role)
		}
		return nil, err
	}
	return a, nil
}

// CheckDoctorStatus reports a doctor's approval state.
func (s *Service) CheckDoctorStatus(ctx context.Context, username string) (*DoctorStatusResult, error) {
	if normalizeUsername(username) == "" {
		return nil, apperr.Validation("Username is required")
	}
	a, err := s.GetByUsername(ctx, RoleDoctor, username)
	if err != nil {
		return nil, err
	}
	status := stringValue(a.Status)
	return &DoctorStatusResult{Approved: status == DoctorApproved, Status: status}, nil
}

// UpdateDoctorStatus sets a doctor's approval state.
func (s *Service) UpdateDoctorStatus(ctx context.Context, id int64, status string) (*StatusUpdate, error) {
	if s.strictStatus && !ValidDoctorStatus(status) {
		return nil, apperr.Validationf("Invalid doctor status %q", status)
	}
	a, err := s.GetByID(ctx, RoleDoctor, id)
	if err != nil {
		return nil, err
	}
	a.Status = &status
	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(RoleDoctor)
		}
		return nil, err
	}
	return &StatusUpdate{
		ID:      strconv.FormatInt(a.ID, 10),
		Status:  status,
		Message: msgStatusUpdated,
	}, nil
}

// DeletePatient removes the patient with username.
func (s *Service) DeletePatient(ctx context.Context, username string) error {
	err := s.repo.DeleteByUsername(ctx, RolePatient, normalizeUsername(username))
	if errors.Is(err, ErrNotFound) {
		return notFound(RolePatient)
	}
	return err
}
