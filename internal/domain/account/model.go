package account

import (
	"strings"
	"time"
)

// Role discriminates the three kinds of credentialed account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// Title is the capitalised role name used in user-facing messages.
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// Doctor approval states. Only an admin moves a doctor out of pending.
const (
	DoctorPending  = "pending"
	DoctorApproved = "approved"
	DoctorRejected = "rejected"
)

// ValidDoctorStatus reports whether s is a known doctor approval state.
func ValidDoctorStatus(s string) bool {
	switch s {
	case DoctorPending, DoctorApproved, DoctorRejected:
		return true
	}
	return false
}

// Account is a credentialed user of any role. Specialty, Experience and
// Status are only populated for doctors.
type Account struct {
	ID                 int64     `json:"id"`
	Role               Role      `json:"-"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"-"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	SecurityQuestion   string    `json:"securityQuestion"`
	SecurityAnswerHash string    `json:"-"`
	Specialty          *string   `json:"specialty,omitempty"`
	Experience         *int      `json:"experience,omitempty"`
	Status             *string   `json:"status,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// RegisterRequest carries a new account. Specialty and Experience are
// ignored for non-doctor roles.
type RegisterRequest struct {
	Username         string  `json:"username"`
	Password         string  `json:"password"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	SecurityQuestion string  `json:"securityQuestion"`
	SecurityAnswer   string  `json:"securityAnswer"`
	Specialty        *string `json:"specialty"`
	Experience       *int    `json:"experience"`
}

// ProfilePatch overwrites the editable profile fields. Password and
// SecurityAnswer are only applied when non-empty. Username identifies the admin whose profile is
// edited and is ignored otherwise.
type ProfilePatch struct {
	Username         string  `json:"username"`
	Password         string  `json:"password"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	SecurityQuestion string  `json:"securityQuestion"`
	SecurityAnswer   string  `json:"securityAnswer"`
	Specialty        *string `json:"specialty"`
	Experience       *int    `json:"experience"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Username       string `json:"username"`
	SecurityAnswer string `json:"securityAnswer"`
	NewPassword    string `json:"newPassword"`
}

// DoctorStatusResult answers a doctor's "am I approved yet" query.
type DoctorStatusResult struct {
	Approved bool   `json:"approved"`
	Status   string `json:"status"`
}

// StatusUpdate acknowledges an admin status change.
type StatusUpdate struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
