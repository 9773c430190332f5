package scheduling

import "time"

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// transitions lists the statuses reachable from each status. Cancelled and
// completed are terminal.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from one status to
// another. Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment books one slot of a doctor's day for a patient. Date and Time
// are kept as the exact strings the client sent (YYYY-MM-DD and HH:MM).
type Appointment struct {
	ID              int64     `json:"id"`
	DoctorUsername  string    `json:"doctorUsername"`
	PatientUsername string    `json:"patientUsername"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// holdsSlot reports whether a occupies its slot for availability purposes.
func (a *Appointment) holdsSlot(releaseCancelled bool) bool {
	return !releaseCancelled || a.Status != StatusCancelled
}

// BookingRequest creates an appointment. Any client-supplied status is
// ignored; new appointments are always pending.
type BookingRequest struct {
	DoctorUsername  string  `json:"doctorUsername"`
	PatientUsername string  `json:"patientUsername"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	Notes           *string `json:"notes"`
}

// AppointmentPatch edits an appointment. Empty Date, Time or Status keep the
// current value; Notes is always overwritten.
type AppointmentPatch struct {
	Date   string  `json:"date"`
	Time   string  `json:"time"`
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}
