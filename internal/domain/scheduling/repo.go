package scheduling

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("appointment not found")

// Repository persists appointments. GetByID and Update return ErrNotFound
// for unknown ids; Delete of an unknown id is not an error.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorUsername string) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientUsername string) ([]*Appointment, error)
	ListByDoctorDate(ctx context.Context, doctorUsername, date string) ([]*Appointment, error)

	// LockDoctorDay serialises bookings for one doctor and date until the
	// surrounding transaction ends.
	LockDoctorDay(ctx context.Context, doctorUsername, date string) error
}
