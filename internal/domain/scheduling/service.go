package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Deeppati2005/hms/internal/platform/apperr"
	"github.com/Deeppati2005/hms/internal/platform/db"
)

const (
	msgNotFound   = "Appointment not found"
	msgSlotBooked = "Slot is already booked"
)

// Booking outcomes passed to BookingRecorder.
const (
	OutcomeBooked   = "booked"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
)

// SlotCache holds computed availability per doctor and date. Every entry has
// a generation that Invalidate advances. Get reports the generation seen on a
// miss and Set only stores when it is still current, so a list computed
// before a concurrent booking is never written back. Implementations treat
// their own failures as misses and return a negative generation for them.
type SlotCache interface {
	Get(ctx context.Context, doctorUsername, date string) (slots []string, gen int64, ok bool)
	Set(ctx context.Context, doctorUsername, date string, gen int64, slots []string)
	Invalidate(ctx context.Context, doctorUsername, date string)
}

// BookingRecorder counts booking attempts by outcome.
type BookingRecorder interface {
	RecordBooking(outcome string)
}

// Options tunes the scheduling rules.
type Options struct {
	Grid SlotGrid

	// Strict enforces the status transition table, rejects unknown statuses
	// and requires YYYY-MM-DD dates and HH:MM times.
	Strict bool

	// BookingGuard checks the slot and inserts in one locked transaction so
	// two patients cannot book the same slot.
	BookingGuard bool

	// ReleaseCancelled frees the slot of a cancelled appointment.
	ReleaseCancelled bool

	Cache   SlotCache
	Metrics BookingRecorder
}

// DefaultOptions matches the configuration defaults.
func DefaultOptions() Options {
	return Options{Grid: DefaultGrid(), Strict: true, BookingGuard: true}
}

type Service struct {
	repo Repository
	tx   db.TxRunner
	opts Options
}

func NewService(repo Repository, tx db.TxRunner, opts Options) *Service {
	if opts.Grid.Step <= 0 {
		opts.Grid = DefaultGrid()
	}
	if tx == nil {
		tx = db.NoTx{}
	}
	return &Service{repo: repo, tx: tx, opts: opts}
}

// Grid returns the slot grid in use.
func (s *Service) Grid() SlotGrid {
	return s.opts.Grid
}

func (s *Service) record(outcome string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordBooking(outcome)
	}
}

func (s *Service) invalidate(ctx context.Context, doctorUsername, date string) {
	if s.opts.Cache != nil {
		s.opts.Cache.Invalidate(ctx, doctorUsername, date)
	}
}

func validDate(d string) bool {
	_, err := time.Parse("2006-01-02", d)
	return err == nil
}

func validClock(t string) bool {
	_, err := time.Parse(clockLayout, t)
	return err == nil && len(t) == len(clockLayout)
}

// GetAvailableSlots lists the free slots of a doctor's day. Booked times are
// matched by exact string against the grid.
func (s *Service) GetAvailableSlots(ctx context.Context, doctorUsername, date string) ([]string, error) {
	if doctorUsername == "" || date == "" {
		return nil, apperr.Validation("doctorUsername and date are required")
	}
	gen := int64(-1)
	if s.opts.Cache != nil {
		cached, g, ok := s.opts.Cache.Get(ctx, doctorUsername, date)
		if ok {
			return cached, nil
		}
		gen = g
	}

	appts, err := s.repo.ListByDoctorDate(ctx, doctorUsername, date)
	if err != nil {
		return nil, err
	}
	slots := AvailableSlots(s.opts.Grid.Slots(), s.bookedTimes(appts))

	if s.opts.Cache != nil && gen >= 0 {
		s.opts.Cache.Set(ctx, doctorUsername, date, gen, slots)
	}
	return slots, nil
}

func (s *Service) bookedTimes(appts []*Appointment) []string {
	times := make([]string, 0, len(appts))
	for _, a := range appts {
		if a.holdsSlot(s.opts.ReleaseCancelled) {
			times = append(times, a.Time)
		}
	}
	return times
}

// CreateAppointment books a pending appointment.
func (s *Service) CreateAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if err := s.validateBooking(&req); err != nil {
		s.record(OutcomeInvalid)
		return nil, err
	}

	a := &Appointment{
		DoctorUsername:  req.DoctorUsername,
		PatientUsername: req.PatientUsername,
		Date:            req.Date,
		Time:            req.Time,
		Status:          StatusPending,
		Notes:           req.Notes,
	}

	var err error
	if s.opts.BookingGuard {
		err = s.tx.WithTx(ctx, func(ctx context.Context) error {
			if err := s.repo.LockDoctorDay(ctx, a.DoctorUsername, a.Date); err != nil {
				return err
			}
			existing, err := s.repo.ListByDoctorDate(ctx, a.DoctorUsername, a.Date)
			if err != nil {
				return err
			}
			for _, t := range s.bookedTimes(existing) {
				if t == a.Time {
					return apperr.Conflict(msgSlotBooked)
				}
			}
			return s.repo.Create(ctx, a)
		})
	} else {
		err = s.repo.Create(ctx, a)
	}
	if err != nil {
		if apperr.IsConflict(err) {
			s.record(OutcomeConflict)
		}
		return nil, err
	}

	s.record(OutcomeBooked)
	s.invalidate(ctx, a.DoctorUsername, a.Date)
	return a, nil
}

func (s *Service) validateBooking(req *BookingRequest) error {
	req.DoctorUsername = strings.TrimSpace(req.DoctorUsername)
	req.PatientUsername = strings.TrimSpace(req.PatientUsername)
	var missing []string
	if req.DoctorUsername == "" {
		missing = append(missing, "doctorUsername")
	}
	if req.PatientUsername == "" {
		missing = append(missing, "patientUsername")
	}
	if req.Date == "" {
		missing = append(missing, "date")
	}
	if req.Time == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return apperr.Validationf("%s required", strings.Join(missing, ", "))
	}
	if s.opts.Strict {
		if !validDate(req.Date) {
			return apperr.Validationf("invalid date %q, expected YYYY-MM-DD", req.Date)
		}
		if !validClock(req.Time) {
			return apperr.Validationf("invalid time %q, expected HH:MM", req.Time)
		}
	}
	return nil
}

// UpdateAppointment edits date, time, status and notes. It does not
// re-check the new slot for conflicts.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, patch AppointmentPatch) (*Appointment, error) {
	a, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	prevDate := a.Date

	if patch.Status != "" {
		if s.opts.Strict {
			if !ValidStatus(patch.Status) {
				return nil, apperr.Validationf("invalid appointment status %q", patch.Status)
			}
			if !CanTransition(a.Status, patch.Status) {
				return nil, apperr.InvalidTransition(a.Status, patch.Status)
			}
		}
		a.Status = patch.Status
	}
	if patch.Date != "" {
		if s.opts.Strict && !validDate(patch.Date) {
			return nil, apperr.Validationf("invalid date %q, expected YYYY-MM-DD", patch.Date)
		}
		a.Date = patch.Date
	}
	if patch.Time != "" {
		if s.opts.Strict && !validClock(patch.Time) {
			return nil, apperr.Validationf("invalid time %q, expected HH:MM", patch.Time)
		}
		a.Time = patch.Time
	}
	a.Notes = patch.Notes

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, err
	}

	s.invalidate(ctx, a.DoctorUsername, prevDate)
	if a.Date != prevDate {
		s.invalidate(ctx, a.DoctorUsername, a.Date)
	}
	return a, nil
}

// DeleteAppointment removes an appointment. Unknown ids are ignored.
func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, a.DoctorUsername, a.Date)
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound(msgNotFound)
	}
	return a, err
}

func (s *Service) ListAppointments(ctx context.Context) ([]*Appointment, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorUsername string) ([]*Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorUsername)
}

func (s *Service) ListByPatient(ctx context.Context, patientUsername string) ([]*Appointment, error) {
	return s.repo.ListByPatient(ctx, patientUsername)
}
