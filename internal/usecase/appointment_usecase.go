package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-appointment-backend/internal/converter"
	"clinic-appointment-backend/internal/delivery/dto"
	"clinic-appointment-backend/internal/domain/entity"
	"clinic-appointment-backend/internal/domain/repository"
	"clinic-appointment-backend/internal/service"
	"clinic-appointment-backend/pkg/dateutil"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentNotCancelled = errors.New("only cancelled appointments can be deleted")
	ErrMissingBookingFields    = errors.New("employee code, patient name, doctor code, appointment date and time are required")
	ErrMissingSearchParams     = errors.New("employee code and patient name are required")
	ErrInvalidAppointmentDate  = errors.New("invalid appointment date format, use YYYY-MM-DD")
	ErrInvalidAppointmentTime  = errors.New("invalid appointment time format, use HH:MM")
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrEmptyUpdate             = errors.New("at least one of status or medical report must be provided")
	ErrTokenConflict           = errors.New("could not assign a token number, please retry")
)

// Number of insert attempts before a token-number conflict is surfaced.
// A conflict can only happen when the sequencer lost state between issuing a
// token and the insert; each retry re-seeds from the database.
const maxTokenAttempts = 3

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	ListByEmployeeAndPatient(ctx context.Context, employeeCode, patientName string) (*dto.AppointmentListResponse, error)
	ListByDoctor(ctx context.Context, doctorCode string) (*dto.AppointmentListResponse, error)
	GetDoctorQueue(ctx context.Context, doctorCode, date string) (*dto.AppointmentListResponse, error)
	UpdateStatusOrReport(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	sequencer       service.TokenSequencer
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	sequencer service.TokenSequencer,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		sequencer:       sequencer,
	}
}

// CreateAppointment books an appointment and assigns the next token number
// for the doctor on the appointment's calendar day.
//
// Flow:
// 1. Validate mandatory fields before touching the store or the sequencer
// 2. Normalize the date to its UTC day window
// 3. Read MAX(token_number) for the bucket, issue the next token atomically
// 4. Insert; on store failure release the token so the sequence stays dense
// 5. On a duplicate-token insert, retry with a freshly seeded token
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	employeeCode := strings.TrimSpace(req.EmployeeCode)
	patientName := strings.TrimSpace(req.PatientName)
	doctorCode := strings.TrimSpace(req.DoctorCode)

	if employeeCode == "" || patientName == "" || doctorCode == "" || req.AppointmentDate == "" || req.AppointmentTime == "" {
		return nil, ErrMissingBookingFields
	}

	appointmentDate, err := dateutil.ParseDay(req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidAppointmentDate
	}
	if _, err := time.Parse("15:04", req.AppointmentTime); err != nil {
		return nil, ErrInvalidAppointmentTime
	}

	doctor, err := u.doctorRepo.FindByDoctorCode(u.db.WithContext(ctx), doctorCode)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorCode, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	dayStart, dayEnd := dateutil.DayBounds(appointmentDate)

	var appointment *entity.Appointment
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		lastIssued, err := u.appointmentRepo.MaxTokenNumber(u.db.WithContext(ctx), doctorCode, dayStart, dayEnd)
		if err != nil {
			u.log.Warnf("Failed to read max token for doctor %s: %+v", doctorCode, err)
			return nil, err
		}

		token, err := u.sequencer.Next(ctx, doctorCode, dayStart, lastIssued)
		if err != nil {
			return nil, err
		}

		candidate := &entity.Appointment{
			EmployeeCode:    employeeCode,
			PatientName:     patientName,
			PatientAge:      req.PatientAge,
			PatientGender:   req.PatientGender,
			PatientRelation: req.PatientRelation,
			PatientPhone:    req.PatientPhone,
			PatientAddress:  req.PatientAddress,
			DoctorCode:      doctorCode,
			AppointmentDate: dayStart,
			AppointmentTime: req.AppointmentTime,
			TokenNumber:     token,
			Status:          entity.AppointmentStatusPending,
			Notes:           req.Notes,
		}

		err = u.appointmentRepo.Create(u.db.WithContext(ctx), candidate)
		if err == nil {
			appointment = candidate
			break
		}

		if isDuplicateKeyError(err, "idx_doctor_day_token") {
			// Another writer holds this number; the sequencer was behind.
			// The next attempt re-seeds from the database max.
			u.log.Warnf("Token %d already taken for doctor %s on %s, retrying", token, doctorCode, dateutil.DayKey(dayStart))
			continue
		}

		u.log.Errorf("Failed to insert appointment, releasing token %d: %+v", token, err)
		if releaseErr := u.sequencer.Release(ctx, doctorCode, dayStart, token); releaseErr != nil {
			u.log.Errorf("Failed to release token %d for doctor %s: %+v", token, doctorCode, releaseErr)
		}
		return nil, err
	}

	if appointment == nil {
		return nil, ErrTokenConflict
	}

	u.log.Infof("Appointment created: id=%s, doctor=%s, date=%s, token=%d", appointment.ID, doctorCode, dateutil.DayKey(dayStart), appointment.TokenNumber)
	return converter.AppointmentToResponse(appointment), nil
}

// ListByEmployeeAndPatient returns the appointments an employee booked for a
// patient. The patient name is matched case-insensitively as a whole string.
func (u *appointmentUsecase) ListByEmployeeAndPatient(ctx context.Context, employeeCode, patientName string) (*dto.AppointmentListResponse, error) {
	employeeCode = strings.TrimSpace(employeeCode)
	patientName = strings.TrimSpace(patientName)

	if employeeCode == "" || patientName == "" {
		return nil, ErrMissingSearchParams
	}

	appointments, err := u.appointmentRepo.FindByEmployeeAndPatient(u.db.WithContext(ctx), employeeCode, patientName)
	if err != nil {
		u.log.Warnf("Failed to find appointments for employee %s: %+v", employeeCode, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) ListByDoctor(ctx context.Context, doctorCode string) (*dto.AppointmentListResponse, error) {
	doctorCode = strings.TrimSpace(doctorCode)

	appointments, err := u.appointmentRepo.FindByDoctorCode(u.db.WithContext(ctx), doctorCode)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorCode, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// GetDoctorQueue returns the doctor's appointments for one calendar day in
// token order. An empty date means today.
func (u *appointmentUsecase) GetDoctorQueue(ctx context.Context, doctorCode, date string) (*dto.AppointmentListResponse, error) {
	doctorCode = strings.TrimSpace(doctorCode)

	day := time.Now()
	if date != "" {
		parsed, err := dateutil.ParseDay(date)
		if err != nil {
			return nil, ErrInvalidAppointmentDate
		}
		day = parsed
	}

	dayStart, dayEnd := dateutil.DayBounds(day)
	appointments, err := u.appointmentRepo.FindByDoctorAndDay(u.db.WithContext(ctx), doctorCode, dayStart, dayEnd)
	if err != nil {
		u.log.Warnf("Failed to find queue for doctor %s: %+v", doctorCode, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// UpdateStatusOrReport mutates only the status and/or medical report of an
// appointment. Every other field is write-once.
func (u *appointmentUsecase) UpdateStatusOrReport(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if req.Status == nil && req.MedicalReport == nil {
		return nil, ErrEmptyUpdate
	}

	fields := map[string]interface{}{}
	if req.Status != nil {
		status := entity.AppointmentStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		fields["status"] = status
	}
	if req.MedicalReport != nil {
		fields["medical_report"] = *req.MedicalReport
	}

	existing, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if existing == nil {
		return nil, ErrAppointmentNotFound
	}

	if _, err := u.appointmentRepo.UpdateFields(u.db.WithContext(ctx), id, fields); err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", id, err)
		return nil, err
	}

	updated, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil || updated == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", id, err)
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(updated), nil
}

// DeleteAppointment permanently removes an appointment. Hard guard: only
// cancelled appointments can be deleted, there is no override.
func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if !appointment.IsCancelled() {
		return ErrAppointmentNotCancelled
	}

	if _, err := u.appointmentRepo.DeleteByID(u.db.WithContext(ctx), id); err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		return err
	}

	u.log.Infof("Appointment deleted: id=%s, doctor=%s, token=%d", id, appointment.DoctorCode, appointment.TokenNumber)
	return nil
}
