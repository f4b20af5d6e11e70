package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"clinic-appointment-backend/internal/delivery/dto"
	"clinic-appointment-backend/internal/domain/entity"
	"clinic-appointment-backend/internal/repository"
	"clinic-appointment-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps every goroutine on the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entity.Doctor{}, &entity.Appointment{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func newTestAppointmentUsecase(t *testing.T) (AppointmentUsecase, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)

	log := logrus.New()
	log.SetOutput(io.Discard)

	sequencer := service.NewMemoryTokenSequencer()
	t.Cleanup(sequencer.Stop)

	uc := NewAppointmentUsecase(db, log, repository.NewAppointmentRepository(), repository.NewDoctorRepository(), sequencer)
	return uc, db
}

func seedDoctor(t *testing.T, db *gorm.DB, doctorCode string) {
	t.Helper()

	doctor := &entity.Doctor{
		DoctorCode:     doctorCode,
		FullName:       "Dr. Test " + doctorCode,
		Email:          doctorCode + "@clinic.test",
		Password:       "hashed",
		Specialization: "General",
		IsActive:       true,
	}
	if err := db.Create(doctor).Error; err != nil {
		t.Fatalf("failed to seed doctor %s: %v", doctorCode, err)
	}
}

func bookingRequest(doctorCode, patientName, date string) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		EmployeeCode:    "EMP001",
		PatientName:     patientName,
		PatientAge:      34,
		PatientGender:   "Male",
		PatientRelation: "Self",
		DoctorCode:      doctorCode,
		AppointmentDate: date,
		AppointmentTime: "10:30",
	}
}

func TestCreateAppointmentAssignsSequentialTokens(t *testing.T) {
	uc, db := newTestAppointmentUsecase(t)
	seedDoctor(t, db, "DOC001")
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		resp, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "John Smith", "2025-03-10"))
		if err != nil {
			t.Fatalf("booking %d failed: %v", want, err)
		}
		if resp.TokenNumber != want {
			t.Fatalf("expected token %d, got %d", want, resp.TokenNumber)
		}
		if resp.Status != string(entity.AppointmentStatusPending) {
			t.Fatalf("expected new appointment to be Pending, got %s", resp.Status)
		}
	}
}

func TestCreateAppointmentTokensBucketedPerDoctorAndDay(t *testing.T) {
	uc, db := newTestAppointmentUsecase(t)
	seedDoctor(t, db, "DOC001")
	seedDoctor(t, db, "DOC002")
	ctx := context.Background()

	first, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "John Smith", "2025-03-10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "Jane Doe", "2025-03-10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	otherDoctor, err := uc.CreateAppointment(ctx, bookingRequest("DOC002", "John Smith", "2025-03-10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	otherDay, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "John Smith", "2025-03-11"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.TokenNumber != 1 || second.TokenNumber != 2 {
		t.Fatalf("expected tokens 1 and 2 for the same bucket, got %d and %d", first.TokenNumber, second.TokenNumber)
	}
	if otherDoctor.TokenNumber != 1 {
		t.Fatalf("expected token 1 for another doctor, got %d", otherDoctor.TokenNumber)
	}
	if otherDay.TokenNumber != 1 {
		t.Fatalf("expected token 1 for another day, got %d", otherDay.TokenNumber)
	}
}

func TestCreateAppointmentConcurrentBookings(t *testing.T) {
	uc, db := newTestAppointmentUsecase(t)
	seedDoctor(t, db, "DOC001")
	ctx := context.Background()

	const workers = 20

	var (
		mu     sync.Mutex
		tokens = make(map[int]int, workers)
		wg     sync.WaitGroup
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			resp, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "John Smith", "2025-03-10"))
			if err != nil {
				t.Errorf("concurrent booking failed: %v", err)
				return
			}
			mu.Lock()
			tokens[resp.TokenNumber]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(tokens) != workers {
		t.Fatalf("expected %d distinct tokens, got %d", workers, len(tokens))
	}
	for want := 1; want <= workers; want++ {
		if tokens[want] != 1 {
			t.Fatalf("token %d assigned %d times", want, tokens[want])
		}
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	uc, db := newTestAppointmentUsecase(t)
	seedDoctor(t, db, "DOC001")
	ctx := context.Background()

	blankName := bookingRequest("DOC001", "   ", "2025-03-10")
	if _, err := uc.CreateAppointment(ctx, blankName); !errors.Is(err, ErrMissingBookingFields) {
		t.Fatalf("expected ErrMissingBookingFields for blank patient name, got %v", err)
	}

	badDate := bookingRequest("DOC001", "John Smith", "10-03-2025")
	if _, err := uc.CreateAppointment(ctx, badDate); !errors.Is(err, ErrInvalidAppointmentDate) {
		t.Fatalf("expected ErrInvalidAppointmentDate, got %v", err)
	}

	badTime := bookingRequest("DOC001", "John Smith", "2025-03-10")
	badTime.AppointmentTime = "25:99"
	if _, err := uc.CreateAppointment(ctx, badTime); !errors.Is(err, ErrInvalidAppointmentTime) {
		t.Fatalf("expected ErrInvalidAppointmentTime, got %v", err)
	}

	unknownDoctor := bookingRequest("DOC999", "John Smith", "2025-03-10")
	if _, err := uc.CreateAppointment(ctx, unknownDoctor); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}

	// Failed bookings must not consume token numbers
	resp, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "John Smith", "2025-03-10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TokenNumber != 1 {
		t.Fatalf("expected token 1 after rejected bookings, got %d", resp.TokenNumber)
	}
}

func TestUpdateStatusOrReport(t *testing.T) {
	uc, db := newTestAppointmentUsecase(t)
	seedDoctor(t, db, "DOC001")
	ctx := context.Background()

	created, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "John Smith", "2025-03-10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	confirmed := string(entity.AppointmentStatusConfirmed)
	updated, err := uc.UpdateStatusOrReport(ctx, created.ID, &dto.UpdateAppointmentRequest{Status: &confirmed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != confirmed {
		t.Fatalf("expected status Confirmed, got %s", updated.Status)
	}

	report := "Patient examined, prescribed rest"
	updated, err = uc.UpdateStatusOrReport(ctx, created.ID, &dto.UpdateAppointmentRequest{MedicalReport: &report})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.MedicalReport != report {
		t.Fatalf("expected medical report to be set, got %q", updated.MedicalReport)
	}
	if updated.Status != confirmed {
		t.Fatalf("report-only update must not touch status, got %s", updated.Status)
	}

	// Everything outside status and medical report is write-once
	if updated.TokenNumber != created.TokenNumber {
		t.Fatalf("token number changed from %d to %d", created.TokenNumber, updated.TokenNumber)
	}
	if updated.PatientName != created.PatientName {
		t.Fatalf("patient name changed from %q to %q", created.PatientName, updated.PatientName)
	}
	if updated.AppointmentDate != created.AppointmentDate {
		t.Fatalf("appointment date changed from %q to %q", created.AppointmentDate, updated.AppointmentDate)
	}

	if _, err := uc.UpdateStatusOrReport(ctx, created.ID, &dto.UpdateAppointmentRequest{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}

	bogus := "Archived"
	if _, err := uc.UpdateStatusOrReport(ctx, created.ID, &dto.UpdateAppointmentRequest{Status: &bogus}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	if _, err := uc.UpdateStatusOrReport(ctx, uuid.New(), &dto.UpdateAppointmentRequest{Status: &confirmed}); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestDeleteAppointmentOnlyWhenCancelled(t *testing.T) {
	uc, db := newTestAppointmentUsecase(t)
	seedDoctor(t, db, "DOC001")
	ctx := context.Background()

	created, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "John Smith", "2025-03-10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.DeleteAppointment(ctx, created.ID); !errors.Is(err, ErrAppointmentNotCancelled) {
		t.Fatalf("expected ErrAppointmentNotCancelled for pending appointment, got %v", err)
	}

	var count int64
	if err := db.Model(&entity.Appointment{}).Where("id = ?", created.ID).Count(&count).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatal("rejected delete must leave the appointment in place")
	}

	cancelled := string(entity.AppointmentStatusCancelled)
	if _, err := uc.UpdateStatusOrReport(ctx, created.ID, &dto.UpdateAppointmentRequest{Status: &cancelled}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.DeleteAppointment(ctx, created.ID); err != nil {
		t.Fatalf("expected cancelled appointment to be deletable, got %v", err)
	}

	if err := uc.DeleteAppointment(ctx, created.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound after delete, got %v", err)
	}
}

func TestListByEmployeeAndPatient(t *testing.T) {
	uc, db := newTestAppointmentUsecase(t)
	seedDoctor(t, db, "DOC001")
	ctx := context.Background()

	if _, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "John Smith", "2025-03-10")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "Johnny Smith", "2025-03-10")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Whole-string match is case-insensitive
	list, err := uc.ListByEmployeeAndPatient(ctx, "EMP001", "JOHN SMITH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected 1 appointment, got %d", list.Total)
	}
	if list.Appointments[0].PatientName != "John Smith" {
		t.Fatalf("unexpected patient: %s", list.Appointments[0].PatientName)
	}

	// A prefix is not a match
	list, err = uc.ListByEmployeeAndPatient(ctx, "EMP001", "John")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("expected no partial-name matches, got %d", list.Total)
	}

	if _, err := uc.ListByEmployeeAndPatient(ctx, "", "John Smith"); !errors.Is(err, ErrMissingSearchParams) {
		t.Fatalf("expected ErrMissingSearchParams, got %v", err)
	}
	if _, err := uc.ListByEmployeeAndPatient(ctx, "EMP001", "  "); !errors.Is(err, ErrMissingSearchParams) {
		t.Fatalf("expected ErrMissingSearchParams, got %v", err)
	}
}

func TestGetDoctorQueue(t *testing.T) {
	uc, db := newTestAppointmentUsecase(t)
	seedDoctor(t, db, "DOC001")
	ctx := context.Background()

	for _, name := range []string{"John Smith", "Jane Doe", "Bob Brown"} {
		if _, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", name, "2025-03-10")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "John Smith", "2025-03-11")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	queue, err := uc.GetDoctorQueue(ctx, "DOC001", "2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queue.Total != 3 {
		t.Fatalf("expected 3 appointments in queue, got %d", queue.Total)
	}
	for i, appointment := range queue.Appointments {
		if appointment.TokenNumber != i+1 {
			t.Fatalf("queue out of token order at position %d: token %d", i, appointment.TokenNumber)
		}
	}

	if _, err := uc.GetDoctorQueue(ctx, "DOC001", "not-a-date"); !errors.Is(err, ErrInvalidAppointmentDate) {
		t.Fatalf("expected ErrInvalidAppointmentDate, got %v", err)
	}
}

// Full booking lifecycle: deleting a cancelled appointment removes it but
// token numbers of the remaining appointments stay as assigned.
func TestBookingLifecycle(t *testing.T) {
	uc, db := newTestAppointmentUsecase(t)
	seedDoctor(t, db, "DOC001")
	ctx := context.Background()

	var ids []uuid.UUID
	for i, name := range []string{"John Smith", "Jane Doe", "Bob Brown"} {
		resp, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", name, "2025-03-10"))
		if err != nil {
			t.Fatalf("booking %d failed: %v", i+1, err)
		}
		if resp.TokenNumber != i+1 {
			t.Fatalf("expected token %d, got %d", i+1, resp.TokenNumber)
		}
		ids = append(ids, resp.ID)
	}

	cancelled := string(entity.AppointmentStatusCancelled)
	if _, err := uc.UpdateStatusOrReport(ctx, ids[1], &dto.UpdateAppointmentRequest{Status: &cancelled}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.DeleteAppointment(ctx, ids[1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The non-cancelled neighbours remain protected
	if err := uc.DeleteAppointment(ctx, ids[0]); !errors.Is(err, ErrAppointmentNotCancelled) {
		t.Fatalf("expected ErrAppointmentNotCancelled, got %v", err)
	}

	queue, err := uc.GetDoctorQueue(ctx, "DOC001", "2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queue.Total != 2 {
		t.Fatalf("expected 2 remaining appointments, got %d", queue.Total)
	}
	if queue.Appointments[0].TokenNumber != 1 || queue.Appointments[1].TokenNumber != 3 {
		t.Fatalf("tokens must not be renumbered after delete, got %d and %d",
			queue.Appointments[0].TokenNumber, queue.Appointments[1].TokenNumber)
	}

	// A booking after the delete continues past the historical maximum
	resp, err := uc.CreateAppointment(ctx, bookingRequest("DOC001", "New Patient", "2025-03-10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TokenNumber != 4 {
		t.Fatalf("expected token 4 after deleting token 2, got %d", resp.TokenNumber)
	}
}
