package repository

import (
	"testing"
	"time"

	"clinic-appointment-backend/internal/domain/entity"
	"clinic-appointment-backend/pkg/dateutil"

	"github.com/google/uuid"
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

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entity.Appointment{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func seedAppointment(t *testing.T, db *gorm.DB, doctorCode, day string, token int) *entity.Appointment {
	t.Helper()

	date, err := dateutil.ParseDay(day)
	if err != nil {
		t.Fatalf("bad day %q: %v", day, err)
	}

	appointment := &entity.Appointment{
		EmployeeCode:    "EMP001",
		PatientName:     "John Smith",
		DoctorCode:      doctorCode,
		AppointmentDate: date,
		AppointmentTime: "09:00",
		TokenNumber:     token,
		Status:          entity.AppointmentStatusPending,
	}
	if err := db.Create(appointment).Error; err != nil {
		t.Fatalf("failed to seed appointment: %v", err)
	}
	return appointment
}

func TestMaxTokenNumber(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()

	dayStart, dayEnd := dateutil.DayBounds(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	max, err := repo.MaxTokenNumber(db, "DOC001", dayStart, dayEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if max != 0 {
		t.Fatalf("expected 0 for empty bucket, got %d", max)
	}

	seedAppointment(t, db, "DOC001", "2025-03-10", 1)
	seedAppointment(t, db, "DOC001", "2025-03-10", 2)
	seedAppointment(t, db, "DOC001", "2025-03-11", 9)
	seedAppointment(t, db, "DOC002", "2025-03-10", 7)

	max, err = repo.MaxTokenNumber(db, "DOC001", dayStart, dayEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if max != 2 {
		t.Fatalf("expected max 2 within the day window, got %d", max)
	}
}

func TestUniqueTokenIndex(t *testing.T) {
	db := newTestDB(t)

	seedAppointment(t, db, "DOC001", "2025-03-10", 1)

	date, _ := dateutil.ParseDay("2025-03-10")
	duplicate := &entity.Appointment{
		EmployeeCode:    "EMP002",
		PatientName:     "Jane Doe",
		DoctorCode:      "DOC001",
		AppointmentDate: date,
		AppointmentTime: "11:00",
		TokenNumber:     1,
		Status:          entity.AppointmentStatusPending,
	}
	if err := db.Create(duplicate).Error; err == nil {
		t.Fatal("expected unique index violation for duplicate token")
	}
}

func TestFindTokenBuckets(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()

	seedAppointment(t, db, "DOC001", "2025-03-10", 1)
	seedAppointment(t, db, "DOC001", "2025-03-10", 2)
	seedAppointment(t, db, "DOC001", "2025-03-11", 1)
	seedAppointment(t, db, "DOC002", "2025-03-10", 5)
	seedAppointment(t, db, "DOC001", "2025-03-01", 4) // before the window

	from, _ := dateutil.ParseDay("2025-03-10")
	buckets, err := repo.FindTokenBuckets(db, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}

	maxByKey := make(map[string]int, len(buckets))
	for _, b := range buckets {
		maxByKey[b.DoctorCode+":"+dateutil.DayKey(b.AppointmentDate)] = b.MaxTokenNumber
	}
	if maxByKey["DOC001:2025-03-10"] != 2 {
		t.Fatalf("expected max 2 for DOC001/2025-03-10, got %d", maxByKey["DOC001:2025-03-10"])
	}
	if maxByKey["DOC001:2025-03-11"] != 1 {
		t.Fatalf("expected max 1 for DOC001/2025-03-11, got %d", maxByKey["DOC001:2025-03-11"])
	}
	if maxByKey["DOC002:2025-03-10"] != 5 {
		t.Fatalf("expected max 5 for DOC002/2025-03-10, got %d", maxByKey["DOC002:2025-03-10"])
	}
}

func TestUpdateFieldsTouchesOnlyGivenColumns(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()

	appointment := seedAppointment(t, db, "DOC001", "2025-03-10", 1)

	rows, err := repo.UpdateFields(db, appointment.ID, map[string]interface{}{
		"status":         entity.AppointmentStatusCancelled,
		"medical_report": "follow-up in two weeks",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	reloaded, err := repo.FindByID(db, appointment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.Status != entity.AppointmentStatusCancelled {
		t.Fatalf("expected Cancelled, got %s", reloaded.Status)
	}
	if reloaded.MedicalReport != "follow-up in two weeks" {
		t.Fatalf("unexpected medical report: %q", reloaded.MedicalReport)
	}
	if reloaded.TokenNumber != 1 || reloaded.PatientName != "John Smith" {
		t.Fatal("update must not touch columns outside the field map")
	}

	rows, err = repo.UpdateFields(db, uuid.New(), map[string]interface{}{"status": entity.AppointmentStatusCancelled})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows for unknown id, got %d", rows)
	}
}

func TestDeleteByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()

	appointment := seedAppointment(t, db, "DOC001", "2025-03-10", 1)

	rows, err := repo.DeleteByID(db, appointment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row deleted, got %d", rows)
	}

	found, err := repo.FindByID(db, appointment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Fatal("expected appointment to be gone")
	}

	rows, err = repo.DeleteByID(db, appointment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows on second delete, got %d", rows)
	}
}

func TestFindByEmployeeAndPatientOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()

	seedAppointment(t, db, "DOC001", "2025-03-11", 1)
	early := seedAppointment(t, db, "DOC001", "2025-03-10", 1)

	appointments, err := repo.FindByEmployeeAndPatient(db, "EMP001", "john smith")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appointments) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(appointments))
	}
	if appointments[0].ID != early.ID {
		t.Fatal("expected earliest appointment date first")
	}
}
