package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
)

func newStudentService(students *fakeStudentStore, courses *fakeCourseStore, enrollments *fakeEnrollmentStore, audit *fakeAuditStore, storage *fakeStorage) *StudentService {
	return NewStudentService(students, courses, enrollments, audit, storage)
}

func registerRequest(email string) *dto.RegisterStudentRequest {
	return &dto.RegisterStudentRequest{
		FirstName: "Ayse",
		LastName:  "Yilmaz",
		Email:     email,
		Phone:     "+905551112233",
		Password:  "secret-password",
	}
}

func TestRegisterCreatesStudentAndEnrollments(t *testing.T) {
	students := newFakeStudentStore()
	courses := &fakeCourseStore{courses: []models.Course{
		{ID: 1, Name: "Go Fundamentals", IsActive: true},
		{ID: 2, Name: "PostgreSQL", IsActive: true},
	}}
	enrollments := newFakeEnrollmentStore()
	svc := newStudentService(students, courses, enrollments, &fakeAuditStore{}, &fakeStorage{})

	req := registerRequest("ayse@example.com")
	req.Courses = []string{"Go Fundamentals", "Nonexistent Course"}

	student, err := svc.Register(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if student.ID == 0 {
		t.Error("expected assigned ID")
	}
	if student.Password == "secret-password" {
		t.Error("password should be stored hashed")
	}

	got, err := enrollments.GetByStudent(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("GetByStudent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 enrollment for the known course, got %d", len(got))
	}
	if got[0].CourseID != 1 || got[0].Status != models.EnrollmentEnrolled {
		t.Errorf("unexpected enrollment %+v", got[0])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	students := newFakeStudentStore()
	svc := newStudentService(students, &fakeCourseStore{}, newFakeEnrollmentStore(), &fakeAuditStore{}, &fakeStorage{})

	if _, err := svc.Register(context.Background(), registerRequest("dup@example.com"), nil); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	createCalls := students.createCalls

	_, err := svc.Register(context.Background(), registerRequest("dup@example.com"), nil)
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
	if students.createCalls != createCalls {
		t.Error("duplicate email should be rejected before the insert")
	}
}

func TestRegisterCleansUpFileOnFailure(t *testing.T) {
	students := newFakeStudentStore()
	students.createErr = errors.New("db down")
	storage := &fakeStorage{}
	svc := newStudentService(students, &fakeCourseStore{}, newFakeEnrollmentStore(), &fakeAuditStore{}, storage)

	picture := &multipart.FileHeader{Filename: "photo.png"}
	_, err := svc.Register(context.Background(), registerRequest("x@example.com"), picture)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(storage.saved) != 1 {
		t.Fatalf("expected file to be saved once, got %d", len(storage.saved))
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != storage.saved[0] {
		t.Errorf("saved file should be removed after the failed insert, deleted=%v", storage.deleted)
	}
}

func TestListSearchFiltersStudents(t *testing.T) {
	students := newFakeStudentStore()
	svc := newStudentService(students, &fakeCourseStore{}, newFakeEnrollmentStore(), &fakeAuditStore{}, &fakeStorage{})

	ayse := registerRequest("ayse@example.com")
	mehmet := registerRequest("mehmet@example.com")
	mehmet.FirstName = "Mehmet"
	mehmet.LastName = "Demir"
	for _, req := range []*dto.RegisterStudentRequest{ayse, mehmet} {
		if _, err := svc.Register(context.Background(), req, nil); err != nil {
			t.Fatalf("Register %s: %v", req.Email, err)
		}
	}

	got, _, err := svc.List(context.Background(), dto.StudentListParams{Page: 1, Size: 10, Search: "demir"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].LastName != "Demir" {
		t.Fatalf("case-insensitive partial match should return only Demir, got %+v", got)
	}

	got, total, err := svc.List(context.Background(), dto.StudentListParams{Page: 1, Size: 10, Search: "example.com"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || total.TotalItems != 2 {
		t.Errorf("email substring should match both students, got %d (total %d)", len(got), total.TotalItems)
	}

	got, _, err = svc.List(context.Background(), dto.StudentListParams{Page: 1, Size: 10, Search: "nobody"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	students := newFakeStudentStore()
	svc := newStudentService(students, &fakeCourseStore{}, newFakeEnrollmentStore(), &fakeAuditStore{}, &fakeStorage{})

	a, _ := svc.Register(context.Background(), registerRequest("a@example.com"), nil)
	if _, err := svc.Register(context.Background(), registerRequest("b@example.com"), nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	taken := "b@example.com"
	_, err := svc.Update(context.Background(), 99, a.ID, &dto.UpdateStudentRequest{Email: &taken}, nil)
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestUpdateReplacesPictureAndAudits(t *testing.T) {
	students := newFakeStudentStore()
	storage := &fakeStorage{}
	audit := &fakeAuditStore{}
	svc := newStudentService(students, &fakeCourseStore{}, newFakeEnrollmentStore(), audit, storage)

	old, _ := svc.Register(context.Background(), registerRequest("p@example.com"), &multipart.FileHeader{Filename: "old.png"})
	if old.ProfilePicture == nil {
		t.Fatal("expected stored picture on registration")
	}

	updated, err := svc.Update(context.Background(), 7, old.ID, &dto.UpdateStudentRequest{}, &multipart.FileHeader{Filename: "new.png"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ProfilePicture == nil || *updated.ProfilePicture != "uploads/new.png" {
		t.Errorf("picture not replaced: %+v", updated.ProfilePicture)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "uploads/old.png" {
		t.Errorf("old picture should be deleted after the update, deleted=%v", storage.deleted)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != models.AuditActionUpdate || audit.entries[0].AdminID != 7 {
		t.Errorf("unexpected audit entries %+v", audit.entries)
	}
}

func TestUpdateDeactivationIsAuditedAsDeactivate(t *testing.T) {
	students := newFakeStudentStore()
	audit := &fakeAuditStore{}
	svc := newStudentService(students, &fakeCourseStore{}, newFakeEnrollmentStore(), audit, &fakeStorage{})

	s, _ := svc.Register(context.Background(), registerRequest("deact@example.com"), nil)

	inactive := false
	updated, err := svc.Update(context.Background(), 7, s.ID, &dto.UpdateStudentRequest{IsActive: &inactive}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsActive {
		t.Error("student should be inactive")
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != models.AuditActionDeactivate {
		t.Fatalf("deactivation should be audited as DEACTIVATE, got %+v", audit.entries)
	}

	// Patching an already inactive record is a plain update.
	name := "Fatma"
	if _, err := svc.Update(context.Background(), 7, s.ID, &dto.UpdateStudentRequest{FirstName: &name, IsActive: &inactive}, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if audit.entries[1].Action != models.AuditActionUpdate {
		t.Errorf("expected UPDATE for an already inactive record, got %q", audit.entries[1].Action)
	}
}

func TestDeleteRemovesRecordPictureAndAudits(t *testing.T) {
	students := newFakeStudentStore()
	storage := &fakeStorage{}
	audit := &fakeAuditStore{}
	svc := newStudentService(students, &fakeCourseStore{}, newFakeEnrollmentStore(), audit, storage)

	s, _ := svc.Register(context.Background(), registerRequest("d@example.com"), &multipart.FileHeader{Filename: "pic.png"})

	if err := svc.Delete(context.Background(), 3, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), s.ID); !errors.Is(err, apperrors.ErrStudentNotFound) {
		t.Errorf("record should be gone, got %v", err)
	}
	if len(storage.deleted) == 0 || storage.deleted[len(storage.deleted)-1] != "uploads/pic.png" {
		t.Errorf("picture should be removed, deleted=%v", storage.deleted)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != models.AuditActionDelete {
		t.Errorf("unexpected audit entries %+v", audit.entries)
	}

	if err := svc.Delete(context.Background(), 3, s.ID); !errors.Is(err, apperrors.ErrStudentNotFound) {
		t.Errorf("deleting a missing student should be 404, got %v", err)
	}
}

func TestDeleteSucceedsWhenFileRemovalFails(t *testing.T) {
	students := newFakeStudentStore()
	storage := &fakeStorage{deleteErr: errors.New("disk gone")}
	svc := newStudentService(students, &fakeCourseStore{}, newFakeEnrollmentStore(), &fakeAuditStore{}, storage)

	s, _ := svc.Register(context.Background(), registerRequest("f@example.com"), &multipart.FileHeader{Filename: "pic.png"})

	if err := svc.Delete(context.Background(), 3, s.ID); err != nil {
		t.Fatalf("Delete must not surface file removal failures, got %v", err)
	}
	if _, err := svc.Get(context.Background(), s.ID); !errors.Is(err, apperrors.ErrStudentNotFound) {
		t.Errorf("record should be gone, got %v", err)
	}
}

func TestAuditHistorySurvivesDeletion(t *testing.T) {
	students := newFakeStudentStore()
	audit := &fakeAuditStore{}
	svc := newStudentService(students, &fakeCourseStore{}, newFakeEnrollmentStore(), audit, &fakeStorage{})

	s, _ := svc.Register(context.Background(), registerRequest("h@example.com"), nil)
	name := "Fatma"
	if _, err := svc.Update(context.Background(), 1, s.ID, &dto.UpdateStudentRequest{FirstName: &name}, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := svc.Delete(context.Background(), 1, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	entries, err := svc.AuditHistory(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("AuditHistory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected update and delete entries, got %d", len(entries))
	}
	if entries[0].Action != models.AuditActionUpdate || entries[1].Action != models.AuditActionDelete {
		t.Errorf("unexpected actions %+v", entries)
	}
}
