package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
)

// In-memory fakes for the store interfaces.

type fakeStudentStore struct {
	students map[int64]*models.Student
	nextID   int64

	createErr   error
	createCalls int
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{students: map[int64]*models.Student{}, nextID: 1}
}

func (f *fakeStudentStore) Create(_ context.Context, s *models.Student) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.students {
		if existing.Email == s.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	s.ID = f.nextID
	f.nextID++
	s.IsActive = true
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	f.students[s.ID] = &cp
	return nil
}

func (f *fakeStudentStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, s := range f.students {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentStore) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStudentStore) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	for _, s := range f.students {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) List(_ context.Context, params dto.StudentListParams) ([]models.Student, int64, error) {
	search := strings.ToLower(params.Search)
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		if search != "" &&
			!strings.Contains(strings.ToLower(s.FirstName), search) &&
			!strings.Contains(strings.ToLower(s.LastName), search) &&
			!strings.Contains(strings.ToLower(s.Email), search) {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStudentStore) ListAll(_ context.Context, _ string) ([]models.Student, error) {
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStudentStore) Update(_ context.Context, id int64, req *dto.UpdateStudentRequest, profilePicture *string) error {
	s, ok := f.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if req.FirstName != nil {
		s.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		s.LastName = *req.LastName
	}
	if req.Email != nil {
		s.Email = *req.Email
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if profilePicture != nil {
		s.ProfilePicture = profilePicture
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStudentStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudentStore) UpdatePassword(_ context.Context, id int64, hash string) error {
	s, ok := f.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.Password = hash
	return nil
}

func (f *fakeStudentStore) UpdateLastLogin(_ context.Context, id int64) error {
	s, ok := f.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	now := time.Now()
	s.LastLoginAt = &now
	return nil
}

type fakeAdminStore struct {
	admins map[int64]*models.Admin
}

func (f *fakeAdminStore) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	for _, a := range f.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f *fakeAdminStore) GetByID(_ context.Context, id int64) (*models.Admin, error) {
	a, ok := f.admins[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAdminStore) UpdateLastLogin(_ context.Context, _ int64) error { return nil }

type fakeCourseStore struct {
	courses []models.Course
}

func (f *fakeCourseStore) GetActive(_ context.Context) ([]models.Course, error) {
	return f.courses, nil
}

func (f *fakeCourseStore) GetByID(_ context.Context, id int64) (*models.Course, error) {
	for i := range f.courses {
		if f.courses[i].ID == id {
			return &f.courses[i], nil
		}
	}
	return nil, apperrors.ErrCourseNotFound
}

func (f *fakeCourseStore) GetByNames(_ context.Context, names []string) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		for _, n := range names {
			if c.Name == n {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type fakeEnrollmentStore struct {
	enrollments map[int64]*models.Enrollment
	nextID      int64
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{enrollments: map[int64]*models.Enrollment{}, nextID: 1}
}

func (f *fakeEnrollmentStore) Create(_ context.Context, e *models.Enrollment) error {
	for _, existing := range f.enrollments {
		if existing.StudentID == e.StudentID && existing.CourseID == e.CourseID {
			return apperrors.ErrAlreadyEnrolled
		}
	}
	e.ID = f.nextID
	f.nextID++
	e.EnrolledAt = time.Now()
	e.UpdatedAt = e.EnrolledAt
	cp := *e
	f.enrollments[e.ID] = &cp
	return nil
}

func (f *fakeEnrollmentStore) GetByStudent(_ context.Context, studentID int64) ([]models.Enrollment, error) {
	out := []models.Enrollment{}
	for _, e := range f.enrollments {
		if e.StudentID == studentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentStore) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEnrollmentStore) Update(_ context.Context, id int64, status *models.EnrollmentStatus, progress *int) error {
	e, ok := f.enrollments[id]
	if !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	if status != nil {
		e.Status = *status
	}
	if progress != nil {
		e.Progress = *progress
	}
	e.UpdatedAt = time.Now()
	return nil
}

type fakeTokenStore struct {
	tokens map[string]fakeToken

	// afterGet runs after a successful GetTokenByValue, before the caller
	// acts on the result. Lets tests interleave a concurrent revocation.
	afterGet func()
}

type fakeToken struct {
	principalID   int64
	principalRole string
	expiryDate    time.Time
	revoked       bool
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]fakeToken{}}
}

func (f *fakeTokenStore) CreateToken(_ context.Context, token string, principalID int64, principalRole string, expiryDate time.Time) error {
	f.tokens[token] = fakeToken{principalID: principalID, principalRole: principalRole, expiryDate: expiryDate}
	return nil
}

func (f *fakeTokenStore) GetTokenByValue(_ context.Context, token string) (int64, string, error) {
	t, ok := f.tokens[token]
	if !ok {
		return 0, "", apperrors.ErrTokenNotFound
	}
	if t.revoked {
		return 0, "", apperrors.ErrTokenRevoked
	}
	if t.expiryDate.Before(time.Now()) {
		return 0, "", apperrors.ErrTokenExpired
	}
	if f.afterGet != nil {
		f.afterGet()
	}
	return t.principalID, t.principalRole, nil
}

func (f *fakeTokenStore) RevokeToken(_ context.Context, token string) error {
	t, ok := f.tokens[token]
	if !ok || t.revoked {
		return apperrors.ErrTokenRevoked
	}
	t.revoked = true
	f.tokens[token] = t
	return nil
}

func (f *fakeTokenStore) RevokeAllPrincipalTokens(_ context.Context, principalID int64, principalRole string) error {
	for k, t := range f.tokens {
		if t.principalID == principalID && t.principalRole == principalRole {
			t.revoked = true
			f.tokens[k] = t
		}
	}
	return nil
}

type fakeResetStore struct {
	tokens map[string]fakeResetToken
}

type fakeResetToken struct {
	studentID  int64
	expiryDate time.Time
	used       bool
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{tokens: map[string]fakeResetToken{}}
}

func (f *fakeResetStore) CreateToken(_ context.Context, token string, studentID int64, expiryDate time.Time) error {
	f.tokens[token] = fakeResetToken{studentID: studentID, expiryDate: expiryDate}
	return nil
}

func (f *fakeResetStore) ConsumeToken(_ context.Context, token string) (int64, error) {
	t, ok := f.tokens[token]
	if !ok {
		return 0, apperrors.ErrInvalidResetToken
	}
	if t.used {
		return 0, apperrors.ErrResetTokenUsed
	}
	if t.expiryDate.Before(time.Now()) {
		return 0, apperrors.ErrInvalidResetToken
	}
	t.used = true
	f.tokens[token] = t
	return t.studentID, nil
}

type fakeAuditStore struct {
	entries []models.AuditEntry
}

func (f *fakeAuditStore) Record(_ context.Context, entry *models.AuditEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditStore) ListByRecord(_ context.Context, tableName string, recordID int64) ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	for _, e := range f.entries {
		if e.TableName == tableName && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeStorage struct {
	saved     []string
	deleted   []string
	saveErr   error
	deleteErr error
}

func (f *fakeStorage) SaveProfilePicture(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", nil
	}
	if f.saveErr != nil {
		return "", f.saveErr
	}
	path := "uploads/" + fileHeader.Filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeStorage) DeleteFile(path string) error {
	f.deleted = append(f.deleted, path)
	return f.deleteErr
}

func (f *fakeStorage) GetFullPath(path string) string { return path }
