package dto

import (
	"strings"
	"time"

	"github.com/mertcakir/coursereg/internal/app/models"
)

// RegisterStudentRequest carries the multipart registration form fields.
// The profile picture arrives as a separate file part and is validated by
// the file storage layer.
type RegisterStudentRequest struct {
	FirstName  string   `form:"firstName" binding:"required"`
	LastName   string   `form:"lastName" binding:"required"`
	Email      string   `form:"email" binding:"required,email"`
	Phone      string   `form:"phone" binding:"required"`
	Password   string   `form:"password" binding:"required,min=8"`
	Age        *int     `form:"age" binding:"omitempty,gte=16,lte=100"`
	Education  *string  `form:"education"`
	Experience *string  `form:"experience"`
	Motivation *string  `form:"motivation"`
	Courses    []string `form:"courses"`
}

// UpdateStudentRequest is a partial patch; only non-nil fields are applied.
type UpdateStudentRequest struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Age        *int
	Education  *string
	Experience *string
	Motivation *string
	Courses    []string
	IsActive   *bool
}

// Empty reports whether the patch changes nothing.
func (r *UpdateStudentRequest) Empty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil &&
		r.Phone == nil && r.Age == nil && r.Education == nil &&
		r.Experience == nil && r.Motivation == nil && r.Courses == nil &&
		r.IsActive == nil
}

// StudentResponse is the public view of a student record
type StudentResponse struct {
	ID             int64      `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Age            *int       `json:"age,omitempty"`
	Education      *string    `json:"education,omitempty"`
	Experience     *string    `json:"experience,omitempty"`
	Motivation     *string    `json:"motivation,omitempty"`
	Courses        []string   `json:"courses"`
	ProfilePicture *string    `json:"profilePicture,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

// FromStudent converts a model to its response DTO
func FromStudent(s *models.Student) StudentResponse {
	courses := s.Courses
	if courses == nil {
		courses = []string{}
	}
	return StudentResponse{
		ID:             s.ID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Email:          s.Email,
		Phone:          s.Phone,
		Age:            s.Age,
		Education:      s.Education,
		Experience:     s.Experience,
		Motivation:     s.Motivation,
		Courses:        courses,
		ProfilePicture: s.ProfilePicture,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		LastLoginAt:    s.LastLoginAt,
	}
}

// NormalizeCourses flattens a course selection. Clients send either a
// repeated form field or a single comma separated value; the result is a
// trimmed list with empty entries dropped.
func NormalizeCourses(values []string) []string {
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// StudentListParams are the parsed listing/search parameters
type StudentListParams struct {
	Page      int
	Size      int
	Search    string
	SortBy    string
	SortOrder string
}
