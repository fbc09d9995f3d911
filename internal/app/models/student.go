package models

import "time"

// Student defines the student model based on the 'students' table.
// The course selection is stored as a text[] column; pgx scans it directly
// into the Courses slice.
type Student struct {
	ID             int64      `json:"id" db:"id"`
	FirstName      string     `json:"firstName" db:"first_name"`
	LastName       string     `json:"lastName" db:"last_name"`
	Email          string     `json:"email" db:"email"`
	Phone          string     `json:"phone" db:"phone"`
	Password       string     `json:"-" db:"password"`
	Age            *int       `json:"age,omitempty" db:"age"`
	Education      *string    `json:"education,omitempty" db:"education"`
	Experience     *string    `json:"experience,omitempty" db:"experience"`
	Motivation     *string    `json:"motivation,omitempty" db:"motivation"`
	Courses        []string   `json:"courses" db:"courses"`
	ProfilePicture *string    `json:"profilePicture,omitempty" db:"profile_picture"`
	IsActive       bool       `json:"isActive" db:"is_active"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName returns the student's display name.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
