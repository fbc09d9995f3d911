package models

import "time"

// Admin defines the admin model based on the 'admins' table.
// Role is a descriptive label ("admin", "super_admin"); access control is
// based on the principal type, not on this label.
type Admin struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password"`
	Role        string     `json:"role" db:"role"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
