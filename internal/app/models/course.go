package models

import "time"

// Course defines the course model based on the 'courses' table
type Course struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Duration    string    `json:"duration" db:"duration"`
	Price       float64   `json:"price" db:"price"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
