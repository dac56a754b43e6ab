package model

import "time"

// User represents an account that can scan documents and spend credits.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Credits      int       `json:"credits" gorm:"not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null;index"`
	LastResetAt  time.Time `json:"last_reset_at" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
