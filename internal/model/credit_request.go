package model

import "time"

// CreditRequestStatus represents the state of a credit request.
type CreditRequestStatus string

const (
	CreditRequestPending  CreditRequestStatus = "pending"
	CreditRequestApproved CreditRequestStatus = "approved"
	CreditRequestDenied   CreditRequestStatus = "denied"
)

// Valid reports whether s is one of the known statuses.
func (s CreditRequestStatus) Valid() bool {
	switch s {
	case CreditRequestPending, CreditRequestApproved, CreditRequestDenied:
		return true
	}
	return false
}

// CreditRequest is a user's ask for more credits. It leaves pending exactly once.
type CreditRequest struct {
	ID               uint                `json:"id" gorm:"primaryKey"`
	UserID           uint                `json:"user_id" gorm:"not null;index"`
	User             User                `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RequestedCredits int                 `json:"requested_credits" gorm:"not null"`
	Reason           string              `json:"reason" gorm:"size:500;not null"`
	Status           CreditRequestStatus `json:"status" gorm:"size:16;not null;index"`
	CreatedAt        time.Time           `json:"created_at" gorm:"index"`
	ResolvedAt       *time.Time          `json:"resolved_at,omitempty"`
}

// CreditRequestView is a credit request joined with its requester for the admin queue.
type CreditRequestView struct {
	ID               uint                `json:"id"`
	UserID           uint                `json:"user_id"`
	Username         string              `json:"username"`
	CurrentCredits   int                 `json:"current_credits"`
	RequestedCredits int                 `json:"requested_credits"`
	Reason           string              `json:"reason"`
	Status           CreditRequestStatus `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	ResolvedAt       *time.Time          `json:"resolved_at,omitempty"`
}
