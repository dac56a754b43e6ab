package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScanRecord is the persisted outcome of one successful scan.
type ScanRecord struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	UserID       uint            `json:"user_id" gorm:"not null;index"`
	User         User            `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	DocumentName string          `json:"document_name" gorm:"size:255;not null"`
	MatchedName  string          `json:"matched_name" gorm:"size:255"`
	Similarity   decimal.Decimal `json:"similarity" gorm:"type:decimal(5,2);not null"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
}

// TableName overrides the default scan_records name.
func (ScanRecord) TableName() string {
	return "scans"
}
