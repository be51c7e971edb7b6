package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionRecord stores the encrypted auth token between runs. There is at
// most one row; logging out deletes it.
type SessionRecord struct {
	gorm.Model
	EncryptedToken string `gorm:"type:text;not null"`
}

// ArchivedTicket is the frozen copy of a deducted ticket kept in the local
// state store. ItemsJSON is the marshalled item list as it was deducted.
type ArchivedTicket struct {
	gorm.Model
	TicketID     string    `gorm:"size:64;index"`
	TicketNumber int       `gorm:"index"`
	ItemsJSON    string    `gorm:"type:text"`
	Total        float64   `gorm:"not null;default:0"`
	DeductedAt   time.Time `gorm:"index"`
}
