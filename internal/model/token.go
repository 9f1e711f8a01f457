package model

import "time"

// Token is a ledger row for an issued bearer token. Only IsActive ever
// changes after insert.
type Token struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Token     string    `gorm:"size:500;uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	IsActive  bool      `gorm:"default:true;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}
