// Package model defines database models
package model

import "time"

type User struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string      `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Nickname     *string     `gorm:"size:50" json:"nickname"`
	AboutMe      *string     `gorm:"type:text" json:"about_me"`
	Gender       *string     `gorm:"size:10" json:"gender"`
	Birthdate    *Date       `gorm:"type:date" json:"birthdate"`
	Favorites    StringSlice `gorm:"type:text" json:"favorites"`
	PasswordHash string      `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Tokens []Token `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
