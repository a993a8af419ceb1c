package models

import (
	"time"
)

// ChildAccount is a child profile attached to a parent account. Children
// never log in themselves, the parent switches profiles in the app.
type ChildAccount struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;index"`
	FirstName string    `json:"firstName"`
	BirthYear int       `json:"birthYear"`
	AvatarUrl string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ChildAccountCreate struct {
	FirstName string `json:"firstName" binding:"required"`
	BirthYear int    `json:"birthYear"`
}

type ChildAccountUpdate struct {
	FirstName string `json:"firstName"`
	BirthYear int    `json:"birthYear"`
}
