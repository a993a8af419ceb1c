package models

import (
	"time"
)

type Role string

const (
	AdminRole  Role = "ADMIN"
	ParentRole Role = "PARENT"
)

type User struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email            string    `json:"email" gorm:"uniqueIndex" binding:"required,email"`
	Password         string    `json:"password,omitempty" binding:"required,min=6"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Role             Role      `json:"role" gorm:"type:varchar(20);default:'PARENT'"`
	StripeCustomerId string    `json:"stripeCustomerId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UserLogin is the payload accepted by the login endpoint
type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserUpdate is the payload accepted by the profile update endpoint
type UserUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
