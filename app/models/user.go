package models

import "gorm.io/gorm"

// User is a registered shopper.
type User struct {
	gorm.Model
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	FirstName string `gorm:"size:255;not null" json:"firstName"`
	LastName  string `gorm:"size:255;not null" json:"lastName"`
}

// Summary is the shape of a user returned by the auth endpoints.
// The password hash never leaves the model.
type Summary struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Summary builds the public view of the user.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
