// Package model defines the data structures used throughout the application.
package model

import "time"

// Profile is the public, editable part of a user account.
type Profile struct {
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName"  bson:"lastName"`
	Bio       string `json:"bio"       bson:"bio"`
	Photo     string `json:"photo"     bson:"photo"` // avatar reference, empty when unset
}

// User represents a registered account.
//
// PasswordHash never leaves the process: it has no JSON name, and the
// identity loader clears it before a user is attached to a request.
// Followers and Following hold user IDs; the repositories keep them
// symmetric and never let a user appear in its own sets.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Profile      Profile   `json:"profile"`
	Followers    []string  `json:"-"`
	Following    []string  `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the populated form of a user reference: what posts,
// comments and follow lists show about another account.
type UserSummary struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Profile  Profile `json:"profile"`
}

// Summary trims a user down to its public reference form.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Profile: u.Profile}
}

// UserView is a user with the follow edges resolved to summaries.
type UserView struct {
	*User
	Followers []UserSummary `json:"followers"`
	Following []UserSummary `json:"following"`
}
