package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the stored account record, including the password hash.
type User struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	Username            string    `json:"username"`
	PasswordHash        string    `json:"-"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	FaithStage          string    `json:"faithStage"`
	CurrentNeeds        string    `json:"currentNeeds"`
	BringsHere          string    `json:"bringsHere"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// AuthenticatedUser is the user shape handed to callers once a session
// resolves. It never carries the password hash.
type AuthenticatedUser struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	Username            string    `json:"username"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	FaithStage          string    `json:"faithStage,omitempty"`
	CurrentNeeds        string    `json:"currentNeeds,omitempty"`
	BringsHere          string    `json:"bringsHere,omitempty"`
}

// Public strips credential material from u.
func (u User) Public() AuthenticatedUser {
	return AuthenticatedUser{
		ID:                  u.ID,
		Email:               u.Email,
		Username:            u.Username,
		OnboardingCompleted: u.OnboardingCompleted,
		FaithStage:          u.FaithStage,
		CurrentNeeds:        u.CurrentNeeds,
		BringsHere:          u.BringsHere,
	}
}

// OnboardingAnswers are collected by the first-run questionnaire.
type OnboardingAnswers struct {
	FaithStage   string `json:"faithStage"`
	CurrentNeeds string `json:"currentNeeds"`
	BringsHere   string `json:"bringsHere"`
}

// ProfileUpdate holds the user-editable profile fields.
type ProfileUpdate struct {
	Username     string `json:"username"`
	FaithStage   string `json:"faithStage"`
	CurrentNeeds string `json:"currentNeeds"`
	BringsHere   string `json:"bringsHere"`
}
