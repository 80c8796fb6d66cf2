package services

import "github.com/diaryhub/api-go/models"

// Actor is whoever is making the request: a guest, or an authenticated user.
type Actor struct {
	user *models.User
}

func Guest() Actor {
	return Actor{}
}

func Authenticated(user *models.User) Actor {
	return Actor{user: user}
}

func (a Actor) IsGuest() bool {
	return a.user == nil
}

// User returns the authenticated user, or nil for a guest.
func (a Actor) User() *models.User {
	return a.user
}

// ID returns the user id; ok is false for a guest.
func (a Actor) ID() (id uint, ok bool) {
	if a.user == nil {
		return 0, false
	}
	return a.user.ID, true
}

func (a Actor) is(userID uint) bool {
	return a.user != nil && a.user.ID == userID
}

func (a Actor) requireUser() (*models.User, error) {
	if a.user == nil {
		return nil, unauthenticated("Not authorized, no token provided")
	}
	return a.user, nil
}
