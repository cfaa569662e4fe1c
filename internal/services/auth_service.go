package services

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AuthService checks basic-auth credentials for the UI against one bcrypt hash.
type AuthService struct {
	User string
	Hash string
}

func (s *AuthService) Authorize(user, password string) bool {
	if s.User == "" || s.Hash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.User)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(s.Hash), []byte(password)) == nil
	return userOK && passOK
}
