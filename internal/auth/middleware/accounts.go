package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Account is a back-office login. PassHash is a bcrypt hash.
type Account struct {
	Username string
	PassHash string
	Role     string
}

// Accounts is a fixed set of logins, usually just the configured admin.
type Accounts map[string]Account

// dummyHash is compared against for unknown users.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// Verify returns the account for username when password matches.
func (a Accounts) Verify(username, password string) (Account, error) {
	acc, ok := a[username]
	hash := []byte(acc.PassHash)
	if !ok || len(hash) == 0 {
		hash = dummyHash
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if !ok || acc.PassHash == "" || err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return acc, nil
}

// HashPassword is what the hash-password command prints.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}
