// Password hashing for stored accounts.
//
// Accounts are kept in the record store under focusboard_users. By default
// their passwords are stored exactly as typed so an existing store written
// by older clients keeps working. With HASH_PASSWORDS=true the session
// service runs every new password through PasswordService at signup and
// stores the hash instead.
//
// Only signup writes the hash. Login never reads it: any well-formed email
// with a long enough password is accepted.
//
// WHY BCRYPT?
// bcrypt is deliberately slow and salts every hash, so two accounts with the
// same password never share a stored value. The salt and cost live inside
// the hash string itself:
//
//	$2a$12$<22-char salt><31-char hash>
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Roughly 250ms per hash on a modern
// machine, which is fine for a login form.
const defaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer input would be silently
// truncated, so Hash rejects it instead.
const maxPasswordBytes = 72

// PasswordService hashes account passwords with bcrypt.
//
// The cost is a field so tests can drop it to bcrypt.MinCost.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom cost.
// Pass bcrypt.MinCost (4) from tests in other packages. Never use in
// production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes plaintext with bcrypt.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}
