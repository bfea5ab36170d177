// Package auth — password hashing utilities.
//
// WHY BCRYPT?
// bcrypt exists specifically to hash passwords, and it is deliberately slow.
// Slowness is the feature: each guess in a brute-force run pays the same
// price as a legitimate login.
//
// bcrypt also handles the fiddly parts for you:
//   - A random salt per hash, so identical passwords produce different hashes
//   - The salt lives inside the output string (no separate salt column)
//   - A tunable work factor ("cost") to keep pace with faster hardware
//
// Plain text, MD5, and SHA-256 are all unacceptable for passwords — fast
// hashes fall to GPU rigs in minutes. bcrypt at cost 12 costs the server a
// couple hundred milliseconds per login and attackers the same per guess.
//
// Output format (everything bcrypt.GenerateFromPassword returns):
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 = 4096 iterations)
//	 version
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor for production hashes.
//
// Tune it so hashing takes roughly 200–300ms on the deployment hardware:
// lower and the hashes crack too cheaply, higher and sign-in turns sluggish
// while bcrypt eats the CPU under load.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct rather than free functions so the cost can be injected —
// tests run at the bcrypt minimum (cost 4) and skip the ~250ms per hash
// without changing any of the logic under test.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a caller-chosen
// cost. Pass bcrypt.MinCost in tests; never use this in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained string — store it directly in the database;
// it carries the salt and cost and Verify knows how to decode it.
//
// Plaintexts over 72 bytes are rejected: bcrypt would silently truncate
// them, which is worse than an explicit error.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
// Returns nil on a match.
//
// bcrypt.CompareHashAndPassword compares in constant time, so response
// timing reveals nothing about how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
