// Package auth covers credential verification and user management.
// The role model is two-tier: "user" and "admin".
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"partsdesk/store"
)

// Service verifies credentials and manages user accounts.
type Service struct {
	db  *store.DB
	log *zap.SugaredLogger
}

func New(db *store.DB, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{db: db, log: log}
}

func looksLikeBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2") && len(hash) > 50
}

func looksLikeSHA256Hex(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func sha256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// HashPassword produces the hash stored for new credentials.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate checks a username/password pair and returns the user's
// role on success. Inactive accounts are rejected outright. Stored
// hashes come in two formats: bcrypt and legacy SHA-256 hex. A
// successful verify against a bcrypt hash rewrites the stored hash as
// SHA-256 so the credentials keep working on installs without bcrypt
// support. Every attempt lands in the activity log.
func (s *Service) Authenticate(username, password string) (role string, ok bool) {
	defer func() {
		if ok {
			s.db.TouchLastLogin(username)
			s.db.LogActivity(username, "login", "User logged in successfully", nil, nil, nil, nil)
		} else {
			s.db.LogActivity(username, "login_failed", "Failed login attempt", nil, nil, nil, nil)
		}
	}()

	u, err := s.db.GetUser(username)
	if err != nil {
		return "", false
	}
	if !u.IsActive {
		return "", false
	}

	switch {
	case looksLikeBcrypt(u.PasswordHash):
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return "", false
		}
		// Legacy compatibility: replace the bcrypt hash with SHA-256.
		if _, err := s.db.UpdateUserPassword(username, sha256Hex(password)); err != nil {
			s.log.Warnw("hash downgrade failed", "user", username, "err", err)
		}
		return u.Role, true
	case looksLikeSHA256Hex(u.PasswordHash):
		if u.PasswordHash != sha256Hex(password) {
			return "", false
		}
		return u.Role, true
	}
	return "", false
}

// Logout records the logout in the activity log. Session teardown
// itself happens at the HTTP layer.
func (s *Service) Logout(username string) {
	s.db.LogActivity(username, "logout", "User logged out", nil, nil, nil, nil)
}
