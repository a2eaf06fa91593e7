package auth

import (
	"database/sql"
	"errors"
	"fmt"

	"partsdesk/store"
)

// UserError is a user-facing failure from a management operation.
type UserError string

func (e UserError) Error() string { return string(e) }

func userErrf(format string, args ...any) error {
	return UserError(fmt.Sprintf(format, args...))
}

func validRole(role string) bool {
	return role == "user" || role == "admin"
}

// CreateUser adds an account. When the new account is an admin other
// than the seeded default, the default "admin" account is deactivated —
// it only exists to bootstrap a fresh database.
func (s *Service) CreateUser(username, password, role, actor string) error {
	if username == "" || password == "" {
		return userErrf("username and password are required")
	}
	if !validRole(role) {
		return userErrf("invalid role")
	}

	if _, err := s.db.GetUser(username); err == nil {
		return userErrf("username already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.db.CreateUser(username, hash, role); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	s.db.LogActivity(actor, "create_user",
		fmt.Sprintf("Created user '%s' with role '%s'", username, role),
		strPtr("users"), strPtr(username), nil, nil)

	if role == "admin" && username != "admin" {
		if _, err := s.db.SetUserActive("admin", false); err != nil {
			s.log.Warnw("default admin deactivation failed", "err", err)
		}
	}
	return nil
}

// UpdatePassword resets an account's password.
func (s *Service) UpdatePassword(username, newPassword, actor string) error {
	if username == "" || newPassword == "" {
		return userErrf("username and new password are required")
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	affected, err := s.db.UpdateUserPassword(username, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if affected == 0 {
		return userErrf("user not found")
	}
	s.db.LogActivity(actor, "update_password", fmt.Sprintf("Updated password for '%s'", username),
		strPtr("users"), strPtr(username), nil, nil)
	return nil
}

// UpdateRole changes an account's role. Demoting the last active admin
// is refused and changes nothing.
func (s *Service) UpdateRole(username, newRole, actor string) error {
	if !validRole(newRole) {
		return userErrf("invalid role")
	}

	u, err := s.db.GetUser(username)
	if errors.Is(err, sql.ErrNoRows) {
		return userErrf("user not found")
	} else if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	if newRole == "user" && u.Role == "admin" && u.IsActive {
		admins, err := s.db.CountActiveAdmins()
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins <= 1 {
			return userErrf("cannot demote the last admin")
		}
	}

	if _, err := s.db.UpdateUserRole(username, newRole); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	s.db.LogActivity(actor, "update_role",
		fmt.Sprintf("Changed role for '%s' to '%s'", username, newRole),
		strPtr("users"), strPtr(username), nil, nil)
	return nil
}

// SetActive activates or deactivates an account. Deactivating yourself
// or the last active admin is refused.
func (s *Service) SetActive(username string, active bool, actor string) error {
	if actor == username && !active {
		return userErrf("you cannot deactivate your own account")
	}

	u, err := s.db.GetUser(username)
	if errors.Is(err, sql.ErrNoRows) {
		return userErrf("user not found")
	} else if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	if active {
		if _, err := s.db.SetUserActive(username, true); err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
		s.db.LogActivity(actor, "activate_user", fmt.Sprintf("Reactivated user '%s'", username),
			strPtr("users"), strPtr(username), nil, nil)
		return nil
	}

	if u.Role == "admin" && u.IsActive {
		admins, err := s.db.CountActiveAdmins()
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins <= 1 {
			return userErrf("cannot deactivate the last admin")
		}
	}
	if _, err := s.db.SetUserActive(username, false); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	s.db.LogActivity(actor, "deactivate_user", fmt.Sprintf("Deactivated user '%s'", username),
		strPtr("users"), strPtr(username), nil, nil)
	return nil
}

// ListUsers returns all accounts, hashes excluded from serialization.
func (s *Service) ListUsers() ([]store.User, error) {
	return s.db.ListUsers()
}

func strPtr(s string) *string { return &s }
