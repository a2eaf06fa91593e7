package inventory

import (
	"database/sql"
	"errors"
	"fmt"

	"partsdesk/store"
	"partsdesk/validate"
)

// AddClient registers a new client keyed by phone number.
func (s *Service) AddClient(phone, name, username string) error {
	if phone == "" {
		return invalidf("phone number is required")
	}
	if !validate.Phone(phone) {
		return invalidf("invalid phone number format")
	}
	phone = validate.Sanitize(phone)
	name = validate.Sanitize(name)

	if _, err := s.db.GetClient(phone); err == nil {
		return invalidf("client with phone %s already exists", phone)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lookup client: %w", err)
	}

	if err := s.db.CreateClient(phone, name, username); err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	s.logActivity(username, "add_client", fmt.Sprintf("Added client: %s - %s", phone, name),
		"clients", phone, nil, map[string]string{"phone": phone, "name": name})
	return nil
}

// UpdateClient renames a client's phone and/or display name. The phone
// is the primary key, so the change cascades to every owned vehicle and
// part in the same transaction.
func (s *Service) UpdateClient(oldPhone, newPhone, newName, username string) error {
	if oldPhone == "" {
		return invalidf("old phone number is required")
	}
	if newPhone == "" {
		return invalidf("new phone number is required")
	}
	if !validate.Phone(newPhone) {
		return invalidf("invalid phone number format")
	}
	newPhone = validate.Sanitize(newPhone)
	newName = validate.Sanitize(newName)

	old, err := s.db.GetClient(oldPhone)
	if errors.Is(err, sql.ErrNoRows) {
		return invalidf("client with phone %s does not exist", oldPhone)
	} else if err != nil {
		return fmt.Errorf("lookup client: %w", err)
	}
	if newPhone != oldPhone {
		if _, err := s.db.GetClient(newPhone); err == nil {
			return invalidf("client with phone %s already exists", newPhone)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup client: %w", err)
		}
	}

	if err := s.db.RenameClient(oldPhone, newPhone, newName, username); err != nil {
		return fmt.Errorf("update client: %w", err)
	}

	s.logActivity(username, "update_client",
		fmt.Sprintf("Updated client: %s -> %s, name: %s", oldPhone, newPhone, newName),
		"clients", newPhone,
		map[string]string{"phone": oldPhone, "name": old.Name},
		map[string]string{"phone": newPhone, "name": newName})
	return nil
}

// DeleteClient removes a client and, via cascade, all of its vehicles,
// parts and supplier quotes. Only the client deletion itself is logged.
func (s *Service) DeleteClient(phone, username string) (int64, error) {
	if phone == "" {
		return 0, invalidf("phone number is required")
	}

	old, err := s.db.GetClient(phone)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup client: %w", err)
	}

	deleted, err := s.db.DeleteClient(phone)
	if err != nil {
		return 0, fmt.Errorf("delete client: %w", err)
	}

	if old != nil {
		s.logActivity(username, "delete_client", fmt.Sprintf("Deleted client: %s - %s", phone, old.Name),
			"clients", phone, map[string]string{"phone": old.Phone, "name": old.Name}, nil)
	} else {
		s.logActivity(username, "delete_client", fmt.Sprintf("Deleted client: %s", phone),
			"clients", phone, nil, nil)
	}
	return deleted, nil
}

// ClientByPhone returns a client or nil when not found; read path
// degrades rather than erroring since it backs display views.
func (s *Service) ClientByPhone(phone string) *store.Client {
	c, err := s.db.GetClient(phone)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warnw("client read failed", "phone", phone, "err", err)
		}
		return nil
	}
	return c
}

// ClientsPage returns one page of clients plus the total row count.
func (s *Service) ClientsPage(page, pageSize int) ([]store.Client, int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	clients, err := s.db.ListClientsPage(pageSize, page*pageSize)
	if err != nil {
		s.log.Warnw("client page read failed", "err", err)
		return nil, 0
	}
	total, err := s.db.CountClients()
	if err != nil {
		total = len(clients)
	}
	return clients, total
}
