package inventory

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"partsdesk/store"
	"partsdesk/validate"
)

// VehicleInput carries the descriptive fields of a VIN record.
type VehicleInput struct {
	Model          string `json:"model"`
	ProductionYear string `json:"production_year"`
	Body           string `json:"body"`
	Engine         string `json:"engine"`
	Code           string `json:"code"`
	Transmission   string `json:"transmission"`
}

func (in *VehicleInput) check() error {
	in.Model = validate.Sanitize(in.Model)
	in.ProductionYear = validate.Sanitize(in.ProductionYear)
	in.Body = validate.Sanitize(in.Body)
	in.Engine = validate.Sanitize(in.Engine)
	in.Code = validate.Sanitize(in.Code)
	in.Transmission = validate.Sanitize(in.Transmission)
	if in.ProductionYear != "" {
		maxYear := 2100.0
		if !validate.Numeric(in.ProductionYear, validate.Min(1900), &maxYear) {
			return invalidf("invalid production year")
		}
	}
	return nil
}

// isPlaceholderVIN reports whether a raw VIN value stands for "no VIN".
func isPlaceholderVIN(vin string) bool {
	switch strings.ToLower(strings.TrimSpace(vin)) {
	case "", "none", strings.ToLower(validate.NoVIN):
		return true
	}
	return false
}

// AddVehicle registers a VIN record for an existing client. An empty
// VIN creates the client's placeholder row; a duplicate placeholder
// insert for the same client is a silent no-op. A VIN already
// registered to a different client is rejected.
func (s *Service) AddVehicle(clientPhone, vin string, in VehicleInput, username string) error {
	if clientPhone == "" {
		return invalidf("client phone is required")
	}
	if !validate.Phone(clientPhone) {
		return invalidf("invalid client phone format")
	}
	clientPhone = validate.Sanitize(clientPhone)

	var vinPtr *string
	if !isPlaceholderVIN(vin) {
		clean := validate.NormalizeVIN(vin)
		if !validate.VIN(clean) {
			return invalidf("invalid VIN format: must be 7, 13, or 17 alphanumeric characters, or empty")
		}
		vinPtr = &clean
	}
	if err := in.check(); err != nil {
		return err
	}

	if _, err := s.db.GetClient(clientPhone); errors.Is(err, sql.ErrNoRows) {
		return invalidf("client with phone %s does not exist", clientPhone)
	} else if err != nil {
		return fmt.Errorf("lookup client: %w", err)
	}

	if vinPtr != nil {
		existing, err := s.db.GetVehicle(*vinPtr)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup vin: %w", err)
		}
		if existing != nil {
			if existing.ClientPhone == clientPhone {
				// Idempotent re-registration of the same VIN.
				return nil
			}
			return invalidf("VIN %s is already registered to another client", *vinPtr)
		}
	} else {
		if _, err := s.db.GetPlaceholderVehicle(clientPhone); err == nil {
			// At most one no-VIN bucket per client; duplicate insert is a no-op.
			return nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup placeholder: %w", err)
		}
	}

	v := &store.Vehicle{
		VIN:            vinPtr,
		ClientPhone:    clientPhone,
		Model:          in.Model,
		ProductionYear: in.ProductionYear,
		Body:           in.Body,
		Engine:         in.Engine,
		Code:           in.Code,
		Transmission:   in.Transmission,
	}
	if _, err := s.db.CreateVehicle(v, username); err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}

	vinLabel := validate.NoVIN
	if vinPtr != nil {
		vinLabel = *vinPtr
	}
	s.logActivity(username, "add_vin", fmt.Sprintf("Added VIN: %s for client: %s", vinLabel, clientPhone),
		"vins", vinLabel, nil, map[string]string{"vin_number": vinLabel, "client_phone": clientPhone})
	return nil
}

// UpdateVehicle rewrites a vehicle's details and optionally its VIN.
// A VIN change is rejected when the new value already exists elsewhere,
// and cascades to dependent parts in the same transaction.
func (s *Service) UpdateVehicle(oldVIN, newVIN string, in VehicleInput, username string) (string, error) {
	if oldVIN == "" {
		return "", invalidf("old VIN is required")
	}
	if newVIN == "" {
		return "", invalidf("new VIN cannot be empty")
	}
	cleanNew := validate.NormalizeVIN(newVIN)
	if !validate.VIN(cleanNew) || cleanNew == "" {
		return "", invalidf("invalid VIN format: must be 7, 13, or 17 alphanumeric characters")
	}
	if err := in.check(); err != nil {
		return "", err
	}

	old, err := s.db.GetVehicle(oldVIN)
	if errors.Is(err, sql.ErrNoRows) {
		return "", invalidf("VIN not found")
	} else if err != nil {
		return "", fmt.Errorf("lookup vin: %w", err)
	}

	if cleanNew != oldVIN {
		if _, err := s.db.GetVehicle(cleanNew); err == nil {
			return "", invalidf("another record already uses the new VIN number")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("lookup vin: %w", err)
		}
	}

	v := &store.Vehicle{
		VIN:            &cleanNew,
		ClientPhone:    old.ClientPhone,
		Model:          in.Model,
		ProductionYear: in.ProductionYear,
		Body:           in.Body,
		Engine:         in.Engine,
		Code:           in.Code,
		Transmission:   in.Transmission,
	}
	if err := s.db.UpdateVehicle(oldVIN, v, username); err != nil {
		return "", fmt.Errorf("update vehicle: %w", err)
	}

	s.logActivity(username, "update_vin",
		fmt.Sprintf("Updated VIN %s -> %s for client %s", oldVIN, cleanNew, old.ClientPhone),
		"vins", cleanNew,
		map[string]string{"vin_number": oldVIN},
		map[string]string{
			"vin_number": cleanNew, "model": in.Model, "production_year": in.ProductionYear,
			"body": in.Body, "engine": in.Engine, "code": in.Code, "transmission": in.Transmission,
		})
	return cleanNew, nil
}

// DeleteVehicle deletes a VIN record; parts and their supplier quotes
// go with it via cascade, logged as a single vehicle deletion. For a
// placeholder VIN the delete must be scoped to a client phone — with no
// scope it refuses and reports zero rows rather than deleting every
// client's bucket.
func (s *Service) DeleteVehicle(vin, clientPhone, username string) (int64, error) {
	var deleted int64
	var err error
	label := strings.TrimSpace(vin)

	if isPlaceholderVIN(vin) {
		if clientPhone == "" {
			return 0, nil
		}
		deleted, err = s.db.DeletePlaceholderVehicle(clientPhone)
		label = "[NULL/blank]"
	} else {
		deleted, err = s.db.DeleteVehicle(label, clientPhone)
	}
	if err != nil {
		return 0, fmt.Errorf("delete vehicle: %w", err)
	}

	if deleted > 0 {
		s.logActivity(username, "delete_vin", fmt.Sprintf("Deleted VIN: %s", label), "vins", label, nil, nil)
	} else {
		s.logActivity(username, "delete_vin", fmt.Sprintf("Delete VIN attempted (no row matched): %s", label),
			"vins", label, nil, nil)
	}
	return deleted, nil
}

// VehiclesForClient lists a client's VIN records for display.
func (s *Service) VehiclesForClient(clientPhone string) []store.Vehicle {
	vehicles, err := s.db.ListVehiclesForClient(clientPhone)
	if err != nil {
		s.log.Warnw("vehicle list read failed", "client", clientPhone, "err", err)
		return nil
	}
	return vehicles
}

// VehicleDetails returns one vehicle or nil when not found.
func (s *Service) VehicleDetails(vin string) *store.Vehicle {
	v, err := s.db.GetVehicle(vin)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warnw("vehicle read failed", "vin", vin, "err", err)
		}
		return nil
	}
	return v
}
