package inventory

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"partsdesk/store"
	"partsdesk/validate"
)

// PartInput carries the user-editable fields of a part.
type PartInput struct {
	Name     string `json:"name"`
	Number   string `json:"number"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

func (in *PartInput) check() error {
	in.Name = validate.Sanitize(in.Name)
	in.Number = validate.Sanitize(in.Number)
	in.Notes = validate.Sanitize(in.Notes)
	if in.Name == "" && in.Number == "" {
		return invalidf("part name or part number is required")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 1 {
		return invalidf("quantity must be at least 1")
	}
	return nil
}

func toStoreSuppliers(suppliers []SupplierInput) ([]store.Supplier, error) {
	out := make([]store.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if s.BuyingPrice < 0 {
			return nil, invalidf("invalid buying price")
		}
		if s.SellingPrice < 0 {
			return nil, invalidf("invalid selling price")
		}
		out = append(out, store.Supplier{
			SupplierName: validate.Sanitize(s.Name),
			BuyingPrice:  s.BuyingPrice,
			SellingPrice: s.SellingPrice,
			DeliveryTime: validate.Sanitize(s.DeliveryTime),
		})
	}
	return out, nil
}

// AddPart creates a part for a client, optionally attached to a VIN,
// with any supplier quotes inserted atomically in the same transaction.
// Pass an empty vin to put the part in the client's no-VIN bucket.
func (s *Service) AddPart(vin, clientPhone string, in PartInput, suppliers []SupplierInput, username string) (int64, error) {
	if err := in.check(); err != nil {
		return 0, err
	}
	rows, err := toStoreSuppliers(suppliers)
	if err != nil {
		return 0, err
	}

	var vinPtr *string
	if !isPlaceholderVIN(vin) {
		clean := validate.NormalizeVIN(vin)
		if !validate.VIN(clean) {
			return 0, invalidf("invalid VIN format")
		}
		vinPtr = &clean
	}

	p := &store.Part{
		VIN:         vinPtr,
		ClientPhone: validate.Sanitize(clientPhone),
		PartName:    in.Name,
		PartNumber:  in.Number,
		Quantity:    in.Quantity,
		Notes:       in.Notes,
	}
	partID, err := s.db.CreatePart(p, rows, username)
	if err != nil {
		return 0, fmt.Errorf("create part: %w", err)
	}

	details := fmt.Sprintf("Added part without VIN: %s (%s) for client: %s", in.Name, in.Number, p.ClientPhone)
	if vinPtr != nil {
		details = fmt.Sprintf("Added part: %s (%s) to VIN: %s", in.Name, in.Number, *vinPtr)
	}
	s.logActivity(username, "add_part", details, "parts", strconv.FormatInt(partID, 10),
		nil, map[string]string{"part_name": in.Name, "part_number": in.Number})
	return partID, nil
}

// AddSupplier attaches one supplier quote to an existing part.
func (s *Service) AddSupplier(partID int64, in SupplierInput, username string) (int64, error) {
	if partID < 1 {
		return 0, invalidf("invalid part ID")
	}
	in.Name = validate.Sanitize(in.Name)
	if in.Name == "" {
		return 0, invalidf("supplier name is required")
	}
	if in.BuyingPrice < 0 {
		return 0, invalidf("invalid buying price")
	}
	if in.SellingPrice < 0 {
		return 0, invalidf("invalid selling price")
	}

	if _, err := s.db.GetPart(partID); errors.Is(err, sql.ErrNoRows) {
		return 0, invalidf("part %d not found", partID)
	} else if err != nil {
		return 0, fmt.Errorf("lookup part: %w", err)
	}

	id, err := s.db.CreateSupplier(&store.Supplier{
		PartID:       partID,
		SupplierName: in.Name,
		BuyingPrice:  in.BuyingPrice,
		SellingPrice: in.SellingPrice,
		DeliveryTime: validate.Sanitize(in.DeliveryTime),
	}, username)
	if err != nil {
		return 0, fmt.Errorf("create supplier: %w", err)
	}

	s.logActivity(username, "add_supplier", fmt.Sprintf("Added supplier: %s for part: %d", in.Name, partID),
		"part_suppliers", strconv.FormatInt(partID, 10),
		nil, map[string]any{"part_id": partID, "supplier_name": in.Name})
	return id, nil
}

// UpdatePart rewrites a part's fields and replaces its supplier set in
// one transaction.
func (s *Service) UpdatePart(partID int64, in PartInput, suppliers []SupplierInput, username string) error {
	if partID < 1 {
		return invalidf("part ID is required")
	}
	if err := in.check(); err != nil {
		return err
	}
	rows, err := toStoreSuppliers(suppliers)
	if err != nil {
		return err
	}

	old, err := s.db.GetPart(partID)
	if errors.Is(err, sql.ErrNoRows) {
		return invalidf("part %d not found", partID)
	} else if err != nil {
		return fmt.Errorf("lookup part: %w", err)
	}

	if err := s.db.UpdatePart(partID, in.Name, in.Number, in.Quantity, in.Notes, rows, username); err != nil {
		return fmt.Errorf("update part: %w", err)
	}

	s.logActivity(username, "update_part",
		fmt.Sprintf("Updated part: %s (%s) - ID: %d", in.Name, in.Number, partID),
		"parts", strconv.FormatInt(partID, 10),
		map[string]any{"part_name": old.PartName, "part_number": old.PartNumber, "quantity": old.Quantity},
		map[string]any{"part_name": in.Name, "part_number": in.Number, "quantity": in.Quantity})
	return nil
}

// UpdateSupplier rewrites a single supplier quote. A vanished row is a
// validation-class error, not a crash.
func (s *Service) UpdateSupplier(supplierID int64, in SupplierInput, username string) error {
	if supplierID < 1 {
		return invalidf("supplier ID is required")
	}
	in.Name = validate.Sanitize(in.Name)
	if in.Name == "" {
		return invalidf("supplier name is required")
	}
	if in.BuyingPrice < 0 {
		return invalidf("invalid buying price")
	}
	if in.SellingPrice < 0 {
		return invalidf("invalid selling price")
	}

	old, err := s.db.GetSupplier(supplierID)
	if errors.Is(err, sql.ErrNoRows) {
		return invalidf("supplier not found")
	} else if err != nil {
		return fmt.Errorf("lookup supplier: %w", err)
	}

	if _, err := s.db.UpdateSupplier(supplierID, in.Name, in.BuyingPrice, in.SellingPrice,
		validate.Sanitize(in.DeliveryTime), username); err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}

	s.logActivity(username, "update_supplier",
		fmt.Sprintf("Updated supplier %d for part %d", supplierID, old.PartID),
		"part_suppliers", strconv.FormatInt(supplierID, 10),
		map[string]any{
			"supplier_name": old.SupplierName, "buying_price": old.BuyingPrice,
			"selling_price": old.SellingPrice, "delivery_time": old.DeliveryTime,
		},
		map[string]any{
			"supplier_name": in.Name, "buying_price": in.BuyingPrice,
			"selling_price": in.SellingPrice, "delivery_time": in.DeliveryTime,
		})
	return nil
}

// DeleteSupplier removes one supplier quote.
func (s *Service) DeleteSupplier(supplierID int64, username string) error {
	if supplierID < 1 {
		return invalidf("supplier ID is required")
	}

	old, err := s.db.GetSupplier(supplierID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lookup supplier: %w", err)
	}

	if _, err := s.db.DeleteSupplier(supplierID); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}

	var oldSnapshot any
	partLabel := ""
	if old != nil {
		oldSnapshot = map[string]any{"supplier_name": old.SupplierName}
		partLabel = strconv.FormatInt(old.PartID, 10)
	}
	s.logActivity(username, "delete_supplier",
		fmt.Sprintf("Deleted supplier %d for part %s", supplierID, partLabel),
		"part_suppliers", strconv.FormatInt(supplierID, 10), oldSnapshot, nil)
	return nil
}

// MovePart re-parents a part onto another registered vehicle. The
// part's denormalized client phone follows the target vehicle's owner,
// so moving across clients reassigns ownership by design.
func (s *Service) MovePart(partID int64, newVIN, username string) error {
	if partID < 1 || newVIN == "" {
		return invalidf("part ID and target VIN are required")
	}
	clean := validate.NormalizeVIN(newVIN)
	if !validate.VIN(clean) || clean == "" {
		return invalidf("invalid VIN format: must be 7, 13, or 17 alphanumeric characters")
	}

	part, err := s.db.GetPart(partID)
	if errors.Is(err, sql.ErrNoRows) {
		return invalidf("part not found")
	} else if err != nil {
		return fmt.Errorf("lookup part: %w", err)
	}

	target, err := s.db.GetVehicle(clean)
	if errors.Is(err, sql.ErrNoRows) {
		return invalidf("target VIN not found")
	} else if err != nil {
		return fmt.Errorf("lookup vin: %w", err)
	}

	if err := s.db.MovePart(partID, clean, target.ClientPhone, username); err != nil {
		return fmt.Errorf("move part: %w", err)
	}

	oldVIN := validate.NoVIN
	if part.VIN != nil {
		oldVIN = *part.VIN
	}
	s.logActivity(username, "move_part",
		fmt.Sprintf("Moved part ID %d from VIN %s to %s", partID, oldVIN, clean),
		"parts", strconv.FormatInt(partID, 10),
		map[string]string{"vin_number": oldVIN},
		map[string]string{"vin_number": clean, "client_phone": target.ClientPhone})
	return nil
}

// DeletePart removes a part and, via cascade, its supplier quotes.
func (s *Service) DeletePart(partID int64, username string) (int64, error) {
	if partID < 1 {
		return 0, invalidf("part ID is required")
	}

	old, err := s.db.GetPart(partID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup part: %w", err)
	}

	deleted, err := s.db.DeletePart(partID)
	if err != nil {
		return 0, fmt.Errorf("delete part: %w", err)
	}

	if old != nil {
		s.logActivity(username, "delete_part",
			fmt.Sprintf("Deleted part: %s (%s) - ID: %d", old.PartName, old.PartNumber, partID),
			"parts", strconv.FormatInt(partID, 10),
			map[string]string{"part_name": old.PartName, "part_number": old.PartNumber}, nil)
	} else {
		s.logActivity(username, "delete_part", fmt.Sprintf("Deleted part ID: %d", partID),
			"parts", strconv.FormatInt(partID, 10), nil, nil)
	}
	return deleted, nil
}

// PartsForVehicle lists the parts attached to one VIN.
func (s *Service) PartsForVehicle(vin string) []store.Part {
	parts, err := s.db.ListPartsForVehicle(vin)
	if err != nil {
		s.log.Warnw("part list read failed", "vin", vin, "err", err)
		return nil
	}
	return parts
}

// PartsWithoutVIN lists a client's no-VIN bucket parts.
func (s *Service) PartsWithoutVIN(clientPhone string) []store.Part {
	parts, err := s.db.ListPartsWithoutVIN(clientPhone)
	if err != nil {
		s.log.Warnw("part list read failed", "client", clientPhone, "err", err)
		return nil
	}
	return parts
}

// PartDetails returns one part or nil when not found.
func (s *Service) PartDetails(partID int64) *store.Part {
	p, err := s.db.GetPart(partID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warnw("part read failed", "id", partID, "err", err)
		}
		return nil
	}
	return p
}

// SuppliersForPart lists one part's supplier quotes.
func (s *Service) SuppliersForPart(partID int64) []store.Supplier {
	suppliers, err := s.db.ListSuppliersForPart(partID)
	if err != nil {
		s.log.Warnw("supplier list read failed", "part", partID, "err", err)
		return nil
	}
	return suppliers
}

// PartsPage returns one page of parts plus the total row count.
func (s *Service) PartsPage(page, pageSize int) ([]store.Part, int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	parts, err := s.db.ListPartsPage(pageSize, page*pageSize)
	if err != nil {
		s.log.Warnw("part page read failed", "err", err)
		return nil, 0
	}
	total, err := s.db.CountParts()
	if err != nil {
		total = len(parts)
	}
	return parts, total
}
