package inventory

import (
	"errors"
	"path/filepath"
	"testing"

	"partsdesk/store"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, nil)
}

func isValidation(err error) bool {
	var verr ValidationError
	return errors.As(err, &verr)
}

func TestAddClientValidation(t *testing.T) {
	s := testService(t)

	if err := s.AddClient("", "Alice", "tester"); !isValidation(err) {
		t.Errorf("empty phone: err = %v, want validation error", err)
	}
	if err := s.AddClient("abc", "Alice", "tester"); !isValidation(err) {
		t.Errorf("bad phone: err = %v, want validation error", err)
	}
	if err := s.AddClient("5551234", "Alice", "tester"); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Duplicate is a validation error, not a constraint crash.
	err := s.AddClient("5551234", "Bob", "tester")
	if !isValidation(err) {
		t.Errorf("duplicate: err = %v, want validation error", err)
	}

	n, _ := s.db.CountActivityFor("add_client")
	if n != 1 {
		t.Errorf("add_client audit entries = %d, want 1", n)
	}
}

func TestUpdateClientRename(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	mustAddVehicle(t, s, "5551234", "ABC1234")

	if err := s.UpdateClient("5551234", "5559999", "Alice B", "tester"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if s.ClientByPhone("5551234") != nil {
		t.Error("old phone should be gone")
	}
	c := s.ClientByPhone("5559999")
	if c == nil || c.Name != "Alice B" {
		t.Fatalf("renamed client = %+v", c)
	}
	vehicles := s.VehiclesForClient("5559999")
	if len(vehicles) != 1 {
		t.Errorf("vehicles after rename = %d, want 1", len(vehicles))
	}

	// Renaming onto an existing client is refused.
	mustAddClient(t, s, "5550000", "Carol")
	if err := s.UpdateClient("5559999", "5550000", "x", "tester"); !isValidation(err) {
		t.Errorf("rename onto existing: err = %v, want validation error", err)
	}
}

func TestAddVehicleRules(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	mustAddClient(t, s, "5555678", "Bob")

	// Unknown client.
	if err := s.AddVehicle("5550000", "ABC1234", VehicleInput{}, "tester"); !isValidation(err) {
		t.Errorf("unknown client: err = %v, want validation error", err)
	}
	// Bad VIN length.
	if err := s.AddVehicle("5551234", "ABC123", VehicleInput{}, "tester"); !isValidation(err) {
		t.Errorf("bad VIN: err = %v, want validation error", err)
	}

	if err := s.AddVehicle("5551234", "abc1234", VehicleInput{Model: "320i"}, "tester"); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Stored normalized.
	if v := s.VehicleDetails("ABC1234"); v == nil || v.Model != "320i" {
		t.Fatalf("vehicle = %+v", s.VehicleDetails("ABC1234"))
	}

	// Same client re-registering the same VIN is a silent no-op.
	if err := s.AddVehicle("5551234", "ABC1234", VehicleInput{Model: "changed"}, "tester"); err != nil {
		t.Errorf("same-client duplicate: err = %v, want nil", err)
	}
	if v := s.VehicleDetails("ABC1234"); v.Model != "320i" {
		t.Errorf("duplicate add must not overwrite, Model = %q", v.Model)
	}

	// Another client claiming the VIN is refused.
	if err := s.AddVehicle("5555678", "ABC1234", VehicleInput{}, "tester"); !isValidation(err) {
		t.Errorf("cross-client VIN: err = %v, want validation error", err)
	}
}

func TestAddVehicleProductionYear(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")

	for _, year := range []string{"199x", "1850", "3000"} {
		err := s.AddVehicle("5551234", "DEF1234", VehicleInput{ProductionYear: year}, "tester")
		if !isValidation(err) {
			t.Errorf("year %q: err = %v, want validation error", year, err)
		}
	}
	// Empty year and a plausible one both pass.
	if err := s.AddVehicle("5551234", "DEF1234", VehicleInput{ProductionYear: "2014"}, "tester"); err != nil {
		t.Errorf("year 2014: %v", err)
	}
	if err := s.AddVehicle("5551234", "GHJ1234", VehicleInput{}, "tester"); err != nil {
		t.Errorf("empty year: %v", err)
	}
}

func TestAddVehiclePlaceholderBucket(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")

	if err := s.AddVehicle("5551234", "", VehicleInput{}, "tester"); err != nil {
		t.Fatalf("add placeholder: %v", err)
	}
	// Second placeholder for the same client is a no-op, not an error.
	if err := s.AddVehicle("5551234", "none", VehicleInput{}, "tester"); err != nil {
		t.Errorf("duplicate placeholder: err = %v, want nil", err)
	}
	vehicles := s.VehiclesForClient("5551234")
	if len(vehicles) != 1 {
		t.Errorf("vehicles = %d, want exactly one placeholder", len(vehicles))
	}
}

func TestUpdateVehicleVINConflict(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	mustAddVehicle(t, s, "5551234", "ABC1234")
	mustAddVehicle(t, s, "5551234", "XYZ9876")

	if _, err := s.UpdateVehicle("ABC1234", "XYZ9876", VehicleInput{}, "tester"); !isValidation(err) {
		t.Errorf("VIN conflict: err = %v, want validation error", err)
	}

	newVIN, err := s.UpdateVehicle("ABC1234", "DEF5555", VehicleInput{Model: "535d"}, "tester")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if newVIN != "DEF5555" {
		t.Errorf("newVIN = %q", newVIN)
	}
	if s.VehicleDetails("ABC1234") != nil {
		t.Error("old VIN should be gone")
	}
}

func TestDeleteVehicleAuditsOnce(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	mustAddVehicle(t, s, "5551234", "ABC1234")
	if _, err := s.AddPart("ABC1234", "5551234", PartInput{Name: "Radiator"},
		[]SupplierInput{{Name: "EuroParts", SellingPrice: 150}}, "tester"); err != nil {
		t.Fatalf("add part: %v", err)
	}

	deleted, err := s.DeleteVehicle("ABC1234", "", "tester")
	if err != nil || deleted != 1 {
		t.Fatalf("delete = (%d, %v), want (1, nil)", deleted, err)
	}

	// Cascaded part/supplier deletes do not get their own entries.
	if n, _ := s.db.CountActivityFor("delete_vin"); n != 1 {
		t.Errorf("delete_vin entries = %d, want 1", n)
	}
	if n, _ := s.db.CountActivityFor("delete_part"); n != 0 {
		t.Errorf("delete_part entries = %d, want 0", n)
	}
}

func TestDeleteVehiclePlaceholderNeedsScope(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	if err := s.AddVehicle("5551234", "", VehicleInput{}, "tester"); err != nil {
		t.Fatalf("add placeholder: %v", err)
	}

	// No client scope: refuse, zero rows, no error.
	deleted, err := s.DeleteVehicle("", "", "tester")
	if err != nil || deleted != 0 {
		t.Errorf("unscoped placeholder delete = (%d, %v), want (0, nil)", deleted, err)
	}
	if len(s.VehiclesForClient("5551234")) != 1 {
		t.Error("placeholder should survive an unscoped delete")
	}

	deleted, err = s.DeleteVehicle("", "5551234", "tester")
	if err != nil || deleted != 1 {
		t.Errorf("scoped placeholder delete = (%d, %v), want (1, nil)", deleted, err)
	}
}

func TestAddPartDefaultsAndValidation(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")

	if _, err := s.AddPart("", "5551234", PartInput{}, nil, "tester"); !isValidation(err) {
		t.Error("part with no name and no number should be rejected")
	}
	if _, err := s.AddPart("", "5551234", PartInput{Name: "Bolt", Quantity: -3}, nil, "tester"); !isValidation(err) {
		t.Error("negative quantity should be rejected")
	}

	// Zero quantity defaults to one.
	id, err := s.AddPart("", "5551234", PartInput{Name: "Bolt"}, nil, "tester")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	p := s.PartDetails(id)
	if p == nil || p.Quantity != 1 {
		t.Errorf("part = %+v, want quantity 1", p)
	}
	if p.VIN != nil {
		t.Errorf("no-VIN part should have nil VIN, got %v", *p.VIN)
	}
}

func TestMovePart(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	mustAddClient(t, s, "5555678", "Bob")
	mustAddVehicle(t, s, "5551234", "ABC1234")
	mustAddVehicle(t, s, "5555678", "XYZ9876")

	id, err := s.AddPart("ABC1234", "5551234", PartInput{Name: "Mirror"}, nil, "tester")
	if err != nil {
		t.Fatalf("add part: %v", err)
	}

	if err := s.MovePart(id, "ZZZ9999", "tester"); !isValidation(err) {
		t.Errorf("move to unknown VIN: err = %v, want validation error", err)
	}

	if err := s.MovePart(id, "XYZ9876", "tester"); err != nil {
		t.Fatalf("move: %v", err)
	}
	p := s.PartDetails(id)
	if p.VIN == nil || *p.VIN != "XYZ9876" {
		t.Errorf("VIN after move = %v", p.VIN)
	}
	// Ownership follows the target vehicle.
	if p.ClientPhone != "5555678" {
		t.Errorf("ClientPhone after move = %q, want 5555678", p.ClientPhone)
	}
}

func TestUpdatePartReplacesSuppliers(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")

	id, err := s.AddPart("", "5551234", PartInput{Name: "Pump"},
		[]SupplierInput{{Name: "A", SellingPrice: 10}, {Name: "B", SellingPrice: 20}}, "tester")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	err = s.UpdatePart(id, PartInput{Name: "Pump", Quantity: 3},
		[]SupplierInput{{Name: "C", SellingPrice: 30}}, "tester")
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	suppliers := s.SuppliersForPart(id)
	if len(suppliers) != 1 || suppliers[0].SupplierName != "C" {
		t.Errorf("suppliers after update = %+v, want single C", suppliers)
	}
	if p := s.PartDetails(id); p.Quantity != 3 {
		t.Errorf("Quantity = %d, want 3", p.Quantity)
	}
}

func TestSearch(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	mustAddVehicle(t, s, "5551234", "ABC1234")
	if _, err := s.AddPart("ABC1234", "5551234", PartInput{Name: "Radiator hose"}, nil, "tester"); err != nil {
		t.Fatalf("add part: %v", err)
	}

	res := s.Search("Radiator")
	if len(res.Parts) != 1 {
		t.Errorf("parts = %d, want 1", len(res.Parts))
	}
	res = s.Search("Alice")
	if len(res.Clients) != 1 {
		t.Errorf("clients = %d, want 1", len(res.Clients))
	}
	res = s.Search("")
	if len(res.Clients)+len(res.Vehicles)+len(res.Parts) != 0 {
		t.Error("empty query should return nothing")
	}
}

func mustAddClient(t *testing.T, s *Service, phone, name string) {
	t.Helper()
	if err := s.AddClient(phone, name, "tester"); err != nil {
		t.Fatalf("add client %s: %v", phone, err)
	}
}

func mustAddVehicle(t *testing.T, s *Service, phone, vin string) {
	t.Helper()
	if err := s.AddVehicle(phone, vin, VehicleInput{}, "tester"); err != nil {
		t.Fatalf("add vehicle %s: %v", vin, err)
	}
}
