package inventory

import (
	"testing"

	"partsdesk/store"
)

func TestUndoPartDelete(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	mustAddVehicle(t, s, "5551234", "ABC1234")

	id, err := s.AddPart("ABC1234", "5551234", PartInput{Name: "Radiator", Number: "R-100", Quantity: 2, Notes: "rear"},
		[]SupplierInput{{Name: "EuroParts", BuyingPrice: 100, SellingPrice: 150, DeliveryTime: "7"}}, "tester")
	if err != nil {
		t.Fatalf("add part: %v", err)
	}

	snap, err := s.SnapshotPart(id)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, err := s.DeletePart(id, "tester"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.PartDetails(id) != nil {
		t.Fatal("part should be gone")
	}

	if err := s.Restore(snap, "tester"); err != nil {
		t.Fatalf("restore: %v", err)
	}

	parts := s.PartsForVehicle("ABC1234")
	if len(parts) != 1 {
		t.Fatalf("parts after undo = %d, want 1", len(parts))
	}
	p := parts[0]
	if p.PartName != "Radiator" || p.PartNumber != "R-100" || p.Quantity != 2 || p.Notes != "rear" {
		t.Errorf("restored part = %+v", p)
	}
	// New surrogate id, same content.
	if p.ID == id {
		t.Error("restored part should get a new id")
	}
	suppliers := s.SuppliersForPart(p.ID)
	if len(suppliers) != 1 || suppliers[0].SupplierName != "EuroParts" || suppliers[0].SellingPrice != 150 {
		t.Errorf("restored suppliers = %+v", suppliers)
	}
}

func TestUndoVehicleDeleteRestoresTree(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	if err := s.AddVehicle("5551234", "ABC1234", VehicleInput{Model: "320i", ProductionYear: "2014"}, "tester"); err != nil {
		t.Fatalf("add vehicle: %v", err)
	}
	for _, name := range []string{"Radiator", "Mirror"} {
		if _, err := s.AddPart("ABC1234", "5551234", PartInput{Name: name},
			[]SupplierInput{{Name: "EuroParts", SellingPrice: 50}}, "tester"); err != nil {
			t.Fatalf("add part %s: %v", name, err)
		}
	}

	snap, err := s.SnapshotVehicle("ABC1234", "5551234")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, err := s.DeleteVehicle("ABC1234", "5551234", "tester"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := s.Restore(snap, "tester"); err != nil {
		t.Fatalf("restore: %v", err)
	}

	v := s.VehicleDetails("ABC1234")
	if v == nil || v.Model != "320i" || v.ProductionYear != "2014" {
		t.Fatalf("restored vehicle = %+v", v)
	}
	parts := s.PartsForVehicle("ABC1234")
	if len(parts) != 2 {
		t.Fatalf("restored parts = %d, want 2", len(parts))
	}
	for _, p := range parts {
		if len(s.SuppliersForPart(p.ID)) != 1 {
			t.Errorf("part %s should have one restored supplier", p.PartName)
		}
	}
}

func TestUndoPlaceholderVehicle(t *testing.T) {
	s := testService(t)
	mustAddClient(t, s, "5551234", "Alice")
	if err := s.AddVehicle("5551234", "", VehicleInput{}, "tester"); err != nil {
		t.Fatalf("add placeholder: %v", err)
	}
	if _, err := s.AddPart("", "5551234", PartInput{Name: "Bolt"}, nil, "tester"); err != nil {
		t.Fatalf("add part: %v", err)
	}

	snap, err := s.SnapshotVehicle("", "5551234")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, err := s.DeleteVehicle("", "5551234", "tester"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Restore(snap, "tester"); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if len(s.VehiclesForClient("5551234")) != 1 {
		t.Error("placeholder bucket should be back")
	}
	if len(s.PartsWithoutVIN("5551234")) != 1 {
		t.Error("no-VIN part should be back")
	}
}

func TestRestoreNil(t *testing.T) {
	s := testService(t)
	if err := s.Restore(nil, "tester"); !isValidation(err) {
		t.Errorf("restore nil: err = %v, want validation error", err)
	}
}

func TestDeletionLabel(t *testing.T) {
	vin := "ABC1234"
	d := &Deletion{Kind: DeletionVehicle, Vehicle: &VehicleSnapshot{Vehicle: store.Vehicle{VIN: &vin}}}
	if got := d.Label(); got != "A VIN was deleted: ABC1234" {
		t.Errorf("Label = %q", got)
	}
}
