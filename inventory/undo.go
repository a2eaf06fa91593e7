package inventory

import (
	"database/sql"
	"errors"
	"fmt"

	"partsdesk/store"
)

// DeletionKind tags which variant a Deletion snapshot carries.
type DeletionKind string

const (
	DeletionVehicle DeletionKind = "vin"
	DeletionPart    DeletionKind = "part"
)

// PartSnapshot is a deleted part with its supplier quotes.
type PartSnapshot struct {
	Part      store.Part       `json:"part"`
	Suppliers []store.Supplier `json:"suppliers"`
}

// VehicleSnapshot is a deleted vehicle with its parts and their quotes.
type VehicleSnapshot struct {
	Vehicle store.Vehicle  `json:"vehicle"`
	Parts   []PartSnapshot `json:"parts"`
}

// Deletion is the transient single-slot undo buffer captured right
// before a vehicle or part delete. It is never persisted; replaying it
// reconstructs the entity through the ordinary create operations, with
// new surrogate ids.
type Deletion struct {
	Kind        DeletionKind     `json:"kind"`
	ClientPhone string           `json:"client_phone"`
	Vehicle     *VehicleSnapshot `json:"vehicle,omitempty"`
	Part        *PartSnapshot    `json:"part,omitempty"`
}

// Label is a short human description for the undo bar.
func (d *Deletion) Label() string {
	switch d.Kind {
	case DeletionVehicle:
		vin := ""
		if d.Vehicle != nil && d.Vehicle.Vehicle.VIN != nil {
			vin = *d.Vehicle.Vehicle.VIN
		}
		return fmt.Sprintf("A VIN was deleted: %s", vin)
	case DeletionPart:
		name := ""
		if d.Part != nil {
			name = d.Part.Part.PartName
		}
		return fmt.Sprintf("A part was deleted: %s", name)
	}
	return "An item was deleted"
}

// SnapshotVehicle captures a vehicle and its direct children for undo.
// Call before DeleteVehicle. Pass an empty vin with a client phone to
// snapshot the client's placeholder bucket.
func (s *Service) SnapshotVehicle(vin, clientPhone string) (*Deletion, error) {
	var v *store.Vehicle
	var err error
	var parts []store.Part

	if isPlaceholderVIN(vin) {
		if clientPhone == "" {
			return nil, invalidf("client phone is required to snapshot a placeholder VIN")
		}
		v, err = s.db.GetPlaceholderVehicle(clientPhone)
		if err == nil {
			parts = s.PartsWithoutVIN(clientPhone)
		}
	} else {
		v, err = s.db.GetVehicle(vin)
		if err == nil {
			parts = s.PartsForVehicle(vin)
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, invalidf("VIN not found")
	} else if err != nil {
		return nil, fmt.Errorf("snapshot vehicle: %w", err)
	}

	snap := &VehicleSnapshot{Vehicle: *v}
	for _, p := range parts {
		snap.Parts = append(snap.Parts, PartSnapshot{Part: p, Suppliers: s.SuppliersForPart(p.ID)})
	}
	return &Deletion{Kind: DeletionVehicle, ClientPhone: v.ClientPhone, Vehicle: snap}, nil
}

// SnapshotPart captures a part and its supplier quotes for undo. Call
// before DeletePart.
func (s *Service) SnapshotPart(partID int64) (*Deletion, error) {
	p, err := s.db.GetPart(partID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, invalidf("part not found")
	} else if err != nil {
		return nil, fmt.Errorf("snapshot part: %w", err)
	}
	return &Deletion{
		Kind:        DeletionPart,
		ClientPhone: p.ClientPhone,
		Part:        &PartSnapshot{Part: *p, Suppliers: s.SuppliersForPart(p.ID)},
	}, nil
}

// Restore replays a deletion snapshot through the ordinary create
// operations. Surrogate ids come out different; supplier quote restores
// are best-effort and individual failures are swallowed so the parent
// entity restore still succeeds.
func (s *Service) Restore(d *Deletion, username string) error {
	if d == nil {
		return invalidf("nothing to undo")
	}
	switch d.Kind {
	case DeletionPart:
		if d.Part == nil {
			return invalidf("empty part snapshot")
		}
		return s.restorePart(d.Part, username)
	case DeletionVehicle:
		if d.Vehicle == nil {
			return invalidf("empty vehicle snapshot")
		}
		v := d.Vehicle.Vehicle
		vin := ""
		if v.VIN != nil {
			vin = *v.VIN
		}
		in := VehicleInput{
			Model:          v.Model,
			ProductionYear: v.ProductionYear,
			Body:           v.Body,
			Engine:         v.Engine,
			Code:           v.Code,
			Transmission:   v.Transmission,
		}
		if err := s.AddVehicle(d.ClientPhone, vin, in, username); err != nil {
			return err
		}
		for i := range d.Vehicle.Parts {
			if err := s.restorePart(&d.Vehicle.Parts[i], username); err != nil {
				s.log.Warnw("undo: part restore failed", "part", d.Vehicle.Parts[i].Part.PartName, "err", err)
			}
		}
		return nil
	}
	return invalidf("unknown deletion kind %q", d.Kind)
}

func (s *Service) restorePart(ps *PartSnapshot, username string) error {
	vin := ""
	if ps.Part.VIN != nil {
		vin = *ps.Part.VIN
	}
	in := PartInput{
		Name:     ps.Part.PartName,
		Number:   ps.Part.PartNumber,
		Quantity: ps.Part.Quantity,
		Notes:    ps.Part.Notes,
	}
	newID, err := s.AddPart(vin, ps.Part.ClientPhone, in, nil, username)
	if err != nil {
		return err
	}
	for _, sup := range ps.Suppliers {
		_, err := s.AddSupplier(newID, SupplierInput{
			Name:         sup.SupplierName,
			BuyingPrice:  sup.BuyingPrice,
			SellingPrice: sup.SellingPrice,
			DeliveryTime: sup.DeliveryTime,
		}, username)
		if err != nil {
			s.log.Warnw("undo: supplier restore failed", "supplier", sup.SupplierName, "err", err)
		}
	}
	return nil
}
