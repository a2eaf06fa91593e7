package inventory

import (
	"fmt"

	"partsdesk/store"
)

// PartWithSuppliers bundles a part with its supplier quotes for quote
// generation and per-client export.
type PartWithSuppliers struct {
	store.Part
	Suppliers []store.Supplier `json:"suppliers"`
}

// ClientSnapshot is everything known about one client, assembled for
// export and document flows.
type ClientSnapshot struct {
	Client   *store.Client       `json:"client"`
	Vehicles []store.Vehicle     `json:"vehicles"`
	Parts    []PartWithSuppliers `json:"parts"`
}

// ClientSnapshotFor assembles a client's vehicles and parts (with
// suppliers) or returns nil when the client does not exist.
func (s *Service) ClientSnapshotFor(phone string) *ClientSnapshot {
	client := s.ClientByPhone(phone)
	if client == nil {
		return nil
	}
	snap := &ClientSnapshot{
		Client:   client,
		Vehicles: s.VehiclesForClient(phone),
	}
	parts, err := s.db.ListPartsForClient(phone)
	if err != nil {
		s.log.Warnw("client parts read failed", "phone", phone, "err", err)
	}
	for _, p := range parts {
		snap.Parts = append(snap.Parts, PartWithSuppliers{Part: p, Suppliers: s.SuppliersForPart(p.ID)})
	}
	return snap
}

// QuoteData is the snapshot a quote or invoice renders from.
type QuoteData struct {
	Client  *store.Client       `json:"client"`
	Vehicle *store.Vehicle      `json:"vehicle,omitempty"`
	Parts   []PartWithSuppliers `json:"parts"`
}

// QuoteDataFor gathers the client, an optionally selected vehicle, and
// the selected parts with their supplier quotes. Returns nil when the
// client does not exist; parts that vanished since selection are
// skipped.
func (s *Service) QuoteDataFor(phone, selectedVIN string, partIDs []int64) *QuoteData {
	client := s.ClientByPhone(phone)
	if client == nil {
		return nil
	}
	q := &QuoteData{Client: client}
	if selectedVIN != "" {
		q.Vehicle = s.VehicleDetails(selectedVIN)
	}
	for _, id := range partIDs {
		p := s.PartDetails(id)
		if p == nil {
			continue
		}
		q.Parts = append(q.Parts, PartWithSuppliers{Part: *p, Suppliers: s.SuppliersForPart(id)})
	}
	return q
}

// LogDocument records a generated quote or invoice in the audit log.
func (s *Service) LogDocument(username, docType, number, clientPhone string) {
	s.logActivity(username, "generate_"+docType,
		fmt.Sprintf("Generated %s %s for client %s", docType, number, clientPhone),
		"clients", clientPhone, nil, map[string]string{"number": number})
}
