package www

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"partsdesk/docgen"
	"partsdesk/inventory"
)

type documentItem struct {
	PartID    int64    `json:"part_id"`
	Quantity  int      `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
}

type documentRequest struct {
	Type         string         `json:"type"`
	Number       string         `json:"number"`
	ClientPhone  string         `json:"client_phone"`
	VINNumber    string         `json:"vin_number"`
	Items        []documentItem `json:"items"`
	Deposit      float64        `json:"deposit"`
	DeliveryTime string         `json:"delivery_time"`
	BillTo       *docgen.Party  `json:"bill_to"`
	ShipTo       *docgen.Party  `json:"ship_to"`
}

// apiGenerateDocument renders a quote or invoice PDF for selected
// parts. An item without an explicit unit price takes the highest
// selling price among the part's supplier quotes.
func (h *Handlers) apiGenerateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type != docgen.TypeQuote && req.Type != docgen.TypeInvoice {
		respondError(w, http.StatusBadRequest, "type must be quote or invoice")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "at least one item is required")
		return
	}

	partIDs := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		partIDs = append(partIDs, it.PartID)
	}
	data := h.inv.QuoteDataFor(req.ClientPhone, req.VINNumber, partIDs)
	if data == nil {
		respondError(w, http.StatusNotFound, "client not found")
		return
	}

	byID := make(map[int64]inventory.PartWithSuppliers, len(data.Parts))
	for _, p := range data.Parts {
		byID[p.ID] = p
	}

	doc := docgen.Document{
		Type:         req.Type,
		Number:       req.Number,
		ClientName:   data.Client.Name,
		ClientPhone:  data.Client.Phone,
		BillTo:       req.BillTo,
		ShipTo:       req.ShipTo,
		Deposit:      decimal.NewFromFloat(req.Deposit),
		DeliveryTime: req.DeliveryTime,
	}
	if doc.Number == "" {
		doc.Number = docgen.NewNumber(req.Type)
	}
	if data.Vehicle != nil && data.Vehicle.VIN != nil {
		doc.VIN = *data.Vehicle.VIN
	}

	for _, it := range req.Items {
		p, ok := byID[it.PartID]
		if !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("part %d not found", it.PartID))
			return
		}
		name := p.PartName
		if name == "" {
			name = p.PartNumber
		}
		qty := it.Quantity
		if qty < 1 {
			qty = p.Quantity
		}
		price := decimal.Zero
		if it.UnitPrice != nil {
			price = decimal.NewFromFloat(*it.UnitPrice)
		} else {
			for _, sup := range p.Suppliers {
				if sp := decimal.NewFromFloat(sup.SellingPrice); sp.GreaterThan(price) {
					price = sp
				}
			}
		}
		doc.Items = append(doc.Items, docgen.LineItem{Name: name, Quantity: qty, UnitPrice: price})
	}

	pdf, err := docgen.Render(h.cfg.Company, doc)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	info := sessionFrom(r.Context())
	h.inv.LogDocument(info.Username, req.Type, doc.Number, req.ClientPhone)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", doc.Number))
	w.Write(pdf)
}
