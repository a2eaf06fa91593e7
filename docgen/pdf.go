// Package docgen renders quote and invoice PDFs from a client and
// parts snapshot.
package docgen

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"partsdesk/config"
)

const (
	TypeQuote   = "quote"
	TypeInvoice = "invoice"

	// InStock is the delivery-time sentinel for on-hand parts.
	InStock = "IN STOCK"
)

// LineItem is one row of the parts table.
type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Party is a bill-to or ship-to block.
type Party struct {
	Name    string
	Address string
}

// Document is the full snapshot a quote or invoice renders from.
type Document struct {
	Type         string // TypeQuote or TypeInvoice
	Number       string
	ClientName   string
	ClientPhone  string
	VIN          string // optional; printed below the address blocks
	BillTo       *Party
	ShipTo       *Party
	Items        []LineItem
	Deposit      decimal.Decimal
	DeliveryTime string
}

// Total sums quantity times unit price over all items.
func (d *Document) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// NewNumber generates a document number like Q-20060102-1a2b3c4d.
func NewNumber(docType string) string {
	prefix := "Q"
	if docType == TypeInvoice {
		prefix = "INV"
	}
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), uuid.NewString()[:8])
}

const termsText = "No returns accepted after 7 days from invoice date. " +
	"ALL Special Orders must be paid for in advance. " +
	"A 20% Restocking Fee and Credit Card Fee applies to returned items. " +
	"No return/refund on all special order items Electrical, electronic parts and fuel pumps, warranty is against the manufacture. " +
	"Any charges incurred by this company in the recovery of any unpaid invoice balance on account or dishonoured cheque will be at the buyer's expense. " +
	"The seller shall retain absolute title ownership and right to possession of the goods until full payment is received. " +
	"A 2% finance charge for all account balances over 30 days. " +
	"Shipping delays subject to airline, customs or natural disasters are not the responsibility of the seller."

// Render produces the PDF bytes for a document under the given
// company letterhead.
func Render(company config.CompanyConfig, doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Letterhead
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(200, 8, company.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(200, 4, company.DistributorLine, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(200, 4, company.AddressLine1, "", 1, "C", false, 0, "")
	pdf.CellFormat(200, 4, company.AddressLine2, "", 1, "C", false, 0, "")
	for _, specialty := range company.Specialties {
		pdf.CellFormat(200, 4, specialty, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(200, 4, "Phones: "+strings.Join(company.Phones, " / "), "", 1, "C", false, 0, "")
	pdf.CellFormat(200, 4, "Email: "+company.Email, "", 1, "C", false, 0, "")
	pdf.CellFormat(200, 4, "Website: "+company.Website, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Title, number, date
	title, numberLabel := "QUOTATION", "Quotation Number"
	if doc.Type == TypeInvoice {
		title, numberLabel = "INVOICE", "Invoice Number"
	}
	pdf.SetFont("Arial", "", 16)
	pdf.CellFormat(200, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(200, 10, fmt.Sprintf("%s: %s", numberLabel, doc.Number), "", 1, "R", false, 0, "")
	pdf.CellFormat(200, 10, "Date: "+time.Now().Format("2006-01-02"), "", 1, "R", false, 0, "")
	pdf.Ln(5)

	// Bill to / ship to
	pdf.SetFont("Arial", "B", 12)
	startY := pdf.GetY()
	pdf.CellFormat(100, 10, "Bill to:", "", 0, "L", false, 0, "")
	pdf.SetX(110)
	pdf.CellFormat(100, 10, "Ship to:", "", 1, "L", false, 0, "")

	billName, billAddress := doc.ClientName, "Phone: "+doc.ClientPhone
	if doc.BillTo != nil {
		if doc.BillTo.Name != "" {
			billName = doc.BillTo.Name
		}
		if doc.BillTo.Address != "" {
			billAddress = doc.BillTo.Address
		}
	}
	var shipName, shipAddress string
	if doc.ShipTo != nil {
		shipName, shipAddress = doc.ShipTo.Name, doc.ShipTo.Address
	}

	pdf.SetFont("Arial", "", 12)
	pdf.SetY(startY + 10)
	pdf.CellFormat(100, 5, billName, "", 0, "L", false, 0, "")
	pdf.SetX(110)
	pdf.CellFormat(100, 5, shipName, "", 1, "L", false, 0, "")
	for _, line := range strings.Split(billAddress, "\n") {
		pdf.SetX(10)
		pdf.CellFormat(100, 5, line, "", 1, "L", false, 0, "")
	}
	if shipAddress != "" {
		pdf.SetXY(110, startY+15)
		for _, line := range strings.Split(shipAddress, "\n") {
			pdf.SetX(110)
			pdf.CellFormat(100, 5, line, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(5)
	if doc.VIN != "" {
		pdf.CellFormat(100, 5, "VIN: "+doc.VIN, "", 1, "L", false, 0, "")
		pdf.Ln(5)
	}
	pdf.Ln(5)

	// Parts table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(80, 10, "Part Name", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 10, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 10, "Unit Price ($)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 10, "Total Price ($)", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	for _, it := range doc.Items {
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		pdf.CellFormat(80, 10, it.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 10, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 10, it.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 10, lineTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	total := doc.Total()
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 10, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 10, total.StringFixed(2), "1", 1, "R", false, 0, "")
	if doc.Deposit.IsPositive() {
		pdf.CellFormat(150, 10, "DEPOSIT", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 10, doc.Deposit.StringFixed(2), "1", 1, "R", false, 0, "")
		pdf.CellFormat(150, 10, "BALANCE DUE", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 10, total.Sub(doc.Deposit).StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// Delivery and terms
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	if doc.DeliveryTime == InStock {
		pdf.CellFormat(200, 5, "* IN STOCK - Available for immediate pickup/shipment", "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(200, 5,
			fmt.Sprintf("* DELIVERY WITHIN %s BUSINESS DAYS AFTER ORDER CONFIRMATION", doc.DeliveryTime),
			"", 1, "L", false, 0, "")
	}
	pdf.CellFormat(200, 5, "* An 80% Deposit required upon Order Confirmation", "", 1, "L", false, 0, "")
	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(200, 5, "TERMS OF SALE:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.MultiCell(0, 4, termsText, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
