package reasoning

import (
	"fmt"

	"github.com/pesio-ai/be-p2p-core/knowledge"
)

// Fraud pattern types.
const (
	PatternUnusualAmount    = "Unusual Invoice Amount"
	PatternSplitInvoicing   = "Possible Split Invoicing"
	PatternBlockedDocuments = "Multiple Blocked Documents"
)

// Split-invoicing rule parameters.
const (
	splitInvoiceWindowDays = 30
	splitInvoiceMinCount   = 3
	splitInvoiceThreshold  = 10_000.0
)

// FraudPattern is one suspicious finding for a vendor. Only the fields
// relevant to the pattern type are populated.
type FraudPattern struct {
	Type       string
	Severity   Severity
	VendorName string
	Reason     string

	// Unusual amount fields.
	InvoiceID string
	Amount    float64
	Average   float64

	// Split invoicing fields.
	InvoiceCount int
	TotalAmount  float64

	// Blocked document fields.
	BlockedCount int
	Documents    []string
}

// DetectFraudPatterns runs the three fraud rules over every vendor. Rules
// are independent and additive: one vendor can trigger several patterns.
func (e *Engine) DetectFraudPatterns(g *knowledge.Graph) []FraudPattern {
	e.log.Debug().Msg("Running fraud detection analysis")
	var findings []FraudPattern

	vendors := g.NodesOfType(knowledge.NodeVendor)

	// Rule 1: invoices far above the vendor's own mean. Needs at least two
	// invoices to establish a baseline.
	for _, vendor := range vendors {
		invoices := vendorInvoices(g, vendor.ID)
		if len(invoices) < 2 {
			continue
		}

		amounts := make([]float64, 0, len(invoices))
		for _, inv := range invoices {
			amounts = append(amounts, inv.Amount)
		}
		avg := mean(amounts)

		for _, inv := range invoices {
			if inv.Amount <= avg*3 {
				continue
			}
			ratio := 0.0
			if avg > 0 {
				ratio = inv.Amount / avg
			}
			findings = append(findings, FraudPattern{
				Type:       PatternUnusualAmount,
				Severity:   SeverityHigh,
				VendorName: vendor.Name,
				InvoiceID:  inv.ID,
				Amount:     inv.Amount,
				Average:    avg,
				Reason:     fmt.Sprintf("Invoice amount is %.1fx the average", ratio),
			})
		}
	}

	// Rule 2: several small invoices in a short window summing past the
	// approval threshold.
	cutoff := e.now().AddDate(0, 0, -splitInvoiceWindowDays)
	for _, vendor := range vendors {
		recent := recentInvoices(g, vendor.ID, cutoff)
		if len(recent) < splitInvoiceMinCount {
			continue
		}

		var total float64
		for _, inv := range recent {
			total += inv.Amount
		}
		if total <= splitInvoiceThreshold {
			continue
		}

		findings = append(findings, FraudPattern{
			Type:         PatternSplitInvoicing,
			Severity:     SeverityMedium,
			VendorName:   vendor.Name,
			InvoiceCount: len(recent),
			TotalAmount:  total,
			Reason:       fmt.Sprintf("%d invoices totaling $%.2f in %d days", len(recent), total, splitInvoiceWindowDays),
		})
	}

	// Rule 3: repeat offenders with multiple blocked documents.
	for _, vendor := range vendors {
		blocked := blockedDocuments(g, vendor.ID)
		if len(blocked) < 2 {
			continue
		}
		findings = append(findings, FraudPattern{
			Type:         PatternBlockedDocuments,
			Severity:     SeverityHigh,
			VendorName:   vendor.Name,
			BlockedCount: len(blocked),
			Documents:    blocked,
			Reason:       fmt.Sprintf("Vendor has %d blocked documents", len(blocked)),
		})
	}

	return findings
}
