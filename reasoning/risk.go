package reasoning

import (
	"fmt"

	"github.com/pesio-ai/be-p2p-core/knowledge"
)

// Risk score weights.
const (
	riskPerBlockedDocument = 20
	riskPerRejectedReceipt = 30
	riskPerOverdueInvoice  = 15
	highVolumeBonus        = 10
	highVolumeThreshold    = 5
)

// VendorRisk is the additive risk assessment for one vendor.
type VendorRisk struct {
	VendorName       string
	RiskScore        int
	RiskLevel        string
	Factors          []string
	TransactionCount int
}

// CalculateVendorRiskScores scores every vendor. Blocked documents, rejected
// goods receipts, and overdue invoices add points; high transaction volume
// subtracts only when no other points accrued, so volume alone can never
// create risk. The stored score is floored at zero.
func (e *Engine) CalculateVendorRiskScores(g *knowledge.Graph) map[string]VendorRisk {
	e.log.Debug().Msg("Running vendor risk assessment")
	risks := make(map[string]VendorRisk)

	for _, vendor := range g.NodesOfType(knowledge.NodeVendor) {
		score := 0
		var factors []string

		if blocked := blockedDocuments(g, vendor.ID); len(blocked) > 0 {
			points := len(blocked) * riskPerBlockedDocument
			score += points
			factors = append(factors, fmt.Sprintf("Blocked documents: +%d", points))
		}

		if rejected := rejectedReceipts(g, vendor.ID); len(rejected) > 0 {
			points := len(rejected) * riskPerRejectedReceipt
			score += points
			factors = append(factors, fmt.Sprintf("Quality rejections: +%d", points))
		}

		if overdue := overdueInvoices(g, vendor.ID); len(overdue) > 0 {
			points := len(overdue) * riskPerOverdueInvoice
			score += points
			factors = append(factors, fmt.Sprintf("Overdue invoices: +%d", points))
		}

		transactionCount := len(vendorPOs(g, vendor.ID))
		if transactionCount > highVolumeThreshold && score == 0 {
			score -= highVolumeBonus
			factors = append(factors, fmt.Sprintf("High transaction volume: -%d", highVolumeBonus))
		}

		level := RiskLow
		switch {
		case score >= 60:
			level = RiskHigh
		case score >= 30:
			level = RiskMedium
		}

		if score < 0 {
			score = 0
		}

		risks[vendor.ID] = VendorRisk{
			VendorName:       vendor.Name,
			RiskScore:        score,
			RiskLevel:        level,
			Factors:          factors,
			TransactionCount: transactionCount,
		}
	}

	return risks
}
