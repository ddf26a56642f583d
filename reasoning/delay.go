package reasoning

import (
	"fmt"

	"github.com/pesio-ai/be-p2p-core/document"
	"github.com/pesio-ai/be-p2p-core/knowledge"
)

// Delay prediction weights and thresholds.
const (
	delayHighAmountThreshold = 10_000.0
	delayHighAmountPoints    = 30
	delayManyApproversCount  = 3
	delayManyApproversPoints = 20
	delayVendorBlockedPoints = 25
	delayReportThreshold     = 30
	delayHighRiskThreshold   = 60
)

// DelayPrediction flags a pending document likely to face approval delays.
// This is a forward-looking heuristic, not a guarantee.
type DelayPrediction struct {
	DocumentID       string
	DocumentType     knowledge.NodeType
	Amount           float64
	DelayRiskScore   int
	RiskLevel        string
	Factors          []string
	PendingApprovers int
}

// PredictApprovalDelays scores every PO and invoice in Pending Approval.
// High amounts, long approver chains, and vendors with blocked documents
// accumulate points; only documents at or above the report threshold are
// returned.
func (e *Engine) PredictApprovalDelays(g *knowledge.Graph) []DelayPrediction {
	e.log.Debug().Msg("Running approval delay prediction")
	var predictions []DelayPrediction

	pending := make([]*knowledge.Node, 0)
	for _, node := range g.NodesOfType(knowledge.NodePurchaseOrder) {
		if node.Status == document.StatusPendingApproval {
			pending = append(pending, node)
		}
	}
	for _, node := range g.NodesOfType(knowledge.NodeInvoice) {
		if node.Status == document.StatusPendingApproval {
			pending = append(pending, node)
		}
	}

	for _, doc := range pending {
		score := 0
		var factors []string

		pendingApprovers := 0
		vendorID := ""
		for _, edge := range g.OutEdges(doc.ID) {
			switch edge.Relation {
			case knowledge.RelRequiresApproval:
				if edge.Status == document.StatusPending {
					pendingApprovers++
				}
			case knowledge.RelFromVendor:
				if vendorID == "" {
					vendorID = edge.To
				}
			}
		}

		if doc.Amount > delayHighAmountThreshold {
			score += delayHighAmountPoints
			factors = append(factors, "High amount requiring executive approval")
		}

		if pendingApprovers >= delayManyApproversCount {
			score += delayManyApproversPoints
			factors = append(factors, fmt.Sprintf("%d approvers required", pendingApprovers))
		}

		if vendorID != "" {
			if blocked := blockedDocuments(g, vendorID); len(blocked) > 0 {
				score += delayVendorBlockedPoints
				factors = append(factors, fmt.Sprintf("Vendor has %d blocked documents", len(blocked)))
			}
		}

		if score < delayReportThreshold {
			continue
		}

		level := RiskMedium
		if score >= delayHighRiskThreshold {
			level = RiskHigh
		}

		predictions = append(predictions, DelayPrediction{
			DocumentID:       doc.ID,
			DocumentType:     doc.Type,
			Amount:           doc.Amount,
			DelayRiskScore:   score,
			RiskLevel:        level,
			Factors:          factors,
			PendingApprovers: pendingApprovers,
		})
	}

	return predictions
}
