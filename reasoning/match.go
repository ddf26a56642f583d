package reasoning

import (
	"fmt"
	"math"

	"github.com/pesio-ai/be-p2p-core/document"
	"github.com/pesio-ai/be-p2p-core/knowledge"
)

// matchVarianceTolerance is the allowed relative difference between invoice
// and PO amounts.
const matchVarianceTolerance = 0.05

// MatchIssue is one three-way-match finding. An invoice can accumulate
// several issues.
type MatchIssue struct {
	InvoiceID   string
	POID        string
	GRID        string
	Issue       string
	Severity    Severity
	VariancePct float64
}

// DetectThreeWayMatchIssues validates every invoice against its PO and GR
// references: a missing reference is HIGH severity, an amount variance above
// 5% is MEDIUM, and a GR that was never accepted is HIGH. A zero-amount PO
// short-circuits the variance check rather than dividing by zero.
func (e *Engine) DetectThreeWayMatchIssues(g *knowledge.Graph) []MatchIssue {
	e.log.Debug().Msg("Running three-way match validation")
	var issues []MatchIssue

	for _, inv := range g.NodesOfType(knowledge.NodeInvoice) {
		var poID, grID string
		for _, edge := range g.OutEdges(inv.ID) {
			switch edge.Relation {
			case knowledge.RelReferencesPO:
				if poID == "" {
					poID = edge.To
				}
			case knowledge.RelReferencesGR:
				if grID == "" {
					grID = edge.To
				}
			}
		}

		if poID == "" || grID == "" {
			issues = append(issues, MatchIssue{
				InvoiceID: inv.ID,
				Issue:     "Missing PO or GR reference",
				Severity:  SeverityHigh,
			})
			continue
		}

		po := g.Node(poID)
		gr := g.Node(grID)

		if po.Amount != 0 && math.Abs(inv.Amount-po.Amount)/po.Amount > matchVarianceTolerance {
			issues = append(issues, MatchIssue{
				InvoiceID:   inv.ID,
				POID:        poID,
				Issue:       fmt.Sprintf("Invoice amount $%.2f differs from PO $%.2f", inv.Amount, po.Amount),
				Severity:    SeverityMedium,
				VariancePct: math.Abs(inv.Amount-po.Amount) / po.Amount * 100,
			})
		}

		if gr.Status != document.StatusAccepted {
			issues = append(issues, MatchIssue{
				InvoiceID: inv.ID,
				GRID:      grID,
				Issue:     fmt.Sprintf("GR not accepted (status: %s)", gr.Status),
				Severity:  SeverityHigh,
			})
		}
	}

	return issues
}
