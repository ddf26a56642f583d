package reasoning

import (
	"github.com/pesio-ai/be-p2p-core/knowledge"
	"github.com/pesio-ai/be-p2p-core/workflow"
)

// GraphStats summarizes the graph a report was produced from.
type GraphStats struct {
	TotalNodes    int
	TotalEdges    int
	TotalVendors  int
	TotalPOs      int
	TotalInvoices int
}

// Report bundles all reasoning results. It is the single surface surrounding
// systems should consume; they must not reach into graph internals.
type Report struct {
	FraudPatterns              []FraudPattern
	VendorRisks                map[string]VendorRisk
	ThreeWayMatchIssues        []MatchIssue
	ApprovalDelays             []DelayPrediction
	ConsolidationOpportunities []ConsolidationOpportunity
	GraphStats                 GraphStats
}

// GenerateComprehensiveReport builds a fresh graph from current workflow
// state and runs every analysis against it.
func (e *Engine) GenerateComprehensiveReport(w *workflow.Engine) *Report {
	g := e.builder.Build(w)

	report := &Report{
		FraudPatterns:              e.DetectFraudPatterns(g),
		VendorRisks:                e.CalculateVendorRiskScores(g),
		ThreeWayMatchIssues:        e.DetectThreeWayMatchIssues(g),
		ApprovalDelays:             e.PredictApprovalDelays(g),
		ConsolidationOpportunities: e.FindConsolidationOpportunities(g),
		GraphStats: GraphStats{
			TotalNodes:    g.NodeCount(),
			TotalEdges:    g.EdgeCount(),
			TotalVendors:  g.CountOfType(knowledge.NodeVendor),
			TotalPOs:      g.CountOfType(knowledge.NodePurchaseOrder),
			TotalInvoices: g.CountOfType(knowledge.NodeInvoice),
		},
	}

	e.log.Info().
		Int("fraud_patterns", len(report.FraudPatterns)).
		Int("match_issues", len(report.ThreeWayMatchIssues)).
		Int("approval_delays", len(report.ApprovalDelays)).
		Msg("Comprehensive reasoning report generated")
	return report
}
