package reasoning

import (
	"fmt"
	"sort"

	"github.com/pesio-ai/be-p2p-core/document"
	"github.com/pesio-ai/be-p2p-core/knowledge"
)

// consolidationMinVendors is the vendor count at which a category is worth
// consolidating.
const consolidationMinVendors = 3

// VendorSpend summarizes one vendor's share of a category opportunity.
type VendorSpend struct {
	Name             string
	Spend            float64
	TransactionCount int
}

// ConsolidationOpportunity reports a category supplied by enough vendors to
// consider consolidation.
type ConsolidationOpportunity struct {
	Category       string
	VendorCount    int
	TotalSpend     float64
	Vendors        map[string]VendorSpend
	Recommendation string
}

// FindConsolidationOpportunities reports every inferred category with at
// least three distinct supplying vendors, with aggregate PO spend per vendor.
func (e *Engine) FindConsolidationOpportunities(g *knowledge.Graph) []ConsolidationOpportunity {
	e.log.Debug().Msg("Running vendor consolidation analysis")
	var opportunities []ConsolidationOpportunity

	for _, category := range g.NodesOfType(knowledge.NodeCategory) {
		vendorIDs := make(map[string]struct{})
		for _, edge := range g.InEdges(category.ID) {
			if edge.Relation != knowledge.RelBelongsToCategory {
				continue
			}
			for _, itemEdge := range g.OutEdges(edge.From) {
				if itemEdge.Relation == knowledge.RelSuppliedBy {
					vendorIDs[itemEdge.To] = struct{}{}
				}
			}
		}

		if len(vendorIDs) < consolidationMinVendors {
			continue
		}

		vendors := make(map[string]VendorSpend, len(vendorIDs))
		var totalSpend float64
		for vendorID := range vendorIDs {
			pos := vendorPOs(g, vendorID)
			var spend float64
			for _, po := range pos {
				spend += po.Amount
			}
			name := ""
			if node := g.Node(vendorID); node != nil {
				name = node.Name
			}
			vendors[vendorID] = VendorSpend{
				Name:             name,
				Spend:            spend,
				TransactionCount: len(pos),
			}
			totalSpend += spend
		}

		opportunities = append(opportunities, ConsolidationOpportunity{
			Category:       category.Name,
			VendorCount:    len(vendorIDs),
			TotalSpend:     totalSpend,
			Vendors:        vendors,
			Recommendation: fmt.Sprintf("Consider consolidating %d vendors for %s", len(vendorIDs), category.Name),
		})
	}

	return opportunities
}

// VendorRecommendation ranks one vendor for a category.
type VendorRecommendation struct {
	VendorID         string
	VendorName       string
	AvgPrice         float64
	RiskScore        int
	RiskLevel        string
	QualityIssues    int
	BlockedCount     int
	TransactionCount int
}

// RecommendVendors ranks the vendors supplying a category by risk score,
// then average unit price — safety is prioritized over cost. When
// excludeHighRisk is set, vendors with a risk score of 60 or more are
// dropped. An unknown category yields an empty list.
func (e *Engine) RecommendVendors(g *knowledge.Graph, category string, excludeHighRisk bool) []VendorRecommendation {
	e.log.Debug().Str("category", category).Msg("Running vendor recommendation")

	if !g.HasNode("CAT_" + category) {
		return nil
	}

	type performance struct {
		prices        []float64
		qualityIssues int
		blocked       int
	}
	perf := make(map[string]*performance)

	for _, item := range g.NodesOfType(knowledge.NodeLineItem) {
		if item.Category != category {
			continue
		}

		vendorID := ""
		poID := ""
		for _, edge := range g.OutEdges(item.ID) {
			if edge.Relation == knowledge.RelSuppliedBy && vendorID == "" {
				vendorID = edge.To
			}
		}
		for _, edge := range g.InEdges(item.ID) {
			if edge.Relation == knowledge.RelContains && poID == "" {
				poID = edge.From
			}
		}
		if vendorID == "" {
			continue
		}

		p, ok := perf[vendorID]
		if !ok {
			p = &performance{}
			perf[vendorID] = p
		}
		p.prices = append(p.prices, item.UnitPrice)

		if poID != "" {
			for _, gr := range receiptsForPO(g, poID) {
				if gr.Status == document.StatusRejected {
					p.qualityIssues++
				}
				if gr.Blocked {
					p.blocked++
				}
			}
		}
	}

	risks := e.CalculateVendorRiskScores(g)

	recommendations := make([]VendorRecommendation, 0, len(perf))
	for vendorID, p := range perf {
		if len(p.prices) == 0 {
			continue
		}

		riskScore := 0
		riskLevel := RiskUnknown
		if risk, ok := risks[vendorID]; ok {
			riskScore = risk.RiskScore
			riskLevel = risk.RiskLevel
		}

		if excludeHighRisk && riskScore >= delayHighRiskThreshold {
			continue
		}

		name := ""
		if node := g.Node(vendorID); node != nil {
			name = node.Name
		}

		recommendations = append(recommendations, VendorRecommendation{
			VendorID:         vendorID,
			VendorName:       name,
			AvgPrice:         mean(p.prices),
			RiskScore:        riskScore,
			RiskLevel:        riskLevel,
			QualityIssues:    p.qualityIssues,
			BlockedCount:     p.blocked,
			TransactionCount: len(vendorPOs(g, vendorID)),
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].RiskScore != recommendations[j].RiskScore {
			return recommendations[i].RiskScore < recommendations[j].RiskScore
		}
		return recommendations[i].AvgPrice < recommendations[j].AvgPrice
	})

	return recommendations
}
