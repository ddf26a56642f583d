package reasoning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-p2p-core/document"
	"github.com/pesio-ai/be-p2p-core/knowledge"
	"github.com/pesio-ai/be-p2p-core/logger"
	"github.com/pesio-ai/be-p2p-core/workflow"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return testNow }))
}

// ── Graph fixture helpers ────────────────────────────────────────────────────

func addVendor(g *knowledge.Graph, id, name string) {
	g.AddNode(&knowledge.Node{ID: id, Type: knowledge.NodeVendor, Name: name})
}

func addPO(g *knowledge.Graph, id, vendorID string, amount float64, status document.Status) {
	g.AddNode(&knowledge.Node{
		ID:      id,
		Type:    knowledge.NodePurchaseOrder,
		Amount:  amount,
		Status:  status,
		Blocked: status == document.StatusBlocked,
	})
	g.AddEdge(&knowledge.Edge{From: id, To: vendorID, Relation: knowledge.RelFromVendor})
}

func addInvoice(g *knowledge.Graph, id, vendorID string, amount float64, date time.Time, status document.Status) {
	g.AddNode(&knowledge.Node{
		ID:      id,
		Type:    knowledge.NodeInvoice,
		Amount:  amount,
		Date:    date,
		Status:  status,
		Blocked: status == document.StatusBlocked,
	})
	g.AddEdge(&knowledge.Edge{From: id, To: vendorID, Relation: knowledge.RelFromVendor})
}

func addGR(g *knowledge.Graph, id, poID string, status document.Status) {
	g.AddNode(&knowledge.Node{
		ID:      id,
		Type:    knowledge.NodeGoodsReceipt,
		Status:  status,
		Blocked: status == document.StatusBlocked,
	})
	g.AddEdge(&knowledge.Edge{From: id, To: poID, Relation: knowledge.RelValidates})
}

func linkInvoice(g *knowledge.Graph, invID, poID, grID string) {
	if poID != "" {
		g.AddEdge(&knowledge.Edge{From: invID, To: poID, Relation: knowledge.RelReferencesPO})
	}
	if grID != "" {
		g.AddEdge(&knowledge.Edge{From: invID, To: grID, Relation: knowledge.RelReferencesGR})
	}
}

func findPattern(patterns []FraudPattern, patternType string) *FraudPattern {
	for i := range patterns {
		if patterns[i].Type == patternType {
			return &patterns[i]
		}
	}
	return nil
}

// ── Fraud detection ──────────────────────────────────────────────────────────

func TestDetectFraudUnusualInvoiceAmount(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addInvoice(g, "INV-1", "V-001", 100, testNow, document.StatusPaid)
	addInvoice(g, "INV-2", "V-001", 100, testNow, document.StatusPaid)
	addInvoice(g, "INV-3", "V-001", 100, testNow, document.StatusPaid)
	addInvoice(g, "INV-4", "V-001", 2000, testNow, document.StatusPaid)

	patterns := newTestEngine().DetectFraudPatterns(g)

	found := findPattern(patterns, PatternUnusualAmount)
	require.NotNil(t, found)
	assert.Equal(t, SeverityHigh, found.Severity)
	assert.Equal(t, "INV-4", found.InvoiceID)
	assert.InDelta(t, 2000, found.Amount, 1e-9)
	assert.InDelta(t, 575, found.Average, 1e-9)
	assert.Equal(t, "Acme Corp", found.VendorName)
}

func TestDetectFraudUnusualAmountNeedsBaseline(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addInvoice(g, "INV-1", "V-001", 1_000_000, testNow, document.StatusPaid)

	patterns := newTestEngine().DetectFraudPatterns(g)
	assert.Nil(t, findPattern(patterns, PatternUnusualAmount))
}

func TestDetectFraudSplitInvoicing(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addInvoice(g, "INV-1", "V-001", 4000, testNow.AddDate(0, 0, -5), document.StatusDraft)
	addInvoice(g, "INV-2", "V-001", 4000, testNow.AddDate(0, 0, -10), document.StatusDraft)
	addInvoice(g, "INV-3", "V-001", 4000, testNow.AddDate(0, 0, -15), document.StatusDraft)
	// Outside the 30-day window: excluded from the total.
	addInvoice(g, "INV-4", "V-001", 4000, testNow.AddDate(0, 0, -45), document.StatusDraft)

	patterns := newTestEngine().DetectFraudPatterns(g)

	found := findPattern(patterns, PatternSplitInvoicing)
	require.NotNil(t, found)
	assert.Equal(t, SeverityMedium, found.Severity)
	assert.Equal(t, 3, found.InvoiceCount)
	assert.InDelta(t, 12000, found.TotalAmount, 1e-9)
}

func TestDetectFraudSplitInvoicingBelowThreshold(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addInvoice(g, "INV-1", "V-001", 3000, testNow.AddDate(0, 0, -5), document.StatusDraft)
	addInvoice(g, "INV-2", "V-001", 3000, testNow.AddDate(0, 0, -10), document.StatusDraft)
	addInvoice(g, "INV-3", "V-001", 3000, testNow.AddDate(0, 0, -15), document.StatusDraft)

	patterns := newTestEngine().DetectFraudPatterns(g)
	assert.Nil(t, findPattern(patterns, PatternSplitInvoicing))
}

func TestDetectFraudMultipleBlockedDocuments(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Shady Ltd")
	addPO(g, "PO-1", "V-001", 500, document.StatusBlocked)
	addInvoice(g, "INV-1", "V-001", 500, testNow, document.StatusBlocked)

	patterns := newTestEngine().DetectFraudPatterns(g)

	found := findPattern(patterns, PatternBlockedDocuments)
	require.NotNil(t, found)
	assert.Equal(t, SeverityHigh, found.Severity)
	assert.Equal(t, 2, found.BlockedCount)
	assert.ElementsMatch(t, []string{"PO-1", "INV-1"}, found.Documents)
}

func TestDetectFraudSingleBlockedDocumentIgnored(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addPO(g, "PO-1", "V-001", 500, document.StatusBlocked)

	patterns := newTestEngine().DetectFraudPatterns(g)
	assert.Nil(t, findPattern(patterns, PatternBlockedDocuments))
}

// ── Vendor risk scoring ──────────────────────────────────────────────────────

func TestVendorRiskScoreAccumulates(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Shady Ltd")
	addPO(g, "PO-1", "V-001", 500, document.StatusBlocked)
	addPO(g, "PO-2", "V-001", 800, document.StatusInProgress)
	addGR(g, "GR-1", "PO-2", document.StatusRejected)
	addInvoice(g, "INV-1", "V-001", 500, testNow, document.StatusOverdue)

	risks := newTestEngine().CalculateVendorRiskScores(g)

	risk, ok := risks["V-001"]
	require.True(t, ok)
	// +20 blocked, +30 rejected GR, +15 overdue = 65.
	assert.Equal(t, 65, risk.RiskScore)
	assert.Equal(t, RiskHigh, risk.RiskLevel)
	assert.Equal(t, 2, risk.TransactionCount)
	assert.Contains(t, risk.Factors, "Blocked documents: +20")
	assert.Contains(t, risk.Factors, "Quality rejections: +30")
	assert.Contains(t, risk.Factors, "Overdue invoices: +15")
}

func TestVendorRiskVolumeBonusFloorsAtZero(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Reliable Inc")
	for i := 0; i < 6; i++ {
		addPO(g, string(rune('A'+i))+"-PO", "V-001", 100, document.StatusCompleted)
	}

	risks := newTestEngine().CalculateVendorRiskScores(g)

	risk := risks["V-001"]
	assert.Equal(t, 0, risk.RiskScore)
	assert.Equal(t, RiskLow, risk.RiskLevel)
	assert.Equal(t, 6, risk.TransactionCount)
	assert.Contains(t, risk.Factors, "High transaction volume: -10")
}

func TestVendorRiskVolumeBonusOnlyWhenClean(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Busy Corp")
	for i := 0; i < 6; i++ {
		addPO(g, string(rune('A'+i))+"-PO", "V-001", 100, document.StatusCompleted)
	}
	addInvoice(g, "INV-1", "V-001", 100, testNow, document.StatusOverdue)

	risk := newTestEngine().CalculateVendorRiskScores(g)["V-001"]
	// Volume cannot offset accrued points: score stays at 15.
	assert.Equal(t, 15, risk.RiskScore)
	assert.Equal(t, RiskLow, risk.RiskLevel)
	assert.NotContains(t, risk.Factors, "High transaction volume: -10")
}

func TestVendorRiskLevels(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-LOW", "Low Risk")
	addPO(g, "PO-L", "V-LOW", 100, document.StatusCompleted)

	addVendor(g, "V-MED", "Medium Risk")
	addInvoice(g, "INV-M1", "V-MED", 100, testNow, document.StatusOverdue)
	addInvoice(g, "INV-M2", "V-MED", 100, testNow, document.StatusOverdue)

	addVendor(g, "V-HIGH", "High Risk")
	addPO(g, "PO-H1", "V-HIGH", 100, document.StatusBlocked)
	addPO(g, "PO-H2", "V-HIGH", 100, document.StatusBlocked)
	addPO(g, "PO-H3", "V-HIGH", 100, document.StatusBlocked)

	risks := newTestEngine().CalculateVendorRiskScores(g)

	assert.Equal(t, RiskLow, risks["V-LOW"].RiskLevel)
	assert.Equal(t, RiskMedium, risks["V-MED"].RiskLevel) // 30
	assert.Equal(t, RiskHigh, risks["V-HIGH"].RiskLevel)  // 60
}

// ── Three-way match ──────────────────────────────────────────────────────────

func TestThreeWayMatchVariance(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addPO(g, "PO-1", "V-001", 1000, document.StatusCompleted)
	addGR(g, "GR-1", "PO-1", document.StatusAccepted)
	addInvoice(g, "INV-1", "V-001", 1060, testNow, document.StatusDraft)
	linkInvoice(g, "INV-1", "PO-1", "GR-1")

	issues := newTestEngine().DetectThreeWayMatchIssues(g)

	require.Len(t, issues, 1)
	assert.Equal(t, "INV-1", issues[0].InvoiceID)
	assert.Equal(t, "PO-1", issues[0].POID)
	assert.Equal(t, SeverityMedium, issues[0].Severity)
	assert.InDelta(t, 6.0, issues[0].VariancePct, 1e-9)
}

func TestThreeWayMatchWithinTolerance(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addPO(g, "PO-1", "V-001", 1000, document.StatusCompleted)
	addGR(g, "GR-1", "PO-1", document.StatusAccepted)
	addInvoice(g, "INV-1", "V-001", 1040, testNow, document.StatusDraft)
	linkInvoice(g, "INV-1", "PO-1", "GR-1")

	issues := newTestEngine().DetectThreeWayMatchIssues(g)
	assert.Empty(t, issues)
}

func TestThreeWayMatchMissingReference(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addPO(g, "PO-1", "V-001", 1000, document.StatusCompleted)
	addInvoice(g, "INV-1", "V-001", 1000, testNow, document.StatusDraft)
	linkInvoice(g, "INV-1", "PO-1", "") // no GR reference

	issues := newTestEngine().DetectThreeWayMatchIssues(g)

	require.Len(t, issues, 1)
	assert.Equal(t, SeverityHigh, issues[0].Severity)
	assert.Equal(t, "Missing PO or GR reference", issues[0].Issue)
	// Missing references short-circuit: no variance check was attempted.
	assert.Zero(t, issues[0].VariancePct)
}

func TestThreeWayMatchGRNotAccepted(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addPO(g, "PO-1", "V-001", 1000, document.StatusCompleted)
	addGR(g, "GR-1", "PO-1", document.StatusRejected)
	addInvoice(g, "INV-1", "V-001", 1000, testNow, document.StatusDraft)
	linkInvoice(g, "INV-1", "PO-1", "GR-1")

	issues := newTestEngine().DetectThreeWayMatchIssues(g)

	require.Len(t, issues, 1)
	assert.Equal(t, SeverityHigh, issues[0].Severity)
	assert.Equal(t, "GR-1", issues[0].GRID)
	assert.Contains(t, issues[0].Issue, "Rejected")
}

// ── Approval delay prediction ────────────────────────────────────────────────

// pendingPO adds a Pending Approval PO with n pending approver edges.
func pendingPO(g *knowledge.Graph, id, vendorID string, amount float64, approvers int) {
	addPO(g, id, vendorID, amount, document.StatusPendingApproval)
	for i := 0; i < approvers; i++ {
		g.AddEdge(&knowledge.Edge{
			From:     id,
			To:       "APPROVER_" + string(rune('a'+i)),
			Relation: knowledge.RelRequiresApproval,
			Status:   document.StatusPending,
		})
	}
}

func TestPredictApprovalDelaysAllFactors(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Shady Ltd")
	addPO(g, "PO-B1", "V-001", 100, document.StatusBlocked)
	pendingPO(g, "PO-1", "V-001", 15000, 3)

	predictions := newTestEngine().PredictApprovalDelays(g)

	require.Len(t, predictions, 1)
	p := predictions[0]
	assert.Equal(t, "PO-1", p.DocumentID)
	assert.Equal(t, knowledge.NodePurchaseOrder, p.DocumentType)
	// +30 amount, +20 approvers, +25 blocked vendor = 75.
	assert.Equal(t, 75, p.DelayRiskScore)
	assert.Equal(t, RiskHigh, p.RiskLevel)
	assert.Equal(t, 3, p.PendingApprovers)
	assert.Len(t, p.Factors, 3)
}

func TestPredictApprovalDelaysMediumAtThreshold(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	pendingPO(g, "PO-1", "V-001", 15000, 1)

	predictions := newTestEngine().PredictApprovalDelays(g)

	require.Len(t, predictions, 1)
	assert.Equal(t, 30, predictions[0].DelayRiskScore)
	assert.Equal(t, RiskMedium, predictions[0].RiskLevel)
}

func TestPredictApprovalDelaysBelowThresholdDropped(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	pendingPO(g, "PO-1", "V-001", 500, 2) // 0 points: low amount, short chain
	addPO(g, "PO-2", "V-001", 50000, document.StatusApproved)

	predictions := newTestEngine().PredictApprovalDelays(g)
	assert.Empty(t, predictions)
}

// ── Consolidation and recommendations ────────────────────────────────────────

// addCategorizedItem wires an item into a PO, a vendor, and a category the
// way the builder does.
func addCategorizedItem(g *knowledge.Graph, itemID, poID, vendorID, category string, unitPrice float64) {
	g.AddNode(&knowledge.Node{
		ID:        itemID,
		Type:      knowledge.NodeLineItem,
		UnitPrice: unitPrice,
		Category:  category,
	})
	catID := "CAT_" + category
	if !g.HasNode(catID) {
		g.AddNode(&knowledge.Node{ID: catID, Type: knowledge.NodeCategory, Name: category})
	}
	g.AddEdge(&knowledge.Edge{From: poID, To: itemID, Relation: knowledge.RelContains})
	g.AddEdge(&knowledge.Edge{From: itemID, To: vendorID, Relation: knowledge.RelSuppliedBy})
	g.AddEdge(&knowledge.Edge{From: itemID, To: catID, Relation: knowledge.RelBelongsToCategory})
}

func TestFindConsolidationOpportunities(t *testing.T) {
	g := knowledge.NewGraph()
	for i, amount := range []float64{100, 200, 300} {
		vendorID := "V-00" + string(rune('1'+i))
		poID := "PO-" + string(rune('1'+i))
		addVendor(g, vendorID, "Vendor "+vendorID)
		addPO(g, poID, vendorID, amount, document.StatusCompleted)
		addCategorizedItem(g, "ITEM-"+poID, poID, vendorID, "IT Equipment", amount)
	}

	// A two-vendor category stays below the consolidation bar.
	addVendor(g, "V-X", "Vendor X")
	addPO(g, "PO-X", "V-X", 50, document.StatusCompleted)
	addCategorizedItem(g, "ITEM-X", "PO-X", "V-X", "Services", 50)
	addVendor(g, "V-Y", "Vendor Y")
	addPO(g, "PO-Y", "V-Y", 60, document.StatusCompleted)
	addCategorizedItem(g, "ITEM-Y", "PO-Y", "V-Y", "Services", 60)

	opportunities := newTestEngine().FindConsolidationOpportunities(g)

	require.Len(t, opportunities, 1)
	opp := opportunities[0]
	assert.Equal(t, "IT Equipment", opp.Category)
	assert.Equal(t, 3, opp.VendorCount)
	assert.InDelta(t, 600, opp.TotalSpend, 1e-9)
	assert.Len(t, opp.Vendors, 3)
	assert.InDelta(t, 200, opp.Vendors["V-002"].Spend, 1e-9)
	assert.Equal(t, 1, opp.Vendors["V-002"].TransactionCount)
	assert.Contains(t, opp.Recommendation, "3 vendors")
}

func TestRecommendVendorsOrdersByRiskThenPrice(t *testing.T) {
	g := knowledge.NewGraph()

	addVendor(g, "V-CHEAP", "Cheap Co")
	addPO(g, "PO-1", "V-CHEAP", 40, document.StatusCompleted)
	addCategorizedItem(g, "ITEM-1", "PO-1", "V-CHEAP", "IT Equipment", 40)

	addVendor(g, "V-DEAR", "Dear Co")
	addPO(g, "PO-2", "V-DEAR", 50, document.StatusCompleted)
	addCategorizedItem(g, "ITEM-2", "PO-2", "V-DEAR", "IT Equipment", 50)

	// Cheapest vendor of all, but high risk: three blocked POs.
	addVendor(g, "V-RISKY", "Risky Co")
	addPO(g, "PO-3", "V-RISKY", 10, document.StatusCompleted)
	addCategorizedItem(g, "ITEM-3", "PO-3", "V-RISKY", "IT Equipment", 10)
	addPO(g, "PO-3B1", "V-RISKY", 100, document.StatusBlocked)
	addPO(g, "PO-3B2", "V-RISKY", 100, document.StatusBlocked)
	addPO(g, "PO-3B3", "V-RISKY", 100, document.StatusBlocked)

	e := newTestEngine()

	all := e.RecommendVendors(g, "IT Equipment", false)
	require.Len(t, all, 3)
	assert.Equal(t, "V-CHEAP", all[0].VendorID)
	assert.Equal(t, "V-DEAR", all[1].VendorID)
	assert.Equal(t, "V-RISKY", all[2].VendorID)
	assert.InDelta(t, 40, all[0].AvgPrice, 1e-9)
	assert.Equal(t, 60, all[2].RiskScore)
	assert.Equal(t, RiskHigh, all[2].RiskLevel)

	safe := e.RecommendVendors(g, "IT Equipment", true)
	require.Len(t, safe, 2)
	assert.Equal(t, "V-CHEAP", safe[0].VendorID)
	assert.Equal(t, "V-DEAR", safe[1].VendorID)
}

func TestRecommendVendorsTracksQualityIssues(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")
	addPO(g, "PO-1", "V-001", 100, document.StatusInProgress)
	addCategorizedItem(g, "ITEM-1", "PO-1", "V-001", "IT Equipment", 100)
	addGR(g, "GR-1", "PO-1", document.StatusRejected)

	recs := newTestEngine().RecommendVendors(g, "IT Equipment", false)

	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].QualityIssues)
}

func TestRecommendVendorsUnknownCategory(t *testing.T) {
	g := knowledge.NewGraph()
	addVendor(g, "V-001", "Acme Corp")

	recs := newTestEngine().RecommendVendors(g, "Spacecraft", false)
	assert.Empty(t, recs)
}

// ── Comprehensive report ─────────────────────────────────────────────────────

func TestGenerateComprehensiveReport(t *testing.T) {
	w := workflow.NewEngine(logger.Nop())
	w.AddApprovalPolicy(document.NewApprovalPolicy("All", "", 0, document.Unbounded(), []string{"manager"}))

	po := w.CreatePurchaseOrder(workflow.CreatePurchaseOrderRequest{
		VendorID:   "V-001",
		VendorName: "Acme Corp",
		Requester:  "alice",
		Department: "IT",
		LineItems:  []document.LineItem{document.NewLineItem("IT-001", "Laptop", 1, 1000, 0)},
	})
	require.NoError(t, w.SubmitPOForApproval(po.ID))
	require.NoError(t, w.ApprovePO(po.ID, "manager", ""))
	gr, err := w.CreateGoodsReceipt(po.ID, "bob", po.LineItems, "")
	require.NoError(t, err)
	require.NoError(t, w.PerformQualityCheck(gr.ID, "carol", true))

	// An inflated invoice guarantees at least one match issue in the report.
	inv, err := w.CreateInvoice(workflow.CreateInvoiceRequest{
		POID: po.ID, GRID: gr.ID, VendorID: "V-001", VendorName: "Acme Corp",
		LineItems: []document.LineItem{document.NewLineItem("IT-001", "Laptop", 1, 1200, 0)},
	})
	require.NoError(t, err)

	report := newTestEngine().GenerateComprehensiveReport(w)
	require.NotNil(t, report)

	assert.Equal(t, 1, report.GraphStats.TotalVendors)
	assert.Equal(t, 1, report.GraphStats.TotalPOs)
	assert.Equal(t, 1, report.GraphStats.TotalInvoices)
	assert.Greater(t, report.GraphStats.TotalNodes, 5)
	assert.Greater(t, report.GraphStats.TotalEdges, 5)

	require.Len(t, report.ThreeWayMatchIssues, 1)
	assert.Equal(t, inv.ID, report.ThreeWayMatchIssues[0].InvoiceID)
	assert.Equal(t, SeverityMedium, report.ThreeWayMatchIssues[0].Severity)

	require.Contains(t, report.VendorRisks, "V-001")
	assert.Equal(t, RiskLow, report.VendorRisks["V-001"].RiskLevel)
	assert.Empty(t, report.FraudPatterns)
	assert.Empty(t, report.ApprovalDelays)
}
