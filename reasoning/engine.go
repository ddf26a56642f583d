// Package reasoning runs graph queries and heuristics over a built knowledge
// graph: fraud-pattern detection, vendor risk scoring, three-way-match
// validation, approval-delay prediction, and vendor consolidation and
// recommendation. Every analysis is side-effect-free and reports data
// absence as an empty result, never an error.
package reasoning

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/pesio-ai/be-p2p-core/document"
	"github.com/pesio-ai/be-p2p-core/knowledge"
	"github.com/pesio-ai/be-p2p-core/logger"
)

// Severity grades a finding.
type Severity string

const (
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Risk levels used by vendor scoring and delay prediction.
const (
	RiskLow     = "LOW"
	RiskMedium  = "MEDIUM"
	RiskHigh    = "HIGH"
	RiskUnknown = "UNKNOWN"
)

// Engine evaluates reasoning rules against knowledge graphs.
type Engine struct {
	log     zerolog.Logger
	builder *knowledge.Builder
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithBuilder replaces the graph builder used by GenerateComprehensiveReport.
func WithBuilder(b *knowledge.Builder) Option {
	return func(e *Engine) {
		e.builder = b
	}
}

// WithClock replaces the time source, used by the split-invoicing window.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a reasoning engine with a default builder, a silent
// logger, and the wall clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		log:     logger.Nop(),
		builder: knowledge.NewBuilder(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ── Graph traversal helpers ──────────────────────────────────────────────────

// vendorDocuments returns the nodes of the given type with a FROM_VENDOR
// edge into the vendor.
func vendorDocuments(g *knowledge.Graph, vendorID string, t knowledge.NodeType) []*knowledge.Node {
	var out []*knowledge.Node
	for _, edge := range g.InEdges(vendorID) {
		if edge.Relation != knowledge.RelFromVendor {
			continue
		}
		if node := g.Node(edge.From); node != nil && node.Type == t {
			out = append(out, node)
		}
	}
	return out
}

func vendorPOs(g *knowledge.Graph, vendorID string) []*knowledge.Node {
	return vendorDocuments(g, vendorID, knowledge.NodePurchaseOrder)
}

func vendorInvoices(g *knowledge.Graph, vendorID string) []*knowledge.Node {
	return vendorDocuments(g, vendorID, knowledge.NodeInvoice)
}

// recentInvoices returns the vendor's invoices dated after cutoff.
func recentInvoices(g *knowledge.Graph, vendorID string, cutoff time.Time) []*knowledge.Node {
	var out []*knowledge.Node
	for _, inv := range vendorInvoices(g, vendorID) {
		if inv.Date.After(cutoff) {
			out = append(out, inv)
		}
	}
	return out
}

// blockedDocuments returns the ids of the vendor's blocked POs and invoices.
func blockedDocuments(g *knowledge.Graph, vendorID string) []string {
	var out []string
	for _, po := range vendorPOs(g, vendorID) {
		if po.Blocked {
			out = append(out, po.ID)
		}
	}
	for _, inv := range vendorInvoices(g, vendorID) {
		if inv.Blocked {
			out = append(out, inv.ID)
		}
	}
	return out
}

// receiptsForPO returns the goods receipts validating a PO.
func receiptsForPO(g *knowledge.Graph, poID string) []*knowledge.Node {
	var out []*knowledge.Node
	for _, edge := range g.InEdges(poID) {
		if edge.Relation != knowledge.RelValidates {
			continue
		}
		if node := g.Node(edge.From); node != nil && node.Type == knowledge.NodeGoodsReceipt {
			out = append(out, node)
		}
	}
	return out
}

// rejectedReceipts returns the vendor's quality-rejected goods receipts.
func rejectedReceipts(g *knowledge.Graph, vendorID string) []*knowledge.Node {
	var out []*knowledge.Node
	for _, po := range vendorPOs(g, vendorID) {
		for _, gr := range receiptsForPO(g, po.ID) {
			if gr.Status == document.StatusRejected {
				out = append(out, gr)
			}
		}
	}
	return out
}

// overdueInvoices returns the vendor's invoices currently Overdue.
func overdueInvoices(g *knowledge.Graph, vendorID string) []*knowledge.Node {
	var out []*knowledge.Node
	for _, inv := range vendorInvoices(g, vendorID) {
		if inv.Status == document.StatusOverdue {
			out = append(out, inv)
		}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
