package knowledge

import (
	"github.com/rs/zerolog"

	"github.com/pesio-ai/be-p2p-core/document"
	"github.com/pesio-ai/be-p2p-core/logger"
	"github.com/pesio-ai/be-p2p-core/workflow"
)

// Node id prefixes for entities that have no natural document id.
const (
	departmentPrefix = "DEPT_"
	approverPrefix   = "APPROVER_"
	itemPrefix       = "ITEM_"
	categoryPrefix   = "CAT_"
)

// Builder performs the full projection of workflow state into a graph.
// Builds are independent: two graphs built from the same engine share no
// state with each other or with the engine.
type Builder struct {
	classify Classifier
	log      zerolog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClassifier replaces the default category classifier.
func WithClassifier(c Classifier) BuilderOption {
	return func(b *Builder) {
		b.classify = c
	}
}

// WithLogger sets the builder's logger.
func WithLogger(log zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.log = log
	}
}

// NewBuilder creates a Builder with the default classifier and a silent
// logger.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		classify: DefaultClassifier,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build rebuilds the graph from current workflow state. Nothing keeps the
// result in sync with later mutations.
func (b *Builder) Build(w *workflow.Engine) *Graph {
	g := NewGraph()

	pos := w.PurchaseOrders()
	grs := w.GoodsReceipts()
	invoices := w.Invoices()

	b.addVendors(g, pos)
	b.addDepartments(g, pos)
	b.addApprovers(g, pos, invoices)

	for _, po := range pos {
		b.addPurchaseOrder(g, po)
	}
	for _, gr := range grs {
		b.addGoodsReceipt(g, w, gr)
	}
	for _, inv := range invoices {
		b.addInvoice(g, w, inv)
	}

	b.addCategories(g, pos)

	b.log.Info().
		Int("nodes", g.NodeCount()).
		Int("edges", g.EdgeCount()).
		Msg("Knowledge graph built")
	return g
}

// addVendors derives one Vendor node per distinct (id, name) pair across POs.
func (b *Builder) addVendors(g *Graph, pos []*document.PurchaseOrder) {
	type vendorKey struct{ id, name string }
	seen := make(map[vendorKey]struct{})
	for _, po := range pos {
		key := vendorKey{po.VendorID, po.VendorName}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		g.AddNode(&Node{ID: po.VendorID, Type: NodeVendor, Name: po.VendorName})
	}
}

func (b *Builder) addDepartments(g *Graph, pos []*document.PurchaseOrder) {
	seen := make(map[string]struct{})
	for _, po := range pos {
		if _, ok := seen[po.Department]; ok {
			continue
		}
		seen[po.Department] = struct{}{}
		g.AddNode(&Node{ID: departmentPrefix + po.Department, Type: NodeDepartment, Name: po.Department})
	}
}

// addApprovers derives Approver nodes from the union of all approval records
// on POs and invoices.
func (b *Builder) addApprovers(g *Graph, pos []*document.PurchaseOrder, invoices []*document.Invoice) {
	seen := make(map[string]struct{})
	add := func(approver string) {
		if _, ok := seen[approver]; ok {
			return
		}
		seen[approver] = struct{}{}
		g.AddNode(&Node{ID: approverPrefix + approver, Type: NodeApprover, Name: approver})
	}

	for _, po := range pos {
		for _, rec := range po.Approvals {
			add(rec.Approver)
		}
	}
	for _, inv := range invoices {
		for _, rec := range inv.Approvals {
			add(rec.Approver)
		}
	}
}

func (b *Builder) addPurchaseOrder(g *Graph, po *document.PurchaseOrder) {
	g.AddNode(&Node{
		ID:            po.ID,
		Type:          NodePurchaseOrder,
		Amount:        po.TotalAmount(),
		Status:        po.Status,
		Date:          po.CreationDate,
		Requester:     po.Requester,
		Blocked:       po.Status == document.StatusBlocked,
		BlockedReason: po.BlockedReason,
	})

	g.AddEdge(&Edge{From: po.ID, To: po.VendorID, Relation: RelFromVendor})
	g.AddEdge(&Edge{From: po.ID, To: departmentPrefix + po.Department, Relation: RelRequestedBy})

	for _, rec := range po.Approvals {
		g.AddEdge(&Edge{
			From:      po.ID,
			To:        approverPrefix + rec.Approver,
			Relation:  RelRequiresApproval,
			Status:    rec.Status,
			Timestamp: rec.Timestamp,
		})
	}

	for _, item := range po.LineItems {
		itemID := itemPrefix + item.ID
		g.AddNode(&Node{
			ID:          itemID,
			Type:        NodeLineItem,
			Description: item.Description,
			ItemCode:    item.ItemCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Total(),
		})
		g.AddEdge(&Edge{From: po.ID, To: itemID, Relation: RelContains})
		g.AddEdge(&Edge{From: itemID, To: po.VendorID, Relation: RelSuppliedBy})
	}
}

func (b *Builder) addGoodsReceipt(g *Graph, w *workflow.Engine, gr *document.GoodsReceipt) {
	g.AddNode(&Node{
		ID:             gr.ID,
		Type:           NodeGoodsReceipt,
		Amount:         gr.TotalAmount(),
		Status:         gr.Status,
		Date:           gr.ReceiptDate,
		QualityChecked: gr.QualityChecked,
		Blocked:        gr.Status == document.StatusBlocked,
		BlockedReason:  gr.BlockedReason,
	})

	if _, err := w.PurchaseOrder(gr.POID); err == nil {
		g.AddEdge(&Edge{From: gr.ID, To: gr.POID, Relation: RelValidates})
	}
}

func (b *Builder) addInvoice(g *Graph, w *workflow.Engine, inv *document.Invoice) {
	g.AddNode(&Node{
		ID:            inv.ID,
		Type:          NodeInvoice,
		Amount:        inv.TotalAmount(),
		Status:        inv.Status,
		Date:          inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Blocked:       inv.Status == document.StatusBlocked,
		BlockedReason: inv.BlockedReason,
	})

	if _, err := w.PurchaseOrder(inv.POID); err == nil {
		g.AddEdge(&Edge{From: inv.ID, To: inv.POID, Relation: RelReferencesPO})
	}
	if _, err := w.GoodsReceipt(inv.GRID); err == nil {
		g.AddEdge(&Edge{From: inv.ID, To: inv.GRID, Relation: RelReferencesGR})
	}

	g.AddEdge(&Edge{From: inv.ID, To: inv.VendorID, Relation: RelFromVendor})

	for _, rec := range inv.Approvals {
		g.AddEdge(&Edge{
			From:      inv.ID,
			To:        approverPrefix + rec.Approver,
			Relation:  RelRequiresApproval,
			Status:    rec.Status,
			Timestamp: rec.Timestamp,
		})
	}
}

// addCategories classifies every PO line item and lazily creates one
// Category node per distinct category.
func (b *Builder) addCategories(g *Graph, pos []*document.PurchaseOrder) {
	for _, po := range pos {
		for _, item := range po.LineItems {
			itemID := itemPrefix + item.ID
			node := g.Node(itemID)
			if node == nil {
				continue
			}

			category := b.classify(item.Description)
			node.Category = category

			catID := categoryPrefix + category
			if !g.HasNode(catID) {
				g.AddNode(&Node{ID: catID, Type: NodeCategory, Name: category})
			}
			g.AddEdge(&Edge{From: itemID, To: catID, Relation: RelBelongsToCategory})
		}
	}
}
