// Package knowledge projects workflow state into a directed multigraph of
// typed nodes and edges. A graph is a point-in-time snapshot: node properties
// are copied scalars, and later workflow mutations never change a built
// graph. Callers rebuild before reasoning when they need fresh state.
package knowledge

import (
	"time"

	"github.com/pesio-ai/be-p2p-core/document"
)

// NodeType identifies the kind of entity a node represents.
type NodeType string

const (
	NodeVendor        NodeType = "Vendor"
	NodeDepartment    NodeType = "Department"
	NodeApprover      NodeType = "Approver"
	NodePurchaseOrder NodeType = "PurchaseOrder"
	NodeGoodsReceipt  NodeType = "GoodsReceipt"
	NodeInvoice       NodeType = "Invoice"
	NodeLineItem      NodeType = "LineItem"
	NodeCategory      NodeType = "Category"
)

// Relation identifies the kind of relationship an edge represents.
type Relation string

const (
	RelFromVendor        Relation = "FROM_VENDOR"
	RelRequestedBy       Relation = "REQUESTED_BY"
	RelRequiresApproval  Relation = "REQUIRES_APPROVAL"
	RelContains          Relation = "CONTAINS"
	RelSuppliedBy        Relation = "SUPPLIED_BY"
	RelValidates         Relation = "VALIDATES"
	RelReferencesPO      Relation = "REFERENCES_PO"
	RelReferencesGR      Relation = "REFERENCES_GR"
	RelBelongsToCategory Relation = "BELONGS_TO_CATEGORY"
)

// Node is a graph vertex with snapshotted scalar properties. Only the fields
// relevant to the node's type are populated.
type Node struct {
	ID   string
	Type NodeType
	Name string

	// Document properties.
	Amount         float64
	Status         document.Status
	Date           time.Time // creation, receipt, or invoice date
	DueDate        time.Time
	Requester      string
	Blocked        bool
	BlockedReason  string
	QualityChecked bool

	// Line item properties.
	ItemCode    string
	Description string
	Quantity    float64
	UnitPrice   float64
	Category    string
}

// Edge is a directed, typed relationship. REQUIRES_APPROVAL edges carry the
// approval record's status and timestamp so approval state can be queried
// without touching the source document.
type Edge struct {
	From      string
	To        string
	Relation  Relation
	Status    document.Status
	Timestamp time.Time
}

// Graph is a directed multigraph. The zero value is not usable; construct
// with NewGraph.
type Graph struct {
	nodes  map[string]*Node
	byType map[NodeType][]string
	out    map[string][]*Edge
	in     map[string][]*Edge
	edges  int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:  make(map[string]*Node),
		byType: make(map[NodeType][]string),
		out:    make(map[string][]*Edge),
		in:     make(map[string][]*Edge),
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n *Node) {
	if old, ok := g.nodes[n.ID]; ok {
		if old.Type != n.Type {
			g.removeFromTypeIndex(old)
			g.addToTypeIndex(n)
		}
		g.nodes[n.ID] = n
		return
	}
	g.nodes[n.ID] = n
	g.addToTypeIndex(n)
}

func (g *Graph) addToTypeIndex(n *Node) {
	if n.Type != "" {
		g.byType[n.Type] = append(g.byType[n.Type], n.ID)
	}
}

func (g *Graph) removeFromTypeIndex(n *Node) {
	if n.Type == "" {
		return
	}
	ids := g.byType[n.Type]
	for i, id := range ids {
		if id == n.ID {
			g.byType[n.Type] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

// ensureNode creates an untyped placeholder so edges may reference ids that
// were never added as typed nodes (e.g. an invoice vendor with no POs).
// Placeholders are invisible to NodesOfType.
func (g *Graph) ensureNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		g.nodes[id] = &Node{ID: id}
	}
}

// AddEdge appends a directed edge. Parallel edges between the same pair are
// allowed. Unknown endpoints become untyped placeholder nodes.
func (g *Graph) AddEdge(edge *Edge) {
	g.ensureNode(edge.From)
	g.ensureNode(edge.To)
	g.out[edge.From] = append(g.out[edge.From], edge)
	g.in[edge.To] = append(g.in[edge.To], edge)
	g.edges++
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodesOfType returns all typed nodes of the given type.
func (g *Graph) NodesOfType(t NodeType) []*Node {
	ids := g.byType[t]
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.nodes[id])
	}
	return out
}

// CountOfType returns the number of nodes of the given type.
func (g *Graph) CountOfType(t NodeType) int {
	return len(g.byType[t])
}

// OutEdges returns the edges leaving the given node.
func (g *Graph) OutEdges(id string) []*Edge {
	return g.out[id]
}

// InEdges returns the edges entering the given node.
func (g *Graph) InEdges(id string) []*Edge {
	return g.in[id]
}

// NodeCount returns the total node count, placeholders included.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the total edge count.
func (g *Graph) EdgeCount() int {
	return g.edges
}
