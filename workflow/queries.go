package workflow

import (
	"github.com/pesio-ai/be-p2p-core/document"
	"github.com/pesio-ai/be-p2p-core/errors"
)

// Aggregate queries are pure reads recomputed on every call. The documents
// they return are live references into engine state, not defensive copies:
// mutating them mutates the engine.

// POSummary bundles a purchase order with its related documents and
// reconciliation totals.
type POSummary struct {
	PurchaseOrder *document.PurchaseOrder
	GoodsReceipts []*document.GoodsReceipt
	Invoices      []*document.Invoice

	// TotalReceived sums Accepted goods receipts only.
	TotalReceived float64
	TotalInvoiced float64
	// TotalPaid sums Paid invoices only.
	TotalPaid float64
}

// POSummary returns the summary for one purchase order.
func (e *Engine) POSummary(poID string) (*POSummary, error) {
	po, ok := e.pos[poID]
	if !ok {
		return nil, errors.NotFound("purchase_order", poID)
	}

	summary := &POSummary{PurchaseOrder: po}
	for _, gr := range e.grs {
		if gr.POID != poID {
			continue
		}
		summary.GoodsReceipts = append(summary.GoodsReceipts, gr)
		if gr.Status == document.StatusAccepted {
			summary.TotalReceived += gr.TotalAmount()
		}
	}
	for _, inv := range e.invoices {
		if inv.POID != poID {
			continue
		}
		summary.Invoices = append(summary.Invoices, inv)
		summary.TotalInvoiced += inv.TotalAmount()
		if inv.Status == document.StatusPaid {
			summary.TotalPaid += inv.TotalAmount()
		}
	}
	return summary, nil
}

// PendingApprovals lists the documents awaiting approval.
type PendingApprovals struct {
	PurchaseOrders []*document.PurchaseOrder
	Invoices       []*document.Invoice
}

// AllPendingApprovals returns every PO and invoice in Pending Approval.
func (e *Engine) AllPendingApprovals() PendingApprovals {
	var pending PendingApprovals
	for _, po := range e.pos {
		if po.Status == document.StatusPendingApproval {
			pending.PurchaseOrders = append(pending.PurchaseOrders, po)
		}
	}
	for _, inv := range e.invoices {
		if inv.Status == document.StatusPendingApproval {
			pending.Invoices = append(pending.Invoices, inv)
		}
	}
	return pending
}

// BlockedDocuments lists all documents currently Blocked.
type BlockedDocuments struct {
	PurchaseOrders []*document.PurchaseOrder
	GoodsReceipts  []*document.GoodsReceipt
	Invoices       []*document.Invoice
}

// BlockedDocuments returns every blocked document.
func (e *Engine) BlockedDocuments() BlockedDocuments {
	var blocked BlockedDocuments
	for _, po := range e.pos {
		if po.Status == document.StatusBlocked {
			blocked.PurchaseOrders = append(blocked.PurchaseOrders, po)
		}
	}
	for _, gr := range e.grs {
		if gr.Status == document.StatusBlocked {
			blocked.GoodsReceipts = append(blocked.GoodsReceipts, gr)
		}
	}
	for _, inv := range e.invoices {
		if inv.Status == document.StatusBlocked {
			blocked.Invoices = append(blocked.Invoices, inv)
		}
	}
	return blocked
}

// Statistics is an aggregate snapshot of workflow state.
type Statistics struct {
	TotalPOs    int
	ApprovedPOs int
	PendingPOs  int
	BlockedPOs  int

	TotalGRs    int
	AcceptedGRs int
	BlockedGRs  int

	TotalInvoices   int
	PaidInvoices    int
	OverdueInvoices int
	BlockedInvoices int

	// TotalSpend sums Paid invoice amounts.
	TotalSpend float64
}

// Statistics returns overall workflow counters.
func (e *Engine) Statistics() Statistics {
	var stats Statistics

	stats.TotalPOs = len(e.pos)
	for _, po := range e.pos {
		switch po.Status {
		case document.StatusApproved:
			stats.ApprovedPOs++
		case document.StatusPendingApproval:
			stats.PendingPOs++
		case document.StatusBlocked:
			stats.BlockedPOs++
		}
	}

	stats.TotalGRs = len(e.grs)
	for _, gr := range e.grs {
		switch gr.Status {
		case document.StatusAccepted:
			stats.AcceptedGRs++
		case document.StatusBlocked:
			stats.BlockedGRs++
		}
	}

	stats.TotalInvoices = len(e.invoices)
	for _, inv := range e.invoices {
		switch inv.Status {
		case document.StatusPaid:
			stats.PaidInvoices++
			stats.TotalSpend += inv.TotalAmount()
		case document.StatusOverdue:
			stats.OverdueInvoices++
		case document.StatusBlocked:
			stats.BlockedInvoices++
		}
	}

	return stats
}
