// Package workflow orchestrates the Purchase-to-Pay document lifecycle:
// PO approval, goods receipt, quality check, invoicing, and payment. The
// engine is the authoritative in-memory store for all documents.
package workflow

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pesio-ai/be-p2p-core/document"
	"github.com/pesio-ai/be-p2p-core/errors"
)

// Engine owns the three document maps and the approval-policy list. It is
// single-threaded by design: callers must serialize access themselves.
type Engine struct {
	log zerolog.Logger

	pos      map[string]*document.PurchaseOrder
	grs      map[string]*document.GoodsReceipt
	invoices map[string]*document.Invoice
	policies []*document.ApprovalPolicy
	audit    []AuditEntry
}

// NewEngine creates an empty workflow engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log:      log,
		pos:      make(map[string]*document.PurchaseOrder),
		grs:      make(map[string]*document.GoodsReceipt),
		invoices: make(map[string]*document.Invoice),
	}
}

// ── Approval policies ────────────────────────────────────────────────────────

// AddApprovalPolicy appends a policy and re-sorts the list ascending by
// minimum amount. Overlap and duplicate validation is the caller's
// responsibility.
func (e *Engine) AddApprovalPolicy(policy *document.ApprovalPolicy) {
	e.policies = append(e.policies, policy)
	sort.SliceStable(e.policies, func(i, j int) bool {
		return e.policies[i].MinAmount < e.policies[j].MinAmount
	})
}

// ApplicablePolicy scans policies from highest minimum amount downward and
// returns the first whose inclusive range contains amount. Overlapping
// ranges therefore resolve to the highest-minimum match. Nil means no policy
// covers the amount; callers treat that as auto-approve.
func (e *Engine) ApplicablePolicy(amount float64) *document.ApprovalPolicy {
	for i := len(e.policies) - 1; i >= 0; i-- {
		if e.policies[i].AppliesTo(amount) {
			return e.policies[i]
		}
	}
	return nil
}

// Policies returns the configured policies sorted ascending by minimum amount.
func (e *Engine) Policies() []*document.ApprovalPolicy {
	return e.policies
}

// ── Purchase orders ──────────────────────────────────────────────────────────

// CreatePurchaseOrderRequest carries the inputs for a new purchase order.
type CreatePurchaseOrderRequest struct {
	VendorID        string
	VendorName      string
	Requester       string
	Department      string
	LineItems       []document.LineItem
	PaymentTerms    document.PaymentTerms // empty defaults to Net 30
	DeliveryAddress string
	Notes           string
}

// CreatePurchaseOrder creates a Draft purchase order and stores it. It
// always succeeds.
func (e *Engine) CreatePurchaseOrder(req CreatePurchaseOrderRequest) *document.PurchaseOrder {
	po := document.NewPurchaseOrder(
		req.VendorID, req.VendorName, req.Requester, req.Department,
		req.PaymentTerms, req.DeliveryAddress, req.Notes,
	)
	for _, item := range req.LineItems {
		po.AddLineItem(item)
	}
	e.pos[po.ID] = po

	e.appendAudit(po.ID, docTypePO, actionCreated, req.Requester, "", po.Status, "")
	e.log.Debug().
		Str("po_id", po.ID).
		Str("vendor_id", po.VendorID).
		Float64("amount", po.TotalAmount()).
		Msg("Purchase order created")

	return po
}

// SubmitPOForApproval routes a Draft PO through the applicable policy. When
// no policy covers the amount the PO is auto-approved; otherwise it moves to
// Pending Approval with one Pending record per required approver.
func (e *Engine) SubmitPOForApproval(poID string) error {
	po, ok := e.pos[poID]
	if !ok {
		return errors.NotFound("purchase_order", poID)
	}
	if po.Status != document.StatusDraft {
		return errors.Conflict(fmt.Sprintf("purchase order %s is not in Draft (status: %s)", poID, po.Status))
	}

	policy := e.ApplicablePolicy(po.TotalAmount())
	if policy == nil {
		po.Status = document.StatusApproved
		e.appendAudit(po.ID, docTypePO, actionSubmitted, po.Requester, document.StatusDraft, po.Status, "no applicable policy, auto-approved")
		e.log.Info().Str("po_id", po.ID).Msg("Purchase order auto-approved, no applicable policy")
		return nil
	}

	po.SubmitForApproval(policy)
	e.appendAudit(po.ID, docTypePO, actionSubmitted, po.Requester, document.StatusDraft, po.Status, policy.Name)
	e.log.Info().
		Str("po_id", po.ID).
		Str("policy", policy.Name).
		Int("approvers", len(policy.RequiredApprovers)).
		Msg("Purchase order submitted for approval")
	return nil
}

// ApprovePO records one approver's approval on a Pending Approval PO. An
// approver not in the required list, or one who already acted, matches no
// record and the call is a silent no-op success.
func (e *Engine) ApprovePO(poID, approver, comments string) error {
	po, ok := e.pos[poID]
	if !ok {
		return errors.NotFound("purchase_order", poID)
	}
	if po.Status != document.StatusPendingApproval {
		return errors.Conflict(fmt.Sprintf("purchase order %s is not pending approval (status: %s)", poID, po.Status))
	}

	before := po.Status
	po.Approve(approver, comments)

	e.appendAudit(po.ID, docTypePO, actionApproved, approver, before, po.Status, comments)
	if po.Status == document.StatusApproved {
		e.log.Info().Str("po_id", po.ID).Msg("Purchase order fully approved")
	}
	return nil
}

// RejectPO records a rejection on a Pending Approval PO. The first rejection
// is final: the PO moves to Rejected regardless of remaining pending records.
func (e *Engine) RejectPO(poID, approver, comments string) error {
	po, ok := e.pos[poID]
	if !ok {
		return errors.NotFound("purchase_order", poID)
	}
	if po.Status != document.StatusPendingApproval {
		return errors.Conflict(fmt.Sprintf("purchase order %s is not pending approval (status: %s)", poID, po.Status))
	}

	po.Reject(approver, comments)
	e.appendAudit(po.ID, docTypePO, actionRejected, approver, document.StatusPendingApproval, po.Status, comments)
	e.log.Info().Str("po_id", po.ID).Str("approver", approver).Msg("Purchase order rejected")
	return nil
}

// ── Goods receipts ───────────────────────────────────────────────────────────

// CreateGoodsReceipt records a delivery against an Approved PO. The receipt
// starts Received and the PO moves to In Progress, so a second receipt
// cannot be created through this path.
func (e *Engine) CreateGoodsReceipt(poID, receivedBy string, items []document.LineItem, notes string) (*document.GoodsReceipt, error) {
	po, ok := e.pos[poID]
	if !ok {
		return nil, errors.NotFound("purchase_order", poID)
	}
	if po.Status != document.StatusApproved {
		return nil, errors.Conflict(fmt.Sprintf("purchase order %s is not approved (status: %s)", poID, po.Status))
	}

	gr := document.NewGoodsReceipt(po.ID, po.PONumber, receivedBy, notes)
	gr.LineItems = append(gr.LineItems, items...)
	gr.ReceiveGoods()
	e.grs[gr.ID] = gr

	po.Status = document.StatusInProgress

	e.appendAudit(gr.ID, docTypeGR, actionReceived, receivedBy, document.StatusDraft, gr.Status, "")
	e.log.Info().
		Str("gr_id", gr.ID).
		Str("po_id", po.ID).
		Float64("amount", gr.TotalAmount()).
		Msg("Goods receipt created")
	return gr, nil
}

// PerformQualityCheck records the inspection outcome on a Received GR. When
// the goods are accepted and every receipt of the PO is Accepted, the PO
// completes.
func (e *Engine) PerformQualityCheck(grID, checker string, passed bool) error {
	gr, ok := e.grs[grID]
	if !ok {
		return errors.NotFound("goods_receipt", grID)
	}
	if gr.Status != document.StatusReceived {
		return errors.Conflict(fmt.Sprintf("goods receipt %s is not received (status: %s)", grID, gr.Status))
	}

	gr.PerformQualityCheck(checker, passed)

	if passed {
		if po, ok := e.pos[gr.POID]; ok {
			if e.allReceiptsAccepted(po.ID) {
				po.Status = document.StatusCompleted
			}
		}
	}

	e.appendAudit(gr.ID, docTypeGR, actionQualityChecked, checker, document.StatusReceived, gr.Status, "")
	e.log.Info().
		Str("gr_id", gr.ID).
		Bool("passed", passed).
		Msg("Quality check performed")
	return nil
}

// allReceiptsAccepted reports whether every GR referencing the PO is Accepted.
func (e *Engine) allReceiptsAccepted(poID string) bool {
	for _, gr := range e.grs {
		if gr.POID == poID && gr.Status != document.StatusAccepted {
			return false
		}
	}
	return true
}

// ── Invoices ─────────────────────────────────────────────────────────────────

// CreateInvoiceRequest carries the inputs for a new invoice.
type CreateInvoiceRequest struct {
	POID         string
	GRID         string
	VendorID     string
	VendorName   string
	LineItems    []document.LineItem
	PaymentTerms document.PaymentTerms // empty defaults to the PO's terms
	Notes        string
}

// CreateInvoice creates a Draft invoice against an Accepted goods receipt.
// Payment terms default to the PO's when unspecified.
func (e *Engine) CreateInvoice(req CreateInvoiceRequest) (*document.Invoice, error) {
	po, ok := e.pos[req.POID]
	if !ok {
		return nil, errors.NotFound("purchase_order", req.POID)
	}
	gr, ok := e.grs[req.GRID]
	if !ok {
		return nil, errors.NotFound("goods_receipt", req.GRID)
	}
	if gr.Status != document.StatusAccepted {
		return nil, errors.Conflict(fmt.Sprintf("goods receipt %s is not accepted (status: %s)", req.GRID, gr.Status))
	}

	terms := req.PaymentTerms
	if terms == "" {
		terms = po.PaymentTerms
	}

	inv := document.NewInvoice(po.ID, po.PONumber, gr.ID, gr.GRNumber, req.VendorID, req.VendorName, terms, req.Notes)
	for _, item := range req.LineItems {
		inv.AddLineItem(item)
	}
	e.invoices[inv.ID] = inv

	e.appendAudit(inv.ID, docTypeInvoice, actionCreated, "", "", inv.Status, "")
	e.log.Info().
		Str("invoice_id", inv.ID).
		Str("po_id", po.ID).
		Str("gr_id", gr.ID).
		Float64("amount", inv.TotalAmount()).
		Msg("Invoice created")
	return inv, nil
}

// SubmitInvoiceForApproval routes a Draft invoice through the applicable
// policy, with the same auto-approve behavior as PO submission.
func (e *Engine) SubmitInvoiceForApproval(invoiceID string) error {
	inv, ok := e.invoices[invoiceID]
	if !ok {
		return errors.NotFound("invoice", invoiceID)
	}
	if inv.Status != document.StatusDraft {
		return errors.Conflict(fmt.Sprintf("invoice %s is not in Draft (status: %s)", invoiceID, inv.Status))
	}

	policy := e.ApplicablePolicy(inv.TotalAmount())
	if policy == nil {
		inv.Status = document.StatusApproved
		e.appendAudit(inv.ID, docTypeInvoice, actionSubmitted, "", document.StatusDraft, inv.Status, "no applicable policy, auto-approved")
		e.log.Info().Str("invoice_id", inv.ID).Msg("Invoice auto-approved, no applicable policy")
		return nil
	}

	inv.SubmitForApproval(policy)
	e.appendAudit(inv.ID, docTypeInvoice, actionSubmitted, "", document.StatusDraft, inv.Status, policy.Name)
	e.log.Info().
		Str("invoice_id", inv.ID).
		Str("policy", policy.Name).
		Msg("Invoice submitted for approval")
	return nil
}

// ApproveInvoice records one approver's approval on a Pending Approval
// invoice, with the same all-or-nothing semantics as ApprovePO. There is no
// invoice rejection path.
func (e *Engine) ApproveInvoice(invoiceID, approver, comments string) error {
	inv, ok := e.invoices[invoiceID]
	if !ok {
		return errors.NotFound("invoice", invoiceID)
	}
	if inv.Status != document.StatusPendingApproval {
		return errors.Conflict(fmt.Sprintf("invoice %s is not pending approval (status: %s)", invoiceID, inv.Status))
	}

	before := inv.Status
	inv.Approve(approver, comments)

	e.appendAudit(inv.ID, docTypeInvoice, actionApproved, approver, before, inv.Status, comments)
	if inv.Status == document.StatusApproved {
		e.log.Info().Str("invoice_id", inv.ID).Msg("Invoice fully approved")
	}
	return nil
}

// PayInvoice settles an Approved invoice and stamps the payment date.
func (e *Engine) PayInvoice(invoiceID string) error {
	inv, ok := e.invoices[invoiceID]
	if !ok {
		return errors.NotFound("invoice", invoiceID)
	}
	if inv.Status != document.StatusApproved {
		return errors.Conflict(fmt.Sprintf("invoice %s is not approved (status: %s)", invoiceID, inv.Status))
	}

	inv.MarkPaid()
	e.appendAudit(inv.ID, docTypeInvoice, actionPaid, "", document.StatusApproved, inv.Status, "")
	e.log.Info().Str("invoice_id", inv.ID).Float64("amount", inv.TotalAmount()).Msg("Invoice paid")
	return nil
}

// CheckOverdueInvoices sweeps all invoices and flips Approved invoices past
// their due date to Overdue. It must be invoked by the caller; nothing
// schedules it.
func (e *Engine) CheckOverdueInvoices() {
	for _, inv := range e.invoices {
		before := inv.Status
		inv.CheckOverdue()
		if before != inv.Status {
			e.appendAudit(inv.ID, docTypeInvoice, actionOverdue, "", before, inv.Status, "")
			e.log.Warn().Str("invoice_id", inv.ID).Time("due_date", inv.DueDate).Msg("Invoice overdue")
		}
	}
}

// ── Blocking ─────────────────────────────────────────────────────────────────

// BlockPO forces a PO into Blocked with a reason, from any status. There is
// no PO unblock operation.
func (e *Engine) BlockPO(poID, reason string) error {
	po, ok := e.pos[poID]
	if !ok {
		return errors.NotFound("purchase_order", poID)
	}
	before := po.Status
	po.Status = document.StatusBlocked
	po.BlockedReason = reason

	e.appendAudit(po.ID, docTypePO, actionBlocked, "", before, po.Status, reason)
	e.log.Warn().Str("po_id", po.ID).Str("reason", reason).Msg("Purchase order blocked")
	return nil
}

// BlockGR forces a GR into Blocked with a reason, from any status. There is
// no GR unblock operation.
func (e *Engine) BlockGR(grID, reason string) error {
	gr, ok := e.grs[grID]
	if !ok {
		return errors.NotFound("goods_receipt", grID)
	}
	before := gr.Status
	gr.Status = document.StatusBlocked
	gr.BlockedReason = reason

	e.appendAudit(gr.ID, docTypeGR, actionBlocked, "", before, gr.Status, reason)
	e.log.Warn().Str("gr_id", gr.ID).Str("reason", reason).Msg("Goods receipt blocked")
	return nil
}

// BlockInvoice forces an invoice into Blocked with a reason, from any status.
func (e *Engine) BlockInvoice(invoiceID, reason string) error {
	inv, ok := e.invoices[invoiceID]
	if !ok {
		return errors.NotFound("invoice", invoiceID)
	}
	before := inv.Status
	inv.Block(reason)

	e.appendAudit(inv.ID, docTypeInvoice, actionBlocked, "", before, inv.Status, reason)
	e.log.Warn().Str("invoice_id", inv.ID).Str("reason", reason).Msg("Invoice blocked")
	return nil
}

// UnblockInvoice reverts a Blocked invoice to Draft and clears the reason.
// Invoices are the only document kind with an unblock operation.
func (e *Engine) UnblockInvoice(invoiceID string) error {
	inv, ok := e.invoices[invoiceID]
	if !ok {
		return errors.NotFound("invoice", invoiceID)
	}
	before := inv.Status
	inv.Unblock()

	if before != inv.Status {
		e.appendAudit(inv.ID, docTypeInvoice, actionUnblocked, "", before, inv.Status, "")
		e.log.Info().Str("invoice_id", inv.ID).Msg("Invoice unblocked")
	}
	return nil
}

// ── Lookups ──────────────────────────────────────────────────────────────────

// PurchaseOrder returns a PO by id. The returned document is a live
// reference into engine state, not a copy.
func (e *Engine) PurchaseOrder(poID string) (*document.PurchaseOrder, error) {
	po, ok := e.pos[poID]
	if !ok {
		return nil, errors.NotFound("purchase_order", poID)
	}
	return po, nil
}

// GoodsReceipt returns a GR by id.
func (e *Engine) GoodsReceipt(grID string) (*document.GoodsReceipt, error) {
	gr, ok := e.grs[grID]
	if !ok {
		return nil, errors.NotFound("goods_receipt", grID)
	}
	return gr, nil
}

// Invoice returns an invoice by id.
func (e *Engine) Invoice(invoiceID string) (*document.Invoice, error) {
	inv, ok := e.invoices[invoiceID]
	if !ok {
		return nil, errors.NotFound("invoice", invoiceID)
	}
	return inv, nil
}

// PurchaseOrders returns all purchase orders in map order.
func (e *Engine) PurchaseOrders() []*document.PurchaseOrder {
	out := make([]*document.PurchaseOrder, 0, len(e.pos))
	for _, po := range e.pos {
		out = append(out, po)
	}
	return out
}

// GoodsReceipts returns all goods receipts in map order.
func (e *Engine) GoodsReceipts() []*document.GoodsReceipt {
	out := make([]*document.GoodsReceipt, 0, len(e.grs))
	for _, gr := range e.grs {
		out = append(out, gr)
	}
	return out
}

// Invoices returns all invoices in map order.
func (e *Engine) Invoices() []*document.Invoice {
	out := make([]*document.Invoice, 0, len(e.invoices))
	for _, inv := range e.invoices {
		out = append(out, inv)
	}
	return out
}
