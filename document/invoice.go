package document

import "time"

// Invoice bills an accepted goods receipt. PO and GR references are weak
// back-references by id.
type Invoice struct {
	ID               string
	InvoiceNumber    string
	POID             string
	PONumber         string
	GRID             string
	GRNumber         string
	VendorID         string
	VendorName       string
	Status           Status
	InvoiceDate      time.Time
	DueDate          time.Time
	PaymentDate      *time.Time
	PaymentTerms     PaymentTerms
	LineItems        []LineItem
	Notes            string
	Approvals        []*ApprovalRecord
	ApplicablePolicy *ApprovalPolicy
	BlockedReason    string
}

// NewInvoice creates a Draft invoice. The invoice number defaults to the
// generated id and the due date is derived from the payment terms.
func NewInvoice(poID, poNumber, grID, grNumber, vendorID, vendorName string, terms PaymentTerms, notes string) *Invoice {
	id := newDocumentID("INV")
	if terms == "" {
		terms = TermsNet30
	}
	inv := &Invoice{
		ID:            id,
		InvoiceNumber: id,
		POID:          poID,
		PONumber:      poNumber,
		GRID:          grID,
		GRNumber:      grNumber,
		VendorID:      vendorID,
		VendorName:    vendorName,
		Status:        StatusDraft,
		InvoiceDate:   time.Now().Round(0),
		PaymentTerms:  terms,
		Notes:         notes,
	}
	inv.DueDate = inv.InvoiceDate.AddDate(0, 0, terms.NetDays())
	return inv
}

// Subtotal sums line item subtotals.
func (inv *Invoice) Subtotal() float64 {
	return sumSubtotal(inv.LineItems)
}

// TaxTotal sums line item tax amounts.
func (inv *Invoice) TaxTotal() float64 {
	return sumTax(inv.LineItems)
}

// TotalAmount sums line item totals (subtotal plus tax).
func (inv *Invoice) TotalAmount() float64 {
	return sumTotal(inv.LineItems)
}

// AddLineItem appends an item to the invoice.
func (inv *Invoice) AddLineItem(item LineItem) {
	inv.LineItems = append(inv.LineItems, item)
}

// SubmitForApproval moves the invoice to Pending Approval and materializes
// one Pending approval record per required approver of the policy.
func (inv *Invoice) SubmitForApproval(policy *ApprovalPolicy) {
	inv.Status = StatusPendingApproval
	inv.ApplicablePolicy = policy
	for _, approver := range policy.RequiredApprovers {
		inv.Approvals = append(inv.Approvals, newApprovalRecord(approver))
	}
}

// Approve records one approver's approval. Once every record is Approved the
// invoice transitions to Approved.
func (inv *Invoice) Approve(approver, comments string) {
	actOnFirstPending(inv.Approvals, approver, StatusApproved, comments)

	if allApproved(inv.Approvals) {
		inv.Status = StatusApproved
	}
}

// MarkPaid settles the invoice and stamps the payment date.
func (inv *Invoice) MarkPaid() {
	inv.Status = StatusPaid
	now := time.Now()
	inv.PaymentDate = &now
}

// CheckOverdue flips an Approved invoice past its due date to Overdue.
func (inv *Invoice) CheckOverdue() {
	if inv.Status == StatusApproved && time.Now().After(inv.DueDate) {
		inv.Status = StatusOverdue
	}
}

// Block forces the invoice into Blocked with a reason, from any status.
func (inv *Invoice) Block(reason string) {
	inv.Status = StatusBlocked
	inv.BlockedReason = reason
}

// Unblock reverts a Blocked invoice to Draft and clears the reason.
func (inv *Invoice) Unblock() {
	if inv.Status == StatusBlocked {
		inv.Status = StatusDraft
		inv.BlockedReason = ""
	}
}
