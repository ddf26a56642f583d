package document

import "time"

// PurchaseOrder is the root document of the P2P lifecycle. It exclusively
// owns its line items; goods receipts and invoices refer back to it by id.
type PurchaseOrder struct {
	ID               string
	PONumber         string
	VendorID         string
	VendorName       string
	Requester        string
	Department       string
	Status           Status
	CreationDate     time.Time
	ApprovalDate     *time.Time
	LineItems        []LineItem
	PaymentTerms     PaymentTerms
	DeliveryAddress  string
	Notes            string
	Approvals        []*ApprovalRecord
	ApplicablePolicy *ApprovalPolicy
	BlockedReason    string
}

// NewPurchaseOrder creates a Draft purchase order. The PO number defaults to
// the generated id.
func NewPurchaseOrder(vendorID, vendorName, requester, department string, terms PaymentTerms, deliveryAddress, notes string) *PurchaseOrder {
	id := newDocumentID("PO")
	if terms == "" {
		terms = TermsNet30
	}
	return &PurchaseOrder{
		ID:              id,
		PONumber:        id,
		VendorID:        vendorID,
		VendorName:      vendorName,
		Requester:       requester,
		Department:      department,
		Status:          StatusDraft,
		CreationDate:    time.Now(),
		PaymentTerms:    terms,
		DeliveryAddress: deliveryAddress,
		Notes:           notes,
	}
}

// AddLineItem appends an item to the order.
func (po *PurchaseOrder) AddLineItem(item LineItem) {
	po.LineItems = append(po.LineItems, item)
}

// Subtotal sums line item subtotals.
func (po *PurchaseOrder) Subtotal() float64 {
	return sumSubtotal(po.LineItems)
}

// TaxTotal sums line item tax amounts.
func (po *PurchaseOrder) TaxTotal() float64 {
	return sumTax(po.LineItems)
}

// TotalAmount sums line item totals (subtotal plus tax).
func (po *PurchaseOrder) TotalAmount() float64 {
	return sumTotal(po.LineItems)
}

// SubmitForApproval moves the order to Pending Approval and materializes one
// Pending approval record per required approver of the policy.
func (po *PurchaseOrder) SubmitForApproval(policy *ApprovalPolicy) {
	po.Status = StatusPendingApproval
	po.ApplicablePolicy = policy
	for _, approver := range policy.RequiredApprovers {
		po.Approvals = append(po.Approvals, newApprovalRecord(approver))
	}
}

// Approve records one approver's approval. Once every record is Approved the
// order transitions to Approved and the approval date is stamped.
func (po *PurchaseOrder) Approve(approver, comments string) {
	actOnFirstPending(po.Approvals, approver, StatusApproved, comments)

	if allApproved(po.Approvals) {
		po.Status = StatusApproved
		now := time.Now()
		po.ApprovalDate = &now
	}
}

// Reject records a rejection and moves the order to Rejected immediately,
// regardless of other pending records. The first rejection is final.
func (po *PurchaseOrder) Reject(approver, comments string) {
	actOnFirstPending(po.Approvals, approver, StatusRejected, comments)
	po.Status = StatusRejected
}
