// Package document defines the Purchase-to-Pay document model: purchase
// orders, goods receipts, invoices, line items, and approval records.
package document

// Status is the closed set of lifecycle states. A single type covers all
// three document kinds and approval records; each kind uses its own subset.
type Status string

const (
	StatusDraft           Status = "Draft"
	StatusPendingApproval Status = "Pending Approval"
	StatusApproved        Status = "Approved"
	StatusRejected        Status = "Rejected"
	StatusInProgress      Status = "In Progress"
	StatusCompleted       Status = "Completed"
	StatusCancelled       Status = "Cancelled"
	StatusBlocked         Status = "Blocked"

	// Goods receipt states.
	StatusReceived Status = "Received"
	StatusAccepted Status = "Accepted"

	// Invoice settlement states.
	StatusPaid    Status = "Paid"
	StatusOverdue Status = "Overdue"

	// Approval record state before the approver acts.
	StatusPending Status = "Pending"
)

// PaymentTerms determines when an invoice falls due.
type PaymentTerms string

const (
	TermsNet30        PaymentTerms = "Net 30 Days"
	TermsNet60        PaymentTerms = "Net 60 Days"
	TermsNet90        PaymentTerms = "Net 90 Days"
	TermsImmediate    PaymentTerms = "Immediate"
	TermsDueOnReceipt PaymentTerms = "Due on Receipt"
)

// NetDays returns the number of days between invoice date and due date.
// Unknown terms fall back to 30 days.
func (t PaymentTerms) NetDays() int {
	switch t {
	case TermsImmediate, TermsDueOnReceipt:
		return 0
	case TermsNet30:
		return 30
	case TermsNet60:
		return 60
	case TermsNet90:
		return 90
	default:
		return 30
	}
}
