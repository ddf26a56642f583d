package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/pesio-ai/be-p2p-core/document"
)

// Document type labels used in audit entries.
const (
	docTypePO      = "purchase_order"
	docTypeGR      = "goods_receipt"
	docTypeInvoice = "invoice"
)

// Audit actions.
const (
	actionCreated        = "created"
	actionSubmitted      = "submitted"
	actionApproved       = "approved"
	actionRejected       = "rejected"
	actionReceived       = "received"
	actionQualityChecked = "quality_checked"
	actionPaid           = "paid"
	actionOverdue        = "overdue"
	actionBlocked        = "blocked"
	actionUnblocked      = "unblocked"
)

// AuditEntry is one immutable record of a workflow action.
type AuditEntry struct {
	ID           string
	DocumentID   string
	DocumentType string
	Action       string
	PerformedBy  string
	StatusBefore document.Status
	StatusAfter  document.Status
	Notes        string
	PerformedAt  time.Time
}

func (e *Engine) appendAudit(docID, docType, action, performedBy string, before, after document.Status, notes string) {
	e.audit = append(e.audit, AuditEntry{
		ID:           uuid.NewString(),
		DocumentID:   docID,
		DocumentType: docType,
		Action:       action,
		PerformedBy:  performedBy,
		StatusBefore: before,
		StatusAfter:  after,
		Notes:        notes,
		PerformedAt:  time.Now(),
	})
}

// AuditLog returns the full audit trail in append order.
func (e *Engine) AuditLog() []AuditEntry {
	return e.audit
}

// AuditTrail returns the audit entries for one document in append order.
func (e *Engine) AuditTrail(documentID string) []AuditEntry {
	var out []AuditEntry
	for _, entry := range e.audit {
		if entry.DocumentID == documentID {
			out = append(out, entry)
		}
	}
	return out
}
