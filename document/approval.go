package document

import (
	"math"
	"time"
)

// ApprovalPolicy maps an inclusive monetary range to an ordered list of
// required approvers. Ranges across policies are expected to partition
// amount-space; overlap resolution happens at lookup (highest MinAmount
// wins), not here.
type ApprovalPolicy struct {
	ID                string
	Name              string
	Description       string
	MinAmount         float64
	MaxAmount         float64
	RequiredApprovers []string
	ApprovalLevels    int
}

// NewApprovalPolicy creates a policy. maxAmount may be math.Inf(1) for an
// unbounded upper range. ApprovalLevels is the approver count.
func NewApprovalPolicy(name, description string, minAmount, maxAmount float64, approvers []string) *ApprovalPolicy {
	return &ApprovalPolicy{
		ID:                newRecordID(),
		Name:              name,
		Description:       description,
		MinAmount:         minAmount,
		MaxAmount:         maxAmount,
		RequiredApprovers: approvers,
		ApprovalLevels:    len(approvers),
	}
}

// Unbounded is the upper limit for policies with no maximum amount.
func Unbounded() float64 {
	return math.Inf(1)
}

// AppliesTo reports whether amount falls within the policy's inclusive range.
func (p *ApprovalPolicy) AppliesTo(amount float64) bool {
	return p.MinAmount <= amount && amount <= p.MaxAmount
}

// ApprovalRecord tracks one required approver's decision on a document.
// Records are created Pending on submission, mutated in place when the
// approver acts, and never removed.
type ApprovalRecord struct {
	ID        string
	Approver  string
	Status    Status
	Comments  string
	Timestamp time.Time
}

func newApprovalRecord(approver string) *ApprovalRecord {
	return &ApprovalRecord{
		ID:        newRecordID(),
		Approver:  approver,
		Status:    StatusPending,
		Timestamp: time.Now(),
	}
}

// actOnFirstPending marks the first Pending record for approver with the
// given status. A second action by the same approver, or an approver not in
// the required list, matches nothing and is a silent no-op.
func actOnFirstPending(records []*ApprovalRecord, approver string, status Status, comments string) {
	for _, rec := range records {
		if rec.Approver == approver && rec.Status == StatusPending {
			rec.Status = status
			rec.Comments = comments
			rec.Timestamp = time.Now()
			return
		}
	}
}

func allApproved(records []*ApprovalRecord) bool {
	for _, rec := range records {
		if rec.Status != StatusApproved {
			return false
		}
	}
	return true
}
