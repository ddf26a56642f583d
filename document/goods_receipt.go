package document

import "time"

// GoodsReceipt records a delivery against a purchase order. The PO reference
// is a weak back-reference by id; the PO does not own its receipts. Line
// items are copies of the verified quantities, never shared with the PO.
type GoodsReceipt struct {
	ID               string
	GRNumber         string
	POID             string
	PONumber         string
	Status           Status
	ReceiptDate      time.Time
	ReceivedBy       string
	LineItems        []LineItem
	Notes            string
	QualityChecked   bool
	QualityChecker   string
	QualityCheckDate *time.Time
	BlockedReason    string
}

// NewGoodsReceipt creates a Draft goods receipt for a PO. The GR number
// defaults to the generated id.
func NewGoodsReceipt(poID, poNumber, receivedBy, notes string) *GoodsReceipt {
	id := newDocumentID("GR")
	return &GoodsReceipt{
		ID:          id,
		GRNumber:    id,
		POID:        poID,
		PONumber:    poNumber,
		Status:      StatusDraft,
		ReceiptDate: time.Now(),
		ReceivedBy:  receivedBy,
		Notes:       notes,
	}
}

// TotalAmount sums line item totals.
func (gr *GoodsReceipt) TotalAmount() float64 {
	return sumTotal(gr.LineItems)
}

// ReceiveGoods marks the delivery as received and stamps the receipt date.
func (gr *GoodsReceipt) ReceiveGoods() {
	gr.Status = StatusReceived
	gr.ReceiptDate = time.Now()
}

// PerformQualityCheck records the inspection outcome and moves the receipt
// to Accepted or Rejected.
func (gr *GoodsReceipt) PerformQualityCheck(checker string, passed bool) {
	gr.QualityChecked = true
	gr.QualityChecker = checker
	now := time.Now()
	gr.QualityCheckDate = &now

	if passed {
		gr.Status = StatusAccepted
	} else {
		gr.Status = StatusRejected
	}
}
