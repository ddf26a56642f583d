package document

// LineItem is a single priced position on a PO, GR, or invoice. Items are
// immutable once appended to a parent document; slice order is insertion
// order and carries no semantic meaning.
type LineItem struct {
	ID          string
	ItemCode    string
	Description string
	Quantity    float64
	UnitPrice   float64
	TaxRate     float64
}

// NewLineItem assigns an id to a line item.
func NewLineItem(itemCode, description string, quantity, unitPrice, taxRate float64) LineItem {
	return LineItem{
		ID:          newRecordID(),
		ItemCode:    itemCode,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
	}
}

// Subtotal is quantity times unit price, before tax.
func (li LineItem) Subtotal() float64 {
	return li.Quantity * li.UnitPrice
}

// TaxAmount is the tax owed on the subtotal.
func (li LineItem) TaxAmount() float64 {
	return li.Subtotal() * li.TaxRate
}

// Total is subtotal plus tax.
func (li LineItem) Total() float64 {
	return li.Subtotal() + li.TaxAmount()
}

func sumSubtotal(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

func sumTax(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.TaxAmount()
	}
	return total
}

func sumTotal(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Total()
	}
	return total
}
