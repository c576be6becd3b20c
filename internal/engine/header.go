package engine

import (
	"time"

	"github.com/rezonia/invoice-utils/internal/model"
)

// applyHeader sets number, date and parties, and resets the currency info
func applyHeader(inv model.Invoice, rule *model.HeaderRule, invoiceNo int, invoiceDate time.Time) model.Invoice {
	inv.Header = model.Header{
		Number:   invoiceNo,
		Date:     invoiceDate,
		Currency: model.CurrencyInfo{},
		Buyer:    model.Party{},
		Seller:   model.Party{},
	}
	if rule == nil {
		return inv
	}
	if rule.Buyer != nil {
		inv.Header.Buyer = rule.Buyer.Clone()
	}
	if rule.Seller != nil {
		inv.Header.Seller = rule.Seller.Clone()
	}
	return inv
}
