package render

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-utils/internal/model"
)

func TestLayout_Paginates(t *testing.T) {
	inv := model.NewInvoice()
	inv.Header.Number = 3
	inv.Header.Date = time.Date(2023, 11, 13, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		inv.Items = append(inv.Items, model.LineItem{
			ItemNo:    i + 1,
			Text:      "item",
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(2),
			ItemPrice: decimal.NewFromInt(2),
			ItemTotal: decimal.NewFromInt(2),
		})
	}

	doc := layout(inv)

	require.Greater(t, len(doc.Pages), 1)
	for _, pg := range doc.Pages {
		for _, txt := range pg.Content.Text {
			assert.GreaterOrEqual(t, txt.Pos[1], pageBottom)
			assert.LessOrEqual(t, txt.Pos[1], pageTop)
		}
	}
	assert.Equal(t, "Invoice 0003", doc.Pages["1"].Content.Text[0].Value)
}

func TestPartyValue(t *testing.T) {
	assert.Equal(t, "Seller Ltd", partyValue("Seller Ltd"))
	assert.Equal(t, "", partyValue(nil))
	assert.Equal(t, "42", partyValue(float64(42)))
	assert.Equal(t, `{"iban":"DEF"}`, partyValue(map[string]any{"iban": "DEF"}))
}

func TestWithCurrency(t *testing.T) {
	assert.Equal(t, "12.35 EUR", withCurrency(decimal.RequireFromString("12.345"), "EUR"))
	assert.Equal(t, "1.00", withCurrency(decimal.NewFromInt(1), ""))
}
