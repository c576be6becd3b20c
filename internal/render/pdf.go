// Package render turns computed invoices into PDF documents.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-utils/internal/model"
)

var (
	// ErrNoStorage is returned when the invoice directory is missing
	ErrNoStorage = errors.New("no local storage available for invoices")
	// ErrStorageDenied is returned when the invoice cannot be written
	ErrStorageDenied = errors.New("insufficient rights to store invoice")
)

const (
	pageTop     = 800.0
	pageBottom  = 60.0
	lineHeight  = 14.0
	marginLeft  = 40.0
	fontName    = "Helvetica"
	fontBold    = "Helvetica-Bold"
	fontSize    = 9
	titleSize   = 16
	headingSize = 11
)

var itemColumns = []float64{40, 70, 250, 310, 380, 450, 520}

func init() {
	api.DisableConfigDir()
}

// FileName returns the PDF name of an invoice, YYYYMMDD-NNNN-invoice.pdf
func FileName(inv model.Invoice) string {
	return fmt.Sprintf("%s-%04d-invoice.pdf", inv.Header.Date.Format("20060102"), inv.Header.Number)
}

// Renderer lays out invoices with pdfcpu
type Renderer struct {
	conf *pdfmodel.Configuration
}

// NewRenderer creates a renderer with the default pdfcpu configuration
func NewRenderer() *Renderer {
	return &Renderer{conf: pdfmodel.NewDefaultConfiguration()}
}

// Render produces the PDF bytes of inv
func (r *Renderer) Render(inv model.Invoice) ([]byte, error) {
	desc, err := json.Marshal(layout(inv))
	if err != nil {
		return nil, fmt.Errorf("encode page layout: %w", err)
	}

	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(desc), &out, r.conf); err != nil {
		return nil, fmt.Errorf("create pdf: %w", err)
	}
	return out.Bytes(), nil
}

// Save writes content as name into dir. The directory must already exist.
func Save(dir, name string, content []byte) (string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", ErrNoStorage
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageDenied, err)
	}
	return path, nil
}

type document struct {
	Paper  string          `json:"paper"`
	Origin string          `json:"origin"`
	Pages  map[string]page `json:"pages"`
}

type page struct {
	Content content `json:"content"`
}

type content struct {
	Text []text `json:"text"`
}

type text struct {
	Value string    `json:"value"`
	Pos   []float64 `json:"pos"`
	Font  font      `json:"font"`
}

type font struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// pager places text lines top down and starts a new page when full
type pager struct {
	pages []content
	y     float64
}

func newPager() *pager {
	p := &pager{}
	p.newPage()
	return p
}

func (p *pager) newPage() {
	p.pages = append(p.pages, content{Text: []text{}})
	p.y = pageTop
}

func (p *pager) add(x float64, value, fontName string, size int) {
	if value == "" {
		return
	}
	current := &p.pages[len(p.pages)-1]
	current.Text = append(current.Text, text{
		Value: value,
		Pos:   []float64{x, p.y},
		Font:  font{Name: fontName, Size: size},
	})
}

func (p *pager) line(x float64, value, fontName string, size int) {
	p.add(x, value, fontName, size)
	p.next(1)
}

func (p *pager) row(values []string, fontName string) {
	for i, v := range values {
		p.add(itemColumns[i], v, fontName, fontSize)
	}
	p.next(1)
}

func (p *pager) next(lines float64) {
	p.y -= lines * lineHeight
	if p.y < pageBottom {
		p.newPage()
	}
}

func layout(inv model.Invoice) document {
	p := newPager()

	p.line(marginLeft, fmt.Sprintf("Invoice %04d", inv.Header.Number), fontBold, titleSize)
	p.line(marginLeft, "Date: "+inv.Header.Date.Format("2006-01-02"), fontName, fontSize)
	if main := inv.Header.Currency.Main; main != "" {
		p.line(marginLeft, "Currency: "+main, fontName, fontSize)
	}
	for _, er := range inv.Header.Currency.ExchangeRates {
		p.line(marginLeft, fmt.Sprintf("Exchange rate %s: %s", er.Symbol, er.Rate.String()), fontName, fontSize)
	}
	p.next(1)

	party(p, "Seller", inv.Header.Seller)
	party(p, "Buyer", inv.Header.Buyer)

	p.line(marginLeft, "Items", fontBold, headingSize)
	p.row([]string{"No", "Description", "Qty", "Unit price", "Price", "Taxes", "Total"}, fontBold)
	for _, item := range inv.Items {
		p.row([]string{
			strconv.Itoa(item.ItemNo),
			item.Text,
			item.Quantity.String(),
			amount(item.UnitPrice),
			amount(item.ItemPrice),
			amount(taxSum(item.Taxes)),
			withCurrency(item.ItemTotal, item.Currency),
		}, fontName)
		for _, line := range item.Extra.Currencies {
			p.row([]string{
				"",
				"  in " + line.Currency,
				"",
				amount(line.UnitPrice),
				amount(line.ItemPrice),
				amount(taxSum(line.Taxes)),
				withCurrency(line.ItemTotal, line.Currency),
			}, fontName)
		}
	}
	p.next(1)

	p.line(marginLeft, "Totals", fontBold, headingSize)
	totals(p, inv.Header.Currency.Main, inv.Totals.Price, inv.Totals.Total, inv.Totals.Taxes)
	for _, ct := range inv.Totals.Extra.Currencies {
		totals(p, ct.Currency, ct.Price, ct.Total, ct.Taxes)
	}

	doc := document{
		Paper:  "A4P",
		Origin: "LowerLeft",
		Pages:  make(map[string]page, len(p.pages)),
	}
	for i, c := range p.pages {
		doc.Pages[strconv.Itoa(i+1)] = page{Content: c}
	}
	return doc
}

func party(p *pager, title string, details model.Party) {
	if len(details) == 0 {
		return
	}
	p.line(marginLeft, title, fontBold, headingSize)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.line(marginLeft+10, fmt.Sprintf("%s: %s", k, partyValue(details[k])), fontName, fontSize)
	}
	p.next(1)
}

func partyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

func totals(p *pager, currency string, price, total decimal.Decimal, taxes []model.Tax) {
	p.line(marginLeft+10, "Price: "+withCurrency(price, currency), fontName, fontSize)
	for _, tax := range taxes {
		p.line(marginLeft+10, tax.Name+": "+withCurrency(tax.Value, currency), fontName, fontSize)
	}
	p.line(marginLeft+10, "Total: "+withCurrency(total, currency), fontBold, fontSize)
}

func taxSum(taxes []model.Tax) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range taxes {
		sum = sum.Add(t.Value)
	}
	return sum
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func withCurrency(d decimal.Decimal, currency string) string {
	if currency == "" {
		return amount(d)
	}
	return amount(d) + " " + currency
}
