// Package fxrate downloads and decodes the yearly BNR reference rate feed.
package fxrate

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the format of the cube date attribute
const DateLayout = "2006-01-02"

// BNR XML structures. Element names are matched regardless of namespace.
type dataSetXML struct {
	Cubes []cubeXML `xml:"Body>Cube"`
}

type cubeXML struct {
	Date  string    `xml:"date,attr"`
	Rates []rateXML `xml:"Rate"`
}

type rateXML struct {
	Currency   string `xml:"currency,attr"`
	Multiplier string `xml:"multiplier,attr"`
	Value      string `xml:",chardata"`
}

// Feed is one year of daily rate sets
type Feed struct {
	Cubes []Cube
}

// Cube is the set of rates published for one day
type Cube struct {
	Date  string
	Rates []Rate
}

// Rate is one currency quoted against RON. Value is the text published in
// the feed and is only parsed when the rate is looked up.
type Rate struct {
	Currency string
	Value    string
}

// RatesOn returns the cube published for date, formatted as YYYY-MM-DD.
// When the feed repeats a date the last cube wins.
func (f *Feed) RatesOn(date string) (*Cube, bool) {
	var found *Cube
	for i := range f.Cubes {
		if f.Cubes[i].Date == date {
			found = &f.Cubes[i]
		}
	}
	return found, found != nil
}

// Rate returns the rate quoted for symbol. The error is set when the quoted
// value is not a number.
func (c *Cube) Rate(symbol string) (decimal.Decimal, bool, error) {
	for _, r := range c.Rates {
		if r.Currency == symbol {
			value, err := decimal.NewFromString(r.Value)
			if err != nil {
				return decimal.Zero, true, fmt.Errorf("rate %s on %s: %w", symbol, c.Date, err)
			}
			return value, true, nil
		}
	}
	return decimal.Zero, false, nil
}

// ParseFeed decodes a BNR XML document
func ParseFeed(content []byte) (*Feed, error) {
	var doc dataSetXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	feed := &Feed{Cubes: make([]Cube, 0, len(doc.Cubes))}
	for _, c := range doc.Cubes {
		cube := Cube{
			Date:  strings.TrimSpace(c.Date),
			Rates: make([]Rate, 0, len(c.Rates)),
		}
		for _, r := range c.Rates {
			cube.Rates = append(cube.Rates, Rate{
				Currency: strings.TrimSpace(r.Currency),
				Value:    strings.TrimSpace(r.Value),
			})
		}
		feed.Cubes = append(feed.Cubes, cube)
	}
	return feed, nil
}

// EffectiveDate moves weekend dates back to the preceding Friday
func EffectiveDate(t time.Time) time.Time {
	// Monday=0 ... Sunday=6
	weekday := (int(t.Weekday()) + 6) % 7
	if offset := weekday - 4; offset > 0 {
		return t.AddDate(0, 0, -offset)
	}
	return t
}

// FormatDate formats t the way cube dates are written
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
