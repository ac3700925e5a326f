package customs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMissingCustomsData marks an order whose products lack the fields a
// customs document legally requires. It is a hard failure: no document is
// generated and no upload is attempted.
var ErrMissingCustomsData = errors.New("missing customs data")

// Line is one itemized row of a customs document.
type Line struct {
	Description   string
	HSCode        string
	OriginCountry string
	Quantity      int
	UnitValue     decimal.Decimal
	WeightKG      float64
}

// TotalValue is quantity times unit value.
func (l Line) TotalValue() decimal.Decimal {
	return l.UnitValue.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Validate reports the first missing required field.
func (l Line) Validate() error {
	switch {
	case strings.TrimSpace(l.Description) == "":
		return fmt.Errorf("%w: description", ErrMissingCustomsData)
	case strings.TrimSpace(l.HSCode) == "":
		return fmt.Errorf("%w: hs code for %q", ErrMissingCustomsData, l.Description)
	case strings.TrimSpace(l.OriginCountry) == "":
		return fmt.Errorf("%w: origin country for %q", ErrMissingCustomsData, l.Description)
	case l.Quantity <= 0:
		return fmt.Errorf("%w: quantity for %q", ErrMissingCustomsData, l.Description)
	case l.UnitValue.LessThanOrEqual(decimal.Zero):
		return fmt.Errorf("%w: unit value for %q", ErrMissingCustomsData, l.Description)
	}
	return nil
}

// Party is one side of the shipment as printed on the documents.
type Party struct {
	Name    string
	Street  string
	City    string
	Country string
}

// Document is everything the renderer needs for one order.
type Document struct {
	OrderName string
	Tracking  string
	Reference string
	Date      time.Time
	Sender    Party
	Receiver  Party
	Currency  string
	Lines     []Line
}

// Validate checks every line; the first missing field fails the whole
// document.
func (d *Document) Validate() error {
	if len(d.Lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrMissingCustomsData)
	}
	for _, line := range d.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TotalValue sums all line totals.
func (d *Document) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.TotalValue())
	}
	return total
}

// TotalWeightKG sums line weights.
func (d *Document) TotalWeightKG() float64 {
	var total float64
	for _, line := range d.Lines {
		total += line.WeightKG
	}
	return total
}
