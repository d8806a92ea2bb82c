// Package domain holds the order entity, its statuses, and the pricing rules
// applied when an order is placed.
package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
	StatusOnHold     Status = "on_hold"
)

var validStatuses = map[Status]struct{}{
	StatusPending: {}, StatusConfirmed: {}, StatusProcessing: {}, StatusShipped: {},
	StatusDelivered: {}, StatusCancelled: {}, StatusReturned: {}, StatusOnHold: {},
}

// ParseStatus returns the Status for s, or false if s is not an order status.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := validStatuses[st]
	return st, ok
}

// Terminal reports whether the courier will not move the order any further.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusReturned
}

// Region selects the delivery charge.
type Region string

const (
	RegionInside  Region = "inside"
	RegionOutside Region = "outside"
)

var deliveryCharges = map[Region]decimal.Decimal{
	RegionInside:  decimal.NewFromInt(70),
	RegionOutside: decimal.NewFromInt(130),
}

// ParseRegion returns the Region for s, or false if it is unknown.
func ParseRegion(s string) (Region, bool) {
	r := Region(s)
	_, ok := deliveryCharges[r]
	return r, ok
}

// DeliveryCharge is the flat courier fee for the region.
func (r Region) DeliveryCharge() decimal.Decimal {
	return deliveryCharges[r]
}

// Item is one order line. Price is captured when the order is placed and
// never follows later product price changes.
type Item struct {
	ProductID uuid.UUID       `json:"productId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a placed sales transaction. SteadfastID is set once the order
// has been handed to the courier.
type Order struct {
	ID                string
	ModeratorID       *uuid.UUID
	CustomerName      string
	CustomerPhone     string
	CustomerAddress   string
	Region            Region
	Items             []Item
	TotalAmount       decimal.Decimal
	DeliveryCharge    decimal.Decimal
	Discount          decimal.Decimal
	AdvanceAmount     decimal.Decimal
	GrandTotal        decimal.Decimal
	Status            Status
	Notes             string
	SteadfastID       *string
	CourierStatus     *string
	DispatchSimulated bool
	SuccessRate       *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Dispatched reports whether a consignment exists for the order.
func (o Order) Dispatched() bool {
	return o.SteadfastID != nil && *o.SteadfastID != ""
}

// Totals are the money fields derived from items and adjustments.
type Totals struct {
	Subtotal       decimal.Decimal
	DeliveryCharge decimal.Decimal
	Discount       decimal.Decimal
	Advance        decimal.Decimal
	GrandTotal     decimal.Decimal
}

// ComputeTotals prices an order. The grand total never goes below zero.
func ComputeTotals(items []Item, region Region, discount, advance decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	delivery := region.DeliveryCharge()
	grand := subtotal.Add(delivery).Sub(discount).Sub(advance)
	if grand.IsNegative() {
		grand = decimal.Zero
	}
	return Totals{
		Subtotal:       subtotal,
		DeliveryCharge: delivery,
		Discount:       discount,
		Advance:        advance,
		GrandTotal:     grand,
	}
}

// Apply copies the totals onto the order.
func (t Totals) Apply(o *Order) {
	o.TotalAmount = t.Subtotal
	o.DeliveryCharge = t.DeliveryCharge
	o.Discount = t.Discount
	o.AdvanceAmount = t.Advance
	o.GrandTotal = t.GrandTotal
}

var orderIDSpan = big.NewInt(900000)

// NewOrderID returns an id of the form ORD-NNNNNN.
func NewOrderID() string {
	n, err := rand.Int(rand.Reader, orderIDSpan)
	if err != nil {
		return fmt.Sprintf("ORD-%06d", 100000+time.Now().UnixNano()%900000)
	}
	return fmt.Sprintf("ORD-%d", 100000+n.Int64())
}

// NewCustomer marks a customer with no settled orders.
const NewCustomer = "New"

// SuccessRate is the delivered share of a customer's settled orders, as a
// whole percentage such as "75%". Orders still in flight do not count.
func SuccessRate(history []Order) string {
	var delivered, settled int
	for _, o := range history {
		switch o.Status {
		case StatusDelivered:
			delivered++
			settled++
		case StatusCancelled, StatusReturned:
			settled++
		}
	}
	if settled == 0 {
		return NewCustomer
	}
	return fmt.Sprintf("%d%%", (delivered*100+settled/2)/settled)
}
