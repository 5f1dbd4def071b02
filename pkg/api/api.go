// Package api defines the wire messages of the tabby.v1.BillService.
//
// Messages are plain structs carried as JSON. Money and weights are
// decimal.Decimal, which encodes as a JSON string and decodes from either a
// string or a number, so no amount ever passes through float64.
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Item is a receipt line.
type Item struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Person is a participant.
type Person struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsPaid bool   `json:"is_paid,omitempty"`
}

// Share is a weighted claim of a person on an item.
type Share struct {
	ItemID   string          `json:"item_id"`
	PersonID string          `json:"person_id"`
	Weight   decimal.Decimal `json:"weight"`
}

// Charges are the bill-level pools. Split methods are "proportional" or
// "even"; discount and service fee splits default to proportional when empty.
type Charges struct {
	Tax                   decimal.Decimal `json:"tax"`
	Tip                   decimal.Decimal `json:"tip"`
	Discount              decimal.Decimal `json:"discount"`
	ServiceFee            decimal.Decimal `json:"service_fee"`
	TaxSplit              string          `json:"tax_split"`
	TipSplit              string          `json:"tip_split"`
	DiscountSplit         string          `json:"discount_split,omitempty"`
	ServiceFeeSplit       string          `json:"service_fee_split,omitempty"`
	IncludeZeroItemPeople bool            `json:"include_zero_item_people,omitempty"`
}

// Options select the computation policies. Empty fields take the server's
// configured defaults.
type Options struct {
	UnassignedPolicy string `json:"unassigned_policy,omitempty"`
	ReferenceMode    string `json:"reference_mode,omitempty"`
}

// Bill is a stored bill.
type Bill struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	ShareToken string   `json:"share_token"`
	PayerID    string   `json:"payer_id,omitempty"`
	Items      []Item   `json:"items"`
	People     []Person `json:"people"`
	Shares     []Share  `json:"shares"`
	Charges    Charges  `json:"charges"`
	CreatedAt  int64    `json:"created_at"`
	UpdatedAt  int64    `json:"updated_at"`
}

// BillHeader is the list view of a bill.
type BillHeader struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type PersonItem struct {
	ItemID string          `json:"item_id"`
	Label  string          `json:"label"`
	Weight decimal.Decimal `json:"weight"`
	Amount decimal.Decimal `json:"amount"`
}

// PersonTotal is one person's breakdown. Components are unrounded; Total is
// rounded to cents.
type PersonTotal struct {
	PersonID        string          `json:"person_id"`
	Name            string          `json:"name"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountShare   decimal.Decimal `json:"discount_share"`
	ServiceFeeShare decimal.Decimal `json:"service_fee_share"`
	TaxShare        decimal.Decimal `json:"tax_share"`
	TipShare        decimal.Decimal `json:"tip_share"`
	Total           decimal.Decimal `json:"total"`
	Items           []PersonItem    `json:"items"`
}

// Totals is the computed result for a bill.
type Totals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	Tax              decimal.Decimal `json:"tax"`
	Tip              decimal.Decimal `json:"tip"`
	Discount         decimal.Decimal `json:"discount"`
	ServiceFee       decimal.Decimal `json:"service_fee"`
	Total            decimal.Decimal `json:"total"`
	Unallocated      decimal.Decimal `json:"unallocated"`
	Adjustment       decimal.Decimal `json:"adjustment"`
	AdjustedPersonID string          `json:"adjusted_person_id,omitempty"`
	IgnoredShares    int             `json:"ignored_shares,omitempty"`
	PersonTotals     []PersonTotal   `json:"person_totals"`
}

type SummaryLine struct {
	PersonID string          `json:"person_id"`
	Name     string          `json:"name"`
	Total    decimal.Decimal `json:"total"`
	IsPaid   bool            `json:"is_paid"`
}

type Debt struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary is the shareable read-only view of a bill.
type Summary struct {
	Title       string          `json:"title"`
	Total       decimal.Decimal `json:"total"`
	Unallocated decimal.Decimal `json:"unallocated"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Lines       []SummaryLine   `json:"lines"`
	Debts       []Debt          `json:"debts"`
	Text        string          `json:"text"`
}

// BillResponse is returned by every call that reads or changes one bill.
type BillResponse struct {
	Bill   *Bill   `json:"bill"`
	Totals *Totals `json:"totals"`
}

type ComputeTotalsRequest struct {
	Items   []Item   `json:"items"`
	People  []Person `json:"people"`
	Shares  []Share  `json:"shares"`
	Charges Charges  `json:"charges"`
	Options Options  `json:"options"`
}

type ComputeTotalsResponse struct {
	Totals *Totals `json:"totals"`
}

type CreateBillRequest struct {
	Title   string   `json:"title"`
	Items   []Item   `json:"items"`
	People  []Person `json:"people"`
	Shares  []Share  `json:"shares"`
	Charges Charges  `json:"charges"`
	PayerID string   `json:"payer_id,omitempty"`
}

// ImportReceiptRequest creates a bill from extracted receipt data. Receipt
// is either {"parsed": {...}} or the flat {"items": [...], "tax": ...} shape.
type ImportReceiptRequest struct {
	Title   string          `json:"title"`
	People  []Person        `json:"people"`
	Receipt json.RawMessage `json:"receipt"`
}

type ImportReceiptResponse struct {
	Bill   *Bill   `json:"bill"`
	Totals *Totals `json:"totals"`

	// SubtotalGap is the printed subtotal minus the item sum.
	SubtotalGap decimal.Decimal `json:"subtotal_gap"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type GetSharedSummaryRequest struct {
	ShareToken string `json:"share_token"`
}

type GetSharedSummaryResponse struct {
	Summary *Summary `json:"summary"`
}

type ListBillsRequest struct{}

type ListBillsResponse struct {
	Bills []BillHeader `json:"bills"`
}

type DeleteBillRequest struct {
	BillID string `json:"bill_id"`
}

type DeleteBillResponse struct{}

// UpdateBillRequest changes only the fields that are set.
type UpdateBillRequest struct {
	BillID  string  `json:"bill_id"`
	Title   *string `json:"title,omitempty"`
	PayerID *string `json:"payer_id,omitempty"`
}

type UpdateChargesRequest struct {
	BillID  string  `json:"bill_id"`
	Charges Charges `json:"charges"`
}

type AddPersonRequest struct {
	BillID string `json:"bill_id"`
	Person Person `json:"person"`
}

type RemovePersonRequest struct {
	BillID   string `json:"bill_id"`
	PersonID string `json:"person_id"`
}

type SetPersonPaidRequest struct {
	BillID   string `json:"bill_id"`
	PersonID string `json:"person_id"`
	IsPaid   bool   `json:"is_paid"`
}

type AddItemRequest struct {
	BillID string `json:"bill_id"`
	Item   Item   `json:"item"`
}

type UpdateItemRequest struct {
	BillID string `json:"bill_id"`
	Item   Item   `json:"item"`
}

type RemoveItemRequest struct {
	BillID string `json:"bill_id"`
	ItemID string `json:"item_id"`
}

type SetShareRequest struct {
	BillID string `json:"bill_id"`
	Share  Share  `json:"share"`
}

type RemoveShareRequest struct {
	BillID   string `json:"bill_id"`
	ItemID   string `json:"item_id"`
	PersonID string `json:"person_id"`
}
