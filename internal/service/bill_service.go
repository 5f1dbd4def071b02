package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/tabby/internal/calculator"
	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/receipt"
	"github.com/mmynk/tabby/internal/storage"
	"github.com/mmynk/tabby/pkg/api"
	"github.com/mmynk/tabby/pkg/api/apiconnect"
)

// BillService implements the Connect BillService.
type BillService struct {
	apiconnect.UnimplementedBillServiceHandler
	store    storage.Store
	defaults calculator.Options
	now      func() time.Time
}

// NewBillService creates a BillService on the given storage backend. defaults
// applies to stored bills and to ComputeTotals requests that leave options unset.
func NewBillService(store storage.Store, defaults calculator.Options) *BillService {
	return &BillService{store: store, defaults: defaults, now: time.Now}
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(op string, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, models.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, calculator.ErrReference), errors.Is(err, calculator.ErrEmptyParticipants):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	}

	if code == connect.CodeInternal {
		slog.Error(op+" failed", "error", err)
	} else {
		slog.Debug(op+" rejected", "code", code, "error", err)
	}
	return connect.NewError(code, err)
}

func requireID(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", models.ErrValidation, field)
	}
	return nil
}

// computeStored computes totals of a stored bill. A bill that has items but
// nobody on it yet has no totals; that is not an error while it is being built.
func (s *BillService) computeStored(bill *models.Bill) (*calculator.BillTotals, error) {
	totals, err := calculator.ComputeTotals(bill.Items, bill.Shares, bill.People, bill.Charges, s.defaults)
	if errors.Is(err, calculator.ErrEmptyParticipants) {
		return nil, nil
	}
	return totals, err
}

// billResponse reloads a bill and attaches fresh totals.
func (s *BillService) billResponse(ctx context.Context, op, billID string) (*connect.Response[api.BillResponse], error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	totals, err := s.computeStored(bill)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return connect.NewResponse(&api.BillResponse{
		Bill:   billToAPI(bill),
		Totals: TotalsToAPI(totals),
	}), nil
}

// ComputeTotals computes totals for an ad-hoc bill without storing it.
func (s *BillService) ComputeTotals(ctx context.Context, req *connect.Request[api.ComputeTotalsRequest]) (*connect.Response[api.ComputeTotalsResponse], error) {
	opts, err := optionsFromAPI(req.Msg.Options, s.defaults)
	if err != nil {
		return nil, toConnectError("ComputeTotals", err)
	}
	charges, err := chargesFromAPI(req.Msg.Charges)
	if err != nil {
		return nil, toConnectError("ComputeTotals", err)
	}

	slog.Debug("Computing totals",
		"items", len(req.Msg.Items),
		"people", len(req.Msg.People),
		"shares", len(req.Msg.Shares),
		"unassigned", opts.Unassigned,
		"references", opts.References,
	)
	totals, err := calculator.ComputeTotals(
		itemsFromAPI(req.Msg.Items),
		sharesFromAPI(req.Msg.Shares),
		peopleFromAPI(req.Msg.People),
		charges,
		opts,
	)
	if err != nil {
		return nil, toConnectError("ComputeTotals", err)
	}
	return connect.NewResponse(&api.ComputeTotalsResponse{Totals: TotalsToAPI(totals)}), nil
}

// prepareBill fills in missing IDs and the title, then validates the bill as a whole.
func (s *BillService) prepareBill(bill *models.Bill) error {
	for i := range bill.Items {
		if bill.Items[i].ID == "" {
			bill.Items[i].ID = uuid.New().String()
		}
	}
	for i := range bill.People {
		if bill.People[i].ID == "" {
			bill.People[i].ID = uuid.New().String()
		}
	}
	seen := make(map[[2]string]bool, len(bill.Shares))
	for _, sh := range bill.Shares {
		key := [2]string{sh.ItemID, sh.PersonID}
		if seen[key] {
			return fmt.Errorf("%w: duplicate share of %q by %q", models.ErrValidation, sh.ItemID, sh.PersonID)
		}
		seen[key] = true
	}
	if len(bill.People) == 0 && len(bill.Shares) > 0 {
		return fmt.Errorf("%w: %d shares but no people", calculator.ErrReference, len(bill.Shares))
	}
	if bill.PayerID != "" {
		if _, ok := bill.Person(bill.PayerID); !ok {
			return fmt.Errorf("%w: payer_id %q must be one of the people", models.ErrValidation, bill.PayerID)
		}
	}
	if bill.Title == "" {
		bill.Title = models.DefaultTitle(bill.People, s.now())
	}

	// Stored bills are always computed strictly; catch bad data before it is saved.
	_, err := s.computeStored(bill)
	return err
}

func (s *BillService) createBill(ctx context.Context, op string, bill *models.Bill) (*calculator.BillTotals, error) {
	if err := s.prepareBill(bill); err != nil {
		return nil, toConnectError(op, err)
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, toConnectError(op, err)
	}
	slog.Info("Bill created", "bill_id", bill.ID, "title", bill.Title, "items", len(bill.Items), "people", len(bill.People))

	totals, err := s.computeStored(bill)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return totals, nil
}

// CreateBill validates and persists a new bill.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.BillResponse], error) {
	charges, err := chargesFromAPI(req.Msg.Charges)
	if err != nil {
		return nil, toConnectError("CreateBill", err)
	}
	bill := &models.Bill{
		Title:   req.Msg.Title,
		Items:   itemsFromAPI(req.Msg.Items),
		People:  peopleFromAPI(req.Msg.People),
		Shares:  sharesFromAPI(req.Msg.Shares),
		Charges: charges,
		PayerID: req.Msg.PayerID,
	}

	totals, err := s.createBill(ctx, "CreateBill", bill)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.BillResponse{
		Bill:   billToAPI(bill),
		Totals: TotalsToAPI(totals),
	}), nil
}

// ImportReceipt creates a bill from extracted receipt data.
func (s *BillService) ImportReceipt(ctx context.Context, req *connect.Request[api.ImportReceiptRequest]) (*connect.Response[api.ImportReceiptResponse], error) {
	if len(req.Msg.Receipt) == 0 {
		return nil, toConnectError("ImportReceipt", fmt.Errorf("%w: receipt is required", models.ErrValidation))
	}
	draft, err := receipt.Decode(req.Msg.Receipt)
	if err != nil {
		return nil, toConnectError("ImportReceipt", err)
	}
	slog.Debug("Receipt decoded", "kind", draft.Kind, "items", len(draft.Items), "subtotal_gap", draft.SubtotalGap)

	bill := &models.Bill{
		Title:   req.Msg.Title,
		Items:   draft.Items,
		People:  peopleFromAPI(req.Msg.People),
		Charges: draft.Charges,
	}
	totals, err := s.createBill(ctx, "ImportReceipt", bill)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ImportReceiptResponse{
		Bill:        billToAPI(bill),
		Totals:      TotalsToAPI(totals),
		SubtotalGap: draft.SubtotalGap,
	}), nil
}

// GetBill returns a stored bill with its totals.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("GetBill", err)
	}
	return s.billResponse(ctx, "GetBill", req.Msg.BillID)
}

// GetSharedSummary returns the read-only summary behind a share link.
func (s *BillService) GetSharedSummary(ctx context.Context, req *connect.Request[api.GetSharedSummaryRequest]) (*connect.Response[api.GetSharedSummaryResponse], error) {
	if err := requireID("share_token", req.Msg.ShareToken); err != nil {
		return nil, toConnectError("GetSharedSummary", err)
	}
	bill, err := s.store.GetBillByToken(ctx, req.Msg.ShareToken)
	if err != nil {
		return nil, toConnectError("GetSharedSummary", err)
	}
	totals, err := s.computeStored(bill)
	if err != nil {
		return nil, toConnectError("GetSharedSummary", err)
	}
	if totals == nil {
		totals = calculator.UnclaimedTotals(bill.Items, bill.Charges)
	}
	summary, err := calculator.Summarize(bill, totals)
	if err != nil {
		return nil, toConnectError("GetSharedSummary", err)
	}
	return connect.NewResponse(&api.GetSharedSummaryResponse{Summary: SummaryToAPI(summary)}), nil
}

// ListBills lists bill headers, newest first.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, toConnectError("ListBills", err)
	}
	headers := make([]api.BillHeader, len(bills))
	for i, b := range bills {
		headers[i] = api.BillHeader{ID: b.ID, Title: b.Title, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
	}
	return connect.NewResponse(&api.ListBillsResponse{Bills: headers}), nil
}

// DeleteBill removes a bill.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("DeleteBill", err)
	}
	if err := s.store.DeleteBill(ctx, req.Msg.BillID); err != nil {
		return nil, toConnectError("DeleteBill", err)
	}
	slog.Info("Bill deleted", "bill_id", req.Msg.BillID)
	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}

// UpdateBill changes the title and/or payer.
func (s *BillService) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("UpdateBill", err)
	}
	bill, err := s.store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError("UpdateBill", err)
	}

	if req.Msg.Title != nil {
		bill.Title = *req.Msg.Title
		if bill.Title == "" {
			bill.Title = models.DefaultTitle(bill.People, s.now())
		}
	}
	if req.Msg.PayerID != nil {
		payer := *req.Msg.PayerID
		if _, ok := bill.Person(payer); payer != "" && !ok {
			return nil, toConnectError("UpdateBill",
				fmt.Errorf("%w: payer_id %q must be one of the people", models.ErrValidation, payer))
		}
		bill.PayerID = payer
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, toConnectError("UpdateBill", err)
	}
	return s.billResponse(ctx, "UpdateBill", bill.ID)
}

// UpdateCharges replaces the bill-level pools and split selections.
func (s *BillService) UpdateCharges(ctx context.Context, req *connect.Request[api.UpdateChargesRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("UpdateCharges", err)
	}
	charges, err := chargesFromAPI(req.Msg.Charges)
	if err != nil {
		return nil, toConnectError("UpdateCharges", err)
	}
	if err := s.store.UpdateCharges(ctx, req.Msg.BillID, charges); err != nil {
		return nil, toConnectError("UpdateCharges", err)
	}
	return s.billResponse(ctx, "UpdateCharges", req.Msg.BillID)
}

// AddPerson adds a participant. The ID is generated when not given.
func (s *BillService) AddPerson(ctx context.Context, req *connect.Request[api.AddPersonRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("AddPerson", err)
	}
	person := models.Person{ID: req.Msg.Person.ID, Name: req.Msg.Person.Name, IsPaid: req.Msg.Person.IsPaid}
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	if err := s.store.AddPerson(ctx, req.Msg.BillID, &person); err != nil {
		return nil, toConnectError("AddPerson", err)
	}
	return s.billResponse(ctx, "AddPerson", req.Msg.BillID)
}

// RemovePerson removes a participant and their shares.
func (s *BillService) RemovePerson(ctx context.Context, req *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("RemovePerson", err)
	}
	if err := requireID("person_id", req.Msg.PersonID); err != nil {
		return nil, toConnectError("RemovePerson", err)
	}
	if err := s.store.RemovePerson(ctx, req.Msg.BillID, req.Msg.PersonID); err != nil {
		return nil, toConnectError("RemovePerson", err)
	}
	return s.billResponse(ctx, "RemovePerson", req.Msg.BillID)
}

// SetPersonPaid flips a participant's paid flag. Totals do not change.
func (s *BillService) SetPersonPaid(ctx context.Context, req *connect.Request[api.SetPersonPaidRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("SetPersonPaid", err)
	}
	if err := requireID("person_id", req.Msg.PersonID); err != nil {
		return nil, toConnectError("SetPersonPaid", err)
	}
	if err := s.store.SetPersonPaid(ctx, req.Msg.BillID, req.Msg.PersonID, req.Msg.IsPaid); err != nil {
		return nil, toConnectError("SetPersonPaid", err)
	}
	return s.billResponse(ctx, "SetPersonPaid", req.Msg.BillID)
}

// AddItem adds a line item. The ID is generated when not given.
func (s *BillService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("AddItem", err)
	}
	item := itemFromAPI(req.Msg.Item)
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := item.Validate(); err != nil {
		return nil, toConnectError("AddItem", err)
	}
	if err := s.store.AddItem(ctx, req.Msg.BillID, &item); err != nil {
		return nil, toConnectError("AddItem", err)
	}
	return s.billResponse(ctx, "AddItem", req.Msg.BillID)
}

// UpdateItem replaces an item's label, price and quantity. Shares are kept.
func (s *BillService) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("UpdateItem", err)
	}
	item := itemFromAPI(req.Msg.Item)
	if err := item.Validate(); err != nil {
		return nil, toConnectError("UpdateItem", err)
	}
	if err := s.store.UpdateItem(ctx, req.Msg.BillID, &item); err != nil {
		return nil, toConnectError("UpdateItem", err)
	}
	return s.billResponse(ctx, "UpdateItem", req.Msg.BillID)
}

// RemoveItem removes an item and its shares.
func (s *BillService) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("RemoveItem", err)
	}
	if err := requireID("item_id", req.Msg.ItemID); err != nil {
		return nil, toConnectError("RemoveItem", err)
	}
	if err := s.store.RemoveItem(ctx, req.Msg.BillID, req.Msg.ItemID); err != nil {
		return nil, toConnectError("RemoveItem", err)
	}
	return s.billResponse(ctx, "RemoveItem", req.Msg.BillID)
}

// SetShare creates a share or changes its weight.
func (s *BillService) SetShare(ctx context.Context, req *connect.Request[api.SetShareRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("SetShare", err)
	}
	share := shareFromAPI(req.Msg.Share)
	if err := share.Validate(); err != nil {
		return nil, toConnectError("SetShare", err)
	}
	if err := s.store.SetShare(ctx, req.Msg.BillID, share); err != nil {
		return nil, toConnectError("SetShare", err)
	}
	return s.billResponse(ctx, "SetShare", req.Msg.BillID)
}

// RemoveShare deletes one share.
func (s *BillService) RemoveShare(ctx context.Context, req *connect.Request[api.RemoveShareRequest]) (*connect.Response[api.BillResponse], error) {
	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, toConnectError("RemoveShare", err)
	}
	if err := s.store.RemoveShare(ctx, req.Msg.BillID, req.Msg.ItemID, req.Msg.PersonID); err != nil {
		return nil, toConnectError("RemoveShare", err)
	}
	return s.billResponse(ctx, "RemoveShare", req.Msg.BillID)
}
