// Package apiconnect wires the tabby.v1.BillService messages to Connect
// handlers and clients using the JSON codec from package api.
package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tabby/pkg/api"
)

// BillServiceName is the fully-qualified name of the BillService service.
const BillServiceName = "tabby.v1.BillService"

// Procedure paths, usable to tell requests apart in interceptors and
// middleware.
const (
	BillServiceComputeTotalsProcedure    = "/" + BillServiceName + "/ComputeTotals"
	BillServiceCreateBillProcedure       = "/" + BillServiceName + "/CreateBill"
	BillServiceImportReceiptProcedure    = "/" + BillServiceName + "/ImportReceipt"
	BillServiceGetBillProcedure          = "/" + BillServiceName + "/GetBill"
	BillServiceGetSharedSummaryProcedure = "/" + BillServiceName + "/GetSharedSummary"
	BillServiceListBillsProcedure        = "/" + BillServiceName + "/ListBills"
	BillServiceDeleteBillProcedure       = "/" + BillServiceName + "/DeleteBill"
	BillServiceUpdateBillProcedure       = "/" + BillServiceName + "/UpdateBill"
	BillServiceUpdateChargesProcedure    = "/" + BillServiceName + "/UpdateCharges"
	BillServiceAddPersonProcedure        = "/" + BillServiceName + "/AddPerson"
	BillServiceRemovePersonProcedure     = "/" + BillServiceName + "/RemovePerson"
	BillServiceSetPersonPaidProcedure    = "/" + BillServiceName + "/SetPersonPaid"
	BillServiceAddItemProcedure          = "/" + BillServiceName + "/AddItem"
	BillServiceUpdateItemProcedure       = "/" + BillServiceName + "/UpdateItem"
	BillServiceRemoveItemProcedure       = "/" + BillServiceName + "/RemoveItem"
	BillServiceSetShareProcedure         = "/" + BillServiceName + "/SetShare"
	BillServiceRemoveShareProcedure      = "/" + BillServiceName + "/RemoveShare"
)

// BillServiceHandler is implemented by the server.
type BillServiceHandler interface {
	ComputeTotals(context.Context, *connect.Request[api.ComputeTotalsRequest]) (*connect.Response[api.ComputeTotalsResponse], error)
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.BillResponse], error)
	ImportReceipt(context.Context, *connect.Request[api.ImportReceiptRequest]) (*connect.Response[api.ImportReceiptResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.BillResponse], error)
	GetSharedSummary(context.Context, *connect.Request[api.GetSharedSummaryRequest]) (*connect.Response[api.GetSharedSummaryResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.BillResponse], error)
	UpdateCharges(context.Context, *connect.Request[api.UpdateChargesRequest]) (*connect.Response[api.BillResponse], error)
	AddPerson(context.Context, *connect.Request[api.AddPersonRequest]) (*connect.Response[api.BillResponse], error)
	RemovePerson(context.Context, *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.BillResponse], error)
	SetPersonPaid(context.Context, *connect.Request[api.SetPersonPaidRequest]) (*connect.Response[api.BillResponse], error)
	AddItem(context.Context, *connect.Request[api.AddItemRequest]) (*connect.Response[api.BillResponse], error)
	UpdateItem(context.Context, *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.BillResponse], error)
	RemoveItem(context.Context, *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.BillResponse], error)
	SetShare(context.Context, *connect.Request[api.SetShareRequest]) (*connect.Response[api.BillResponse], error)
	RemoveShare(context.Context, *connect.Request[api.RemoveShareRequest]) (*connect.Response[api.BillResponse], error)
}

// NewBillServiceHandler builds an HTTP handler serving every procedure. It
// returns the path to mount the handler on.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	handlers := map[string]http.Handler{
		BillServiceComputeTotalsProcedure:    connect.NewUnaryHandler(BillServiceComputeTotalsProcedure, svc.ComputeTotals, opts...),
		BillServiceCreateBillProcedure:       connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...),
		BillServiceImportReceiptProcedure:    connect.NewUnaryHandler(BillServiceImportReceiptProcedure, svc.ImportReceipt, opts...),
		BillServiceGetBillProcedure:          connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...),
		BillServiceGetSharedSummaryProcedure: connect.NewUnaryHandler(BillServiceGetSharedSummaryProcedure, svc.GetSharedSummary, opts...),
		BillServiceListBillsProcedure:        connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...),
		BillServiceDeleteBillProcedure:       connect.NewUnaryHandler(BillServiceDeleteBillProcedure, svc.DeleteBill, opts...),
		BillServiceUpdateBillProcedure:       connect.NewUnaryHandler(BillServiceUpdateBillProcedure, svc.UpdateBill, opts...),
		BillServiceUpdateChargesProcedure:    connect.NewUnaryHandler(BillServiceUpdateChargesProcedure, svc.UpdateCharges, opts...),
		BillServiceAddPersonProcedure:        connect.NewUnaryHandler(BillServiceAddPersonProcedure, svc.AddPerson, opts...),
		BillServiceRemovePersonProcedure:     connect.NewUnaryHandler(BillServiceRemovePersonProcedure, svc.RemovePerson, opts...),
		BillServiceSetPersonPaidProcedure:    connect.NewUnaryHandler(BillServiceSetPersonPaidProcedure, svc.SetPersonPaid, opts...),
		BillServiceAddItemProcedure:          connect.NewUnaryHandler(BillServiceAddItemProcedure, svc.AddItem, opts...),
		BillServiceUpdateItemProcedure:       connect.NewUnaryHandler(BillServiceUpdateItemProcedure, svc.UpdateItem, opts...),
		BillServiceRemoveItemProcedure:       connect.NewUnaryHandler(BillServiceRemoveItemProcedure, svc.RemoveItem, opts...),
		BillServiceSetShareProcedure:         connect.NewUnaryHandler(BillServiceSetShareProcedure, svc.SetShare, opts...),
		BillServiceRemoveShareProcedure:      connect.NewUnaryHandler(BillServiceRemoveShareProcedure, svc.RemoveShare, opts...),
	}
	return "/" + BillServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// UnimplementedBillServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedBillServiceHandler struct{}

func (UnimplementedBillServiceHandler) ComputeTotals(context.Context, *connect.Request[api.ComputeTotalsRequest]) (*connect.Response[api.ComputeTotalsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.ComputeTotals is not implemented"))
}

func (UnimplementedBillServiceHandler) CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.CreateBill is not implemented"))
}

func (UnimplementedBillServiceHandler) ImportReceipt(context.Context, *connect.Request[api.ImportReceiptRequest]) (*connect.Response[api.ImportReceiptResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.ImportReceipt is not implemented"))
}

func (UnimplementedBillServiceHandler) GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.GetBill is not implemented"))
}

func (UnimplementedBillServiceHandler) GetSharedSummary(context.Context, *connect.Request[api.GetSharedSummaryRequest]) (*connect.Response[api.GetSharedSummaryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.GetSharedSummary is not implemented"))
}

func (UnimplementedBillServiceHandler) ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.ListBills is not implemented"))
}

func (UnimplementedBillServiceHandler) DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.DeleteBill is not implemented"))
}

func (UnimplementedBillServiceHandler) UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.UpdateBill is not implemented"))
}

func (UnimplementedBillServiceHandler) UpdateCharges(context.Context, *connect.Request[api.UpdateChargesRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.UpdateCharges is not implemented"))
}

func (UnimplementedBillServiceHandler) AddPerson(context.Context, *connect.Request[api.AddPersonRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.AddPerson is not implemented"))
}

func (UnimplementedBillServiceHandler) RemovePerson(context.Context, *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.RemovePerson is not implemented"))
}

func (UnimplementedBillServiceHandler) SetPersonPaid(context.Context, *connect.Request[api.SetPersonPaidRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.SetPersonPaid is not implemented"))
}

func (UnimplementedBillServiceHandler) AddItem(context.Context, *connect.Request[api.AddItemRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.AddItem is not implemented"))
}

func (UnimplementedBillServiceHandler) UpdateItem(context.Context, *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.UpdateItem is not implemented"))
}

func (UnimplementedBillServiceHandler) RemoveItem(context.Context, *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.RemoveItem is not implemented"))
}

func (UnimplementedBillServiceHandler) SetShare(context.Context, *connect.Request[api.SetShareRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.SetShare is not implemented"))
}

func (UnimplementedBillServiceHandler) RemoveShare(context.Context, *connect.Request[api.RemoveShareRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("tabby.v1.BillService.RemoveShare is not implemented"))
}

// BillServiceClient is a client for the tabby.v1.BillService service.
type BillServiceClient interface {
	ComputeTotals(context.Context, *connect.Request[api.ComputeTotalsRequest]) (*connect.Response[api.ComputeTotalsResponse], error)
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.BillResponse], error)
	ImportReceipt(context.Context, *connect.Request[api.ImportReceiptRequest]) (*connect.Response[api.ImportReceiptResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.BillResponse], error)
	GetSharedSummary(context.Context, *connect.Request[api.GetSharedSummaryRequest]) (*connect.Response[api.GetSharedSummaryResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.BillResponse], error)
	UpdateCharges(context.Context, *connect.Request[api.UpdateChargesRequest]) (*connect.Response[api.BillResponse], error)
	AddPerson(context.Context, *connect.Request[api.AddPersonRequest]) (*connect.Response[api.BillResponse], error)
	RemovePerson(context.Context, *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.BillResponse], error)
	SetPersonPaid(context.Context, *connect.Request[api.SetPersonPaidRequest]) (*connect.Response[api.BillResponse], error)
	AddItem(context.Context, *connect.Request[api.AddItemRequest]) (*connect.Response[api.BillResponse], error)
	UpdateItem(context.Context, *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.BillResponse], error)
	RemoveItem(context.Context, *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.BillResponse], error)
	SetShare(context.Context, *connect.Request[api.SetShareRequest]) (*connect.Response[api.BillResponse], error)
	RemoveShare(context.Context, *connect.Request[api.RemoveShareRequest]) (*connect.Response[api.BillResponse], error)
}

// NewBillServiceClient constructs a client for the service at baseURL, e.g.
// http://localhost:8080.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &billServiceClient{
		computeTotals:    connect.NewClient[api.ComputeTotalsRequest, api.ComputeTotalsResponse](httpClient, baseURL+BillServiceComputeTotalsProcedure, opts...),
		createBill:       connect.NewClient[api.CreateBillRequest, api.BillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		importReceipt:    connect.NewClient[api.ImportReceiptRequest, api.ImportReceiptResponse](httpClient, baseURL+BillServiceImportReceiptProcedure, opts...),
		getBill:          connect.NewClient[api.GetBillRequest, api.BillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		getSharedSummary: connect.NewClient[api.GetSharedSummaryRequest, api.GetSharedSummaryResponse](httpClient, baseURL+BillServiceGetSharedSummaryProcedure, opts...),
		listBills:        connect.NewClient[api.ListBillsRequest, api.ListBillsResponse](httpClient, baseURL+BillServiceListBillsProcedure, opts...),
		deleteBill:       connect.NewClient[api.DeleteBillRequest, api.DeleteBillResponse](httpClient, baseURL+BillServiceDeleteBillProcedure, opts...),
		updateBill:       connect.NewClient[api.UpdateBillRequest, api.BillResponse](httpClient, baseURL+BillServiceUpdateBillProcedure, opts...),
		updateCharges:    connect.NewClient[api.UpdateChargesRequest, api.BillResponse](httpClient, baseURL+BillServiceUpdateChargesProcedure, opts...),
		addPerson:        connect.NewClient[api.AddPersonRequest, api.BillResponse](httpClient, baseURL+BillServiceAddPersonProcedure, opts...),
		removePerson:     connect.NewClient[api.RemovePersonRequest, api.BillResponse](httpClient, baseURL+BillServiceRemovePersonProcedure, opts...),
		setPersonPaid:    connect.NewClient[api.SetPersonPaidRequest, api.BillResponse](httpClient, baseURL+BillServiceSetPersonPaidProcedure, opts...),
		addItem:          connect.NewClient[api.AddItemRequest, api.BillResponse](httpClient, baseURL+BillServiceAddItemProcedure, opts...),
		updateItem:       connect.NewClient[api.UpdateItemRequest, api.BillResponse](httpClient, baseURL+BillServiceUpdateItemProcedure, opts...),
		removeItem:       connect.NewClient[api.RemoveItemRequest, api.BillResponse](httpClient, baseURL+BillServiceRemoveItemProcedure, opts...),
		setShare:         connect.NewClient[api.SetShareRequest, api.BillResponse](httpClient, baseURL+BillServiceSetShareProcedure, opts...),
		removeShare:      connect.NewClient[api.RemoveShareRequest, api.BillResponse](httpClient, baseURL+BillServiceRemoveShareProcedure, opts...),
	}
}

type billServiceClient struct {
	computeTotals    *connect.Client[api.ComputeTotalsRequest, api.ComputeTotalsResponse]
	createBill       *connect.Client[api.CreateBillRequest, api.BillResponse]
	importReceipt    *connect.Client[api.ImportReceiptRequest, api.ImportReceiptResponse]
	getBill          *connect.Client[api.GetBillRequest, api.BillResponse]
	getSharedSummary *connect.Client[api.GetSharedSummaryRequest, api.GetSharedSummaryResponse]
	listBills        *connect.Client[api.ListBillsRequest, api.ListBillsResponse]
	deleteBill       *connect.Client[api.DeleteBillRequest, api.DeleteBillResponse]
	updateBill       *connect.Client[api.UpdateBillRequest, api.BillResponse]
	updateCharges    *connect.Client[api.UpdateChargesRequest, api.BillResponse]
	addPerson        *connect.Client[api.AddPersonRequest, api.BillResponse]
	removePerson     *connect.Client[api.RemovePersonRequest, api.BillResponse]
	setPersonPaid    *connect.Client[api.SetPersonPaidRequest, api.BillResponse]
	addItem          *connect.Client[api.AddItemRequest, api.BillResponse]
	updateItem       *connect.Client[api.UpdateItemRequest, api.BillResponse]
	removeItem       *connect.Client[api.RemoveItemRequest, api.BillResponse]
	setShare         *connect.Client[api.SetShareRequest, api.BillResponse]
	removeShare      *connect.Client[api.RemoveShareRequest, api.BillResponse]
}

func (c *billServiceClient) ComputeTotals(ctx context.Context, req *connect.Request[api.ComputeTotalsRequest]) (*connect.Response[api.ComputeTotalsResponse], error) {
	return c.computeTotals.CallUnary(ctx, req)
}

func (c *billServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.BillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *billServiceClient) ImportReceipt(ctx context.Context, req *connect.Request[api.ImportReceiptRequest]) (*connect.Response[api.ImportReceiptResponse], error) {
	return c.importReceipt.CallUnary(ctx, req)
}

func (c *billServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.BillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *billServiceClient) GetSharedSummary(ctx context.Context, req *connect.Request[api.GetSharedSummaryRequest]) (*connect.Response[api.GetSharedSummaryResponse], error) {
	return c.getSharedSummary.CallUnary(ctx, req)
}

func (c *billServiceClient) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *billServiceClient) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *billServiceClient) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.BillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *billServiceClient) UpdateCharges(ctx context.Context, req *connect.Request[api.UpdateChargesRequest]) (*connect.Response[api.BillResponse], error) {
	return c.updateCharges.CallUnary(ctx, req)
}

func (c *billServiceClient) AddPerson(ctx context.Context, req *connect.Request[api.AddPersonRequest]) (*connect.Response[api.BillResponse], error) {
	return c.addPerson.CallUnary(ctx, req)
}

func (c *billServiceClient) RemovePerson(ctx context.Context, req *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.BillResponse], error) {
	return c.removePerson.CallUnary(ctx, req)
}

func (c *billServiceClient) SetPersonPaid(ctx context.Context, req *connect.Request[api.SetPersonPaidRequest]) (*connect.Response[api.BillResponse], error) {
	return c.setPersonPaid.CallUnary(ctx, req)
}

func (c *billServiceClient) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.BillResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *billServiceClient) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.BillResponse], error) {
	return c.updateItem.CallUnary(ctx, req)
}

func (c *billServiceClient) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.BillResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}

func (c *billServiceClient) SetShare(ctx context.Context, req *connect.Request[api.SetShareRequest]) (*connect.Response[api.BillResponse], error) {
	return c.setShare.CallUnary(ctx, req)
}

func (c *billServiceClient) RemoveShare(ctx context.Context, req *connect.Request[api.RemoveShareRequest]) (*connect.Response[api.BillResponse], error) {
	return c.removeShare.CallUnary(ctx, req)
}
