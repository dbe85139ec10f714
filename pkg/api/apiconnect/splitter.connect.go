package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/pkg/api"
)

const (
	SplitterServiceCreateBillProcedure      = "/billsplitter.v1.SplitterService/CreateBill"
	SplitterServicePayBillProcedure         = "/billsplitter.v1.SplitterService/PayBill"
	SplitterServiceCloseBillProcedure       = "/billsplitter.v1.SplitterService/CloseBill"
	SplitterServiceCancelBillProcedure      = "/billsplitter.v1.SplitterService/CancelBill"
	SplitterServiceGetBillProcedure         = "/billsplitter.v1.SplitterService/GetBill"
	SplitterServiceBillExistsProcedure      = "/billsplitter.v1.SplitterService/BillExists"
	SplitterServiceGetContributionProcedure = "/billsplitter.v1.SplitterService/GetContribution"
	SplitterServiceListPayersProcedure      = "/billsplitter.v1.SplitterService/ListPayers"
	SplitterServiceListBillsProcedure       = "/billsplitter.v1.SplitterService/ListBills"
	SplitterServiceListBillEventsProcedure  = "/billsplitter.v1.SplitterService/ListBillEvents"
	SplitterServiceGetLedgerInfoProcedure   = "/billsplitter.v1.SplitterService/GetLedgerInfo"
)

// SplitterServiceHandler is the V1 ledger service.
type SplitterServiceHandler interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	PayBill(context.Context, *connect.Request[api.PayBillRequest]) (*connect.Response[api.PayBillResponse], error)
	CloseBill(context.Context, *connect.Request[api.CloseBillRequest]) (*connect.Response[api.CloseBillResponse], error)
	CancelBill(context.Context, *connect.Request[api.CancelBillRequest]) (*connect.Response[api.CancelBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	BillExists(context.Context, *connect.Request[api.BillExistsRequest]) (*connect.Response[api.BillExistsResponse], error)
	GetContribution(context.Context, *connect.Request[api.GetContributionRequest]) (*connect.Response[api.GetContributionResponse], error)
	ListPayers(context.Context, *connect.Request[api.ListPayersRequest]) (*connect.Response[api.ListPayersResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	ListBillEvents(context.Context, *connect.Request[api.ListBillEventsRequest]) (*connect.Response[api.ListBillEventsResponse], error)
	GetLedgerInfo(context.Context, *connect.Request[api.GetLedgerInfoRequest]) (*connect.Response[api.GetLedgerInfoResponse], error)
}

// NewSplitterServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and
// the handler itself.
func NewSplitterServiceHandler(svc SplitterServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	mux := http.NewServeMux()
	route(mux, SplitterServiceCreateBillProcedure, svc.CreateBill, opt)
	route(mux, SplitterServicePayBillProcedure, svc.PayBill, opt)
	route(mux, SplitterServiceCloseBillProcedure, svc.CloseBill, opt)
	route(mux, SplitterServiceCancelBillProcedure, svc.CancelBill, opt)
	route(mux, SplitterServiceGetBillProcedure, svc.GetBill, opt)
	route(mux, SplitterServiceBillExistsProcedure, svc.BillExists, opt)
	route(mux, SplitterServiceGetContributionProcedure, svc.GetContribution, opt)
	route(mux, SplitterServiceListPayersProcedure, svc.ListPayers, opt)
	route(mux, SplitterServiceListBillsProcedure, svc.ListBills, opt)
	route(mux, SplitterServiceListBillEventsProcedure, svc.ListBillEvents, opt)
	route(mux, SplitterServiceGetLedgerInfoProcedure, svc.GetLedgerInfo, opt)
	return "/" + SplitterServiceName + "/", mux
}

// SplitterServicePublicProcedures are the read-only procedures that need no
// session.
var SplitterServicePublicProcedures = []string{
	SplitterServiceGetBillProcedure,
	SplitterServiceBillExistsProcedure,
	SplitterServiceGetContributionProcedure,
	SplitterServiceListPayersProcedure,
	SplitterServiceListBillEventsProcedure,
	SplitterServiceGetLedgerInfoProcedure,
}

// SplitterServiceClient is a client for the V1 ledger service.
type SplitterServiceClient struct {
	createBill      *connect.Client[api.CreateBillRequest, api.CreateBillResponse]
	payBill         *connect.Client[api.PayBillRequest, api.PayBillResponse]
	closeBill       *connect.Client[api.CloseBillRequest, api.CloseBillResponse]
	cancelBill      *connect.Client[api.CancelBillRequest, api.CancelBillResponse]
	getBill         *connect.Client[api.GetBillRequest, api.GetBillResponse]
	billExists      *connect.Client[api.BillExistsRequest, api.BillExistsResponse]
	getContribution *connect.Client[api.GetContributionRequest, api.GetContributionResponse]
	listPayers      *connect.Client[api.ListPayersRequest, api.ListPayersResponse]
	listBills       *connect.Client[api.ListBillsRequest, api.ListBillsResponse]
	listBillEvents  *connect.Client[api.ListBillEventsRequest, api.ListBillEventsResponse]
	getLedgerInfo   *connect.Client[api.GetLedgerInfoRequest, api.GetLedgerInfoResponse]
}

// NewSplitterServiceClient constructs a client for the V1 ledger service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewSplitterServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SplitterServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &SplitterServiceClient{
		createBill:      call[api.CreateBillRequest, api.CreateBillResponse](httpClient, baseURL, SplitterServiceCreateBillProcedure, opt),
		payBill:         call[api.PayBillRequest, api.PayBillResponse](httpClient, baseURL, SplitterServicePayBillProcedure, opt),
		closeBill:       call[api.CloseBillRequest, api.CloseBillResponse](httpClient, baseURL, SplitterServiceCloseBillProcedure, opt),
		cancelBill:      call[api.CancelBillRequest, api.CancelBillResponse](httpClient, baseURL, SplitterServiceCancelBillProcedure, opt),
		getBill:         call[api.GetBillRequest, api.GetBillResponse](httpClient, baseURL, SplitterServiceGetBillProcedure, opt),
		billExists:      call[api.BillExistsRequest, api.BillExistsResponse](httpClient, baseURL, SplitterServiceBillExistsProcedure, opt),
		getContribution: call[api.GetContributionRequest, api.GetContributionResponse](httpClient, baseURL, SplitterServiceGetContributionProcedure, opt),
		listPayers:      call[api.ListPayersRequest, api.ListPayersResponse](httpClient, baseURL, SplitterServiceListPayersProcedure, opt),
		listBills:       call[api.ListBillsRequest, api.ListBillsResponse](httpClient, baseURL, SplitterServiceListBillsProcedure, opt),
		listBillEvents:  call[api.ListBillEventsRequest, api.ListBillEventsResponse](httpClient, baseURL, SplitterServiceListBillEventsProcedure, opt),
		getLedgerInfo:   call[api.GetLedgerInfoRequest, api.GetLedgerInfoResponse](httpClient, baseURL, SplitterServiceGetLedgerInfoProcedure, opt),
	}
}

func (c *SplitterServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) PayBill(ctx context.Context, req *connect.Request[api.PayBillRequest]) (*connect.Response[api.PayBillResponse], error) {
	return c.payBill.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) CloseBill(ctx context.Context, req *connect.Request[api.CloseBillRequest]) (*connect.Response[api.CloseBillResponse], error) {
	return c.closeBill.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) CancelBill(ctx context.Context, req *connect.Request[api.CancelBillRequest]) (*connect.Response[api.CancelBillResponse], error) {
	return c.cancelBill.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) BillExists(ctx context.Context, req *connect.Request[api.BillExistsRequest]) (*connect.Response[api.BillExistsResponse], error) {
	return c.billExists.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) GetContribution(ctx context.Context, req *connect.Request[api.GetContributionRequest]) (*connect.Response[api.GetContributionResponse], error) {
	return c.getContribution.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) ListPayers(ctx context.Context, req *connect.Request[api.ListPayersRequest]) (*connect.Response[api.ListPayersResponse], error) {
	return c.listPayers.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) ListBillEvents(ctx context.Context, req *connect.Request[api.ListBillEventsRequest]) (*connect.Response[api.ListBillEventsResponse], error) {
	return c.listBillEvents.CallUnary(ctx, req)
}

func (c *SplitterServiceClient) GetLedgerInfo(ctx context.Context, req *connect.Request[api.GetLedgerInfoRequest]) (*connect.Response[api.GetLedgerInfoResponse], error) {
	return c.getLedgerInfo.CallUnary(ctx, req)
}
