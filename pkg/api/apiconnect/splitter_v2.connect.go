package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/pkg/api"
)

const (
	SplitterV2ServiceCreateBillProcedure         = "/billsplitter.v2.SplitterService/CreateBill"
	SplitterV2ServicePayBillProcedure            = "/billsplitter.v2.SplitterService/PayBill"
	SplitterV2ServiceCreatorSelfPaymentProcedure = "/billsplitter.v2.SplitterService/CreatorSelfPayment"
	SplitterV2ServiceUpdateBillProcedure         = "/billsplitter.v2.SplitterService/UpdateBill"
	SplitterV2ServiceCloseBillProcedure          = "/billsplitter.v2.SplitterService/CloseBill"
	SplitterV2ServiceGetBillProcedure            = "/billsplitter.v2.SplitterService/GetBill"
	SplitterV2ServiceBillExistsProcedure         = "/billsplitter.v2.SplitterService/BillExists"
	SplitterV2ServiceListBillsProcedure          = "/billsplitter.v2.SplitterService/ListBills"
	SplitterV2ServiceListBillEventsProcedure     = "/billsplitter.v2.SplitterService/ListBillEvents"
	SplitterV2ServiceGetLedgerInfoProcedure      = "/billsplitter.v2.SplitterService/GetLedgerInfo"
)

// SplitterV2ServiceHandler is the V2 ledger service.
type SplitterV2ServiceHandler interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillV2Request]) (*connect.Response[api.CreateBillResponse], error)
	PayBill(context.Context, *connect.Request[api.PayBillV2Request]) (*connect.Response[api.PayBillResponse], error)
	CreatorSelfPayment(context.Context, *connect.Request[api.CreatorSelfPaymentRequest]) (*connect.Response[api.CreatorSelfPaymentResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error)
	CloseBill(context.Context, *connect.Request[api.CloseBillRequest]) (*connect.Response[api.CloseBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	BillExists(context.Context, *connect.Request[api.BillExistsRequest]) (*connect.Response[api.BillExistsResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	ListBillEvents(context.Context, *connect.Request[api.ListBillEventsRequest]) (*connect.Response[api.ListBillEventsResponse], error)
	GetLedgerInfo(context.Context, *connect.Request[api.GetLedgerInfoRequest]) (*connect.Response[api.GetLedgerInfoResponse], error)
}

// NewSplitterV2ServiceHandler builds an HTTP handler from the service
// implementation.
func NewSplitterV2ServiceHandler(svc SplitterV2ServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	mux := http.NewServeMux()
	route(mux, SplitterV2ServiceCreateBillProcedure, svc.CreateBill, opt)
	route(mux, SplitterV2ServicePayBillProcedure, svc.PayBill, opt)
	route(mux, SplitterV2ServiceCreatorSelfPaymentProcedure, svc.CreatorSelfPayment, opt)
	route(mux, SplitterV2ServiceUpdateBillProcedure, svc.UpdateBill, opt)
	route(mux, SplitterV2ServiceCloseBillProcedure, svc.CloseBill, opt)
	route(mux, SplitterV2ServiceGetBillProcedure, svc.GetBill, opt)
	route(mux, SplitterV2ServiceBillExistsProcedure, svc.BillExists, opt)
	route(mux, SplitterV2ServiceListBillsProcedure, svc.ListBills, opt)
	route(mux, SplitterV2ServiceListBillEventsProcedure, svc.ListBillEvents, opt)
	route(mux, SplitterV2ServiceGetLedgerInfoProcedure, svc.GetLedgerInfo, opt)
	return "/" + SplitterV2ServiceName + "/", mux
}

// SplitterV2ServicePublicProcedures are the read-only procedures that need
// no session.
var SplitterV2ServicePublicProcedures = []string{
	SplitterV2ServiceGetBillProcedure,
	SplitterV2ServiceBillExistsProcedure,
	SplitterV2ServiceListBillEventsProcedure,
	SplitterV2ServiceGetLedgerInfoProcedure,
}

// SplitterV2ServiceClient is a client for the V2 ledger service.
type SplitterV2ServiceClient struct {
	createBill         *connect.Client[api.CreateBillV2Request, api.CreateBillResponse]
	payBill            *connect.Client[api.PayBillV2Request, api.PayBillResponse]
	creatorSelfPayment *connect.Client[api.CreatorSelfPaymentRequest, api.CreatorSelfPaymentResponse]
	updateBill         *connect.Client[api.UpdateBillRequest, api.UpdateBillResponse]
	closeBill          *connect.Client[api.CloseBillRequest, api.CloseBillResponse]
	getBill            *connect.Client[api.GetBillRequest, api.GetBillResponse]
	billExists         *connect.Client[api.BillExistsRequest, api.BillExistsResponse]
	listBills          *connect.Client[api.ListBillsRequest, api.ListBillsResponse]
	listBillEvents     *connect.Client[api.ListBillEventsRequest, api.ListBillEventsResponse]
	getLedgerInfo      *connect.Client[api.GetLedgerInfoRequest, api.GetLedgerInfoResponse]
}

// NewSplitterV2ServiceClient constructs a client for the V2 ledger service.
func NewSplitterV2ServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SplitterV2ServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &SplitterV2ServiceClient{
		createBill:         call[api.CreateBillV2Request, api.CreateBillResponse](httpClient, baseURL, SplitterV2ServiceCreateBillProcedure, opt),
		payBill:            call[api.PayBillV2Request, api.PayBillResponse](httpClient, baseURL, SplitterV2ServicePayBillProcedure, opt),
		creatorSelfPayment: call[api.CreatorSelfPaymentRequest, api.CreatorSelfPaymentResponse](httpClient, baseURL, SplitterV2ServiceCreatorSelfPaymentProcedure, opt),
		updateBill:         call[api.UpdateBillRequest, api.UpdateBillResponse](httpClient, baseURL, SplitterV2ServiceUpdateBillProcedure, opt),
		closeBill:          call[api.CloseBillRequest, api.CloseBillResponse](httpClient, baseURL, SplitterV2ServiceCloseBillProcedure, opt),
		getBill:            call[api.GetBillRequest, api.GetBillResponse](httpClient, baseURL, SplitterV2ServiceGetBillProcedure, opt),
		billExists:         call[api.BillExistsRequest, api.BillExistsResponse](httpClient, baseURL, SplitterV2ServiceBillExistsProcedure, opt),
		listBills:          call[api.ListBillsRequest, api.ListBillsResponse](httpClient, baseURL, SplitterV2ServiceListBillsProcedure, opt),
		listBillEvents:     call[api.ListBillEventsRequest, api.ListBillEventsResponse](httpClient, baseURL, SplitterV2ServiceListBillEventsProcedure, opt),
		getLedgerInfo:      call[api.GetLedgerInfoRequest, api.GetLedgerInfoResponse](httpClient, baseURL, SplitterV2ServiceGetLedgerInfoProcedure, opt),
	}
}

func (c *SplitterV2ServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillV2Request]) (*connect.Response[api.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *SplitterV2ServiceClient) PayBill(ctx context.Context, req *connect.Request[api.PayBillV2Request]) (*connect.Response[api.PayBillResponse], error) {
	return c.payBill.CallUnary(ctx, req)
}

func (c *SplitterV2ServiceClient) CreatorSelfPayment(ctx context.Context, req *connect.Request[api.CreatorSelfPaymentRequest]) (*connect.Response[api.CreatorSelfPaymentResponse], error) {
	return c.creatorSelfPayment.CallUnary(ctx, req)
}

func (c *SplitterV2ServiceClient) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *SplitterV2ServiceClient) CloseBill(ctx context.Context, req *connect.Request[api.CloseBillRequest]) (*connect.Response[api.CloseBillResponse], error) {
	return c.closeBill.CallUnary(ctx, req)
}

func (c *SplitterV2ServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *SplitterV2ServiceClient) BillExists(ctx context.Context, req *connect.Request[api.BillExistsRequest]) (*connect.Response[api.BillExistsResponse], error) {
	return c.billExists.CallUnary(ctx, req)
}

func (c *SplitterV2ServiceClient) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *SplitterV2ServiceClient) ListBillEvents(ctx context.Context, req *connect.Request[api.ListBillEventsRequest]) (*connect.Response[api.ListBillEventsResponse], error) {
	return c.listBillEvents.CallUnary(ctx, req)
}

func (c *SplitterV2ServiceClient) GetLedgerInfo(ctx context.Context, req *connect.Request[api.GetLedgerInfoRequest]) (*connect.Response[api.GetLedgerInfoResponse], error) {
	return c.getLedgerInfo.CallUnary(ctx, req)
}
