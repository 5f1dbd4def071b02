package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabby/pkg/api"
	"github.com/mmynk/tabby/pkg/api/apiconnect"
)

// stubService fails GetBill and answers ListBills.
type stubService struct {
	apiconnect.UnimplementedBillServiceHandler
}

func (stubService) ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return connect.NewResponse(&api.ListBillsResponse{}), nil
}

func (stubService) GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.BillResponse], error) {
	return nil, connect.NewError(connect.CodeNotFound, errors.New("no such bill"))
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	path, handler := apiconnect.NewBillServiceHandler(stubService{},
		connect.WithInterceptors(LoggingInterceptor(), metrics.Interceptor()),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := apiconnect.NewBillServiceClient(http.DefaultClient, server.URL)
	ctx := context.Background()

	_, err := client.ListBills(ctx, connect.NewRequest(&api.ListBillsRequest{}))
	require.NoError(t, err)
	_, err = client.ListBills(ctx, connect.NewRequest(&api.ListBillsRequest{}))
	require.NoError(t, err)
	_, err = client.GetBill(ctx, connect.NewRequest(&api.GetBillRequest{BillID: "x"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues(apiconnect.BillServiceListBillsProcedure, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(apiconnect.BillServiceGetBillProcedure, "not_found")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.latency))
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("wildcard", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		CORS([]string{"*"})(next).ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("listed origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Origin", "https://tabby.example")
		CORS([]string{"https://tabby.example"})(next).ServeHTTP(rec, req)

		assert.Equal(t, "https://tabby.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		CORS([]string{"https://tabby.example"})(next).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		CORS(nil)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Connect-Protocol-Version")
	})
}

func TestLogging_RecordsStatus(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	rec := httptest.NewRecorder()
	Logging(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
