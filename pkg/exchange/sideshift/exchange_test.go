package sideshift

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
)

const (
	testSecret    = "secret-0123456789"
	testAffiliate = "aff-42"
)

type recorded struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   map[string]any
}

type recorder struct {
	mu       sync.Mutex
	requests []recorded
}

func (r *recorder) add(req *http.Request) {
	rec := recorded{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
	}
	if data, _ := io.ReadAll(req.Body); len(data) > 0 {
		_ = sonic.Unmarshal(data, &rec.Body)
	}
	r.mu.Lock()
	r.requests = append(r.requests, rec)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recorder) last() recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func newTestClient(t *testing.T, config *core.Config, handler http.HandlerFunc) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	if config == nil {
		config = core.DefaultConfig().WithCredentials(testSecret, testAffiliate)
	}
	config.WithBaseURL(server.URL + "/api/v2")

	client, err := New(config)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, rec
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(core.DefaultConfig().WithTimeout(0))
	assert.Error(t, err)
}

func TestClient_ImplementsInterface(t *testing.T) {
	var ex exchange.Exchange = &Client{}
	assert.NotNil(t, ex)
}

func TestGetCoins(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200,
		`[{"coin":"BTC","name":"Bitcoin","networks":["bitcoin"],"hasMemo":false,"fixedOnly":false,"variableOnly":false,"depositOffline":false,"settleOffline":false}]`))

	resp := client.GetCoins(context.Background())

	require.True(t, resp.Success, resp.Error)
	require.Len(t, *resp.Data, 1)
	assert.Equal(t, "BTC", (*resp.Data)[0].Coin)
	assert.Equal(t, "/api/v2/coins", rec.last().Path)
	assert.Empty(t, rec.last().Header.Get("x-sideshift-secret"))
}

func TestGetCoinIcon(t *testing.T) {
	client, rec := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		io.WriteString(w, `<svg xmlns="http://www.w3.org/2000/svg"/>`)
	})

	resp := client.GetCoinIcon(context.Background(), "btc-bitcoin")

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "image/svg+xml", resp.Data.ContentType)
	assert.Contains(t, string(resp.Data.Data), "<svg")
	assert.Equal(t, "/api/v2/coins/icon/btc-bitcoin", rec.last().Path)
}

func TestGetCoinIcon_NotFound(t *testing.T) {
	client, _ := newTestClient(t, nil, jsonHandler(404, `{"error":{"message":"Coin not found"}}`))

	resp := client.GetCoinIcon(context.Background(), "nope")

	assert.False(t, resp.Success)
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, "GET /coins/icon/nope failed: 404 Not Found - Coin not found", resp.Error)
}

func TestGetPermissions(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200, `{"createShift":false}`))

	resp := client.GetPermissions(context.Background(), exchange.WithUserIP("203.0.113.9"))

	require.True(t, resp.Success)
	assert.False(t, resp.Data.CreateShift)
	assert.Equal(t, "203.0.113.9", rec.last().Header.Get("x-user-ip"))

	client.GetPermissions(context.Background())
	assert.Empty(t, rec.last().Header.Get("x-user-ip"))
}

func TestGetShift(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200,
		`{"id":"f1","type":"fixed","status":"settled","quoteId":"q1","depositAmount":"0.1","settleAmount":"1.6","rate":"16"}`))

	resp := client.GetShift(context.Background(), "f1")

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, core.FixedSingle, resp.Data.Kind())
	assert.True(t, resp.Data.Status.IsTerminal())
	assert.Equal(t, "/api/v2/shifts/f1", rec.last().Path)
}

func TestGetShift_UnknownTypeIsDecodeFailure(t *testing.T) {
	client, _ := newTestClient(t, nil, jsonHandler(200, `{"id":"x","type":"mystery"}`))

	resp := client.GetShift(context.Background(), "x")

	assert.False(t, resp.Success)
	assert.Equal(t, 200, resp.Status)
	var apiErr *core.APIError
	require.ErrorAs(t, resp.Err, &apiErr)
	assert.Equal(t, core.ErrorTypeDecode, apiErr.Type)
	assert.Contains(t, resp.Error, "GET /shifts/x failed: decode core.Shift")
}

func TestGetBulkShifts(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200,
		`[{"id":"a","type":"fixed","status":"waiting"},{"id":"b","type":"variable","status":"multiple","deposits":[]}]`))

	resp := client.GetBulkShifts(context.Background(), []string{"a", " ", "b"})

	require.True(t, resp.Success, resp.Error)
	require.Len(t, *resp.Data, 2)
	assert.Equal(t, core.VariableMultiple, (*resp.Data)[1].Kind())
	assert.Equal(t, []string{"a,b"}, rec.last().Query["ids"])
}

func TestGetBulkShifts_Empty(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200, `[]`))

	resp := client.GetBulkShifts(context.Background(), nil)

	assert.False(t, resp.Success)
	assert.Equal(t, 400, resp.Status)
	assert.Equal(t, "no shift ids provided", resp.Error)
	assert.Zero(t, rec.count())
}

func TestGetRecentShifts(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200,
		`[{"createdAt":"2024-03-01T10:00:00.000Z","depositCoin":"BTC","depositAmount":"0.5","settleCoin":"ETH","settleAmount":"8"}]`))

	resp := client.GetRecentShifts(context.Background())
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "10", rec.last().Query["limit"][0])
	assert.Equal(t, "8", (*resp.Data)[0].SettleAmount.String())

	for _, limit := range []int{1, 100} {
		resp := client.GetRecentShifts(context.Background(), exchange.WithLimit(limit))
		require.True(t, resp.Success, resp.Error)
		assert.Equal(t, strconv.Itoa(limit), rec.last().Query["limit"][0])
	}
	assert.Equal(t, 3, rec.count())
}

func TestGetRecentShifts_LimitOutOfRange(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200, `[]`))

	for _, limit := range []int{0, -1, 101} {
		resp := client.GetRecentShifts(context.Background(), exchange.WithLimit(limit))
		assert.False(t, resp.Success)
		assert.Equal(t, 400, resp.Status)
		assert.Equal(t, "limit must be between 1 and 100", resp.Error)
	}
	assert.Zero(t, rec.count())
}

func TestGetXaiStats(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200,
		`{"totalSupply":1000000000,"circulatingSupply":125000000.5,"numberOfStakers":42,"xaiPriceUsd":"0.15"}`))

	resp := client.GetXaiStats(context.Background())

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, 42, resp.Data.NumberOfStakers)
	assert.Equal(t, "125000000.5", resp.Data.CirculatingSupply.String())
	assert.Equal(t, "/api/v2/xai/stats", rec.last().Path)
}

func TestGetAccount(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200, `{"id":"acc","available":"12.5","totalBalance":"20"}`))

	resp := client.GetAccount(context.Background())

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "12.5", resp.Data.Available.String())
	assert.Equal(t, testSecret, rec.last().Header.Get("x-sideshift-secret"))
	assert.Empty(t, rec.last().Query["affiliateId"])
}

func TestGetAccount_Unauthorized(t *testing.T) {
	client, _ := newTestClient(t, nil, jsonHandler(401, `{"error":{"message":"Invalid secret"}}`))

	resp := client.GetAccount(context.Background())

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, 401, resp.Status)
	assert.Equal(t, "GET /account failed: 401 Unauthorized - Invalid secret", resp.Error)
	assert.True(t, core.IsAuthenticationError(resp.Err))
}
