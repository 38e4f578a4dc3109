package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, handler http.HandlerFunc, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--base-url", srv.URL}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCoinsJSON(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"coin":"BTC","name":"Bitcoin","networks":["bitcoin"],"hasMemo":false,"fixedOnly":false,"variableOnly":false,"depositOffline":false,"settleOffline":false}]`))
	}, "-o", "json", "coins")

	require.NoError(t, err)
	assert.Contains(t, out, `"coin": "BTC"`)
}

func TestPairsTable(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pairs", r.URL.Path)
		assert.Equal(t, "btc-bitcoin,eth-ethereum", r.URL.Query().Get("pairs"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"depositCoin":"BTC","settleCoin":"ETH","depositNetwork":"bitcoin","settleNetwork":"ethereum","min":"0.001","max":"2","rate":"17.5"}]`))
	}, "--env-file", writeEnv(t), "pairs", "btc-bitcoin", "eth-ethereum")

	require.NoError(t, err)
	assert.Contains(t, out, "BTC (bitcoin)")
	assert.Contains(t, out, "17.5")
}

func TestQuoteRequiresOneAmount(t *testing.T) {
	called := false
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, "quote", "--from", "btc", "--to", "eth", "--deposit", "1", "--settle", "2")

	require.Error(t, err)
	assert.False(t, called)
}

func TestShiftVariableGeneratesExternalID(t *testing.T) {
	var body map[string]any
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shifts/variable", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, sonic.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"s1","type":"variable","status":"waiting","depositCoin":"BTC","settleCoin":"ETH","depositAddress":"bc1q"}`))
	}, "--env-file", writeEnv(t), "shift", "variable", "--from", "btc", "--to", "eth", "--settle-address", "0xabc")

	require.NoError(t, err)
	assert.Contains(t, out, "s1")
	assert.Equal(t, "aff-cli", body["affiliateId"])
	externalID, _ := body["externalId"].(string)
	_, parseErr := uuid.Parse(externalID)
	assert.NoError(t, parseErr)
}

func TestHTTPErrorIsReturned(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"Shift not found"}}`))
	}, "shift", "get", "missing")

	require.Error(t, err)
	assert.Equal(t, "GET /shifts/missing failed: 404 Not Found - Shift not found", err.Error())
}

func TestUnsupportedOutput(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {}, "-o", "xml", "coins")
	assert.Error(t, err)
}

func writeEnv(t *testing.T) string {
	t.Helper()
	return writeTempFile(t, "SIDESHIFT_AFFILIATE_ID=aff-cli\nSIDESHIFT_PRIVATE_KEY=cli-secret-key\n")
}

func TestBestRanksRoutes(t *testing.T) {
	rates := map[string]string{
		"/pair/usdc-ethereum/eth-ethereum": "0.00031",
		"/pair/usdc-arbitrum/eth-ethereum": "0.00033",
	}
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		rate, ok := rates[r.URL.Path]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid pair"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"min":"1","max":"1000","rate":"` + rate + `"}`))
	}, "--env-file", writeEnv(t), "best", "usdc-ethereum", "usdc-arbitrum", "usdc-base", "--to", "eth-ethereum")

	require.NoError(t, err)
	first := bytes.Index([]byte(out), []byte("usdc-arbitrum"))
	second := bytes.Index([]byte(out), []byte("usdc-ethereum"))
	require.True(t, first >= 0 && second >= 0, out)
	assert.Less(t, first, second)
	assert.NotContains(t, out, "usdc-base")
}
