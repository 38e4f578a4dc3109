package sideshift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
)

const pairJSON = `{"min":"0.0001","max":"2","rate":"16.1","depositCoin":"BTC","settleCoin":"ETH","depositNetwork":"bitcoin","settleNetwork":"ethereum"}`

func TestGetPair(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200, pairJSON))

	resp := client.GetPair(context.Background(), "btc-bitcoin", "eth-ethereum", exchange.WithAmount(core.MustAmount("0.5")))

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "16.1", resp.Data.Rate.String())

	sent := rec.last()
	assert.Equal(t, "/api/v2/pair/btc-bitcoin/eth-ethereum", sent.Path)
	assert.Equal(t, []string{"0.5"}, sent.Query["amount"])
	assert.Equal(t, []string{testAffiliate}, sent.Query["affiliateId"])
	assert.Equal(t, testSecret, sent.Header.Get("x-sideshift-secret"))
	assert.Nil(t, sent.Body)
}

func TestGetPair_WithoutAmount(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200, pairJSON))

	client.GetPair(context.Background(), "btc", "eth")

	assert.NotContains(t, rec.last().Query, "amount")
}

func TestGetPairs(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200, `[`+pairJSON+`,`+pairJSON+`]`))

	resp, err := client.GetPairs(context.Background(), []string{"btc-bitcoin", "eth-ethereum"})

	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.Len(t, *resp.Data, 2)
	sent := rec.last()
	assert.Equal(t, "/api/v2/pairs", sent.Path)
	assert.Equal(t, []string{"btc-bitcoin,eth-ethereum"}, sent.Query["pairs"])
	assert.Equal(t, []string{testAffiliate}, sent.Query["affiliateId"])
}

func TestGetPairs_Empty(t *testing.T) {
	client, rec := newTestClient(t, nil, jsonHandler(200, `[]`))

	for _, coins := range [][]string{nil, {}, {"", "  "}} {
		resp, err := client.GetPairs(context.Background(), coins)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, core.ErrValidation)
	}
	assert.Zero(t, rec.count())
}
