package sideshift

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"sideshift/pkg/core"
)

// QuoteBuilder provides a fluent interface for constructing quote requests.
// It accumulates the first error and reports it on Build.
//
// Example:
//
//	body, err := sideshift.NewQuoteBuilder().
//	    From("btc", "bitcoin").
//	    To("eth", "ethereum").
//	    DepositAmount("0.01").
//	    Build()
type QuoteBuilder struct {
	body core.QuoteBody
	err  error
}

// NewQuoteBuilder creates an empty quote builder.
func NewQuoteBuilder() *QuoteBuilder {
	return &QuoteBuilder{}
}

// From sets the deposit coin and network. The network may be empty for
// single-network coins.
func (b *QuoteBuilder) From(coin, network string) *QuoteBuilder {
	if b.err != nil {
		return b
	}
	b.body.DepositCoin = strings.TrimSpace(coin)
	b.body.DepositNetwork = strings.TrimSpace(network)
	return b
}

// To sets the settle coin and network.
func (b *QuoteBuilder) To(coin, network string) *QuoteBuilder {
	if b.err != nil {
		return b
	}
	b.body.SettleCoin = strings.TrimSpace(coin)
	b.body.SettleNetwork = strings.TrimSpace(network)
	return b
}

// DepositAmount quotes for a fixed amount sent. It clears any settle amount.
func (b *QuoteBuilder) DepositAmount(amount string) *QuoteBuilder {
	if b.err != nil {
		return b
	}
	a, err := parsePositive(amount)
	if err != nil {
		b.err = fmt.Errorf("parse deposit amount: %w", err)
		return b
	}
	b.body.DepositAmount = &a
	b.body.SettleAmount = nil
	return b
}

// DepositDecimal is DepositAmount for an apd.Decimal value.
func (b *QuoteBuilder) DepositDecimal(amount apd.Decimal) *QuoteBuilder {
	return b.DepositAmount(amount.String())
}

// SettleAmount quotes for a fixed amount received. It clears any deposit amount.
func (b *QuoteBuilder) SettleAmount(amount string) *QuoteBuilder {
	if b.err != nil {
		return b
	}
	a, err := parsePositive(amount)
	if err != nil {
		b.err = fmt.Errorf("parse settle amount: %w", err)
		return b
	}
	b.body.SettleAmount = &a
	b.body.DepositAmount = nil
	return b
}

// SettleDecimal is SettleAmount for an apd.Decimal value.
func (b *QuoteBuilder) SettleDecimal(amount apd.Decimal) *QuoteBuilder {
	return b.SettleAmount(amount.String())
}

// Build validates and returns the quote body.
func (b *QuoteBuilder) Build() (core.QuoteBody, error) {
	if b.err != nil {
		return core.QuoteBody{}, b.err
	}
	if b.body.DepositCoin == "" {
		return core.QuoteBody{}, core.NewValidationError("depositCoin", "deposit coin is required")
	}
	if b.body.SettleCoin == "" {
		return core.QuoteBody{}, core.NewValidationError("settleCoin", "settle coin is required")
	}
	if b.body.DepositAmount == nil && b.body.SettleAmount == nil {
		return core.QuoteBody{}, core.NewValidationError("depositAmount", "at least one of depositAmount or settleAmount must be provided")
	}
	return b.body, nil
}

// MustBuild is like Build but panics on error.
func (b *QuoteBuilder) MustBuild() core.QuoteBody {
	body, err := b.Build()
	if err != nil {
		panic(err)
	}
	return body
}

func parsePositive(s string) (core.Amount, error) {
	a, err := core.NewAmount(strings.TrimSpace(s))
	if err != nil {
		return core.Amount{}, err
	}
	if a.Sign() <= 0 {
		return core.Amount{}, errors.New("amount must be positive")
	}
	return a, nil
}
