package core

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// NetworkFlag models fields the API sends either as a boolean or as a list of
// network names, such as fixedOnly and depositOffline on a coin.
type NetworkFlag struct {
	All      bool
	Networks []string
}

// Has reports whether the flag applies to network.
func (f NetworkFlag) Has(network string) bool {
	if f.All {
		return true
	}
	for _, n := range f.Networks {
		if n == network {
			return true
		}
	}
	return false
}

func (f NetworkFlag) MarshalJSON() ([]byte, error) {
	if f.Networks != nil {
		return sonic.Marshal(f.Networks)
	}
	return sonic.Marshal(f.All)
}

func (f *NetworkFlag) UnmarshalJSON(data []byte) error {
	*f = NetworkFlag{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '[' {
		return sonic.Unmarshal(data, &f.Networks)
	}
	return sonic.Unmarshal(data, &f.All)
}

// TokenNetwork describes a token contract on one network.
type TokenNetwork struct {
	ContractAddress string `json:"contractAddress"`
	Decimals        int    `json:"decimals"`
}

// Coin is one entry of the supported coins list.
type Coin struct {
	Coin             string                  `json:"coin"`
	Name             string                  `json:"name"`
	Networks         []string                `json:"networks"`
	HasMemo          bool                    `json:"hasMemo"`
	FixedOnly        NetworkFlag             `json:"fixedOnly"`
	VariableOnly     NetworkFlag             `json:"variableOnly"`
	TokenDetails     map[string]TokenNetwork `json:"tokenDetails,omitempty"`
	NetworksWithMemo []string                `json:"networksWithMemo,omitempty"`
	DepositOffline   NetworkFlag             `json:"depositOffline"`
	SettleOffline    NetworkFlag             `json:"settleOffline"`
}

// CoinIcon is a coin image as served by the API, svg or png.
type CoinIcon struct {
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// Permissions reports whether the caller may create shifts.
type Permissions struct {
	CreateShift bool `json:"createShift"`
}

// Pair is the rate and deposit bounds for one coin pair.
type Pair struct {
	Min            Amount `json:"min"`
	Max            Amount `json:"max"`
	Rate           Amount `json:"rate"`
	DepositCoin    string `json:"depositCoin"`
	SettleCoin     string `json:"settleCoin"`
	DepositNetwork string `json:"depositNetwork"`
	SettleNetwork  string `json:"settleNetwork"`
}

// RecentShift is a public summary of a completed shift.
type RecentShift struct {
	CreatedAt      time.Time `json:"createdAt"`
	DepositCoin    string    `json:"depositCoin"`
	DepositNetwork string    `json:"depositNetwork"`
	DepositAmount  Amount    `json:"depositAmount"`
	SettleCoin     string    `json:"settleCoin"`
	SettleNetwork  string    `json:"settleNetwork"`
	SettleAmount   Amount    `json:"settleAmount"`
}

// XaiStats holds XAI token and staking statistics.
type XaiStats struct {
	TotalSupply                  Amount `json:"totalSupply"`
	CirculatingSupply            Amount `json:"circulatingSupply"`
	NumberOfStakers              int    `json:"numberOfStakers"`
	LatestAnnualPercentageYield  Amount `json:"latestAnnualPercentageYield"`
	LatestDistributedXai         Amount `json:"latestDistributedXai"`
	TotalStaked                  Amount `json:"totalStaked"`
	AverageAnnualPercentageYield Amount `json:"averageAnnualPercentageYield"`
	TotalValueLocked             Amount `json:"totalValueLocked"`
	TotalValueLockedRatio        Amount `json:"totalValueLockedRatio"`
	XaiPriceUsd                  Amount `json:"xaiPriceUsd"`
	SvxaiPriceUsd                Amount `json:"svxaiPriceUsd"`
	SvxaiPriceXai                Amount `json:"svxaiPriceXai"`
}

// Account holds the balances of the authenticated account.
type Account struct {
	ID                     string `json:"id"`
	LifetimeStakingRewards Amount `json:"lifetimeStakingRewards"`
	Unstaking              Amount `json:"unstaking"`
	Staked                 Amount `json:"staked"`
	Available              Amount `json:"available"`
	TotalBalance           Amount `json:"totalBalance"`
}

// Quote is a fixed-rate quote valid until ExpiresAt.
type Quote struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	DepositCoin    string    `json:"depositCoin"`
	SettleCoin     string    `json:"settleCoin"`
	DepositNetwork string    `json:"depositNetwork"`
	SettleNetwork  string    `json:"settleNetwork"`
	ExpiresAt      time.Time `json:"expiresAt"`
	DepositAmount  Amount    `json:"depositAmount"`
	SettleAmount   Amount    `json:"settleAmount"`
	Rate           Amount    `json:"rate"`
	AffiliateID    string    `json:"affiliateId,omitempty"`
}

// QuoteBody requests a quote. Exactly one of DepositAmount and SettleAmount is set;
// the other is sent as null.
type QuoteBody struct {
	DepositCoin    string  `json:"depositCoin" validate:"required"`
	DepositNetwork string  `json:"depositNetwork,omitempty"`
	SettleCoin     string  `json:"settleCoin" validate:"required"`
	SettleNetwork  string  `json:"settleNetwork,omitempty"`
	DepositAmount  *Amount `json:"depositAmount"`
	SettleAmount   *Amount `json:"settleAmount"`
}

// FixedShiftBody creates a fixed-rate shift from a quote.
type FixedShiftBody struct {
	SettleAddress string `json:"settleAddress" validate:"required"`
	SettleMemo    string `json:"settleMemo,omitempty"`
	QuoteID       string `json:"quoteId" validate:"required"`
	RefundAddress string `json:"refundAddress,omitempty"`
	RefundMemo    string `json:"refundMemo,omitempty"`
	ExternalID    string `json:"externalId,omitempty"`
}

// VariableShiftBody creates a variable-rate shift.
type VariableShiftBody struct {
	SettleAddress  string `json:"settleAddress" validate:"required"`
	SettleMemo     string `json:"settleMemo,omitempty"`
	RefundAddress  string `json:"refundAddress,omitempty"`
	RefundMemo     string `json:"refundMemo,omitempty"`
	DepositCoin    string `json:"depositCoin" validate:"required"`
	SettleCoin     string `json:"settleCoin" validate:"required"`
	DepositNetwork string `json:"depositNetwork,omitempty"`
	SettleNetwork  string `json:"settleNetwork,omitempty"`
	ExternalID     string `json:"externalId,omitempty"`
}

// RefundAddressBody sets the refund destination of a shift.
type RefundAddressBody struct {
	RefundAddress string `json:"refundAddress"`
	RefundMemo    string `json:"refundMemo,omitempty"`
}

// CancelOrderBody cancels an order by id.
type CancelOrderBody struct {
	OrderID string `json:"orderId"`
}

// Checkout is a hosted payment page.
type Checkout struct {
	ID            string    `json:"id"`
	SettleCoin    string    `json:"settleCoin"`
	SettleNetwork string    `json:"settleNetwork"`
	SettleAddress string    `json:"settleAddress"`
	SettleMemo    string    `json:"settleMemo,omitempty"`
	SettleAmount  Amount    `json:"settleAmount"`
	UpdatedAt     time.Time `json:"updatedAt"`
	CreatedAt     time.Time `json:"createdAt"`
	AffiliateID   string    `json:"affiliateId"`
	SuccessURL    string    `json:"successUrl"`
	CancelURL     string    `json:"cancelUrl"`
}

// CheckoutBody creates a checkout.
type CheckoutBody struct {
	SettleCoin    string `json:"settleCoin" validate:"required"`
	SettleNetwork string `json:"settleNetwork" validate:"required"`
	SettleAddress string `json:"settleAddress" validate:"required"`
	SettleMemo    string `json:"settleMemo,omitempty"`
	SettleAmount  Amount `json:"settleAmount"`
	SuccessURL    string `json:"successUrl" validate:"required,url"`
	CancelURL     string `json:"cancelUrl" validate:"required,url"`
}

// ShiftType discriminates fixed-rate from variable-rate shifts.
type ShiftType string

const (
	ShiftTypeFixed    ShiftType = "fixed"
	ShiftTypeVariable ShiftType = "variable"
)

// ShiftStatus is the lifecycle state of a shift or of one of its deposits.
type ShiftStatus string

const (
	StatusWaiting    ShiftStatus = "waiting"
	StatusPending    ShiftStatus = "pending"
	StatusProcessing ShiftStatus = "processing"
	StatusReview     ShiftStatus = "review"
	StatusSettling   ShiftStatus = "settling"
	StatusSettled    ShiftStatus = "settled"
	StatusRefund     ShiftStatus = "refund"
	StatusRefunding  ShiftStatus = "refunding"
	StatusRefunded   ShiftStatus = "refunded"
	StatusExpired    ShiftStatus = "expired"
	StatusMultiple   ShiftStatus = "multiple"
)

// IsTerminal returns true if the shift will not change status again.
func (s ShiftStatus) IsTerminal() bool {
	return s == StatusSettled || s == StatusRefunded || s == StatusExpired
}

// ShiftKind identifies which of the four shift response shapes was decoded.
type ShiftKind int

const (
	FixedSingle ShiftKind = iota
	FixedMultiple
	VariableSingle
	VariableMultiple
)

func (k ShiftKind) String() string {
	return [...]string{"FIXED_SINGLE", "FIXED_MULTIPLE", "VARIABLE_SINGLE", "VARIABLE_MULTIPLE"}[k]
}

// Deposit is one deposit of a multiple-deposit shift.
type Deposit struct {
	UpdatedAt         time.Time   `json:"updatedAt"`
	DepositHash       string      `json:"depositHash"`
	SettleHash        string      `json:"settleHash,omitempty"`
	DepositReceivedAt time.Time   `json:"depositReceivedAt"`
	DepositAmount     Amount      `json:"depositAmount"`
	SettleAmount      *Amount     `json:"settleAmount,omitempty"`
	Rate              *Amount     `json:"rate,omitempty"`
	Status            ShiftStatus `json:"status"`
}

// Shift is the union of the fixed and variable, single and multiple deposit
// shift shapes. Type is required when decoding; the presence of a deposits
// array marks a multiple-deposit shift.
type Shift struct {
	ID                  string      `json:"id"`
	CreatedAt           time.Time   `json:"createdAt"`
	DepositCoin         string      `json:"depositCoin"`
	SettleCoin          string      `json:"settleCoin"`
	DepositNetwork      string      `json:"depositNetwork"`
	SettleNetwork       string      `json:"settleNetwork"`
	DepositAddress      string      `json:"depositAddress"`
	SettleAddress       string      `json:"settleAddress"`
	DepositMemo         string      `json:"depositMemo,omitempty"`
	SettleMemo          string      `json:"settleMemo,omitempty"`
	DepositMin          Amount      `json:"depositMin"`
	DepositMax          Amount      `json:"depositMax"`
	RefundAddress       string      `json:"refundAddress,omitempty"`
	RefundMemo          string      `json:"refundMemo,omitempty"`
	Type                ShiftType   `json:"type"`
	ExpiresAt           time.Time   `json:"expiresAt"`
	Status              ShiftStatus `json:"status"`
	AverageShiftSeconds string      `json:"averageShiftSeconds,omitempty"`
	Issue               string      `json:"issue,omitempty"`

	QuoteID              string     `json:"quoteId,omitempty"`
	ExternalID           string     `json:"externalId,omitempty"`
	DepositAmount        *Amount    `json:"depositAmount,omitempty"`
	SettleAmount         *Amount    `json:"settleAmount,omitempty"`
	Rate                 *Amount    `json:"rate,omitempty"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
	DepositHash          string     `json:"depositHash,omitempty"`
	SettleHash           string     `json:"settleHash,omitempty"`
	DepositReceivedAt    *time.Time `json:"depositReceivedAt,omitempty"`
	SettleCoinNetworkFee *Amount    `json:"settleCoinNetworkFee,omitempty"`
	NetworkFeeUsd        *Amount    `json:"networkFeeUsd,omitempty"`

	Deposits []Deposit `json:"deposits,omitempty"`

	multiple bool
}

type shiftFields Shift

func (s *Shift) UnmarshalJSON(data []byte) error {
	var aux struct {
		shiftFields
		Deposits *[]Deposit `json:"deposits"`
	}
	if err := sonic.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch aux.Type {
	case ShiftTypeFixed, ShiftTypeVariable:
	case "":
		return fmt.Errorf("shift: missing type")
	default:
		return fmt.Errorf("shift: unknown type %q", aux.Type)
	}
	*s = Shift(aux.shiftFields)
	if aux.Deposits != nil {
		s.Deposits = *aux.Deposits
		s.multiple = true
	}
	return nil
}

// Kind returns the response shape of the shift.
func (s *Shift) Kind() ShiftKind {
	multiple := s.multiple || len(s.Deposits) > 0
	switch {
	case s.Type == ShiftTypeFixed && multiple:
		return FixedMultiple
	case s.Type == ShiftTypeFixed:
		return FixedSingle
	case multiple:
		return VariableMultiple
	default:
		return VariableSingle
	}
}

// IsFixed returns true for fixed-rate shifts.
func (s *Shift) IsFixed() bool {
	return s.Type == ShiftTypeFixed
}

// IsMultiple returns true for shifts that accept several deposits.
func (s *Shift) IsMultiple() bool {
	k := s.Kind()
	return k == FixedMultiple || k == VariableMultiple
}
