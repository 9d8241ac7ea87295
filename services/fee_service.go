package services

import (
	"errors"
	"math"
	"math/rand"
	"sync"

	"github.com/saurabh-chakrabarthi/hermes/models"
)

var ErrInvalidAmount = errors.New("amount must be a positive finite number")

// Fee tiers. Amounts at exactly a threshold take the lower tier.
const (
	feeTierHighThreshold = 50000.0
	feeTierMidThreshold  = 30000.0
	feeTierHighPercent   = 5.0
	feeTierMidPercent    = 3.0
	feeTierLowPercent    = 2.0
)

// FeeBreakdown is the result of quoting a tuition amount: the simulated
// received amount, the fee applied and the resulting settlement status.
type FeeBreakdown struct {
	AmountReceived float64
	FeePercentage  float64
	FeeAmount      float64
	FinalAmount    float64
	Status         string
}

// FeeCalculator simulates payment slippage: the received amount is drawn
// uniformly from 80%-120% of the requested amount. The randomness source
// is injected so tests can seed it deterministically.
type FeeCalculator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewFeeCalculator(src rand.Source) *FeeCalculator {
	return &FeeCalculator{rng: rand.New(src)}
}

func (c *FeeCalculator) Quote(amount float64) (FeeBreakdown, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return FeeBreakdown{}, ErrInvalidAmount
	}

	c.mu.Lock()
	factor := 0.8 + c.rng.Float64()*0.4
	c.mu.Unlock()

	amountReceived := roundToCents(amount * factor)
	feePercentage := feePercentageFor(amount)
	feeAmount := roundToCents(amount * feePercentage / 100)

	return FeeBreakdown{
		AmountReceived: amountReceived,
		FeePercentage:  feePercentage,
		FeeAmount:      feeAmount,
		FinalAmount:    amount + feeAmount,
		Status:         settlementStatus(amount, amountReceived),
	}, nil
}

func feePercentageFor(amount float64) float64 {
	switch {
	case amount > feeTierHighThreshold:
		return feeTierHighPercent
	case amount > feeTierMidThreshold:
		return feeTierMidPercent
	default:
		return feeTierLowPercent
	}
}

func settlementStatus(amount, amountReceived float64) string {
	switch {
	case amountReceived < amount:
		return models.StatusUnderpayment
	case amountReceived > amount:
		return models.StatusOverpayment
	default:
		return models.StatusExact
	}
}

func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}
