package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domain "courtside/internal/domain/payment"
)

// DeclineCardNumber is the designated test card the simulated gateway
// declines. Any other valid card succeeds.
const DeclineCardNumber = "4000000000000002"

// ChargeRequest describes one charge attempt.
type ChargeRequest struct {
	Amount int // cents
	Card   domain.Card
}

// ChargeResult is the gateway's answer to a charge attempt.
type ChargeResult struct {
	Status    string // payment.StatusSucceeded or payment.StatusDeclined
	Reference string
}

// Gateway is the interface the booking flow charges through.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// SimulatedGateway validates card details locally and fabricates references.
// No money moves anywhere.
type SimulatedGateway struct {
	Now        func() time.Time
	GenerateID func() string
}

// NewSimulatedGateway creates a gateway using wall-clock time.
func NewSimulatedGateway(generateID func() string) *SimulatedGateway {
	return &SimulatedGateway{Now: time.Now, GenerateID: generateID}
}

// Charge validates the card and returns a simulated outcome. Card validation
// failures are returned as errors; the designated decline card returns a
// declined result with no error, the way a real provider reports a decline.
// PRE: req.Amount > 0
// POST: Result has a reference; card details are not retained
func (g *SimulatedGateway) Charge(_ context.Context, req ChargeRequest) (ChargeResult, error) {
	if req.Amount <= 0 {
		return ChargeResult{}, domain.ErrInvalidAmount
	}
	if err := req.Card.ValidateCard(g.Now()); err != nil {
		return ChargeResult{}, err
	}

	ref := fmt.Sprintf("sim_%s", g.GenerateID())
	digits := strings.ReplaceAll(strings.ReplaceAll(req.Card.Number, " ", ""), "-", "")
	if digits == DeclineCardNumber {
		slog.Info("payment_event", "event", "charge_declined", "reference", ref, "amount", req.Amount)
		return ChargeResult{Status: domain.StatusDeclined, Reference: ref}, nil
	}

	slog.Info("payment_event", "event", "charge_succeeded", "reference", ref, "amount", req.Amount)
	return ChargeResult{Status: domain.StatusSucceeded, Reference: ref}, nil
}
