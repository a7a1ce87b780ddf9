package payment_test

import (
	"testing"
	"time"

	"courtside/internal/domain/payment"
)

// TestRecord_Validate tests validation of payment records.
func TestRecord_Validate(t *testing.T) {
	valid := payment.Record{
		ID:       "pay-1",
		SlotID:   "s1",
		PlayerID: "p1",
		Amount:   6500,
		Status:   payment.StatusSucceeded,
	}

	tests := []struct {
		name    string
		mutate  func(r *payment.Record)
		wantErr error
	}{
		{"valid record", func(r *payment.Record) {}, nil},
		{"empty slot", func(r *payment.Record) { r.SlotID = "" }, payment.ErrEmptySlotID},
		{"empty player", func(r *payment.Record) { r.PlayerID = " " }, payment.ErrEmptyPlayerID},
		{"zero amount", func(r *payment.Record) { r.Amount = 0 }, payment.ErrInvalidAmount},
		{"negative amount", func(r *payment.Record) { r.Amount = -100 }, payment.ErrInvalidAmount},
		{"unknown status", func(r *payment.Record) { r.Status = "refunded" }, payment.ErrUnknownOutcome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); err != tt.wantErr {
				t.Errorf("Record.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestCard_ValidateCard tests shallow card validation.
func TestCard_ValidateCard(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		card    payment.Card
		wantErr error
	}{
		{"valid card", payment.Card{Number: "4242 4242 4242 4242", Expiry: "12/27"}, nil},
		{"valid with dashes", payment.Card{Number: "4242-4242-4242-4242", Expiry: "04/26"}, nil},
		{"expires this month", payment.Card{Number: "4242424242424242", Expiry: "03/26"}, nil},
		{"expired last month", payment.Card{Number: "4242424242424242", Expiry: "02/26"}, payment.ErrExpiredCard},
		{"too short", payment.Card{Number: "4242", Expiry: "12/27"}, payment.ErrInvalidCard},
		{"non-digits", payment.Card{Number: "4242abcd42424242", Expiry: "12/27"}, payment.ErrInvalidCard},
		{"bad expiry", payment.Card{Number: "4242424242424242", Expiry: "2027-12"}, payment.ErrInvalidExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.card.ValidateCard(now); err != tt.wantErr {
				t.Errorf("ValidateCard() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestCard_Last4 tests masking.
func TestCard_Last4(t *testing.T) {
	c := payment.Card{Number: "4242 4242 4242 4343"}
	if got := c.Last4(); got != "4343" {
		t.Errorf("Last4() = %q, want 4343", got)
	}
}
