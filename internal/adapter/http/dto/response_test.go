package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
)

func TestBookingFromDomainOmitsCancellationForActiveBooking(t *testing.T) {
	booking := &domain.Booking{
		ID:            "bk-1",
		BookingNumber: "TK-1001",
		SellPrice:     decimal.NewFromInt(1000),
		TotalPaid:     decimal.NewFromInt(400),
		Status:        domain.BookingStatusPartial,
	}

	resp := BookingFromDomain(booking)
	if resp.Cancellation != nil {
		t.Fatalf("expected no cancellation info on active booking")
	}
}

func TestBookingFromDomainCarriesCancellationSnapshot(t *testing.T) {
	booking := &domain.Booking{
		ID:            "bk-2",
		BookingNumber: "TK-1002",
		SellPrice:     decimal.NewFromInt(80),
		TotalPaid:     decimal.NewFromInt(80),
		Status:        domain.BookingStatusCancelled,
		CancelReason:  "customer request",
		CancelTax:     decimal.NewFromInt(50),
		RefundAmount:  decimal.NewFromInt(920),
	}

	resp := BookingFromDomain(booking)
	if resp.Cancellation == nil {
		t.Fatalf("expected cancellation info on cancelled booking")
	}
	if !resp.Cancellation.RefundAmount.Equal(decimal.NewFromInt(920)) {
		t.Fatalf("expected refund 920, got %s", resp.Cancellation.RefundAmount)
	}
	if resp.Cancellation.Reason != "customer request" {
		t.Fatalf("unexpected reason %q", resp.Cancellation.Reason)
	}
}

func TestUserResponseNeverSerializesPasswordHash(t *testing.T) {
	user := &domain.User{
		ID:             "u-1",
		Email:          "ops@agency.test",
		HashedPassword: "bcrypt-secret",
		Role:           domain.RoleOperator,
		Active:         true,
	}

	data, err := json.Marshal(UserFromDomain(user))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if strings.Contains(string(data), "bcrypt-secret") {
		t.Fatalf("password hash leaked into response: %s", data)
	}
}

func TestEntryFromDomain(t *testing.T) {
	entry := &domain.LedgerEntry{
		ID:           "le-1",
		Amount:       decimal.NewFromInt(300),
		Direction:    domain.DirectionOut,
		OriginKind:   domain.OriginExpense,
		OriginID:     "exp-1",
		BalanceAfter: decimal.NewFromInt(-300),
	}

	resp := EntryFromDomain(entry)
	if resp.Direction != domain.DirectionOut || resp.OriginKind != domain.OriginExpense {
		t.Fatalf("unexpected response %+v", resp)
	}
	if !resp.BalanceAfter.Equal(decimal.NewFromInt(-300)) {
		t.Fatalf("expected balance after -300, got %s", resp.BalanceAfter)
	}
}
