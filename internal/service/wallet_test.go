package service

import (
	"context"
	"testing"
)

func TestWalletGet(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{responses: map[string]string{
		PathWallet: `{"userId":"u1","balance":1500000}`,
	}}
	s := NewWalletService(gw)

	w, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if w.Balance != 1500000 {
		t.Fatalf("balance = %d", w.Balance)
	}
}

func TestWalletWithdraw_Validation(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	s := NewWalletService(gw)
	ctx := context.Background()

	if err := s.WithdrawWithOTP(ctx, 0, "123456"); err == nil {
		t.Fatal("want error for non-positive amount")
	}
	if err := s.WithdrawWithOTP(ctx, 100000, ""); err == nil {
		t.Fatal("want error for missing otp")
	}
	if len(gw.calls) != 0 {
		t.Fatalf("invalid inputs must not hit the gateway, got %d calls", len(gw.calls))
	}

	if err := s.WithdrawWithOTP(ctx, 100000, "123456"); err != nil {
		t.Fatalf("WithdrawWithOTP: %v", err)
	}
	c := gw.lastCall(t)
	if c.method != "POST" || c.path != PathWalletWithdraw {
		t.Fatalf("call = %+v", c)
	}
	body, ok := c.body.(map[string]any)
	if !ok || body["otp"] != "123456" {
		t.Fatalf("body = %+v", c.body)
	}
}

func TestWalletDeposit_ReturnsCheckoutURL(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{responses: map[string]string{
		PathWalletDeposit: `{"url":"https://pay.example/checkout/1"}`,
	}}
	s := NewWalletService(gw)

	u, err := s.Deposit(context.Background(), 200000)
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if u != "https://pay.example/checkout/1" {
		t.Fatalf("url = %q", u)
	}

	if _, err := s.Deposit(context.Background(), -1); err == nil {
		t.Fatal("want error for non-positive amount")
	}
}

func TestWalletRequestOTP(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	s := NewWalletService(gw)

	if err := s.RequestOTP(context.Background()); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	c := gw.lastCall(t)
	if c.method != "POST" || c.path != PathWalletOTP {
		t.Fatalf("call = %+v", c)
	}
}
