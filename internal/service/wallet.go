package service

import (
	"context"
	"fmt"

	"github.com/vmtran/tourbook/internal/model"
)

// WalletService reads and moves the user's stored balance. Withdrawals are
// OTP-confirmed: RequestOTP first, then WithdrawWithOTP with the code.
type WalletService interface {
	Get(ctx context.Context) (model.Wallet, error)
	RequestOTP(ctx context.Context) error
	WithdrawWithOTP(ctx context.Context, amount int64, otp string) error
	Deposit(ctx context.Context, amount int64) (string, error)
}

type WalletServiceImpl struct {
	gw Gateway
}

var _ WalletService = (*WalletServiceImpl)(nil)

func NewWalletService(gw Gateway) *WalletServiceImpl {
	return &WalletServiceImpl{gw: gw}
}

func (s *WalletServiceImpl) Get(ctx context.Context) (model.Wallet, error) {
	var w model.Wallet
	if err := s.gw.Get(ctx, PathWallet, &w); err != nil {
		return model.Wallet{}, err
	}
	return w, nil
}

func (s *WalletServiceImpl) RequestOTP(ctx context.Context) error {
	return s.gw.Post(ctx, PathWalletOTP, nil, nil)
}

func (s *WalletServiceImpl) WithdrawWithOTP(ctx context.Context, amount int64, otp string) error {
	if amount <= 0 {
		return fmt.Errorf("wallet: withdraw amount must be positive")
	}
	if otp == "" {
		return fmt.Errorf("wallet: missing otp")
	}
	body := map[string]any{"amount": amount, "otp": otp}
	return s.gw.Post(ctx, PathWalletWithdraw, body, nil)
}

// Deposit returns the gateway checkout URL for topping up the balance.
func (s *WalletServiceImpl) Deposit(ctx context.Context, amount int64) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("wallet: deposit amount must be positive")
	}
	var resp struct {
		URL string `json:"url"`
	}
	if err := s.gw.Post(ctx, PathWalletDeposit, map[string]any{"amount": amount}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
