package service

import (
	"context"
	"net/url"
	"time"

	"github.com/vmtran/tourbook/internal/model"
)

// VoucherService lists the vouchers the user owns.
type VoucherService interface {
	// Own lists unexpired vouchers owned by the user.
	Own(ctx context.Context) ([]model.Voucher, error)
}

type VoucherServiceImpl struct {
	gw  Gateway
	now func() time.Time
}

var _ VoucherService = (*VoucherServiceImpl)(nil)

func NewVoucherService(gw Gateway) *VoucherServiceImpl {
	return &VoucherServiceImpl{gw: gw, now: time.Now}
}

func (s *VoucherServiceImpl) Own(ctx context.Context) ([]model.Voucher, error) {
	today := s.now().UTC().Format("2006-01-02")
	v := url.Values{}
	v.Set("$count", "true")
	v.Set("$filter", "expiryDate gt cast("+today+", Edm.Date)")

	var resp odataResponse[model.Voucher]
	if err := s.gw.Get(ctx, PathVoucherOwn+"?"+v.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// Discount applies a voucher to a gross amount: percent of the amount,
// capped by MaxDiscountAmount.
func Discount(v model.Voucher, gross int64) int64 {
	d := int64(float64(gross) * v.Percent)
	if v.MaxDiscountAmount > 0 && d > v.MaxDiscountAmount {
		d = v.MaxDiscountAmount
	}
	if d > gross {
		d = gross
	}
	return d
}
