package service

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/vmtran/tourbook/internal/model"
)

func TestVoucherOwn_FiltersByExpiry(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	s := NewVoucherService(gw)
	s.now = func() time.Time {
		return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	}

	if _, err := s.Own(context.Background()); err != nil {
		t.Fatalf("Own: %v", err)
	}

	c := gw.lastCall(t)
	if !strings.HasPrefix(c.path, PathVoucherOwn+"?") {
		t.Fatalf("path = %q", c.path)
	}
	u, err := url.Parse(c.path)
	if err != nil {
		t.Fatalf("parse path: %v", err)
	}
	q := u.Query()
	if q.Get("$count") != "true" {
		t.Fatalf("query = %v", q)
	}
	if got := q.Get("$filter"); got != "expiryDate gt cast(2026-03-15, Edm.Date)" {
		t.Fatalf("filter = %q", got)
	}
}

func TestDiscount(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		voucher model.Voucher
		gross   int64
		want    int64
	}{
		{"percent", model.Voucher{Percent: 0.1}, 500000, 50000},
		{"capped", model.Voucher{Percent: 0.5, MaxDiscountAmount: 100000}, 500000, 100000},
		{"cap above percent", model.Voucher{Percent: 0.1, MaxDiscountAmount: 100000}, 500000, 50000},
		{"never exceeds gross", model.Voucher{Percent: 1.0}, 200000, 200000},
		{"zero percent", model.Voucher{}, 500000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Discount(tc.voucher, tc.gross); got != tc.want {
				t.Fatalf("Discount = %d, want %d", got, tc.want)
			}
		})
	}
}
