package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/vmtran/tourbook/internal/model"
)

// OrderService places orders and drives the gateway payment hand-off.
type OrderService interface {
	Create(ctx context.Context, req model.OrderRequest) (string, error)
	Detail(ctx context.Context, orderID string) (model.OrderDetail, error)
	// Cancel voids an unpaid order.
	Cancel(ctx context.Context, orderID string) error
	// CreatePayment asks the backend for a gateway checkout URL.
	CreatePayment(ctx context.Context, req model.PaymentRequest) (string, error)
	CancelPayment(ctx context.Context, paymentID string) error
	// Checkout is the composite flow: create the order for a cart item,
	// then request its checkout URL.
	Checkout(ctx context.Context, item model.CartItem, contact Contact, voucherCode string, urls model.ResponseURL) (CheckoutResult, error)
}

// Contact is the purchaser's details attached to an order.
type Contact struct {
	Name        string
	PhoneNumber string
	Email       string
}

// CheckoutResult is the outcome of the composite checkout flow.
type CheckoutResult struct {
	OrderID     string
	CheckoutURL string
}

type OrderServiceImpl struct {
	gw  Gateway
	log *zap.Logger
}

var _ OrderService = (*OrderServiceImpl)(nil)

func NewOrderService(gw Gateway, log *zap.Logger) *OrderServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderServiceImpl{gw: gw, log: log}
}

// Create posts an order and returns its id. Zero-quantity ticket lines are
// dropped; the backend rejects them.
func (s *OrderServiceImpl) Create(ctx context.Context, req model.OrderRequest) (string, error) {
	kept := req.Tickets[:0:0]
	for _, t := range req.Tickets {
		if t.Quantity > 0 {
			kept = append(kept, t)
		}
	}
	req.Tickets = kept
	if len(req.Tickets) == 0 {
		return "", fmt.Errorf("order: no tickets selected")
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := s.gw.Post(ctx, PathOrder, req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (s *OrderServiceImpl) Detail(ctx context.Context, orderID string) (model.OrderDetail, error) {
	if _, err := uuid.FromString(orderID); err != nil {
		return model.OrderDetail{}, fmt.Errorf("order: bad id %q: %w", orderID, err)
	}
	var det model.OrderDetail
	if err := s.gw.Get(ctx, PathOrder+"/"+orderID, &det); err != nil {
		return model.OrderDetail{}, err
	}
	return det, nil
}

func (s *OrderServiceImpl) Cancel(ctx context.Context, orderID string) error {
	return s.gw.Put(ctx, PathOrder+"/"+url.PathEscape(orderID), nil, nil)
}

// CreatePayment returns the gateway checkout URL. The backend has returned
// both a bare string and an {url: ...} object over time; accept either.
func (s *OrderServiceImpl) CreatePayment(ctx context.Context, req model.PaymentRequest) (string, error) {
	var raw json.RawMessage
	if err := s.gw.Post(ctx, PathPayment, req, &raw); err != nil {
		return "", err
	}
	var link string
	if json.Unmarshal(raw, &link) == nil && link != "" {
		return link, nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.URL != "" {
		return obj.URL, nil
	}
	return "", fmt.Errorf("payment: no checkout url in response")
}

func (s *OrderServiceImpl) CancelPayment(ctx context.Context, paymentID string) error {
	return s.gw.Put(ctx, PathPayment+"/"+url.PathEscape(paymentID), nil, nil)
}

// Checkout turns one cart item into a paid-for order hand-off: order first,
// checkout URL second. The order survives a failed payment request and can
// be retried or cancelled by id.
func (s *OrderServiceImpl) Checkout(ctx context.Context, item model.CartItem, contact Contact, voucherCode string, urls model.ResponseURL) (CheckoutResult, error) {
	req := model.OrderRequest{
		TourScheduleID: item.ScheduleID,
		Name:           contact.Name,
		PhoneNumber:    contact.PhoneNumber,
		Email:          contact.Email,
		VoucherCode:    voucherCode,
	}
	for _, t := range item.Tickets {
		req.Tickets = append(req.Tickets, model.OrderTicket{
			TicketTypeID: t.TicketTypeID,
			Quantity:     t.Quantity,
		})
	}

	orderID, err := s.Create(ctx, req)
	if err != nil {
		return CheckoutResult{}, err
	}
	s.log.Info("order created",
		zap.String("orderId", orderID),
		zap.String("scheduleId", item.ScheduleID),
	)

	link, err := s.CreatePayment(ctx, model.PaymentRequest{
		BookingID:   orderID,
		ResponseURL: urls,
	})
	if err != nil {
		return CheckoutResult{OrderID: orderID}, err
	}
	return CheckoutResult{OrderID: orderID, CheckoutURL: link}, nil
}
