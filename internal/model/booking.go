package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tour is one row of the public tour listing.
type Tour struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	CompanyName  string    `json:"companyName"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	AvgStar      float64   `json:"avgStar"`
	TotalRating  int       `json:"totalRating"`
	OnlyFromCost int64     `json:"onlyFromCost"`
	CreatedAt    time.Time `json:"createdAt"`
	IsDeleted    bool      `json:"isDeleted"`
}

// TicketType is a sellable price category attached to a tour.
type TicketType struct {
	ID                      string     `json:"id"`
	DefaultNetCost          int64      `json:"defaultNetCost"`
	MinimumPurchaseQuantity int        `json:"minimumPurchaseQuantity"`
	TicketKind              TicketKind `json:"ticketKind"`
	TourID                  string     `json:"tourId"`
}

// TourDetail is the full detail payload of a single tour.
type TourDetail struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	CompanyName  string       `json:"companyName"`
	Description  string       `json:"description"`
	About        string       `json:"about"`
	AvgStar      float64      `json:"avgStar"`
	TotalRating  int          `json:"totalRating"`
	OnlyFromCost int64        `json:"onlyFromCost"`
	Include      string       `json:"include"`
	PickInfo     string       `json:"pickinfor"`
	TicketTypes  []TicketType `json:"ticketTypes"`
	ImageURLs    []string     `json:"imageUrls"`
}

// TourSchedule is one bookable departure of a tour.
type TourSchedule struct {
	ID       string `json:"id"`
	StartDay string `json:"startDay"`
	EndDay   string `json:"endDay"`
	TourID   string `json:"tourId"`
}

// TicketSchedule is the availability of one ticket type on one schedule.
type TicketSchedule struct {
	TicketTypeID    string     `json:"ticketTypeId"`
	TicketKind      TicketKind `json:"ticketKind"`
	NetCost         int64      `json:"netCost"`
	AvailableTicket int        `json:"availableTicket"`
	TourScheduleID  string     `json:"tourScheduleId"`
}

// DaySchedule groups ticket schedules by calendar day.
type DaySchedule struct {
	Day             string           `json:"day"`
	TicketSchedules []TicketSchedule `json:"ticketSchedules"`
}

// OrderTicket is one requested ticket line when placing an order.
type OrderTicket struct {
	TicketTypeID string `json:"ticketTypeId"`
	Quantity     int    `json:"quantity"`
}

// OrderRequest is the payload for creating an order from a cart item.
type OrderRequest struct {
	TourScheduleID string        `json:"tourScheduleId"`
	Name           string        `json:"name"`
	PhoneNumber    string        `json:"phoneNumber"`
	Email          string        `json:"email"`
	VoucherCode    string        `json:"voucherCode"`
	Tickets        []OrderTicket `json:"tickets"`
}

// Order and payment status codes as reported by the backend.
const (
	OrderStatusSubmitted = 0
	OrderStatusPaid      = 1
	OrderStatusCancelled = 2

	PaymentStatusPending = 0
	PaymentStatusPaid    = 1
)

// OrderDetailTicket is one purchased line inside an order.
type OrderDetailTicket struct {
	Code         string     `json:"code"`
	TicketTypeID string     `json:"ticketTypeId"`
	Quantity     int        `json:"quantity"`
	GrossCost    int64      `json:"grossCost"`
	TicketKind   TicketKind `json:"ticketKind"`
}

// OrderDetail is the server's view of a placed order. PaymentStatus here is
// the authoritative payment signal; redirect-URL hints never are.
type OrderDetail struct {
	TourID         uuid.UUID           `json:"tourId"`
	Code           string              `json:"code"`
	RefCode        int64               `json:"refCode"`
	Name           string              `json:"name"`
	PhoneNumber    string              `json:"phoneNumber"`
	Email          string              `json:"email"`
	TourName       string              `json:"tourName"`
	TourThumbnail  string              `json:"tourThumbnail"`
	TourScheduleID uuid.UUID           `json:"tourScheduleId"`
	TourDate       time.Time           `json:"tourDate"`
	OrderDate      time.Time           `json:"orderDate"`
	OrderTickets   []OrderDetailTicket `json:"orderTickets"`
	DiscountAmount int64               `json:"discountAmount"`
	GrossCost      int64               `json:"grossCost"`
	NetCost        int64               `json:"netCost"`
	Status         int                 `json:"status"`
	PaymentLinkID  string              `json:"paymentLinkId"`
	PaymentStatus  int                 `json:"paymentStatus"`
}

// ResponseURL carries the redirect targets handed to the payment gateway.
type ResponseURL struct {
	ReturnURL string `json:"returnUrl"`
	CancelURL string `json:"cancelUrl"`
}

// PaymentRequest asks the backend for a gateway checkout link.
type PaymentRequest struct {
	BookingID   string      `json:"bookingId"`
	ResponseURL ResponseURL `json:"responseUrl"`
}

// Wallet is the user's stored balance.
type Wallet struct {
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

// Voucher is a discount voucher owned by the user. Percent is a fraction
// in [0,1]; MaxDiscountAmount caps the absolute discount.
type Voucher struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	Description       string    `json:"description"`
	Percent           float64   `json:"percent"`
	MaxDiscountAmount int64     `json:"maxDiscountAmount"`
	Quantity          int       `json:"quantity"`
	AvailableVoucher  int       `json:"availableVoucher"`
	ExpiryDate        string    `json:"expiryDate"`
	CreatedAt         string    `json:"createdAt"`
	IsDeleted         bool      `json:"isDeleted"`
}

// UserProfile is the authenticated user's account record.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	UserName    string    `json:"userName"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address"`
	CompanyName string    `json:"companyName"`
	RoleName    string    `json:"roleName"`
	Balance     int64     `json:"balance"`
	IsActive    bool      `json:"isActive"`
}

// Setting is one system-wide configuration row.
type Setting struct {
	ID           string  `json:"id"`
	SettingCode  string  `json:"settingCode"`
	SettingKey   string  `json:"settingKey"`
	SettingValue float64 `json:"settingValue"`
}
