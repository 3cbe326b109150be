// Package model defines domain entities shared by the session manager,
// the cart ledger, and the API services.
package model

import "time"

// TokenEnvelope is the token payload returned by the login and refresh
// endpoints. ExpiresIn is a lifetime in seconds, relative to receipt.
type TokenEnvelope struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
	Role         string `json:"role"`
}

// Valid reports whether the envelope carries enough to establish a session.
func (e TokenEnvelope) Valid() bool {
	return e.AccessToken != "" && e.RefreshToken != "" && e.ExpiresIn > 0
}

// Session is the current authentication context. Zero value means anonymous.
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         string
	ExpiresAt    time.Time // absolute access token expiry
}

// TicketKind enumerates the pricing categories a schedule sells.
type TicketKind int

const (
	KindAdult TicketKind = iota
	KindChild
	KindPerGroupOfThree
	KindPerGroupOfFive
	KindPerGroupOfSeven
	KindPerGroupOfTen
)

// TicketLine is one priced ticket row inside a cart item.
type TicketLine struct {
	TicketTypeID string     `json:"ticketTypeId"`
	Kind         TicketKind `json:"kind"`
	Quantity     int        `json:"quantity"`
	UnitPrice    int64      `json:"unitPrice"` // VND per ticket
}

// CartItem is one schedule's worth of selected tickets for one tour.
// TotalPrice is derived and recomputed by the ledger on every mutation.
type CartItem struct {
	TourID     string       `json:"tourId"`
	TourTitle  string       `json:"tourTitle"`
	ScheduleID string       `json:"scheduleId"` // unique key within the cart
	Day        string       `json:"day"`
	Tickets    []TicketLine `json:"tickets"`
	TotalPrice int64        `json:"totalPrice"`
}

// Total returns the sum of quantity times unit price over all lines.
func (c CartItem) Total() int64 {
	var sum int64
	for _, t := range c.Tickets {
		sum += int64(t.Quantity) * t.UnitPrice
	}
	return sum
}
