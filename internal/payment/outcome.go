// Package payment infers a checkout outcome from third-party redirect and
// app deep-link URLs. The gateways involved expose no signed callback to
// this client, so everything here is a best-effort hint over opaque URLs:
// callers must confirm against the order's PaymentStatus before treating a
// booking as paid.
package payment

import (
	"net/url"
	"strings"
)

// Status is the classified outcome of a redirect URL.
type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the classification of one navigation event.
type Outcome struct {
	Status  Status
	OrderID string // from the orderId query param, may be empty
}

// ClassifyURL inspects a redirect or deep-link URL for the query parameters
// and path markers the payment gateways are known to emit. Explicit
// parameters win over path heuristics.
func ClassifyURL(raw string) Outcome {
	u, err := url.Parse(raw)
	if err != nil {
		return Outcome{}
	}
	q := u.Query()
	out := Outcome{OrderID: q.Get("orderId")}

	// VNPay response code: 00 is the only success value.
	if code := q.Get("vnp_ResponseCode"); code != "" {
		if code == "00" {
			out.Status = StatusSuccess
		} else {
			out.Status = StatusCancelled
		}
		return out
	}
	if q.Get("cancel") == "true" {
		out.Status = StatusCancelled
		return out
	}
	if q.Get("status") == "true" || q.Get("paymentStatus") == "PAID" {
		out.Status = StatusSuccess
		return out
	}

	// App-scheme deep links parse with "payment" as the host part.
	loc := strings.ToLower(u.Host + u.Path)
	switch {
	case strings.Contains(loc, "cancel"):
		out.Status = StatusCancelled
	case strings.Contains(loc, "success"), strings.Contains(loc, "return"):
		out.Status = StatusSuccess
	}
	return out
}
