package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/vmtran/tourbook/internal/model"
)

// TourListQuery shapes the OData listing request.
type TourListQuery struct {
	Search string // matched against the title
	Top    int
	Skip   int
	Count  bool
}

// TourService reads public tour data and posts ratings/feedback.
type TourService interface {
	List(ctx context.Context, q TourListQuery) ([]model.Tour, int64, error)
	Detail(ctx context.Context, id string) (model.TourDetail, error)
	Schedules(ctx context.Context, tourID string) ([]model.TourSchedule, error)
	ScheduleTickets(ctx context.Context, tourID string) ([]model.DaySchedule, error)
	PostRating(ctx context.Context, req RatingRequest) error
	PostFeedback(ctx context.Context, req FeedbackRequest) error
}

// RatingRequest scores a tour the user has completed.
type RatingRequest struct {
	TourID    string   `json:"tourId"`
	Star      int      `json:"star"`
	Comment   string   `json:"comment"`
	ImageURLs []string `json:"imageUrls"`
}

// FeedbackRequest is free-form feedback on a tour.
type FeedbackRequest struct {
	TourID      string `json:"tourId"`
	Description string `json:"description"`
}

type TourServiceImpl struct {
	gw Gateway
}

var _ TourService = (*TourServiceImpl)(nil)

func NewTourService(gw Gateway) *TourServiceImpl {
	return &TourServiceImpl{gw: gw}
}

// List queries the OData tour collection. The second return is the total
// count, -1 when not requested.
func (s *TourServiceImpl) List(ctx context.Context, q TourListQuery) ([]model.Tour, int64, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("$filter", fmt.Sprintf("contains(tolower(title), '%s')", escapeOData(q.Search)))
	}
	if q.Top > 0 {
		v.Set("$top", strconv.Itoa(q.Top))
	}
	if q.Skip > 0 {
		v.Set("$skip", strconv.Itoa(q.Skip))
	}
	if q.Count {
		v.Set("$count", "true")
	}
	path := PathODataTour
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}

	var resp odataResponse[model.Tour]
	if err := s.gw.Get(ctx, path, &resp); err != nil {
		return nil, 0, err
	}
	count := resp.Count
	if !q.Count {
		count = -1
	}
	return resp.Value, count, nil
}

func (s *TourServiceImpl) Detail(ctx context.Context, id string) (model.TourDetail, error) {
	var resp struct {
		Tour model.TourDetail `json:"tour"`
	}
	if err := s.gw.Get(ctx, PathTour+"/"+url.PathEscape(id), &resp); err != nil {
		return model.TourDetail{}, err
	}
	return resp.Tour, nil
}

// Schedules returns the bookable departures of a tour.
func (s *TourServiceImpl) Schedules(ctx context.Context, tourID string) ([]model.TourSchedule, error) {
	var resp apiResponse[[]model.TourSchedule]
	if err := s.gw.Get(ctx, PathTourSchedule+"/"+url.PathEscape(tourID), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ScheduleTickets returns per-day ticket availability for a tour.
func (s *TourServiceImpl) ScheduleTickets(ctx context.Context, tourID string) ([]model.DaySchedule, error) {
	var resp apiResponse[[]model.DaySchedule]
	if err := s.gw.Get(ctx, PathTourScheduleTicket+"/"+url.PathEscape(tourID), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (s *TourServiceImpl) PostRating(ctx context.Context, req RatingRequest) error {
	return s.gw.Post(ctx, PathRating, req, nil)
}

func (s *TourServiceImpl) PostFeedback(ctx context.Context, req FeedbackRequest) error {
	return s.gw.Post(ctx, PathFeedback, req, nil)
}

// escapeOData doubles single quotes inside an OData string literal.
func escapeOData(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\'' {
			out = append(out, '\'')
		}
		out = append(out, r)
	}
	return string(out)
}
