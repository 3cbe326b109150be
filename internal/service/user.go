package service

import (
	"context"

	"github.com/vmtran/tourbook/internal/model"
)

// UserService reads and updates the authenticated account.
type UserService interface {
	Profile(ctx context.Context) (model.UserProfile, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) error
}

// UpdateProfileRequest is the editable subset of the profile.
type UpdateProfileRequest struct {
	ID          string `json:"id"`
	UserName    string `json:"userName"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	RoleName    string `json:"roleName"`
}

type UserServiceImpl struct {
	gw Gateway
}

var _ UserService = (*UserServiceImpl)(nil)

func NewUserService(gw Gateway) *UserServiceImpl {
	return &UserServiceImpl{gw: gw}
}

func (s *UserServiceImpl) Profile(ctx context.Context) (model.UserProfile, error) {
	var resp apiResponse[model.UserProfile]
	if err := s.gw.Get(ctx, PathProfile, &resp); err != nil {
		return model.UserProfile{}, err
	}
	return resp.Data, nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, req UpdateProfileRequest) error {
	if req.RoleName == "" {
		req.RoleName = "Tourist"
	}
	return s.gw.Put(ctx, PathUser, req, nil)
}
