package dto

import "blogora/internal/model"

type UpdateProfileRequest struct {
	Username *string `form:"username"`
	Password *string `form:"password"`
	Bio      *string `form:"bio"`
}

type ProfileResponse struct {
	User    *model.User    `json:"user"`
	Profile *model.Profile `json:"profile"`
}
