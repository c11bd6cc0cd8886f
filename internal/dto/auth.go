package dto

import "time"

// Login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpstreamLoginResponse is what the backend answers to POST /login.
type UpstreamLoginResponse struct {
	Token       string  `json:"token"`
	AccessToken string  `json:"access_token"`
	User        Profile `json:"user"`
}

// BearerToken returns whichever token field the backend filled in.
func (r UpstreamLoginResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Profile   `json:"user"`
}

// Profile is the cached user profile blob.
type Profile struct {
	ID        ID      `json:"id"`
	Username  string  `json:"username"`
	Nama      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	Role      string  `json:"role"`
	NoHP      *string `json:"phone,omitempty"`
	Kelurahan *string `json:"kelurahan,omitempty"`
	RW        *string `json:"rw,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type UpdateProfileRequest struct {
	Nama      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	NoHP      *string `json:"phone,omitempty"`
	Kelurahan *string `json:"kelurahan,omitempty"`
	RW        *string `json:"rw,omitempty"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"new_password_confirmation"`
}
