package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gleam/dashboard/internal/auth"
	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrNoUpstreamToken = errors.New("backend login response has no token")
	ErrSessionRevoked  = errors.New("session revoked or expired")
)

// AuthService keeps dashboard sessions. Credentials are checked by the backend; the session
// stores the backend token so the browser never sees it.
type AuthService struct {
	backend Backend
	repo    *repository.AuthRepository
	jwt     *auth.JWTService
}

func NewAuthService(backend Backend, repo *repository.AuthRepository, jwt *auth.JWTService) *AuthService {
	return &AuthService{backend: backend, repo: repo, jwt: jwt}
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest, userAgent, ip string) (*dto.LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	v := &ValidationError{}
	if req.Username == "" {
		v.add("username", "Username wajib diisi")
	}
	if req.Password == "" {
		v.add("password", "Password wajib diisi")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var resp dto.UpstreamLoginResponse
	if err := s.backend.Post(ctx, "/login", "", req, &resp); err != nil {
		return nil, err
	}
	upstreamToken := resp.BearerToken()
	if upstreamToken == "" {
		return nil, ErrNoUpstreamToken
	}

	role := domain.ParseRole(resp.User.Role)
	profile := resp.User
	profile.Role = string(role)

	expiresAt := time.Now().Add(s.jwt.GetSessionExpiry())
	session := &domain.Session{
		UserID:        profile.ID.String(),
		Role:          role,
		UpstreamToken: upstreamToken,
		Profile:       profileToJSONB(profile),
		UserAgent:     optional(userAgent),
		IPAddress:     optional(ip),
		ExpiresAt:     expiresAt,
	}
	if err := s.repo.CreateSession(session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, _, err := s.jwt.GenerateSessionToken(session.ID, session.UserID, string(role), expiresAt)
	if err != nil {
		_ = s.repo.DeleteSession(session.ID)
		return nil, err
	}

	log.Printf("[Auth] User %s signed in as %s", session.UserID, role)
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.GetSessionExpiry().Seconds()),
		ExpiresAt:   expiresAt,
		User:        profile,
	}, nil
}

// Logout revokes the session token and drops the stored session.
func (s *AuthService) Logout(sessionID uuid.UUID, jti string, expiresAt time.Time) error {
	if err := s.repo.BlacklistToken(jti, &sessionID, expiresAt, "logout"); err != nil {
		return err
	}
	return s.repo.DeleteSession(sessionID)
}

// Session resolves a validated session token to its stored session.
func (s *AuthService) Session(claims *auth.SessionClaims) (*domain.Session, error) {
	revoked, err := s.repo.IsTokenBlacklisted(claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrSessionRevoked
	}
	id, err := uuid.Parse(claims.Sub)
	if err != nil {
		return nil, ErrSessionRevoked
	}
	session, err := s.repo.FindActiveSession(id)
	if err != nil {
		return nil, ErrSessionRevoked
	}
	if err := s.repo.TouchSession(id); err != nil {
		log.Printf("[Auth] Failed to touch session %s: %v", id, err)
	}
	return session, nil
}

// Profile returns the cached profile, or re-reads it from the backend when refresh is set.
func (s *AuthService) Profile(ctx context.Context, session *domain.Session, refresh bool) (*dto.Profile, error) {
	if !refresh {
		return profileFromJSONB(session.Profile, session.Role)
	}
	var profile dto.Profile
	if err := s.backend.Get(ctx, "/profile", nil, session.UpstreamToken, &profile); err != nil {
		return nil, err
	}
	return s.cacheProfile(session, profile)
}

func (s *AuthService) UpdateProfile(ctx context.Context, session *domain.Session, req dto.UpdateProfileRequest) (*dto.Profile, error) {
	v := &ValidationError{}
	if req.Nama != nil {
		*req.Nama = strings.TrimSpace(*req.Nama)
		if *req.Nama == "" {
			v.add("name", "Nama tidak boleh kosong")
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var profile dto.Profile
	if err := s.backend.Patch(ctx, "/profile", session.UpstreamToken, req, &profile); err != nil {
		return nil, err
	}
	return s.cacheProfile(session, profile)
}

func (s *AuthService) UpdatePassword(ctx context.Context, session *domain.Session, req dto.UpdatePasswordRequest) error {
	v := &ValidationError{}
	if req.CurrentPassword == "" {
		v.add("current_password", "Password lama wajib diisi")
	}
	if len(req.NewPassword) < minPasswordLength {
		v.add("new_password", "Password minimal 8 karakter")
	}
	if req.NewPassword != req.ConfirmPassword {
		v.add("new_password_confirmation", "Konfirmasi password tidak sama")
	}
	if err := v.err(); err != nil {
		return err
	}
	return s.backend.Patch(ctx, "/profile/password", session.UpstreamToken, req, nil)
}

// CleanupExpired purges stale sessions and blacklist rows.
func (s *AuthService) CleanupExpired() error {
	sessions, blacklisted, err := s.repo.CleanupExpired()
	if err != nil {
		return err
	}
	if sessions > 0 || blacklisted > 0 {
		log.Printf("[Auth] Cleaned up %d sessions and %d revoked tokens", sessions, blacklisted)
	}
	return nil
}

func (s *AuthService) cacheProfile(session *domain.Session, profile dto.Profile) (*dto.Profile, error) {
	// The session role is fixed at login; a refreshed profile does not change access.
	profile.Role = string(session.Role)
	blob := profileToJSONB(profile)
	if err := s.repo.UpdateProfile(session.ID, blob); err != nil {
		return nil, err
	}
	session.Profile = blob
	return &profile, nil
}

func profileToJSONB(p dto.Profile) domain.JSONB {
	b, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var out domain.JSONB
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

func profileFromJSONB(blob domain.JSONB, role domain.UserRole) (*dto.Profile, error) {
	b, err := json.Marshal(blob)
	if err != nil {
		return nil, err
	}
	var p dto.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	p.Role = string(role)
	return &p, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
