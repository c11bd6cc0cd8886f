package service

import (
	"context"
	"encoding/json"
	"log"
	"net/mail"
	"net/url"
	"strings"

	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/dto"
	"golang.org/x/sync/errgroup"
)

const minPasswordLength = 8

type AdminService struct {
	backend Backend
}

func NewAdminService(backend Backend) *AdminService {
	return &AdminService{backend: backend}
}

func (s *AdminService) ListUsers(ctx context.Context, token string, query url.Values) ([]dto.Profile, error) {
	users := []dto.Profile{}
	if err := s.backend.Get(ctx, "/admin/users", query, token, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *AdminService) CreateUser(ctx context.Context, token string, req dto.AccountRequest) (*dto.Profile, error) {
	if err := validateAccount(&req, true); err != nil {
		return nil, err
	}
	var user dto.Profile
	if err := s.backend.Post(ctx, "/admin/users", token, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, token, id string, req dto.AccountRequest) (*dto.Profile, error) {
	if err := validateAccount(&req, false); err != nil {
		return nil, err
	}
	var user dto.Profile
	if err := s.backend.Put(ctx, pathf("/admin/users/%s", id), token, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, token, id string) error {
	return s.backend.Delete(ctx, pathf("/admin/users/%s", id), token)
}

func validateAccount(req *dto.AccountRequest, creating bool) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Nama = strings.TrimSpace(req.Nama)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(strings.ToLower(req.Role))

	v := &ValidationError{}
	if req.Username == "" {
		v.add("username", "Username wajib diisi")
	}
	if req.Nama == "" {
		v.add("name", "Nama wajib diisi")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			v.add("email", "Email tidak valid")
		}
	}
	if !domain.UserRole(req.Role).Valid() {
		v.add("role", "Role tidak dikenal")
	}
	if req.Password != nil || creating {
		if req.Password == nil || len(*req.Password) < minPasswordLength {
			v.add("password", "Password minimal 8 karakter")
		}
	}
	return v.err()
}

type statSource struct {
	path string
	dst  **int
}

// DashboardStats counts each source concurrently. A source that fails is left nil so the
// rest of the dashboard still renders. Screenings are counted on the caller's role path;
// users and reviews are admin-only upstream and stay nil for other roles.
func (s *AdminService) DashboardStats(ctx context.Context, token string, role domain.UserRole) *dto.DashboardStats {
	stats := &dto.DashboardStats{}
	sources := []statSource{
		{"/forum/threads", &stats.Threads},
		{screeningPath(role), &stats.Screenings},
	}
	if role == domain.RoleAdmin {
		sources = append(sources,
			statSource{"/admin/users", &stats.Users},
			statSource{"/admin/reviews", &stats.Reviews},
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			var items []json.RawMessage
			if err := s.backend.Get(gctx, src.path, nil, token, &items); err != nil {
				log.Printf("[Admin] Stats source %s failed: %v", src.path, err)
				return nil
			}
			n := len(items)
			*src.dst = &n
			return nil
		})
	}
	_ = g.Wait()
	return stats
}
