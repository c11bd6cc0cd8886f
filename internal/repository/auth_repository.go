package repository

import (
	"time"

	"github.com/gleam/dashboard/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) CreateSession(session *domain.Session) error {
	return r.db.Create(session).Error
}

// FindActiveSession returns the session if it exists and has not expired.
func (r *AuthRepository) FindActiveSession(id uuid.UUID) (*domain.Session, error) {
	var session domain.Session
	err := r.db.Where("id = ? AND expires_at > ?", id, time.Now()).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *AuthRepository) UpdateProfile(id uuid.UUID, profile domain.JSONB) error {
	return r.db.Model(&domain.Session{}).
		Where("id = ?", id).
		Update("profile", profile).Error
}

func (r *AuthRepository) TouchSession(id uuid.UUID) error {
	return r.db.Model(&domain.Session{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now()).Error
}

func (r *AuthRepository) DeleteSession(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&domain.Session{}).Error
}

func (r *AuthRepository) DeleteUserSessions(userID string) (int64, error) {
	result := r.db.Where("user_id = ?", userID).Delete(&domain.Session{})
	return result.RowsAffected, result.Error
}

func (r *AuthRepository) GetUserSessions(userID string) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *AuthRepository) BlacklistToken(jti string, sessionID *uuid.UUID, expiresAt time.Time, reason string) error {
	blacklist := domain.TokenBlacklist{
		JTI:       jti,
		SessionID: sessionID,
		ExpiresAt: expiresAt,
		Reason:    &reason,
	}
	return r.db.Create(&blacklist).Error
}

func (r *AuthRepository) IsTokenBlacklisted(jti string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.TokenBlacklist{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

// CleanupExpired removes expired sessions and blacklist rows, returning how many of each went.
func (r *AuthRepository) CleanupExpired() (sessions int64, blacklisted int64, err error) {
	now := time.Now()
	res := r.db.Where("expires_at < ?", now).Delete(&domain.Session{})
	if res.Error != nil {
		return 0, 0, res.Error
	}
	sessions = res.RowsAffected

	res = r.db.Where("expires_at < ?", now).Delete(&domain.TokenBlacklist{})
	if res.Error != nil {
		return sessions, 0, res.Error
	}
	return sessions, res.RowsAffected, nil
}
