package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/auth"
	"github.com/sponsorconnect/backend/internal/config"
	"github.com/sponsorconnect/backend/internal/models"
	"go.uber.org/zap"
)

// DraftCloser flushes and forgets a brand's in-memory form on logout.
type DraftCloser interface {
	Close(ctx context.Context, owner uuid.UUID) error
}

type AccountService struct {
	accounts AccountStore
	sessions auth.SessionStore
	drafts   DraftCloser
	audit    AuditLogger
	cfg      *config.Config
	log      *zap.Logger
}

func NewAccountService(
	accounts AccountStore,
	sessions auth.SessionStore,
	drafts DraftCloser,
	audit AuditLogger,
	cfg *config.Config,
	log *zap.Logger,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		sessions: sessions,
		drafts:   drafts,
		audit:    audit,
		cfg:      cfg,
		log:      log,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	UserType string
}

// ClientInfo describes where a login came from.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *models.Account `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput, client ClientInfo) (*AuthResult, error) {
	userType := models.NormalizeUserType(in.UserType)
	if userType == "" {
		return nil, apperrors.Validation("userType must be brand or creator")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	acc := &models.Account{
		Name:         name,
		Email:        normalizeEmail(in.Email),
		UserType:     userType,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, models.AuditLog{
		ActorID:    &acc.ID,
		ActorType:  userType,
		Action:     "account_created",
		EntityType: userType,
		EntityID:   &acc.ID,
	})
	s.log.Info("account created", zap.String("user_id", acc.ID.String()), zap.String("user_type", userType))

	return s.issue(ctx, acc, client)
}

func (s *AccountService) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	acc, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(acc.PasswordHash, password) {
		return nil, apperrors.ErrBadCredentials
	}
	return s.issue(ctx, acc, client)
}

func (s *AccountService) issue(ctx context.Context, acc *models.Account, client ClientInfo) (*AuthResult, error) {
	id := models.Identity{UserID: acc.ID, UserType: acc.UserType, Name: acc.Name, Email: acc.Email}
	sid := auth.NewSessionID()

	token, expiresAt, err := auth.GenerateJWT(s.cfg.JWTSecret, id, sid, s.cfg.JWTExpiration)
	if err != nil {
		return nil, apperrors.Wrap(err, "sign token")
	}

	err = s.sessions.Create(ctx, &auth.Session{
		ID:        sid,
		UserID:    acc.ID,
		UserType:  acc.UserType,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "create session")
	}

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: acc}, nil
}

// Logout revokes the session and saves any pending campaign form.
func (s *AccountService) Logout(ctx context.Context, id models.Identity, sessionID string) error {
	if id.IsBrand() && s.drafts != nil {
		if err := s.drafts.Close(ctx, id.UserID); err != nil {
			s.log.Warn("flush draft on logout failed", zap.String("user_id", id.UserID.String()), zap.Error(err))
		}
	}
	return s.sessions.Delete(ctx, id.UserID, sessionID)
}

func (s *AccountService) Profile(ctx context.Context, id models.Identity) (*models.Account, error) {
	return s.accounts.GetByID(ctx, id.UserType, id.UserID)
}

type ProfileInput struct {
	Name     string
	Email    string
	UserType string
}

// UpdateProfile sets name and email. The role chosen at signup is permanent.
func (s *AccountService) UpdateProfile(ctx context.Context, id models.Identity, in ProfileInput) (*models.Account, error) {
	if in.UserType != "" && models.NormalizeUserType(in.UserType) != id.UserType {
		return nil, apperrors.Validation("userType cannot be changed")
	}

	acc, err := s.accounts.GetByID(ctx, id.UserType, id.UserID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		acc.Name = name
	}
	if email := normalizeEmail(in.Email); email != "" {
		acc.Email = email
	}

	if err := s.accounts.Update(ctx, acc); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, models.AuditLog{
		ActorID:    &id.UserID,
		ActorType:  actorType(id),
		Action:     "profile_updated",
		EntityType: id.UserType,
		EntityID:   &id.UserID,
	})
	return acc, nil
}
