package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"

	log "github.com/sirupsen/logrus"
)

// Store is the persistence auth needs: users in Postgres, codes and revocations in Redis.
type Store interface {
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	IncrCodeRequests(ctx context.Context, phone string, window time.Duration) (int64, error)
	DecrCodeRequests(ctx context.Context, phone string) error
	SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error
	GetCode(ctx context.Context, phone string) (string, error)
	DeleteCode(ctx context.Context, phone string) error

	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// RegistrationHook runs after a new account is created (newcomer badge).
type RegistrationHook interface {
	OnUserRegistered(ctx context.Context, user *models.User)
}

// Options are the tunables of the SMS flow.
type Options struct {
	CodeExpiry   time.Duration
	RequestLimit int64
	Window       time.Duration
	Debug        bool
}

// CodeSent is the result of RequestCode.
type CodeSent struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
	DebugCode string `json:"debug_code,omitempty"`
}

// Session is a freshly issued token pair.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	IsNewUser    bool
}

type Service struct {
	store  Store
	tokens *TokenManager
	sms    SMSProvider
	opts   Options
	hooks  []RegistrationHook
}

func NewService(store Store, tokens *TokenManager, sms SMSProvider, opts Options, hooks ...RegistrationHook) *Service {
	return &Service{store: store, tokens: tokens, sms: sms, opts: opts, hooks: hooks}
}

// Tokens exposes the token manager to the middleware.
func (s *Service) Tokens() *TokenManager { return s.tokens }

// RequestCode sends a fresh 6-digit code to phone.
func (s *Service) RequestCode(ctx context.Context, rawPhone string) (*CodeSent, error) {
	phone, ok := NormalizePhone(rawPhone)
	if !ok {
		return nil, apperrors.ErrInvalidPhone
	}

	count, err := s.store.IncrCodeRequests(ctx, phone, s.opts.Window)
	if err != nil {
		return nil, fmt.Errorf("count code requests: %w", err)
	}
	if count > s.opts.RequestLimit {
		if err := s.store.DecrCodeRequests(ctx, phone); err != nil {
			log.WithError(err).Warn("WARN: failed to roll back code request counter")
		}
		return nil, apperrors.ErrTooManyRequests
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	if err := s.store.SaveCode(ctx, phone, code, s.opts.CodeExpiry); err != nil {
		return nil, fmt.Errorf("save code: %w", err)
	}

	if err := s.sms.SendCode(ctx, phone, code); err != nil {
		log.WithError(err).WithField("phone", phone).Error("ERROR: SMS delivery failed")
		_ = s.store.DeleteCode(ctx, phone)
		_ = s.store.DecrCodeRequests(ctx, phone)
		return nil, apperrors.ErrExternalService.WithMessage("Failed to send SMS").WithError(err)
	}

	resp := &CodeSent{Message: "Code sent", ExpiresIn: int(s.opts.CodeExpiry.Seconds())}
	if s.opts.Debug {
		resp.DebugCode = code
	}
	return resp, nil
}

// VerifyCode checks the code, signs the user in and registers unknown phones.
func (s *Service) VerifyCode(ctx context.Context, rawPhone, code string) (*Session, error) {
	phone, ok := NormalizePhone(rawPhone)
	if !ok {
		return nil, apperrors.ErrInvalidPhone
	}

	stored, err := s.store.GetCode(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}
	if stored == "" || stored != code {
		return nil, apperrors.ErrInvalidCode
	}
	if err := s.store.DeleteCode(ctx, phone); err != nil {
		log.WithError(err).Warn("WARN: failed to delete used code")
	}

	user, isNew, err := s.getOrCreate(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	session.IsNewUser = isNew
	return session, nil
}

func (s *Service) getOrCreate(ctx context.Context, phone string) (*models.User, bool, error) {
	user, err := s.store.GetUserByPhone(ctx, phone)
	if err == nil {
		return user, false, nil
	}
	if !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return nil, false, err
	}

	user = &models.User{Phone: phone, Role: models.RoleStudent, IsActive: true}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	log.WithField("user_id", user.ID).Info("new user registered")

	for _, h := range s.hooks {
		h.OnUserRegistered(ctx, user)
	}
	return user, true, nil
}

// Refresh issues a new access token for a valid, non-revoked refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", apperrors.ErrInvalidToken.WithError(err)
	}

	revoked, err := s.store.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return "", apperrors.ErrInvalidToken
	}

	user, err := s.ActiveUser(ctx, claims.Subject)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueAccess(user)
}

// Logout revokes the refresh token until its natural expiry. Invalid tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.store.RevokeToken(ctx, claims.ID, ttl)
}

// Authenticate resolves an access token to an active user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.Parse(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, apperrors.ErrInvalidToken.WithError(err)
	}
	return s.ActiveUser(ctx, claims.Subject)
}

// ActiveUser loads a user and rejects banned accounts.
func (s *Service) ActiveUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*Session, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

var codeMax = big.NewInt(1000000)

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
