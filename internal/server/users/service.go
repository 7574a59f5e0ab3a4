package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/cryptox"
	"github.com/dmitrijs2005/clipkeeper/internal/server/auth"
)

var ErrUserExists = errors.New("user already exists")

const saltSize = 32

// Session is the credential bundle handed to a signed-in client.
type Session struct {
	AccessKeyID     string
	SecretAccessKey string
	AccessToken     string
	RefreshToken    string
	ExpiresAt       time.Time
}

type Options struct {
	SecretKey              []byte
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration
	StorageAccessKeyID     string
	StorageSecretAccessKey string
}

type Service struct {
	repo   Repository
	tokens TokenRepository
	opts   Options
	now    func() time.Time
}

func NewService(repo Repository, tokens TokenRepository, opts Options) *Service {
	return &Service{repo: repo, tokens: tokens, opts: opts, now: time.Now}
}

// Register creates an account. The password never leaves this call; only
// the salt and the verifier of the derived master key are stored.
func (s *Service) Register(ctx context.Context, username string, password []byte) (*User, error) {
	salt := common.GenerateRandByteArray(saltSize)
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	user, err := s.repo.Create(ctx, &User{UserName: username, Salt: salt, Verifier: cryptox.MakeVerifier(key)})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// GetSalt returns the account salt. Unknown names get a random salt so
// the answer does not reveal which accounts exist.
func (s *Service) GetSalt(ctx context.Context, username string) ([]byte, error) {
	user, err := s.repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.GenerateRandByteArray(saltSize), nil
		}
		return nil, err
	}
	return user.Salt, nil
}

func (s *Service) Login(ctx context.Context, username string, verifierCandidate []byte) (*Session, error) {
	user, err := s.repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare(user.Verifier, verifierCandidate) != 1 {
		return nil, common.ErrUnauthorized
	}
	return s.issue(ctx, user.ID)
}

// Refresh rotates a refresh token: the presented one is consumed and a
// fresh session is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	t, err := s.tokens.FindToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}
	if err := s.tokens.DeleteToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	if !s.now().Before(t.ExpiresAt) {
		return nil, common.ErrRefreshTokenExpired
	}
	return s.issue(ctx, t.UserID)
}

// Revoke deletes refreshToken if it belongs to userID.
func (s *Service) Revoke(ctx context.Context, userID, refreshToken string) error {
	t, err := s.tokens.FindToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if t.UserID != userID {
		return common.ErrUnauthorized
	}
	return s.tokens.DeleteToken(ctx, refreshToken)
}

// UserIDFromAccessToken verifies an access token.
func (s *Service) UserIDFromAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.opts.SecretKey)
}

func (s *Service) issue(ctx context.Context, userID string) (*Session, error) {
	access, exp, err := auth.GenerateToken(userID, s.opts.SecretKey, s.opts.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.CreateToken(ctx, userID, refresh, s.now().Add(s.opts.RefreshTokenTTL)); err != nil {
		return nil, err
	}

	return &Session{
		AccessKeyID:     s.opts.StorageAccessKeyID,
		SecretAccessKey: s.opts.StorageSecretAccessKey,
		AccessToken:     access,
		RefreshToken:    refresh,
		ExpiresAt:       exp,
	}, nil
}
