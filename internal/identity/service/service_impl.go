package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chikoro/feeledger/internal/clock"
	"github.com/chikoro/feeledger/internal/config"
	"github.com/chikoro/feeledger/internal/identity/domain"
	"github.com/chikoro/feeledger/internal/identity/password"
	"github.com/chikoro/feeledger/internal/kv"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	userKeyPrefix  = "user:"
	emailKeyPrefix = "user_email:"
	tokenTTL       = 24 * time.Hour
)

// account is the stored shape of user:<id>. The credential hash never leaves
// this package; domain.User is the outward projection.
type account struct {
	domain.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

type emailIndex struct {
	UserID string `json:"userId"`
}

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Store kv.Store
	GenID *kv.IDGenerator
	Clock clock.Clock
}

type Service struct {
	log    *zap.Logger
	store  kv.Store
	genID  *kv.IDGenerator
	clock  clock.Clock
	secret []byte
}

func New(p Params) domain.Service {
	secret := strings.TrimSpace(p.Cfg.AuthJWTSecret)
	if secret == "" {
		p.Log.Warn("AUTH_JWT_SECRET not set, using development secret")
		secret = "feeledger-dev-secret"
	}
	return &Service{
		log:    p.Log.Named("identity.service"),
		store:  p.Store,
		genID:  p.GenID,
		clock:  p.Clock,
		secret: []byte(secret),
	}
}

func (s *Service) SignUp(ctx context.Context, req domain.SignUpRequest) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" || strings.TrimSpace(req.Role) == "" {
		return domain.User{}, domain.ErrMissingFields
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return domain.User{}, err
	}

	if _, ok, err := s.store.Get(ctx, emailKeyPrefix+email); err != nil {
		return domain.User{}, err
	} else if ok {
		return domain.User{}, domain.ErrUserExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:        s.genID.NewID(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: s.clock.Now(),
	}

	if err := s.store.Set(ctx, userKeyPrefix+user.ID, account{User: user, PasswordHash: hash}); err != nil {
		return domain.User{}, err
	}
	if err := s.store.Set(ctx, emailKeyPrefix+email, emailIndex{UserID: user.ID}); err != nil {
		return domain.User{}, err
	}

	s.log.Info("user created", zap.String("user_id", user.ID), zap.String("role", role.String()))
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	raw, ok, err := s.store.Get(ctx, emailKeyPrefix+email)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if !ok {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	var idx emailIndex
	if err := kv.Decode(raw, &idx); err != nil {
		return domain.LoginResult{}, err
	}

	acct, err := s.loadAccount(ctx, idx.UserID)
	if err != nil {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}
	if !password.Verify(req.Password, acct.PasswordHash) {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	token, err := s.mintToken(acct.User)
	if err != nil {
		return domain.LoginResult{}, err
	}
	return domain.LoginResult{Token: token, User: acct.User}, nil
}

func (s *Service) Verify(ctx context.Context, rawToken string) (domain.Principal, error) {
	parsed, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !parsed.Valid {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	// The profile record is the source of truth for role and name; tokens
	// only carry identity.
	acct, err := s.loadAccount(ctx, sub)
	if err != nil {
		return domain.Principal{}, err
	}

	return domain.Principal{
		UserID: acct.ID,
		Name:   acct.Name,
		Email:  acct.Email,
		Role:   acct.Role,
	}, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	acct, err := s.loadAccount(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return acct.User, nil
}

func (s *Service) FindParentByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}

	raw, ok, err := s.store.Get(ctx, emailKeyPrefix+email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var idx emailIndex
	if err := kv.Decode(raw, &idx); err != nil {
		return nil, err
	}

	acct, err := s.loadAccount(ctx, idx.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if acct.Role != domain.RoleParent {
		return nil, nil
	}

	user := acct.User
	return &user, nil
}

func (s *Service) loadAccount(ctx context.Context, userID string) (account, error) {
	raw, ok, err := s.store.Get(ctx, userKeyPrefix+userID)
	if err != nil {
		return account{}, err
	}
	if !ok {
		return account{}, domain.ErrProfileNotFound
	}
	var acct account
	if err := kv.Decode(raw, &acct); err != nil {
		return account{}, err
	}
	return acct, nil
}

func (s *Service) mintToken(user domain.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
