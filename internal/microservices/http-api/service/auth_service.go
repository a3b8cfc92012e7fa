package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware/auth"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// mailTimeout bounds a single confirmation email send.
const mailTimeout = 30 * time.Second

// Claims are the access token claims. Role is not carried: it is read from
// the database on every request so demotions apply immediately.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error)
	ExchangeToken(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
	// Authenticate validates the token and loads its user, whose current role applies.
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)
}

type authService struct {
	userRepo       repository.UserRepository
	codeStore      repository.ConfirmationCodeStore
	mailer         mailer.Mailer
	logger         *slog.Logger
	jwtSecret      []byte
	accessTokenTTL time.Duration
	codeTTL        time.Duration
	now            func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	codeStore repository.ConfirmationCodeStore,
	m mailer.Mailer,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		codeStore:      codeStore,
		mailer:         m,
		logger:         logger,
		jwtSecret:      []byte(cfg.JWTSecret),
		accessTokenTTL: cfg.AccessTokenTTL,
		codeTTL:        cfg.ConfirmationCodeTTL,
		now:            time.Now,
	}
}

// Signup registers an unverified user and mails a confirmation code. Signing
// up again with the same username and email issues a new code for that account.
func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	if msg, ok := validation.Username(req.Username); !ok {
		return nil, invalidField("username", msg)
	}

	byName, err := s.findUser(ctx, s.userRepo.FindByUsername, req.Username)
	if err != nil {
		return nil, err
	}
	byEmail, err := s.findUser(ctx, s.userRepo.FindByEmail, req.Email)
	if err != nil {
		return nil, err
	}

	var user *models.User
	switch {
	case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
		user = byName
	case byName != nil:
		return nil, conflict("username already taken")
	case byEmail != nil:
		return nil, conflict("email already registered")
	default:
		user = &models.User{
			Username: req.Username,
			Email:    req.Email,
			Role:     models.RoleUser,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, mapRepoError(err, "user")
		}
		s.logger.Info("user_signed_up", "user_id", user.ID, "username", user.Username)
	}

	code, err := s.issueCode(ctx, user)
	if err != nil {
		return nil, err
	}

	go s.sendCode(user.Email, code)

	return &dto.SignupResponse{Username: user.Username, Email: user.Email}, nil
}

func (s *authService) findUser(ctx context.Context, find func(context.Context, string) (*models.User, error), key string) (*models.User, error) {
	user, err := find(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) issueCode(ctx context.Context, user *models.User) (string, error) {
	code, err := auth.GenerateCode()
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	hash, err := auth.HashCode(code)
	if err != nil {
		return "", fmt.Errorf("hash confirmation code: %w", err)
	}

	now := s.now()
	record := &models.ConfirmationCode{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CodeHash:  hash,
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}
	if err := s.codeStore.Replace(ctx, record); err != nil {
		return "", err
	}
	return code, nil
}

// sendCode runs detached from the request; a failure is only logged.
func (s *authService) sendCode(email, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
	defer cancel()

	msg := mailer.Message{
		To:      email,
		Subject: "Your yamdb confirmation code",
		Body:    fmt.Sprintf("Your confirmation code: %s\nIt expires in %s.", code, s.codeTTL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("confirmation_mail_failed", "email", email, "error", err)
		return
	}
	s.logger.Debug("confirmation_mail_sent", "email", email)
}

// ExchangeToken trades a live confirmation code for an access token. The code
// is single use: of two concurrent exchanges only one gets a token.
func (s *authService) ExchangeToken(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}

	code, err := s.codeStore.FindByUserID(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if code.Expired(s.now()) {
		return nil, ErrInvalidCredentials
	}
	if err := auth.VerifyCode(code.CodeHash, req.ConfirmationCode); err != nil {
		return nil, ErrInvalidCredentials
	}

	consumed, err := s.codeStore.Consume(ctx, code)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("token_issued", "user_id", user.ID)
	return &dto.TokenResponse{Token: token}, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		// the account was deleted after the token was issued
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
