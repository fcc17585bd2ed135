package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/normalization"
	"github.com/yungbote/labelsense-backend/internal/repos"
	"github.com/yungbote/labelsense-backend/internal/requestdata"
	"github.com/yungbote/labelsense-backend/internal/types"
	"github.com/yungbote/labelsense-backend/internal/utils"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	utils.NormalizeUserFields(user)
	if err := utils.ValidateRegistration(ctx, as.userRepo, as.log, user); err != nil {
		return err
	}
	if err := utils.HashPassword(user); err != nil {
		return err
	}
	user.ID = uuid.New()
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseInputString(email)
	if err := utils.ValidateLogin(email, password); err != nil {
		return "", "", err
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("error retrieving user by email: %w", err)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("invalid email or password")
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid email or password")
	}

	return as.issueTokens(ctx, user)
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	tokens, err := as.userTokenRepo.GetByRefreshTokens(ctx, nil, []string{refreshToken})
	if err != nil {
		return "", "", fmt.Errorf("error retrieving refresh token: %w", err)
	}
	if len(tokens) == 0 || tokens[0].ExpiresAt.Before(time.Now()) {
		return "", "", fmt.Errorf("invalid or expired refresh token")
	}
	stored := tokens[0]

	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{stored.UserID})
	if err != nil || len(users) == 0 {
		return "", "", fmt.Errorf("refresh token user not found")
	}

	if err := as.userTokenRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{stored.ID}); err != nil {
		return "", "", fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return as.issueTokens(ctx, users[0])
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("not authenticated")
	}
	return as.userTokenRepo.FullDeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid token subject")
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

func (as *authService) issueTokens(ctx context.Context, user *types.User) (string, string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := uuid.NewString()
	if _, err := as.userTokenRepo.Create(ctx, nil, []*types.UserToken{{
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(as.refreshTTL),
	}}); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}
