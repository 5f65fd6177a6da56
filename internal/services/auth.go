package services

import (
	"context"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/normalization"
	"github.com/adverto/adboard-backend/internal/platform/logger"
	"github.com/adverto/adboard-backend/internal/requestdata"
)

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, input RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (*TokenPair, error)
	RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error)
	LogoutUser(ctx context.Context, userID uuid.UUID) error
	// SetContextFromToken validates the bearer token and attaches request data.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
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
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

func (as *authService) RegisterUser(ctx context.Context, input RegisterInput) (*types.User, error) {
	const op = "AuthService.RegisterUser"
	email := normalization.ParseInputString(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, aggregates.ValidationError(op, "invalid email address")
	}
	if len(input.Password) < 8 {
		return nil, aggregates.ValidationError(op, "password must be at least 8 characters")
	}

	existing, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if len(existing) > 0 {
		return nil, aggregates.ConflictError(op, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hash),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Role:      types.RoleUser,
		Status:    "ACTIVE",
	}
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{u}); err != nil {
		as.log.Error("register user failed", "error", err)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	as.log.Info("user registered", "user_id", u.ID)
	return u, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*TokenPair, error) {
	const op = "AuthService.LoginUser"
	email = normalization.ParseInputString(email)
	if email == "" || password == "" {
		return nil, aggregates.ValidationError(op, "email and password required")
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, aggregates.ValidationError(op, "invalid credentials")
	}
	u := users[0]
	if u.Status != "ACTIVE" {
		return nil, aggregates.NewError(aggregates.CodePreconditionFailed, op, "account is suspended", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, aggregates.ValidationError(op, "invalid credentials")
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One session per user: any previous token row is replaced.
		if err := as.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{u.ID}); err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		var err error
		pair, err = as.issueTokens(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("user logged in", "user_id", u.ID)
	return pair, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "AuthService.RefreshUser"
	if refreshToken == "" {
		return nil, aggregates.ValidationError(op, "refresh token required")
	}

	var pair *TokenPair
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{refreshToken})
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if len(rows) == 0 || rows[0] == nil {
			return aggregates.NotFoundError(op, "unknown refresh token")
		}
		row := rows[0]
		if row.ExpiresAt.Before(time.Now()) {
			_ = as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{row.ID})
			return aggregates.NewError(aggregates.CodePreconditionFailed, op, "refresh token expired", nil)
		}

		u, err := as.userRepo.GetByID(ctx, tx, row.UserID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if u == nil || u.Status != "ACTIVE" {
			return aggregates.NewError(aggregates.CodePreconditionFailed, op, "account is suspended", nil)
		}

		// Rotation: the used refresh token dies with its row.
		if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{row.ID}); err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		pair, err = as.issueTokens(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) LogoutUser(ctx context.Context, userID uuid.UUID) error {
	const op = "AuthService.LogoutUser"
	if userID == uuid.Nil {
		return aggregates.ValidationError(op, "user id required")
	}
	if err := as.userTokenRepo.FullDeleteByUserIDs(ctx, nil, []uuid.UUID{userID}); err != nil {
		return aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	as.log.Info("user logged out", "user_id", userID)
	return nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	const op = "AuthService.SetContextFromToken"
	if tokenString == "" {
		return ctx, aggregates.ValidationError(op, "missing bearer token")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, aggregates.ValidationError(op, "unexpected signing method")
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, aggregates.ValidationError(op, "invalid token")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, aggregates.ValidationError(op, "invalid token subject")
	}

	rows, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if err != nil {
		return ctx, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if len(rows) == 0 || rows[0] == nil {
		return ctx, aggregates.ValidationError(op, "token revoked")
	}

	role, _ := claims["role"].(string)
	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: rows[0].RefreshToken,
		UserID:       userID,
		Role:         role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, u *types.User) (*TokenPair, error) {
	const op = "AuthService.issueTokens"
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.ID.String(),
		"role": u.Role,
		"jti":  uuid.New().String(),
		"iat":  now.Unix(),
		"exp":  now.Add(as.accessTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	refreshToken := uuid.New().String()

	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       u.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{row}); err != nil {
		as.log.Error("persist user token failed", "error", err, "user_id", u.ID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
