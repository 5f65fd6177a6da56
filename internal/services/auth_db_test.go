package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/data/repos"
	"github.com/adverto/adboard-backend/internal/data/repos/testutil"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/logger"
	"github.com/adverto/adboard-backend/internal/requestdata"
	"github.com/google/uuid"
)

func authStack(t *testing.T, tx *gorm.DB, log *logger.Logger) (AuthService, repos.UserTokenRepo) {
	t.Helper()
	userRepo := repos.NewUserRepo(tx, log)
	tokenRepo := repos.NewUserTokenRepo(tx, log)
	svc := NewAuthService(tx, log, userRepo, tokenRepo, "test-secret", time.Hour, 24*time.Hour)
	return svc, tokenRepo
}

func TestRegisterAndLoginSingleSession(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc, tokenRepo := authStack(t, tx, testutil.Logger(t))

	email := "auth-" + uuid.New().String()[:8] + "@test.local"
	u, err := svc.RegisterUser(ctx, RegisterInput{
		Email:     " " + email + " ",
		Password:  "hunter2hunter2",
		FirstName: "Ada",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != email {
		t.Fatalf("email not normalized: %q", u.Email)
	}

	if _, err := svc.RegisterUser(ctx, RegisterInput{Email: email, Password: "hunter2hunter2"}); !aggregates.IsCode(err, aggregates.CodeConflict) {
		t.Fatalf("duplicate register: want conflict, got %v", err)
	}
	if _, err := svc.RegisterUser(ctx, RegisterInput{Email: "short@test.local", Password: "short"}); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("short password: want validation, got %v", err)
	}

	if _, err := svc.LoginUser(ctx, email, "wrong-password"); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("bad password: want validation, got %v", err)
	}

	first, err := svc.LoginUser(ctx, email, "hunter2hunter2")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.LoginUser(ctx, email, "hunter2hunter2")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	// The second login replaces the first session outright.
	rows, err := tokenRepo.GetByUserIDs(ctx, nil, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("token rows = %d, want 1", len(rows))
	}
	if rows[0].AccessToken != second.AccessToken {
		t.Fatalf("surviving token is not the latest session")
	}
	if _, err := svc.SetContextFromToken(ctx, first.AccessToken); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("stale access token: want validation, got %v", err)
	}

	rctx, err := svc.SetContextFromToken(ctx, second.AccessToken)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	rd := requestdata.GetRequestData(rctx)
	if rd == nil || rd.UserID != u.ID {
		t.Fatalf("request data not attached for %s", u.ID)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc, tokenRepo := authStack(t, tx, testutil.Logger(t))

	email := "rotate-" + uuid.New().String()[:8] + "@test.local"
	u, err := svc.RegisterUser(ctx, RegisterInput{Email: email, Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, err := svc.LoginUser(ctx, email, "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := svc.RefreshUser(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}
	if _, err := svc.RefreshUser(ctx, pair.RefreshToken); !aggregates.IsCode(err, aggregates.CodeNotFound) {
		t.Fatalf("reused refresh token: want not_found, got %v", err)
	}

	rows, err := tokenRepo.GetByUserIDs(ctx, nil, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	if len(rows) != 1 || rows[0].RefreshToken != next.RefreshToken {
		t.Fatalf("expected a single rotated token row, got %d", len(rows))
	}

	if err := svc.LogoutUser(ctx, u.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, next.AccessToken); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("token after logout: want validation, got %v", err)
	}
}
