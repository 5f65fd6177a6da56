package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/data/aggregates"
	"github.com/adverto/adboard-backend/internal/data/repos/testutil"
	types "github.com/adverto/adboard-backend/internal/domain"
)

func TestVersionWindowLookups(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCategoryVersionRepo(tx, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "vrepo@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.AddDate(0, 1, 0)
	closed := testutil.SeedClosedVersion(t, ctx, tx, category.ID, 1, "Winter", t0, t1)
	open := testutil.SeedOpenVersion(t, ctx, tx, category.ID, 2, "Spring")

	openRows, err := repo.GetOpenByCategoryID(ctx, tx, category.ID)
	if err != nil {
		t.Fatalf("get open: %v", err)
	}
	if len(openRows) != 1 || openRows[0].ID != open.ID {
		t.Fatalf("expected the single open version, got %d rows", len(openRows))
	}

	inside, err := repo.GetAtTime(ctx, tx, category.ID, t0.AddDate(0, 0, 15))
	if err != nil {
		t.Fatalf("get at time: %v", err)
	}
	if len(inside) != 1 || inside[0].ID != closed.ID {
		t.Fatalf("instant inside the closed window must resolve to it, got %d rows", len(inside))
	}

	// The window end is exclusive: t1 belongs to no closed window here and the
	// open version only starts at seed time.
	atEnd, err := repo.GetAtTime(ctx, tx, category.ID, t1)
	if err != nil {
		t.Fatalf("get at end: %v", err)
	}
	for _, v := range atEnd {
		if v.ID == closed.ID {
			t.Fatal("closed window must not cover its end instant")
		}
	}

	latest, err := repo.GetLatestByCategoryID(ctx, tx, category.ID)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest == nil || latest.VersionNumber != 2 {
		t.Fatalf("latest must be version 2, got %+v", latest)
	}

	listed, err := repo.ListByCategoryID(ctx, tx, category.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected both versions, got %d", len(listed))
	}
}

func TestCurrentNameExists(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCategoryVersionRepo(tx, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "names@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)
	name := "Garden " + uuid.New().String()[:8]
	testutil.SeedOpenVersion(t, ctx, tx, category.ID, 1, name)

	taken, err := repo.CurrentNameExists(ctx, tx, name, uuid.Nil)
	if err != nil {
		t.Fatalf("name exists: %v", err)
	}
	if !taken {
		t.Fatal("open version name must be taken")
	}

	// Case differences do not free the name.
	taken, err = repo.CurrentNameExists(ctx, tx, "gARDEN "+name[7:], uuid.Nil)
	if err != nil {
		t.Fatalf("name exists ci: %v", err)
	}
	if !taken {
		t.Fatal("name comparison must be case-insensitive")
	}

	// The owning category is excluded so renames do not conflict with self.
	taken, err = repo.CurrentNameExists(ctx, tx, name, category.ID)
	if err != nil {
		t.Fatalf("name exists excluded: %v", err)
	}
	if taken {
		t.Fatal("the category's own name must not count as taken")
	}
}

func TestCloseOpenWindowCAS(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "cas@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)
	open := testutil.SeedOpenVersion(t, ctx, tx, category.ID, 1, "CAS")

	closeAt := time.Now().UTC()
	ok, err := aggregates.CloseOpenWindow(ctx, tx, types.CategoryVersion{}.TableName(), open.ID, closeAt)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !ok {
		t.Fatal("first close must win")
	}

	// The second attempt finds no open row: the compare-and-set fails.
	ok, err = aggregates.CloseOpenWindow(ctx, tx, types.CategoryVersion{}.TableName(), open.ID, closeAt.Add(time.Second))
	if err != nil {
		t.Fatalf("second close: %v", err)
	}
	if ok {
		t.Fatal("second close must lose the compare-and-set")
	}
	if err := aggregates.RequireCASSuccess(ok, "test", "window already closed"); err == nil {
		t.Fatal("RequireCASSuccess must surface a retryable error")
	}
}
