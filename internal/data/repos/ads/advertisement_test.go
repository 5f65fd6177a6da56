package ads

import (
	"context"
	"testing"

	"github.com/adverto/adboard-backend/internal/data/repos/testutil"
	types "github.com/adverto/adboard-backend/internal/domain"
)

func TestListPublicFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAdvertisementRepo(tx, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "listpub@test.local")
	root := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)
	child := testutil.SeedCategory(t, ctx, tx, owner.ID, root)
	rootVersion := testutil.SeedOpenVersion(t, ctx, tx, root.ID, 1, "Root")
	childVersion := testutil.SeedOpenVersion(t, ctx, tx, child.ID, 1, "Child")
	pkg := testutil.SeedAdPackage(t, ctx, tx, "listpub")

	inRoot := testutil.SeedAdvertisement(t, ctx, tx, owner.ID, rootVersion.ID, pkg.ID, types.AdStatusActive)
	inChild := testutil.SeedAdvertisement(t, ctx, tx, owner.ID, childVersion.ID, pkg.ID, types.AdStatusActive)
	testutil.SeedAdvertisement(t, ctx, tx, owner.ID, rootVersion.ID, pkg.ID, types.AdStatusDraft)

	// Only active ads are public.
	rows, total, err := repo.ListPublic(ctx, tx, AdListFilter{CategoryID: root.ID})
	if err != nil {
		t.Fatalf("list root: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != inRoot.ID {
		t.Fatalf("direct category filter: total=%d rows=%d", total, len(rows))
	}

	// Subtree pulls in the child's ad as well.
	_, total, err = repo.ListPublic(ctx, tx, AdListFilter{CategoryID: root.ID, Subtree: true})
	if err != nil {
		t.Fatalf("list subtree: %v", err)
	}
	if total != 2 {
		t.Fatalf("subtree filter: total=%d", total)
	}

	// Price window.
	min := 100.0
	_, total, err = repo.ListPublic(ctx, tx, AdListFilter{CategoryID: child.ID, MinPrice: &min})
	if err != nil {
		t.Fatalf("list priced: %v", err)
	}
	if total != 0 {
		t.Fatalf("price filter must exclude the seeded ad, total=%d", total)
	}
	_ = inChild
}

func TestListPublicSearchAndOrdering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAdvertisementRepo(tx, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "search@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)
	version := testutil.SeedOpenVersion(t, ctx, tx, category.ID, 1, "Search")
	pkg := testutil.SeedAdPackage(t, ctx, tx, "search")

	plain := testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusActive)
	plain.Title = "Sturdy oak bookshelf"
	if err := tx.Save(plain).Error; err != nil {
		t.Fatalf("update title: %v", err)
	}
	top := testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusActive)
	top.Title = "Oak dining table"
	top.TopAd = true
	if err := tx.Save(top).Error; err != nil {
		t.Fatalf("update top ad: %v", err)
	}

	rows, total, err := repo.ListPublic(ctx, tx, AdListFilter{CategoryID: category.ID, Search: "OAK"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 {
		t.Fatalf("case-insensitive search: total=%d", total)
	}
	if rows[0].ID != top.ID {
		t.Fatal("top ads must sort before plain ones")
	}

	rows, _, err = repo.ListPublic(ctx, tx, AdListFilter{CategoryID: category.ID, Search: "bookshelf"})
	if err != nil {
		t.Fatalf("narrow search: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != plain.ID {
		t.Fatalf("narrow search must hit one ad, got %d", len(rows))
	}
}

func TestCountActiveAndViewCount(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAdvertisementRepo(tx, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "counts@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)
	version := testutil.SeedOpenVersion(t, ctx, tx, category.ID, 1, "Counts")
	pkg := testutil.SeedAdPackage(t, ctx, tx, "counts")

	active := testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusActive)
	testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusSuspended)
	testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusDraft)
	testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusExpired)
	testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusDeleted)

	// Only an ACTIVE ad blocks category deletion; suspended, expired and
	// deleted ads do not keep the category alive.
	n, err := repo.CountActiveByCategoryID(ctx, tx, category.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the active ad counted, got %d", n)
	}

	if err := repo.IncrementViewCount(ctx, tx, active.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := repo.IncrementViewCount(ctx, tx, active.ID); err != nil {
		t.Fatalf("increment again: %v", err)
	}
	reloaded, err := repo.GetByID(ctx, tx, active.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ViewCount != 2 {
		t.Fatalf("view count = %d", reloaded.ViewCount)
	}
}

func TestListByOwnerHidesDeleted(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAdvertisementRepo(tx, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "ownads@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)
	version := testutil.SeedOpenVersion(t, ctx, tx, category.ID, 1, "Own")
	pkg := testutil.SeedAdPackage(t, ctx, tx, "ownads")

	testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusDraft)
	testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusActive)
	testutil.SeedAdvertisement(t, ctx, tx, owner.ID, version.ID, pkg.ID, types.AdStatusDeleted)

	rows, err := repo.ListByOwner(ctx, tx, owner.ID, 0, 0)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("deleted ads stay hidden from the owner list, got %d rows", len(rows))
	}
}
