package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/data/repos/testutil"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
)

// Concurrent schema updates need real transactions racing on separate
// connections, so this test runs on the shared pool and cleans up after
// itself instead of using the rollback harness.
func TestConcurrentUpdatesKeepOneOpenVersion(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	svc, versionService := categoryStack(t, db, log)

	suffix := uuid.New().String()[:8]
	owner := testutil.SeedUser(t, ctx, db, "race-"+suffix+"@test.local")
	created, err := svc.CreateCategory(ctx, owner.ID, CreateCategoryInput{
		Name:   "Race " + suffix,
		Status: types.CategoryStatusActive,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	categoryID := created.Category.ID
	defer func() {
		db.Exec(`DELETE FROM category_version_attribute WHERE category_version_id IN
			(SELECT id FROM category_version WHERE category_id = ?)`, categoryID)
		db.Exec(`DELETE FROM category_version WHERE category_id = ?`, categoryID)
		db.Exec(`DELETE FROM category WHERE id = ?`, categoryID)
		db.Exec(`DELETE FROM "user" WHERE id = ?`, owner.ID)
	}()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = svc.UpdateCategory(ctx, categoryID, VersionInput{
				Name:   created.Version.Name,
				Status: types.CategoryStatusActive,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case aggregates.IsCode(err, aggregates.CodeRetryable):
			// A writer may lose the close race twice under heavy contention.
		default:
			t.Fatalf("unexpected writer failure: %v", err)
		}
	}
	if succeeded == 0 {
		t.Fatal("every writer lost the race")
	}

	versions, err := versionService.ListVersions(ctx, nil, categoryID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != succeeded+1 {
		t.Fatalf("version count = %d, want %d", len(versions), succeeded+1)
	}

	open := 0
	seen := make(map[int]bool, len(versions))
	for _, v := range versions {
		if v.ValidTo == nil {
			open++
		}
		if seen[v.VersionNumber] {
			t.Fatalf("duplicate version number %d", v.VersionNumber)
		}
		seen[v.VersionNumber] = true
	}
	if open != 1 {
		t.Fatalf("open versions = %d, want exactly 1", open)
	}
	for n := 1; n <= len(versions); n++ {
		if !seen[n] {
			t.Fatalf("version numbering has a gap at %d", n)
		}
	}

	current, err := versionService.GetCurrentVersion(ctx, nil, categoryID)
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if current.VersionNumber != len(versions) {
		t.Fatalf("current version number = %d, want %d", current.VersionNumber, len(versions))
	}
}
