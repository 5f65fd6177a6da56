package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/data/repos"
	"github.com/adverto/adboard-backend/internal/data/repos/testutil"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
)

func TestVersionChainTransition(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	versionRepo := repos.NewCategoryVersionRepo(tx, log)
	defRepo := repos.NewAttributeDefinitionRepo(tx, log)
	svc := NewCategoryVersionService(tx, log, versionRepo, defRepo)

	owner := testutil.SeedUser(t, ctx, tx, "chain@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)
	brand := testutil.SeedAttributeDefinition(t, ctx, tx, "chain_brand", types.DataTypeText)

	v1, err := svc.CreateNewVersion(ctx, tx, category.ID, VersionInput{
		Name:   "Cars",
		Status: types.CategoryStatusActive,
		Attributes: []VersionAttributeInput{
			{AttributeDefinitionID: brand.ID, Required: true, DisplayOrder: 0},
		},
	})
	if err != nil {
		t.Fatalf("create first version: %v", err)
	}
	if v1.VersionNumber != 1 {
		t.Fatalf("first version number = %d", v1.VersionNumber)
	}
	if !v1.IsOpen() {
		t.Fatal("first version must be open")
	}

	v2, err := svc.CreateNewVersion(ctx, tx, category.ID, VersionInput{
		Name:   "Cars & Vehicles",
		Status: types.CategoryStatusActive,
		Attributes: []VersionAttributeInput{
			{AttributeDefinitionID: brand.ID, Required: false, DisplayOrder: 0},
		},
	})
	if err != nil {
		t.Fatalf("create second version: %v", err)
	}
	if v2.VersionNumber != 2 {
		t.Fatalf("second version number = %d", v2.VersionNumber)
	}

	// The transition instant is shared: the old window ends exactly where
	// the new one starts.
	v1After, err := svc.GetVersionByID(ctx, tx, v1.ID)
	if err != nil {
		t.Fatalf("reload first version: %v", err)
	}
	if v1After.ValidTo == nil {
		t.Fatal("first version must be closed after the transition")
	}
	if !v1After.ValidTo.Equal(v2.ValidFrom) {
		t.Fatalf("old ValidTo %v != new ValidFrom %v", v1After.ValidTo, v2.ValidFrom)
	}

	current, err := svc.GetCurrentVersion(ctx, tx, category.ID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.ID != v2.ID {
		t.Fatal("current version must be the newest one")
	}

	// The first window's start instant still resolves to the first version.
	at, err := svc.GetVersionAtTime(ctx, tx, category.ID, v1.ValidFrom)
	if err != nil {
		t.Fatalf("get at time: %v", err)
	}
	if at.ID != v1.ID {
		t.Fatalf("instant %v resolved to version %d", v1.ValidFrom, at.VersionNumber)
	}

	// Before the chain started nothing covers the instant.
	if _, err := svc.GetVersionAtTime(ctx, tx, category.ID, v1.ValidFrom.Add(-time.Hour)); !aggregates.IsCode(err, aggregates.CodeNotFound) {
		t.Fatalf("expected not_found before the chain, got %v", err)
	}
}

func TestVersionNumberingContinuesAfterClose(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	versionRepo := repos.NewCategoryVersionRepo(tx, log)
	defRepo := repos.NewAttributeDefinitionRepo(tx, log)
	svc := NewCategoryVersionService(tx, log, versionRepo, defRepo)

	owner := testutil.SeedUser(t, ctx, tx, "numbering@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)

	v1, err := svc.CreateNewVersion(ctx, tx, category.ID, VersionInput{Name: "Books", Status: types.CategoryStatusActive})
	if err != nil {
		t.Fatalf("create v1: %v", err)
	}
	if err := svc.CloseCurrentVersion(ctx, tx, category.ID, time.Now().UTC()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.GetCurrentVersion(ctx, tx, category.ID); !aggregates.IsCode(err, aggregates.CodeNotFound) {
		t.Fatalf("closed chain has no current version, got %v", err)
	}

	// Reopening the chain continues the sequence, it never restarts at 1.
	v2, err := svc.CreateNewVersion(ctx, tx, category.ID, VersionInput{Name: "Books", Status: types.CategoryStatusActive})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v2.VersionNumber != v1.VersionNumber+1 {
		t.Fatalf("expected number %d, got %d", v1.VersionNumber+1, v2.VersionNumber)
	}
}

func TestCreateNewVersionRejectsExplicitValidFromMidChain(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	versionRepo := repos.NewCategoryVersionRepo(tx, log)
	defRepo := repos.NewAttributeDefinitionRepo(tx, log)
	svc := NewCategoryVersionService(tx, log, versionRepo, defRepo)

	owner := testutil.SeedUser(t, ctx, tx, "validfrom@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)

	if _, err := svc.CreateNewVersion(ctx, tx, category.ID, VersionInput{Name: "Pets", Status: types.CategoryStatusActive}); err != nil {
		t.Fatalf("create v1: %v", err)
	}

	from := time.Now().UTC().Add(-time.Hour)
	_, err := svc.CreateNewVersion(ctx, tx, category.ID, VersionInput{
		Name:      "Pets",
		Status:    types.CategoryStatusActive,
		ValidFrom: &from,
	})
	if !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("explicit ValidFrom mid-chain must be rejected, got %v", err)
	}
}

func TestBuildSchemaNormalizesDisplayOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	versionRepo := repos.NewCategoryVersionRepo(tx, log)
	defRepo := repos.NewAttributeDefinitionRepo(tx, log)
	svc := NewCategoryVersionService(tx, log, versionRepo, defRepo)

	owner := testutil.SeedUser(t, ctx, tx, "order@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)
	a := testutil.SeedAttributeDefinition(t, ctx, tx, "order_a", types.DataTypeText)
	b := testutil.SeedAttributeDefinition(t, ctx, tx, "order_b", types.DataTypeNumber)
	c := testutil.SeedAttributeDefinition(t, ctx, tx, "order_c", types.DataTypeText)

	v, err := svc.CreateNewVersion(ctx, tx, category.ID, VersionInput{
		Name:   "Gapped",
		Status: types.CategoryStatusActive,
		Attributes: []VersionAttributeInput{
			{AttributeDefinitionID: a.ID, DisplayOrder: 7},
			{AttributeDefinitionID: b.ID, DisplayOrder: 3},
			{AttributeDefinitionID: c.ID, DisplayOrder: 3},
		},
	})
	if err != nil {
		t.Fatalf("create version: %v", err)
	}

	loaded, err := svc.GetVersionByID(ctx, tx, v.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Attributes) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(loaded.Attributes))
	}
	for i, entry := range loaded.Attributes {
		if entry.DisplayOrder != i {
			t.Errorf("entry %d has display order %d, want dense 0-based ordering", i, entry.DisplayOrder)
		}
	}
	// Submitted order is kept stable: b and c (3) come before a (7).
	if loaded.Attributes[2].AttributeDefinitionID != a.ID {
		t.Error("highest submitted order must sort last")
	}
}

func TestCreateNewVersionUnknownDefinition(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	versionRepo := repos.NewCategoryVersionRepo(tx, log)
	defRepo := repos.NewAttributeDefinitionRepo(tx, log)
	svc := NewCategoryVersionService(tx, log, versionRepo, defRepo)

	owner := testutil.SeedUser(t, ctx, tx, "unknown-def@test.local")
	category := testutil.SeedCategory(t, ctx, tx, owner.ID, nil)

	_, err := svc.CreateNewVersion(ctx, tx, category.ID, VersionInput{
		Name:   "Broken",
		Status: types.CategoryStatusActive,
		Attributes: []VersionAttributeInput{
			{AttributeDefinitionID: uuid.New()},
		},
	})
	if !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("unknown definition id must be rejected, got %v", err)
	}
}
