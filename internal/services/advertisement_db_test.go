package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/adverto/adboard-backend/internal/data/aggregates"
	"github.com/adverto/adboard-backend/internal/data/repos"
	"github.com/adverto/adboard-backend/internal/data/repos/testutil"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

// adStack wires the advertisement services onto the given transaction so the
// whole test rolls back. No bucket is attached, media paths stay untouched.
func adStack(t *testing.T, tx *gorm.DB, log *logger.Logger) (AdvertisementService, CategoryService) {
	t.Helper()
	categoryRepo := repos.NewCategoryRepo(tx, log)
	versionRepo := repos.NewCategoryVersionRepo(tx, log)
	defRepo := repos.NewAttributeDefinitionRepo(tx, log)
	adRepo := repos.NewAdvertisementRepo(tx, log)
	attrRepo := repos.NewAdAttributeRepo(tx, log)
	packageRepo := repos.NewAdPackageRepo(tx, log)

	versionService := NewCategoryVersionService(tx, log, versionRepo, defRepo)
	categoryService := NewCategoryService(tx, log, dataagg.NewGormTxRunner(tx),
		categoryRepo, versionRepo, adRepo, versionService, NewNoopNotifier())
	binding := NewAdBindingService(log, versionService)
	adService := NewAdvertisementService(tx, log, dataagg.NewGormTxRunner(tx),
		adRepo, attrRepo, packageRepo, versionService, binding, nil, NewNoopNotifier())
	return adService, categoryService
}

func TestAdStaysBoundToItsCreationVersion(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	adService, categoryService := adStack(t, tx, log)

	suffix := uuid.New().String()[:8]
	owner := testutil.SeedUser(t, ctx, tx, "freeze@test.local")
	pkg := testutil.SeedAdPackage(t, ctx, tx, "freeze "+suffix)
	brand := testutil.SeedAttributeDefinition(t, ctx, tx, "brand "+suffix, types.DataTypeText)
	warranty := testutil.SeedAttributeDefinition(t, ctx, tx, "warranty_months "+suffix, types.DataTypeNumber)

	created, err := categoryService.CreateCategory(ctx, owner.ID, CreateCategoryInput{
		Name:   "Electronics " + suffix,
		Status: types.CategoryStatusActive,
		Attributes: []VersionAttributeInput{
			{AttributeDefinitionID: brand.ID, Required: true, DisplayOrder: 0},
		},
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	oldAd, err := adService.CreateAd(ctx, owner.ID, CreateAdInput{
		CategoryID: created.Category.ID,
		PackageID:  pkg.ID,
		Title:      "Laptop",
		Price:      500,
		Attributes: []AttributeValueInput{
			{AttributeDefinitionID: brand.ID, Value: "Lenovo"},
		},
	})
	if err != nil {
		t.Fatalf("create ad on v1: %v", err)
	}
	if oldAd.CategoryVersionID != created.Version.ID {
		t.Fatalf("ad bound to %s, want the open version %s", oldAd.CategoryVersionID, created.Version.ID)
	}

	// The category moves on: warranty becomes required in version 2.
	updated, err := categoryService.UpdateCategory(ctx, created.Category.ID, VersionInput{
		Name:   created.Version.Name,
		Status: types.CategoryStatusActive,
		Attributes: []VersionAttributeInput{
			{AttributeDefinitionID: brand.ID, Required: true, DisplayOrder: 0},
			{AttributeDefinitionID: warranty.ID, Required: true, DisplayOrder: 1},
		},
	})
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	if updated.Version.VersionNumber != 2 {
		t.Fatalf("version number = %d, want 2", updated.Version.VersionNumber)
	}

	// The old ad still validates against its own frozen schema, the new
	// required attribute does not apply to it.
	edited, err := adService.UpdateAd(ctx, owner.ID, oldAd.ID, UpdateAdInput{
		Attributes: []AttributeValueInput{
			{AttributeDefinitionID: brand.ID, Value: "ThinkPad"},
		},
	})
	if err != nil {
		t.Fatalf("edit ad frozen to v1: %v", err)
	}
	if edited.CategoryVersionID != created.Version.ID {
		t.Fatalf("edit rebound the ad to %s", edited.CategoryVersionID)
	}

	// A new ad is held to the current schema.
	_, err = adService.CreateAd(ctx, owner.ID, CreateAdInput{
		CategoryID: created.Category.ID,
		PackageID:  pkg.ID,
		Title:      "Tablet",
		Price:      300,
		Attributes: []AttributeValueInput{
			{AttributeDefinitionID: brand.ID, Value: "Acme"},
		},
	})
	if !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("new ad without warranty: want validation, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "required attribute") {
		t.Fatalf("unexpected validation detail: %v", err)
	}

	newAd, err := adService.CreateAd(ctx, owner.ID, CreateAdInput{
		CategoryID: created.Category.ID,
		PackageID:  pkg.ID,
		Title:      "Tablet",
		Price:      300,
		Attributes: []AttributeValueInput{
			{AttributeDefinitionID: brand.ID, Value: "Acme"},
			{AttributeDefinitionID: warranty.ID, Value: 24},
		},
	})
	if err != nil {
		t.Fatalf("create ad on v2: %v", err)
	}
	if newAd.CategoryVersionID != updated.Version.ID {
		t.Fatalf("new ad bound to %s, want %s", newAd.CategoryVersionID, updated.Version.ID)
	}
}
