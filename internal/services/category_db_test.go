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

// categoryStack wires the category services onto the given transaction so the
// whole test rolls back.
func categoryStack(t *testing.T, tx *gorm.DB, log *logger.Logger) (CategoryService, CategoryVersionService) {
	t.Helper()
	categoryRepo := repos.NewCategoryRepo(tx, log)
	versionRepo := repos.NewCategoryVersionRepo(tx, log)
	defRepo := repos.NewAttributeDefinitionRepo(tx, log)
	adRepo := repos.NewAdvertisementRepo(tx, log)
	versionService := NewCategoryVersionService(tx, log, versionRepo, defRepo)
	categoryService := NewCategoryService(tx, log, dataagg.NewGormTxRunner(tx),
		categoryRepo, versionRepo, adRepo, versionService, NewNoopNotifier())
	return categoryService, versionService
}

func TestCreateCategoryRootAndChild(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	svc, _ := categoryStack(t, tx, log)

	owner := testutil.SeedUser(t, ctx, tx, "catsvc@test.local")

	suffix := uuid.New().String()[:8]
	root, err := svc.CreateCategory(ctx, owner.ID, CreateCategoryInput{
		Name:   "Vehicles " + suffix,
		Status: types.CategoryStatusActive,
	})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	if root.Version.VersionNumber != 1 {
		t.Fatalf("root version number = %d", root.Version.VersionNumber)
	}
	if root.Category.Depth != 0 || !strings.HasPrefix(root.Category.TreePath, "/") {
		t.Fatalf("unexpected root placement: depth=%d path=%q", root.Category.Depth, root.Category.TreePath)
	}

	child, err := svc.CreateCategory(ctx, owner.ID, CreateCategoryInput{
		ParentID: &root.Category.ID,
		Name:     "Cars " + suffix,
		Status:   types.CategoryStatusActive,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.Category.Depth != 1 {
		t.Fatalf("child depth = %d", child.Category.Depth)
	}
	if !strings.HasPrefix(child.Category.TreePath, root.Category.TreePath) {
		t.Fatalf("child path %q must extend parent path %q", child.Category.TreePath, root.Category.TreePath)
	}

	// A second live category with the same name is rejected.
	_, err = svc.CreateCategory(ctx, owner.ID, CreateCategoryInput{
		Name:   "vehicles " + suffix,
		Status: types.CategoryStatusActive,
	})
	if !aggregates.IsCode(err, aggregates.CodeConflict) {
		t.Fatalf("case-insensitive duplicate name must conflict, got %v", err)
	}

	children, err := svc.ListChildren(ctx, tx, &root.Category.ID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 1 || children[0].Category.ID != child.Category.ID {
		t.Fatalf("expected exactly the child node, got %d nodes", len(children))
	}
}

func TestDeleteCategoryGuardsAndRestore(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	svc, versionSvc := categoryStack(t, tx, log)

	owner := testutil.SeedUser(t, ctx, tx, "catdel@test.local")
	suffix := uuid.New().String()[:8]

	root, err := svc.CreateCategory(ctx, owner.ID, CreateCategoryInput{
		Name: "Electronics " + suffix, Status: types.CategoryStatusActive,
	})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := svc.CreateCategory(ctx, owner.ID, CreateCategoryInput{
		ParentID: &root.Category.ID,
		Name:     "Phones " + suffix,
		Status:   types.CategoryStatusActive,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	// Root cannot go while a live child exists.
	if err := svc.DeleteCategory(ctx, root.Category.ID); !aggregates.IsCode(err, aggregates.CodePreconditionFailed) {
		t.Fatalf("delete with live child must fail the precondition, got %v", err)
	}

	if err := svc.DeleteCategory(ctx, child.Category.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}
	if err := svc.DeleteCategory(ctx, root.Category.ID); err != nil {
		t.Fatalf("delete root: %v", err)
	}

	// Delete closes the version chain.
	if _, err := versionSvc.GetCurrentVersion(ctx, tx, root.Category.ID); !aggregates.IsCode(err, aggregates.CodeNotFound) {
		t.Fatalf("deleted category must have no current version, got %v", err)
	}
	if _, err := svc.GetCategory(ctx, tx, root.Category.ID); !aggregates.IsCode(err, aggregates.CodeNotFound) {
		t.Fatalf("deleted category must read as not found, got %v", err)
	}

	// Restoring the child before its parent is blocked.
	if _, err := svc.RestoreCategory(ctx, child.Category.ID); !aggregates.IsCode(err, aggregates.CodePreconditionFailed) {
		t.Fatalf("restore under deleted parent must fail, got %v", err)
	}

	restored, err := svc.RestoreCategory(ctx, root.Category.ID)
	if err != nil {
		t.Fatalf("restore root: %v", err)
	}
	if restored.Version.VersionNumber != root.Version.VersionNumber+1 {
		t.Fatalf("restore must continue numbering: got %d after %d",
			restored.Version.VersionNumber, root.Version.VersionNumber)
	}
	if restored.Version.Name != root.Version.Name {
		t.Fatalf("restore must reopen with the last snapshot, got name %q", restored.Version.Name)
	}
	if restored.Version.Status != types.CategoryStatusInactive {
		t.Fatalf("restored category must come back inactive, got %q", restored.Version.Status)
	}
}

func TestUpdateCategorySchemaWarnings(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	svc, _ := categoryStack(t, tx, log)

	owner := testutil.SeedUser(t, ctx, tx, "catwarn@test.local")
	suffix := uuid.New().String()[:8]
	brand := testutil.SeedAttributeDefinition(t, ctx, tx, "warn_brand_"+suffix, types.DataTypeText)
	model := testutil.SeedAttributeDefinition(t, ctx, tx, "warn_model_"+suffix, types.DataTypeText)

	created, err := svc.CreateCategory(ctx, owner.ID, CreateCategoryInput{
		Name:   "Bikes " + suffix,
		Status: types.CategoryStatusActive,
		Attributes: []VersionAttributeInput{
			{AttributeDefinitionID: brand.ID, Required: false, DisplayOrder: 0},
			{AttributeDefinitionID: model.ID, Required: false, DisplayOrder: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Dropping one attribute and tightening the other is allowed but flagged.
	updated, err := svc.UpdateCategory(ctx, created.Category.ID, VersionInput{
		Name:   created.Version.Name,
		Status: types.CategoryStatusActive,
		Attributes: []VersionAttributeInput{
			{AttributeDefinitionID: brand.ID, Required: true, DisplayOrder: 0},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version.VersionNumber != 2 {
		t.Fatalf("update must open version 2, got %d", updated.Version.VersionNumber)
	}
	if len(updated.Warnings) != 2 {
		t.Fatalf("expected removal + newly-required warnings, got %v", updated.Warnings)
	}
}
