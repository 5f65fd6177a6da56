package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/catalog"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      types.RoleUser,
		Status:    "ACTIVE",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAttributeDefinition(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, dataType types.DataType) *types.AttributeDefinition {
	tb.Helper()
	d := &types.AttributeDefinition{
		ID:          uuid.New(),
		Name:        name,
		DisplayName: name,
		DataType:    dataType,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed attribute definition: %v", err)
	}
	return d
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, parent *types.Category) *types.Category {
	tb.Helper()
	c := &types.Category{
		ID:        uuid.New(),
		CreatorID: creatorID,
	}
	if parent != nil {
		c.ParentID = &parent.ID
		c.Depth = parent.Depth + 1
		c.TreePath = parent.ChildPath(c.ID)
	} else {
		c.TreePath = catalog.RootPath(c.ID)
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

// SeedOpenVersion inserts an open version (valid_to NULL) with the given
// number and name. Attribute entries are added via SeedVersionAttribute.
func SeedOpenVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, number int, name string) *types.CategoryVersion {
	tb.Helper()
	v := &types.CategoryVersion{
		ID:            uuid.New(),
		CategoryID:    categoryID,
		VersionNumber: number,
		ValidFrom:     time.Now().UTC(),
		Name:          name,
		Status:        types.CategoryStatusActive,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed open version: %v", err)
	}
	return v
}

func SeedClosedVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, number int, name string, from, to time.Time) *types.CategoryVersion {
	tb.Helper()
	v := &types.CategoryVersion{
		ID:            uuid.New(),
		CategoryID:    categoryID,
		VersionNumber: number,
		ValidFrom:     from,
		ValidTo:       &to,
		Name:          name,
		Status:        types.CategoryStatusActive,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed closed version: %v", err)
	}
	return v
}

func SeedVersionAttribute(tb testing.TB, ctx context.Context, tx *gorm.DB, versionID, defID uuid.UUID, required bool, order int) *types.CategoryVersionAttribute {
	tb.Helper()
	a := &types.CategoryVersionAttribute{
		ID:                    uuid.New(),
		CategoryVersionID:     versionID,
		AttributeDefinitionID: defID,
		Required:              required,
		DisplayOrder:          order,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed version attribute: %v", err)
	}
	return a
}

func SeedAdPackage(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.AdPackage {
	tb.Helper()
	p := &types.AdPackage{
		ID:           uuid.New(),
		Name:         name,
		DurationDays: 30,
		MaxPhotos:    5,
		Active:       true,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed ad package: %v", err)
	}
	return p
}

func SeedAdvertisement(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID, versionID, packageID uuid.UUID, status types.AdStatus) *types.Advertisement {
	tb.Helper()
	a := &types.Advertisement{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		CategoryVersionID: versionID,
		PackageID:         packageID,
		Title:             "ad",
		Price:             10,
		Condition:         types.ConditionUsed,
		Status:            status,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed advertisement: %v", err)
	}
	return a
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, adID, buyerID, sellerID uuid.UUID) *types.Conversation {
	tb.Helper()
	c := &types.Conversation{
		ID:              uuid.New(),
		AdvertisementID: adID,
		BuyerID:         buyerID,
		SellerID:        sellerID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrFloat(v float64) *float64 { return &v }

func PtrInt(v int) *int { return &v }
