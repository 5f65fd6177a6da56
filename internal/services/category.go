package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/adverto/adboard-backend/internal/data/aggregates"
	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/domain/catalog"
	"github.com/adverto/adboard-backend/internal/platform/dbctx"
	"github.com/adverto/adboard-backend/internal/platform/httpx"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

// CreateCategoryInput describes a new category node plus its first version.
type CreateCategoryInput struct {
	ParentID    *uuid.UUID              `json:"parent_id,omitempty"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Status      types.CategoryStatus    `json:"status"`
	Attributes  []VersionAttributeInput `json:"attributes"`
}

// CategoryUpdateResult pairs the new version with non-blocking schema warnings.
type CategoryUpdateResult struct {
	Category *types.Category        `json:"category"`
	Version  *types.CategoryVersion `json:"version"`
	Warnings []string               `json:"warnings,omitempty"`
}

// CategoryNode is a category joined with its current version, nested for
// tree responses.
type CategoryNode struct {
	Category *types.Category        `json:"category"`
	Current  *types.CategoryVersion `json:"current_version,omitempty"`
	Children []*CategoryNode        `json:"children,omitempty"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, creatorID uuid.UUID, input CreateCategoryInput) (*CategoryUpdateResult, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, input VersionInput) (*CategoryUpdateResult, error)
	GetCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*CategoryNode, error)
	GetCategoryAtTime(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, at time.Time) (*CategoryNode, error)
	GetTree(ctx context.Context, tx *gorm.DB) ([]*CategoryNode, error)
	ListChildren(ctx context.Context, tx *gorm.DB, parentID *uuid.UUID) ([]*CategoryNode, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
	RestoreCategory(ctx context.Context, categoryID uuid.UUID) (*CategoryUpdateResult, error)
}

type categoryService struct {
	db             *gorm.DB
	log            *logger.Logger
	txRunner       dataagg.TxRunner
	categoryRepo   repos.CategoryRepo
	versionRepo    repos.CategoryVersionRepo
	adRepo         repos.AdvertisementRepo
	versionService CategoryVersionService
	notifier       Notifier
}

func NewCategoryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRunner dataagg.TxRunner,
	categoryRepo repos.CategoryRepo,
	versionRepo repos.CategoryVersionRepo,
	adRepo repos.AdvertisementRepo,
	versionService CategoryVersionService,
	notifier Notifier,
) CategoryService {
	return &categoryService{
		db:             db,
		log:            baseLog.With("service", "CategoryService"),
		txRunner:       txRunner,
		categoryRepo:   categoryRepo,
		versionRepo:    versionRepo,
		adRepo:         adRepo,
		versionService: versionService,
		notifier:       notifier,
	}
}

// inTxWithRetry runs fn in a transaction and retries exactly once when the
// failure is a lost compare-and-set race. A second loss is returned to the
// caller as-is.
func (s *categoryService) inTxWithRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	run := func() error {
		return s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
			return fn(dbc.Tx)
		})
	}
	err := run()
	if err != nil && aggregates.IsCode(err, aggregates.CodeRetryable) {
		time.Sleep(httpx.JitterSleep(25 * time.Millisecond))
		err = run()
	}
	return err
}

func (s *categoryService) CreateCategory(ctx context.Context, creatorID uuid.UUID, input CreateCategoryInput) (*CategoryUpdateResult, error) {
	const op = "CategoryService.CreateCategory"
	if creatorID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "creator id required")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, aggregates.ValidationError(op, "name required")
	}

	var result CategoryUpdateResult
	err := s.inTxWithRetry(ctx, func(tx *gorm.DB) error {
		var parent *types.Category
		if input.ParentID != nil {
			var err error
			parent, err = s.categoryRepo.GetByID(ctx, tx, *input.ParentID)
			if err != nil {
				return aggregates.Wrap(aggregates.CodeInternal, op, err)
			}
			if parent == nil || parent.Deleted {
				return aggregates.NotFoundError(op, "parent category not found")
			}
			if parent.Depth+1 > types.MaxCategoryDepth {
				return aggregates.ValidationError(op,
					fmt.Sprintf("category depth exceeds maximum of %d", types.MaxCategoryDepth))
			}
		}

		taken, err := s.versionRepo.CurrentNameExists(ctx, tx, input.Name, uuid.Nil)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if taken {
			return aggregates.ConflictError(op, "a live category already carries this name")
		}

		category := &types.Category{
			ID:        uuid.New(),
			CreatorID: creatorID,
			ParentID:  input.ParentID,
		}
		if parent != nil {
			category.Depth = parent.Depth + 1
			category.TreePath = parent.ChildPath(category.ID)
		} else {
			category.TreePath = catalog.RootPath(category.ID)
		}
		if _, err := s.categoryRepo.Create(ctx, tx, []*types.Category{category}); err != nil {
			s.log.Error("create category failed", "error", err)
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}

		version, err := s.versionService.CreateNewVersion(ctx, tx, category.ID, VersionInput{
			Name:        input.Name,
			Description: input.Description,
			Status:      input.Status,
			Attributes:  input.Attributes,
		})
		if err != nil {
			return err
		}

		result = CategoryUpdateResult{Category: category, Version: version}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("category created", "category_id", result.Category.ID, "name", result.Version.Name)
	return &result, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID uuid.UUID, input VersionInput) (*CategoryUpdateResult, error) {
	const op = "CategoryService.UpdateCategory"
	if categoryID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "category id required")
	}

	var result CategoryUpdateResult
	err := s.inTxWithRetry(ctx, func(tx *gorm.DB) error {
		category, err := s.categoryRepo.GetByID(ctx, tx, categoryID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if category == nil || category.Deleted {
			return aggregates.NotFoundError(op, "category not found")
		}

		current, err := s.versionService.GetCurrentVersion(ctx, tx, categoryID)
		if err != nil {
			return err
		}

		if !strings.EqualFold(strings.TrimSpace(input.Name), current.Name) {
			taken, err := s.versionRepo.CurrentNameExists(ctx, tx, input.Name, categoryID)
			if err != nil {
				return aggregates.Wrap(aggregates.CodeInternal, op, err)
			}
			if taken {
				return aggregates.ConflictError(op, "a live category already carries this name")
			}
		}

		warnings := schemaChangeWarnings(current, input.Attributes)

		version, err := s.versionService.CreateNewVersion(ctx, tx, categoryID, input)
		if err != nil {
			return err
		}

		result = CategoryUpdateResult{Category: category, Version: version, Warnings: warnings}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		s.log.Warn("schema change warning", "category_id", categoryID, "warning", w)
	}
	s.log.Info("category updated", "category_id", categoryID, "version_number", result.Version.VersionNumber)
	return &result, nil
}

func (s *categoryService) GetCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*CategoryNode, error) {
	const op = "CategoryService.GetCategory"
	category, err := s.categoryRepo.GetByID(ctx, tx, categoryID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if category == nil || category.Deleted {
		return nil, aggregates.NotFoundError(op, "category not found")
	}
	current, err := s.versionService.GetCurrentVersion(ctx, tx, categoryID)
	if err != nil {
		return nil, err
	}
	return &CategoryNode{Category: category, Current: current}, nil
}

func (s *categoryService) GetCategoryAtTime(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, at time.Time) (*CategoryNode, error) {
	const op = "CategoryService.GetCategoryAtTime"
	category, err := s.categoryRepo.GetByID(ctx, tx, categoryID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if category == nil {
		return nil, aggregates.NotFoundError(op, "category not found")
	}
	version, err := s.versionService.GetVersionAtTime(ctx, tx, categoryID, at)
	if err != nil {
		return nil, err
	}
	return &CategoryNode{Category: category, Current: version}, nil
}

func (s *categoryService) GetTree(ctx context.Context, tx *gorm.DB) ([]*CategoryNode, error) {
	const op = "CategoryService.GetTree"
	categories, err := s.categoryRepo.ListLive(ctx, tx)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	nodes := make(map[uuid.UUID]*CategoryNode, len(categories))
	for _, c := range categories {
		current, err := s.versionService.GetCurrentVersion(ctx, tx, c.ID)
		if err != nil && !aggregates.IsCode(err, aggregates.CodeNotFound) {
			return nil, err
		}
		nodes[c.ID] = &CategoryNode{Category: c, Current: current}
	}
	var roots []*CategoryNode
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent := nodes[*c.ParentID]; parent != nil {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func (s *categoryService) ListChildren(ctx context.Context, tx *gorm.DB, parentID *uuid.UUID) ([]*CategoryNode, error) {
	const op = "CategoryService.ListChildren"
	categories, err := s.categoryRepo.ListByParentID(ctx, tx, parentID, false)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	out := make([]*CategoryNode, 0, len(categories))
	for _, c := range categories {
		current, err := s.versionService.GetCurrentVersion(ctx, tx, c.ID)
		if err != nil && !aggregates.IsCode(err, aggregates.CodeNotFound) {
			return nil, err
		}
		out = append(out, &CategoryNode{Category: c, Current: current})
	}
	return out, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	const op = "CategoryService.DeleteCategory"
	if categoryID == uuid.Nil {
		return aggregates.ValidationError(op, "category id required")
	}
	err := s.inTxWithRetry(ctx, func(tx *gorm.DB) error {
		category, err := s.categoryRepo.GetByID(ctx, tx, categoryID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if category == nil || category.Deleted {
			return aggregates.NotFoundError(op, "category not found")
		}

		children, err := s.categoryRepo.CountLiveChildren(ctx, tx, categoryID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if children > 0 {
			return aggregates.NewError(aggregates.CodePreconditionFailed, op,
				"category still has live child categories", nil)
		}

		ads, err := s.adRepo.CountActiveByCategoryID(ctx, tx, categoryID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if ads > 0 {
			return aggregates.NewError(aggregates.CodePreconditionFailed, op,
				"category still has live advertisements", nil)
		}

		now := time.Now().UTC()
		if err := s.versionService.CloseCurrentVersion(ctx, tx, categoryID, now); err != nil {
			// A category whose chain is already closed can still be marked
			// deleted, anything else aborts.
			if !aggregates.IsCode(err, aggregates.CodeNotFound) {
				return err
			}
		}
		if err := s.categoryRepo.MarkDeleted(ctx, tx, categoryID, now); err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("category deleted", "category_id", categoryID)
	return nil
}

func (s *categoryService) RestoreCategory(ctx context.Context, categoryID uuid.UUID) (*CategoryUpdateResult, error) {
	const op = "CategoryService.RestoreCategory"
	if categoryID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "category id required")
	}

	var result CategoryUpdateResult
	err := s.inTxWithRetry(ctx, func(tx *gorm.DB) error {
		category, err := s.categoryRepo.GetByID(ctx, tx, categoryID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if category == nil {
			return aggregates.NotFoundError(op, "category not found")
		}
		if !category.Deleted {
			return aggregates.ConflictError(op, "category is not deleted")
		}
		if category.ParentID != nil {
			parent, err := s.categoryRepo.GetByID(ctx, tx, *category.ParentID)
			if err != nil {
				return aggregates.Wrap(aggregates.CodeInternal, op, err)
			}
			if parent == nil || parent.Deleted {
				return aggregates.NewError(aggregates.CodePreconditionFailed, op,
					"parent category is deleted, restore it first", nil)
			}
		}

		latest, err := s.versionRepo.GetLatestByCategoryID(ctx, tx, categoryID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if latest == nil {
			return aggregates.InvariantError(op, "deleted category has no version history")
		}

		taken, err := s.versionRepo.CurrentNameExists(ctx, tx, latest.Name, categoryID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if taken {
			return aggregates.ConflictError(op,
				"another live category took this name while it was deleted")
		}

		if err := s.categoryRepo.MarkRestored(ctx, tx, categoryID); err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}

		// Reopen the chain with a copy of the last known schema. Numbering
		// continues from where it stopped.
		version, err := s.versionService.CreateNewVersion(ctx, tx, categoryID, versionInputFromSnapshot(latest))
		if err != nil {
			return err
		}

		result = CategoryUpdateResult{Category: category, Version: version}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.CategoryRestored(ctx, result.Category, result.Version)
	}
	s.log.Info("category restored", "category_id", categoryID, "version_number", result.Version.VersionNumber)
	return &result, nil
}

// versionInputFromSnapshot rebuilds a VersionInput from a stored version so the
// restore path reuses the normal transition machinery.
func versionInputFromSnapshot(v *types.CategoryVersion) VersionInput {
	in := VersionInput{
		Name:        v.Name,
		Description: v.Description,
		// Restored categories come back under review, never straight to live.
		Status: types.CategoryStatusInactive,
	}
	for _, a := range v.Attributes {
		entry := VersionAttributeInput{
			AttributeDefinitionID: a.AttributeDefinitionID,
			Required:              a.Required,
			DisplayOrder:          a.DisplayOrder,
			DefaultValue:          a.DefaultValue,
		}
		if len(a.RulesOverride) > 0 {
			if rules, err := catalog.ParseValidationRules(a.RulesOverride); err == nil {
				entry.RulesOverride = &rules
			}
		}
		in.Attributes = append(in.Attributes, entry)
	}
	return in
}

// schemaChangeWarnings flags schema deltas that can affect existing ads bound
// to older versions. These are advisory only, the transition still succeeds.
func schemaChangeWarnings(current *types.CategoryVersion, next []VersionAttributeInput) []string {
	if current == nil {
		return nil
	}
	nextByID := make(map[uuid.UUID]VersionAttributeInput, len(next))
	for _, in := range next {
		nextByID[in.AttributeDefinitionID] = in
	}
	var warnings []string
	for _, prev := range current.Attributes {
		entry, kept := nextByID[prev.AttributeDefinitionID]
		if !kept {
			warnings = append(warnings,
				"attribute "+prev.AttributeDefinitionID.String()+" removed from schema, existing ads keep their values")
			continue
		}
		if !prev.Required && entry.Required {
			warnings = append(warnings,
				"attribute "+prev.AttributeDefinitionID.String()+" became required, existing ads are not revalidated")
		}
	}
	return warnings
}
