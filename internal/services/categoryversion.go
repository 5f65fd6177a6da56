package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/adverto/adboard-backend/internal/data/aggregates"
	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

// VersionAttributeInput is one schema entry request for a new version.
type VersionAttributeInput struct {
	AttributeDefinitionID uuid.UUID              `json:"attribute_definition_id"`
	Required              bool                   `json:"required"`
	DisplayOrder          int                    `json:"display_order"`
	DefaultValue          string                 `json:"default_value"`
	RulesOverride         *types.ValidationRules `json:"rules_override,omitempty"`
}

// VersionInput describes the snapshot content of a new category version.
type VersionInput struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Status      types.CategoryStatus    `json:"status"`
	ValidFrom   *time.Time              `json:"valid_from,omitempty"`
	Attributes  []VersionAttributeInput `json:"attributes"`
}

// CategoryVersionService manages the time-bounded version chain of a category.
// Write methods require an open transaction: the caller owns the transaction
// boundary and the retry policy, this service owns the chain invariants.
type CategoryVersionService interface {
	GetCurrentVersion(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*types.CategoryVersion, error)
	GetVersionAtTime(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, at time.Time) (*types.CategoryVersion, error)
	GetVersionByID(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) (*types.CategoryVersion, error)
	ListVersions(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.CategoryVersion, error)

	// CreateNewVersion closes the open version (when one exists) and inserts
	// the next one in a single transition. The transition instant is shared:
	// old.ValidTo == new.ValidFrom, so no instant is uncovered and none is
	// covered twice.
	CreateNewVersion(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, input VersionInput) (*types.CategoryVersion, error)

	// CloseCurrentVersion ends the chain without a successor. Used by category
	// deletion.
	CloseCurrentVersion(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, at time.Time) error
}

type categoryVersionService struct {
	db          *gorm.DB
	log         *logger.Logger
	versionRepo repos.CategoryVersionRepo
	defRepo     repos.AttributeDefinitionRepo
}

func NewCategoryVersionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	versionRepo repos.CategoryVersionRepo,
	defRepo repos.AttributeDefinitionRepo,
) CategoryVersionService {
	return &categoryVersionService{
		db:          db,
		log:         baseLog.With("service", "CategoryVersionService"),
		versionRepo: versionRepo,
		defRepo:     defRepo,
	}
}

func (s *categoryVersionService) GetCurrentVersion(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*types.CategoryVersion, error) {
	const op = "CategoryVersionService.GetCurrentVersion"
	if categoryID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "category id required")
	}
	open, err := s.versionRepo.GetOpenByCategoryID(ctx, tx, categoryID)
	if err != nil {
		s.log.Error("load open version failed", "error", err, "category_id", categoryID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	switch len(open) {
	case 0:
		return nil, aggregates.NotFoundError(op, "category has no current version")
	case 1:
		return open[0], nil
	default:
		// Multiple open versions means the partial unique index was bypassed.
		// Surface loudly instead of picking one.
		s.log.Error("multiple open versions detected", "category_id", categoryID, "count", len(open))
		return nil, aggregates.InvariantError(op, "category has more than one open version")
	}
}

func (s *categoryVersionService) GetVersionAtTime(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, at time.Time) (*types.CategoryVersion, error) {
	const op = "CategoryVersionService.GetVersionAtTime"
	if categoryID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "category id required")
	}
	if at.IsZero() {
		return nil, aggregates.ValidationError(op, "timestamp required")
	}
	covering, err := s.versionRepo.GetAtTime(ctx, tx, categoryID, at.UTC())
	if err != nil {
		s.log.Error("load version at time failed", "error", err, "category_id", categoryID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	switch len(covering) {
	case 0:
		return nil, aggregates.NotFoundError(op, "no version covers the requested instant")
	case 1:
		return covering[0], nil
	default:
		s.log.Error("overlapping version windows detected", "category_id", categoryID, "at", at, "count", len(covering))
		return nil, aggregates.InvariantError(op, "version windows overlap at the requested instant")
	}
}

func (s *categoryVersionService) GetVersionByID(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) (*types.CategoryVersion, error) {
	const op = "CategoryVersionService.GetVersionByID"
	if versionID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "version id required")
	}
	v, err := s.versionRepo.GetByID(ctx, tx, versionID)
	if err != nil {
		s.log.Error("load version failed", "error", err, "version_id", versionID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if v == nil {
		return nil, aggregates.NotFoundError(op, "version not found")
	}
	return v, nil
}

func (s *categoryVersionService) ListVersions(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.CategoryVersion, error) {
	const op = "CategoryVersionService.ListVersions"
	if categoryID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "category id required")
	}
	versions, err := s.versionRepo.ListByCategoryID(ctx, tx, categoryID)
	if err != nil {
		s.log.Error("list versions failed", "error", err, "category_id", categoryID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return versions, nil
}

func (s *categoryVersionService) CreateNewVersion(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, input VersionInput) (*types.CategoryVersion, error) {
	const op = "CategoryVersionService.CreateNewVersion"
	if tx == nil {
		return nil, aggregates.NewError(aggregates.CodeInternal, op, "version transition requires an open transaction", nil)
	}
	if categoryID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "category id required")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, aggregates.ValidationError(op, "name required")
	}
	if input.Status == "" {
		input.Status = types.CategoryStatusActive
	}
	if !input.Status.Valid() {
		return nil, aggregates.ValidationError(op, "unknown category status")
	}

	entries, err := s.buildSchemaEntries(ctx, tx, input.Attributes)
	if err != nil {
		return nil, err
	}

	// Serialize concurrent transitions on the same category.
	var category types.Category
	if err := dataagg.LockForUpdate(ctx, tx, &category, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, aggregates.NotFoundError(op, "category not found")
		}
		s.log.Error("category lock failed", "error", err, "category_id", categoryID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	open, err := s.versionRepo.GetOpenByCategoryID(ctx, tx, categoryID)
	if err != nil {
		s.log.Error("load open version failed", "error", err, "category_id", categoryID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if len(open) > 1 {
		s.log.Error("multiple open versions detected", "category_id", categoryID, "count", len(open))
		return nil, aggregates.InvariantError(op, "category has more than one open version")
	}

	transitionAt := time.Now().UTC()
	nextNumber := 1
	if len(open) == 1 {
		current := open[0]
		nextNumber = current.VersionNumber + 1
		if input.ValidFrom != nil {
			return nil, aggregates.ValidationError(op, "valid_from can only be set on the first version")
		}
		if !transitionAt.After(current.ValidFrom) {
			// Clock skew or sub-microsecond succession would produce an empty
			// or inverted window for the closed version.
			transitionAt = current.ValidFrom.Add(time.Microsecond)
		}
		closed, err := dataagg.CloseOpenWindow(ctx, tx, types.CategoryVersion{}.TableName(), current.ID, transitionAt)
		if err != nil {
			s.log.Error("close current version failed", "error", err, "category_id", categoryID, "version_id", current.ID)
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if err := dataagg.RequireCASSuccess(closed, op, "current version changed concurrently"); err != nil {
			s.log.Warn("version close lost the race", "category_id", categoryID, "version_id", current.ID)
			return nil, err
		}
	} else {
		latest, err := s.versionRepo.GetLatestByCategoryID(ctx, tx, categoryID)
		if err != nil {
			s.log.Error("load latest version failed", "error", err, "category_id", categoryID)
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if latest != nil {
			// Reopening a closed chain (category restore): numbering continues,
			// it never resets.
			nextNumber = latest.VersionNumber + 1
			if latest.ValidTo != nil && !transitionAt.After(*latest.ValidTo) {
				transitionAt = latest.ValidTo.Add(time.Microsecond)
			}
		}
		if input.ValidFrom != nil {
			transitionAt = input.ValidFrom.UTC()
		}
	}

	version := &types.CategoryVersion{
		ID:            uuid.New(),
		CategoryID:    categoryID,
		VersionNumber: nextNumber,
		ValidFrom:     transitionAt,
		Name:          input.Name,
		Description:   strings.TrimSpace(input.Description),
		Status:        input.Status,
		Attributes:    entries,
	}
	if _, err := s.versionRepo.Create(ctx, tx, version); err != nil {
		s.log.Error("create version failed", "error", err, "category_id", categoryID, "version_number", nextNumber)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	s.log.Info("category version created",
		"category_id", categoryID,
		"version_id", version.ID,
		"version_number", version.VersionNumber,
		"attribute_count", len(entries))
	return version, nil
}

func (s *categoryVersionService) CloseCurrentVersion(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, at time.Time) error {
	const op = "CategoryVersionService.CloseCurrentVersion"
	if tx == nil {
		return aggregates.NewError(aggregates.CodeInternal, op, "version transition requires an open transaction", nil)
	}
	current, err := s.GetCurrentVersion(ctx, tx, categoryID)
	if err != nil {
		return err
	}
	closeAt := at.UTC()
	if !closeAt.After(current.ValidFrom) {
		closeAt = current.ValidFrom.Add(time.Microsecond)
	}
	closed, err := dataagg.CloseOpenWindow(ctx, tx, types.CategoryVersion{}.TableName(), current.ID, closeAt)
	if err != nil {
		s.log.Error("close current version failed", "error", err, "category_id", categoryID, "version_id", current.ID)
		return aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if err := dataagg.RequireCASSuccess(closed, op, "current version changed concurrently"); err != nil {
		s.log.Warn("version close lost the race", "category_id", categoryID, "version_id", current.ID)
		return err
	}
	return nil
}

// buildSchemaEntries resolves every referenced attribute definition and
// materializes the snapshot rows. Any unknown definition fails the whole
// transition; display order is normalized to a dense 0-based sequence.
func (s *categoryVersionService) buildSchemaEntries(ctx context.Context, tx *gorm.DB, inputs []VersionAttributeInput) ([]types.CategoryVersionAttribute, error) {
	const op = "CategoryVersionService.CreateNewVersion"
	if len(inputs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if in.AttributeDefinitionID == uuid.Nil {
			return nil, aggregates.ValidationError(op, "attribute definition id required")
		}
		if seen[in.AttributeDefinitionID] {
			return nil, aggregates.ValidationError(op, "duplicate attribute definition "+in.AttributeDefinitionID.String())
		}
		seen[in.AttributeDefinitionID] = true
		ids = append(ids, in.AttributeDefinitionID)
	}

	defs, err := s.defRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		s.log.Error("resolve attribute definitions failed", "error", err)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	byID := make(map[uuid.UUID]*types.AttributeDefinition, len(defs))
	for _, d := range defs {
		if d != nil {
			byID[d.ID] = d
		}
	}
	var missing []string
	for _, id := range ids {
		if byID[id] == nil {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, aggregates.ValidationError(op, "unknown attribute definitions: "+strings.Join(missing, ", "))
	}

	ordered := make([]VersionAttributeInput, len(inputs))
	copy(ordered, inputs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	entries := make([]types.CategoryVersionAttribute, 0, len(ordered))
	for i, in := range ordered {
		entry := types.CategoryVersionAttribute{
			ID:                    uuid.New(),
			AttributeDefinitionID: in.AttributeDefinitionID,
			Required:              in.Required,
			DisplayOrder:          i,
			DefaultValue:          strings.TrimSpace(in.DefaultValue),
		}
		if in.RulesOverride != nil {
			raw, err := in.RulesOverride.MarshalJSONB()
			if err != nil {
				return nil, aggregates.Wrap(aggregates.CodeValidation, op, err)
			}
			entry.RulesOverride = raw
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
