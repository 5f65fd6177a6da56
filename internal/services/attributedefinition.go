package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/adverto/adboard-backend/internal/data/aggregates"
	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/dbctx"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

// CreateAttributeDefinitionInput registers a new typed attribute. The data
// type is fixed forever at this point.
type CreateAttributeDefinitionInput struct {
	Name              string                 `json:"name"`
	DisplayName       string                 `json:"display_name"`
	DataType          types.DataType         `json:"data_type"`
	Searchable        bool                   `json:"searchable"`
	RequiredByDefault bool                   `json:"required_by_default"`
	ValidationRules   *types.ValidationRules `json:"validation_rules,omitempty"`
}

// UpdateAttributeDefinitionInput carries the mutable subset. Nil fields are
// left untouched; DataType has no update path at all.
type UpdateAttributeDefinitionInput struct {
	DisplayName       *string                `json:"display_name,omitempty"`
	Searchable        *bool                  `json:"searchable,omitempty"`
	RequiredByDefault *bool                  `json:"required_by_default,omitempty"`
	ValidationRules   *types.ValidationRules `json:"validation_rules,omitempty"`
}

type AttributeDefinitionService interface {
	CreateDefinition(ctx context.Context, input CreateAttributeDefinitionInput) (*types.AttributeDefinition, error)
	GetDefinition(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AttributeDefinition, error)
	ListDefinitions(ctx context.Context, tx *gorm.DB) ([]*types.AttributeDefinition, error)
	UpdateDefinition(ctx context.Context, id uuid.UUID, input UpdateAttributeDefinitionInput) (*types.AttributeDefinition, error)
	DeleteDefinition(ctx context.Context, id uuid.UUID) error
}

type attributeDefinitionService struct {
	db       *gorm.DB
	log      *logger.Logger
	txRunner dataagg.TxRunner
	defRepo  repos.AttributeDefinitionRepo
}

func NewAttributeDefinitionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRunner dataagg.TxRunner,
	defRepo repos.AttributeDefinitionRepo,
) AttributeDefinitionService {
	return &attributeDefinitionService{
		db:       db,
		log:      baseLog.With("service", "AttributeDefinitionService"),
		txRunner: txRunner,
		defRepo:  defRepo,
	}
}

func (s *attributeDefinitionService) CreateDefinition(ctx context.Context, input CreateAttributeDefinitionInput) (*types.AttributeDefinition, error) {
	const op = "AttributeDefinitionService.CreateDefinition"
	input.Name = strings.TrimSpace(input.Name)
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.Name == "" {
		return nil, aggregates.ValidationError(op, "name required")
	}
	if input.DisplayName == "" {
		input.DisplayName = input.Name
	}
	if !input.DataType.Valid() {
		return nil, aggregates.ValidationError(op, "unknown data type")
	}
	if err := checkRulesForType(op, input.DataType, input.ValidationRules); err != nil {
		return nil, err
	}

	def := &types.AttributeDefinition{
		ID:                uuid.New(),
		Name:              input.Name,
		DisplayName:       input.DisplayName,
		DataType:          input.DataType,
		Searchable:        input.Searchable,
		RequiredByDefault: input.RequiredByDefault,
	}
	if input.ValidationRules != nil {
		raw, err := input.ValidationRules.MarshalJSONB()
		if err != nil {
			return nil, aggregates.Wrap(aggregates.CodeValidation, op, err)
		}
		def.ValidationRules = raw
	}

	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		existing, err := s.defRepo.GetByName(dbc.Ctx, dbc.Tx, input.Name)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if existing != nil {
			return aggregates.ConflictError(op, "attribute name already registered")
		}
		if _, err := s.defRepo.Create(dbc.Ctx, dbc.Tx, []*types.AttributeDefinition{def}); err != nil {
			s.log.Error("create attribute definition failed", "error", err, "name", input.Name)
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("attribute definition created", "definition_id", def.ID, "name", def.Name, "data_type", def.DataType)
	return def, nil
}

func (s *attributeDefinitionService) GetDefinition(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AttributeDefinition, error) {
	const op = "AttributeDefinitionService.GetDefinition"
	if id == uuid.Nil {
		return nil, aggregates.ValidationError(op, "definition id required")
	}
	def, err := s.defRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if def == nil {
		return nil, aggregates.NotFoundError(op, "attribute definition not found")
	}
	return def, nil
}

func (s *attributeDefinitionService) ListDefinitions(ctx context.Context, tx *gorm.DB) ([]*types.AttributeDefinition, error) {
	const op = "AttributeDefinitionService.ListDefinitions"
	defs, err := s.defRepo.List(ctx, tx)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return defs, nil
}

func (s *attributeDefinitionService) UpdateDefinition(ctx context.Context, id uuid.UUID, input UpdateAttributeDefinitionInput) (*types.AttributeDefinition, error) {
	const op = "AttributeDefinitionService.UpdateDefinition"
	if id == uuid.Nil {
		return nil, aggregates.ValidationError(op, "definition id required")
	}

	var out *types.AttributeDefinition
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		def, err := s.defRepo.GetByID(dbc.Ctx, dbc.Tx, id)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if def == nil {
			return aggregates.NotFoundError(op, "attribute definition not found")
		}

		updates := map[string]interface{}{}
		if input.DisplayName != nil {
			name := strings.TrimSpace(*input.DisplayName)
			if name == "" {
				return aggregates.ValidationError(op, "display name cannot be empty")
			}
			updates["display_name"] = name
		}
		if input.Searchable != nil {
			updates["searchable"] = *input.Searchable
		}
		if input.RequiredByDefault != nil {
			updates["required_by_default"] = *input.RequiredByDefault
		}
		if input.ValidationRules != nil {
			if err := checkRulesForType(op, def.DataType, input.ValidationRules); err != nil {
				return err
			}
			raw, err := input.ValidationRules.MarshalJSONB()
			if err != nil {
				return aggregates.Wrap(aggregates.CodeValidation, op, err)
			}
			updates["validation_rules"] = raw
		}
		if len(updates) == 0 {
			out = def
			return nil
		}

		if err := s.defRepo.UpdateFields(dbc.Ctx, dbc.Tx, id, updates); err != nil {
			s.log.Error("update attribute definition failed", "error", err, "definition_id", id)
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		out, err = s.defRepo.GetByID(dbc.Ctx, dbc.Tx, id)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *attributeDefinitionService) DeleteDefinition(ctx context.Context, id uuid.UUID) error {
	const op = "AttributeDefinitionService.DeleteDefinition"
	if id == uuid.Nil {
		return aggregates.ValidationError(op, "definition id required")
	}
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		def, err := s.defRepo.GetByID(dbc.Ctx, dbc.Tx, id)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if def == nil {
			return aggregates.NotFoundError(op, "attribute definition not found")
		}
		refs, err := s.defRepo.CountReferences(dbc.Ctx, dbc.Tx, id)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if refs > 0 {
			return aggregates.NewError(aggregates.CodePreconditionFailed, op,
				"attribute definition is still referenced by version schemas or ad values", nil)
		}
		if err := s.defRepo.FullDeleteByIDs(dbc.Ctx, dbc.Tx, []uuid.UUID{id}); err != nil {
			s.log.Error("delete attribute definition failed", "error", err, "definition_id", id)
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("attribute definition deleted", "definition_id", id)
	return nil
}

// checkRulesForType rejects rules that cannot apply to the data type so bad
// registry entries never reach validation time.
func checkRulesForType(op string, dt types.DataType, rules *types.ValidationRules) error {
	if rules == nil {
		return nil
	}
	switch dt {
	case types.DataTypeText:
		if rules.MinValue != nil || rules.MaxValue != nil || rules.MinDate != nil || rules.MaxDate != nil {
			return aggregates.ValidationError(op, "numeric or date rules do not apply to TEXT attributes")
		}
		if rules.MinLength != nil && rules.MaxLength != nil && *rules.MinLength > *rules.MaxLength {
			return aggregates.ValidationError(op, "min_length exceeds max_length")
		}
	case types.DataTypeNumber:
		if rules.MinLength != nil || rules.MaxLength != nil || len(rules.Options) > 0 || rules.Pattern != "" {
			return aggregates.ValidationError(op, "length, option or pattern rules do not apply to NUMBER attributes")
		}
		if rules.MinValue != nil && rules.MaxValue != nil && *rules.MinValue > *rules.MaxValue {
			return aggregates.ValidationError(op, "min_value exceeds max_value")
		}
	case types.DataTypeDate:
		if rules.MinDate != nil && rules.MaxDate != nil && rules.MinDate.After(*rules.MaxDate) {
			return aggregates.ValidationError(op, "min_date is after max_date")
		}
	case types.DataTypeSelect, types.DataTypeMultiSelect:
		if len(rules.Options) == 0 {
			return aggregates.ValidationError(op, "select attributes require an options list")
		}
	case types.DataTypeBoolean, types.DataTypeLocation:
		if rules.MinLength != nil || rules.MaxLength != nil || len(rules.Options) > 0 || rules.Pattern != "" ||
			rules.MinValue != nil || rules.MaxValue != nil || rules.MinDate != nil || rules.MaxDate != nil {
			return aggregates.ValidationError(op, "validation rules do not apply to this data type")
		}
	}
	return nil
}
