package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type CreateAdPackageInput struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	DurationDays int     `json:"duration_days"`
	MaxPhotos    int     `json:"max_photos"`
	Featured     bool    `json:"featured"`
	TopAd        bool    `json:"top_ad"`
	Price        float64 `json:"price"`
}

type UpdateAdPackageInput struct {
	Description  *string  `json:"description,omitempty"`
	DurationDays *int     `json:"duration_days,omitempty"`
	MaxPhotos    *int     `json:"max_photos,omitempty"`
	Featured     *bool    `json:"featured,omitempty"`
	TopAd        *bool    `json:"top_ad,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Active       *bool    `json:"active,omitempty"`
}

type AdPackageService interface {
	CreatePackage(ctx context.Context, input CreateAdPackageInput) (*types.AdPackage, error)
	GetPackage(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AdPackage, error)
	ListPackages(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*types.AdPackage, error)
	UpdatePackage(ctx context.Context, id uuid.UUID, input UpdateAdPackageInput) (*types.AdPackage, error)
}

type adPackageService struct {
	db          *gorm.DB
	log         *logger.Logger
	packageRepo repos.AdPackageRepo
}

func NewAdPackageService(db *gorm.DB, baseLog *logger.Logger, packageRepo repos.AdPackageRepo) AdPackageService {
	return &adPackageService{
		db:          db,
		log:         baseLog.With("service", "AdPackageService"),
		packageRepo: packageRepo,
	}
}

func (s *adPackageService) CreatePackage(ctx context.Context, input CreateAdPackageInput) (*types.AdPackage, error) {
	const op = "AdPackageService.CreatePackage"
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, aggregates.ValidationError(op, "name required")
	}
	if input.DurationDays <= 0 {
		return nil, aggregates.ValidationError(op, "duration must be positive")
	}
	if input.MaxPhotos < 0 {
		return nil, aggregates.ValidationError(op, "max photos cannot be negative")
	}
	if input.Price < 0 {
		return nil, aggregates.ValidationError(op, "price cannot be negative")
	}

	existing, err := s.packageRepo.GetByName(ctx, nil, input.Name)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if existing != nil {
		return nil, aggregates.ConflictError(op, "package name already in use")
	}

	pkg := &types.AdPackage{
		ID:           uuid.New(),
		Name:         input.Name,
		Description:  strings.TrimSpace(input.Description),
		DurationDays: input.DurationDays,
		MaxPhotos:    input.MaxPhotos,
		Featured:     input.Featured,
		TopAd:        input.TopAd,
		Price:        input.Price,
		Active:       true,
	}
	if _, err := s.packageRepo.Create(ctx, nil, pkg); err != nil {
		s.log.Error("create package failed", "error", err, "name", input.Name)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	s.log.Info("ad package created", "package_id", pkg.ID, "name", pkg.Name)
	return pkg, nil
}

func (s *adPackageService) GetPackage(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AdPackage, error) {
	const op = "AdPackageService.GetPackage"
	if id == uuid.Nil {
		return nil, aggregates.ValidationError(op, "package id required")
	}
	pkg, err := s.packageRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if pkg == nil {
		return nil, aggregates.NotFoundError(op, "ad package not found")
	}
	return pkg, nil
}

func (s *adPackageService) ListPackages(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*types.AdPackage, error) {
	const op = "AdPackageService.ListPackages"
	pkgs, err := s.packageRepo.List(ctx, tx, activeOnly)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return pkgs, nil
}

func (s *adPackageService) UpdatePackage(ctx context.Context, id uuid.UUID, input UpdateAdPackageInput) (*types.AdPackage, error) {
	const op = "AdPackageService.UpdatePackage"
	if _, err := s.GetPackage(ctx, nil, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.DurationDays != nil {
		if *input.DurationDays <= 0 {
			return nil, aggregates.ValidationError(op, "duration must be positive")
		}
		fields["duration_days"] = *input.DurationDays
	}
	if input.MaxPhotos != nil {
		if *input.MaxPhotos < 0 {
			return nil, aggregates.ValidationError(op, "max photos cannot be negative")
		}
		fields["max_photos"] = *input.MaxPhotos
	}
	if input.Featured != nil {
		fields["featured"] = *input.Featured
	}
	if input.TopAd != nil {
		fields["top_ad"] = *input.TopAd
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, aggregates.ValidationError(op, "price cannot be negative")
		}
		fields["price"] = *input.Price
	}
	if input.Active != nil {
		fields["active"] = *input.Active
	}
	if len(fields) > 0 {
		if err := s.packageRepo.UpdateFields(ctx, nil, id, fields); err != nil {
			s.log.Error("update package failed", "error", err, "package_id", id)
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
	}
	return s.GetPackage(ctx, nil, id)
}
