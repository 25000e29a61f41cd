package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
)

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type CategoryService interface {
	Create(ctx context.Context, req *CategoryRequest, actor model.Actor) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor model.Actor) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Category, error)
}

type categoryService struct {
	repo    repository.CategoryRepository
	catalog CatalogCache
}

func NewCategoryService(repo repository.CategoryRepository, catalog CatalogCache) CategoryService {
	if catalog == nil {
		catalog = noopCatalog{}
	}
	return &categoryService{repo: repo, catalog: catalog}
}

func (s *categoryService) Create(ctx context.Context, req *CategoryRequest, actor model.Actor) (*model.Category, error) {
	if err := firstValidationError(req); err != nil {
		return nil, err
	}
	category := &model.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	category.CreatedBy = actor.ID.String()
	category.UpdatedBy = actor.ID.String()

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, classifyStoreError(err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor model.Actor) (*model.Category, error) {
	if err := firstValidationError(req); err != nil {
		return nil, err
	}
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Description = req.Description
	category.UpdatedBy = actor.ID.String()
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, classifyStoreError(err)
	}
	s.catalog.Invalidate(ctx)
	return category, nil
}

// Delete drops the category. Its products stay, uncategorised.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrCategoryNotFound
		}
		return classifyStoreError(err)
	}
	s.catalog.Invalidate(ctx)
	return nil
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.FindAll(ctx)
}
