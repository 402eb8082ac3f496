package service

import (
	"context"

	"baybook/core/errors"
	"baybook/core/logger"
	"baybook/modules/bay/dto"
	"baybook/modules/bay/entity"
	"baybook/modules/bay/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type BayServiceInterface interface {
	Create(ctx context.Context, req *dto.CreateBayRequest) (*entity.Bay, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bay, error)
	List(ctx context.Context) ([]entity.Bay, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateBayRequest) (*entity.Bay, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type BayService struct {
	bayRepo repository.BayRepositoryInterface
}

func NewBayService(bayRepo repository.BayRepositoryInterface) *BayService {
	return &BayService{bayRepo: bayRepo}
}

func (s *BayService) Create(ctx context.Context, req *dto.CreateBayRequest) (*entity.Bay, error) {
	logger.Info("BayService:Create:Start", "name", req.Name)

	baySlug := slug.Make(req.Name)
	existing, err := s.bayRepo.GetBySlug(ctx, baySlug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check bay slug", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "a bay with this name already exists", nil)
	}

	bay := &entity.Bay{
		Name:        req.Name,
		Slug:        baySlug,
		Description: req.Description,
	}
	created, err := s.bayRepo.Create(ctx, bay)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create bay", err)
	}

	logger.Info("BayService:Create:Success", "bayId", created.ID)
	return created, nil
}

func (s *BayService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bay, error) {
	bay, err := s.bayRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to fetch bay", err)
	}
	if bay == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "bay not found", nil)
	}
	return bay, nil
}

func (s *BayService) List(ctx context.Context) ([]entity.Bay, error) {
	bays, err := s.bayRepo.List(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list bays", err)
	}
	return bays, nil
}

func (s *BayService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateBayRequest) (*entity.Bay, error) {
	bay, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		bay.Name = *req.Name
		bay.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		bay.Description = req.Description
	}

	if err := s.bayRepo.Update(ctx, bay); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update bay", err)
	}
	return bay, nil
}

func (s *BayService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.bayRepo.Delete(ctx, id); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete bay", err)
	}
	return nil
}
