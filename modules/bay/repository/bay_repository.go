package repository

import (
	"context"
	"database/sql"

	"baybook/core/database"
	"baybook/core/logger"
	"baybook/modules/bay/entity"

	"github.com/google/uuid"
)

type BayRepositoryInterface interface {
	Create(ctx context.Context, bay *entity.Bay) (*entity.Bay, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bay, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Bay, error)
	List(ctx context.Context) ([]entity.Bay, error)
	Update(ctx context.Context, bay *entity.Bay) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BayRepository struct {
	DB database.Database
}

func NewBayRepository(db database.Database) *BayRepository {
	return &BayRepository{DB: db}
}

func (r *BayRepository) Create(ctx context.Context, bay *entity.Bay) (*entity.Bay, error) {
	query := `
		INSERT INTO bays (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, slug, description, created_at, updated_at
	`

	var created entity.Bay
	err := r.DB.GetContext(ctx, &created, query, bay.Name, bay.Slug, bay.Description)
	if err != nil {
		logger.Error("BayRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *BayRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bay, error) {
	query := `SELECT id, name, slug, description, created_at, updated_at FROM bays WHERE id = $1`

	var bay entity.Bay
	err := r.DB.GetContext(ctx, &bay, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BayRepository:GetByID", err)
		return nil, err
	}
	return &bay, nil
}

func (r *BayRepository) GetBySlug(ctx context.Context, slug string) (*entity.Bay, error) {
	query := `SELECT id, name, slug, description, created_at, updated_at FROM bays WHERE slug = $1`

	var bay entity.Bay
	err := r.DB.GetContext(ctx, &bay, query, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BayRepository:GetBySlug", err)
		return nil, err
	}
	return &bay, nil
}

func (r *BayRepository) List(ctx context.Context) ([]entity.Bay, error) {
	query := `SELECT id, name, slug, description, created_at, updated_at FROM bays ORDER BY name`

	var bays []entity.Bay
	err := r.DB.SelectContext(ctx, &bays, query)
	if err != nil {
		logger.Error("BayRepository:List", err)
		return nil, err
	}
	return bays, nil
}

func (r *BayRepository) Update(ctx context.Context, bay *entity.Bay) error {
	query := `UPDATE bays SET name = $2, slug = $3, description = $4, updated_at = NOW() WHERE id = $1`

	err := r.DB.ExecContext(ctx, query, bay.ID, bay.Name, bay.Slug, bay.Description)
	if err != nil {
		logger.Error("BayRepository:Update", err)
		return err
	}
	return nil
}

func (r *BayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bays WHERE id = $1`
	err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("BayRepository:Delete", err)
		return err
	}
	return nil
}
