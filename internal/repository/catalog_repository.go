package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"marketplace/api/internal/models"
)

type CategoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	const query = `
		SELECT id, name_en, name_fr, description_en, description_fr
		FROM categories
		ORDER BY name_en
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, Classify("list categories", err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.NameEn, &c.NameFr, &c.DescriptionEn, &c.DescriptionFr); err != nil {
			return nil, Classify("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, Classify("list categories", err)
	}
	return categories, nil
}

type CompanyRepository struct {
	db DBTX
}

func NewCompanyRepository(db DBTX) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) FindByOwner(ctx context.Context, ownerID string) (models.Company, error) {
	const query = `
		SELECT id, owner_id, name, description, email, created_at
		FROM companies
		WHERE owner_id = $1
		ORDER BY created_at
		LIMIT 1
	`

	var c models.Company
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Description,
		&c.Email,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Company{}, ErrCompanyNotFound
		}
		return models.Company{}, Classify("find company by owner", err)
	}
	return c, nil
}
