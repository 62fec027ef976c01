package memory

import (
	"context"
	"sync"

	"marketplace/api/internal/models"
	"marketplace/api/internal/repository"
)

// DefaultCategories is the fixed dataset served when the catalog database
// cannot be reached and the fallback is enabled.
func DefaultCategories() []models.Category {
	return []models.Category{
		{
			ID:            "electronics",
			NameEn:        "Electronics",
			NameFr:        "Électronique",
			DescriptionEn: "Phones, computers and accessories",
			DescriptionFr: "Téléphones, ordinateurs et accessoires",
		},
		{
			ID:            "clothing",
			NameEn:        "Clothing",
			NameFr:        "Vêtements",
			DescriptionEn: "Apparel for every season",
			DescriptionFr: "Vêtements pour toutes les saisons",
		},
		{
			ID:            "books",
			NameEn:        "Books",
			NameFr:        "Livres",
			DescriptionEn: "Printed and digital books",
			DescriptionFr: "Livres imprimés et numériques",
		},
		{
			ID:            "home",
			NameEn:        "Home & Garden",
			NameFr:        "Maison et jardin",
			DescriptionEn: "Furniture, decor and tools",
			DescriptionFr: "Meubles, décoration et outils",
		},
	}
}

type CategoryStore struct {
	categories []models.Category
}

func NewCategoryStore(categories []models.Category) *CategoryStore {
	return &CategoryStore{categories: categories}
}

func (s *CategoryStore) List(context.Context) ([]models.Category, error) {
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

type CompanyStore struct {
	mu        sync.RWMutex
	companies []models.Company
}

func NewCompanyStore(companies ...models.Company) *CompanyStore {
	return &CompanyStore{companies: companies}
}

func (s *CompanyStore) FindByOwner(_ context.Context, ownerID string) (models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.companies {
		if c.OwnerID == ownerID {
			return c, nil
		}
	}
	return models.Company{}, repository.ErrCompanyNotFound
}

func (s *CompanyStore) Add(company models.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = append(s.companies, company)
}
