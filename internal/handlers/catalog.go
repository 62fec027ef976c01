package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type categoryResponse struct {
	ID            string `json:"id"`
	NameEn        string `json:"nameEn"`
	NameFr        string `json:"nameFr"`
	DescriptionEn string `json:"descriptionEn"`
	DescriptionFr string `json:"descriptionFr"`
}

func (h HandlerSet) ListCategories(c *gin.Context) {
	res := h.categories.List(c.Request.Context())
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	resp := make([]categoryResponse, 0, len(res.Value()))
	for _, category := range res.Value() {
		resp = append(resp, categoryResponse{
			ID:            category.ID,
			NameEn:        category.NameEn,
			NameFr:        category.NameFr,
			DescriptionEn: category.DescriptionEn,
			DescriptionFr: category.DescriptionFr,
		})
	}
	c.JSON(http.StatusOK, resp)
}

type companyResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h HandlerSet) GetMyCompany(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	res := h.companies.GetByOwner(c.Request.Context(), user.ID)
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	company := res.Value()
	c.JSON(http.StatusOK, companyResponse{
		ID:          company.ID,
		OwnerID:     company.OwnerID,
		Name:        company.Name,
		Description: company.Description,
		Email:       company.Email,
		CreatedAt:   company.CreatedAt,
	})
}
