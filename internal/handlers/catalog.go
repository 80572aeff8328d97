package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsorship-backoffice/internal/dto"
	apierrors "github.com/yukikurage/sponsorship-backoffice/internal/errors"
	"github.com/yukikurage/sponsorship-backoffice/internal/middleware"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
)

type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListObjectTypes returns the catalog, catch-all entry last
func (h *CatalogHandler) ListObjectTypes(c *gin.Context) {
	entries, err := h.catalog.List(c.Request.Context())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	result := make([]dto.ObjectTypeDTO, len(entries))
	for i, e := range entries {
		result[i] = dto.ToObjectTypeDTO(e)
	}
	c.JSON(http.StatusOK, gin.H{"object_types": result})
}

// CreateObjectType appends a catalog entry
func (h *CatalogHandler) CreateObjectType(c *gin.Context) {
	type CreateObjectTypeRequest struct {
		Code  string `json:"code" binding:"required,max=64"`
		Label string `json:"label" binding:"required,max=255"`
	}

	var req CreateObjectTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	entry, err := h.catalog.AddTaskObjectType(c.Request.Context(), middleware.GetCapabilities(c), req.Code, req.Label)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToObjectTypeDTO(*entry))
}
