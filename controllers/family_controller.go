package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/martagon-studio/workshop-api/config"
	"github.com/martagon-studio/workshop-api/models"
	"github.com/martagon-studio/workshop-api/services"
)

// CreateFamilyRequest represents the request body for creating a family
type CreateFamilyRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// UpdateFamilyRequest represents the request body for updating a family
type UpdateFamilyRequest struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// ListFamilies handles GET /api/v1/families
func ListFamilies(c *gin.Context) {
	db := config.GetDB()

	q := db.Model(&models.Family{})
	q = applySearch(c, q, "code", "name")
	q = applyActiveFilter(c, q)
	q = applyOrdering(c, q, map[string]bool{
		"code":       true,
		"name":       true,
		"created_at": true,
	}, "code")

	var families []models.Family
	if err := q.Find(&families).Error; err != nil {
		config.Logger().Error("failed to list families", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list families",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    families,
	})
}

// ListActiveFamilies handles GET /api/v1/families/active
func ListActiveFamilies(c *gin.Context) {
	db := config.GetDB()

	var families []models.Family
	if err := db.Where("active = ?", true).Order("code").Find(&families).Error; err != nil {
		config.Logger().Error("failed to list active families", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list families",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    families,
	})
}

// CreateFamily handles POST /api/v1/families
func CreateFamily(c *gin.Context) {
	var req CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	family := models.Family{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		family.Active = *req.Active
	}

	db := config.GetDB()
	if err := db.Create(&family).Error; err != nil {
		if services.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "A family with this code already exists",
				},
			})
			return
		}
		config.Logger().Error("failed to create family", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create family",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    family,
	})
}

// GetFamily handles GET /api/v1/families/:id
func GetFamily(c *gin.Context) {
	db := config.GetDB()

	var family models.Family
	if err := db.First(&family, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Family not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    family,
	})
}

// UpdateFamily handles PUT /api/v1/families/:id
func UpdateFamily(c *gin.Context) {
	db := config.GetDB()

	var family models.Family
	if err := db.First(&family, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Family not found",
			},
		})
		return
	}

	var req UpdateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if req.Code != nil {
		family.Code = *req.Code
	}
	if req.Name != nil {
		family.Name = *req.Name
	}
	if req.Description != nil {
		family.Description = *req.Description
	}
	if req.Active != nil {
		family.Active = *req.Active
	}

	if err := db.Save(&family).Error; err != nil {
		if services.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "A family with this code already exists",
				},
			})
			return
		}
		config.Logger().Error("failed to update family", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update family",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    family,
	})
}

// DeleteFamily handles DELETE /api/v1/families/:id
// A family referenced by a raw material cannot be deleted.
func DeleteFamily(c *gin.Context) {
	db := config.GetDB()

	var family models.Family
	if err := db.First(&family, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Family not found",
			},
		})
		return
	}

	var refs int64
	if err := db.Model(&models.RawMaterial{}).Where("family_id = ?", family.ID).Count(&refs).Error; err != nil {
		config.Logger().Error("failed to count family references", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete family",
			},
		})
		return
	}
	if refs > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REFERENCE_ERROR",
				"message": "Family is referenced by existing raw materials and cannot be deleted",
			},
		})
		return
	}

	if err := db.Delete(&family).Error; err != nil {
		config.Logger().Error("failed to delete family", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete family",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": family.ID},
	})
}
