package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/martagon-studio/workshop-api/config"
	"github.com/martagon-studio/workshop-api/models"
	"github.com/martagon-studio/workshop-api/services"
)

// CreateProductModelRequest represents the request body for creating a model
type CreateProductModelRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// UpdateProductModelRequest represents the request body for updating a model
type UpdateProductModelRequest struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Kind        *string `json:"kind"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// ListProductModels handles GET /api/v1/product-models
func ListProductModels(c *gin.Context) {
	db := config.GetDB()

	q := db.Model(&models.ProductModel{})
	q = applySearch(c, q, "code", "name")
	q = applyActiveFilter(c, q)
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	q = applyOrdering(c, q, map[string]bool{
		"code":       true,
		"name":       true,
		"kind":       true,
		"created_at": true,
	}, "code")

	var productModels []models.ProductModel
	if err := q.Find(&productModels).Error; err != nil {
		config.Logger().Error("failed to list product models", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list product models",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    productModels,
	})
}

// ListActiveProductModels handles GET /api/v1/product-models/active
func ListActiveProductModels(c *gin.Context) {
	db := config.GetDB()

	var productModels []models.ProductModel
	if err := db.Where("active = ?", true).Order("code").Find(&productModels).Error; err != nil {
		config.Logger().Error("failed to list active product models", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list product models",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    productModels,
	})
}

// ListProductModelsByKind handles GET /api/v1/product-models/by-kind
// Returns active models grouped into raw-material and finished-product lines.
func ListProductModelsByKind(c *gin.Context) {
	db := config.GetDB()

	var rawMaterials []models.ProductModel
	if err := db.Where("kind = ? AND active = ?", models.KindRawMaterial, true).
		Order("code").Find(&rawMaterials).Error; err != nil {
		config.Logger().Error("failed to group product models", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to group product models",
			},
		})
		return
	}

	var finishedProducts []models.ProductModel
	if err := db.Where("kind = ? AND active = ?", models.KindFinishedProduct, true).
		Order("code").Find(&finishedProducts).Error; err != nil {
		config.Logger().Error("failed to group product models", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to group product models",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"raw_materials":     rawMaterials,
			"finished_products": finishedProducts,
		},
	})
}

// CreateProductModel handles POST /api/v1/product-models
func CreateProductModel(c *gin.Context) {
	var req CreateProductModelRequest
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

	if !models.ValidKind(req.Kind) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Kind must be RAW_MATERIAL or FINISHED_PRODUCT",
			},
		})
		return
	}

	productModel := models.ProductModel{
		Code:        req.Code,
		Name:        req.Name,
		Kind:        req.Kind,
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		productModel.Active = *req.Active
	}

	db := config.GetDB()
	if err := db.Create(&productModel).Error; err != nil {
		if services.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "A product model with this code already exists",
				},
			})
			return
		}
		config.Logger().Error("failed to create product model", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create product model",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    productModel,
	})
}

// GetProductModel handles GET /api/v1/product-models/:id
func GetProductModel(c *gin.Context) {
	db := config.GetDB()

	var productModel models.ProductModel
	if err := db.First(&productModel, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Product model not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    productModel,
	})
}

// UpdateProductModel handles PUT /api/v1/product-models/:id
func UpdateProductModel(c *gin.Context) {
	db := config.GetDB()

	var productModel models.ProductModel
	if err := db.First(&productModel, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Product model not found",
			},
		})
		return
	}

	var req UpdateProductModelRequest
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

	if req.Kind != nil && !models.ValidKind(*req.Kind) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Kind must be RAW_MATERIAL or FINISHED_PRODUCT",
			},
		})
		return
	}

	if req.Code != nil {
		productModel.Code = *req.Code
	}
	if req.Name != nil {
		productModel.Name = *req.Name
	}
	if req.Kind != nil {
		productModel.Kind = *req.Kind
	}
	if req.Description != nil {
		productModel.Description = *req.Description
	}
	if req.Active != nil {
		productModel.Active = *req.Active
	}

	if err := db.Save(&productModel).Error; err != nil {
		if services.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "A product model with this code already exists",
				},
			})
			return
		}
		config.Logger().Error("failed to update product model", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update product model",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    productModel,
	})
}

// DeleteProductModel handles DELETE /api/v1/product-models/:id
// A model referenced by inventory cannot be deleted.
func DeleteProductModel(c *gin.Context) {
	db := config.GetDB()

	var productModel models.ProductModel
	if err := db.First(&productModel, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Product model not found",
			},
		})
		return
	}

	var materialRefs, productRefs int64
	err := db.Model(&models.RawMaterial{}).Where("model_id = ?", productModel.ID).Count(&materialRefs).Error
	if err == nil {
		err = db.Model(&models.Product{}).Where("model_id = ?", productModel.ID).Count(&productRefs).Error
	}
	if err != nil {
		config.Logger().Error("failed to count product model references", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete product model",
			},
		})
		return
	}
	if materialRefs > 0 || productRefs > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REFERENCE_ERROR",
				"message": "Product model is referenced by existing inventory and cannot be deleted",
			},
		})
		return
	}

	if err := db.Delete(&productModel).Error; err != nil {
		config.Logger().Error("failed to delete product model", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete product model",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": productModel.ID},
	})
}
