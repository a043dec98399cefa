package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/config"
	"github.com/martagon-studio/workshop-api/models"
	"github.com/martagon-studio/workshop-api/services"
)

// CreateRawMaterialRequest represents the request body for creating a raw
// material. Code may be omitted when family and model are set; it is then
// generated from the catalog scope.
type CreateRawMaterialRequest struct {
	FamilyID     *uint           `json:"family_id"`
	ModelID      *uint           `json:"model_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	StockLevel   decimal.Decimal `json:"stock_level"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Supplier     string          `json:"supplier"`
	Active       *bool           `json:"active"`
}

// UpdateRawMaterialRequest represents the request body for updating a raw
// material. The code is immutable once assigned and is not accepted here.
type UpdateRawMaterialRequest struct {
	FamilyID     *uint            `json:"family_id"`
	ModelID      *uint            `json:"model_id"`
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Unit         *string          `json:"unit"`
	StockLevel   *decimal.Decimal `json:"stock_level"`
	ReorderLevel *decimal.Decimal `json:"reorder_level"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	Supplier     *string          `json:"supplier"`
	Active       *bool            `json:"active"`
}

// ListRawMaterials handles GET /api/v1/raw-materials
func ListRawMaterials(c *gin.Context) {
	db := config.GetDB()

	q := db.Model(&models.RawMaterial{}).Preload("Family").Preload("Model")
	q = applySearch(c, q, "code", "name")
	q = applyActiveFilter(c, q)
	if v := c.Query("family_id"); v != "" {
		q = q.Where("family_id = ?", v)
	}
	if v := c.Query("model_id"); v != "" {
		q = q.Where("model_id = ?", v)
	}
	if c.Query("low_stock") == "true" {
		q = q.Where("stock_level <= reorder_level")
	}
	q = applyOrdering(c, q, map[string]bool{
		"code":        true,
		"name":        true,
		"stock_level": true,
		"created_at":  true,
	}, "code")

	var materials []models.RawMaterial
	if err := q.Find(&materials).Error; err != nil {
		config.Logger().Error("failed to list raw materials", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list raw materials",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    materials,
	})
}

// ListLowStockRawMaterials handles GET /api/v1/raw-materials/low-stock
func ListLowStockRawMaterials(c *gin.Context) {
	db := config.GetDB()

	var materials []models.RawMaterial
	if err := db.Preload("Family").Preload("Model").
		Where("stock_level <= reorder_level AND active = ?", true).
		Order("code").Find(&materials).Error; err != nil {
		config.Logger().Error("failed to list low-stock raw materials", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list raw materials",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    materials,
	})
}

// ListRawMaterialsByFamily handles GET /api/v1/raw-materials/by-family
// With ?family_id= it returns that family's active materials; without it,
// a mapping of family name to active materials over all active families.
func ListRawMaterialsByFamily(c *gin.Context) {
	db := config.GetDB()

	if familyID := c.Query("family_id"); familyID != "" {
		var materials []models.RawMaterial
		if err := db.Preload("Family").Preload("Model").
			Where("family_id = ? AND active = ?", familyID, true).
			Order("code").Find(&materials).Error; err != nil {
			config.Logger().Error("failed to list raw materials by family", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to list raw materials",
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    materials,
		})
		return
	}

	var families []models.Family
	if err := db.Where("active = ?", true).Order("code").Find(&families).Error; err != nil {
		config.Logger().Error("failed to list families for grouping", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list raw materials",
			},
		})
		return
	}

	grouped := make(map[string][]models.RawMaterial, len(families))
	for _, family := range families {
		var materials []models.RawMaterial
		if err := db.Preload("Family").Preload("Model").
			Where("family_id = ? AND active = ?", family.ID, true).
			Order("code").Find(&materials).Error; err != nil {
			config.Logger().Error("failed to group raw materials", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to list raw materials",
				},
			})
			return
		}
		grouped[family.Name] = materials
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    grouped,
	})
}

// ListRawMaterialsByModel handles GET /api/v1/raw-materials/by-model
// Same shape as by-family, partitioned over raw-material models.
func ListRawMaterialsByModel(c *gin.Context) {
	db := config.GetDB()

	if modelID := c.Query("model_id"); modelID != "" {
		var materials []models.RawMaterial
		if err := db.Preload("Family").Preload("Model").
			Where("model_id = ? AND active = ?", modelID, true).
			Order("code").Find(&materials).Error; err != nil {
			config.Logger().Error("failed to list raw materials by model", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to list raw materials",
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    materials,
		})
		return
	}

	var productModels []models.ProductModel
	if err := db.Where("kind = ? AND active = ?", models.KindRawMaterial, true).
		Order("code").Find(&productModels).Error; err != nil {
		config.Logger().Error("failed to list models for grouping", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list raw materials",
			},
		})
		return
	}

	grouped := make(map[string][]models.RawMaterial, len(productModels))
	for _, productModel := range productModels {
		var materials []models.RawMaterial
		if err := db.Preload("Family").Preload("Model").
			Where("model_id = ? AND active = ?", productModel.ID, true).
			Order("code").Find(&materials).Error; err != nil {
			config.Logger().Error("failed to group raw materials", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to list raw materials",
				},
			})
			return
		}
		grouped[productModel.Name] = materials
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    grouped,
	})
}

// CreateRawMaterial handles POST /api/v1/raw-materials
func CreateRawMaterial(c *gin.Context) {
	var req CreateRawMaterialRequest
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

	unit := req.Unit
	if unit == "" {
		unit = "KG"
	}
	if !models.ValidUnit(unit) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unit must be one of KG, M, M2, M3, L, UN",
			},
		})
		return
	}

	db := config.GetDB()

	var family *models.Family
	if req.FamilyID != nil {
		family = &models.Family{}
		if err := db.First(family, *req.FamilyID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Family not found",
				},
			})
			return
		}
	}

	var productModel *models.ProductModel
	if req.ModelID != nil {
		productModel = &models.ProductModel{}
		if err := db.First(productModel, *req.ModelID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Model not found",
				},
			})
			return
		}
		if productModel.Kind != models.KindRawMaterial {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Model must be a raw-material model",
				},
			})
			return
		}
	}

	if req.Code == "" && (family == nil || productModel == nil) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Family and model are required to generate a code automatically",
			},
		})
		return
	}

	material := models.RawMaterial{
		FamilyID:     req.FamilyID,
		ModelID:      req.ModelID,
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		Unit:         unit,
		StockLevel:   req.StockLevel,
		ReorderLevel: req.ReorderLevel,
		UnitCost:     req.UnitCost,
		Supplier:     req.Supplier,
		Active:       true,
	}
	if req.Active != nil {
		material.Active = *req.Active
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if material.Code == "" {
			scope, err := services.RawMaterialScope(family, productModel)
			if err != nil {
				return err
			}
			code, err := services.NextCode(tx, scope, models.RawMaterial{}.TableName())
			if err != nil {
				return err
			}
			material.Code = code
		}
		return tx.Create(&material).Error
	})
	if err != nil {
		if services.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "A raw material with this code already exists",
				},
			})
			return
		}
		config.Logger().Error("failed to create raw material", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create raw material",
			},
		})
		return
	}

	if err := db.Preload("Family").Preload("Model").First(&material, material.ID).Error; err != nil {
		config.Logger().Error("failed to load raw material", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load raw material details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    material,
	})
}

// GetRawMaterial handles GET /api/v1/raw-materials/:id
func GetRawMaterial(c *gin.Context) {
	db := config.GetDB()

	var material models.RawMaterial
	if err := db.Preload("Family").Preload("Model").First(&material, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Raw material not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    material,
	})
}

// UpdateRawMaterial handles PUT /api/v1/raw-materials/:id
// The generated code never changes, whatever the client sends.
func UpdateRawMaterial(c *gin.Context) {
	db := config.GetDB()

	var material models.RawMaterial
	if err := db.First(&material, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Raw material not found",
			},
		})
		return
	}

	var req UpdateRawMaterialRequest
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

	if req.Unit != nil && !models.ValidUnit(*req.Unit) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unit must be one of KG, M, M2, M3, L, UN",
			},
		})
		return
	}

	if req.FamilyID != nil {
		if err := db.First(&models.Family{}, *req.FamilyID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Family not found",
				},
			})
			return
		}
		material.FamilyID = req.FamilyID
	}
	if req.ModelID != nil {
		var productModel models.ProductModel
		if err := db.First(&productModel, *req.ModelID).Error; err != nil || productModel.Kind != models.KindRawMaterial {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Model must be an existing raw-material model",
				},
			})
			return
		}
		material.ModelID = req.ModelID
	}
	if req.Name != nil {
		material.Name = *req.Name
	}
	if req.Description != nil {
		material.Description = *req.Description
	}
	if req.Unit != nil {
		material.Unit = *req.Unit
	}
	if req.StockLevel != nil {
		material.StockLevel = *req.StockLevel
	}
	if req.ReorderLevel != nil {
		material.ReorderLevel = *req.ReorderLevel
	}
	if req.UnitCost != nil {
		material.UnitCost = *req.UnitCost
	}
	if req.Supplier != nil {
		material.Supplier = *req.Supplier
	}
	if req.Active != nil {
		material.Active = *req.Active
	}

	if err := db.Save(&material).Error; err != nil {
		config.Logger().Error("failed to update raw material", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update raw material",
			},
		})
		return
	}

	if err := db.Preload("Family").Preload("Model").First(&material, material.ID).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    material,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    material,
	})
}

// DeleteRawMaterial handles DELETE /api/v1/raw-materials/:id
func DeleteRawMaterial(c *gin.Context) {
	db := config.GetDB()

	var material models.RawMaterial
	if err := db.First(&material, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Raw material not found",
			},
		})
		return
	}

	if err := db.Delete(&material).Error; err != nil {
		config.Logger().Error("failed to delete raw material", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete raw material",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": material.ID},
	})
}

// AdjustRawMaterialStock handles POST /api/v1/raw-materials/adjust-stock
// Body is an ordered list of {id, quantity} deltas. Unknown ids are reported
// in skipped rather than failing the batch.
func AdjustRawMaterialStock(c *gin.Context) {
	var items []services.RawMaterialAdjustment
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Request body must be a list of {id, quantity} objects",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	updated, skipped, err := services.AdjustRawMaterialStock(db, items)
	if err != nil {
		config.Logger().Error("failed to adjust raw material stock", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to adjust stock",
			},
		})
		return
	}

	results := make([]gin.H, 0, len(updated))
	for _, m := range updated {
		results = append(results, gin.H{
			"id":          m.ID,
			"code":        m.Code,
			"stock_level": m.StockLevel,
		})
	}
	if skipped == nil {
		skipped = []uint{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"updated": results,
			"skipped": skipped,
			"count":   len(results),
		},
	})
}

// ExportRawMaterials handles GET /api/v1/raw-materials/export
// Streams the inventory as an xlsx attachment.
func ExportRawMaterials(c *gin.Context) {
	db := config.GetDB()

	f, err := services.RawMaterialReport(db)
	if err != nil {
		config.Logger().Error("failed to build raw material report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REPORT_ERROR",
				"message": "Failed to build report",
			},
		})
		return
	}
	defer func() { _ = f.Close() }()

	filename := fmt.Sprintf("raw-materials-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		config.Logger().Error("failed to stream raw material report", zap.Error(err))
	}
}
