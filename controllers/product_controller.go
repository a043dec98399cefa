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

// CreateProductRequest represents the request body for creating a finished
// product. Code may be omitted when a model is set; it is then generated
// from the model code.
type CreateProductRequest struct {
	ModelID        *uint           `json:"model_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	StockLevel     int             `json:"stock_level"`
	ReorderLevel   int             `json:"reorder_level"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	BuildTimeHours int             `json:"build_time_hours"`
	Active         *bool           `json:"active"`
}

// UpdateProductRequest represents the request body for updating a product.
// The code is immutable once assigned and is not accepted here.
type UpdateProductRequest struct {
	ModelID        *uint            `json:"model_id"`
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	StockLevel     *int             `json:"stock_level"`
	ReorderLevel   *int             `json:"reorder_level"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	BuildTimeHours *int             `json:"build_time_hours"`
	Active         *bool            `json:"active"`
}

// ListProducts handles GET /api/v1/products
func ListProducts(c *gin.Context) {
	db := config.GetDB()

	q := db.Model(&models.Product{}).Preload("Model")
	q = applySearch(c, q, "code", "name")
	q = applyActiveFilter(c, q)
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
		"sale_price":  true,
		"created_at":  true,
	}, "code")

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		config.Logger().Error("failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// ListLowStockProducts handles GET /api/v1/products/low-stock
func ListLowStockProducts(c *gin.Context) {
	db := config.GetDB()

	var products []models.Product
	if err := db.Preload("Model").
		Where("stock_level <= reorder_level AND active = ?", true).
		Order("code").Find(&products).Error; err != nil {
		config.Logger().Error("failed to list low-stock products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// ListProductsByModel handles GET /api/v1/products/by-model
// With ?model_id= it returns that model's active products; without it, a
// mapping of model name to active products over all finished-product models.
func ListProductsByModel(c *gin.Context) {
	db := config.GetDB()

	if modelID := c.Query("model_id"); modelID != "" {
		var products []models.Product
		if err := db.Preload("Model").
			Where("model_id = ? AND active = ?", modelID, true).
			Order("code").Find(&products).Error; err != nil {
			config.Logger().Error("failed to list products by model", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to list products",
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    products,
		})
		return
	}

	var productModels []models.ProductModel
	if err := db.Where("kind = ? AND active = ?", models.KindFinishedProduct, true).
		Order("code").Find(&productModels).Error; err != nil {
		config.Logger().Error("failed to list models for grouping", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list products",
			},
		})
		return
	}

	grouped := make(map[string][]models.Product, len(productModels))
	for _, productModel := range productModels {
		var products []models.Product
		if err := db.Preload("Model").
			Where("model_id = ? AND active = ?", productModel.ID, true).
			Order("code").Find(&products).Error; err != nil {
			config.Logger().Error("failed to group products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to list products",
				},
			})
			return
		}
		grouped[productModel.Name] = products
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    grouped,
	})
}

// CreateProduct handles POST /api/v1/products
func CreateProduct(c *gin.Context) {
	var req CreateProductRequest
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

	db := config.GetDB()

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
		if productModel.Kind != models.KindFinishedProduct {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Model must be a finished-product model",
				},
			})
			return
		}
	}

	if req.Code == "" && productModel == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A model is required to generate a code automatically",
			},
		})
		return
	}

	product := models.Product{
		ModelID:        req.ModelID,
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		StockLevel:     req.StockLevel,
		ReorderLevel:   req.ReorderLevel,
		SalePrice:      req.SalePrice,
		BuildTimeHours: req.BuildTimeHours,
		Active:         true,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if product.Code == "" {
			scope, err := services.ProductScope(productModel)
			if err != nil {
				return err
			}
			code, err := services.NextCode(tx, scope, models.Product{}.TableName())
			if err != nil {
				return err
			}
			product.Code = code
		}
		return tx.Create(&product).Error
	})
	if err != nil {
		if services.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "A product with this code already exists",
				},
			})
			return
		}
		config.Logger().Error("failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create product",
			},
		})
		return
	}

	if err := db.Preload("Model").First(&product, product.ID).Error; err != nil {
		config.Logger().Error("failed to load product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load product details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	db := config.GetDB()

	var product models.Product
	if err := db.Preload("Model").First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// UpdateProduct handles PUT /api/v1/products/:id
// The generated code never changes, whatever the client sends.
func UpdateProduct(c *gin.Context) {
	db := config.GetDB()

	var product models.Product
	if err := db.First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	var req UpdateProductRequest
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

	if req.ModelID != nil {
		var productModel models.ProductModel
		if err := db.First(&productModel, *req.ModelID).Error; err != nil || productModel.Kind != models.KindFinishedProduct {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Model must be an existing finished-product model",
				},
			})
			return
		}
		product.ModelID = req.ModelID
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.StockLevel != nil {
		product.StockLevel = *req.StockLevel
	}
	if req.ReorderLevel != nil {
		product.ReorderLevel = *req.ReorderLevel
	}
	if req.SalePrice != nil {
		product.SalePrice = *req.SalePrice
	}
	if req.BuildTimeHours != nil {
		product.BuildTimeHours = *req.BuildTimeHours
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := db.Save(&product).Error; err != nil {
		config.Logger().Error("failed to update product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// DeleteProduct handles DELETE /api/v1/products/:id
// A product referenced by an order line cannot be deleted.
func DeleteProduct(c *gin.Context) {
	db := config.GetDB()

	var product models.Product
	if err := db.First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	var refs int64
	if err := db.Model(&models.OrderLine{}).Where("product_id = ?", product.ID).Count(&refs).Error; err != nil {
		config.Logger().Error("failed to count product references", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete product",
			},
		})
		return
	}
	if refs > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REFERENCE_ERROR",
				"message": "Product is referenced by existing order lines and cannot be deleted",
			},
		})
		return
	}

	if err := db.Delete(&product).Error; err != nil {
		config.Logger().Error("failed to delete product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": product.ID},
	})
}

// AdjustProductStock handles POST /api/v1/products/adjust-stock
// Same contract as the raw-material endpoint, with integer deltas.
func AdjustProductStock(c *gin.Context) {
	var items []services.ProductAdjustment
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
	updated, skipped, err := services.AdjustProductStock(db, items)
	if err != nil {
		config.Logger().Error("failed to adjust product stock", zap.Error(err))
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
	for _, p := range updated {
		results = append(results, gin.H{
			"id":          p.ID,
			"code":        p.Code,
			"stock_level": p.StockLevel,
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

// ExportProducts handles GET /api/v1/products/export
// Streams the finished-product inventory as an xlsx attachment.
func ExportProducts(c *gin.Context) {
	db := config.GetDB()

	f, err := services.ProductReport(db)
	if err != nil {
		config.Logger().Error("failed to build product report", zap.Error(err))
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

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		config.Logger().Error("failed to stream product report", zap.Error(err))
	}
}
