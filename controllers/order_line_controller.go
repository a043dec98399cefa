package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/martagon-studio/workshop-api/config"
	"github.com/martagon-studio/workshop-api/models"
	"github.com/martagon-studio/workshop-api/services"
)

// CreateOrderLineRequest represents the request body for creating an order
// line. Subtotal is always derived. When unit_price is omitted the product's
// current sale price is used.
type CreateOrderLineRequest struct {
	OrderID   uint             `json:"order_id" binding:"required"`
	ProductID uint             `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// UpdateOrderLineRequest represents the request body for updating an order line
type UpdateOrderLineRequest struct {
	ProductID *uint            `json:"product_id"`
	Quantity  *int             `json:"quantity" binding:"omitempty,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// ListOrderLines handles GET /api/v1/order-lines
func ListOrderLines(c *gin.Context) {
	db := config.GetDB()

	q := db.Model(&models.OrderLine{}).Preload("Product")
	if v := c.Query("order_id"); v != "" {
		q = q.Where("order_id = ?", v)
	}

	var lines []models.OrderLine
	if err := q.Order("id").Find(&lines).Error; err != nil {
		config.Logger().Error("failed to list order lines", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list order lines",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    lines,
	})
}

// CreateOrderLine handles POST /api/v1/order-lines
// Persisting the line and refreshing the parent order total happen in one
// transaction inside the service.
func CreateOrderLine(c *gin.Context) {
	var req CreateOrderLineRequest
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

	var order models.Order
	if err := db.First(&order, req.OrderID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Order not found",
			},
		})
		return
	}

	var product models.Product
	if err := db.First(&product, req.ProductID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Product not found",
			},
		})
		return
	}

	unitPrice := product.SalePrice
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	}

	line := models.OrderLine{
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: unitPrice,
	}

	if err := services.SaveLine(db, &line); err != nil {
		config.Logger().Error("failed to create order line", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order line",
			},
		})
		return
	}

	if err := db.Preload("Product").First(&line, line.ID).Error; err != nil {
		config.Logger().Error("failed to load order line", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order line details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    line,
	})
}

// GetOrderLine handles GET /api/v1/order-lines/:id
func GetOrderLine(c *gin.Context) {
	db := config.GetDB()

	var line models.OrderLine
	if err := db.Preload("Product").First(&line, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order line not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    line,
	})
}

// UpdateOrderLine handles PUT /api/v1/order-lines/:id
// Every mutation re-derives the subtotal and the parent order total.
func UpdateOrderLine(c *gin.Context) {
	db := config.GetDB()

	var line models.OrderLine
	if err := db.First(&line, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order line not found",
			},
		})
		return
	}

	var req UpdateOrderLineRequest
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

	if req.ProductID != nil {
		if err := db.First(&models.Product{}, *req.ProductID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Product not found",
				},
			})
			return
		}
		line.ProductID = *req.ProductID
	}
	if req.Quantity != nil {
		line.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		line.UnitPrice = *req.UnitPrice
	}

	if err := services.SaveLine(db, &line); err != nil {
		config.Logger().Error("failed to update order line", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order line",
			},
		})
		return
	}

	if err := db.Preload("Product").First(&line, line.ID).Error; err != nil {
		config.Logger().Error("failed to load order line", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order line details",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    line,
	})
}

// DeleteOrderLine handles DELETE /api/v1/order-lines/:id
// Removing a line re-derives the parent order total like any other write.
func DeleteOrderLine(c *gin.Context) {
	db := config.GetDB()

	var line models.OrderLine
	if err := db.First(&line, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order line not found",
			},
		})
		return
	}

	if err := services.DeleteLine(db, &line); err != nil {
		config.Logger().Error("failed to delete order line", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order line",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": line.ID},
	})
}
