package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/config"
	"github.com/martagon-studio/workshop-api/models"
	"github.com/martagon-studio/workshop-api/services"
)

// CreateOrderRequest represents the request body for creating an order.
// Total is always derived; any client-supplied value is ignored. When
// order_number is omitted one is generated.
type CreateOrderRequest struct {
	OrderNumber       string     `json:"order_number"`
	CustomerID        uint       `json:"customer_id" binding:"required"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes"`
}

// UpdateOrderRequest represents the request body for updating an order
type UpdateOrderRequest struct {
	OrderNumber       *string    `json:"order_number"`
	CustomerID        *uint      `json:"customer_id"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	Status            *string    `json:"status"`
	Notes             *string    `json:"notes"`
}

// OrderSummary is the lightweight list projection: no line items, just the
// header with the customer name denormalized.
type OrderSummary struct {
	ID                uint            `json:"id"`
	OrderNumber       string          `json:"order_number"`
	CustomerID        uint            `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	OrderDate         time.Time       `json:"order_date"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery"`
	Status            string          `json:"status"`
	Total             decimal.Decimal `json:"total"`
}

func orderSummaryQuery(db *gorm.DB) *gorm.DB {
	return db.Table("orders").
		Select("orders.id, orders.order_number, orders.customer_id, customers.name AS customer_name, " +
			"orders.order_date, orders.estimated_delivery, orders.status, orders.total").
		Joins("JOIN customers ON customers.id = orders.customer_id")
}

// ListOrders handles GET /api/v1/orders
func ListOrders(c *gin.Context) {
	db := config.GetDB()

	q := orderSummaryQuery(db)
	q = applySearch(c, q, "orders.order_number", "customers.name")
	if v := c.Query("status"); v != "" {
		q = q.Where("orders.status = ?", v)
	}
	if v := c.Query("customer_id"); v != "" {
		q = q.Where("orders.customer_id = ?", v)
	}
	q = applyOrdering(c, q, map[string]bool{
		"order_date":         true,
		"estimated_delivery": true,
		"status":             true,
		"order_number":       true,
	}, "order_date DESC")

	var orders []OrderSummary
	if err := q.Scan(&orders).Error; err != nil {
		config.Logger().Error("failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}
	if orders == nil {
		orders = []OrderSummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// ListOrdersByStatus handles GET /api/v1/orders/by-status
// The status parameter is required; its absence is a client error, not an
// empty list.
func ListOrdersByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "The status query parameter is required",
			},
		})
		return
	}
	if !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown status: " + status,
			},
		})
		return
	}

	db := config.GetDB()
	var orders []OrderSummary
	if err := orderSummaryQuery(db).
		Where("orders.status = ?", status).
		Order("orders.order_date DESC").
		Scan(&orders).Error; err != nil {
		config.Logger().Error("failed to list orders by status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}
	if orders == nil {
		orders = []OrderSummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// CreateOrder handles POST /api/v1/orders
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
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

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	if !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown status: " + status,
			},
		})
		return
	}

	db := config.GetDB()
	var customer models.Customer
	if err := db.First(&customer, req.CustomerID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Customer not found",
			},
		})
		return
	}

	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = "ORD-" + strings.ToUpper(uuid.NewString()[:8])
	}

	order := models.Order{
		OrderNumber:       orderNumber,
		CustomerID:        req.CustomerID,
		OrderDate:         time.Now(),
		EstimatedDelivery: req.EstimatedDelivery,
		Status:            status,
		Notes:             req.Notes,
		Total:             decimal.Zero,
	}

	if err := db.Create(&order).Error; err != nil {
		if services.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "An order with this number already exists",
				},
			})
			return
		}
		config.Logger().Error("failed to create order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	// Load the customer relationship to return complete data
	if err := db.Preload("Customer").First(&order, order.ID).Error; err != nil {
		config.Logger().Error("failed to load order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrder handles GET /api/v1/orders/:id
// The detail projection: customer snapshot plus all lines with product
// name and code denormalized.
func GetOrder(c *gin.Context) {
	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Customer").
		Preload("Lines").Preload("Lines.Product").
		First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id
// Total and order date are derived/creation-time fields and cannot change.
func UpdateOrder(c *gin.Context) {
	db := config.GetDB()

	var order models.Order
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	var req UpdateOrderRequest
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

	if req.Status != nil && !models.ValidStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown status: " + *req.Status,
			},
		})
		return
	}
	if req.CustomerID != nil {
		if err := db.First(&models.Customer{}, *req.CustomerID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Customer not found",
				},
			})
			return
		}
		order.CustomerID = *req.CustomerID
	}

	if req.OrderNumber != nil {
		order.OrderNumber = *req.OrderNumber
	}
	if req.EstimatedDelivery != nil {
		order.EstimatedDelivery = req.EstimatedDelivery
	}
	if req.Status != nil {
		order.Status = *req.Status
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if err := db.Save(&order).Error; err != nil {
		if services.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "An order with this number already exists",
				},
			})
			return
		}
		config.Logger().Error("failed to update order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	if err := db.Preload("Customer").First(&order, order.ID).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    order,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id
// Lines are exclusively owned by the order and are removed with it.
func DeleteOrder(c *gin.Context) {
	db := config.GetDB()

	var order models.Order
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		config.Logger().Error("failed to delete order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": order.ID},
	})
}
