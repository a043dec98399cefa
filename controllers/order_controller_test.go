package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/models"
)

func seedCustomer(t *testing.T, db *gorm.DB, name, taxID string) models.Customer {
	t.Helper()

	customer := models.Customer{Name: name, TaxID: taxID, Active: true}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("Failed to seed customer: %v", err)
	}
	return customer
}

func TestCreateOrder(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db, "Muebles Rio", "B12345678")

	router := newTestRouter()
	router.POST("/orders", CreateOrder)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Successfully create order with explicit number",
			requestBody: map[string]interface{}{
				"order_number": "ORD-2026-001",
				"customer_id":  customer.ID,
				"notes":        "Deliver before the fair",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "ORD-2026-001", data["order_number"])
				assert.Equal(t, "pending", data["status"])
				assert.Equal(t, "0", data["total"])
				assert.Equal(t, "Muebles Rio", data["customer"].(map[string]interface{})["name"])
			},
		},
		{
			name: "Generates an order number when omitted",
			requestBody: map[string]interface{}{
				"customer_id": customer.ID,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				number := data["order_number"].(string)
				assert.True(t, strings.HasPrefix(number, "ORD-"))
				assert.Len(t, number, 12)
			},
		},
		{
			name: "Accepts an explicit valid status",
			requestBody: map[string]interface{}{
				"customer_id": customer.ID,
				"status":      "in_production",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "in_production", data["status"])
			},
		},
		{
			name: "Fail with unknown status",
			requestBody: map[string]interface{}{
				"customer_id": customer.ID,
				"status":      "shipped",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with missing customer",
			requestBody: map[string]interface{}{
				"order_number": "ORD-2026-002",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with unknown customer",
			requestBody: map[string]interface{}{
				"customer_id": 9999,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with duplicate order number",
			requestBody: map[string]interface{}{
				"order_number": "ORD-2026-001",
				"customer_id":  customer.ID,
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/orders", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(t, w))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, parseResponse(t, w))
			}
		})
	}
}

func TestListOrders(t *testing.T) {
	db := setupTestDB(t)
	rio := seedCustomer(t, db, "Muebles Rio", "B12345678")
	atelier := seedCustomer(t, db, "Atelier Norte", "B87654321")

	db.Create(&models.Order{
		OrderNumber: "ORD-OLD", CustomerID: rio.ID,
		OrderDate: time.Now().Add(-48 * time.Hour), Status: models.StatusDelivered,
		Total: decimal.NewFromInt(500),
	})
	db.Create(&models.Order{
		OrderNumber: "ORD-NEW", CustomerID: atelier.ID,
		OrderDate: time.Now(), Status: models.StatusPending,
	})

	router := newTestRouter()
	router.GET("/orders", ListOrders)
	router.GET("/orders/by-status", ListOrdersByStatus)

	t.Run("Lists summaries newest first with customer name", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].([]interface{})
		assert.Len(t, data, 2)
		first := data[0].(map[string]interface{})
		assert.Equal(t, "ORD-NEW", first["order_number"])
		assert.Equal(t, "Atelier Norte", first["customer_name"])
		// summary projection carries no line items
		_, hasLines := first["lines"]
		assert.False(t, hasLines)
	})

	t.Run("Filters by customer", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, fmt.Sprintf("/orders?customer_id=%d", rio.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].([]interface{})
		assert.Len(t, data, 1)
		assert.Equal(t, "ORD-OLD", data[0].(map[string]interface{})["order_number"])
	})

	t.Run("Filters by status inline", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders?status=delivered", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].([]interface{})
		assert.Len(t, data, 1)
	})

	t.Run("Searches by customer name", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders?search=atelier", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].([]interface{})
		assert.Len(t, data, 1)
	})

	t.Run("by-status requires the parameter", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders/by-status", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("by-status rejects unknown statuses", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders/by-status?status=shipped", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("by-status returns matching summaries", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders/by-status?status=pending", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].([]interface{})
		assert.Len(t, data, 1)
		assert.Equal(t, "ORD-NEW", data[0].(map[string]interface{})["order_number"])
	})

	t.Run("by-status returns an empty list when nothing matches", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders/by-status?status=cancelled", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].([]interface{})
		assert.Empty(t, data)
	})
}

func TestGetOrder(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db, "Muebles Rio", "B12345678")

	model := models.ProductModel{Code: "MARTINA", Name: "Martina", Kind: models.KindFinishedProduct, Active: true}
	db.Create(&model)
	product := models.Product{ModelID: &model.ID, Code: "MARTINA-001", Name: "Martina table", SalePrice: decimal.NewFromInt(350), Active: true}
	db.Create(&product)

	order := models.Order{
		OrderNumber: "ORD-2026-001", CustomerID: customer.ID,
		OrderDate: time.Now(), Status: models.StatusPending,
		Total: decimal.NewFromInt(700),
	}
	db.Create(&order)
	db.Create(&models.OrderLine{
		OrderID: order.ID, ProductID: product.ID, Quantity: 2,
		UnitPrice: decimal.NewFromInt(350), Subtotal: decimal.NewFromInt(700),
	})

	router := newTestRouter()
	router.GET("/orders/:id", GetOrder)

	t.Run("Detail carries lines with denormalized product info", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "ORD-2026-001", data["order_number"])
		assert.Equal(t, "700", data["total"])

		lines := data["lines"].([]interface{})
		assert.Len(t, lines, 1)
		line := lines[0].(map[string]interface{})
		assert.Equal(t, "Martina table", line["product_name"])
		assert.Equal(t, "MARTINA-001", line["product_code"])
		assert.Equal(t, "700", line["subtotal"])
	})

	t.Run("Returns 404 for unknown ID", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateOrder(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db, "Muebles Rio", "B12345678")

	order := models.Order{
		OrderNumber: "ORD-2026-001", CustomerID: customer.ID,
		OrderDate: time.Now(), Status: models.StatusPending,
		Total: decimal.NewFromInt(100),
	}
	db.Create(&order)

	router := newTestRouter()
	router.PUT("/orders/:id", UpdateOrder)

	t.Run("Advances the status", func(t *testing.T) {
		w := performRequest(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
			"status": "in_production",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "in_production", data["status"])
	})

	t.Run("Rejects an unknown status", func(t *testing.T) {
		w := performRequest(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
			"status": "shipped",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("Total cannot be written through the update", func(t *testing.T) {
		w := performRequest(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
			"total": "9999",
			"notes": "Checked",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "100", data["total"])
		assert.Equal(t, "Checked", data["notes"])
	})

	t.Run("Rejects an unknown customer", func(t *testing.T) {
		w := performRequest(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
			"customer_id": 9999,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})
}

func TestDeleteOrder(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db, "Muebles Rio", "B12345678")

	model := models.ProductModel{Code: "MARTINA", Name: "Martina", Kind: models.KindFinishedProduct, Active: true}
	db.Create(&model)
	product := models.Product{ModelID: &model.ID, Code: "MARTINA-001", Name: "Martina table", Active: true}
	db.Create(&product)

	order := models.Order{
		OrderNumber: "ORD-2026-001", CustomerID: customer.ID,
		OrderDate: time.Now(), Status: models.StatusPending,
	}
	db.Create(&order)
	db.Create(&models.OrderLine{
		OrderID: order.ID, ProductID: product.ID, Quantity: 1,
		UnitPrice: decimal.NewFromInt(350), Subtotal: decimal.NewFromInt(350),
	})

	router := newTestRouter()
	router.DELETE("/orders/:id", DeleteOrder)

	t.Run("Removes the order and its lines", func(t *testing.T) {
		w := performRequest(router, http.MethodDelete, fmt.Sprintf("/orders/%d", order.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var orders, lines int64
		db.Model(&models.Order{}).Count(&orders)
		db.Model(&models.OrderLine{}).Count(&lines)
		assert.Equal(t, int64(0), orders)
		assert.Equal(t, int64(0), lines)
	})

	t.Run("Returns 404 for unknown ID", func(t *testing.T) {
		w := performRequest(router, http.MethodDelete, "/orders/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
