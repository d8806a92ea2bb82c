// Package transport holds the request and response shapes of the orders API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// OrderItemRequest is one requested order line.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=1000"`
}

// CreateOrderRequest places an order. Prices come from the product catalog.
type CreateOrderRequest struct {
	CustomerName    string             `json:"customerName" validate:"required,min=1,max=200"`
	CustomerPhone   string             `json:"customerPhone" validate:"required,bdphone"`
	CustomerAddress string             `json:"customerAddress" validate:"required,min=3,max=500"`
	DeliveryRegion  string             `json:"deliveryRegion" validate:"required,oneof=inside outside"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
	Discount        float64            `json:"discount" validate:"min=0"`
	AdvanceAmount   float64            `json:"advanceAmount" validate:"min=0"`
	Notes           string             `json:"notes" validate:"max=1000"`
}

// ListOrdersRequest filters the order list.
type ListOrdersRequest struct {
	Search string `form:"search" validate:"max=100"`
	Status string `form:"status" validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled returned on_hold"`
	Region string `form:"region" validate:"omitempty,oneof=inside outside"`
}

// UpdateStatusRequest is a manual status override.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled returned on_hold"`
}

// BulkUpdateStatusRequest overrides the status of many orders.
type BulkUpdateStatusRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=500,dive,required"`
	Status string   `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled returned on_hold"`
}

// BulkUpdateStatusResponse reports how many orders changed.
type BulkUpdateStatusResponse struct {
	Updated int `json:"updated"`
}

// OrderItemResponse is a stored order line.
type OrderItemResponse struct {
	ProductID uuid.UUID `json:"productId"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	LineTotal float64   `json:"lineTotal"`
}

// OrderResponse is a stored order.
type OrderResponse struct {
	ID                string              `json:"id"`
	ModeratorID       *uuid.UUID          `json:"moderatorId"`
	CustomerName      string              `json:"customerName"`
	CustomerPhone     string              `json:"customerPhone"`
	CustomerAddress   string              `json:"customerAddress"`
	DeliveryRegion    string              `json:"deliveryRegion"`
	Items             []OrderItemResponse `json:"items"`
	TotalAmount       float64             `json:"totalAmount"`
	DeliveryCharge    float64             `json:"deliveryCharge"`
	Discount          float64             `json:"discount"`
	AdvanceAmount     float64             `json:"advanceAmount"`
	GrandTotal        float64             `json:"grandTotal"`
	Status            string              `json:"status"`
	Notes             string              `json:"notes"`
	SteadfastID       *string             `json:"steadfastId"`
	CourierStatus     *string             `json:"courierStatus"`
	DispatchSimulated bool                `json:"dispatchSimulated"`
	SuccessRate       string              `json:"successRate"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// OrderListResponse wraps a list of orders.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Total int             `json:"total"`
}

// Lookup outcomes for a phone number.
const (
	LookupNone          = "none"
	LookupFoundCustomer = "found-customer"
	LookupFoundLead     = "found-lead"
)

// LookupRequest asks for a customer's history by phone.
type LookupRequest struct {
	Phone string `form:"phone" validate:"required,min=10,max=20"`
}

// LookupResponse summarizes what is known about a phone number.
type LookupResponse struct {
	Status      string  `json:"status"`
	Phone       string  `json:"phone"`
	OrderCount  int     `json:"orderCount"`
	LTV         float64 `json:"ltv"`
	IsVIP       bool    `json:"isVip"`
	SuccessRate string  `json:"successRate"`
	Name        string  `json:"name,omitempty"`
	Address     string  `json:"address,omitempty"`
}
