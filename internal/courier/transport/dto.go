// Package transport holds the request and response shapes of the courier API.
package transport

import (
	"encoding/json"
	"strings"
)

// DispatchResponse is the result of a single dispatch. Simulated is true
// when the consignment id is a placeholder the courier never confirmed.
type DispatchResponse struct {
	OrderID       string `json:"orderId"`
	Outcome       string `json:"outcome"`
	ConsignmentID string `json:"consignmentId"`
	CourierStatus string `json:"courierStatus"`
	Simulated     bool   `json:"simulated"`
}

// BulkDispatchRequest lists the orders to hand to the courier.
type BulkDispatchRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500,dive,required"`
}

// BulkDispatchQuery selects background processing.
type BulkDispatchQuery struct {
	Async bool `form:"async"`
}

// BulkDispatchResponse counts the batch outcomes.
type BulkDispatchResponse struct {
	Dispatched int `json:"dispatched"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// BulkDispatchQueued is returned when the batch runs in the background.
type BulkDispatchQueued struct {
	Queued int `json:"queued"`
}

// SyncResponse is the outcome of one status sync.
type SyncResponse struct {
	OrderID       string `json:"orderId"`
	CourierStatus string `json:"courierStatus"`
	Status        string `json:"status"`
	Changed       bool   `json:"changed"`
}

// SyncAllResponse summarizes a full status sync.
type SyncAllResponse struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// NotificationDeliveryStatus is the webhook type that carries status moves.
const NotificationDeliveryStatus = "delivery_status"

// WebhookPayload is a courier notification.
type WebhookPayload struct {
	NotificationType string     `json:"notification_type"`
	ConsignmentID    FlexString `json:"consignment_id"`
	Invoice          string     `json:"invoice"`
	Status           string     `json:"status"`
	TrackingMessage  string     `json:"tracking_message"`
}

// WebhookResponse acknowledges a notification.
type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TestConnectionResponse carries the verified account balance.
type TestConnectionResponse struct {
	Balance float64 `json:"balance"`
}

// FlexString accepts a JSON string or number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*f = ""
		return nil
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
