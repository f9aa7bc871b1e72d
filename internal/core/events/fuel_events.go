package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionPosted      = "transaction.posted"
	EventTypeInventoryLow           = "inventory.low"
	EventTypeInventoryRestored      = "inventory.restored"
	EventTypeUserCreated            = "user.created"
	EventTypePasswordResetRequested = "password_reset.requested"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type TransactionPostedEvent struct {
	BaseEvent
	TransactionID int64   `json:"transaction_id"`
	StationID     int64   `json:"station_id"`
	FuelType      string  `json:"fuel_type"`
	Quantity      float64 `json:"quantity"`
	TotalPrice    float64 `json:"total_price"`
	PaymentMethod string  `json:"payment_method"`
}

func NewTransactionPostedEvent(transactionID, stationID int64, fuelType string, quantity, totalPrice float64, paymentMethod string) *TransactionPostedEvent {
	return &TransactionPostedEvent{
		BaseEvent: newBase(EventTypeTransactionPosted, map[string]interface{}{
			"transaction_id": transactionID,
			"station_id":     stationID,
			"fuel_type":      fuelType,
			"quantity":       quantity,
			"total_price":    totalPrice,
			"payment_method": paymentMethod,
		}),
		TransactionID: transactionID,
		StationID:     stationID,
		FuelType:      fuelType,
		Quantity:      quantity,
		TotalPrice:    totalPrice,
		PaymentMethod: paymentMethod,
	}
}

// InventoryAlertEvent covers both inventory.low and inventory.restored.
type InventoryAlertEvent struct {
	BaseEvent
	AlertID      int64   `json:"alert_id"`
	InventoryID  int64   `json:"inventory_id"`
	StationID    int64   `json:"station_id"`
	FuelType     string  `json:"fuel_type"`
	Quantity     float64 `json:"quantity"`
	MinThreshold float64 `json:"min_threshold"`
	Description  string  `json:"description"`
}

func NewInventoryAlertEvent(eventType string, alertID, inventoryID, stationID int64, fuelType string, quantity, minThreshold float64, description string) *InventoryAlertEvent {
	return &InventoryAlertEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"alert_id":      alertID,
			"inventory_id":  inventoryID,
			"station_id":    stationID,
			"fuel_type":     fuelType,
			"quantity":      quantity,
			"min_threshold": minThreshold,
		}),
		AlertID:      alertID,
		InventoryID:  inventoryID,
		StationID:    stationID,
		FuelType:     fuelType,
		Quantity:     quantity,
		MinThreshold: minThreshold,
		Description:  description,
	}
}

type UserCreatedEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func NewUserCreatedEvent(userID int64, username, fullName, email, role string) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseEvent: newBase(EventTypeUserCreated, map[string]interface{}{
			"user_id":  userID,
			"username": username,
			"role":     role,
		}),
		UserID:   userID,
		Username: username,
		FullName: fullName,
		Email:    email,
		Role:     role,
	}
}

// PasswordResetRequestedEvent carries the raw token; it is only ever handed to the mail transport.
type PasswordResetRequestedEvent struct {
	BaseEvent
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewPasswordResetRequestedEvent(userID int64, email, fullName, token string, expiresAt time.Time) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseEvent: newBase(EventTypePasswordResetRequested, map[string]interface{}{
			"user_id":    userID,
			"expires_at": expiresAt,
		}),
		UserID:    userID,
		Email:     email,
		FullName:  fullName,
		Token:     token,
		ExpiresAt: expiresAt,
	}
}
