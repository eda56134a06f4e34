package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MockPaymentService is a stand-in for a real payment gateway. It accepts
// every charge except methods prefixed "declined", which simulates an
// insufficient-funds response from the gateway.
type MockPaymentService struct {
	gatewayName string
}

// NewMockPaymentService creates a mock payment gateway
func NewMockPaymentService(gatewayName string) *MockPaymentService {
	if gatewayName == "" {
		gatewayName = "mock"
	}
	log.Printf("Payment service: using mock gateway %q", gatewayName)
	return &MockPaymentService{gatewayName: gatewayName}
}

// Charge simulates a gateway charge
func (s *MockPaymentService) Charge(amount int, paymentMethod string) (*ChargeResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("charge amount must be positive, got %d", amount)
	}

	result := &ChargeResult{
		GatewayTransactionID: fmt.Sprintf("%s_%s", s.gatewayName, uuid.NewString()),
		Status:               "success",
		ProcessedAt:          time.Now(),
	}
	if strings.HasPrefix(paymentMethod, "declined") {
		result.Status = "declined"
	}

	log.Printf("Mock payment: %s charge of %d cents via %s", result.Status, amount, paymentMethod)
	return result, nil
}

// Refund simulates a gateway refund
func (s *MockPaymentService) Refund(gatewayTransactionID string, amount int) error {
	if gatewayTransactionID == "" {
		return fmt.Errorf("gateway transaction id is required")
	}
	log.Printf("Mock payment: refund of %d cents for %s", amount, gatewayTransactionID)
	return nil
}
