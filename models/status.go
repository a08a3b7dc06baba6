package models

import "fmt"

// MealStatus is the approval axis of a meal request.
type MealStatus string

const (
	MealRequested MealStatus = "requested"
	MealApproved  MealStatus = "approved"
	MealRejected  MealStatus = "rejected"
)

// ParseMealStatus rejects any value outside the enumeration.
func ParseMealStatus(s string) (MealStatus, error) {
	switch MealStatus(s) {
	case MealRequested, MealApproved, MealRejected:
		return MealStatus(s), nil
	}
	return "", fmt.Errorf("invalid meal status %q, must be one of: requested, approved, rejected", s)
}

// PaymentStatus is the payment axis of a meal request.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentApproved PaymentStatus = "payment-approved"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPaid, PaymentApproved:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("invalid payment status %q, must be one of: pending, paid, payment-approved", s)
}

// Category tags a request for display; it has no computational effect.
const (
	CategoryIndividual = "INDIVIDUAL"
	CategoryCommunity  = "COMMUNITY"
)

func ValidCategory(s string) bool {
	return s == CategoryIndividual || s == CategoryCommunity
}
