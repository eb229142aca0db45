package domain

import (
	"context"
	"errors"
)

// Service resolves tariff schedules for the cost engine.
type Service interface {
	GetByConcessionaire(ctx context.Context, concessionaire string) (*Schedule, error)
}

var (
	// ErrTariffNotFound means no schedule covers the concessionaire. Billing
	// fails closed on it; nothing is ever silently priced at zero.
	ErrTariffNotFound        = errors.New("tariff_not_found")
	ErrInvalidConcessionaire = errors.New("invalid_concessionaire")
)
