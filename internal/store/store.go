// Package store provides persistence for contract snapshots.
//
// It stands in for the trade-execution collaborator: the pricing engine never
// touches storage, callers hand finished contracts here.
package store

import (
	"context"
	"time"

	"option-pricer/internal/models"
)

// ContractStore defines the interface for contract persistence.
type ContractStore interface {
	SaveContract(ctx context.Context, contract *models.Contract) error
	GetContract(ctx context.Context, id string) (*models.Contract, error)
	GetContracts(ctx context.Context, filter ContractFilter) ([]models.Contract, error)
	DeleteExpired(ctx context.Context, asOf time.Time) (int64, error)

	Close() error
}

// ContractFilter represents filters for querying contracts.
type ContractFilter struct {
	Symbol string
	Side   models.ContractSide
	Type   models.OptionType
	Since  time.Time
	Limit  int
}
