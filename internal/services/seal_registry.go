package services

import (
	"context"
	"fmt"
	"time"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/repositories"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Reservation binds a seal code to the order that consumed it. Exactly one of
// LotCode and SingleOrderID is set.
type Reservation struct {
	SealedCode    string
	OrderCode     string
	LotCode       string
	SingleOrderID string
	At            time.Time
}

// sealTakenError reports a seal code already held by another order. It
// matches domain.ErrConflict.
type sealTakenError struct {
	code  string
	owner string
}

func (e *sealTakenError) Error() string {
	if e.owner == "" {
		return fmt.Sprintf("seal code %s was already used", e.code)
	}
	return fmt.Sprintf("seal code %s was already used on order %s", e.code, e.owner)
}

func (e *sealTakenError) Is(target error) bool {
	return target == domain.ErrConflict
}

// SealRegistry guarantees that each seal code is consumed at most once across
// lot orders and single orders
type SealRegistry struct {
	repo repositories.SealRepository
}

// NewSealRegistry creates a registry on top of the sealed_codes table
func NewSealRegistry(db *gorm.DB) *SealRegistry {
	return &SealRegistry{repo: repositories.NewSealRepository(db)}
}

// CheckAvailable fails with a Conflict naming the current owner when code is taken.
// Must be called with the transaction that will later reserve the code.
func (r *SealRegistry) CheckAvailable(ctx context.Context, tx *gorm.DB, code string) error {
	entry, err := r.repo.WithTx(tx).Get(ctx, code)
	switch {
	case err == nil:
		return &sealTakenError{code: code, owner: entry.OrderCode}
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	}
	return err
}

// TryReserve records the reservation inside tx. A concurrent reservation of the
// same code loses on the primary key and surfaces as a Conflict.
func (r *SealRegistry) TryReserve(ctx context.Context, tx *gorm.DB, res Reservation) error {
	entry := &models.SealedCode{
		SealedCode: res.SealedCode,
		OrderCode:  res.OrderCode,
		CreatedAt:  res.At,
	}
	if res.LotCode != "" {
		entry.LotCode = &res.LotCode
	}
	if res.SingleOrderID != "" {
		entry.SingleOrderID = &res.SingleOrderID
	}

	err := r.repo.WithTx(tx).Create(ctx, entry)
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return &sealTakenError{code: res.SealedCode}
	}
	return err
}

// ReleaseByLot frees every code consumed by orders of lotCode
func (r *SealRegistry) ReleaseByLot(ctx context.Context, tx *gorm.DB, lotCode string) (int64, error) {
	return r.repo.WithTx(tx).DeleteByLot(ctx, lotCode)
}

// Lookup returns the registry entry for code
func (r *SealRegistry) Lookup(ctx context.Context, code string) (*models.SealedCode, error) {
	entry, err := r.repo.Get(ctx, code)
	if err != nil {
		return nil, notFound(err, "seal code %s is not registered", code)
	}
	return entry, nil
}

// describeSealFailure enriches a lost reservation race with the winning order,
// read outside the rolled back transaction
func (r *SealRegistry) describeSealFailure(ctx context.Context, err error) error {
	var taken *sealTakenError
	if !errors.As(err, &taken) || taken.owner != "" {
		return err
	}
	if entry, lookupErr := r.repo.Get(ctx, taken.code); lookupErr == nil {
		return &sealTakenError{code: taken.code, owner: entry.OrderCode}
	}
	return err
}
