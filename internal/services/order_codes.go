package services

import (
	"context"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/repositories"

	"github.com/pkg/errors"
)

// codeLookupChunk bounds the IN clause size of order code lookups
const codeLookupChunk = 500

// orderCodeIndex checks and claims order codes against every existing lot
// order and single order
type orderCodeIndex struct {
	lotOrders repositories.LotOrderRepository
	singles   repositories.SingleOrderRepository
	claims    repositories.OrderCodeRepository
}

// claimForLot reserves codes for lotCode after ensureUnused has passed. A
// code claimed by a concurrent import yields a Conflict.
func (idx orderCodeIndex) claimForLot(ctx context.Context, lotCode string, codes []string) error {
	claims := make([]models.OrderCode, 0, len(codes))
	for _, c := range codes {
		claims = append(claims, models.OrderCode{OrderCode: c, LotCode: &lotCode})
	}
	return idx.claim(ctx, claims)
}

// claimForSingleOrder reserves code for the single order id
func (idx orderCodeIndex) claimForSingleOrder(ctx context.Context, id, code string) error {
	return idx.claim(ctx, []models.OrderCode{{OrderCode: code, SingleOrderID: &id}})
}

func (idx orderCodeIndex) claim(ctx context.Context, claims []models.OrderCode) error {
	if err := idx.claims.Claim(ctx, claims); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if len(claims) == 1 {
				return domain.Conflictf("order %s was claimed concurrently", claims[0].OrderCode)
			}
			return domain.Conflictf("one or more orders were claimed concurrently")
		}
		return err
	}
	return nil
}

// ensureUnused returns a Conflict naming the first code already imported anywhere.
// Repositories must be bound to the caller's transaction.
func (idx orderCodeIndex) ensureUnused(ctx context.Context, codes []string) error {
	for start := 0; start < len(codes); start += codeLookupChunk {
		end := start + codeLookupChunk
		if end > len(codes) {
			end = len(codes)
		}
		chunk := codes[start:end]

		existing, err := idx.lotOrders.FindByCodes(ctx, chunk)
		if err != nil {
			return errors.Wrap(err, "failed to check lot order codes")
		}
		if len(existing) > 0 {
			return domain.Conflictf("order %s already exists in lot %s", existing[0].OrderCode, existing[0].LotCode)
		}

		singles, err := idx.singles.FindByCodes(ctx, chunk)
		if err != nil {
			return errors.Wrap(err, "failed to check single order codes")
		}
		if len(singles) > 0 {
			return domain.Conflictf("order %s already exists as single order %s", singles[0].OrderCode, singles[0].ID)
		}
	}
	return nil
}

// firstDuplicate returns a code that appears more than once in codes
func firstDuplicate(codes []string) (string, bool) {
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			return c, true
		}
		seen[c] = struct{}{}
	}
	return "", false
}
