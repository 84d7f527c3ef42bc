package domain

import (
	"context"

	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
)

type Service interface {
	// Reconcile admits or rejects a single sale candidate. Business
	// rejections come back as an Outcome with a nil error; a non-nil
	// error means infrastructure failure and the record may be retried.
	Reconcile(ctx context.Context, candidate SaleCandidate) (Outcome, error)

	// ReconcileBatch processes candidates independently. One bad record
	// never aborts the batch.
	ReconcileBatch(ctx context.Context, candidates []SaleCandidate) Summary

	// ResolvePreview shows which in-stock items a candidate would match.
	// Diagnostic only; it never commits anything.
	ResolvePreview(ctx context.Context, candidate SaleCandidate) ([]inventorydomain.InventoryItem, error)
}
