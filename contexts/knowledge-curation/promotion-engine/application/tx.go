package application

import (
	"context"
	"errors"

	domainerrors "veritas/contexts/knowledge-curation/promotion-engine/domain/errors"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
)

// RunAtomic executes fn inside one store transaction, retrying exactly once
// when the store reports a transient serialization conflict. A second
// transient failure surfaces as the opaque internal error.
func RunAtomic(ctx context.Context, tx ports.TransactionManager, fn func(ctx context.Context) error) error {
	err := tx.WithinTransaction(ctx, fn)
	if !errors.Is(err, domainerrors.ErrTransientConflict) {
		return err
	}
	if err := tx.WithinTransaction(ctx, fn); err != nil {
		if errors.Is(err, domainerrors.ErrTransientConflict) {
			return domainerrors.ErrInternal
		}
		return err
	}
	return nil
}
