package application

import (
	"context"
	"errors"

	domainerrors "veritas/contexts/challenge-resolution/inquiry-service/domain/errors"
	"veritas/contexts/challenge-resolution/inquiry-service/ports"
)

// RunAtomic executes fn inside one store transaction, retrying exactly once
// on a transient serialization conflict before surfacing the opaque internal
// error.
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
