package ledger

import (
	"context"

	apperrors "github.com/homebooks/ledger/internal/shared/errors"
)

// transactionCommitter runs a unit of ledger writes inside one database
// transaction
type transactionCommitter struct {
	repo Repository
}

func newTransactionCommitter(repo Repository) *transactionCommitter {
	return &transactionCommitter{repo: repo}
}

// commit calls fn with a transactional context and commits if fn succeeds.
// Any failure rolls the whole unit back; it is never retried.
func (c *transactionCommitter) commit(ctx context.Context, fn func(txCtx context.Context) error) error {
	txCtx, err := c.repo.BeginTx(ctx)
	if err != nil {
		return apperrors.StorageFailure("failed to begin transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			// the unit already failed, a rollback error adds nothing
			_ = c.repo.RollbackTx(txCtx)
		}
	}()

	if err := fn(txCtx); err != nil {
		return apperrors.AsStorage(err, "ledger write failed")
	}

	if err := c.repo.CommitTx(txCtx); err != nil {
		return apperrors.StorageFailure("failed to commit transaction", err)
	}

	committed = true
	return nil
}
