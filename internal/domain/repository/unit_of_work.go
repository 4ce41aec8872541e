package repository

import (
	"context"
)

// TxRepos bundles the repositories bound to one open transaction.
type TxRepos struct {
	Devices DeviceRepository
	Events  EventRepository
	Entries LogbookRepository
}

// UnitOfWork runs a function against transaction-scoped repositories.
// Everything inside fn commits or rolls back as one atomic unit, so no
// partially written flight is ever visible.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(repos TxRepos) error) error
}
