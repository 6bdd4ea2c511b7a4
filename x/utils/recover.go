package utils

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Recovery turns a panic raised by any handler below it into an ErrPanic
// result naming the message path. The transaction fails, the block goes
// on.
type Recovery struct{}

var _ custody.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (r Recovery) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (_ *custody.CheckResult, err error) {
	defer recoverTx(tx, &err)
	return next.Check(ctx, store, tx)
}

func (r Recovery) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (_ *custody.DeliverResult, err error) {
	defer recoverTx(tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recoverTx must be deferred directly for recover to see the panic.
func recoverTx(tx custody.Tx, err *error) {
	if p := recover(); p != nil {
		*err = errors.Wrapf(errors.ErrPanic, "%s: %v", custody.GetPath(tx), p)
	}
}
