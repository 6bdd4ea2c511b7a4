package system

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
)

const transferCost int64 = 10

// RegisterRoutes registers the lamport transfer handler.
func RegisterRoutes(r custody.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(&TransferMsg{}, TransferHandler{auth: auth, ctrl: ctrl})
}

// TransferHandler moves lamports out of an account held by the signer.
type TransferHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ custody.Handler = TransferHandler{}

func (h TransferHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	have, err := h.ctrl.Balance(db, msg.From)
	if err != nil {
		return nil, err
	}
	if have < msg.Lamports {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "have %d lamports", have)
	}
	return &custody.CheckResult{GasAllocated: transferCost}, nil
}

func (h TransferHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Transfer(ctx, db, msg.From, msg.To, msg.Lamports, x.SignedBy(h.auth)); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h TransferHandler) validate(ctx custody.Context, tx custody.Tx) (*TransferMsg, error) {
	var msg TransferMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.From) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "sender signature missing")
	}
	return &msg, nil
}
