package token

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/pda"
	"github.com/iov-one/custody/x"
)

const (
	transferCost         int64 = 10
	createAssociatedCost int64 = 50
)

// RegisterRoutes registers the token handlers.
func RegisterRoutes(r custody.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(&TransferMsg{}, TransferHandler{auth: auth, ctrl: ctrl})
	r.Handle(&CreateAssociatedMsg{}, CreateAssociatedHandler{auth: auth, ctrl: ctrl})
}

// RegisterQuery registers the token accounts as "/tokens" and the mints
// as "/mints".
func RegisterQuery(qr custody.QueryRouter) {
	NewAccountBucket().Register("tokens", qr)
	NewMintBucket().Register("mints", qr)
}

// TransferHandler moves tokens on behalf of the signing owner.
type TransferHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ custody.Handler = TransferHandler{}

func (h TransferHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: transferCost}, nil
}

func (h TransferHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	err = h.ctrl.TransferChecked(ctx, db, msg.Source, msg.Mint, msg.Destination, msg.Amount, msg.Decimals, x.SignedBy(h.auth))
	if err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h TransferHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*TransferMsg, error) {
	var msg TransferMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	src, err := h.ctrl.Account(db, msg.Source)
	if err != nil {
		return nil, errors.Wrap(err, "source")
	}
	if !src.Owner.Equals(msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source not owned by the signer")
	}
	return &msg, nil
}

// CreateAssociatedHandler creates an associated token account paid by
// the signer.
type CreateAssociatedHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ custody.Handler = CreateAssociatedHandler{}

func (h CreateAssociatedHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: createAssociatedCost}, nil
}

func (h CreateAssociatedHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	addr, err := h.ctrl.CreateAssociatedAccount(ctx, db, msg.Payer, msg.Owner, msg.Mint, x.SignedBy(h.auth))
	if err != nil {
		return nil, err
	}
	return &custody.DeliverResult{Data: addr}, nil
}

func (h CreateAssociatedHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CreateAssociatedMsg, error) {
	var msg CreateAssociatedMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	want, err := h.ctrl.AssociatedAddress(db, msg.Owner, msg.Mint)
	if err != nil {
		return nil, err
	}
	if !want.Equals(msg.Account) {
		return nil, errors.Wrapf(pda.ErrSeeds, "associated account is %s", want)
	}
	return &msg, nil
}
