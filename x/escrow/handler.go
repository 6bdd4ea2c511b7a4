package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/system"
	"github.com/iov-one/custody/x/token"
	"github.com/tendermint/tendermint/libs/common"
)

// Tag keys set on every delivered escrow transaction.
const (
	TagEscrow = "escrow.record"
	TagMaker  = "escrow.maker"
	TagMint   = "escrow.mint"
)

const (
	depositCost int64 = 300
	settleCost  int64 = 100
	refundCost  int64 = 100
)

// RegisterRoutes registers the deposit, settle and refund handlers.
func RegisterRoutes(r custody.Registry, auth x.Authenticator, tokens token.Controller, sys system.Controller) {
	ctrl := newController(tokens, sys)
	r.Handle(&DepositMsg{}, DepositHandler{auth: auth, ctrl: ctrl})
	r.Handle(&SettleMsg{}, SettleHandler{auth: auth, ctrl: ctrl})
	r.Handle(&RefundMsg{}, RefundHandler{auth: auth, ctrl: ctrl})
}

// RegisterQuery registers the escrow records as "/escrows".
func RegisterQuery(qr custody.QueryRouter) {
	NewBucket().Register("escrows", qr)
}

// DepositHandler creates an escrow and funds its vault.
type DepositHandler struct {
	auth x.Authenticator
	ctrl controller
}

var _ custody.Handler = DepositHandler{}

// Check verifies the signature and every derived address.
func (h DepositHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, _, err := h.ctrl.checkDeposit(db, msg); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: depositCost}, nil
}

// Deliver allocates the record and the vault, then moves the tokens
// from the maker to the vault. The record address is returned as data.
func (h DepositHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.deposit(ctx, db, msg, x.SignedBy(h.auth)); err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("escrow deposited",
		"escrow", msg.Escrow.String(),
		"maker", msg.Maker.String(),
		"amount", msg.Amount)
	return &custody.DeliverResult{Data: msg.Escrow, Tags: tags(msg.Escrow, msg.Maker, msg.Mint)}, nil
}

func (h DepositHandler) validate(ctx custody.Context, tx custody.Tx) (*DepositMsg, error) {
	var msg DepositMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Maker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
	}
	return &msg, nil
}

// SettleHandler pays the vault balance to the taker.
type SettleHandler struct {
	auth x.Authenticator
	ctrl controller
}

var _ custody.Handler = SettleHandler{}

// Check verifies the signature, the record and the vault.
func (h SettleHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: settleCost}, nil
}

// Deliver creates the taker token account if needed, pays out the vault
// and closes the escrow.
func (h SettleHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, cl, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	auth := x.SignedBy(h.auth)
	if err := h.ctrl.ensureTokenAccount(ctx, db, msg.TakerTokens, msg.Taker, msg.Mint, auth); err != nil {
		return nil, err
	}
	amount, err := h.ctrl.closeAndPay(ctx, db, cl, msg.TakerTokens)
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("escrow settled",
		"escrow", msg.Escrow.String(),
		"maker", msg.Maker.String(),
		"payee", msg.TakerTokens.String(),
		"amount", amount)
	return &custody.DeliverResult{Data: msg.Escrow, Tags: tags(msg.Escrow, msg.Maker, msg.Mint)}, nil
}

func (h SettleHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*SettleMsg, *claim, error) {
	var msg SettleMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Taker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "taker signature missing")
	}
	cl, err := h.ctrl.loadClaim(db, msg.Maker, msg.Mint, msg.Seed, msg.Escrow, msg.Vault)
	if err != nil {
		return nil, nil, err
	}
	if err := h.ctrl.expectAssociated(db, "taker tokens", msg.TakerTokens, msg.Taker, msg.Mint); err != nil {
		return nil, nil, err
	}
	return &msg, cl, nil
}

// RefundHandler returns the vault balance to the maker.
type RefundHandler struct {
	auth x.Authenticator
	ctrl controller
}

var _ custody.Handler = RefundHandler{}

// Check verifies the signature, the record and the vault.
func (h RefundHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: refundCost}, nil
}

// Deliver recreates the maker token account if needed, pays out the
// vault and closes the escrow.
func (h RefundHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, cl, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	auth := x.SignedBy(h.auth)
	if err := h.ctrl.ensureTokenAccount(ctx, db, msg.MakerTokens, msg.Maker, msg.Mint, auth); err != nil {
		return nil, err
	}
	amount, err := h.ctrl.closeAndPay(ctx, db, cl, msg.MakerTokens)
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("escrow refunded",
		"escrow", msg.Escrow.String(),
		"maker", msg.Maker.String(),
		"payee", msg.MakerTokens.String(),
		"amount", amount)
	return &custody.DeliverResult{Data: msg.Escrow, Tags: tags(msg.Escrow, msg.Maker, msg.Mint)}, nil
}

func (h RefundHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*RefundMsg, *claim, error) {
	var msg RefundMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Maker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
	}
	cl, err := h.ctrl.loadClaim(db, msg.Maker, msg.Mint, msg.Seed, msg.Escrow, msg.Vault)
	if err != nil {
		return nil, nil, err
	}
	if err := h.ctrl.expectAssociated(db, "maker tokens", msg.MakerTokens, msg.Maker, msg.Mint); err != nil {
		return nil, nil, err
	}
	return &msg, cl, nil
}

// tags index every escrow operation by record, maker and mint.
func tags(escrow, maker, mint custody.Address) []common.KVPair {
	return []common.KVPair{
		custody.AddressTag(TagEscrow, escrow),
		custody.AddressTag(TagMaker, maker),
		custody.AddressTag(TagMint, mint),
	}
}
