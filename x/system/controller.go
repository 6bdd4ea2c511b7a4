package system

import (
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x"
)

// ProgramID owns plain wallets that hold lamports only.
var ProgramID = custody.AddressFromPublicKey(solana.SystemProgramID)

// Controller is the lamport ledger used by other extensions.
type Controller interface {
	// CreateAccount allocates space at addr, funded with the rent
	// exempt minimum by payer. Both payer and addr must be authorized.
	// It returns the lamports moved.
	CreateAccount(ctx custody.Context, db custody.KVStore, payer, addr custody.Address, space uint64, owner custody.Address, auth x.Authority) (uint64, error)

	// Transfer moves lamports between two accounts. from must be
	// authorized.
	Transfer(ctx custody.Context, db custody.KVStore, from, to custody.Address, lamports uint64, auth x.Authority) error

	// CloseAccount moves every lamport of addr to dest and deletes addr.
	// It returns the lamports moved.
	CloseAccount(ctx custody.Context, db custody.KVStore, addr, dest custody.Address, auth x.Authority) (uint64, error)

	// Balance returns the lamports held by addr, zero if it does not
	// exist.
	Balance(db custody.ReadOnlyKVStore, addr custody.Address) (uint64, error)

	// Exists reports whether addr holds an account.
	Exists(db custody.ReadOnlyKVStore, addr custody.Address) (bool, error)

	// RentExempt returns the minimum balance of an account holding
	// space bytes of data.
	RentExempt(db custody.ReadOnlyKVStore, space uint64) (uint64, error)

	// Owner returns the program owning addr.
	Owner(db custody.ReadOnlyKVStore, addr custody.Address) (custody.Address, error)

	// Allocate creates an account without a payer. Only genesis uses it.
	Allocate(db custody.KVStore, addr custody.Address, lamports, space uint64, owner custody.Address) error
}

// BaseController is the Controller stored in the accounts bucket.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using the accounts bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

func (c BaseController) CreateAccount(ctx custody.Context, db custody.KVStore, payer, addr custody.Address, space uint64, owner custody.Address, auth x.Authority) (uint64, error) {
	if !auth.Authorizes(ctx, payer) {
		return 0, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	if !auth.Authorizes(ctx, addr) {
		return 0, errors.Wrap(errors.ErrUnauthorized, "new account signature missing")
	}
	if err := c.notInUse(db, addr); err != nil {
		return 0, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	rent := conf.MinimumBalance(space)
	if err := c.debit(db, payer, rent); err != nil {
		return 0, errors.Wrap(err, "payer")
	}
	acc := Account{Lamports: rent, Space: space, Owner: owner}
	if err := c.bucket.Put(db, addr, &acc); err != nil {
		return 0, err
	}
	return rent, nil
}

func (c BaseController) Transfer(ctx custody.Context, db custody.KVStore, from, to custody.Address, lamports uint64, auth x.Authority) error {
	if !auth.Authorizes(ctx, from) {
		return errors.Wrap(errors.ErrUnauthorized, "source signature missing")
	}
	if from.Equals(to) {
		return errors.Wrap(errors.ErrInput, "source and destination are the same")
	}
	if err := c.debit(db, from, lamports); err != nil {
		return errors.Wrap(err, "source")
	}
	return c.credit(db, to, lamports)
}

func (c BaseController) CloseAccount(ctx custody.Context, db custody.KVStore, addr, dest custody.Address, auth x.Authority) (uint64, error) {
	if !auth.Authorizes(ctx, addr) {
		return 0, errors.Wrap(errors.ErrUnauthorized, "account signature missing")
	}
	if addr.Equals(dest) {
		return 0, errors.Wrap(errors.ErrInput, "cannot close into itself")
	}
	var acc Account
	if err := c.bucket.One(db, addr, &acc); err != nil {
		return 0, errors.Wrap(err, "close")
	}
	if err := c.bucket.Delete(db, addr); err != nil {
		return 0, err
	}
	if err := c.credit(db, dest, acc.Lamports); err != nil {
		return 0, errors.Wrap(err, "destination")
	}
	return acc.Lamports, nil
}

func (c BaseController) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (uint64, error) {
	var acc Account
	switch err := c.bucket.One(db, addr, &acc); {
	case errors.ErrNotFound.Is(err):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return acc.Lamports, nil
}

func (c BaseController) Exists(db custody.ReadOnlyKVStore, addr custody.Address) (bool, error) {
	switch err := c.bucket.Has(db, addr); {
	case errors.ErrNotFound.Is(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (c BaseController) RentExempt(db custody.ReadOnlyKVStore, space uint64) (uint64, error) {
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	return conf.MinimumBalance(space), nil
}

func (c BaseController) Owner(db custody.ReadOnlyKVStore, addr custody.Address) (custody.Address, error) {
	var acc Account
	if err := c.bucket.One(db, addr, &acc); err != nil {
		return nil, err
	}
	return acc.Owner, nil
}

func (c BaseController) Allocate(db custody.KVStore, addr custody.Address, lamports, space uint64, owner custody.Address) error {
	if err := c.notInUse(db, addr); err != nil {
		return err
	}
	return c.bucket.Put(db, addr, &Account{Lamports: lamports, Space: space, Owner: owner})
}

func (c BaseController) notInUse(db custody.ReadOnlyKVStore, addr custody.Address) error {
	exists, err := c.Exists(db, addr)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(ErrAccountInUse, "address %s", addr)
	}
	return nil
}

// debit removes lamports from a wallet. A plain wallet that reaches zero
// is deleted.
func (c BaseController) debit(db custody.KVStore, addr custody.Address, lamports uint64) error {
	var acc Account
	if err := c.bucket.One(db, addr, &acc); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(errors.ErrInsufficientAmount, "%s holds no lamports", addr)
		}
		return err
	}
	if acc.Lamports < lamports {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s holds %d lamports, %d required", addr, acc.Lamports, lamports)
	}
	acc.Lamports -= lamports
	if acc.Lamports == 0 && acc.Space == 0 {
		return c.bucket.Delete(db, addr)
	}
	return c.bucket.Put(db, addr, &acc)
}

// credit adds lamports, creating a plain wallet if needed.
func (c BaseController) credit(db custody.KVStore, addr custody.Address, lamports uint64) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	if lamports == 0 {
		return nil
	}
	acc := Account{Owner: ProgramID}
	if err := c.bucket.One(db, addr, &acc); err != nil && !errors.ErrNotFound.Is(err) {
		return err
	}
	if math.MaxUint64-acc.Lamports < lamports {
		return errors.Wrap(errors.ErrOverflow, "lamports")
	}
	acc.Lamports += lamports
	return c.bucket.Put(db, addr, &acc)
}
