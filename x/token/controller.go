package token

import (
	"math"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/pda"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/system"
)

// Controller is the token ledger used by other extensions.
type Controller interface {
	// AssociatedAddress derives the associated token account of owner
	// for mint.
	AssociatedAddress(db custody.ReadOnlyKVStore, owner, mint custody.Address) (custody.Address, error)

	// CreateAssociatedAccount creates the associated token account of
	// owner, funded with the rent exempt minimum by payer. It returns
	// the account address.
	CreateAssociatedAccount(ctx custody.Context, db custody.KVStore, payer, owner, mint custody.Address, auth x.Authority) (custody.Address, error)

	// TransferChecked moves amount tokens of mint from source to dest.
	// The owner of source must be authorized and decimals must match
	// the mint.
	TransferChecked(ctx custody.Context, db custody.KVStore, source, mint, dest custody.Address, amount uint64, decimals uint8, auth x.Authority) error

	// CloseAccount deletes an empty token account and moves its
	// lamports to dest. It returns the lamports moved.
	CloseAccount(ctx custody.Context, db custody.KVStore, account, dest custody.Address, auth x.Authority) (uint64, error)

	// Account returns the token account stored at addr.
	Account(db custody.ReadOnlyKVStore, addr custody.Address) (*Account, error)

	// Mint returns the mint stored at addr.
	Mint(db custody.ReadOnlyKVStore, addr custody.Address) (*Mint, error)
}

// BaseController stores mints and token accounts in their buckets and
// uses the system ledger for the lamports backing them.
type BaseController struct {
	mints    orm.ModelBucket
	accounts orm.ModelBucket
	system   system.Controller
}

var _ Controller = BaseController{}

// NewController returns a controller that funds accounts through sys.
func NewController(sys system.Controller) BaseController {
	return BaseController{
		mints:    NewMintBucket(),
		accounts: NewAccountBucket(),
		system:   sys,
	}
}

func (c BaseController) AssociatedAddress(db custody.ReadOnlyKVStore, owner, mint custody.Address) (custody.Address, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	addr, _, err := associated(conf, owner, mint)
	return addr, err
}

// AssociatedAddress derives the associated token account using the
// given program ids. It does not read the store and can be used by
// clients.
func AssociatedAddress(conf Configuration, owner, mint custody.Address) (custody.Address, error) {
	addr, _, err := associated(conf, owner, mint)
	return addr, err
}

func associated(conf Configuration, owner, mint custody.Address) (custody.Address, *pda.Signer, error) {
	if err := owner.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "owner")
	}
	if err := mint.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "mint")
	}
	seeds := [][]byte{owner, conf.TokenProgram, mint}
	addr, bump, err := pda.Find(conf.AssociatedProgram, seeds...)
	if err != nil {
		return nil, nil, err
	}
	signer, err := pda.NewSigner(conf.AssociatedProgram, addr, seeds, bump)
	if err != nil {
		return nil, nil, err
	}
	return addr, signer, nil
}

func (c BaseController) CreateAssociatedAccount(ctx custody.Context, db custody.KVStore, payer, owner, mint custody.Address, auth x.Authority) (custody.Address, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if _, err := c.Mint(db, mint); err != nil {
		return nil, err
	}
	addr, signer, err := associated(conf, owner, mint)
	if err != nil {
		return nil, err
	}
	if _, err := c.system.CreateAccount(ctx, db, payer, addr, AccountSize, conf.TokenProgram, x.AnyAuthority(auth, signer)); err != nil {
		return nil, errors.Wrap(err, "allocate associated account")
	}
	acc := Account{Mint: mint, Owner: owner, State: StateInitialized}
	if err := c.accounts.Put(db, addr, &acc); err != nil {
		return nil, err
	}
	return addr, nil
}

func (c BaseController) TransferChecked(ctx custody.Context, db custody.KVStore, source, mint, dest custody.Address, amount uint64, decimals uint8, auth x.Authority) error {
	src, err := c.Account(db, source)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	if !src.Mint.Equals(mint) {
		return errors.Wrapf(errors.ErrInput, "source holds mint %s, not %s", src.Mint, mint)
	}
	m, err := c.Mint(db, mint)
	if err != nil {
		return err
	}
	if m.Decimals != decimals {
		return errors.Wrapf(ErrDecimals, "mint has %d decimals, %d declared", m.Decimals, decimals)
	}
	if !auth.Authorizes(ctx, src.Owner) {
		return errors.Wrap(errors.ErrUnauthorized, "source owner")
	}
	if src.State == StateFrozen {
		return errors.Wrap(ErrFrozen, "source")
	}

	dst, err := c.Account(db, dest)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if !dst.Mint.Equals(mint) {
		return errors.Wrapf(errors.ErrInput, "destination holds mint %s, not %s", dst.Mint, mint)
	}
	if dst.State == StateFrozen {
		return errors.Wrap(ErrFrozen, "destination")
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "source holds %d, %d required", src.Amount, amount)
	}
	if source.Equals(dest) {
		return nil
	}
	if math.MaxUint64-dst.Amount < amount {
		return errors.Wrap(errors.ErrOverflow, "destination amount")
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := c.accounts.Put(db, source, src); err != nil {
		return err
	}
	return c.accounts.Put(db, dest, dst)
}

func (c BaseController) CloseAccount(ctx custody.Context, db custody.KVStore, account, dest custody.Address, auth x.Authority) (uint64, error) {
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	acc, err := c.Account(db, account)
	if err != nil {
		return 0, err
	}
	if acc.Amount != 0 {
		return 0, errors.Wrapf(errors.ErrState, "account holds %d tokens", acc.Amount)
	}
	authorized := false
	for _, a := range acc.closers() {
		if auth.Authorizes(ctx, a) {
			authorized = true
		}
	}
	if !authorized {
		return 0, errors.Wrap(errors.ErrUnauthorized, "close authority")
	}
	owner, err := c.system.Owner(db, account)
	if err != nil {
		return 0, errors.Wrap(err, "account lamports")
	}
	if !owner.Equals(conf.TokenProgram) {
		return 0, errors.Wrapf(errors.ErrInput, "account owned by %s", owner)
	}
	if err := c.accounts.Delete(db, account); err != nil {
		return 0, err
	}
	return c.system.CloseAccount(ctx, db, account, dest, programOwned(account))
}

func (c BaseController) Account(db custody.ReadOnlyKVStore, addr custody.Address) (*Account, error) {
	var acc Account
	if err := c.accounts.One(db, addr, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (c BaseController) Mint(db custody.ReadOnlyKVStore, addr custody.Address) (*Mint, error) {
	var m Mint
	if err := c.mints.One(db, addr, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMint stores a new mint backed by a rent exempt account. Only
// genesis uses it.
func (c BaseController) CreateMint(db custody.KVStore, addr custody.Address, m *Mint) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	rent, err := c.system.RentExempt(db, MintSize)
	if err != nil {
		return err
	}
	if err := c.system.Allocate(db, addr, rent, MintSize, conf.TokenProgram); err != nil {
		return err
	}
	return c.mints.Put(db, addr, m)
}

// MintTo issues amount new tokens into the associated account of owner,
// creating it without a payer when missing. Only genesis uses it.
func (c BaseController) MintTo(db custody.KVStore, owner, mint custody.Address, amount uint64) (custody.Address, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	m, err := c.Mint(db, mint)
	if err != nil {
		return nil, err
	}
	if math.MaxUint64-m.Supply < amount {
		return nil, errors.Wrap(errors.ErrOverflow, "supply")
	}
	addr, _, err := associated(conf, owner, mint)
	if err != nil {
		return nil, err
	}
	acc, err := c.Account(db, addr)
	switch {
	case errors.ErrNotFound.Is(err):
		rent, err := c.system.RentExempt(db, AccountSize)
		if err != nil {
			return nil, err
		}
		if err := c.system.Allocate(db, addr, rent, AccountSize, conf.TokenProgram); err != nil {
			return nil, err
		}
		acc = &Account{Mint: mint, Owner: owner, State: StateInitialized}
	case err != nil:
		return nil, err
	}
	acc.Amount += amount
	m.Supply += amount
	if err := c.accounts.Put(db, addr, acc); err != nil {
		return nil, err
	}
	if err := c.mints.Put(db, mint, m); err != nil {
		return nil, err
	}
	return addr, nil
}

// programOwned authorizes the token program to act on an account it
// owns.
type programOwned custody.Address

func (p programOwned) Authorizes(_ custody.Context, addr custody.Address) bool {
	return custody.Address(p).Equals(addr)
}
