package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/pda"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/system"
	"github.com/iov-one/custody/x/token"
)

// controller holds the escrow records and drives the token and lamport
// ledgers on their behalf.
type controller struct {
	bucket orm.ModelBucket
	tokens token.Controller
	system system.Controller
}

func newController(tokens token.Controller, sys system.Controller) controller {
	return controller{bucket: NewBucket(), tokens: tokens, system: sys}
}

// expectAssociated fails with pda.ErrSeeds unless got is the associated
// token account of owner for mint.
func (c controller) expectAssociated(db custody.ReadOnlyKVStore, name string, got, owner, mint custody.Address) error {
	want, err := c.tokens.AssociatedAddress(db, owner, mint)
	if err != nil {
		return err
	}
	if !want.Equals(got) {
		return errors.Wrapf(pda.ErrSeeds, "%s: want %s, got %s", name, want, got)
	}
	return nil
}

// expectRecord fails with pda.ErrSeeds unless got is the canonical
// record address of (maker, mint, seed).
func (c controller) expectRecord(programID, got, maker, mint custody.Address, seed uint64) (uint8, error) {
	want, bump, err := RecordAddress(programID, maker, mint, seed)
	if err != nil {
		return 0, err
	}
	if !want.Equals(got) {
		return 0, errors.Wrapf(pda.ErrSeeds, "escrow: want %s, got %s", want, got)
	}
	return bump, nil
}

// checkDeposit verifies every derived account of a deposit. It returns
// the configuration and a signer for the record address.
func (c controller) checkDeposit(db custody.ReadOnlyKVStore, msg *DepositMsg) (*Configuration, *pda.Signer, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	bump, err := c.expectRecord(conf.ProgramID, msg.Escrow, msg.Maker, msg.Mint, msg.Seed)
	if err != nil {
		return nil, nil, err
	}
	if err := c.expectAssociated(db, "vault", msg.Vault, msg.Escrow, msg.Mint); err != nil {
		return nil, nil, err
	}
	if err := c.expectAssociated(db, "maker tokens", msg.MakerTokens, msg.Maker, msg.Mint); err != nil {
		return nil, nil, err
	}
	signer, err := pda.NewSigner(conf.ProgramID, msg.Escrow, Seeds(msg.Maker, msg.Mint, msg.Seed), bump)
	if err != nil {
		return nil, nil, err
	}
	return &conf, signer, nil
}

// deposit allocates the record and the vault and moves the tokens in.
// Nothing is rolled back here, the caller must discard the store on
// error.
func (c controller) deposit(ctx custody.Context, db custody.KVStore, msg *DepositMsg, auth x.Authority) error {
	conf, signer, err := c.checkDeposit(db, msg)
	if err != nil {
		return err
	}
	recordAuth := x.AnyAuthority(auth, signer)
	if _, err := c.system.CreateAccount(ctx, db, msg.Maker, msg.Escrow, RecordSize, conf.ProgramID, recordAuth); err != nil {
		return errors.Wrap(err, "allocate escrow")
	}
	vault, err := c.tokens.CreateAssociatedAccount(ctx, db, msg.Maker, msg.Escrow, msg.Mint, auth)
	if err != nil {
		return errors.Wrap(err, "create vault")
	}
	if !vault.Equals(msg.Vault) {
		return errors.Wrapf(pda.ErrSeeds, "vault created at %s", vault)
	}
	rec := Escrow{
		Amount: msg.Amount,
		Mint:   msg.Mint,
		Maker:  msg.Maker,
		Seed:   msg.Seed,
		Bump:   signer.Bump(),
	}
	if err := c.bucket.Put(db, msg.Escrow, &rec); err != nil {
		return errors.Wrap(err, "store escrow")
	}
	if err := c.tokens.TransferChecked(ctx, db, msg.MakerTokens, msg.Mint, msg.Vault, msg.Amount, msg.Decimals, auth); err != nil {
		return errors.Wrap(err, "fund vault")
	}
	return nil
}

// claim is a verified escrow ready to be paid out.
type claim struct {
	programID custody.Address
	escrow    custody.Address
	vault     custody.Address
	record    *Escrow
}

// loadClaim verifies the accounts of a settle or refund before anything
// moves.
func (c controller) loadClaim(db custody.ReadOnlyKVStore, maker, mint custody.Address, seed uint64, escrowAddr, vaultAddr custody.Address) (*claim, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if _, err := c.expectRecord(conf.ProgramID, escrowAddr, maker, mint, seed); err != nil {
		return nil, err
	}

	var rec Escrow
	if err := c.bucket.One(db, escrowAddr, &rec); err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	switch {
	case !rec.Maker.Equals(maker):
		return nil, errors.Wrapf(errors.ErrInput, "escrow maker is %s", rec.Maker)
	case !rec.Mint.Equals(mint):
		return nil, errors.Wrapf(errors.ErrInput, "escrow mint is %s", rec.Mint)
	case rec.Seed != seed:
		return nil, errors.Wrapf(errors.ErrInput, "escrow seed is %d", rec.Seed)
	}
	if err := pda.Verify(conf.ProgramID, escrowAddr, Seeds(maker, mint, seed), rec.Bump); err != nil {
		return nil, errors.Wrap(err, "stored bump")
	}
	owner, err := c.system.Owner(db, escrowAddr)
	if err != nil {
		return nil, errors.Wrap(err, "escrow account")
	}
	if !owner.Equals(conf.ProgramID) {
		return nil, errors.Wrapf(errors.ErrInput, "escrow account owned by %s", owner)
	}

	if err := c.expectAssociated(db, "vault", vaultAddr, escrowAddr, mint); err != nil {
		return nil, err
	}
	vault, err := c.tokens.Account(db, vaultAddr)
	if err != nil {
		return nil, errors.Wrap(err, "vault")
	}
	if !vault.Owner.Equals(escrowAddr) {
		return nil, errors.Wrapf(errors.ErrInput, "vault owned by %s", vault.Owner)
	}
	if !vault.Mint.Equals(mint) {
		return nil, errors.Wrapf(errors.ErrInput, "vault holds mint %s", vault.Mint)
	}
	return &claim{
		programID: conf.ProgramID,
		escrow:    escrowAddr,
		vault:     vaultAddr,
		record:    &rec,
	}, nil
}

// ensureTokenAccount creates the associated token account of owner
// unless it exists. The owner pays for it.
func (c controller) ensureTokenAccount(ctx custody.Context, db custody.KVStore, addr, owner, mint custody.Address, auth x.Authority) error {
	_, err := c.tokens.Account(db, addr)
	switch {
	case err == nil:
		return nil
	case !errors.ErrNotFound.Is(err):
		return err
	}
	if _, err := c.tokens.CreateAssociatedAccount(ctx, db, owner, owner, mint, auth); err != nil {
		return errors.Wrap(err, "create token account")
	}
	return nil
}

// closeAndPay moves the whole vault balance to payee, closes the vault
// and deletes the record. Both accounts return their lamports to the
// maker. It returns the amount paid.
func (c controller) closeAndPay(ctx custody.Context, db custody.KVStore, cl *claim, payee custody.Address) (uint64, error) {
	rec := cl.record
	signer, err := pda.NewSigner(cl.programID, cl.escrow, Seeds(rec.Maker, rec.Mint, rec.Seed), rec.Bump)
	if err != nil {
		return 0, err
	}

	vault, err := c.tokens.Account(db, cl.vault)
	if err != nil {
		return 0, errors.Wrap(err, "vault")
	}
	mint, err := c.tokens.Mint(db, rec.Mint)
	if err != nil {
		return 0, errors.Wrap(err, "mint")
	}
	amount := vault.Amount
	if err := c.tokens.TransferChecked(ctx, db, cl.vault, rec.Mint, payee, amount, mint.Decimals, signer); err != nil {
		return 0, errors.Wrap(err, "pay out")
	}
	if _, err := c.tokens.CloseAccount(ctx, db, cl.vault, rec.Maker, signer); err != nil {
		return 0, errors.Wrap(err, "close vault")
	}
	if err := c.bucket.Delete(db, cl.escrow); err != nil {
		return 0, errors.Wrap(err, "delete escrow")
	}
	if _, err := c.system.CloseAccount(ctx, db, cl.escrow, rec.Maker, signer); err != nil {
		return 0, errors.Wrap(err, "close escrow")
	}
	return amount, nil
}
