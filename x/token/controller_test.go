package token

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/system"
)

type fixture struct {
	db   custody.CacheableKVStore
	sys  system.BaseController
	ctrl BaseController
	mint custody.Address
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := store.MemStore()
	sysConf := system.DefaultConfiguration()
	assert.Nil(t, gconf.Save(db, "system", &sysConf))
	conf := DefaultConfiguration()
	assert.Nil(t, gconf.Save(db, "token", &conf))

	sys := system.NewController()
	ctrl := NewController(sys)
	mint := custodytest.NewAddress()
	assert.Nil(t, ctrl.CreateMint(db, mint, &Mint{Decimals: 6}))
	return &fixture{db: db, sys: sys, ctrl: ctrl, mint: mint}
}

func (f *fixture) fund(t testing.TB, owner custody.Address, amount uint64) custody.Address {
	t.Helper()
	addr, err := f.ctrl.MintTo(f.db, owner, f.mint, amount)
	assert.Nil(t, err)
	return addr
}

func (f *fixture) balance(t testing.TB, addr custody.Address) uint64 {
	t.Helper()
	acc, err := f.ctrl.Account(f.db, addr)
	assert.Nil(t, err)
	return acc.Amount
}

func TestAssociatedAddressMatchesSolana(t *testing.T) {
	f := newFixture(t)
	owner := custodytest.NewAddress()

	got, err := f.ctrl.AssociatedAddress(f.db, owner, f.mint)
	assert.Nil(t, err)
	want, _, err := solana.FindAssociatedTokenAddress(owner.PublicKey(), f.mint.PublicKey())
	assert.Nil(t, err)
	assert.Equal(t, custody.AddressFromPublicKey(want), got)

	offChain, err := AssociatedAddress(DefaultConfiguration(), owner, f.mint)
	assert.Nil(t, err)
	assert.Equal(t, got, offChain)
}

func TestTransferChecked(t *testing.T) {
	alice := custodytest.NewAddress()
	bob := custodytest.NewAddress()

	cases := map[string]struct {
		amount   uint64
		decimals uint8
		mint     func(f *fixture) custody.Address
		signer   custody.Address
		wantErr  *errors.Error
		wantSrc  uint64
		wantDst  uint64
	}{
		"success": {
			amount:   40,
			decimals: 6,
			signer:   alice,
			wantSrc:  60,
			wantDst:  40,
		},
		"whole balance": {
			amount:   100,
			decimals: 6,
			signer:   alice,
			wantSrc:  0,
			wantDst:  100,
		},
		"decimals mismatch": {
			amount:   40,
			decimals: 9,
			signer:   alice,
			wantErr:  ErrDecimals,
			wantSrc:  100,
		},
		"wrong mint": {
			amount:   40,
			decimals: 6,
			mint:     func(*fixture) custody.Address { return custodytest.NewAddress() },
			signer:   alice,
			wantErr:  errors.ErrInput,
			wantSrc:  100,
		},
		"not the owner": {
			amount:   40,
			decimals: 6,
			signer:   bob,
			wantErr:  errors.ErrUnauthorized,
			wantSrc:  100,
		},
		"insufficient balance": {
			amount:   101,
			decimals: 6,
			signer:   alice,
			wantErr:  errors.ErrInsufficientAmount,
			wantSrc:  100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			src := f.fund(t, alice, 100)
			dst := f.fund(t, bob, 0)
			mint := f.mint
			if tc.mint != nil {
				mint = tc.mint(f)
			}
			auth := x.SignedBy(&custodytest.Auth{Signer: tc.signer})

			err := f.ctrl.TransferChecked(context.Background(), f.db, src, mint, dst, tc.amount, tc.decimals, auth)
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, tc.wantSrc, f.balance(t, src))
			assert.Equal(t, tc.wantDst, f.balance(t, dst))
		})
	}
}

func TestTransferToMissingAccount(t *testing.T) {
	f := newFixture(t)
	alice := custodytest.NewAddress()
	src := f.fund(t, alice, 10)
	auth := x.SignedBy(&custodytest.Auth{Signer: alice})

	err := f.ctrl.TransferChecked(context.Background(), f.db, src, f.mint, custodytest.NewAddress(), 1, 6, auth)
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.Equal(t, uint64(10), f.balance(t, src))
}

func TestCreateAssociatedAccount(t *testing.T) {
	f := newFixture(t)
	payer := custodytest.NewAddress()
	owner := custodytest.NewAddress()
	rent := system.DefaultConfiguration().MinimumBalance(AccountSize)
	assert.Nil(t, f.sys.Allocate(f.db, payer, 3*rent, 0, system.ProgramID))
	auth := x.SignedBy(&custodytest.Auth{Signer: payer})
	ctx := context.Background()

	addr, err := f.ctrl.CreateAssociatedAccount(ctx, f.db, payer, owner, f.mint, auth)
	assert.Nil(t, err)
	want, err := f.ctrl.AssociatedAddress(f.db, owner, f.mint)
	assert.Nil(t, err)
	assert.Equal(t, want, addr)

	acc, err := f.ctrl.Account(f.db, addr)
	assert.Nil(t, err)
	assert.Equal(t, owner, acc.Owner)
	assert.Equal(t, StateInitialized, acc.State)

	lamports, err := f.sys.Balance(f.db, addr)
	assert.Nil(t, err)
	assert.Equal(t, rent, lamports)
	left, err := f.sys.Balance(f.db, payer)
	assert.Nil(t, err)
	assert.Equal(t, 2*rent, left)

	_, err = f.ctrl.CreateAssociatedAccount(ctx, f.db, payer, owner, f.mint, auth)
	assert.IsErr(t, system.ErrAccountInUse, err)

	_, err = f.ctrl.CreateAssociatedAccount(ctx, f.db, payer, owner, custodytest.NewAddress(), auth)
	assert.IsErr(t, errors.ErrNotFound, err)

	other := x.SignedBy(&custodytest.Auth{Signer: owner})
	_, err = f.ctrl.CreateAssociatedAccount(ctx, f.db, payer, custodytest.NewAddress(), f.mint, other)
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestCloseAccount(t *testing.T) {
	f := newFixture(t)
	alice := custodytest.NewAddress()
	bob := custodytest.NewAddress()
	src := f.fund(t, alice, 5)
	dst := f.fund(t, bob, 0)
	rent := system.DefaultConfiguration().MinimumBalance(AccountSize)
	ctx := context.Background()
	aliceAuth := x.SignedBy(&custodytest.Auth{Signer: alice})

	_, err := f.ctrl.CloseAccount(ctx, f.db, src, alice, aliceAuth)
	assert.IsErr(t, errors.ErrState, err)

	assert.Nil(t, f.ctrl.TransferChecked(ctx, f.db, src, f.mint, dst, 5, 6, aliceAuth))

	_, err = f.ctrl.CloseAccount(ctx, f.db, src, alice, x.SignedBy(&custodytest.Auth{Signer: bob}))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	moved, err := f.ctrl.CloseAccount(ctx, f.db, src, alice, aliceAuth)
	assert.Nil(t, err)
	assert.Equal(t, rent, moved)

	_, err = f.ctrl.Account(f.db, src)
	assert.IsErr(t, errors.ErrNotFound, err)
	exists, err := f.sys.Exists(f.db, src)
	assert.Nil(t, err)
	assert.Equal(t, false, exists)
	lamports, err := f.sys.Balance(f.db, alice)
	assert.Nil(t, err)
	assert.Equal(t, rent, lamports)
}

func TestMintToTracksSupply(t *testing.T) {
	f := newFixture(t)
	owner := custodytest.NewAddress()
	first := f.fund(t, owner, 7)
	second := f.fund(t, owner, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, uint64(10), f.balance(t, first))

	m, err := f.ctrl.Mint(f.db, f.mint)
	assert.Nil(t, err)
	assert.Equal(t, uint64(10), m.Supply)
}
