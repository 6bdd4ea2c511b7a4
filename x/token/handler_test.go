package token

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/pda"
	"github.com/iov-one/custody/x/system"
)

func TestTransferHandler(t *testing.T) {
	alice := custodytest.NewAddress()
	bob := custodytest.NewAddress()

	cases := map[string]struct {
		signer     custody.Address
		amount     uint64
		wantCheck  *errors.Error
		wantResult *errors.Error
		wantAlice  uint64
	}{
		"success": {
			signer:    alice,
			amount:    30,
			wantAlice: 20,
		},
		"owner did not sign": {
			signer:     bob,
			amount:     30,
			wantCheck:  errors.ErrUnauthorized,
			wantResult: errors.ErrUnauthorized,
			wantAlice:  50,
		},
		"zero amount": {
			signer:     alice,
			wantCheck:  errors.ErrAmount,
			wantResult: errors.ErrAmount,
			wantAlice:  50,
		},
		"insufficient balance": {
			signer:     alice,
			amount:     51,
			wantResult: errors.ErrInsufficientAmount,
			wantAlice:  50,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			src := f.fund(t, alice, 50)
			dst := f.fund(t, bob, 0)
			h := TransferHandler{auth: &custodytest.Auth{Signer: tc.signer}, ctrl: f.ctrl}
			tx := &custodytest.Tx{Msg: &TransferMsg{
				Source:      src,
				Mint:        f.mint,
				Destination: dst,
				Owner:       alice,
				Amount:      tc.amount,
				Decimals:    6,
			}}

			ctx := context.Background()
			cache := f.db.CacheWrap()
			_, err := h.Check(ctx, cache, tx)
			assert.IsErr(t, tc.wantCheck, err)
			cache.Discard()

			_, err = h.Deliver(ctx, f.db, tx)
			assert.IsErr(t, tc.wantResult, err)
			assert.Equal(t, tc.wantAlice, f.balance(t, src))
		})
	}
}

func TestCreateAssociatedHandler(t *testing.T) {
	f := newFixture(t)
	payer := custodytest.NewAddress()
	owner := custodytest.NewAddress()
	rent := system.DefaultConfiguration().MinimumBalance(AccountSize)
	assert.Nil(t, f.sys.Allocate(f.db, payer, rent, 0, system.ProgramID))
	ata, err := f.ctrl.AssociatedAddress(f.db, owner, f.mint)
	assert.Nil(t, err)

	h := CreateAssociatedHandler{auth: &custodytest.Auth{Signer: payer}, ctrl: f.ctrl}
	ctx := context.Background()

	bad := &custodytest.Tx{Msg: &CreateAssociatedMsg{Payer: payer, Owner: owner, Mint: f.mint, Account: custodytest.NewAddress()}}
	_, err = h.Check(ctx, f.db, bad)
	assert.IsErr(t, pda.ErrSeeds, err)

	tx := &custodytest.Tx{Msg: &CreateAssociatedMsg{Payer: payer, Owner: owner, Mint: f.mint, Account: ata}}
	res, err := h.Deliver(ctx, f.db, tx)
	assert.Nil(t, err)
	assert.Equal(t, []byte(ata), res.Data)

	acc, err := f.ctrl.Account(f.db, ata)
	assert.Nil(t, err)
	assert.Equal(t, owner, acc.Owner)
}
