package system

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x"
)

func newDB(t testing.TB) custody.CacheableKVStore {
	t.Helper()
	db := store.MemStore()
	conf := DefaultConfiguration()
	assert.Nil(t, gconf.Save(db, "system", &conf))
	return db
}

func TestMinimumBalance(t *testing.T) {
	conf := DefaultConfiguration()
	assert.Equal(t, uint64(128*3480*2), conf.MinimumBalance(0))
	assert.Equal(t, uint64((89+128)*3480*2), conf.MinimumBalance(89))
	assert.Equal(t, uint64((165+128)*3480*2), conf.MinimumBalance(165))
}

func TestCreateAccount(t *testing.T) {
	payer := custodytest.NewAddress()
	target := custodytest.NewAddress()
	program := custodytest.NewAddress()
	rent := DefaultConfiguration().MinimumBalance(89)

	cases := map[string]struct {
		fund        uint64
		signers     []custody.Address
		prepare     func(t testing.TB, db custody.KVStore)
		wantErr     *errors.Error
		wantPayer   uint64
		wantAccount uint64
	}{
		"success": {
			fund:        rent + 5,
			signers:     []custody.Address{payer, target},
			wantPayer:   5,
			wantAccount: rent,
		},
		"exact rent deletes the payer wallet": {
			fund:        rent,
			signers:     []custody.Address{payer, target},
			wantPayer:   0,
			wantAccount: rent,
		},
		"payer must sign": {
			fund:      rent,
			signers:   []custody.Address{target},
			wantErr:   errors.ErrUnauthorized,
			wantPayer: rent,
		},
		"new account must sign": {
			fund:      rent,
			signers:   []custody.Address{payer},
			wantErr:   errors.ErrUnauthorized,
			wantPayer: rent,
		},
		"insufficient lamports": {
			fund:      rent - 1,
			signers:   []custody.Address{payer, target},
			wantErr:   errors.ErrInsufficientAmount,
			wantPayer: rent - 1,
		},
		"address in use": {
			fund:    rent,
			signers: []custody.Address{payer, target},
			prepare: func(t testing.TB, db custody.KVStore) {
				assert.Nil(t, NewController().Allocate(db, target, 1, 0, ProgramID))
			},
			wantErr:     ErrAccountInUse,
			wantPayer:   rent,
			wantAccount: 1,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := newDB(t)
			ctrl := NewController()
			assert.Nil(t, ctrl.Allocate(db, payer, tc.fund, 0, ProgramID))
			if tc.prepare != nil {
				tc.prepare(t, db)
			}
			auth := x.SignedBy(&custodytest.Auth{Signers: tc.signers})

			moved, err := ctrl.CreateAccount(context.Background(), db, payer, target, 89, program, auth)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr == nil {
				assert.Equal(t, rent, moved)
				var acc Account
				assert.Nil(t, NewBucket().One(db, target, &acc))
				assert.Equal(t, uint64(89), acc.Space)
				assert.Equal(t, program, acc.Owner)
			}

			got, err := ctrl.Balance(db, payer)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantPayer, got)
			got, err = ctrl.Balance(db, target)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantAccount, got)
		})
	}
}

func TestCloseAccount(t *testing.T) {
	db := newDB(t)
	ctrl := NewController()
	addr := custodytest.NewAddress()
	dest := custodytest.NewAddress()
	ctx := context.Background()

	assert.Nil(t, ctrl.Allocate(db, addr, 700, 89, custodytest.NewAddress()))
	assert.Nil(t, ctrl.Allocate(db, dest, 50, 0, ProgramID))

	_, err := ctrl.CloseAccount(ctx, db, addr, dest, x.SignedBy(&custodytest.Auth{Signer: dest}))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	auth := x.SignedBy(&custodytest.Auth{Signer: addr})
	_, err = ctrl.CloseAccount(ctx, db, addr, addr, auth)
	assert.IsErr(t, errors.ErrInput, err)

	moved, err := ctrl.CloseAccount(ctx, db, addr, dest, auth)
	assert.Nil(t, err)
	assert.Equal(t, uint64(700), moved)

	exists, err := ctrl.Exists(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, false, exists)
	got, err := ctrl.Balance(db, dest)
	assert.Nil(t, err)
	assert.Equal(t, uint64(750), got)

	_, err = ctrl.CloseAccount(ctx, db, addr, dest, auth)
	assert.IsErr(t, errors.ErrNotFound, err)

	// a closed address can be allocated again
	assert.Nil(t, ctrl.Allocate(db, addr, 1, 0, ProgramID))
}

func TestTransfer(t *testing.T) {
	db := newDB(t)
	ctrl := NewController()
	from, to := custodytest.NewAddress(), custodytest.NewAddress()
	ctx := context.Background()
	auth := x.SignedBy(&custodytest.Auth{Signer: from})

	assert.Nil(t, ctrl.Allocate(db, from, 100, 0, ProgramID))
	assert.Nil(t, ctrl.Transfer(ctx, db, from, to, 40, auth))
	assert.IsErr(t, errors.ErrInsufficientAmount, ctrl.Transfer(ctx, db, from, to, 61, auth))
	assert.IsErr(t, errors.ErrUnauthorized, ctrl.Transfer(ctx, db, to, from, 1, auth))
	assert.IsErr(t, errors.ErrInput, ctrl.Transfer(ctx, db, from, from, 1, auth))

	got, _ := ctrl.Balance(db, from)
	assert.Equal(t, uint64(60), got)
	got, _ = ctrl.Balance(db, to)
	assert.Equal(t, uint64(40), got)
}

func TestAccountLayout(t *testing.T) {
	acc := Account{Lamports: 0x0102, Space: 89, Owner: ProgramID}
	raw, err := acc.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, AccountSize, len(raw))
	// little endian lamports come first
	assert.Equal(t, []byte{0x02, 0x01}, raw[:2])

	var back Account
	assert.Nil(t, back.Unmarshal(raw))
	assert.Equal(t, acc, back)
	assert.IsErr(t, errors.ErrModel, back.Unmarshal(raw[1:]))
}

func TestGenesis(t *testing.T) {
	addr := custodytest.NewAddress()
	genesis := `{
		"conf": {"system": {"lamports_per_byte_year": 10, "exemption_threshold": 1}},
		"system": {"accounts": [{"address": "` + addr.String() + `", "lamports": 5000}]}
	}`
	var opts custody.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	got, err := NewController().Balance(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, uint64(5000), got)

	conf, err := loadConf(db)
	assert.Nil(t, err)
	// (10 + 128) bytes * 10 lamports * threshold 1
	assert.Equal(t, uint64(1380), conf.MinimumBalance(10))

	qr := custody.NewQueryRouter()
	RegisterQuery(qr)
	res, err := qr.Handler("/accounts").Query(db, custody.KeyQueryMod, addr)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
}
