package escrow

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/pda"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/system"
	"github.com/iov-one/custody/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	decimals = 6
	funds    = 10000
	lamports = 10000000000
)

var (
	recordRent = system.DefaultConfiguration().MinimumBalance(RecordSize)
	vaultRent  = system.DefaultConfiguration().MinimumBalance(token.AccountSize)
)

type env struct {
	t         testing.TB
	db        custody.CacheableKVStore
	sys       system.BaseController
	tokens    token.BaseController
	tokenConf token.Configuration
	programID custody.Address
	mint      custody.Address
}

func newEnv(t testing.TB) *env {
	db := store.MemStore()
	sysConf := system.DefaultConfiguration()
	require.NoError(t, gconf.Save(db, "system", &sysConf))
	tokenConf := token.DefaultConfiguration()
	require.NoError(t, gconf.Save(db, "token", &tokenConf))
	conf := Configuration{ProgramID: DefaultProgramID}
	require.NoError(t, gconf.Save(db, "escrow", &conf))

	sys := system.NewController()
	tokens := token.NewController(sys)
	e := &env{
		t:         t,
		db:        db,
		sys:       sys,
		tokens:    tokens,
		tokenConf: tokenConf,
		programID: DefaultProgramID,
	}
	e.mint = e.newMint(decimals)
	return e
}

func (e *env) newMint(decimals uint8) custody.Address {
	mint := custodytest.NewAddress()
	require.NoError(e.t, e.tokens.CreateMint(e.db, mint, &token.Mint{Decimals: decimals}))
	return mint
}

// wallet returns a new address holding lamports and, when amount is not
// zero, tokens of mint.
func (e *env) wallet(mint custody.Address, amount uint64) custody.Address {
	addr := custodytest.NewAddress()
	require.NoError(e.t, e.sys.Allocate(e.db, addr, lamports, 0, system.ProgramID))
	if amount > 0 {
		_, err := e.tokens.MintTo(e.db, addr, mint, amount)
		require.NoError(e.t, err)
	}
	return addr
}

func (e *env) tokensOf(owner, mint custody.Address) uint64 {
	addr, err := e.tokens.AssociatedAddress(e.db, owner, mint)
	require.NoError(e.t, err)
	acc, err := e.tokens.Account(e.db, addr)
	if errors.ErrNotFound.Is(err) {
		return 0
	}
	require.NoError(e.t, err)
	return acc.Amount
}

func (e *env) lamportsOf(addr custody.Address) uint64 {
	n, err := e.sys.Balance(e.db, addr)
	require.NoError(e.t, err)
	return n
}

func (e *env) exists(addr custody.Address) bool {
	ok, err := e.sys.Exists(e.db, addr)
	require.NoError(e.t, err)
	return ok
}

func (e *env) handler(msg custody.Msg, signer custody.Address) custody.Handler {
	auth := &custodytest.Auth{Signer: signer}
	ctrl := newController(e.tokens, e.sys)
	switch msg.(type) {
	case *DepositMsg:
		return DepositHandler{auth: auth, ctrl: ctrl}
	case *SettleMsg:
		return SettleHandler{auth: auth, ctrl: ctrl}
	case *RefundMsg:
		return RefundHandler{auth: auth, ctrl: ctrl}
	}
	e.t.Fatalf("unexpected message %T", msg)
	return nil
}

// deliver runs the message in a savepoint, like the application does.
func (e *env) deliver(msg custody.Msg, signer custody.Address) (*custody.DeliverResult, error) {
	h := e.handler(msg, signer)
	tx := &custodytest.Tx{Msg: msg}
	ctx := context.Background()

	check := e.db.CacheWrap()
	_, checkErr := h.Check(ctx, check, tx)
	check.Discard()

	cache := e.db.CacheWrap()
	res, err := h.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	require.NoError(e.t, cache.Write())
	require.NoError(e.t, checkErr, "check must accept a delivered message")
	return res, nil
}

func (e *env) deposit(maker custody.Address, seed, amount uint64) *DepositMsg {
	msg, err := NewDepositMsg(e.programID, e.tokenConf, maker, e.mint, seed, amount, decimals)
	require.NoError(e.t, err)
	return msg
}

func (e *env) settle(taker, maker custody.Address, seed uint64) *SettleMsg {
	msg, err := NewSettleMsg(e.programID, e.tokenConf, taker, maker, e.mint, seed)
	require.NoError(e.t, err)
	return msg
}

func (e *env) refund(maker custody.Address, seed uint64) *RefundMsg {
	msg, err := NewRefundMsg(e.programID, e.tokenConf, maker, e.mint, seed)
	require.NoError(e.t, err)
	return msg
}

func TestDerivationIsDeterministic(t *testing.T) {
	e := newEnv(t)
	maker := e.wallet(e.mint, funds)

	offChain, err := Derive(e.programID, e.tokenConf, maker, e.mint, 1)
	require.NoError(t, err)
	again, err := Derive(e.programID, e.tokenConf, maker, e.mint, 1)
	require.NoError(t, err)
	assert.Equal(t, offChain, again)

	other, err := Derive(e.programID, e.tokenConf, maker, e.mint, 2)
	require.NoError(t, err)
	assert.NotEqual(t, offChain.Escrow, other.Escrow)
	assert.NotEqual(t, offChain.Vault, other.Vault)

	res, err := e.deliver(e.deposit(maker, 1, 100), maker)
	require.NoError(t, err)
	assert.Equal(t, []byte(offChain.Escrow), res.Data)
	assert.Equal(t, tags(offChain.Escrow, maker, e.mint), res.Tags)

	var rec Escrow
	require.NoError(t, NewBucket().One(e.db, offChain.Escrow, &rec))
	assert.Equal(t, offChain.Bump, rec.Bump)
	onChainVault, err := e.tokens.AssociatedAddress(e.db, offChain.Escrow, e.mint)
	require.NoError(t, err)
	assert.Equal(t, offChain.Vault, onChainVault)
	vault, err := e.tokens.Account(e.db, offChain.Vault)
	require.NoError(t, err)
	assert.Equal(t, offChain.Escrow, vault.Owner)
}

func TestDepositTwiceFails(t *testing.T) {
	e := newEnv(t)
	maker := e.wallet(e.mint, funds)

	_, err := e.deliver(e.deposit(maker, 7, 100), maker)
	require.NoError(t, err)
	lamportsAfterFirst := e.lamportsOf(maker)

	_, err = e.deliver(e.deposit(maker, 7, 300), maker)
	require.Error(t, err)
	assert.True(t, system.ErrAccountInUse.Is(err), "got %+v", err)

	assert.Equal(t, uint64(funds-100), e.tokensOf(maker, e.mint))
	addrs, err := Derive(e.programID, e.tokenConf, maker, e.mint, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), e.tokensOf(addrs.Escrow, e.mint))
	assert.Equal(t, lamportsAfterFirst, e.lamportsOf(maker))

	_, err = e.deliver(e.deposit(maker, 8, 300), maker)
	require.NoError(t, err, "a new seed opens a new escrow")
}

func TestSettleScenario(t *testing.T) {
	e := newEnv(t)
	maker := e.wallet(e.mint, funds)
	taker := e.wallet(e.mint, 0)
	makerLamports := e.lamportsOf(maker)
	takerLamports := e.lamportsOf(taker)

	dep := e.deposit(maker, 1, 1000)
	_, err := e.deliver(dep, maker)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), e.tokensOf(dep.Escrow, e.mint))
	assert.Equal(t, makerLamports-recordRent-vaultRent, e.lamportsOf(maker))
	assert.Equal(t, recordRent, e.lamportsOf(dep.Escrow))
	assert.Equal(t, vaultRent, e.lamportsOf(dep.Vault))

	_, err = e.deliver(e.settle(taker, maker, 1), taker)
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), e.tokensOf(taker, e.mint))
	assert.Equal(t, uint64(funds-1000), e.tokensOf(maker, e.mint))
	assert.False(t, e.exists(dep.Vault), "vault closed")
	assert.False(t, e.exists(dep.Escrow), "record account closed")
	_, err = e.tokens.Account(e.db, dep.Vault)
	assert.True(t, errors.ErrNotFound.Is(err))
	err = NewBucket().Has(e.db, dep.Escrow)
	assert.True(t, errors.ErrNotFound.Is(err))

	// Both rents return to the maker, the taker paid for its own account.
	assert.Equal(t, makerLamports, e.lamportsOf(maker))
	assert.Equal(t, takerLamports-vaultRent, e.lamportsOf(taker))

	_, err = e.deliver(e.settle(taker, maker, 1), taker)
	require.Error(t, err)
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)
	assert.Equal(t, uint64(1000), e.tokensOf(taker, e.mint))
}

func TestRefundScenario(t *testing.T) {
	e := newEnv(t)
	maker := e.wallet(e.mint, funds)
	makerLamports := e.lamportsOf(maker)

	dep := e.deposit(maker, 2, 500)
	_, err := e.deliver(dep, maker)
	require.NoError(t, err)
	assert.Equal(t, uint64(funds-500), e.tokensOf(maker, e.mint))

	_, err = e.deliver(e.refund(maker, 2), maker)
	require.NoError(t, err)

	assert.Equal(t, uint64(funds), e.tokensOf(maker, e.mint))
	assert.Equal(t, makerLamports, e.lamportsOf(maker))
	assert.False(t, e.exists(dep.Vault))
	assert.False(t, e.exists(dep.Escrow))
}

func TestRefundRecreatesMakerTokenAccount(t *testing.T) {
	e := newEnv(t)
	maker := e.wallet(e.mint, 500)
	makerLamports := e.lamportsOf(maker)

	dep := e.deposit(maker, 3, 500)
	_, err := e.deliver(dep, maker)
	require.NoError(t, err)
	_, err = e.tokens.CloseAccount(context.Background(), e.db, dep.MakerTokens, maker, x.SignedBy(&custodytest.Auth{Signer: maker}))
	require.NoError(t, err)

	_, err = e.deliver(e.refund(maker, 3), maker)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), e.tokensOf(maker, e.mint))
	// The rent of the closed account paid for the new one.
	assert.Equal(t, makerLamports, e.lamportsOf(maker))
}

func TestSettlePaysLiveBalance(t *testing.T) {
	e := newEnv(t)
	maker := e.wallet(e.mint, funds)
	donor := e.wallet(e.mint, 50)
	taker := e.wallet(e.mint, 0)

	dep := e.deposit(maker, 4, 1000)
	_, err := e.deliver(dep, maker)
	require.NoError(t, err)

	donorTokens, err := e.tokens.AssociatedAddress(e.db, donor, e.mint)
	require.NoError(t, err)
	auth := x.SignedBy(&custodytest.Auth{Signer: donor})
	require.NoError(t, e.tokens.TransferChecked(context.Background(), e.db, donorTokens, e.mint, dep.Vault, 50, decimals, auth))

	_, err = e.deliver(e.settle(taker, maker, 4), taker)
	require.NoError(t, err)
	assert.Equal(t, uint64(1050), e.tokensOf(taker, e.mint))

	supply, err := e.tokens.Mint(e.db, e.mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(funds+50), supply.Supply)
	total := e.tokensOf(maker, e.mint) + e.tokensOf(donor, e.mint) + e.tokensOf(taker, e.mint)
	assert.Equal(t, supply.Supply, total, "no tokens created or destroyed")
}

func TestDepositFailures(t *testing.T) {
	cases := map[string]struct {
		mutate  func(e *env, msg *DepositMsg) custody.Address
		wantErr *errors.Error
	}{
		"maker did not sign": {
			mutate: func(e *env, msg *DepositMsg) custody.Address {
				return custodytest.NewAddress()
			},
			wantErr: errors.ErrUnauthorized,
		},
		"decimals mismatch": {
			mutate: func(e *env, msg *DepositMsg) custody.Address {
				msg.Decimals = 9
				return msg.Maker
			},
			wantErr: token.ErrDecimals,
		},
		"insufficient tokens": {
			mutate: func(e *env, msg *DepositMsg) custody.Address {
				msg.Amount = funds + 1
				return msg.Maker
			},
			wantErr: errors.ErrInsufficientAmount,
		},
		"record address of another seed": {
			mutate: func(e *env, msg *DepositMsg) custody.Address {
				other, err := Derive(e.programID, e.tokenConf, msg.Maker, msg.Mint, msg.Seed+1)
				require.NoError(e.t, err)
				msg.Escrow = other.Escrow
				return msg.Maker
			},
			wantErr: pda.ErrSeeds,
		},
		"vault of another record": {
			mutate: func(e *env, msg *DepositMsg) custody.Address {
				other, err := Derive(e.programID, e.tokenConf, msg.Maker, msg.Mint, msg.Seed+1)
				require.NoError(e.t, err)
				msg.Vault = other.Vault
				return msg.Maker
			},
			wantErr: pda.ErrSeeds,
		},
		"source is not the maker token account": {
			mutate: func(e *env, msg *DepositMsg) custody.Address {
				msg.MakerTokens = custodytest.NewAddress()
				return msg.Maker
			},
			wantErr: pda.ErrSeeds,
		},
		"zero amount": {
			mutate: func(e *env, msg *DepositMsg) custody.Address {
				msg.Amount = 0
				return msg.Maker
			},
			wantErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			maker := e.wallet(e.mint, funds)
			makerLamports := e.lamportsOf(maker)
			msg := e.deposit(maker, 1, 100)
			signer := tc.mutate(e, msg)

			_, err := e.deliver(msg, signer)
			require.Error(t, err)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)

			assert.Equal(t, uint64(funds), e.tokensOf(maker, e.mint))
			assert.Equal(t, makerLamports, e.lamportsOf(maker))
			assert.False(t, e.exists(msg.Escrow))
			assert.False(t, e.exists(msg.Vault))
		})
	}
}

func TestClaimFailuresMoveNothing(t *testing.T) {
	cases := map[string]struct {
		msg     func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address)
		wantErr *errors.Error
	}{
		"record of another maker": {
			msg: func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address) {
				msg := e.settle(taker, taker, 1)
				real := e.settle(taker, maker, 1)
				msg.Escrow = real.Escrow
				msg.Vault = real.Vault
				return msg, taker
			},
			wantErr: pda.ErrSeeds,
		},
		"record of another seed": {
			msg: func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address) {
				msg := e.settle(taker, maker, 2)
				msg.Escrow = e.settle(taker, maker, 1).Escrow
				return msg, taker
			},
			wantErr: pda.ErrSeeds,
		},
		"record of another mint": {
			msg: func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address) {
				msg := e.settle(taker, maker, 1)
				msg.Mint = e.newMint(decimals)
				return msg, taker
			},
			wantErr: pda.ErrSeeds,
		},
		"nonexistent record of another mint": {
			msg: func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address) {
				other := e.newMint(decimals)
				msg, err := NewSettleMsg(e.programID, e.tokenConf, taker, maker, other, 1)
				require.NoError(e.t, err)
				return msg, taker
			},
			wantErr: errors.ErrNotFound,
		},
		"nonexistent record": {
			msg: func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address) {
				return e.settle(taker, maker, 99), taker
			},
			wantErr: errors.ErrNotFound,
		},
		"vault redirected": {
			msg: func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address) {
				msg := e.settle(taker, maker, 1)
				msg.Vault = msg.TakerTokens
				return msg, taker
			},
			wantErr: pda.ErrSeeds,
		},
		"payee is not the taker account": {
			msg: func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address) {
				msg := e.settle(taker, maker, 1)
				msg.TakerTokens = e.settle(maker, maker, 1).TakerTokens
				return msg, taker
			},
			wantErr: pda.ErrSeeds,
		},
		"taker did not sign": {
			msg: func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address) {
				return e.settle(taker, maker, 1), maker
			},
			wantErr: errors.ErrUnauthorized,
		},
		"refund by the taker": {
			msg: func(e *env, maker, taker custody.Address) (custody.Msg, custody.Address) {
				return e.refund(maker, 1), taker
			},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			maker := e.wallet(e.mint, funds)
			taker := e.wallet(e.mint, 0)
			dep := e.deposit(maker, 1, 1000)
			_, err := e.deliver(dep, maker)
			require.NoError(t, err)
			makerLamports := e.lamportsOf(maker)
			takerLamports := e.lamportsOf(taker)

			msg, signer := tc.msg(e, maker, taker)
			_, err = e.deliver(msg, signer)
			require.Error(t, err)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)

			assert.Equal(t, uint64(1000), e.tokensOf(dep.Escrow, e.mint))
			assert.Equal(t, uint64(0), e.tokensOf(taker, e.mint))
			assert.Equal(t, makerLamports, e.lamportsOf(maker))
			assert.Equal(t, takerLamports, e.lamportsOf(taker))
			assert.NoError(t, NewBucket().Has(e.db, dep.Escrow))
		})
	}
}

func TestTamperedBumpIsRejected(t *testing.T) {
	e := newEnv(t)
	maker := e.wallet(e.mint, funds)
	taker := e.wallet(e.mint, 0)
	dep := e.deposit(maker, 5, 100)
	_, err := e.deliver(dep, maker)
	require.NoError(t, err)

	var rec Escrow
	require.NoError(t, NewBucket().One(e.db, dep.Escrow, &rec))
	rec.Bump--
	require.NoError(t, NewBucket().Put(e.db, dep.Escrow, &rec))

	_, err = e.deliver(e.settle(taker, maker, 5), taker)
	require.Error(t, err)
	assert.True(t, pda.ErrSeeds.Is(err), "got %+v", err)
	assert.Equal(t, uint64(100), e.tokensOf(dep.Escrow, e.mint))
}

func TestDisjointEscrowsDoNotInteract(t *testing.T) {
	e := newEnv(t)
	alice := e.wallet(e.mint, funds)
	bob := e.wallet(e.mint, funds)
	taker := e.wallet(e.mint, 0)

	a := e.deposit(alice, 1, 100)
	b := e.deposit(bob, 1, 200)
	writable := func(msg custody.AccountLister) map[string]bool {
		res := make(map[string]bool)
		for _, m := range msg.Accounts() {
			if m.Writable {
				res[m.Address.String()] = true
			}
		}
		return res
	}
	for k := range writable(a) {
		assert.False(t, writable(b)[k], "escrows share writable account %s", k)
	}

	_, err := e.deliver(a, alice)
	require.NoError(t, err)
	_, err = e.deliver(b, bob)
	require.NoError(t, err)
	_, err = e.deliver(e.settle(taker, alice, 1), taker)
	require.NoError(t, err)

	assert.Equal(t, uint64(200), e.tokensOf(b.Escrow, e.mint))
	assert.Equal(t, uint64(100), e.tokensOf(taker, e.mint))
}
