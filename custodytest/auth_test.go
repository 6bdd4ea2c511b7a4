package custodytest

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

func TestCtxAuth(t *testing.T) {
	a, b := NewAddress(), NewAddress()
	auth := &CtxAuth{Key: "auth"}

	ctx := context.Background()
	assert.Equal(t, false, auth.HasAddress(ctx, a))

	ctx = auth.SetSigners(ctx, a)
	assert.Equal(t, true, auth.HasAddress(ctx, a))
	assert.Equal(t, false, auth.HasAddress(ctx, b))
	assert.Equal(t, []custody.Address{a}, auth.GetSigners(ctx))
}

func TestAuth(t *testing.T) {
	a, b := NewAddress(), NewAddress()
	auth := &Auth{Signer: a}
	assert.Equal(t, true, auth.HasAddress(context.Background(), a))
	assert.Equal(t, false, auth.HasAddress(context.Background(), b))
}

func TestDecoratedHandler(t *testing.T) {
	h := &Handler{DeliverErr: errors.ErrUnauthorized}
	d := &Decorator{}
	dh := Decorate(h, d)

	_, err := dh.Check(context.Background(), nil, &Tx{})
	assert.Nil(t, err)
	_, err = dh.Deliver(context.Background(), nil, &Tx{})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Equal(t, 2, h.CallCount())
	assert.Equal(t, 1, d.CheckCallCount())
	assert.Equal(t, 1, d.DeliverCallCount())

	d.CheckErr = errors.ErrState
	_, err = dh.Check(context.Background(), nil, &Tx{})
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, 1, h.CheckCallCount())
}
