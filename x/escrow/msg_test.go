package escrow

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageValidation(t *testing.T) {
	conf := token.DefaultConfiguration()
	maker := custodytest.NewAddress()
	taker := custodytest.NewAddress()
	mint := custodytest.NewAddress()

	dep, err := NewDepositMsg(DefaultProgramID, conf, maker, mint, 3, 10, 6)
	require.NoError(t, err)
	assert.NoError(t, dep.Validate())

	noAmount := *dep
	noAmount.Amount = 0
	assert.Equal(t, "Amount", errors.FieldName(noAmount.Validate()))

	noVault := *dep
	noVault.Vault = nil
	assert.Equal(t, "Vault", errors.FieldName(noVault.Validate()))

	settle, err := NewSettleMsg(DefaultProgramID, conf, taker, maker, mint, 3)
	require.NoError(t, err)
	assert.NoError(t, settle.Validate())
	assert.Equal(t, dep.Escrow, settle.Escrow)
	assert.Equal(t, dep.Vault, settle.Vault)

	settle.TakerTokens = settle.TakerTokens[:5]
	assert.Equal(t, "TakerTokens", errors.FieldName(settle.Validate()))

	refund, err := NewRefundMsg(DefaultProgramID, conf, maker, mint, 3)
	require.NoError(t, err)
	assert.NoError(t, refund.Validate())
	assert.Equal(t, dep.MakerTokens, refund.MakerTokens)
}

func TestMessageCodec(t *testing.T) {
	dep, err := NewDepositMsg(DefaultProgramID, token.DefaultConfiguration(), custodytest.NewAddress(), custodytest.NewAddress(), 9, 10, 6)
	require.NoError(t, err)
	raw, err := dep.Marshal()
	require.NoError(t, err)

	var back DepositMsg
	require.NoError(t, back.Unmarshal(raw))
	assert.Equal(t, dep, &back)
	assert.Equal(t, "escrow/deposit", back.Path())

	viaProto, err := proto.Marshal(dep)
	require.NoError(t, err)
	assert.Equal(t, raw, viaProto)

	// decoding resets fields missing from the input
	settle := &SettleMsg{Seed: 77, Taker: custodytest.NewAddress()}
	require.NoError(t, proto.Unmarshal([]byte{0x20, 0x09}, settle))
	assert.Equal(t, &SettleMsg{Seed: 9}, settle)

	// a decimals value that does not fit a byte is refused
	bad := append([]byte(nil), raw...)
	bad = append(bad, 0x28, 0x80, 0x02)
	assert.True(t, errors.ErrOverflow.Is(back.Unmarshal(bad)))
}
