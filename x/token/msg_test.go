package token

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

func TestTransferMsg(t *testing.T) {
	msg := &TransferMsg{
		Source:      custodytest.NewAddress(),
		Mint:        custodytest.NewAddress(),
		Destination: custodytest.NewAddress(),
		Owner:       custodytest.NewAddress(),
		Amount:      250,
		Decimals:    6,
	}
	assert.Nil(t, msg.Validate())

	raw, err := proto.Marshal(msg)
	assert.Nil(t, err)
	var back TransferMsg
	assert.Nil(t, proto.Unmarshal(raw, &back))
	assert.Equal(t, *msg, back)

	noAmount := *msg
	noAmount.Amount = 0
	assert.FieldError(t, noAmount.Validate(), "Amount", errors.ErrAmount)
}

func TestCreateAssociatedMsg(t *testing.T) {
	conf := DefaultConfiguration()
	owner, mint := custodytest.NewAddress(), custodytest.NewAddress()
	ata, err := AssociatedAddress(conf, owner, mint)
	assert.Nil(t, err)

	msg := &CreateAssociatedMsg{Payer: custodytest.NewAddress(), Owner: owner, Mint: mint, Account: ata}
	assert.Nil(t, msg.Validate())

	raw, err := msg.Marshal()
	assert.Nil(t, err)
	var back CreateAssociatedMsg
	assert.Nil(t, back.Unmarshal(raw))
	assert.Equal(t, *msg, back)

	noAccount := *msg
	noAccount.Account = nil
	assert.FieldError(t, noAccount.Validate(), "Account", errors.ErrInput)
}
