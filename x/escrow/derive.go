package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/pda"
	"github.com/iov-one/custody/x/token"
)

var seedPrefix = []byte("seed")

// Seeds returns the derivation seeds of an escrow record, without bump.
func Seeds(maker, mint custody.Address, seed uint64) [][]byte {
	return [][]byte{seedPrefix, pda.Uint64Seed(seed), maker, mint}
}

// RecordAddress derives the record address and its canonical bump.
func RecordAddress(programID, maker, mint custody.Address, seed uint64) (custody.Address, uint8, error) {
	return pda.Find(programID, Seeds(maker, mint, seed)...)
}

// Addresses are the derived accounts of one escrow.
type Addresses struct {
	Escrow custody.Address
	Bump   uint8
	Vault  custody.Address
}

// Derive computes the record and vault addresses. It does not read the
// store, so clients use it to build messages.
func Derive(programID custody.Address, tokens token.Configuration, maker, mint custody.Address, seed uint64) (*Addresses, error) {
	rec, bump, err := RecordAddress(programID, maker, mint, seed)
	if err != nil {
		return nil, err
	}
	vault, err := token.AssociatedAddress(tokens, rec, mint)
	if err != nil {
		return nil, err
	}
	return &Addresses{Escrow: rec, Bump: bump, Vault: vault}, nil
}

// NewDepositMsg builds a deposit with every account derived.
func NewDepositMsg(programID custody.Address, tokens token.Configuration, maker, mint custody.Address, seed, amount uint64, decimals uint8) (*DepositMsg, error) {
	addrs, err := Derive(programID, tokens, maker, mint, seed)
	if err != nil {
		return nil, err
	}
	makerTokens, err := token.AssociatedAddress(tokens, maker, mint)
	if err != nil {
		return nil, err
	}
	return &DepositMsg{
		Maker:       maker,
		Mint:        mint,
		Seed:        seed,
		Amount:      amount,
		Decimals:    decimals,
		Escrow:      addrs.Escrow,
		Vault:       addrs.Vault,
		MakerTokens: makerTokens,
	}, nil
}

// NewSettleMsg builds a settlement paying taker.
func NewSettleMsg(programID custody.Address, tokens token.Configuration, taker, maker, mint custody.Address, seed uint64) (*SettleMsg, error) {
	addrs, err := Derive(programID, tokens, maker, mint, seed)
	if err != nil {
		return nil, err
	}
	takerTokens, err := token.AssociatedAddress(tokens, taker, mint)
	if err != nil {
		return nil, err
	}
	return &SettleMsg{
		Taker:       taker,
		Maker:       maker,
		Mint:        mint,
		Seed:        seed,
		Escrow:      addrs.Escrow,
		Vault:       addrs.Vault,
		TakerTokens: takerTokens,
	}, nil
}

// NewRefundMsg builds a refund to the maker.
func NewRefundMsg(programID custody.Address, tokens token.Configuration, maker, mint custody.Address, seed uint64) (*RefundMsg, error) {
	addrs, err := Derive(programID, tokens, maker, mint, seed)
	if err != nil {
		return nil, err
	}
	makerTokens, err := token.AssociatedAddress(tokens, maker, mint)
	if err != nil {
		return nil, err
	}
	return &RefundMsg{
		Maker:       maker,
		Mint:        mint,
		Seed:        seed,
		Escrow:      addrs.Escrow,
		Vault:       addrs.Vault,
		MakerTokens: makerTokens,
	}, nil
}
