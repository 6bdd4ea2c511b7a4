package pda

import (
	"bytes"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func testProgram() custody.Address {
	return custody.AddressFromPublicKey(solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"))
}

func escrowSeeds(maker, mint custody.Address, seed uint64) [][]byte {
	return [][]byte{[]byte("seed"), Uint64Seed(seed), maker, mint}
}

func TestFind(t *testing.T) {
	program := testProgram()
	maker := custody.Address(bytes.Repeat([]byte{1}, 32))
	mint := custody.Address(bytes.Repeat([]byte{2}, 32))

	Convey("Given escrow seeds", t, func() {
		seeds := escrowSeeds(maker, mint, 1)
		addr, bump, err := Find(program, seeds...)
		So(err, ShouldBeNil)
		So(addr.Validate(), ShouldBeNil)

		Convey("derivation is deterministic", func() {
			again, againBump, err := Find(program, escrowSeeds(maker, mint, 1)...)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, addr)
			So(againBump, ShouldEqual, bump)
		})

		Convey("it matches solana-go", func() {
			pk, b, err := solana.FindProgramAddress(seeds, program.PublicKey())
			So(err, ShouldBeNil)
			So(pk.String(), ShouldEqual, addr.String())
			So(b, ShouldEqual, bump)
		})

		Convey("create with the bump yields the same address", func() {
			created, err := Create(program, append(seeds, []byte{bump})...)
			So(err, ShouldBeNil)
			So(created, ShouldResemble, addr)
			So(Verify(program, addr, seeds, bump), ShouldBeNil)
		})

		Convey("a different seed yields a different address", func() {
			other, _, err := Find(program, escrowSeeds(maker, mint, 2)...)
			So(err, ShouldBeNil)
			So(other.Equals(addr), ShouldBeFalse)
		})

		Convey("a different program yields a different address", func() {
			other, _, err := Find(custody.AddressFromPublicKey(solana.TokenProgramID), seeds...)
			So(err, ShouldBeNil)
			So(other.Equals(addr), ShouldBeFalse)
		})

		Convey("swapping maker and mint yields a different address", func() {
			other, _, err := Find(program, escrowSeeds(mint, maker, 1)...)
			So(err, ShouldBeNil)
			So(other.Equals(addr), ShouldBeFalse)
		})

		Convey("another bump does not verify", func() {
			err := Verify(program, addr, seeds, bump-1)
			So(ErrSeeds.Is(err), ShouldBeTrue)
		})
	})
}

func TestSeedLimits(t *testing.T) {
	program := testProgram()

	Convey("Seeds are bounded", t, func() {
		Convey("a seed longer than 32 bytes is rejected", func() {
			_, _, err := Find(program, make([]byte, MaxSeedLength+1))
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})

		Convey("too many seeds are rejected", func() {
			seeds := make([][]byte, MaxSeeds)
			_, _, err := Find(program, seeds...)
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})

		Convey("an invalid program id is rejected", func() {
			_, _, err := Find(custody.Address("short"), []byte("seed"))
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})
	})
}

func TestUint64Seed(t *testing.T) {
	Convey("Uint64Seed is little endian", t, func() {
		So(Uint64Seed(1), ShouldResemble, []byte{1, 0, 0, 0, 0, 0, 0, 0})
		So(Uint64Seed(0x0102), ShouldResemble, []byte{2, 1, 0, 0, 0, 0, 0, 0})
	})
}
