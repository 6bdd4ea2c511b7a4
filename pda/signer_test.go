package pda

import (
	"bytes"
	"context"
	"testing"

	"github.com/iov-one/custody"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSigner(t *testing.T) {
	program := testProgram()
	maker := custody.Address(bytes.Repeat([]byte{3}, 32))
	mint := custody.Address(bytes.Repeat([]byte{4}, 32))
	ctx := context.Background()

	Convey("Given a derived escrow address", t, func() {
		seeds := escrowSeeds(maker, mint, 7)
		addr, bump, err := Find(program, seeds...)
		So(err, ShouldBeNil)

		Convey("the signer authorizes only that address", func() {
			s, err := NewSigner(program, addr, seeds, bump)
			So(err, ShouldBeNil)
			So(s.Authorizes(ctx, addr), ShouldBeTrue)
			So(s.Authorizes(ctx, maker), ShouldBeFalse)
			So(s.Address(), ShouldResemble, addr)
			So(s.Bump(), ShouldEqual, bump)
			So(s.verify(), ShouldBeNil)
		})

		Convey("the signer does not share memory with the seeds", func() {
			s, err := NewSigner(program, addr, seeds, bump)
			So(err, ShouldBeNil)
			seeds[1][0] ^= 0xFF
			So(s.Authorizes(ctx, addr), ShouldBeTrue)
		})

		Convey("seeds of another escrow are rejected", func() {
			_, err := NewSigner(program, addr, escrowSeeds(maker, mint, 8), bump)
			So(ErrSeeds.Is(err), ShouldBeTrue)
		})

		Convey("a wrong bump is rejected", func() {
			_, err := NewSigner(program, addr, seeds, bump-1)
			So(ErrSeeds.Is(err), ShouldBeTrue)
		})

		Convey("a zero signer authorizes nothing", func() {
			var s *Signer
			So(s.Authorizes(ctx, addr), ShouldBeFalse)
			So((&Signer{}).Authorizes(ctx, nil), ShouldBeFalse)
			So(ErrSeeds.Is((&Signer{}).verify()), ShouldBeTrue)
		})

		Convey("a signer not built from its seeds authorizes nothing", func() {
			forged := &Signer{programID: program, address: addr, seeds: [][]byte{{bump}}}
			So(forged.Authorizes(ctx, addr), ShouldBeFalse)
		})
	})
}
