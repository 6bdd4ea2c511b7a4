package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/escrow"
	"github.com/iov-one/custody/x/token"
)

// deriveCmd prints the addresses a deposit by maker for mint and seed
// would create. No state is read.
func deriveCmd(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("derive", flag.ContinueOnError)
	fs.SetOutput(out)
	var (
		programFl = fs.String("program", escrow.DefaultProgramID.String(), "escrow program address")
		makerFl   = fs.String("maker", "", "maker wallet address (required)")
		mintFl    = fs.String("mint", "", "token mint address (required)")
		seedFl    = fs.Uint64("seed", 0, "deposit seed chosen by the maker")
	)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	program, err := custody.ParseAddress(*programFl)
	if err != nil {
		return errors.Field("program", err, "invalid address")
	}
	maker, err := custody.ParseAddress(*makerFl)
	if err != nil {
		return errors.Field("maker", err, "invalid address")
	}
	mint, err := custody.ParseAddress(*mintFl)
	if err != nil {
		return errors.Field("mint", err, "invalid address")
	}

	addrs, err := escrow.Derive(program, token.DefaultConfiguration(), maker, mint, *seedFl)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "escrow\t%s\n", addrs.Escrow)
	fmt.Fprintf(out, "bump\t%d\n", addrs.Bump)
	fmt.Fprintf(out, "vault\t%s\n", addrs.Vault)
	return nil
}
