package std

import (
	"encoding/json"
	"fmt"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/escrow"
	"github.com/iov-one/custody/x/system"
	"github.com/iov-one/custody/x/token"
	"github.com/iov-one/custody/x/utils"
	"github.com/prometheus/client_golang/prometheus"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// devLamports funds the dev wallet with 10 SOL worth of lamports.
	devLamports = 10 * 1000000000
	devDecimals = 6
	devTokens   = 1000000 * 1000000
)

// GenInitOptions produces the app_state for a dev chain: default
// configuration, one wallet with lamports, one mint and a token
// balance for the wallet.
//
// args may hold the wallet address. If missing, a key is generated and
// printed to stdout.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var wallet custody.Address
	if len(args) > 0 {
		addr, err := custody.ParseAddress(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "wallet")
		}
		wallet = addr
	} else {
		key := crypto.GenPrivateKey()
		wallet = key.Address()
		fmt.Println("Generated wallet key:", key.Solana().String())
	}
	mint := crypto.GenPrivateKey().Address()

	state := map[string]interface{}{
		"conf": map[string]interface{}{
			"system": system.DefaultConfiguration(),
			"token":  token.DefaultConfiguration(),
			"escrow": escrow.Configuration{ProgramID: escrow.DefaultProgramID},
		},
		"system": map[string]interface{}{
			"accounts": []system.GenesisAccount{
				{Address: wallet, Lamports: devLamports},
			},
		},
		"token": map[string]interface{}{
			"mints": []token.GenesisMint{
				{Address: mint, Decimals: devDecimals, MintAuthority: wallet},
			},
			"accounts": []token.GenesisAccount{
				{Owner: wallet, Mint: mint, Amount: devTokens},
			},
		},
	}
	return json.MarshalIndent(state, "", "  ")
}

// GenerateApp is used to create the application for the server start
// command, persisting state under dbPath. The returned gatherer exposes
// the transaction metrics.
func GenerateApp(dbPath string, logger log.Logger, debug bool) (abci.Application, prometheus.Gatherer, error) {
	metrics := utils.NewMetrics()
	stack := Stack(metrics)
	application, err := Application(Name, stack, dbPath, debug)
	if err != nil {
		return nil, nil, err
	}
	application.WithLogger(logger)
	return application, metrics.Registry(), nil
}
