package server

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

const testAppState = `{
	"conf": {"system": {"lamports_per_byte_year": 3480, "exemption_threshold": 2}},
	"system": {"accounts": []}
}`

func staticOptions(args []string) (json.RawMessage, error) {
	return json.RawMessage(testAppState), nil
}

func writeTendermintGenesis(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "genesis.json")
	doc := `{"genesis_time": "2019-04-01T00:00:00Z", "chain_id": "test-chain", "validators": []}`
	require.NoError(t, ioutil.WriteFile(path, []byte(doc), 0600))
	return path
}

func TestInitCmd(t *testing.T) {
	home, cleanup := tempHome(t)
	defer cleanup()
	genesis := writeTendermintGenesis(t, home)

	err := InitCmd(staticOptions, log.NewNopLogger(), home, []string{"-genesis", genesis})
	require.NoError(t, err)

	conf, err := LoadConfig(filepath.Join(home, ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), conf)

	bz, err := ioutil.ReadFile(genesis)
	require.NoError(t, err)
	var doc GenesisDoc
	require.NoError(t, json.Unmarshal(bz, &doc))
	assert.Equal(t, `"test-chain"`, string(doc["chain_id"]))
	assert.JSONEq(t, testAppState, string(doc["app_state"]))

	require.NoError(t, ValidateGenesis(system.Initializer{}, []string{genesis}))
}

func TestInitCmdMissingGenesis(t *testing.T) {
	home, cleanup := tempHome(t)
	defer cleanup()

	err := InitCmd(staticOptions, log.NewNopLogger(), home, []string{"-genesis", filepath.Join(home, "nope.json")})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestValidateGenesisRejectsBadState(t *testing.T) {
	home, cleanup := tempHome(t)
	defer cleanup()

	path := filepath.Join(home, "genesis.json")
	bad := `{"chain_id": "test-chain", "app_state": {"system": {"accounts": []}}}`
	require.NoError(t, ioutil.WriteFile(path, []byte(bad), 0600))

	assert.Error(t, ValidateGenesis(system.Initializer{}, []string{path}))
}
