package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/swap"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"swap", "serve", "balances", "vaa", "migrate"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCommand_InvalidOutput(t *testing.T) {
	_, err := execute(t, "--output", "yaml", "vaa", "bsc", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output")
}

func TestArgsValidation(t *testing.T) {
	_, err := execute(t, "vaa", "bsc")
	require.Error(t, err)

	_, err = execute(t, "migrate", "sideways")
	require.Error(t, err)

	_, err = execute(t, "balances", "bsc", "usdc")
	require.Error(t, err)

	_, err = execute(t, "swap", "--source-chain", "bsc")
	require.Error(t, err)
}

func TestSwapOptions_Request(t *testing.T) {
	opts := &swapOptions{
		rootOptions: &rootOptions{},
		SourceChain: "bsc",
		SourceToken: "usdc",
		TargetChain: "1",
		TargetToken: "usdt",
		Amount:      "25.5",
		MaxFee:      "0.5",
	}
	req, err := opts.request()
	require.NoError(t, err)
	assert.Equal(t, asset.ChainBSC, req.SourceChain)
	assert.Equal(t, asset.ChainSolana, req.TargetChain)
	assert.Equal(t, "25.5", req.InputAmount.String())

	opts.Amount = "0"
	_, err = opts.request()
	require.ErrorIs(t, err, swap.ErrInvalidRequest)

	opts.Amount = "lots"
	_, err = opts.request()
	require.Error(t, err)
}

func TestWriteSnapshot_Text(t *testing.T) {
	seq := uint64(9)
	var out bytes.Buffer
	require.NoError(t, writeSnapshot(&out, "text", swap.Snapshot{
		ID:       "abc",
		Route:    "evm-to-evm",
		State:    swap.StateFailed,
		FailedIn: swap.StateAwaitingTargetEvent,
		Error:    "timed out",
		Sequence: &seq,
		Records:  swap.TxRecords{{Chain: asset.ChainBSC, TxID: "0x1"}},
	}))
	text := out.String()
	assert.Contains(t, text, "sequence 9")
	assert.Contains(t, text, "tx       bsc 0x1")
	assert.Contains(t, text, "failed   in awaiting_target_event: timed out")
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PROPELLER_TEST_ENV_VALUE=loaded\n"), 0o600))
	t.Setenv("PROPELLER_TEST_ENV_VALUE", "")
	require.NoError(t, os.Unsetenv("PROPELLER_TEST_ENV_VALUE"))
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("PROPELLER_TEST_ENV_VALUE"))
}

func TestVAACommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/signed_vaa/4/0000000000000000000000000000000000000000000000000000000000000007/31", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"vaaBytes": base64.StdEncoding.EncodeToString([]byte{0xde, 0xad}),
		})
	}))
	defer srv.Close()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
logging:
  level: error
  output_path: %s
evm:
  chains:
    bsc:
      wormhole_chain_id: 4
      chain_id: 97
      rpc_url: http://127.0.0.1:1
      routing_contract: "0x0000000000000000000000000000000000000001"
      token_bridge: "0x0000000000000000000000000000000000000007"
wormhole:
  rpc_url: %s
`, filepath.Join(t.TempDir(), "log.json"), srv.URL)), 0o600))

	out, err := execute(t, "--config", cfgPath, "vaa", "bsc", "31")
	require.NoError(t, err)
	assert.Equal(t, "dead\n", out)
}
