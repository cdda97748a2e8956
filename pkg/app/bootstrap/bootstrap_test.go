package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/config"
)

const testCatalog = `
chains:
  - id: 1
    name: solana
    family: ledger
    gas_decimals: 9
    canonical: swimusd
    tokens:
      - project: swimusd
        address: BJUH9GJLaMSLV1E7B3SQLCy9eCfyr6zsrwGcpS2MkqR1
        decimals: 6
  - id: 2
    name: ethereum
    family: evm
    gas_decimals: 18
    canonical: swimusd
    tokens:
      - project: swimusd
        address: "0x0000000000000000000000000000000000000003"
        decimals: 8
  - id: 4
    name: bsc
    family: evm
    gas_decimals: 18
    canonical: swimusd
    tokens:
      - project: swimusd
        address: "0x0000000000000000000000000000000000000001"
        decimals: 8
`

func testConfig(key config.KeyConfig) *config.Config {
	return &config.Config{
		EVM: config.EVMConfig{
			Key: key,
			Chains: map[string]config.EVMChainConfig{
				"bsc": {
					WormholeChainID: 4,
					ChainID:         97,
					RPCURL:          "http://127.0.0.1:1",
					RoutingContract: "0x0000000000000000000000000000000000000009",
				},
			},
		},
	}
}

func newFactory(t *testing.T, cfg *config.Config) chain.Factory {
	t.Helper()
	catalog, err := asset.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	factory, err := NewAdapterFactory(cfg, catalog, zap.NewNop())
	require.NoError(t, err)
	return factory
}

func TestAdapterFactory_EVMWithMnemonic(t *testing.T) {
	factory := newFactory(t, testConfig(config.KeyConfig{
		Mnemonic: "test test test test test test test test test test test junk",
		HDPath:   "m/44'/60'/0'/0/0",
	}))

	adapter, err := factory(context.Background(), asset.ChainBSC)
	require.NoError(t, err)
	defer adapter.Close()

	assert.Equal(t, asset.FamilyEVM, adapter.Family())
	assert.Equal(t, asset.ChainBSC, adapter.ChainID())
	owner, err := adapter.Owner()
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", owner)
	assert.Equal(t, "0x0000000000000000000000000000000000000009", adapter.RoutingAddress())
}

func TestAdapterFactory_NoKeyLeavesWalletDisconnected(t *testing.T) {
	factory := newFactory(t, testConfig(config.KeyConfig{}))

	adapter, err := factory(context.Background(), asset.ChainBSC)
	require.NoError(t, err)
	defer adapter.Close()

	_, err = adapter.Owner()
	require.ErrorIs(t, err, chain.ErrWalletNotConnected)
}

func TestAdapterFactory_UnconfiguredChains(t *testing.T) {
	factory := newFactory(t, testConfig(config.KeyConfig{}))

	_, err := factory(context.Background(), asset.ChainEthereum)
	require.ErrorIs(t, err, asset.ErrUnknownChain)

	_, err = factory(context.Background(), asset.ChainSolana)
	require.ErrorIs(t, err, asset.ErrUnknownChain)

	_, err = factory(context.Background(), asset.ChainPolygon)
	require.ErrorIs(t, err, asset.ErrUnknownChain)
}

func TestNewAdapterFactory_BadKey(t *testing.T) {
	catalog, err := asset.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	_, err = NewAdapterFactory(testConfig(config.KeyConfig{PrivateKey: "zz"}), catalog, zap.NewNop())
	require.Error(t, err)
}
