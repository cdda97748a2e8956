package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Swap       SwapConfig       `mapstructure:"swap"`
	EVM        EVMConfig        `mapstructure:"evm"`
	Solana     SolanaConfig     `mapstructure:"solana"`
	Wormhole   WormholeConfig   `mapstructure:"wormhole"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Shutdown   ShutdownConfig   `mapstructure:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig contains database connection settings. The swap journal is
// disabled when Host is empty.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// SwapConfig contains orchestrator settings
type SwapConfig struct {
	AssetsFile         string        `mapstructure:"assets_file"`
	TargetTimeout      time.Duration `mapstructure:"target_timeout"`
	SourceEventTimeout time.Duration `mapstructure:"source_event_timeout"`
	BalanceTTL         time.Duration `mapstructure:"balance_ttl"`
}

// KeyConfig selects a signing key: either a raw private key or a mnemonic
// with a derivation path.
type KeyConfig struct {
	PrivateKey string `mapstructure:"private_key"`
	Mnemonic   string `mapstructure:"mnemonic"`
	Passphrase string `mapstructure:"passphrase"`
	HDPath     string `mapstructure:"hd_path"`
}

// Configured reports whether any key material is present.
func (k *KeyConfig) Configured() bool {
	return k.PrivateKey != "" || k.Mnemonic != ""
}

// EVMConfig contains the shared EVM signer and per-chain settings
type EVMConfig struct {
	Key    KeyConfig                 `mapstructure:"key"`
	Chains map[string]EVMChainConfig `mapstructure:"chains"`
}

// EVMChainConfig contains one EVM chain's client settings
type EVMChainConfig struct {
	WormholeChainID uint16        `mapstructure:"wormhole_chain_id"`
	ChainID         int64         `mapstructure:"chain_id"`
	RPCURL          string        `mapstructure:"rpc_url"`
	RoutingContract string        `mapstructure:"routing_contract"`
	WormholeBridge  string        `mapstructure:"wormhole_bridge"`
	TokenBridge     string        `mapstructure:"token_bridge"`
	GasLimit        uint64        `mapstructure:"gas_limit"`
	MaxGasPrice     string        `mapstructure:"max_gas_price"`
	PollingInterval time.Duration `mapstructure:"polling_interval"`
	Confirmations   uint64        `mapstructure:"confirmations"`
}

// SolanaConfig contains ledger chain client settings
type SolanaConfig struct {
	Key              KeyConfig            `mapstructure:"key"`
	RPCURL           string               `mapstructure:"rpc_url"`
	WSURL            string               `mapstructure:"ws_url"`
	WormholeChainID  uint16               `mapstructure:"wormhole_chain_id"`
	RoutingProgram   string               `mapstructure:"routing_program"`
	RoutingState     string               `mapstructure:"routing_state"`
	TwoPoolProgram   string               `mapstructure:"two_pool_program"`
	Pool             PoolConfig           `mapstructure:"pool"`
	Wormhole         SolanaWormholeConfig `mapstructure:"wormhole"`
	Commitment       string               `mapstructure:"commitment"`
	ComputeUnitLimit uint32               `mapstructure:"compute_unit_limit"`
	AddMaxFee        uint64               `mapstructure:"add_max_fee"`
	FinalLogMarkers  []string             `mapstructure:"final_log_markers"`
	ConfirmTimeout   time.Duration        `mapstructure:"confirm_timeout"`
	PollingInterval  time.Duration        `mapstructure:"polling_interval"`
}

// PoolConfig describes the two-asset liquidity pool used for conversion
type PoolConfig struct {
	TokenAccounts        []string `mapstructure:"token_accounts"`
	GovernanceFeeAccount string   `mapstructure:"governance_fee_account"`
}

// SolanaWormholeConfig contains the bridge program addresses on the ledger chain
type SolanaWormholeConfig struct {
	Bridge string `mapstructure:"bridge"`
	Portal string `mapstructure:"portal"`
}

// WormholeConfig contains guardian RPC settings for VAA lookups
type WormholeConfig struct {
	RPCURL        string        `mapstructure:"rpc_url"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxRetries    uint64        `mapstructure:"max_retries"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PROPELLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for name, chain := range config.EVM.Chains {
		config.EVM.Chains[name] = applyEVMChainDefaults(chain)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// Database defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.database", "propeller")

	// Swap defaults
	v.SetDefault("swap.assets_file", "assets.yaml")
	v.SetDefault("swap.target_timeout", "10m")
	v.SetDefault("swap.source_event_timeout", "5m")
	v.SetDefault("swap.balance_ttl", "30s")

	// Key defaults
	v.SetDefault("evm.key.hd_path", "m/44'/60'/0'/0/0")
	v.SetDefault("solana.key.hd_path", "m/44'/501'/0'/0'")

	// Solana defaults
	v.SetDefault("solana.wormhole_chain_id", 1)
	v.SetDefault("solana.commitment", "confirmed")
	v.SetDefault("solana.compute_unit_limit", 350000)
	v.SetDefault("solana.add_max_fee", 100000)
	v.SetDefault("solana.confirm_timeout", "90s")
	v.SetDefault("solana.polling_interval", "2s")
	v.SetDefault("solana.final_log_markers", []string{
		"Instruction: PropellerProcessSwimPayload",
		"Instruction: ProcessSwimPayload",
	})

	// Wormhole defaults. rpc_url is registered so PROPELLER_WORMHOLE_RPC_URL binds.
	v.SetDefault("wormhole.rpc_url", "")
	v.SetDefault("wormhole.retry_interval", "1s")
	v.SetDefault("wormhole.max_retries", 10)

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")

	// Shutdown defaults
	v.SetDefault("shutdown.timeout", "30s")
}

// Map-valued sections bypass viper defaults, so chain entries get theirs here.
func applyEVMChainDefaults(c EVMChainConfig) EVMChainConfig {
	if c.GasLimit == 0 {
		c.GasLimit = 500000
	}
	if c.PollingInterval == 0 {
		c.PollingInterval = 5 * time.Second
	}
	if c.Confirmations == 0 {
		c.Confirmations = 1
	}
	return c
}

func validate(config *Config) error {
	if config.Swap.AssetsFile == "" {
		return fmt.Errorf("swap.assets_file is required")
	}
	if config.Swap.TargetTimeout <= 0 {
		return fmt.Errorf("swap.target_timeout must be positive")
	}
	for name, chain := range config.EVM.Chains {
		if chain.RPCURL == "" {
			return fmt.Errorf("evm.chains.%s.rpc_url is required", name)
		}
		if chain.WormholeChainID == 0 {
			return fmt.Errorf("evm.chains.%s.wormhole_chain_id is required", name)
		}
		if chain.ChainID == 0 {
			return fmt.Errorf("evm.chains.%s.chain_id is required", name)
		}
		if chain.RoutingContract == "" {
			return fmt.Errorf("evm.chains.%s.routing_contract is required", name)
		}
		if chain.PollingInterval <= 0 {
			return fmt.Errorf("evm.chains.%s.polling_interval must be positive", name)
		}
	}
	if config.Solana.RPCURL != "" {
		if config.Solana.RoutingProgram == "" {
			return fmt.Errorf("solana.routing_program is required")
		}
		if len(config.Solana.Pool.TokenAccounts) != 0 && len(config.Solana.Pool.TokenAccounts) != 2 {
			return fmt.Errorf("solana.pool.token_accounts must list exactly two accounts")
		}
		if config.Solana.PollingInterval <= 0 {
			return fmt.Errorf("solana.polling_interval must be positive")
		}
		if config.Solana.ConfirmTimeout <= 0 {
			return fmt.Errorf("solana.confirm_timeout must be positive")
		}
	}
	if config.EVM.Key.PrivateKey != "" && config.EVM.Key.Mnemonic != "" {
		return fmt.Errorf("evm.key: set either private_key or mnemonic, not both")
	}
	if config.Solana.Key.PrivateKey != "" && config.Solana.Key.Mnemonic != "" {
		return fmt.Errorf("solana.key: set either private_key or mnemonic, not both")
	}
	return nil
}

// EVMChainByWormholeID returns the configured EVM chain with the given bridge chain id.
func (c *EVMConfig) EVMChainByWormholeID(id uint16) (string, EVMChainConfig, bool) {
	for name, chain := range c.Chains {
		if chain.WormholeChainID == id {
			return name, chain, true
		}
	}
	return "", EVMChainConfig{}, false
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
