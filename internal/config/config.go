package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultFactory is the Uniswap V3 factory on Base.
	DefaultFactory = "0x33128a8fC17869897dcE68Ed026d694621f6FDfD"
	// DefaultReference is WETH on Base.
	DefaultReference = "0x4200000000000000000000000000000000000006"
	DefaultFeeTier   = 3000
	// DefaultChainID is Base mainnet, the network of DefaultFactory and DefaultReference.
	DefaultChainID = 8453

	maxFeeTier = 1<<24 - 1
)

// Config holds the chain and subgraph settings shared by every command.
type Config struct {
	RPCURL      string
	ChainID     uint64
	SubgraphURL string
	Factory     string
	Reference   string
	FeeTier     uint32
	LogLevel    string
}

// ServeConfig adds HTTP server settings to Config.
type ServeConfig struct {
	Config
	Listen          string
	BaseURL         string
	ReferenceSymbol string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	return baseConfig(v), nil
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		Config:          baseConfig(v),
		Listen:          v.GetString("listen"),
		BaseURL:         strings.TrimRight(v.GetString("base-url"), "/"),
		ReferenceSymbol: v.GetString("reference-symbol"),
		AllowedOrigins:  getStringSlice(v, "allowed-origins"),
		RequestTimeout:  v.GetDuration("request-timeout"),
		ReadTimeout:     v.GetDuration("read-timeout"),
		WriteTimeout:    v.GetDuration("write-timeout"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("COINFRAME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("factory", DefaultFactory)
	v.SetDefault("reference", DefaultReference)
	v.SetDefault("fee-tier", DefaultFeeTier)
	v.SetDefault("chain-id", DefaultChainID)
	v.SetDefault("log-level", "info")
	v.SetDefault("listen", ":8080")
	v.SetDefault("reference-symbol", "ETH")
	v.SetDefault("allowed-origins", []string{"*"})
	v.SetDefault("request-timeout", 10*time.Second)
	v.SetDefault("read-timeout", 5*time.Second)
	v.SetDefault("write-timeout", 15*time.Second)
	v.SetDefault("shutdown-timeout", 5*time.Second)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func baseConfig(v *viper.Viper) Config {
	return Config{
		RPCURL:      v.GetString("rpc"),
		ChainID:     v.GetUint64("chain-id"),
		SubgraphURL: v.GetString("subgraph"),
		Factory:     v.GetString("factory"),
		Reference:   v.GetString("reference"),
		FeeTier:     v.GetUint32("fee-tier"),
		LogLevel:    v.GetString("log-level"),
	}
}

// Validate checks required endpoints and contract addresses.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.ChainID == 0 {
		return fmt.Errorf("chain id is required")
	}
	if c.SubgraphURL == "" {
		return fmt.Errorf("subgraph url is required")
	}
	if !common.IsHexAddress(c.Factory) {
		return fmt.Errorf("invalid factory address: %s", c.Factory)
	}
	if !common.IsHexAddress(c.Reference) {
		return fmt.Errorf("invalid reference address: %s", c.Reference)
	}
	if c.FeeTier == 0 || c.FeeTier > maxFeeTier {
		return fmt.Errorf("fee tier out of range: %d", c.FeeTier)
	}
	return nil
}

// Validate checks the server settings on top of Config.Validate.
func (c ServeConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// FactoryAddress returns the parsed factory address.
func (c Config) FactoryAddress() common.Address {
	return common.HexToAddress(c.Factory)
}

// ReferenceAddress returns the parsed reference asset address.
func (c Config) ReferenceAddress() common.Address {
	return common.HexToAddress(c.Reference)
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
