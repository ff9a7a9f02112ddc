package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap/zapcore"

	"github.com/commitd-io/commitd/metrics"
	"github.com/commitd-io/commitd/util"
)

// Constants for config default values
const (
	defaultLogLevel       = zapcore.DebugLevel
	defaultLogDirname     = "logs"
	defaultLogFilename    = "commitd.log"
	defaultConfigFileName = "commitd.conf"
	defaultDataDirname    = "data"
	// commitments live until consumed by default; expiry is an opt-in policy
	defaultCommitmentTTL = 0 * time.Second
	defaultSweepInterval = 5 * time.Minute
)

var (
	//   C:\Users\<username>\AppData\Local\Commitd on Windows
	//   ~/.commitd on Linux
	//   ~/Users/<username>/Library/Application Support/Commitd on MacOS
	DefaultCommitdDir = btcutil.AppDataDir("commitd", false)

	DefaultDataDir = DataDir(DefaultCommitdDir)
)

// Config is the main config for the commitd cli command
type Config struct {
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal"`
	// StrictProofs requires an authorization proof even for self-commits;
	// with it off, a caller committing for itself is trivially authorized
	StrictProofs  bool          `long:"strictproofs" description:"Require an authorization proof even when the caller commits for itself"`
	CommitmentTTL time.Duration `long:"commitmentttl" description:"Age after which an unconsumed commitment expires; 0 disables expiry"`
	SweepInterval time.Duration `long:"sweepinterval" description:"The interval between expiry sweeps of the commitment store"`

	DatabaseConfig *DBConfig `group:"dbconfig" namespace:"dbconfig"`

	Metrics *metrics.Config `group:"metrics" namespace:"metrics"`
}

func DefaultConfigWithHome(homePath string) Config {
	cfg := Config{
		LogLevel:       defaultLogLevel.String(),
		StrictProofs:   false,
		CommitmentTTL:  defaultCommitmentTTL,
		SweepInterval:  defaultSweepInterval,
		DatabaseConfig: DefaultDBConfigWithHomePath(homePath),
		Metrics:        metrics.DefaultRegistryConfig(),
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return cfg
}

func DefaultConfig() Config {
	return DefaultConfigWithHome(DefaultCommitdDir)
}

func CfgFile(homePath string) string {
	return filepath.Join(homePath, defaultConfigFileName)
}

func LogDir(homePath string) string {
	return filepath.Join(homePath, defaultLogDirname)
}

func LogFile(homePath string) string {
	return filepath.Join(LogDir(homePath), defaultLogFilename)
}

func DataDir(homePath string) string {
	return filepath.Join(homePath, defaultDataDirname)
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Load configuration file overwriting defaults with any specified options
func LoadConfig(homePath string) (*Config, error) {
	// The home directory is required to have a configuration file with a specific name
	// under it.
	cfgFile := CfgFile(homePath)
	if !util.FileExists(cfgFile) {
		return nil, fmt.Errorf("specified config file does "+
			"not exist in %s", cfgFile)
	}

	// Next, load any additional configuration options from the file.
	var cfg Config
	fileParser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(fileParser).ParseFile(cfgFile)
	if err != nil {
		return nil, err
	}

	// Make sure everything we just loaded makes sense.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the given configuration to be sane. This makes sure no
// illegal values or a combination of values are set.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.CommitmentTTL < 0 {
		return fmt.Errorf("commitment TTL cannot be negative, got %v", cfg.CommitmentTTL)
	}

	if cfg.CommitmentTTL > 0 && cfg.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive when expiry is enabled, got %v", cfg.SweepInterval)
	}

	if cfg.DatabaseConfig == nil {
		return fmt.Errorf("database config cannot be empty")
	}

	if cfg.Metrics == nil {
		return fmt.Errorf("metrics configuration cannot be empty")
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics configuration validation failed: %w", err)
	}

	return nil
}
