// Package config merges config file, environment variables, and flags
// for the three indexer stages. Environment variables use the
// POOLSTATS_ prefix with dashes replaced by underscores.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RunConfig configures the chain capture stage.
type RunConfig struct {
	RPCURL            string
	FromBlock         uint64
	ToBlock           uint64
	Factories         []string
	Pools             []string
	BatchSize         uint64
	Out               string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
}

// ProcessConfig configures the replay stage.
type ProcessConfig struct {
	Input       string
	PostgresDSN string
	BatchSize   int
	CursorFile  string
	CursorName  string
	LogLevel    string
}

// QueryConfig configures the read-only query commands.
type QueryConfig struct {
	PostgresDSN string
	LogLevel    string
}

func newViper(flags *pflag.FlagSet, cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

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

// LoadRun merges settings for the run command.
func LoadRun(cfgFile string, flags *pflag.FlagSet) (RunConfig, error) {
	v, err := newViper(flags, cfgFile)
	if err != nil {
		return RunConfig{}, err
	}

	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("out", "./data/logs.jsonl")
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	return RunConfig{
		RPCURL:            v.GetString("rpc"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		Factories:         getStringSlice(v, "factory"),
		Pools:             getStringSlice(v, "pool"),
		BatchSize:         v.GetUint64("batch-size"),
		Out:               v.GetString("out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}, nil
}

// LoadProcess merges settings for the process command.
func LoadProcess(cfgFile string, flags *pflag.FlagSet) (ProcessConfig, error) {
	v, err := newViper(flags, cfgFile)
	if err != nil {
		return ProcessConfig{}, err
	}

	v.SetDefault("in", "./data/logs.jsonl")
	v.SetDefault("flush-size", 500)
	v.SetDefault("cursor-name", "default")
	v.SetDefault("log-level", "info")

	return ProcessConfig{
		Input:       v.GetString("in"),
		PostgresDSN: v.GetString("pg-dsn"),
		BatchSize:   v.GetInt("flush-size"),
		CursorFile:  v.GetString("cursor-file"),
		CursorName:  v.GetString("cursor-name"),
		LogLevel:    v.GetString("log-level"),
	}, nil
}

// LoadQuery merges settings for the query commands.
func LoadQuery(cfgFile string, flags *pflag.FlagSet) (QueryConfig, error) {
	v, err := newViper(flags, cfgFile)
	if err != nil {
		return QueryConfig{}, err
	}

	v.SetDefault("log-level", "info")

	return QueryConfig{
		PostgresDSN: v.GetString("pg-dsn"),
		LogLevel:    v.GetString("log-level"),
	}, nil
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
