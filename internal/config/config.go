package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	LogFile         string        `mapstructure:"log_file"`
	BackupSuffix    string        `mapstructure:"backup_suffix"`
	DeletePrefix    string        `mapstructure:"delete_prefix"`
	IgnoreList      []string      `mapstructure:"ignore_list"`
	Watch           bool          `mapstructure:"watch"`
	Debounce        time.Duration `mapstructure:"debounce"`
	BufferSize      int           `mapstructure:"buffer_size"`
	WriterIdleWait  time.Duration `mapstructure:"writer_idle_wait"`
	WriterRetryWait time.Duration `mapstructure:"writer_retry_wait"`
	DrainOnShutdown bool          `mapstructure:"drain_on_shutdown"`
	DrainTimeout    time.Duration `mapstructure:"drain_timeout"`
	CreateTimeout   time.Duration `mapstructure:"create_timeout"`
	APIPort         int           `mapstructure:"api_port"`
	DBPath          string        `mapstructure:"db_path"`
}

var Default = Config{
	PollInterval:    time.Second,
	LogFile:         "FolderBackupLog.txt",
	BackupSuffix:    ".bak",
	DeletePrefix:    "delete_",
	IgnoreList:      []string{},
	Watch:           true,
	Debounce:        100 * time.Millisecond,
	BufferSize:      100,
	WriterIdleWait:  5 * time.Millisecond,
	WriterRetryWait: time.Millisecond,
	DrainOnShutdown: true,
	DrainTimeout:    5 * time.Second,
	CreateTimeout:   10 * time.Second,
	APIPort:         9091,
	DBPath:          "history.db",
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".hotbackup")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	return LoadFrom(configDir)
}

// LoadFrom reads config.yaml from configDir, if present, on top of Default.
// HOTBACKUP_* environment variables override both. A relative db_path is
// resolved against configDir.
func LoadFrom(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault("poll_interval", Default.PollInterval)
	v.SetDefault("log_file", Default.LogFile)
	v.SetDefault("backup_suffix", Default.BackupSuffix)
	v.SetDefault("delete_prefix", Default.DeletePrefix)
	v.SetDefault("ignore_list", Default.IgnoreList)
	v.SetDefault("watch", Default.Watch)
	v.SetDefault("debounce", Default.Debounce)
	v.SetDefault("buffer_size", Default.BufferSize)
	v.SetDefault("writer_idle_wait", Default.WriterIdleWait)
	v.SetDefault("writer_retry_wait", Default.WriterRetryWait)
	v.SetDefault("drain_on_shutdown", Default.DrainOnShutdown)
	v.SetDefault("drain_timeout", Default.DrainTimeout)
	v.SetDefault("create_timeout", Default.CreateTimeout)
	v.SetDefault("api_port", Default.APIPort)
	v.SetDefault("db_path", Default.DBPath)

	v.SetEnvPrefix("HOTBACKUP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DeletePrefix == "" {
		return nil, fmt.Errorf("delete_prefix must not be empty")
	}

	if cfg.DBPath != "" && !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(configDir, cfg.DBPath)
	}

	return &cfg, nil
}
