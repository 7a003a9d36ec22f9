package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the recognized option surface (§6), all fields defaulted by
// Default() before a TOML file is merged over them.
type Config struct {
	Transfers    TransfersConfig    `toml:"transfers"`
	Eventstream  EventstreamConfig  `toml:"eventstream"`
	Repos        ReposConfig        `toml:"repos"`
	RepoLocker   RepoLockerConfig   `toml:"repo_locker"`
	RepoFilesTags RepoFilesTagsConfig `toml:"repo_files_tags"`
}

type TransfersConfig struct {
	UploadConcurrency   int           `toml:"upload_concurrency"`
	DownloadConcurrency int           `toml:"download_concurrency"`
	AutoretryAttempts   int           `toml:"autoretry_attempts"`
	MinTimePerFile      time.Duration `toml:"min_time_per_file"`
	ProgressThrottle    time.Duration `toml:"progress_throttle"`
}

type EventstreamConfig struct {
	ReconnectDuration time.Duration `toml:"reconnect_duration"`
	PingInterval      time.Duration `toml:"ping_interval"`
}

type AutoLockAfterConfig struct {
	Enabled  bool          `toml:"enabled"`
	Duration time.Duration `toml:"duration"`
}

type ReposConfig struct {
	DefaultAutoLockAfter AutoLockAfterConfig `toml:"default_auto_lock_after"`
	DefaultOnAppHidden   bool                `toml:"default_auto_lock_on_app_hidden"`
}

type RepoLockerConfig struct {
	LockCheckInterval time.Duration `toml:"lock_check_interval"`
}

type RepoFilesTagsConfig struct {
	SetTagsMaxRetries int `toml:"set_tags_max_retries"`
}

// Default returns the §6 default configuration.
func Default() Config {
	return Config{
		Transfers: TransfersConfig{
			UploadConcurrency:   3,
			DownloadConcurrency: 3,
			AutoretryAttempts:   5,
			MinTimePerFile:      500 * time.Millisecond,
			ProgressThrottle:    100 * time.Millisecond,
		},
		Eventstream: EventstreamConfig{
			ReconnectDuration: 3 * time.Second,
			PingInterval:      30 * time.Second,
		},
		Repos: ReposConfig{
			DefaultAutoLockAfter: AutoLockAfterConfig{Enabled: true, Duration: time.Hour},
			DefaultOnAppHidden:   false,
		},
		RepoLocker: RepoLockerConfig{
			LockCheckInterval: 10 * time.Second,
		},
		RepoFilesTags: RepoFilesTagsConfig{
			SetTagsMaxRetries: 5,
		},
	}
}

// Load reads path as TOML, merging it over Default(). A missing file is
// not an error: callers that want a bare-defaults config pass a path
// that doesn't exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	_ = meta
	return cfg, nil
}
