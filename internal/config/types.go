// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

// Config represents the complete application configuration
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Git      GitConfig      `mapstructure:"git"`
}

// StoreConfig holds card store settings
type StoreConfig struct {
	Path string `mapstructure:"path"` // Root directory of the card store
}

// DatabaseConfig holds index database connection settings
type DatabaseConfig struct {
	Type        string `mapstructure:"type"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// GitConfig holds git versioning configuration
type GitConfig struct {
	Author             string `mapstructure:"author"`
	Email              string `mapstructure:"email"`
	AutocommitInterval int    `mapstructure:"autocommit_interval_minutes"` // 0 disables the scheduler
}
