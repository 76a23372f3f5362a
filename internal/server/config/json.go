package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
	"github.com/dmitrijs2005/gophnotes/internal/timex"
)

// JsonConfig is a DTO used only for reading JSON configuration files.
// Durations accept both strings such as "1m" and integer nanoseconds.
// Pointer fields leave absent keys at their previous value.
type JsonConfig struct {
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	MasterSecret                 *string         `json:"master_secret"`
	KeyEpoch                     *uint64         `json:"key_epoch"`
	MaxNotesPerUser              *int            `json:"max_notes_per_user"`
	MaxNoteChars                 *int            `json:"max_note_chars"`
	MaxSharesPerNote             *int            `json:"max_shares_per_note"`
	ArchiveEnabled               *bool           `json:"archive_enabled"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	LogLevel                     *string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag into cfg. Without either flag nothing is loaded. A file that
// cannot be read or parsed panics.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var c JsonConfig

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, &c); err != nil {
		panic(err)
	}

	setIf(&cfg.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&cfg.DatabaseDSN, c.DatabaseDSN)
	setIf(&cfg.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		cfg.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	setIf(&cfg.MasterSecret, c.MasterSecret)
	setIf(&cfg.KeyEpoch, c.KeyEpoch)
	setIf(&cfg.MaxNotesPerUser, c.MaxNotesPerUser)
	setIf(&cfg.MaxNoteChars, c.MaxNoteChars)
	setIf(&cfg.MaxSharesPerNote, c.MaxSharesPerNote)
	setIf(&cfg.ArchiveEnabled, c.ArchiveEnabled)
	setIf(&cfg.S3RootUser, c.S3RootUser)
	setIf(&cfg.S3RootPassword, c.S3RootPassword)
	setIf(&cfg.S3Bucket, c.S3Bucket)
	setIf(&cfg.S3Region, c.S3Region)
	setIf(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&cfg.LogLevel, c.LogLevel)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
