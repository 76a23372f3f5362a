package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// envFiles are loaded by parseEnv when present. Variables already set in the
// process environment win over file values.
var envFiles = []string{".env"}

// parseEnv overlays secrets and storage settings from the environment.
// A missing .env file is not an error; malformed numeric values panic.
func parseEnv(cfg *Config) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				panic(err)
			}
		}
	}

	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.SecretKey, "JWT_SECRET")
	setString(&cfg.MasterSecret, "NOTES_MASTER_SECRET")
	setString(&cfg.S3RootUser, "S3_ROOT_USER")
	setString(&cfg.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&cfg.S3Bucket, "S3_BUCKET")

	if v := os.Getenv("NOTES_KEY_EPOCH"); v != "" {
		epoch, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			panic(err)
		}
		cfg.KeyEpoch = epoch
	}
	if v := os.Getenv("NOTES_ARCHIVE"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.ArchiveEnabled = enabled
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
