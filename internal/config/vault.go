package config

import "time"

// VaultConfig groups the document vault and share-code settings.
type VaultConfig struct {
	// ShareCodeExpiry is added to the creation time to obtain expiresAt.
	ShareCodeExpiry time.Duration
	// MinSecretLength is enforced on every raw secret, generated or supplied.
	MinSecretLength int
	// GrantTTL caps the lifetime of the grant token handed out after a
	// successful validation.  The token never outlives the share code.
	GrantTTL time.Duration

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	// PresignTTL is the validity of presigned upload and download URLs.
	PresignTTL time.Duration
}

func LoadVaultConfig() VaultConfig {
	c := VaultConfig{
		ShareCodeExpiry: envDur("SHARE_CODE_EXPIRY", 5*24*time.Hour),
		MinSecretLength: envInt("SHARE_CODE_MIN_LENGTH", 12),
		GrantTTL:        envDur("SHARE_GRANT_TTL", 30*time.Minute),
		S3Bucket:        envStr("S3_BUCKET", "vault"),
		S3Region:        envStr("S3_REGION", "us-east-1"),
		S3BaseEndpoint:  envStr("S3_BASE_ENDPOINT", "http://127.0.0.1:9000"),
		S3AccessKey:     envStr("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:     envStr("S3_SECRET_KEY", "minioadmin"),
		PresignTTL:      envDur("S3_PRESIGN_TTL", 15*time.Minute),
	}
	if c.MinSecretLength < 8 {
		c.MinSecretLength = 8
	}
	if c.GrantTTL <= 0 {
		c.GrantTTL = 30 * time.Minute
	}
	return c
}
