package app

import (
	"time"

	"github.com/adverto/adboard-backend/internal/platform/envutil"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type Config struct {
	Port            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// RedisAddr switches chat and moderation events onto the shared bus so
	// a multi-instance deployment fans them out. Empty means in-process only.
	RedisAddr string

	// ExpirySweepInterval paces the background pass that moves overdue ads
	// to EXPIRED.
	ExpirySweepInterval time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:                envutil.String("PORT", "8080"),
		JWTSecretKey:        envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:      envutil.DurationSeconds("ACCESS_TOKEN_TTL", 3600),
		RefreshTokenTTL:     envutil.DurationSeconds("REFRESH_TOKEN_TTL", 86400),
		RedisAddr:           envutil.String("REDIS_ADDR", ""),
		ExpirySweepInterval: envutil.DurationSeconds("AD_EXPIRY_SWEEP_SECONDS", 300),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	return cfg
}
