package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultDailyBundleLimit = 10
	DefaultUserCacheSize    = 1024
)

type Config struct {
	Port        string
	DatabaseURL string
	AppEnv      string
	BaseURL     string
	FrontendURL string
	LogLevel    string

	KakaoClientID     string
	KakaoClientSecret string
	KakaoRedirectURL  string

	JWTSecret string
	JWTTTL    time.Duration

	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	UploadURLTTL time.Duration

	DailyBundleLimit int
	QuotaTimezone    string
	UserCacheSize    int
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// QuotaLocation is the time zone that defines a "day" for the bundle quota.
func (c *Config) QuotaLocation() *time.Location {
	loc, err := time.LoadLocation(c.QuotaTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Port:        v.GetString("PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		AppEnv:      v.GetString("APP_ENV"),
		BaseURL:     v.GetString("BASE_URL"),
		FrontendURL: v.GetString("FRONTEND_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		KakaoClientID:     v.GetString("KAKAO_CLIENT_ID"),
		KakaoClientSecret: v.GetString("KAKAO_CLIENT_SECRET"),
		KakaoRedirectURL:  v.GetString("KAKAO_REDIRECT_URL"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		S3Bucket:     v.GetString("S3_BUCKET"),
		S3Region:     v.GetString("S3_REGION"),
		S3Endpoint:   v.GetString("S3_ENDPOINT"),
		S3AccessKey:  v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:  v.GetString("S3_SECRET_KEY"),
		UploadURLTTL: v.GetDuration("UPLOAD_URL_TTL"),

		DailyBundleLimit: v.GetInt("DAILY_BUNDLE_LIMIT"),
		QuotaTimezone:    v.GetString("QUOTA_TIMEZONE"),
		UserCacheSize:    v.GetInt("USER_CACHE_SIZE"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "file:db.sqlite")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("KAKAO_CLIENT_ID", "")
	v.SetDefault("KAKAO_CLIENT_SECRET", "")
	v.SetDefault("KAKAO_REDIRECT_URL", "http://localhost:8080/auth/kakao/callback")

	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("JWT_TTL", 24*time.Hour)

	v.SetDefault("S3_BUCKET", "gift-bundle-images")
	v.SetDefault("S3_REGION", "ap-northeast-2")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("UPLOAD_URL_TTL", 10*time.Minute)

	v.SetDefault("DAILY_BUNDLE_LIMIT", DefaultDailyBundleLimit)
	v.SetDefault("QUOTA_TIMEZONE", "Asia/Seoul")
	v.SetDefault("USER_CACHE_SIZE", DefaultUserCacheSize)
}
