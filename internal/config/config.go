package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultTokenTTL = 30 * 24 * time.Hour
)

type Config struct {
	Env            string
	Port           string
	JWTPrivateKey  *rsa.PrivateKey
	JWTPublicKey   *rsa.PublicKey
	TokenTTL       time.Duration
	MongoURI       string
	MongoDatabase  string
	DatabaseURL    string
	RedisAddress   string
	RedisPassword  string
	AllowedOrigins []string
	MaxUploadBytes int64
	BcryptCost     int
	LogLevel       slog.Level
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// fileConfig is the optional YAML base file. Every key can be overridden
// by its environment variable.
type fileConfig struct {
	Env            string   `yaml:"env"`
	Port           string   `yaml:"port"`
	PrivateKeyPath string   `yaml:"private_key_path"`
	PublicKeyPath  string   `yaml:"public_key_path"`
	TokenTTL       string   `yaml:"token_ttl"`
	MongoURI       string   `yaml:"mongo_uri"`
	MongoDatabase  string   `yaml:"mongo_database"`
	DatabaseURL    string   `yaml:"db_connection_string"`
	RedisAddress   string   `yaml:"redis_address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	BcryptCost     int      `yaml:"bcrypt_cost"`
	LogLevel       string   `yaml:"log_level"`
}

// Load reads .env (if present), then the YAML file named by
// APP_CONFIG_FILE (if set), then the process environment.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	file, err := readFileConfig(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	env := getenv("APP_ENV", file.Env, EnvDevelopment)
	if env != EnvDevelopment && env != EnvProduction {
		return nil, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, env)
	}

	privateKey, err := loadPrivateKey(getenv("PRIVATE_KEY_PATH", file.PrivateKeyPath, "/etc/certs/private.pem"))
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}
	publicKey, err := loadPublicKey(getenv("PUBLIC_KEY_PATH", file.PublicKeyPath, "/etc/certs/public.pem"))
	if err != nil {
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	mongoURI := getenv("MONGO_URI", file.MongoURI, "")
	if mongoURI == "" {
		return nil, errors.New("MONGO_URI environment variable is required")
	}

	tokenTTL := DefaultTokenTTL
	if raw := getenv("TOKEN_TTL", file.TokenTTL, ""); raw != "" {
		tokenTTL, err = time.ParseDuration(raw)
		if err != nil || tokenTTL <= 0 {
			return nil, fmt.Errorf("TOKEN_TTL must be a positive duration, got %q", raw)
		}
	}

	maxUpload, err := getInt64("MAX_UPLOAD_BYTES", file.MaxUploadBytes, 5<<20)
	if err != nil {
		return nil, err
	}
	bcryptCost, err := getInt64("BCRYPT_COST", int64(file.BcryptCost), 10)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getenv("LOG_LEVEL", file.LogLevel, "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	origins := file.AllowedOrigins
	if raw, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		origins = splitList(raw)
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return &Config{
		Env:            env,
		Port:           getenv("PORT", file.Port, "8080"),
		JWTPrivateKey:  privateKey,
		JWTPublicKey:   publicKey,
		TokenTTL:       tokenTTL,
		MongoURI:       mongoURI,
		MongoDatabase:  getenv("MONGO_DATABASE", file.MongoDatabase, "rentals"),
		DatabaseURL:    getenv("DB_CONNECTION_STRING", file.DatabaseURL, ""),
		RedisAddress:   getenv("REDIS_ADDRESS", file.RedisAddress, ""),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AllowedOrigins: origins,
		MaxUploadBytes: maxUpload,
		BcryptCost:     int(bcryptCost),
		LogLevel:       level,
	}, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func readFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// getenv returns the environment value, else the file value, else def.
func getenv(key, fileValue, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return def
}

func getInt64(key string, fileValue, def int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		if fileValue > 0 {
			return fileValue, nil
		}
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(keyData)
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(keyData)
}
