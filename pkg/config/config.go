package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`

	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	SQLDriver     string `yaml:"sql_driver"`
	PostgresUrl   string `yaml:"postgres_url"`
	SQLitePath    string `yaml:"sqlite_path"`

	AuthProvider            string `yaml:"auth_provider"`
	FirebaseCredentialsPath string `yaml:"firebase_credentials_path"`
	JWTSecret               string `yaml:"jwt_secret"`

	MediaBackend        string `yaml:"media_backend"`
	CloudinaryCloudName string `yaml:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `yaml:"cloudinary_api_key"`
	CloudinaryAPISecret string `yaml:"cloudinary_api_secret"`
	GCSBucket           string `yaml:"gcs_bucket"`
	GCSCredentialsFile  string `yaml:"gcs_credentials_file"`
	S3Region            string `yaml:"s3_region"`
	S3Bucket            string `yaml:"s3_bucket"`
	LocalStoragePath    string `yaml:"local_storage_path"`
	PublicBaseURL       string `yaml:"public_base_url"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

func defaults() *Config {
	return &Config{
		Port:             "8080",
		Env:              "development",
		MongoDatabase:    "social_graph",
		SQLDriver:        "postgres",
		SQLitePath:       "notifications.db",
		AuthProvider:     "firebase",
		MediaBackend:     "cloudinary",
		LocalStoragePath: "uploads",
		PublicBaseURL:    "http://localhost:8080",
		RateLimitRPS:     20,
		RateLimitBurst:   40,
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// named by CONFIG_FILE, then the environment (a .env file is read first).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)
	c.SQLDriver = getEnv("SQL_DRIVER", c.SQLDriver)
	c.PostgresUrl = getEnv("POSTGRES_URL", c.PostgresUrl)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.AuthProvider = getEnv("AUTH_PROVIDER", c.AuthProvider)
	c.FirebaseCredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", c.FirebaseCredentialsPath)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.MediaBackend = getEnv("MEDIA_BACKEND", c.MediaBackend)
	c.CloudinaryCloudName = getEnv("CLOUDINARY_CLOUD_NAME", c.CloudinaryCloudName)
	c.CloudinaryAPIKey = getEnv("CLOUDINARY_API_KEY", c.CloudinaryAPIKey)
	c.CloudinaryAPISecret = getEnv("CLOUDINARY_API_SECRET", c.CloudinaryAPISecret)
	c.GCSBucket = getEnv("GCS_BUCKET", c.GCSBucket)
	c.GCSCredentialsFile = getEnv("GCS_CREDENTIALS_FILE", c.GCSCredentialsFile)
	c.S3Region = getEnv("S3_REGION", c.S3Region)
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.LocalStoragePath = getEnv("LOCAL_STORAGE_PATH", c.LocalStoragePath)
	c.PublicBaseURL = getEnv("PUBLIC_BASE_URL", c.PublicBaseURL)
	c.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", c.RateLimitBurst)
}

// Validate checks that the selected backends have what they need
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}

	switch c.SQLDriver {
	case "postgres":
		if c.PostgresUrl == "" {
			return fmt.Errorf("POSTGRES_URL is required when SQL_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when SQL_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unknown SQL_DRIVER %q", c.SQLDriver)
	}

	switch c.AuthProvider {
	case "firebase":
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_PROVIDER=firebase")
		}
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	switch c.MediaBackend {
	case "cloudinary":
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary credentials are required when MEDIA_BACKEND=cloudinary")
		}
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when MEDIA_BACKEND=gcs")
		}
	case "s3":
		if c.S3Bucket == "" || c.S3Region == "" {
			return fmt.Errorf("S3_BUCKET and S3_REGION are required when MEDIA_BACKEND=s3")
		}
	case "local":
		if c.LocalStoragePath == "" {
			return fmt.Errorf("LOCAL_STORAGE_PATH is required when MEDIA_BACKEND=local")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.MediaBackend)
	}

	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
