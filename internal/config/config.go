package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	Logger      LoggerConfig
	Test        TestConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	ServiceName string
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type LoggerConfig struct {
	Level string
	Env   string
}

// TestConfig holds the knobs of the IQ test itself.
type TestConfig struct {
	// TimeBudget is the total countdown budget for one attempt.
	TimeBudget time.Duration
	// PendingResultTTL is how long an unclaimed guest result is kept.
	PendingResultTTL time.Duration
	// SessionRecordTTL bounds how long an abandoned in-progress attempt
	// survives in the session record store.
	SessionRecordTTL time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("test.time_budget_seconds", 3600)
	viper.SetDefault("test.pending_result_ttl_hours", 24)
	viper.SetDefault("test.session_record_ttl_hours", 48)
	viper.SetDefault("jwt.access_token_ttl_minutes", 15)
	viper.SetDefault("jwt.refresh_token_ttl_hours", 168)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		DB: DBConfig{
			Host:        viper.GetString("db.host"),
			Port:        viper.GetInt("db.port"),
			User:        viper.GetString("db.user"),
			Password:    viper.GetString("db.password"),
			ServiceName: viper.GetString("db.service_name"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:       viper.GetString("jwt.secret_key"),
			AccessTokenTTL:  viper.GetDuration("jwt.access_token_ttl_minutes") * time.Minute,
			RefreshTokenTTL: viper.GetDuration("jwt.refresh_token_ttl_hours") * time.Hour,
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     viper.GetString("google_oauth.client_id"),
			ClientSecret: viper.GetString("google_oauth.client_secret"),
			RedirectURL:  viper.GetString("google_oauth.redirect_url"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Test: TestConfig{
			TimeBudget:       viper.GetDuration("test.time_budget_seconds") * time.Second,
			PendingResultTTL: viper.GetDuration("test.pending_result_ttl_hours") * time.Hour,
			SessionRecordTTL: viper.GetDuration("test.session_record_ttl_hours") * time.Hour,
		},
	}

	// Override with environment variables if set
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if service := os.Getenv("DB_SERVICE_NAME"); service != "" {
		config.DB.ServiceName = service
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.JWT.SecretKey = secret
	}

	return config, nil
}

// GetDSN builds the godror connect string for the main sqlx connection.
func (c *Config) GetDSN() string {
	connectString := fmt.Sprintf("%s:%d/%s", c.DB.Host, c.DB.Port, c.DB.ServiceName)
	return fmt.Sprintf("user=\"%s\" password=\"%s\" connectString=\"%s\"", c.DB.User, c.DB.Password, connectString)
}

// GetMigrateDSN builds the go-ora URL used by the migration runner.
func (c *Config) GetMigrateDSN() string {
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.ServiceName,
	)
}
