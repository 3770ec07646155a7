package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env     string
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	MySQLMaxOpenConns int
	MySQLMaxIdleConns int

	RedisAddr string
	RedisDB   int

	RedisPoolSize     int
	RedisMinIdleConns int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration

	IdempTTLSecs int

	// RoleCacheTTL bounds how long a role's approver capability is cached.
	RoleCacheTTL time.Duration

	JWTSecret string

	LogLevel  string
	LogFormat string

	// ManagerPolicy is "direct" (submitter's own manager only) or "global".
	ManagerPolicy string
}

// Load reads the environment, plus CONFIG_FILE (.env or yaml) when it is set.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if strings.HasSuffix(file, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	c := &Config{
		Env:     v.GetString("APP_ENV"),
		AppPort: v.GetString("APP_PORT"),

		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		MySQLMaxOpenConns: v.GetInt("MYSQL_MAX_OPEN_CONNS"),
		MySQLMaxIdleConns: v.GetInt("MYSQL_MAX_IDLE_CONNS"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		RedisDB:   v.GetInt("REDIS_DB"),

		RedisPoolSize:     v.GetInt("REDIS_POOL_SIZE"),
		RedisMinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
		RedisDialTimeout:  time.Duration(v.GetInt("REDIS_DIAL_TIMEOUT_MS")) * time.Millisecond,
		RedisReadTimeout:  time.Duration(v.GetInt("REDIS_READ_TIMEOUT_MS")) * time.Millisecond,

		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),
		RoleCacheTTL: time.Duration(v.GetInt("ROLE_CACHE_TTL_SECONDS")) * time.Second,

		JWTSecret: v.GetString("JWT_SECRET"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		ManagerPolicy: strings.ToLower(v.GetString("APPROVAL_MANAGER_POLICY")),
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "expenses")
	v.SetDefault("MYSQL_USER", "expenses")
	v.SetDefault("MYSQL_PASS", "expenses")
	v.SetDefault("MYSQL_MAX_OPEN_CONNS", 30)
	v.SetDefault("MYSQL_MAX_IDLE_CONNS", 10)
	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 20)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT_MS", 5000)
	v.SetDefault("REDIS_READ_TIMEOUT_MS", 3000)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)
	v.SetDefault("ROLE_CACHE_TTL_SECONDS", 60)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("APPROVAL_MANAGER_POLICY", "direct")
	v.SetDefault("CONFIG_FILE", "")
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.ManagerPolicy != "direct" && c.ManagerPolicy != "global" {
		return fmt.Errorf("invalid APPROVAL_MANAGER_POLICY %q (want direct or global)", c.ManagerPolicy)
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
