package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration.
type Config struct {
	ServerPort  string
	DBDriver    string
	DBDSN       string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	JWTTTL      time.Duration
	SwaggerHost string
	LogLevel    string
	ResetDB     bool

	CORSAllowOrigins []string

	UploadDir        string
	MaxDocumentBytes int64
	ScanTimeout      time.Duration

	DefaultCredits      int
	CreditRequestAmount int
	CreditResetInterval time.Duration
	Location            *time.Location

	AdminUsername string
	AdminPassword string
	AdminCredits  int
}

const defaultMySQLDSN = "user:password@tcp(localhost:3306)/docscan?charset=utf8mb4&parseTime=True&loc=UTC"

var defaults = map[string]any{
	"server_port":           "5000",
	"db_driver":             "mysql",
	"db_dsn":                "",
	"redis_addr":            "localhost:6379",
	"redis_db":              0,
	"redis_password":        "",
	"jwt_secret":            "change-me",
	"jwt_ttl":               "1h",
	"swagger_host":          "",
	"log_level":             "info",
	"reset_db":              false,
	"cors_allow_origins":    "*",
	"upload_dir":            "uploads",
	"max_document_bytes":    64 << 10,
	"scan_timeout":          "30s",
	"default_credits":       20,
	"credit_request_amount": 20,
	"credit_reset_interval": "60s",
	"timezone":              "UTC",
	"admin_username":        "admin",
	"admin_password":        "admin123",
	"admin_credits":         999999,
}

// Load builds Config from .env, configs/settings.yml and the environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(".env"); err != nil {
		_ = godotenv.Load("../.env")
	}

	v := viper.New()
	v.AddConfigPath("./configs")
	v.AddConfigPath("/configs")
	v.SetConfigName("settings")
	v.SetConfigType("yml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	driver := strings.ToLower(v.GetString("db_driver"))
	dsn := v.GetString("db_dsn")
	switch driver {
	case "mysql":
		if dsn == "" {
			dsn = defaultMySQLDSN
		}
	case "postgres":
		if dsn == "" {
			dsn = "host=localhost user=postgres password=postgres dbname=docscan port=5432 sslmode=disable"
		}
	case "sqlite":
		if dsn == "" {
			dsn = "users.db"
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &Config{
		ServerPort:          v.GetString("server_port"),
		DBDriver:            driver,
		DBDSN:               dsn,
		RedisAddr:           v.GetString("redis_addr"),
		RedisDB:             v.GetInt("redis_db"),
		RedisPass:           v.GetString("redis_password"),
		JWTSecret:           v.GetString("jwt_secret"),
		JWTTTL:              getDuration(v, "jwt_ttl"),
		SwaggerHost:         v.GetString("swagger_host"),
		LogLevel:            v.GetString("log_level"),
		ResetDB:             v.GetBool("reset_db"),
		CORSAllowOrigins:    splitList(v.GetString("cors_allow_origins")),
		UploadDir:           v.GetString("upload_dir"),
		MaxDocumentBytes:    int64(getPositiveInt(v, "max_document_bytes")),
		ScanTimeout:         getDuration(v, "scan_timeout"),
		DefaultCredits:      getPositiveInt(v, "default_credits"),
		CreditRequestAmount: getPositiveInt(v, "credit_request_amount"),
		CreditResetInterval: getDuration(v, "credit_reset_interval"),
		Location:            loc,
		AdminUsername:       v.GetString("admin_username"),
		AdminPassword:       v.GetString("admin_password"),
		AdminCredits:        getPositiveInt(v, "admin_credits"),
	}, nil
}

// getDuration falls back to the default when the value does not parse.
func getDuration(v *viper.Viper, key string) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	d, _ := time.ParseDuration(defaults[key].(string))
	return d
}

func getPositiveInt(v *viper.Viper, key string) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return defaults[key].(int)
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
