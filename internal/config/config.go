package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDR" env-default:":8080"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER" env-required:"true"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD" env-required:"true"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME" env-required:"true"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"PG_MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"PG_MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"PG_CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
}

type Redis struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER" env-default:""`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type Cache struct {
	DefaultTTL time.Duration `yaml:"DEFAULT_TTL" env:"CACHE_DEFAULT_TTL" env-default:"15m"`
	CatalogTTL time.Duration `yaml:"CATALOG_TTL" env:"CACHE_CATALOG_TTL" env-default:"5m"`
}

// Checkout holds the storefront pricing rules: a flat shipping fee waived
// above the free-shipping threshold and a flat-rate tax on the subtotal.
type Checkout struct {
	ShippingFee           float64 `yaml:"SHIPPING_FEE" env:"CHECKOUT_SHIPPING_FEE" env-default:"4.99"`
	FreeShippingThreshold float64 `yaml:"FREE_SHIPPING_THRESHOLD" env:"CHECKOUT_FREE_SHIPPING_THRESHOLD" env-default:"50"`
	TaxRate               float64 `yaml:"TAX_RATE" env:"CHECKOUT_TAX_RATE" env-default:"0.08"`
	Currency              string  `yaml:"CURRENCY" env:"CHECKOUT_CURRENCY" env-default:"usd"`
}

type Security struct {
	JWTKey string `yaml:"JWT_KEY" env:"JWT_KEY" env-required:"true"`
}

// Identity points at the hosted auth provider's backend API, used for
// admin user-profile lookups.
type Identity struct {
	BaseURL string `yaml:"IDENTITY_BASE_URL" env:"IDENTITY_BASE_URL" env-default:"https://api.clerk.com"`
	APIKey  string `yaml:"IDENTITY_API_KEY" env:"IDENTITY_API_KEY" env-default:""`
}

type Stripe struct {
	APIKey string `yaml:"STRIPE_API_KEY" env:"STRIPE_API_KEY" env-default:""`
}

type SendGrid struct {
	APIKey    string `yaml:"SENDGRID_API_KEY" env:"SENDGRID_API_KEY" env-default:""`
	FromEmail string `yaml:"SENDGRID_FROM_EMAIL" env:"SENDGRID_FROM_EMAIL" env-default:"orders@furnicove.com"`
	FromName  string `yaml:"SENDGRID_FROM_NAME" env:"SENDGRID_FROM_NAME" env-default:"Furnicove"`
}

// Storage points at the hosted object store for product images.
type Storage struct {
	BaseURL string `yaml:"STORAGE_BASE_URL" env:"STORAGE_BASE_URL" env-default:""`
	APIKey  string `yaml:"STORAGE_API_KEY" env:"STORAGE_API_KEY" env-default:""`
	Bucket  string `yaml:"STORAGE_BUCKET" env:"STORAGE_BUCKET" env-default:"product-images"`
}

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer `yaml:"http_server"`
	Database   Database `yaml:"database"`
	Redis      Redis    `yaml:"redis"`
	Cache      Cache    `yaml:"cache"`
	Checkout   Checkout `yaml:"checkout"`
	Security   Security `yaml:"security"`
	Identity   Identity `yaml:"identity"`
	Stripe     Stripe   `yaml:"stripe"`
	SendGrid   SendGrid `yaml:"sendgrid"`
	Storage    Storage  `yaml:"storage"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "path to the configuration file")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			log.Fatal("Config path is not set")
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return &cfg
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *Redis) GetDSN() string {
	if r.Username == "" && r.Password == "" {
		return fmt.Sprintf("redis://%s:%s/%d", r.Host, r.Port, r.DB)
	}

	return fmt.Sprintf("redis://%s:%s@%s:%s/%d", r.Username, r.Password, r.Host, r.Port, r.DB)
}
