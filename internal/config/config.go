package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/focushoney/internal/log"
)

type Application struct {
	Env       string `mapstructure:"env"        json:"env"`
	Host      string `mapstructure:"host"       json:"host"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	Port      int    `mapstructure:"port"       json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	TimeZone       string `mapstructure:"timezone"        json:"timezone"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int32  `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32  `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Mongo struct {
	URI      string `mapstructure:"uri"      json:"-"`
	Database string `mapstructure:"database" json:"database"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// Store selects the backend holding cart documents and order records.
type Store struct {
	Driver string `mapstructure:"driver" json:"driver"`
}

type Session struct {
	MergeGuestCart bool `mapstructure:"merge_guest_cart" json:"merge_guest_cart"`
}

type Checkout struct {
	WhatsappPhone     string `mapstructure:"whatsapp_phone"      json:"whatsapp_phone"`
	PaystackPublicKey string `mapstructure:"paystack_public_key" json:"paystack_public_key"`
	Currency          string `mapstructure:"currency"            json:"currency"`
	VerifierURL       string `mapstructure:"verifier_url"        json:"verifier_url"`
}

// Paystack is only read by the payment verifier. The secret key must never be set
// in a storefront config.
type Paystack struct {
	BaseURL   string `mapstructure:"base_url"   json:"base_url"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
}

type Product struct {
	ID    string `mapstructure:"id"    json:"id"`
	Name  string `mapstructure:"name"  json:"name"`
	Price string `mapstructure:"price" json:"price"`
	Image string `mapstructure:"image" json:"image"`
	Alt   string `mapstructure:"alt"   json:"alt"`
}

type Catalog struct {
	Products []Product `mapstructure:"products" json:"products"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Mongo       `mapstructure:"mongo"       json:"mongo"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Store       `mapstructure:"store"       json:"store"`
	Session     `mapstructure:"session"     json:"session"`
	Checkout    `mapstructure:"checkout"    json:"checkout"`
	Paystack    `mapstructure:"paystack"    json:"paystack"`
	Catalog     `mapstructure:"catalog"     json:"catalog"`
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

var (
	once   sync.Once
	config *Config
)

func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		v := viper.New()
		v.SetConfigName(filename)
		v.AddConfigPath("./env")
		v.SetConfigType("yaml")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		setDefaults(v)

		logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
		logger.Info().Msg("reading config")
		err := v.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		cfg := Config{}
		err = v.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("error unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(log.KeyConfig, cfg).Logger()
		logger.Info().Msg("unmarshaled config")
	})
	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("db.migration_path", "file://migrations")
	v.SetDefault("db.max_connections", 10)
	v.SetDefault("db.min_connections", 2)
	v.SetDefault("store.driver", StoreDriverPostgres)
	v.SetDefault("checkout.whatsapp_phone", "+233540484052")
	v.SetDefault("checkout.currency", "GHS")
	v.SetDefault("paystack.base_url", "https://api.paystack.co")
	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)
}
