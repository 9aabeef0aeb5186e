package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	viper "github.com/spf13/viper"
)

/*
Load 讀取 .env 與環境變數，環境變數優先
GetConfig 為 singleton，設定檔變動時自動重新載入
*/
var config_singleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ApiBaseUrl  string        `mapstructure:"API_BASE_URL"`
	HttpTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`

	PersistBackend   string `mapstructure:"PERSIST_BACKEND"`
	PersistNamespace string `mapstructure:"PERSIST_NAMESPACE"`
	PersistDir       string `mapstructure:"PERSIST_DIR"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	PostgresDsn   string `mapstructure:"POSTGRES_DSN"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	DeliveryCharge     string `mapstructure:"DELIVERY_CHARGE"`
	DiscardStaleOrders bool   `mapstructure:"DISCARD_STALE_ORDERS"`

	FakeApiPort    string  `mapstructure:"FAKEAPI_PORT"`
	FakeApiCatalog string  `mapstructure:"FAKEAPI_CATALOG"`
	FakeApiRatePS  float64 `mapstructure:"FAKEAPI_RATE_PS"`
	FakeApiBurst   int     `mapstructure:"FAKEAPI_BURST"`
}

const (
	PersistFile     = "file"
	PersistRedis    = "redis"
	PersistPostgres = "postgres"
	PersistNone     = "none"
)

var defaults = map[string]any{
	"API_BASE_URL":         "http://localhost:8080/api",
	"HTTP_TIMEOUT":         "0s",
	"PERSIST_BACKEND":      PersistFile,
	"PERSIST_NAMESPACE":    "root",
	"PERSIST_DIR":          ".storefront",
	"REDIS_ADDR":           "localhost:6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"POSTGRES_DSN":         "",
	"KAFKA_BROKERS":        "",
	"KAFKA_TOPIC":          "storefront.actions",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "console",
	"DELIVERY_CHARGE":      "15",
	"DISCARD_STALE_ORDERS": true,
	"FAKEAPI_PORT":         "8080",
	"FAKEAPI_CATALOG":      "",
	"FAKEAPI_RATE_PS":      0,
	"FAKEAPI_BURST":        20,
}

// Brokers 逗號分隔
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c *Config) DeliveryChargeDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(c.DeliveryCharge)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (c *Config) Validate() error {
	switch c.PersistBackend {
	case PersistFile, PersistRedis, PersistNone:
	case PersistPostgres:
		if c.PostgresDsn == "" {
			return fmt.Errorf("POSTGRES_DSN is required when PERSIST_BACKEND=%s", PersistPostgres)
		}
	default:
		return fmt.Errorf("unknown PERSIST_BACKEND %q", c.PersistBackend)
	}
	d, err := decimal.NewFromString(c.DeliveryCharge)
	if err != nil {
		return fmt.Errorf("invalid DELIVERY_CHARGE %q: %w", c.DeliveryCharge, err)
	}
	if d.IsNegative() {
		return fmt.Errorf("DELIVERY_CHARGE must not be negative")
	}
	if c.HttpTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative")
	}
	if c.FakeApiRatePS < 0 || c.FakeApiBurst < 0 {
		return fmt.Errorf("FAKEAPI_RATE_PS and FAKEAPI_BURST must not be negative")
	}
	return nil
}

/*
Load 單純回傳錯誤，由外部決定要不要Fatal
path 為空或檔案不存在時只使用預設值與環境變數
*/
func Load(path string) (*Config, error) {
	v := viper.New()
	if _, err := read(v, path); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// read 回傳是否有讀到設定檔
func read(v *viper.Viper, path string) (bool, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return false, fmt.Errorf("read config %s: %w", path, err)
	}
	return true, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

// GetConfig 第一次呼叫時載入，之後設定檔變更會自動更新
func GetConfig(path string) *Config {
	initConfig(path)
	config_singleton.mu.RLock()
	defer config_singleton.mu.RUnlock()
	return config_singleton.Config
}

func initConfig(path string) {
	muonce.Do(func() {
		config_singleton = &ConfigSingleTon{}
		v := viper.New()
		fromFile, err := read(v, path)
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		cf, err := unmarshal(v)
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		config_singleton.Config = cf

		if !fromFile {
			return
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			cf, err := unmarshal(v)
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			config_singleton.mu.Lock()
			config_singleton.Config = cf
			config_singleton.mu.Unlock()
		})
		v.WatchConfig()
	})
}
