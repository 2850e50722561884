package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"wesync/internal/domain/file"
	"wesync/internal/domain/mailbox"
	"wesync/internal/domain/notice"
	"wesync/internal/domain/sync"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverMemory   = "memory"
	DriverPebble   = "pebble"
	DriverPostgres = "postgres"
)

type Config struct {
	Env     string  `mapstructure:"env"`
	Server  Server  `mapstructure:"server"`
	Storage Storage `mapstructure:"storage"`
	DB      DB      `mapstructure:"db"`
	Mailbox Mailbox `mapstructure:"mailbox"`
	Sync    Sync    `mapstructure:"sync"`
	File    File    `mapstructure:"file"`
	Notice  Notice  `mapstructure:"notice"`
	Cache   Cache   `mapstructure:"cache"`
	Privacy Privacy `mapstructure:"privacy"`
	Log     Log     `mapstructure:"log"`

	v *viper.Viper
}

type Server struct {
	RunAddress      string        `mapstructure:"run_address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Storage выбор хранилища: memory, pebble или postgres
type Storage struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type DB struct {
	DatabaseURI string `mapstructure:"database_uri"`
	Migrations  string `mapstructure:"migrations_path"`
}

type Mailbox struct {
	IDCShards   int64 `mapstructure:"idc_shards"`
	IDCIndex    int64 `mapstructure:"idc_index"`
	ChildLimit  int   `mapstructure:"child_limit"`
	ChangeLimit int   `mapstructure:"change_limit"`
}

type Sync struct {
	BatchSize           int      `mapstructure:"batch_size"`
	PropertyBatchSize   int      `mapstructure:"property_batch_size"`
	MaxBodyLength       int      `mapstructure:"max_body_length"`
	SupportedProperties []string `mapstructure:"supported_properties"`
}

type File struct {
	NearCompleteThreshold float64 `mapstructure:"near_complete_threshold"`
}

type Notice struct {
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

type Cache struct {
	Messages int `mapstructure:"messages"`
}

// Privacy список блокировок в виде "владелец:отправитель"
type Privacy struct {
	Blocked []string `mapstructure:"blocked"`
}

type Log struct {
	File string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvLocal)

	v.SetDefault("server.run_address", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.path", "data/wesync")

	v.SetDefault("db.database_uri", "")
	v.SetDefault("db.migrations_path", "migrations")

	v.SetDefault("mailbox.idc_shards", mailbox.DefaultIDCShards)
	v.SetDefault("mailbox.idc_index", mailbox.DefaultIDCIndex)
	v.SetDefault("mailbox.child_limit", 0)
	v.SetDefault("mailbox.change_limit", 0)

	v.SetDefault("sync.batch_size", sync.DefaultBatchSize)
	v.SetDefault("sync.property_batch_size", sync.DefaultPropertyBatchSize)
	v.SetDefault("sync.max_body_length", sync.DefaultMaxBodyLength)
	v.SetDefault("sync.supported_properties", []string{})

	v.SetDefault("file.near_complete_threshold", file.DefaultNearCompleteThreshold)

	v.SetDefault("notice.workers", notice.DefaultWorkers)
	v.SetDefault("notice.queue_size", notice.DefaultQueueSize)
	v.SetDefault("notice.send_timeout", notice.DefaultSendTimeout)

	v.SetDefault("cache.messages", 4096)
	v.SetDefault("privacy.blocked", []string{})
	v.SetDefault("log.file", "")
}

// Load читает .env, переменные окружения и необязательный файл конфигурации.
// Переменная SERVER_RUN_ADDRESS переопределяет server.run_address и так далее.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(envPath)

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.v = v
	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalln(err)
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	switch cfg.Storage.Driver {
	case DriverMemory, DriverPebble, DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return &cfg, nil
}

// Watch перечитывает файл конфигурации при изменении и передает новую версию в fn.
// Без файла ничего не делает.
func (c *Config) Watch(fn func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := decode(c.v)
		if err != nil {
			log.Printf("config reload skipped: %v", err)
			return
		}
		cfg.v = c.v
		fn(cfg)
	})
	c.v.WatchConfig()
}

// Pairs разбирает список блокировок в пары владелец, отправитель
func (p Privacy) Pairs() [][2]string {
	out := make([][2]string, 0, len(p.Blocked))
	for _, entry := range p.Blocked {
		owner, from, ok := strings.Cut(entry, ":")
		if !ok || owner == "" || from == "" {
			continue
		}
		out = append(out, [2]string{owner, from})
	}
	return out
}
