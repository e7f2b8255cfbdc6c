package ops

import (
	"net"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"

	"riskgate/internal/risk"
	"riskgate/pkg/exception"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	NetworkTCP  = "tcp"
	NetworkUnix = "unix"

	DefaultPort          = 9000
	DefaultQueueCapacity = 1024
)

// Environment variables read by ApplyEnv.
const (
	EnvNetwork          = "RISKGATE_NETWORK"
	EnvAddress          = "RISKGATE_ADDRESS"
	EnvPort             = "RISKGATE_PORT"
	EnvSocketPath       = "RISKGATE_SOCKET_PATH"
	EnvBuyThreshold     = "RISKGATE_BUY_THRESHOLD"
	EnvSellThreshold    = "RISKGATE_SELL_THRESHOLD"
	EnvQueueCapacity    = "RISKGATE_QUEUE_CAPACITY"
	EnvAdminAddress     = "RISKGATE_ADMIN_ADDRESS"
	EnvPyroscopeAddress = "RISKGATE_PYROSCOPE_ADDRESS"
)

// Config mirrors the JSON config layout.
type Config struct {
	Listen    ListenConfig    `json:"listen"`
	Risk      risk.Limits     `json:"risk"`
	Queue     QueueConfig     `json:"queue"`
	Admin     AdminConfig     `json:"admin"`
	Profiling ProfilingConfig `json:"profiling"`
}

// ListenConfig selects the client transport.
type ListenConfig struct {
	Network string `json:"network"`
	Address string `json:"address"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// QueueConfig sizes the engine queue.
type QueueConfig struct {
	Capacity int `json:"capacity"`
}

// AdminConfig enables the admin HTTP server when Address is set.
type AdminConfig struct {
	Address string `json:"address"`
}

// ProfilingConfig enables continuous profiling when ServerAddress is set.
type ProfilingConfig struct {
	ServerAddress   string            `json:"serverAddress"`
	ApplicationName string            `json:"applicationName"`
	Tags            map[string]string `json:"tags"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Listen: ListenConfig{
			Network: NetworkTCP,
			Port:    DefaultPort,
		},
		Queue: QueueConfig{Capacity: DefaultQueueCapacity},
		Profiling: ProfilingConfig{
			ApplicationName: "riskgate",
		},
	}
}

// Load reads a JSON config file on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config").With("path", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config").With("path", path)
	}
	return cfg, nil
}

// ApplyEnv loads envPath (or ./.env when empty) into the process environment without
// overriding variables that are already set, then applies the RISKGATE_* variables.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return errors.Wrap(err, "load env file").With("path", envPath)
		}
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		c.Listen.Network = strings.ToLower(v)
	}
	if v := os.Getenv(EnvAddress); v != "" {
		c.Listen.Address = v
	}
	if v := os.Getenv(EnvSocketPath); v != "" {
		c.Listen.Path = v
	}
	if v := os.Getenv(EnvAdminAddress); v != "" {
		c.Admin.Address = v
	}
	if v := os.Getenv(EnvPyroscopeAddress); v != "" {
		c.Profiling.ServerAddress = v
	}
	if err := envInt(EnvPort, &c.Listen.Port); err != nil {
		return err
	}
	if err := envInt(EnvQueueCapacity, &c.Queue.Capacity); err != nil {
		return err
	}
	if err := envUint(EnvBuyThreshold, &c.Risk.BuyThreshold); err != nil {
		return err
	}
	return envUint(EnvSellThreshold, &c.Risk.SellThreshold)
}

// ApplyArgs applies the positional form `<buy_threshold> <sell_threshold> <port>`.
// No arguments is a no-op; any other count is an error.
func (c *Config) ApplyArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) != 3 {
		return errors.Errorf("expected <buy_threshold> <sell_threshold> <port>, got %d arguments", len(args))
	}
	buy, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parse buy threshold %q", args[0])
	}
	sell, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parse sell threshold %q", args[1])
	}
	port, err := strconv.Atoi(args[2])
	if err != nil {
		return errors.Wrapf(err, "parse port %q", args[2])
	}
	c.Risk = risk.Limits{BuyThreshold: buy, SellThreshold: sell}
	c.Listen.Network = NetworkTCP
	c.Listen.Port = port
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Listen.Network {
	case NetworkTCP:
		if c.Listen.Port <= 0 || c.Listen.Port > 65535 {
			return errors.Wrapf(exception.ErrInvalidConfig, "port out of range: %d", c.Listen.Port)
		}
	case NetworkUnix:
		if c.Listen.Path == "" {
			return errors.Wrap(exception.ErrInvalidConfig, "unix network requires listen.path")
		}
	default:
		return errors.Wrapf(exception.ErrInvalidConfig, "unsupported network: %q", c.Listen.Network)
	}
	if c.Queue.Capacity <= 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "queue capacity must be > 0, got %d", c.Queue.Capacity)
	}
	return nil
}

// ListenAddress returns host:port for TCP or the socket path for Unix.
func (c Config) ListenAddress() string {
	if c.Listen.Network == NetworkUnix {
		return c.Listen.Path
	}
	return net.JoinHostPort(c.Listen.Address, strconv.Itoa(c.Listen.Port))
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "parse %s=%q", key, v)
	}
	*dst = n
	return nil
}

func envUint(key string, dst *uint64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parse %s=%q", key, v)
	}
	*dst = n
	return nil
}
