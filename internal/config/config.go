package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Build      BuildConfig
	Docker     DockerConfig
	Kubernetes KubernetesConfig
	Probe      ProbeConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type BuildConfig struct {
	ContextRoot string // all build context dirs are resolved under this root
	TagPrefix   string
	Timeout     time.Duration
}

type DockerConfig struct {
	StopTimeout int // seconds granted to the process before SIGKILL
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	DefaultNS      string
}

type ProbeConfig struct {
	Host     string // where launched docker containers are reachable
	Interval time.Duration
	Timeout  time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)

	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_NAME", "dashboard_packager")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("BUILD_CONTEXT_ROOT", "/var/lib/dashboard-packager/contexts")
	v.SetDefault("BUILD_TAG_PREFIX", "dashboards")
	v.SetDefault("BUILD_TIMEOUT", "15m")

	v.SetDefault("DOCKER_STOP_TIMEOUT", 10)

	v.SetDefault("KUBERNETES_ENABLED", false)
	v.SetDefault("KUBERNETES_IN_CLUSTER", false)
	v.SetDefault("KUBERNETES_CONFIG_PATH", "")
	v.SetDefault("KUBERNETES_DEFAULT_NS", "dashboards")

	v.SetDefault("PROBE_HOST", "localhost")
	v.SetDefault("PROBE_INTERVAL", "30s")
	v.SetDefault("PROBE_TIMEOUT", "5s")

	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: duration(v, "DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Build: BuildConfig{
			ContextRoot: v.GetString("BUILD_CONTEXT_ROOT"),
			TagPrefix:   v.GetString("BUILD_TAG_PREFIX"),
			Timeout:     duration(v, "BUILD_TIMEOUT", 15*time.Minute),
		},
		Docker: DockerConfig{
			StopTimeout: v.GetInt("DOCKER_STOP_TIMEOUT"),
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("KUBERNETES_ENABLED"),
			InCluster:      v.GetBool("KUBERNETES_IN_CLUSTER"),
			KubeConfigPath: v.GetString("KUBERNETES_CONFIG_PATH"),
			DefaultNS:      v.GetString("KUBERNETES_DEFAULT_NS"),
		},
		Probe: ProbeConfig{
			Host:     v.GetString("PROBE_HOST"),
			Interval: duration(v, "PROBE_INTERVAL", 30*time.Second),
			Timeout:  duration(v, "PROBE_TIMEOUT", 5*time.Second),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
