package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Model        ModelConfig
	Builder      BuilderConfig
	ControlPlane ControlPlaneConfig
	Kubernetes   KubernetesConfig
	Database     DatabaseConfig
	Logger       LoggerConfig
}

type ServerConfig struct {
	Host            string
	Port            int `validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ModelConfig struct {
	Name         string
	Dir          string `validate:"required"`
	ExposeErrors bool
}

type BuilderConfig struct {
	Output string `validate:"required"`
	Seed   int64
}

type ControlPlaneConfig struct {
	Host          string
	Port          int    `validate:"min=1,max=65535"`
	Namespace     string `validate:"required"`
	SharedDir     string `validate:"required"`
	Image         string `validate:"required"`
	ClaimName     string `validate:"required"`
	ContainerPort int    `validate:"min=1,max=65535"`
	ServicePort   int    `validate:"min=1,max=65535"`
	MaxUploadMB   int    `validate:"min=1"`
	CORSOrigins   []string
	ProxyTimeout  time.Duration
}

func (c ControlPlaneConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int `validate:"min=1"`
}

type LoggerConfig struct {
	Level      string
	Format     string `validate:"oneof=json text"`
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

const serviceAccountTokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"

// Option customises how configuration is read.
type Option func(v *viper.Viper) error

// WithFlag lets a command-line flag override the given key when it is set.
func WithFlag(key string, flag *pflag.Flag) Option {
	return func(v *viper.Viper) error {
		if flag == nil {
			return fmt.Errorf("flag for %s is not defined", key)
		}
		return v.BindPFlag(key, flag)
	}
}

// WithEnvFile loads variables from a dotenv file. A missing file is not an error.
func WithEnvFile(path string) Option {
	return func(_ *viper.Viper) error {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	}
}

func Load(opts ...Option) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MODEL_NAME", "")
	v.SetDefault("MODEL_DIR", "/app/models")
	v.SetDefault("MODEL_EXPOSE_ERRORS", true)
	v.SetDefault("BUILDER_OUTPUT", "model.h5")
	v.SetDefault("BUILDER_SEED", 0)
	v.SetDefault("CONTROLPLANE_HOST", "0.0.0.0")
	v.SetDefault("CONTROLPLANE_PORT", 8080)
	v.SetDefault("CONTROLPLANE_NAMESPACE", "model-deployments")
	v.SetDefault("CONTROLPLANE_SHARED_DIR", "/app/shared-models")
	v.SetDefault("CONTROLPLANE_IMAGE", "mlmdp/inference-server:latest")
	v.SetDefault("CONTROLPLANE_PVC", "shared-pvc")
	v.SetDefault("CONTROLPLANE_CONTAINER_PORT", 8000)
	v.SetDefault("CONTROLPLANE_SERVICE_PORT", 80)
	v.SetDefault("CONTROLPLANE_MAX_UPLOAD_MB", 64)
	v.SetDefault("CONTROLPLANE_CORS_ORIGINS", "*")
	v.SetDefault("CONTROLPLANE_PROXY_TIMEOUT", "30s")
	v.SetDefault("KUBERNETES_ENABLED", true)
	v.SetDefault("KUBERNETES_IN_CLUSTER", inCluster())
	v.SetDefault("KUBERNETES_KUBECONFIG", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_MAX_CONNS", 5)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("LOGGER_FILE", "")
	v.SetDefault("LOGGER_MAX_SIZE_MB", 100)
	v.SetDefault("LOGGER_MAX_BACKUPS", 3)
	v.SetDefault("LOGGER_MAX_AGE_DAYS", 28)
	v.SetDefault("LOGGER_COMPRESS", true)

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	// Env
	v.AutomaticEnv()

	shutdownTimeout, err := time.ParseDuration(v.GetString("SERVER_SHUTDOWN_TIMEOUT"))
	if err != nil {
		shutdownTimeout = 10 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: shutdownTimeout,
		},
		Model: ModelConfig{
			Name:         v.GetString("MODEL_NAME"),
			Dir:          v.GetString("MODEL_DIR"),
			ExposeErrors: v.GetBool("MODEL_EXPOSE_ERRORS"),
		},
		Builder: BuilderConfig{
			Output: v.GetString("BUILDER_OUTPUT"),
			Seed:   v.GetInt64("BUILDER_SEED"),
		},
		ControlPlane: ControlPlaneConfig{
			Host:          v.GetString("CONTROLPLANE_HOST"),
			Port:          v.GetInt("CONTROLPLANE_PORT"),
			Namespace:     v.GetString("CONTROLPLANE_NAMESPACE"),
			SharedDir:     v.GetString("CONTROLPLANE_SHARED_DIR"),
			Image:         v.GetString("CONTROLPLANE_IMAGE"),
			ClaimName:     v.GetString("CONTROLPLANE_PVC"),
			ContainerPort: v.GetInt("CONTROLPLANE_CONTAINER_PORT"),
			ServicePort:   v.GetInt("CONTROLPLANE_SERVICE_PORT"),
			MaxUploadMB:   v.GetInt("CONTROLPLANE_MAX_UPLOAD_MB"),
			CORSOrigins:   splitList(v.GetString("CONTROLPLANE_CORS_ORIGINS")),
			ProxyTimeout:  v.GetDuration("CONTROLPLANE_PROXY_TIMEOUT"),
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("KUBERNETES_ENABLED"),
			InCluster:      v.GetBool("KUBERNETES_IN_CLUSTER"),
			KubeConfigPath: v.GetString("KUBERNETES_KUBECONFIG"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: v.GetInt("DATABASE_MAX_CONNS"),
		},
		Logger: LoggerConfig{
			Level:      v.GetString("LOGGER_LEVEL"),
			Format:     v.GetString("LOGGER_FORMAT"),
			File:       v.GetString("LOGGER_FILE"),
			MaxSizeMB:  v.GetInt("LOGGER_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOGGER_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOGGER_MAX_AGE_DAYS"),
			Compress:   v.GetBool("LOGGER_COMPRESS"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func inCluster() bool {
	_, err := os.Stat(serviceAccountTokenPath)
	return err == nil
}
