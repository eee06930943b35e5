package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

type Config struct {
	LogMode   string          `yaml:"logMode"`
	HTTPAddr  string          `yaml:"httpAddr"`
	Storage   StorageConfig   `yaml:"storage"`
	Notify    NotifyConfig    `yaml:"notify"`
	Challenge ChallengeConfig `yaml:"challenge"`
}

type StorageConfig struct {
	Backend        string `yaml:"backend"`
	DocumentsTable string `yaml:"documentsTable"`
	EmployeesTable string `yaml:"employeesTable"`
	GroupsTable    string `yaml:"groupsTable"`
	DatabaseURL    string `yaml:"databaseUrl"`
	// Local apunta los clientes de AWS a DynamoDB Local / LocalStack.
	Local bool `yaml:"local"`
}

type NotifyConfig struct {
	RedisAddr       string        `yaml:"redisAddr"`
	RedisChannel    string        `yaml:"redisChannel"`
	AuditBucket     string        `yaml:"auditBucket"`
	DispatchTimeout time.Duration `yaml:"dispatchTimeout"`
}

// ChallengeConfig limita los intentos del reto de identidad por actor reclamado.
type ChallengeConfig struct {
	PerMinute float64       `yaml:"perMinute"`
	Burst     int           `yaml:"burst"`
	IdleTTL   time.Duration `yaml:"idleTTL"`
}

func Default() Config {
	return Config{
		LogMode:  "dev",
		HTTPAddr: ":8080",
		Storage: StorageConfig{
			Backend:        BackendMemory,
			DocumentsTable: "docuprex-documents",
			EmployeesTable: "docuprex-employees",
			GroupsTable:    "docuprex-groups",
		},
		Notify: NotifyConfig{
			RedisChannel:    "docuprex.notifications",
			DispatchTimeout: 5 * time.Second,
		},
		Challenge: ChallengeConfig{
			PerMinute: 5,
			Burst:     5,
			IdleTTL:   15 * time.Minute,
		},
	}
}

// Load arma la configuración: valores por defecto, luego el archivo YAML (si
// existe) y por último las variables de entorno.
func Load(configPath string) (Config, error) {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates, "configs/docuprex.yaml", "docuprex.yaml")
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if configPath != "" {
				return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		break
	}

	ApplyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ApplyEnvOverrides(cfg *Config) {
	setString(&cfg.LogMode, "DOCUPREX_LOG_MODE")
	setString(&cfg.HTTPAddr, "DOCUPREX_HTTP_ADDR")
	setString(&cfg.Storage.Backend, "DOCUPREX_STORAGE_BACKEND")
	setString(&cfg.Storage.DocumentsTable, "DOCUPREX_DOCUMENTS_TABLE")
	setString(&cfg.Storage.EmployeesTable, "DOCUPREX_EMPLOYEES_TABLE")
	setString(&cfg.Storage.GroupsTable, "DOCUPREX_GROUPS_TABLE")
	setString(&cfg.Storage.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Notify.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Notify.RedisChannel, "REDIS_CHANNEL")
	setString(&cfg.Notify.AuditBucket, "DOCUPREX_AUDIT_BUCKET")

	if v := strings.TrimSpace(os.Getenv("AWS_SAM_LOCAL")); v != "" {
		cfg.Storage.Local = v == "true"
	}
	if v := strings.TrimSpace(os.Getenv("DOCUPREX_DISPATCH_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Notify.DispatchTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("DOCUPREX_CHALLENGE_PER_MINUTE")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Challenge.PerMinute = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("DOCUPREX_CHALLENGE_BURST")); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Challenge.Burst = i
		}
	}
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendDynamoDB:
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.DatabaseURL) == "" {
			return fmt.Errorf("databaseUrl is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Notify.DispatchTimeout <= 0 {
		return fmt.Errorf("dispatchTimeout must be positive")
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("httpAddr is required")
	}
	return nil
}
