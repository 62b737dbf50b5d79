package devops

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"attendgate.com/attendgate/core"
)

// Config is the process configuration, read once at startup from the
// file named by ATTENDGATE_CONFIG or, when unset, from the SSM
// parameter "attendgate".
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Store struct {
		BaseURL         string `yaml:"baseUrl"`
		CredentialsFile string `yaml:"credentialsFile"`
		TimeoutSeconds  int    `yaml:"timeoutSeconds"`
	} `yaml:"store"`

	Suppression struct {
		WindowSeconds int `yaml:"windowSeconds"`
	} `yaml:"suppression"`

	Archive struct {
		Bucket string `yaml:"bucket"`
	} `yaml:"archive"`

	Audit struct {
		DSN            string `yaml:"dsn"`
		MaxConnections int    `yaml:"maxConnections"`
	} `yaml:"audit"`

	Slack struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"slack"`

	// Shifts overrides the default roster; keys are business weekdays
	// starting at 0.
	Shifts map[int][]core.ShiftPolicy `yaml:"shifts"`
}

var (
	once    sync.Once
	loaded  Config
	loadErr error
)

func Load(ctx context.Context) (Config, error) {
	once.Do(func() {
		var raw []byte

		if path := os.Getenv("ATTENDGATE_CONFIG"); path != "" {
			raw, loadErr = os.ReadFile(path)
			if loadErr != nil {
				loadErr = fmt.Errorf("read config %s: %w", path, loadErr)
				return
			}
		} else {
			raw, loadErr = fromSSM(ctx, "attendgate")
			if loadErr != nil {
				return
			}
		}

		var parsed Config
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			loadErr = fmt.Errorf("unmarshal yaml: %w", err)
			return
		}
		applyDefaults(&parsed)
		loaded = parsed
	})

	return loaded, loadErr
}

func fromSSM(ctx context.Context, paramName string) ([]byte, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}
	return []byte(*out.Parameter.Value), nil
}

func applyDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = "0.0.0.0:8090"
	}
	if c.Store.TimeoutSeconds <= 0 {
		c.Store.TimeoutSeconds = 10
	}
	if c.Suppression.WindowSeconds <= 0 {
		c.Suppression.WindowSeconds = 30
	}
	if c.Audit.MaxConnections <= 0 {
		c.Audit.MaxConnections = 10
	}
}

// Schedule returns the configured shift roster, falling back to the
// default when no override is present.
func (c Config) Schedule() core.ShiftSchedule {
	if len(c.Shifts) == 0 {
		return core.DefaultSchedule()
	}
	return core.ShiftSchedule(c.Shifts)
}
