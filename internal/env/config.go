package env

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ProtocolVersion    uint8         `env:"ACCD_PROTOCOL_VERSION,default=4"`
	DisplayName        string        `env:"ACCD_DISPLAY_NAME,default=racedirector"`
	ConnectionPassword string        `env:"ACCD_CONNECTION_PASSWORD"`
	CommandPassword    string        `env:"ACCD_COMMAND_PASSWORD"`
	UpdateInterval     time.Duration `env:"ACCD_UPDATE_INTERVAL,default=250ms"`

	BindAddr        string        `env:"ACCD_BIND_ADDR,default=0.0.0.0:3400"`
	DestinationAddr string        `env:"ACCD_DESTINATION_ADDR,default=127.0.0.1:9000"`
	ResyncInterval  time.Duration `env:"ACCD_RESYNC_INTERVAL,default=1s"`
	Reuseport       bool          `env:"ACCD_REUSEPORT,default=true"`

	Trace     bool `env:"ACCD_TRACE"`
	Debug     bool `env:"ACCD_DEBUG"`
	DebugHTTP bool `env:"ACCD_DEBUG_HTTP"`

	// NATSURL enables publishing to NATS when set
	NATSURL     string `env:"ACCD_NATS_URL"`
	NATSSubject string `env:"ACCD_NATS_SUBJECT,default=racedirector"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return ProcessConfig(ctx, envconfig.OsLookuper())
}

// ProcessConfig reads the config from l, without loading any .env file.
func ProcessConfig(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	config := Config{}

	if err := envconfig.ProcessWith(ctx, &config, l); err != nil {
		return nil, err
	}

	return &config, nil
}
