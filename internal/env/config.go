package env

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"os"
	"strings"
)

type Settings struct {
	Project         string   `mapstructure:"project"`
	Zone            string   `mapstructure:"zone"`
	Verbose         bool     `mapstructure:"verbose"`
	CredentialsFile string   `mapstructure:"credentials_file"`
	Scopes          []string `mapstructure:"scopes"`
	FailOnDrift     bool     `mapstructure:"fail_on_drift"`
}

var Config Settings

var ConfigFile string

const envPrefix = "GCPCTL"

var DefaultScopes = []string{"https://www.googleapis.com/auth/cloud-platform"}

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	viper.SetDefault("scopes", DefaultScopes)
	viper.SetDefault("fail_on_drift", true)
}

// Load reads the optional config file and decodes flags, environment and file values
// into Config. Flags must already be bound to viper.
func Load() error {
	if ConfigFile != "" {
		viper.SetConfigFile(ConfigFile)
	} else {
		viper.SetConfigName(".gcpctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if ConfigFile != "" || !errors.As(err, &notFound) {
			return errors.Wrap(err, "read config file")
		}
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := viper.Unmarshal(&Config, hook); err != nil {
		return errors.Wrap(err, "decode config")
	}
	return nil
}
