package markdown

import (
	"context"

	"github.com/spf13/viper"

	"github.com/goliatone/go-markdown/internal/runtimeconfig"
)

var (
	ErrInvalidSetting          = runtimeconfig.ErrInvalidSetting
	ErrConfigFileRead          = runtimeconfig.ErrConfigFileRead
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config        = runtimeconfig.Config
	TableOptions  = runtimeconfig.TableOptions
	LoggingConfig = runtimeconfig.LoggingConfig
	ConfigOption  = runtimeconfig.ConfigOption
)

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ConfigFromMap overlays a host supplied settings mapping on the defaults.
// Keys are case-insensitive and table options may be nested under
// tableOptions.
func ConfigFromMap(overrides map[string]any) (Config, error) {
	return runtimeconfig.FromMap(overrides)
}

// LoadConfig resolves settings from defaults, a settings file and MARKDOWN_*
// environment variables. v may be nil.
func LoadConfig(ctx context.Context, v *viper.Viper) (Config, error) {
	return runtimeconfig.Load(ctx, v)
}

// ConfigOptions documents every conversion setting with its default.
func ConfigOptions() []ConfigOption {
	return runtimeconfig.GetConfigOptions()
}
