package runtimeconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. MARKDOWN_ANCHORCLASS or
// MARKDOWN_TABLEOPTIONS_CLASSNAME.
const EnvPrefix = "markdown"

// ConfigOption documents a single setting and its default.
type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns every conversion setting with its default and meaning.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: KeyAutoLinkURLs, Default: true, Comment: "Turn bare URLs and www. links into anchors"},
		{Key: KeyAnchorLinks, Default: true, Comment: "Emit an anchor element inside every heading"},
		{Key: KeyAnchorSetID, Default: true, Comment: "Heading anchors carry an id attribute"},
		{Key: KeyAnchorSetName, Default: true, Comment: "Heading anchors carry a name attribute"},
		{Key: KeyAnchorWrapText, Default: false, Comment: "Heading anchors wrap the heading text instead of preceding it"},
		{Key: KeyAnchorClass, Default: "anchor", Comment: "Class attribute of heading anchors"},
		{Key: KeyAnchorPrefix, Default: "", Comment: "Raw HTML placed inside heading anchors before the text"},
		{Key: KeyAnchorSuffix, Default: "", Comment: "Raw HTML placed inside heading anchors after the text"},
		{Key: KeyEnableYouTubeTransformer, Default: false, Comment: "Render @[title](youtube-url) links as embedded players"},
		{Key: KeyCodeStyleHTMLOpen, Default: "<code>", Comment: "Markup opening inline code"},
		{Key: KeyCodeStyleHTMLClose, Default: "</code>", Comment: "Markup closing inline code"},
		{Key: KeyFencedCodeLanguageClassPrefix, Default: "language-", Comment: "Class prefix for the info string of fenced code"},
		{Key: KeyTableOptions + "." + KeyColumnSpans, Default: true, Comment: "Consecutive pipes after a cell widen it with colspan"},
		{Key: KeyTableOptions + "." + KeyAppendMissingColumns, Default: true, Comment: "Pad short body rows to the header column count"},
		{Key: KeyTableOptions + "." + KeyDiscardExtraColumns, Default: true, Comment: "Drop body cells past the header column count"},
		{Key: KeyTableOptions + "." + KeyClassName, Default: "table", Comment: "Class attribute of rendered tables"},
		{Key: KeyTableOptions + "." + KeyHeaderSeparationColumnMatch, Default: true, Comment: "Only accept tables whose header and separator column counts match"},
	}
}

func loggingOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "logging.enabled", Default: false, Comment: "Enable runtime logging"},
		{Key: "logging.provider", Default: "gologger", Comment: "Logging provider, only gologger is supported"},
		{Key: "logging.level", Default: "info", Comment: "Minimum log level"},
		{Key: "logging.format", Default: "console", Comment: "go-logger output format: json, console or pretty"},
		{Key: "logging.addsource", Default: false, Comment: "Include caller information in go-logger entries"},
		{Key: "logging.focus", Default: []string{}, Comment: "Restrict go-logger output to the named loggers"},
	}
}

// applyDefaults seeds viper with the documented defaults.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
	for _, o := range loggingOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// FromMap merges a host supplied override mapping over the defaults. Keys are
// matched case-insensitively; table options may be given as a nested
// tableOptions mapping or as dotted keys.
func FromMap(overrides map[string]any) (Config, error) {
	v := viper.New()
	applyDefaults(v)

	normalized, err := normalizeOverrides(overrides)
	if err != nil {
		return Config{}, wrapConfigError(err, "invalid markdown settings")
	}
	if err := v.MergeConfigMap(normalized); err != nil {
		return Config{}, wrapConfigError(fmt.Errorf("%w: %v", ErrInvalidSetting, err), "invalid markdown settings")
	}
	promoteLegacyKeys(v)

	return decode(v)
}

// Load resolves configuration with precedence defaults < file < env. When the
// viper instance has no explicit config file, markdown.{yaml,toml,json} is
// searched for in the XDG config directory and the working directory.
func Load(ctx context.Context, v *viper.Viper) (Config, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Config{}, err
		}
	}
	if v == nil {
		v = viper.New()
	}

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("markdown")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "go-markdown"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "go-markdown"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, wrapConfigError(fmt.Errorf("%w: %v", ErrConfigFileRead, err), "unable to load markdown settings")
		}
	}
	promoteLegacyKeys(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return decode(v)
}

// promoteLegacyKeys copies legacy keys onto their canonical names when only
// the legacy spelling was supplied.
func promoteLegacyKeys(v *viper.Viper) {
	if v.InConfig(legacyKeyAnchorSetName) && !v.InConfig(KeyAnchorSetName) {
		_ = v.MergeConfigMap(map[string]any{
			strings.ToLower(KeyAnchorSetName): v.Get(legacyKeyAnchorSetName),
		})
	}
}

// normalizeOverrides copies the caller's mapping, turning any nested map into
// map[string]any so viper can traverse it. Nil values count as absent.
func normalizeOverrides(overrides map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(overrides))
	for key, value := range overrides {
		if value == nil {
			continue
		}
		if strings.EqualFold(key, KeyTableOptions) {
			nested, err := cast.ToStringMapE(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be a mapping, got %T", ErrInvalidSetting, KeyTableOptions, value)
			}
			copied := make(map[string]any, len(nested))
			for k, v := range nested {
				copied[k] = v
			}
			out[key] = copied
			continue
		}
		out[key] = value
	}
	return out, nil
}

// decode reads every setting back out of viper with strict per-key coercion
// and validates the result.
func decode(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	var problems []string

	readBool := func(key string, dst *bool) {
		value, err := cast.ToBoolE(v.Get(key))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: expected boolean, got %T", key, v.Get(key)))
			return
		}
		*dst = value
	}
	readString := func(key string, dst *string) {
		switch value := v.Get(key).(type) {
		case string:
			*dst = value
		case nil:
		default:
			problems = append(problems, fmt.Sprintf("%s: expected string, got %T", key, value))
		}
	}

	readBool(KeyAutoLinkURLs, &cfg.AutoLinkURLs)
	readBool(KeyAnchorLinks, &cfg.AnchorLinks)
	readBool(KeyAnchorSetID, &cfg.AnchorSetID)
	readBool(KeyAnchorSetName, &cfg.AnchorSetName)
	readBool(KeyAnchorWrapText, &cfg.AnchorWrapText)
	readString(KeyAnchorClass, &cfg.AnchorClass)
	readString(KeyAnchorPrefix, &cfg.AnchorPrefix)
	readString(KeyAnchorSuffix, &cfg.AnchorSuffix)
	readBool(KeyEnableYouTubeTransformer, &cfg.EnableYouTubeTransformer)
	readString(KeyCodeStyleHTMLOpen, &cfg.CodeStyleHTMLOpen)
	readString(KeyCodeStyleHTMLClose, &cfg.CodeStyleHTMLClose)
	readString(KeyFencedCodeLanguageClassPrefix, &cfg.FencedCodeLanguageClassPrefix)

	table := KeyTableOptions + "."
	readBool(table+KeyColumnSpans, &cfg.Table.ColumnSpans)
	readBool(table+KeyAppendMissingColumns, &cfg.Table.AppendMissingColumns)
	readBool(table+KeyDiscardExtraColumns, &cfg.Table.DiscardExtraColumns)
	readString(table+KeyClassName, &cfg.Table.ClassName)
	readBool(table+KeyHeaderSeparationColumnMatch, &cfg.Table.HeaderSeparationColumnMatch)

	readBool("logging.enabled", &cfg.Logging.Enabled)
	readString("logging.provider", &cfg.Logging.Provider)
	readString("logging.level", &cfg.Logging.Level)
	readString("logging.format", &cfg.Logging.Format)
	readBool("logging.addsource", &cfg.Logging.AddSource)
	cfg.Logging.Focus = v.GetStringSlice("logging.focus")

	if len(problems) > 0 {
		sort.Strings(problems)
		err := fmt.Errorf("%w: %s", ErrInvalidSetting, strings.Join(problems, "; "))
		return Config{}, wrapConfigError(err, "invalid markdown settings")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
