package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// ErrInvalidSetting indicates an override could not be coerced to the setting's type.
var ErrInvalidSetting = errors.New("markdown config: invalid setting")

// ErrConfigFileRead indicates an explicitly configured settings file could not be read.
var ErrConfigFileRead = errors.New("markdown config: unable to read config file")
var ErrLoggingProviderRequired = errors.New("markdown config: logging provider is required when logging is enabled")
var ErrLoggingProviderUnknown = errors.New("markdown config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("markdown config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("markdown config: logging format is invalid")

// TextCodeConfigInvalid is attached to every configuration error.
const TextCodeConfigInvalid = "MARKDOWN_CONFIG_INVALID"

// Setting keys, as accepted in override mappings and reported by Settings.
const (
	KeyAutoLinkURLs                  = "autoLinkUrls"
	KeyAnchorLinks                   = "anchorLinks"
	KeyAnchorSetID                   = "anchorSetId"
	KeyAnchorSetName                 = "anchorSetName"
	KeyAnchorWrapText                = "anchorWrapText"
	KeyAnchorClass                   = "anchorClass"
	KeyAnchorPrefix                  = "anchorPrefix"
	KeyAnchorSuffix                  = "anchorSuffix"
	KeyEnableYouTubeTransformer      = "enableYouTubeTransformer"
	KeyCodeStyleHTMLOpen             = "codeStyleHTMLOpen"
	KeyCodeStyleHTMLClose            = "codeStyleHTMLClose"
	KeyFencedCodeLanguageClassPrefix = "fencedCodeLanguageClassPrefix"
	KeyTableOptions                  = "tableOptions"
	KeyColumnSpans                   = "columnSpans"
	KeyAppendMissingColumns          = "appendMissingColumns"
	KeyDiscardExtraColumns           = "discardExtraColumns"
	KeyClassName                     = "className"
	KeyHeaderSeparationColumnMatch   = "headerSeparationColumnMatch"

	// legacyKeyAnchorSetName is the misspelled key older hosts still send.
	legacyKeyAnchorSetName = "achorSetName"
)

// Config is the immutable settings snapshot a conversion service is built from.
type Config struct {
	AutoLinkURLs                  bool          `json:"autoLinkUrls"`
	AnchorLinks                   bool          `json:"anchorLinks"`
	AnchorSetID                   bool          `json:"anchorSetId"`
	AnchorSetName                 bool          `json:"anchorSetName"`
	AnchorWrapText                bool          `json:"anchorWrapText"`
	AnchorClass                   string        `json:"anchorClass"`
	AnchorPrefix                  string        `json:"anchorPrefix"`
	AnchorSuffix                  string        `json:"anchorSuffix"`
	EnableYouTubeTransformer      bool          `json:"enableYouTubeTransformer"`
	CodeStyleHTMLOpen             string        `json:"codeStyleHTMLOpen"`
	CodeStyleHTMLClose            string        `json:"codeStyleHTMLClose"`
	FencedCodeLanguageClassPrefix string        `json:"fencedCodeLanguageClassPrefix"`
	Table                         TableOptions  `json:"tableOptions"`
	Logging                       LoggingConfig `json:"logging"`
}

// TableOptions controls how pipe tables are recognised and rendered.
type TableOptions struct {
	ColumnSpans                 bool   `json:"columnSpans"`
	AppendMissingColumns        bool   `json:"appendMissingColumns"`
	DiscardExtraColumns         bool   `json:"discardExtraColumns"`
	ClassName                   string `json:"className"`
	HeaderSeparationColumnMatch bool   `json:"headerSeparationColumnMatch"`
}

// LoggingConfig captures provider-specific options for runtime logging. It is
// not part of the conversion settings reported by Settings.
type LoggingConfig struct {
	Enabled   bool
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		AutoLinkURLs:                  true,
		AnchorLinks:                   true,
		AnchorSetID:                   true,
		AnchorSetName:                 true,
		AnchorWrapText:                false,
		AnchorClass:                   "anchor",
		AnchorPrefix:                  "",
		AnchorSuffix:                  "",
		EnableYouTubeTransformer:      false,
		CodeStyleHTMLOpen:             "<code>",
		CodeStyleHTMLClose:            "</code>",
		FencedCodeLanguageClassPrefix: "language-",
		Table: TableOptions{
			ColumnSpans:                 true,
			AppendMissingColumns:        true,
			DiscardExtraColumns:         true,
			ClassName:                   "table",
			HeaderSeparationColumnMatch: true,
		},
		Logging: LoggingConfig{
			Enabled:  false,
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Settings returns a fresh snapshot of the conversion settings keyed by their
// public names. Callers may mutate the result freely.
func (cfg Config) Settings() map[string]any {
	return map[string]any{
		KeyAutoLinkURLs:                  cfg.AutoLinkURLs,
		KeyAnchorLinks:                   cfg.AnchorLinks,
		KeyAnchorSetID:                   cfg.AnchorSetID,
		KeyAnchorSetName:                 cfg.AnchorSetName,
		KeyAnchorWrapText:                cfg.AnchorWrapText,
		KeyAnchorClass:                   cfg.AnchorClass,
		KeyAnchorPrefix:                  cfg.AnchorPrefix,
		KeyAnchorSuffix:                  cfg.AnchorSuffix,
		KeyEnableYouTubeTransformer:      cfg.EnableYouTubeTransformer,
		KeyCodeStyleHTMLOpen:             cfg.CodeStyleHTMLOpen,
		KeyCodeStyleHTMLClose:            cfg.CodeStyleHTMLClose,
		KeyFencedCodeLanguageClassPrefix: cfg.FencedCodeLanguageClassPrefix,
		KeyTableOptions: map[string]any{
			KeyColumnSpans:                 cfg.Table.ColumnSpans,
			KeyAppendMissingColumns:        cfg.Table.AppendMissingColumns,
			KeyDiscardExtraColumns:         cfg.Table.DiscardExtraColumns,
			KeyClassName:                   cfg.Table.ClassName,
			KeyHeaderSeparationColumnMatch: cfg.Table.HeaderSeparationColumnMatch,
		},
	}
}

var (
	classNamePattern   = regexp.MustCompile("^[^\"'<>`=]*$")
	classPrefixPattern = regexp.MustCompile("^[^\\s\"'<>`=]*$")
)

// Validate checks logging options and the settings that end up inside HTML
// attribute values.
func (cfg Config) Validate() error {
	if err := cfg.Logging.validate(); err != nil {
		return wrapConfigError(err, "invalid logging configuration")
	}

	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.AnchorClass,
			validation.Match(classNamePattern).Error("must not contain quotes, angle brackets or '='"),
		),
		validation.Field(&cfg.FencedCodeLanguageClassPrefix,
			validation.Match(classPrefixPattern).Error("must not contain whitespace, quotes, angle brackets or '='"),
		),
		validation.Field(&cfg.Table),
	)
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, "markdown config validation failed").
		WithTextCode(TextCodeConfigInvalid)
}

// Validate implements validation.Validatable.
func (t TableOptions) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ClassName,
			validation.Match(classNamePattern).Error("must not contain quotes, angle brackets or '='"),
		),
	)
}

// Validate checks the logging options alone.
func (l LoggingConfig) Validate() error {
	return wrapConfigError(l.validate(), "invalid logging configuration")
}

func (l LoggingConfig) validate() error {
	if !l.Enabled {
		return nil
	}
	provider := normalizeProvider(l.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(l.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(l.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func wrapConfigError(err error, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithTextCode(TextCodeConfigInvalid)
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
