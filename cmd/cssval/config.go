package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yacobolo/cssval"
	"github.com/yacobolo/cssval/internal/engine"
)

var k = koanf.New(".")

// envSections are the config sections an env var may address with its first segment.
var envSections = map[string]bool{
	"validate": true,
	"engine":   true,
}

// listKeys hold comma-separated lists when set from the environment.
var listKeys = map[string]bool{
	"tolerate":         true,
	"validate.exclude": true,
	"engine.sources":   true,
}

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".cssval.yaml"
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence, only flags that were explicitly set)
	fs := cmd.Flags()
	if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		if f.Value.Type() == "duration" {
			return f.Name, f.Value.String()
		}
		return f.Name, posflag.FlagVal(fs, f)
	}), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (CSSVAL_* prefix)
	if err := k.Load(env.ProviderWithValue("CSSVAL_", ".", envKeyValue), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// envKeyValue maps an environment variable onto a config key:
//
//	CSSVAL_ERRORS_ONLY          -> errors-only
//	CSSVAL_ENGINE_CACHE_DIR     -> engine.cache-dir
//	CSSVAL_VALIDATE_EXCLUDE=a,b -> validate.exclude: [a b]
func envKeyValue(name, value string) (string, interface{}) {
	parts := strings.Split(strings.ToLower(strings.TrimPrefix(name, "CSSVAL_")), "_")

	key := strings.Join(parts, "-")
	if len(parts) > 1 && envSections[parts[0]] {
		key = parts[0] + "." + strings.Join(parts[1:], "-")
	}

	if listKeys[key] {
		return key, splitList(value)
	}
	return key, value
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// buildValidationConfig constructs the library's ValidationConfig from koanf state.
func buildValidationConfig() cssval.ValidationConfig {
	defaults := cssval.DefaultConfig()

	return cssval.ValidationConfig{
		Profile:             cssval.Profile(getStringWithFallback("profile", "profile", string(defaults.Profile))),
		WarningLevel:        getIntWithFallback("warning", "warning", defaults.WarningLevel),
		IncludeDeprecations: getBoolWithFallback("deprecations", "deprecations", false),
		ErrorsOnly:          getBoolWithFallback("errors-only", "errors-only", false),
		Tolerate:            getStringsWithFallback("tolerate", "tolerate", nil),
		OutputAsData:        getBoolWithFallback("json", "json", false),
		Exclude:             getStringsWithFallback("exclude", "validate.exclude", nil),
		RespectGitignore:    getBoolWithFallback("respect-gitignore", "validate.respect-gitignore", false),
	}
}

// buildReportConfig constructs the console report settings from koanf state.
func buildReportConfig(config cssval.ValidationConfig) cssval.ReportConfig {
	return cssval.ReportConfig{
		Validation: config,
		UseColors:  getBoolWithFallback("color", "color", false),
		PrintLines: getBoolWithFallback("print-lines", "validate.print-lines", false),
	}
}

// newProvisioner builds the engine provisioner from koanf state. The cache
// commands and validation share it so both see the same cache.
func newProvisioner(opts ...engine.Option) *engine.Provisioner {
	base := []engine.Option{
		engine.WithHostChecker(engine.HostChecker{Java: javaCommand()}),
	}
	if dir := getStringWithFallback("cache-dir", "engine.cache-dir", ""); dir != "" {
		base = append(base, engine.WithCacheDir(dir))
	}
	if sources := getStringsWithFallback("source", "engine.sources", nil); len(sources) > 0 {
		base = append(base, engine.WithSources(sources...))
	}
	if d := getDurationWithFallback("download-timeout", "engine.download-timeout", 0); d > 0 {
		base = append(base, engine.WithDownloadTimeout(d))
	}
	return engine.NewProvisioner(append(base, opts...)...)
}

func javaCommand() string {
	return getStringWithFallback("java", "engine.java", engine.DefaultJava)
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}

// getDurationWithFallback checks the flag key first, then the config file key, then returns the default.
// Values are Go duration strings such as "90s" or "2m".
func getDurationWithFallback(flagKey, configKey string, defaultVal time.Duration) time.Duration {
	for _, key := range []string{flagKey, configKey} {
		if !k.Exists(key) {
			continue
		}
		if d, err := time.ParseDuration(k.String(key)); err == nil {
			return d
		}
	}
	return defaultVal
}
