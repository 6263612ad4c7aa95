// Package config reads dircontxt's global configuration file: a tiny
// KEY=VALUE grammar recognizing a single key, OUTPUT_MODE, the exact
// surface original_source/src/config.c's parse_config_line supports.
//
// spf13/viper is available elsewhere in the retrieval pack (see
// morler-codai's go.mod) but is not used here: viper targets
// structured encodings (YAML/JSON/TOML/env) and a single custom-grammar
// key/value file gains nothing from pulling in its dependency tree; see
// DESIGN.md for the full justification.
package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/Eris-Margeta/dircontxt/internal/dctxerr"
	"github.com/Eris-Margeta/dircontxt/internal/dctxlog"
)

// OutputMode selects which output artifacts a run produces.
type OutputMode int

const (
	Both OutputMode = iota
	TextOnly
	BinaryOnly
)

func (m OutputMode) String() string {
	switch m {
	case TextOnly:
		return "text"
	case BinaryOnly:
		return "binary"
	default:
		return "both"
	}
}

// Config is dircontxt's global, file-backed configuration.
type Config struct {
	OutputMode OutputMode
}

// Default returns the config used when no file exists or no recognized
// key is present: OUTPUT_MODE=both.
func Default() Config { return Config{OutputMode: Both} }

// Load reads path (typically $HOME/.config/dircontxt/config), applying
// Default() first and then any KEY=VALUE lines found. A missing file is
// not an error. Malformed lines are a dctxerr.KindConfig condition:
// logged and skipped, keeping whatever value was already set.
func Load(path string) Config {
	cfg := Default()
	if path == "" {
		return cfg
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			dctxlog.Warn("config: %v", dctxerr.WrapIO("open "+path, err))
		}
		return cfg
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		applyLine(&cfg, s.Text())
	}
	return cfg
}

func applyLine(cfg *Config, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		dctxlog.Warn("config: %v", dctxerr.Wrap(dctxerr.KindConfig, "parse line", errMalformed(line)))
		return
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case "OUTPUT_MODE":
		switch value {
		case "text", "text_only":
			cfg.OutputMode = TextOnly
		case "binary", "binary_only":
			cfg.OutputMode = BinaryOnly
		case "both":
			cfg.OutputMode = Both
		default:
			dctxlog.Warn("config: %v", dctxerr.Wrap(dctxerr.KindConfig, "OUTPUT_MODE", errMalformed(value)))
		}
	default:
		dctxlog.Warn("config: unrecognized key %q, ignoring", key)
	}
}

type errMalformedLine string

func (e errMalformedLine) Error() string { return "malformed: " + string(e) }

func errMalformed(s string) error { return errMalformedLine(s) }
