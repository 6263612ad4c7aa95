// Package ignore implements dircontxt's three-tier ignore engine:
// hardcoded defaults, a global file at $HOME/.config/dircontxt/ignore,
// and a project file at <root>/.dircontxtignore, matched with
// last-match-wins semantics over a flat, ordered rule list — the same
// "linear scan, no precedence structure" design the teacher's
// walkwalk.gitPattern matcher uses for .gitignore, generalized here to
// the pattern taxonomy (BASENAME/PATH/PREFIX/SUFFIX) dircontxt needs.
package ignore

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eris-Margeta/dircontxt/internal/dctxerr"
	"github.com/Eris-Margeta/dircontxt/internal/dctxlog"
)

// Kind tags how a Rule's pattern is matched.
type Kind int

const (
	Basename Kind = iota
	Path
	Prefix
	Suffix
)

// Rule is one parsed ignore pattern. Order within a list encodes
// priority: later rules in the list win ties via last-match-wins.
type Rule struct {
	Pattern       string
	Kind          Kind
	DirOnly       bool
	Negation      bool
}

// DefaultIgnoreFilename is the project-level ignore file name.
const DefaultIgnoreFilename = ".dircontxtignore"

// GlobalIgnorePath returns $HOME/.config/dircontxt/ignore, or "" if HOME
// is unset.
func GlobalIgnorePath(home string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "dircontxt", "ignore")
}

// Engine holds a loaded, ordered rule list and classifies items against it.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine from a pre-built rule list, in priority order.
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the engine's loaded rule list, lowest to highest priority.
func (e *Engine) Rules() []Rule { return e.rules }

// Load builds the three-tier rule set: hardcoded defaults (including
// the snapshot's own output filenames, so a run never snapshots its
// own prior output), the global ignore file, then the project ignore
// file, in that priority order (lowest to highest). Missing ignore
// files are not an error; an unreadable-for-other-reasons file is
// logged as an IO error and the run continues with whatever rules were
// loaded so far.
func Load(home, root string, outputFilenames ...string) *Engine {
	rules := defaultRules(outputFilenames)

	if home != "" {
		rules = append(rules, loadFile(GlobalIgnorePath(home))...)
	}
	rules = append(rules, loadFile(filepath.Join(root, DefaultIgnoreFilename))...)

	return NewEngine(rules)
}

func defaultRules(outputFilenames []string) []Rule {
	rules := []Rule{
		{Pattern: ".git", Kind: Basename, DirOnly: true},
		{Pattern: ".DS_Store", Kind: Basename},
		{Pattern: "node_modules", Kind: Basename, DirOnly: true},
		// Diff files are named .llmcontext-Vx.y-diff.txt at the
		// snapshot root; ignore the whole family by prefix rather than
		// tracking one name per version.
		{Pattern: ".llmcontext-", Kind: Prefix},
	}
	for _, name := range outputFilenames {
		if name != "" {
			rules = append(rules, Rule{Pattern: name, Kind: Basename})
		}
	}
	return rules
}

// loadFile reads one ignore-grammar file and returns its parsed rules.
// A missing file yields no rules and no error; any other open/read
// failure is logged and likewise yields no rules, since the caller must
// continue with whatever was loaded so far.
func loadFile(path string) []Rule {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			dctxlog.Warn("ignore: %v", dctxerr.WrapIO("open "+path, err))
		}
		return nil
	}
	defer f.Close()

	var rules []Rule
	s := bufio.NewScanner(f)
	for s.Scan() {
		if rule, ok := ParseLine(s.Text()); ok {
			rules = append(rules, rule)
		}
	}
	if err := s.Err(); err != nil && err != io.EOF {
		dctxlog.Warn("ignore: %v", dctxerr.WrapIO("read "+path, err))
	}
	return rules
}

// ParseLine parses one line of ignore-file grammar into a Rule. Blank
// lines and comment lines (first non-space char '#') are skipped (ok=false).
func ParseLine(raw string) (Rule, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return Rule{}, false
	}

	var rule Rule
	if strings.HasPrefix(line, "!") {
		rule.Negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.DirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if line == "" {
		return Rule{}, false
	}

	switch {
	case strings.Contains(line, "/"):
		if strings.HasSuffix(line, "*") {
			rule.Kind = Prefix
			line = strings.TrimSuffix(line, "*")
		} else {
			rule.Kind = Path
		}
	case strings.HasPrefix(line, "*"):
		rule.Kind = Suffix
		line = strings.TrimPrefix(line, "*")
	default:
		rule.Kind = Basename
	}
	rule.Pattern = line
	return rule, true
}

// Match classifies the item at relPath (its basename is name, its
// directory-ness is isDir) using last-match-wins over the loaded rules:
// starting from ignored=false, every matching rule sets
// ignored = !rule.Negation; the final value after the full scan is returned.
func (e *Engine) Match(relPath, name string, isDir bool) bool {
	ignored := false
	for _, rule := range e.rules {
		if rule.DirOnly && !isDir {
			continue
		}
		if ruleMatches(rule, relPath, name) {
			ignored = !rule.Negation
		}
	}
	return ignored
}

func ruleMatches(rule Rule, relPath, name string) bool {
	switch rule.Kind {
	case Basename:
		return name == rule.Pattern
	case Path:
		return relPath == rule.Pattern
	case Prefix:
		return strings.HasPrefix(relPath, rule.Pattern)
	case Suffix:
		return strings.HasSuffix(name, rule.Pattern)
	default:
		return false
	}
}
