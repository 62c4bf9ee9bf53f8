package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ezerfernandes/mdxfix/internal/config"
	"github.com/ezerfernandes/mdxfix/internal/fixer"
	"github.com/ezerfernandes/mdxfix/internal/region"
	"github.com/spf13/cobra"
)

type options struct {
	config       string
	dir          string
	lang         string
	maxScan      int
	unterminated string
	strict       bool
	dryRun       bool
	check        bool
	keepGoing    bool
	verify       bool
	exec         string
	quiet        bool
	verbose      bool
}

func persistentFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&opts.config, "config", "c", "", "config file (default \"<dir>/"+config.DefaultPath+"\" when present)")
	flags.StringVarP(&opts.dir, "dir", "C", ".", "root directory patterns are relative to")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only log warnings and errors")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every scanned file")
}

func fixFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.Flags()

	flags.StringVarP(&opts.lang, "lang", "l", fixer.DefaultLang, "language tag of injected fences")
	flags.IntVar(&opts.maxScan, "max-scan", 0, "maximum number of lines a declaration may span (0 means unlimited)")
	flags.StringVar(&opts.unterminated, "unterminated", string(fixer.PolicyWrap), "what to do with unbalanced braces: wrap or skip")
	flags.BoolVar(&opts.strict, "strict", false, "confirm declarations with a JavaScript parser")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "report files that would change without writing them")
	flags.BoolVar(&opts.check, "check", false, "like --dry-run, but fail when a file would change")
	flags.BoolVarP(&opts.keepGoing, "keep-going", "k", false, "continue with the next file after a failure")
	flags.BoolVar(&opts.verify, "verify", false, "parse the rewritten files and check every injected fence")
	flags.StringVarP(&opts.exec, "exec", "x", "", "shell command to run after each rewritten file")
}

// loadConfig reads the config file. Pattern arguments replace the configured
// patterns.
func (opts *options) loadConfig(args []string) (*config.Config, error) {
	path, optional := opts.config, false
	if len(path) == 0 {
		path, optional = filepath.Join(opts.dir, config.DefaultPath), true
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Patterns = args
	}

	return cfg, nil
}

// applyFixFlags copies the fix flags that were set explicitly on cmd into
// cfg, so that flags win over the config file.
func (opts *options) applyFixFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("lang") {
		cfg.Lang = opts.lang
	}

	if flags.Changed("max-scan") {
		cfg.MaxScan = opts.maxScan
	}

	if flags.Changed("unterminated") {
		cfg.Unterminated = fixer.Policy(opts.unterminated)
	}

	if flags.Changed("exec") {
		cfg.Exec = opts.exec
	}

	return cfg.Validate()
}

func (opts *options) fixer(cfg *config.Config) (*fixer.Fixer, error) {
	policy, err := fixer.ParsePolicy(string(cfg.Unterminated))
	if err != nil {
		return nil, err
	}

	var matcher fixer.Matcher = fixer.PrefixMatcher(cfg.Keywords)
	if opts.strict {
		matcher = fixer.NewSyntaxMatcher(matcher)
	}

	var marker *region.Marker

	if len(cfg.IgnoreRegion) != 0 {
		if marker, err = region.New(cfg.IgnoreRegion); err != nil {
			return nil, fmt.Errorf("ignore_region: %w", err)
		}
	}

	return fixer.New(fixer.Options{
		Lang:         cfg.Lang,
		Matcher:      matcher,
		Region:       marker,
		MaxScan:      cfg.MaxScan,
		Unterminated: policy,
	}), nil
}
