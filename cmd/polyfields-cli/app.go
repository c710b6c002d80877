package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-polyfields/internal/fixture"
	"github.com/goliatone/go-polyfields/pkg/fieldconfig"
	"github.com/goliatone/go-polyfields/pkg/form"
	"github.com/goliatone/go-polyfields/pkg/i18n"
	"github.com/goliatone/go-polyfields/pkg/model"
	"github.com/goliatone/go-polyfields/pkg/polymorphic"
)

// envConfig holds defaults read from the environment; flags override them.
type envConfig struct {
	Locale     string `env:"POLYFIELDS_LOCALE" envDefault:"en-US"`
	PathPrefix string `env:"POLYFIELDS_PATH_PREFIX"`
	LogLevel   string `env:"POLYFIELDS_LOG_LEVEL" envDefault:"warn"`
	Engine     string `env:"POLYFIELDS_ENGINE" envDefault:"pongo2"`
}

type options struct {
	envConfig
	fixture     string
	configDir   string
	association string
	output      string
	interactive bool
	sanitize    bool
	engine      form.Engine
}

func parseOptions(args []string) (options, error) {
	var opts options
	if err := env.Parse(&opts.envConfig); err != nil {
		return options{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("polyfields-cli", flag.ContinueOnError)
	fs.StringVar(&opts.fixture, "fixture", "", "owner fixture file (YAML or JSON)")
	fs.StringVar(&opts.configDir, "config", ".", "directory holding association and type definitions")
	fs.StringVar(&opts.association, "association", "", "association key (owner.association)")
	fs.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	fs.StringVar(&opts.Locale, "locale", opts.Locale, "locale used for labels")
	fs.StringVar(&opts.PathPrefix, "path-prefix", opts.PathPrefix, "override of the data-path URL prefix")
	fs.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&opts.Engine, "engine", opts.Engine, "template engine (pongo2, go-template)")
	fs.BoolVar(&opts.interactive, "interactive", false, "prompt for association and offered types")
	fs.BoolVar(&opts.sanitize, "sanitize", true, "sanitise field markup")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if strings.TrimSpace(opts.fixture) == "" {
		return options{}, errors.New("-fixture is required")
	}
	engine, err := form.ParseEngine(opts.Engine)
	if err != nil {
		return options{}, err
	}
	opts.engine = engine
	return opts, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.WarnLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func run(ctx context.Context, args []string, stdout io.Writer, prompt prompter) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := fieldconfig.LoadFS(os.DirFS(opts.configDir))
	if err != nil {
		return err
	}
	registry, err := store.Registry()
	if err != nil {
		return err
	}

	key, err := chooseAssociation(opts, store.Keys(), prompt)
	if err != nil {
		return err
	}
	assoc, ok := store.Association(key)
	if !ok {
		return fmt.Errorf("association %q is not configured (known: %s)", key, strings.Join(store.Keys(), ", "))
	}

	cfg, err := assoc.Config(registry)
	if err != nil {
		return err
	}
	if opts.PathPrefix != "" {
		cfg.PathPrefix = opts.PathPrefix
	}
	if opts.interactive && len(cfg.Types) > 1 {
		if cfg.Types, err = chooseTypes(cfg.Types, prompt); err != nil {
			return err
		}
	}

	fx, err := fixture.LoadWithTypes(os.DirFS(filepath.Dir(opts.fixture)), filepath.Base(opts.fixture), registry)
	if err != nil {
		return err
	}

	catalog, err := i18n.Default()
	if err != nil {
		return err
	}
	rendererOpts := []polymorphic.Option{
		polymorphic.WithTranslator(catalog),
		polymorphic.WithLocale(opts.Locale),
		polymorphic.WithLogger(logger),
	}
	if opts.sanitize {
		rendererOpts = append(rendererOpts, polymorphic.WithFieldSanitizer(form.FieldPolicy()))
	}
	renderer := polymorphic.New(rendererOpts...)

	f, err := form.New(fx.Owner, fx.ObjectName, form.WithEngine(opts.engine))
	if err != nil {
		return err
	}
	fragment, err := renderer.Render(ctx, f, assoc.Name, assoc.Slot, cfg, func(b *form.Builder, _ *int) error {
		return fieldconfig.Render(b, assoc.Fields)
	})
	if err != nil {
		return err
	}

	logger.Info("fragment rendered", zap.String("association", key), zap.Int("bytes", len(fragment)))

	if opts.output == "" {
		_, err = fmt.Fprintln(stdout, fragment)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(fragment+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "Fragment written to %s\n", opts.output)
	return err
}

func chooseAssociation(opts options, keys []string, prompt prompter) (string, error) {
	if key := strings.TrimSpace(opts.association); key != "" {
		return key, nil
	}
	switch {
	case len(keys) == 0:
		return "", errors.New("no associations configured")
	case len(keys) == 1:
		return keys[0], nil
	case opts.interactive && prompt != nil:
		index, err := prompt.Select("Association", keys)
		if err != nil {
			return "", err
		}
		if index < 0 || index >= len(keys) {
			return "", errors.New("no association selected")
		}
		return keys[index], nil
	default:
		return "", fmt.Errorf("-association is required (known: %s)", strings.Join(keys, ", "))
	}
}

func chooseTypes(types []model.Type, prompt prompter) ([]model.Type, error) {
	if prompt == nil {
		return types, nil
	}
	names := make([]string, 0, len(types))
	defaults := make([]int, 0, len(types))
	for i, t := range types {
		names = append(names, t.Name)
		defaults = append(defaults, i)
	}
	picked, err := prompt.MultiSelect("Types offered in the selector", names, defaults)
	if err != nil {
		return nil, err
	}
	slices.Sort(picked)
	out := make([]model.Type, 0, len(picked))
	for _, index := range slices.Compact(picked) {
		if index >= 0 && index < len(types) {
			out = append(out, types[index])
		}
	}
	return out, nil
}
