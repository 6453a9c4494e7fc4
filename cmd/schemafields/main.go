// Command schemafields compiles a JSON Schema (or an OpenAPI component or
// request body) into a field tree. It prints the compiled outline, validates
// a data document against it or collects a record interactively.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemafields/internal/loader"
	"github.com/goliatone/go-schemafields/internal/prompt"
	"github.com/goliatone/go-schemafields/pkg/fields"
	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/openapi"
	"github.com/goliatone/go-schemafields/pkg/schema"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitError   = 2
)

type cliOptions struct {
	schema      string
	component   string
	operation   string
	config      string
	data        string
	name        string
	interactive bool
	debug       bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, nil))
}

// run executes the command. driver overrides the terminal prompts when set.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, driver prompt.Driver) int {
	var opts cliOptions
	flags := flag.NewFlagSet("schemafields", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.schema, "schema", "", "JSON Schema or OpenAPI document path or URL")
	flags.StringVar(&opts.component, "openapi-component", "", "OpenAPI component schema to compile")
	flags.StringVar(&opts.operation, "openapi-operation", "", "OpenAPI operation whose request body is compiled")
	flags.StringVar(&opts.config, "config", "", "YAML or JSON field config path or URL")
	flags.StringVar(&opts.data, "data", "", "JSON or YAML record to validate")
	flags.StringVar(&opts.name, "name", "", "name of the root field")
	flags.BoolVar(&opts.interactive, "interactive", false, "prompt for a record")
	flags.BoolVar(&opts.debug, "debug", false, "log compilation events")
	if err := flags.Parse(args); err != nil {
		return exitError
	}

	level := zerolog.InfoLevel
	if opts.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()

	code, err := execute(ctx, opts, stdout, logger, driver)
	if err != nil {
		logger.Error().Err(err).Msg("schemafields failed")
	}
	return code
}

func execute(ctx context.Context, opts cliOptions, stdout io.Writer, logger zerolog.Logger, driver prompt.Driver) (int, error) {
	if strings.TrimSpace(opts.schema) == "" {
		return exitError, errors.New("-schema is required")
	}
	ldr := loader.New(loader.WithHTTPFallback(30 * time.Second))

	doc, err := loadSchema(ctx, ldr, opts, logger)
	if err != nil {
		return exitError, err
	}

	config := fields.Config{}
	if opts.config != "" {
		raw, err := loadDocument(ctx, ldr, opts.config)
		if err != nil {
			return exitError, fmt.Errorf("load config: %w", err)
		}
		if config, err = fields.LoadConfig(raw.Raw()); err != nil {
			return exitError, err
		}
	}

	root, err := fields.Compile(doc,
		fields.WithName(opts.name),
		fields.WithConfig(config),
		fields.WithLogger(logger))
	if err != nil {
		return exitError, fmt.Errorf("compile: %w", err)
	}
	if err := config.Check(root); err != nil {
		return exitError, err
	}

	if opts.data == "" && !opts.interactive {
		return exitOK, writeJSON(stdout, root.Outline())
	}

	n, err := root.Materialize()
	if err != nil {
		return exitError, fmt.Errorf("materialize: %w", err)
	}

	var record any
	if opts.data != "" {
		doc, err := loadDocument(ctx, ldr, opts.data)
		if err != nil {
			return exitError, fmt.Errorf("load data: %w", err)
		}
		decoded, err := doc.Parse()
		if err != nil {
			return exitError, err
		}
		record = schema.Plain(decoded)
	}
	bound := n.Bind(node.Bindings{node.BindingData: record})

	if opts.interactive {
		collectorOpts := []prompt.Option{prompt.WithLogger(logger), prompt.WithDriver(driver)}
		if current, ok := record.(map[string]any); ok {
			collectorOpts = append(collectorOpts, prompt.WithPrefill(current))
		}
		collected, err := prompt.New(collectorOpts...).Collect(ctx, n)
		if err != nil {
			return exitError, fmt.Errorf("collect: %w", err)
		}
		record = collected
	}

	out, err := bound.Deserialize(record)
	if err != nil {
		if inv, ok := node.AsInvalid(err); ok {
			logger.Debug().Int("errors", len(inv.Asdict())).Msg("record rejected")
			return exitInvalid, writeJSON(stdout, inv.Asdict())
		}
		return exitError, err
	}
	return exitOK, writeJSON(stdout, out)
}

func loadSchema(ctx context.Context, ldr *loader.Loader, opts cliOptions, logger zerolog.Logger) (*schema.Map, error) {
	src, err := parseSource(opts.schema)
	if err != nil {
		return nil, err
	}
	doc, err := ldr.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	wantsOpenAPI := opts.component != "" || opts.operation != ""
	if !wantsOpenAPI && !openapi.Detect(doc.Raw()) {
		return doc.ParseObject()
	}

	spec, err := openapi.Parse(ctx, doc, openapi.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	switch {
	case opts.component != "":
		return spec.ComponentSchema(opts.component)
	case opts.operation != "":
		return spec.RequestSchema(opts.operation)
	default:
		return nil, fmt.Errorf("%s is an OpenAPI document: pick one of -openapi-component %s",
			doc.Location(), strings.Join(spec.Components(), ", "))
	}
}

func loadDocument(ctx context.Context, ldr *loader.Loader, location string) (schema.Document, error) {
	src, err := parseSource(location)
	if err != nil {
		return schema.Document{}, err
	}
	return ldr.Load(ctx, src)
}

// parseSource recovers from the panic SourceFromURL raises on malformed URLs.
func parseSource(location string) (src schema.Source, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid source %q: %v", location, r)
		}
	}()
	src = schema.ParseSource(location)
	if src == nil {
		return nil, fmt.Errorf("invalid source %q", location)
	}
	return src, nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
