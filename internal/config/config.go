package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/pulljson/internal/exit"
	"github.com/jacoelho/pulljson/internal/pull"
	"github.com/jacoelho/pulljson/internal/report"
)

const (
	// DefaultCapture is the default capture buffer size in bytes.
	DefaultCapture = 1024
	// DefaultArena is the default arena budget in bytes.
	DefaultArena = 1 << 20
	// Stdin names standard input as the document source.
	Stdin = "-"
)

// Mode selects what the tool does with the document.
type Mode string

const (
	ModeDump    Mode = "dump"
	ModeFind    Mode = "find"
	ModeExtract Mode = "extract"
	ModeParse   Mode = "parse"
)

var (
	ErrNoArguments     = errors.New("no arguments provided")
	ErrNoInput         = errors.New("no input file specified")
	ErrTooManyInputs   = errors.New("only one input file can be read")
	ErrUnknownMode     = errors.New("unknown mode")
	ErrUnknownAxis     = errors.New("unknown axis")
	ErrMissingField    = errors.New("find mode needs --field")
	ErrMissingQuery    = errors.New("extract mode needs --query or --path")
	ErrConflictQuery   = errors.New("--query and --path cannot be combined")
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrEmptyPath       = errors.New("path cannot be empty")
)

// Config represents the complete configuration for the pulljson tool.
type Config struct {
	Input string
	Mode  Mode

	// find
	Field string
	Axis  pull.Axis

	// extract
	Paths     []string
	QueryFile string

	// memory
	Capture int
	Arena   int
	Pool    bool

	RateLimit float64 // Bytes per second (0 = unlimited)
	Report    report.Format
	Debug     bool
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeDump, ModeParse:
	case ModeFind:
		if c.Field == "" {
			return ErrMissingField
		}
	case ModeExtract:
		if c.QueryFile != "" && len(c.Paths) > 0 {
			return ErrConflictQuery
		}
		if c.QueryFile == "" && len(c.Paths) == 0 {
			return ErrMissingQuery
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMode, c.Mode)
	}

	if c.Capture <= 0 {
		return fmt.Errorf("%w: --capture %d", ErrInvalidCapacity, c.Capture)
	}
	if c.Arena <= 0 {
		return fmt.Errorf("%w: --arena %d", ErrInvalidCapacity, c.Arena)
	}

	if c.Input != Stdin {
		if _, err := os.Stat(c.Input); err != nil {
			return fmt.Errorf("input file %s not found: %w", c.Input, err)
		}
	}
	if c.QueryFile != "" {
		if _, err := os.Stat(c.QueryFile); err != nil {
			return fmt.Errorf("query file %s not found: %w", c.QueryFile, err)
		}
	}

	return nil
}

// ParseAxis maps an axis name to its value.
func ParseAxis(name string) (pull.Axis, error) {
	for _, axis := range []pull.Axis{pull.Forward, pull.Siblings, pull.Descendants} {
		if strings.EqualFold(name, axis.String()) {
			return axis, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownAxis, name)
}

// pathsFlag implements flag.Value for parsing multiple -path flags.
type pathsFlag []string

// String returns a string representation of the paths flag for flag.Value interface.
func (p *pathsFlag) String() string {
	return strings.Join(*p, ",")
}

// Set appends a path for flag.Value interface.
func (p *pathsFlag) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyPath
	}
	*p = append(*p, value)
	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Suppress the default usage output since we handle it ourselves
	fs.Usage = func() {}
	// Suppress error output since we handle it ourselves
	fs.SetOutput(io.Discard)

	var (
		mode      = fs.String("mode", string(ModeDump), "What to do with the document: dump, find, extract or parse")
		field     = fs.String("field", "", "Field name to look for in find mode")
		axis      = fs.String("axis", pull.Forward.String(), "Search axis for find mode: forward, siblings or descendants")
		paths     pathsFlag
		queryFile = fs.String("query", "", "Path to a YAML query file for extract mode")
		capture   = fs.Int("capture", DefaultCapture, "Capture buffer size in bytes")
		arenaSize = fs.Int("arena", DefaultArena, "Arena budget in bytes")
		pool      = fs.Bool("pool", false, "Share storage between equal strings")
		rateLimit = fs.Float64("rate", 0, "Read rate in bytes per second (0 for unlimited)")
		format    = fs.String("report", string(report.FormatText), "Report format: text or json")
		debug     = fs.Bool("debug", false, "Enable debug logging")
	)

	fs.Var(&paths, "path", "JSONPath to extract (can be used multiple times)")

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Usagef("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	inputs := fs.Args()
	switch {
	case len(inputs) == 0:
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoInput, Usage())
	case len(inputs) > 1:
		return nil, exit.Usagef("Error: %v\n\n%s", ErrTooManyInputs, Usage())
	}

	parsedAxis, err := ParseAxis(*axis)
	if err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}
	reportFormat, err := report.ParseFormat(*format)
	if err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	config := &Config{
		Input:     inputs[0],
		Mode:      Mode(*mode),
		Field:     *field,
		Axis:      parsedAxis,
		Paths:     paths,
		QueryFile: *queryFile,
		Capture:   *capture,
		Arena:     *arenaSize,
		Pool:      *pool,
		RateLimit: *rateLimit,
		Report:    reportFormat,
		Debug:     *debug,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `pulljson - streaming JSON reader with a bounded memory budget

Usage: pulljson [options] <file|->

Options:
  --mode MODE             dump, find, extract or parse (default: dump)
  --field NAME            Field name to look for in find mode
  --axis AXIS             forward, siblings or descendants (default: forward)
  --path JSONPATH         Path to extract (can be used multiple times)
  --query FILE            YAML query file for extract mode
  --capture N             Capture buffer size in bytes (default: 1024)
  --arena N               Arena budget in bytes (default: 1048576)
  --pool                  Share storage between equal strings
  --rate N                Read rate in bytes per second (0 for unlimited)
  --report FORMAT         Report format: text or json (default: text)
  --debug                 Enable debug logging
  -h, --help              Show this help message

Examples:
  pulljson doc.json                                  # Print every token
  pulljson --mode find --field id doc.json           # Print every value of "id"
  pulljson --mode extract --path '$.items[0].name' - # Extract from stdin
  pulljson --mode extract --query query.yaml doc.json
  pulljson --mode parse --pool --arena 65536 doc.json`
}
