package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/enprofmi2022/osmfilter/osmium"
)

// Config is the content of the -config JSON file.
type Config struct {
	EdgeConfig   string `json:"edgeconfig"`
	SightsConfig string `json:"sightsconfig"`
	Expressions  string `json:"expressions"`
	Osmium       string `json:"osmium"`
	DestDir      string `json:"destdir"`
}

const defaultEdgeConfig = "edge_type_config.json"
const defaultSightsConfig = "sights_config.json"
const defaultExpressions = "filter.txt"

type Base struct {
	EdgeConfig   string
	SightsConfig string
	Expressions  string
	ConfigFile   string
	Quiet        bool
}

type Run struct {
	Base
	Osmium  string
	DestDir string
}

func addBaseFlags(opts *Base, flags *flag.FlagSet) {
	flags.StringVar(&opts.EdgeConfig, "edgeconfig", defaultEdgeConfig, "edge type config")
	flags.StringVar(&opts.SightsConfig, "sightsconfig", defaultSightsConfig, "sights config")
	flags.StringVar(&opts.Expressions, "expressions", defaultExpressions, "expression file to write")
	flags.StringVar(&opts.ConfigFile, "config", "", "config (json)")
	flags.BoolVar(&opts.Quiet, "quiet", false, "quiet log output")
}

func loadConfig(filename string) (*Config, error) {
	conf := &Config{}
	if filename == "" {
		return conf, nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	if err := decoder.Decode(conf); err != nil {
		return nil, fmt.Errorf("parsing %s: %v", filename, err)
	}
	return conf, nil
}

// updateFromConfig replaces all options that are still at their default with
// the values from the config file.
func (o *Base) updateFromConfig(conf *Config) {
	if conf.EdgeConfig != "" && o.EdgeConfig == defaultEdgeConfig {
		o.EdgeConfig = conf.EdgeConfig
	}
	if conf.SightsConfig != "" && o.SightsConfig == defaultSightsConfig {
		o.SightsConfig = conf.SightsConfig
	}
	if conf.Expressions != "" && o.Expressions == defaultExpressions {
		o.Expressions = conf.Expressions
	}
}

func (o *Run) updateFromConfig(conf *Config) {
	o.Base.updateFromConfig(conf)
	if conf.Osmium != "" && o.Osmium == osmium.DefaultBinary {
		o.Osmium = conf.Osmium
	}
	if o.DestDir == "" {
		o.DestDir = conf.DestDir
	}
}

func (o *Base) check() []error {
	errs := []error{}
	if o.EdgeConfig == "" {
		errs = append(errs, errors.New("missing edgeconfig"))
	}
	if o.SightsConfig == "" {
		errs = append(errs, errors.New("missing sightsconfig"))
	}
	if o.Expressions == "" {
		errs = append(errs, errors.New("missing expressions"))
	}
	return errs
}

func (o *Run) check() []error {
	errs := o.Base.check()
	if o.DestDir == "" {
		errs = append(errs, errors.New("missing destdir"))
	}
	return errs
}

func usage(flags *flag.FlagSet, args string) func() {
	return func() {
		fmt.Fprintf(flags.Output(), "Usage: %s %s [args]%s\n\n", os.Args[0], flags.Name(), args)
		flags.PrintDefaults()
	}
}

func parseBase(name string, args []string) (Base, []string, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	opts := Base{}
	addBaseFlags(&opts, flags)
	if name == "check" {
		flags.Usage = usage(flags, " [FILE]")
	} else {
		flags.Usage = usage(flags, "")
	}
	if err := flags.Parse(args); err != nil {
		return opts, nil, err
	}
	conf, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return opts, nil, err
	}
	opts.updateFromConfig(conf)
	return opts, flags.Args(), nil
}

func parseRun(args []string) (Run, []string, error) {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	opts := Run{}
	addBaseFlags(&opts.Base, flags)
	flags.StringVar(&opts.Osmium, "osmium", osmium.DefaultBinary, "osmium binary")
	flags.StringVar(&opts.DestDir, "destdir", "", "directory for the filtered file")
	flags.Usage = usage(flags, " SOURCE")
	if err := flags.Parse(args); err != nil {
		return opts, nil, err
	}
	conf, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return opts, nil, err
	}
	opts.updateFromConfig(conf)
	return opts, flags.Args(), nil
}

func ParseCompile(args []string) Base {
	opts, _, err := parseBase("compile", args)
	if err == flag.ErrHelp {
		os.Exit(2)
	}
	if err != nil {
		reportErrors([]error{err})
	}
	if errs := opts.check(); len(errs) != 0 {
		reportErrors(errs)
	}
	return opts
}

// ParseRun parses the run options and returns them with the source file.
func ParseRun(args []string) (Run, string) {
	opts, rest, err := parseRun(args)
	if err == flag.ErrHelp {
		os.Exit(2)
	}
	if err != nil {
		reportErrors([]error{err})
	}
	errs := opts.check()
	if len(rest) != 1 {
		errs = append(errs, errors.New("expected exactly one source file"))
	}
	if len(errs) != 0 {
		reportErrors(errs)
	}
	return opts, rest[0]
}

// ParseCheck parses the check options and returns the expression file to
// check. It defaults to the -expressions file.
func ParseCheck(args []string) (Base, string) {
	opts, rest, err := parseBase("check", args)
	if err == flag.ErrHelp {
		os.Exit(2)
	}
	if err != nil {
		reportErrors([]error{err})
	}
	if len(rest) > 1 {
		reportErrors([]error{errors.New("expected at most one expression file")})
	}
	if len(rest) == 1 {
		return opts, rest[0]
	}
	return opts, opts.Expressions
}

func reportErrors(errs []error) {
	fmt.Println("errors in config/options:")
	for _, err := range errs {
		fmt.Printf("\t%s\n", err)
	}
	os.Exit(1)
}
