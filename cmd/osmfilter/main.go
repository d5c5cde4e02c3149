package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/enprofmi2022/osmfilter"
	"github.com/enprofmi2022/osmfilter/config"
	"github.com/enprofmi2022/osmfilter/filter"
	"github.com/enprofmi2022/osmfilter/log"
	"github.com/enprofmi2022/osmfilter/osmium"
)

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Available commands:")
	fmt.Fprintln(os.Stderr, "\tcompile")
	fmt.Fprintln(os.Stderr, "\trun")
	fmt.Fprintln(os.Stderr, "\tcheck")
	fmt.Fprintln(os.Stderr, "\tversion")
}

func compile(opts config.Base) {
	defer log.Step("Compiling filter expressions")()
	exprs, err := filter.CompileFiles(opts.EdgeConfig, opts.SightsConfig, opts.Expressions)
	if err != nil {
		log.Fatal(err)
	}
	counts := filter.Count(exprs)
	log.Printf("[info] wrote %d way and %d node expressions to %s",
		counts[filter.Way], counts[filter.Node], opts.Expressions)
}

func Main(usage func()) {
	if len(os.Args) <= 1 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compile":
		opts := config.ParseCompile(os.Args[2:])
		log.SetQuiet(opts.Quiet)
		compile(opts)
	case "run":
		opts, source := config.ParseRun(os.Args[2:])
		log.SetQuiet(opts.Quiet)
		compile(opts.Base)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		step := log.Step("Filtering " + source)
		err := osmium.Run(ctx, osmium.Options{
			Binary:      opts.Osmium,
			Source:      source,
			Expressions: opts.Expressions,
			DestDir:     opts.DestDir,
		})
		stop()
		if err != nil {
			// osmium failures are reported, not handled
			log.Warnf("osmium: %s", err)
		}
		step()
	case "check":
		opts, filename := config.ParseCheck(os.Args[2:])
		log.SetQuiet(opts.Quiet)
		exprs, err := filter.ReadFile(filename)
		if err != nil {
			log.Fatal(err)
		}
		counts := filter.Count(exprs)
		fmt.Printf("%s: %d expressions (%d way, %d node, %d relation)\n",
			filename, len(exprs), counts[filter.Way], counts[filter.Node], counts[filter.Relation])
	case "version":
		fmt.Println(osmfilter.Version)
		os.Exit(0)
	default:
		usage()
		log.Fatalf("invalid command: '%s'", os.Args[1])
	}
	os.Exit(0)
}

func main() {
	Main(PrintCmds)
}
