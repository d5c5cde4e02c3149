// Package osmium runs osmium tags-filter with a compiled expression file.
package osmium

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/enprofmi2022/osmfilter/log"

	"github.com/pkg/errors"
)

const DefaultBinary = "osmium"

type Options struct {
	// Binary is the osmium executable, looked up in PATH if it has no
	// directory component. Defaults to DefaultBinary.
	Binary string
	// Source is the OSM file to filter.
	Source string
	// Expressions is the expression file written by filter.WriteFile.
	Expressions string
	// DestDir receives the filtered file, named like Source.
	DestDir string
	// Output receives osmium's stdout and stderr. Defaults to os.Stderr.
	Output io.Writer
}

// Destination returns the path of the filtered file.
func (o Options) Destination() string {
	return filepath.Join(o.DestDir, filepath.Base(o.Source))
}

func (o Options) check() error {
	if o.Source == "" {
		return errors.New("missing source file")
	}
	if o.Expressions == "" {
		return errors.New("missing expression file")
	}
	if o.DestDir == "" {
		return errors.New("missing destination directory")
	}
	return nil
}

// Args returns the osmium arguments, without the binary.
func (o Options) Args() []string {
	return []string{
		"tags-filter", o.Source,
		"--overwrite",
		"--expressions", o.Expressions,
		"-o", o.Destination(),
	}
}

// Command returns the osmium command for opts. Paths are passed as separate
// arguments and never go through a shell.
func Command(ctx context.Context, opts Options) (*exec.Cmd, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	bin := opts.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	cmd := exec.CommandContext(ctx, bin, opts.Args()...)
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd, nil
}

// Run runs osmium and waits for it to finish. The returned error is the one
// from exec; the exit status is not interpreted.
func Run(ctx context.Context, opts Options) error {
	cmd, err := Command(ctx, opts)
	if err != nil {
		return err
	}
	log.Printf("[info] running %v", cmd.Args)
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running %s", cmd.Path)
	}
	return nil
}
