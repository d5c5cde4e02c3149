package osmium

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func TestArgs(t *testing.T) {
	opts := Options{
		Source:      "/data/berlin-latest.osm.pbf",
		Expressions: "/tmp/filter.txt",
		DestDir:     "/srv/osm_graphs",
	}
	want := []string{
		"tags-filter", "/data/berlin-latest.osm.pbf",
		"--overwrite",
		"--expressions", "/tmp/filter.txt",
		"-o", "/srv/osm_graphs/berlin-latest.osm.pbf",
	}
	if got := opts.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCommandKeepsPathsIntact(t *testing.T) {
	src := "/data/my map; rm -rf $HOME.osm.pbf"
	buf := &bytes.Buffer{}
	cmd, err := Command(context.Background(), Options{
		Binary:      "/opt/osmium/bin/osmium",
		Source:      src,
		Expressions: "filter $(id).txt",
		DestDir:     "/out dir",
		Output:      buf,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"/opt/osmium/bin/osmium",
		"tags-filter", src,
		"--overwrite",
		"--expressions", "filter $(id).txt",
		"-o", filepath.Join("/out dir", "my map; rm -rf $HOME.osm.pbf"),
	}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("got %q, want %q", cmd.Args, want)
	}
	if cmd.Stdout != buf || cmd.Stderr != buf {
		t.Error("output not redirected")
	}
}

func TestCommandDefaults(t *testing.T) {
	cmd, err := Command(context.Background(), Options{
		Source:      "in.osm.pbf",
		Expressions: "filter.txt",
		DestDir:     "out",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Args[0] != DefaultBinary {
		t.Errorf("unexpected binary %q", cmd.Args[0])
	}
	if cmd.Stdout == nil || cmd.Stderr == nil {
		t.Error("missing output")
	}
}

func TestCommandMissingOptions(t *testing.T) {
	for _, opts := range []Options{
		{Expressions: "filter.txt", DestDir: "out"},
		{Source: "in.osm.pbf", DestDir: "out"},
		{Source: "in.osm.pbf", Expressions: "filter.txt"},
	} {
		if _, err := Command(context.Background(), opts); err == nil {
			t.Errorf("%v: expected error", opts)
		}
	}
}

func TestRunMissingBinary(t *testing.T) {
	err := Run(context.Background(), Options{
		Binary:      filepath.Join(t.TempDir(), "no-osmium"),
		Source:      "in.osm.pbf",
		Expressions: "filter.txt",
		DestDir:     t.TempDir(),
		Output:      &bytes.Buffer{},
	})
	if err == nil {
		t.Error("expected error")
	}
}
