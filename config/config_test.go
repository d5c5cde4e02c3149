package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "config.json")
	if err := ioutil.WriteFile(fn, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestParseBaseDefaults(t *testing.T) {
	opts, rest, err := parseBase("compile", nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.EdgeConfig != defaultEdgeConfig || opts.SightsConfig != defaultSightsConfig || opts.Expressions != defaultExpressions {
		t.Errorf("unexpected options %+v", opts)
	}
	if len(rest) != 0 {
		t.Errorf("unexpected args %v", rest)
	}
	if errs := opts.check(); len(errs) != 0 {
		t.Errorf("unexpected errors %v", errs)
	}
}

func TestParseBaseConfigFile(t *testing.T) {
	fn := writeConfig(t, `{
		"edgeconfig": "/etc/osmfilter/edges.json",
		"sightsconfig": "/etc/osmfilter/sights.json",
		"expressions": "/var/lib/osmfilter/filter.txt"
	}`)

	opts, _, err := parseBase("compile", []string{"-config", fn, "-sightsconfig", "local.json", "-quiet"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.EdgeConfig != "/etc/osmfilter/edges.json" {
		t.Errorf("edgeconfig not taken from config: %q", opts.EdgeConfig)
	}
	if opts.SightsConfig != "local.json" {
		t.Errorf("flag not preferred over config: %q", opts.SightsConfig)
	}
	if opts.Expressions != "/var/lib/osmfilter/filter.txt" {
		t.Errorf("expressions not taken from config: %q", opts.Expressions)
	}
	if !opts.Quiet {
		t.Error("quiet not set")
	}
}

func TestParseBaseErrors(t *testing.T) {
	if _, _, err := parseBase("compile", []string{"-config", filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("expected error for missing config")
	}
	fn := writeConfig(t, `{"edgeconfig": `)
	if _, _, err := parseBase("compile", []string{"-config", fn}); err == nil {
		t.Error("expected error for broken config")
	}
	opts := Base{}
	if errs := opts.check(); len(errs) != 3 {
		t.Errorf("unexpected errors %v", errs)
	}
}

func TestParseRun(t *testing.T) {
	fn := writeConfig(t, `{"destdir": "/srv/osm_graphs", "osmium": "/usr/local/bin/osmium"}`)

	opts, rest, err := parseRun([]string{"-config", fn, "-expressions", "f.txt", "berlin.osm.pbf"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.DestDir != "/srv/osm_graphs" || opts.Osmium != "/usr/local/bin/osmium" || opts.Expressions != "f.txt" {
		t.Errorf("unexpected options %+v", opts)
	}
	if len(rest) != 1 || rest[0] != "berlin.osm.pbf" {
		t.Errorf("unexpected args %v", rest)
	}
	if errs := opts.check(); len(errs) != 0 {
		t.Errorf("unexpected errors %v", errs)
	}

	opts, _, err = parseRun([]string{"-config", fn, "-destdir", "/tmp/out", "-osmium", "osmium-1.16"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.DestDir != "/tmp/out" || opts.Osmium != "osmium-1.16" {
		t.Errorf("flags not preferred over config: %+v", opts)
	}
}

func TestRunRequiresDestDir(t *testing.T) {
	opts, _, err := parseRun([]string{"berlin.osm.pbf"})
	if err != nil {
		t.Fatal(err)
	}
	if errs := opts.check(); len(errs) != 1 {
		t.Errorf("unexpected errors %v", errs)
	}
}
