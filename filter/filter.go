// Package filter compiles edge type and sight configurations into an
// expression file for osmium tags-filter.
//
// Each tag of the edge type configuration becomes a way expression and each
// tag of the sight configuration becomes a node expression:
//
//	w/highway=primary
//	n/tourism=museum
//
// All way expressions come first, then all node expressions, both in the
// order of the configuration documents. Tags are never merged or
// deduplicated.
package filter

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/enprofmi2022/osmfilter/filter/config"

	"github.com/pkg/errors"
)

// Scope is the OSM element type an expression applies to.
type Scope int

const (
	Node Scope = iota
	Way
	Relation
)

func (s Scope) String() string {
	switch s {
	case Node:
		return "n"
	case Way:
		return "w"
	case Relation:
		return "r"
	}
	return "?"
}

func ParseScope(s string) (Scope, error) {
	switch s {
	case "n":
		return Node, nil
	case "w":
		return Way, nil
	case "r":
		return Relation, nil
	}
	return 0, errors.Errorf("unknown scope %q", s)
}

type Expression struct {
	Scope Scope
	Key   string
	Value string
}

func (e Expression) String() string {
	return e.Scope.String() + "/" + e.Key + "=" + e.Value
}

// Compile returns one way expression for each tag in edges, followed by one
// node expression for each tag in sights. Either document can be nil.
func Compile(edges, sights *config.Document) []Expression {
	n := 0
	if edges != nil {
		n += edges.TagCount()
	}
	if sights != nil {
		n += sights.TagCount()
	}
	exprs := make([]Expression, 0, n)
	exprs = appendDocument(exprs, Way, edges)
	exprs = appendDocument(exprs, Node, sights)
	return exprs
}

func appendDocument(exprs []Expression, scope Scope, doc *config.Document) []Expression {
	if doc == nil {
		return exprs
	}
	for _, g := range doc.Groups {
		for _, c := range g.Categories {
			for _, t := range c.Tags {
				exprs = append(exprs, Expression{Scope: scope, Key: t.Key, Value: t.Value})
			}
		}
	}
	return exprs
}

// Write writes each expression as a newline terminated line.
func Write(w io.Writer, exprs []Expression) error {
	bw := bufio.NewWriter(w)
	for _, e := range exprs {
		if _, err := bw.WriteString(e.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes exprs to filename, replacing any existing content.
func WriteFile(filename string, exprs []Expression) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "creating expression file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", filename)
		}
	}()
	if err := Write(f, exprs); err != nil {
		return errors.Wrapf(err, "writing %s", filename)
	}
	return nil
}

// CompileFiles loads the edge type and sight configurations, compiles them and
// writes the result to outFile. Configurations are read before outFile is
// touched, so a broken configuration leaves an existing outFile untouched.
func CompileFiles(edgeFile, sightsFile, outFile string) ([]Expression, error) {
	edges, err := config.Load(edgeFile)
	if err != nil {
		return nil, errors.Wrap(err, "edge type config")
	}
	sights, err := config.Load(sightsFile)
	if err != nil {
		return nil, errors.Wrap(err, "sights config")
	}
	exprs := Compile(edges, sights)
	if err := WriteFile(outFile, exprs); err != nil {
		return nil, err
	}
	return exprs, nil
}

// ParseExpression parses a single scope/key=value line. The value starts
// after the first '=' and can contain further '=' characters.
func ParseExpression(line string) (Expression, error) {
	slash := strings.IndexByte(line, '/')
	if slash < 0 {
		return Expression{}, errors.Errorf("missing scope in %q", line)
	}
	scope, err := ParseScope(line[:slash])
	if err != nil {
		return Expression{}, err
	}
	rest := line[slash+1:]
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return Expression{}, errors.Errorf("missing '=' in %q", line)
	}
	if eq == 0 {
		return Expression{}, errors.Errorf("empty key in %q", line)
	}
	return Expression{Scope: scope, Key: rest[:eq], Value: rest[eq+1:]}, nil
}

// Read parses an expression file. Empty lines and lines starting with '#'
// are skipped.
func Read(r io.Reader) ([]Expression, error) {
	var exprs []Expression
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		e, err := ParseExpression(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		exprs = append(exprs, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return exprs, nil
}

// ReadFile parses the expression file at filename.
func ReadFile(filename string) ([]Expression, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening expression file")
	}
	defer f.Close()
	exprs, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return exprs, nil
}

// Count returns the number of expressions per scope.
func Count(exprs []Expression) map[Scope]int {
	counts := make(map[Scope]int)
	for _, e := range exprs {
		counts[e.Scope]++
	}
	return counts
}
