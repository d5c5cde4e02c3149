// Package config reads the edge type and sight configuration documents.
//
// Both documents share the same shape: a mapping from a free-form label to a
// list of category records, each carrying a list of key/value tags.
//
//	{"edge_type_tag_map": [
//	    {"edge_type": "primary", "tags": [{"key": "highway", "value": "primary"}]}
//	]}
//
// JSON is the native format. YAML files of the same shape are accepted as well.
// The order of labels, categories and tags is kept. Tag keys must not be
// empty, tag values may be.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/enprofmi2022/osmfilter/log"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Tag struct {
	Key   string
	Value string
}

// Category is a single edge type or sight category. Name is taken from the
// edge_type, category or name field and is only used in messages.
type Category struct {
	Name string
	Tags []Tag
}

type Group struct {
	Label      string
	Categories []Category
}

type Document struct {
	Groups []Group
}

// FieldError is returned for records that miss a required field, for an
// empty tag key and for a group that is not a list. Category and Tag are -1
// if the error is not located at that level.
type FieldError struct {
	Group    string
	Category int
	Tag      int
	Field    string
	Reason   string
}

func (e *FieldError) Error() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "group %q", e.Group)
	if e.Category >= 0 {
		fmt.Fprintf(&b, " category %d", e.Category)
	}
	if e.Tag >= 0 {
		fmt.Fprintf(&b, " tag %d", e.Tag)
	}
	fmt.Fprintf(&b, ": %s %s", e.Field, e.Reason)
	return b.String()
}

type rawTag struct {
	Key   *string `mapstructure:"key"`
	Value *string `mapstructure:"value"`
}

type rawCategory struct {
	EdgeType interface{} `mapstructure:"edge_type"`
	Category interface{} `mapstructure:"category"`
	Name     interface{} `mapstructure:"name"`
	Tags     *[]rawTag   `mapstructure:"tags"`
}

func (c *rawCategory) name() string {
	for _, v := range []interface{}{c.EdgeType, c.Category, c.Name} {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Load reads and parses the document at filename. Files ending in .yml or
// .yaml are parsed as YAML, everything else as JSON.
func Load(filename string) (*Document, error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	var doc *Document
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yml", ".yaml":
		doc, err = ParseYAML(b)
	default:
		doc, err = Parse(b)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", filename)
	}
	log.Printf("[debug] loaded %s with %d groups and %d tags", filename, len(doc.Groups), doc.TagCount())
	return doc, nil
}

// Parse decodes a JSON document from b.
func Parse(b []byte) (*Document, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, errors.New("empty document")
	}
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Errorf("document is not an object, found %v", tok)
	}

	labels := []string{}
	values := map[string]interface{}{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		label := tok.(string) // object keys are always strings
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "group %q", label)
		}
		if _, ok := values[label]; !ok {
			labels = append(labels, label)
		}
		values[label] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, errors.Wrap(err, "trailing content")
		}
		return nil, errors.Errorf("trailing content %v", tok)
	}
	return newDocument(labels, values)
}

// ParseYAML decodes a YAML document from b.
func ParseYAML(b []byte) (*Document, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, errors.New("empty document")
	}
	doc := Document{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) UnmarshalYAML(unmarshal func(interface{}) error) error {
	// MapSlice keeps the label order, but turns every nested mapping into a
	// MapSlice as well. The values are decoded a second time into a plain map.
	order := yaml.MapSlice{}
	if err := unmarshal(&order); err != nil {
		return errors.Wrap(err, "document is not a mapping")
	}
	values := map[string]interface{}{}
	if err := unmarshal(&values); err != nil {
		return errors.Wrap(err, "document is not a mapping")
	}

	labels := make([]string, 0, len(order))
	seen := make(map[string]struct{}, len(order))
	for _, item := range order {
		label, ok := item.Key.(string)
		if !ok {
			return errors.Errorf("group label '%v' not a string", item.Key)
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	doc, err := newDocument(labels, values)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// newDocument decodes the groups in label order. Duplicate labels are
// expected to be collapsed already: the last value wins, at the position of
// the first.
func newDocument(labels []string, values map[string]interface{}) (*Document, error) {
	doc := &Document{}
	for _, label := range labels {
		group, err := decodeGroup(label, values[label])
		if err != nil {
			return nil, err
		}
		doc.Groups = append(doc.Groups, group)
	}
	return doc, nil
}

func decodeGroup(label string, value interface{}) (Group, error) {
	group := Group{Label: label}

	if _, ok := value.([]interface{}); !ok {
		return group, &FieldError{Group: label, Category: -1, Tag: -1, Field: "categories", Reason: "not a list"}
	}
	raw := []rawCategory{}
	if err := mapstructure.Decode(value, &raw); err != nil {
		return group, errors.Wrapf(err, "group %q", label)
	}

	for i, rc := range raw {
		if rc.Tags == nil {
			return group, &FieldError{Group: label, Category: i, Tag: -1, Field: "tags", Reason: "missing"}
		}
		cat := Category{Name: rc.name(), Tags: make([]Tag, 0, len(*rc.Tags))}
		for j, rt := range *rc.Tags {
			if rt.Key == nil {
				return group, &FieldError{Group: label, Category: i, Tag: j, Field: "key", Reason: "missing"}
			}
			if *rt.Key == "" {
				return group, &FieldError{Group: label, Category: i, Tag: j, Field: "key", Reason: "empty"}
			}
			if rt.Value == nil {
				return group, &FieldError{Group: label, Category: i, Tag: j, Field: "value", Reason: "missing"}
			}
			cat.Tags = append(cat.Tags, Tag{Key: *rt.Key, Value: *rt.Value})
		}
		group.Categories = append(group.Categories, cat)
	}
	return group, nil
}

// TagCount returns the number of tags over all groups and categories.
func (d *Document) TagCount() int {
	n := 0
	for _, g := range d.Groups {
		for _, c := range g.Categories {
			n += len(c.Tags)
		}
	}
	return n
}
