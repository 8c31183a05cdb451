package manifest

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
	"gopkg.in/yaml.v3"

	"github.com/provkit/provkit/pkg/hook"
)

// WriteError reports a failed manifest rewrite. The manifest on disk is
// untouched whenever one is returned.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("updating manifest %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Entry is the generated metadata to record for one hook class. A nil
// Behavior or empty ConnFields removes the corresponding section.
type Entry struct {
	Behavior   *hook.FieldBehavior
	ConnFields map[string]ConnField
}

// UpdateResult describes what an update did.
type UpdateResult struct {
	// Matched lists the hook classes found in the manifest.
	Matched []string
	// Missing lists requested classes with no connection-types entry.
	Missing []string
	// Replaced lists matched classes whose previously declared sections
	// differed from the generated metadata and were overwritten.
	Replaced []string
	// Changed is false when the manifest already held exactly the
	// generated metadata and no write happened.
	Changed bool
}

// Update splices generated metadata into the manifest at path, keyed by
// hook-class-name. Only the ui-field-behaviour and conn-fields keys of
// matching connection-types entries change; every other node keeps its
// order, comments and style. Indentation is normalized to two spaces.
//
// A sibling .lock file serializes concurrent updaters, and the rewrite goes
// through a temp file renamed over the original, so readers never observe a
// partial manifest. Entries already holding exactly the generated metadata
// are left untouched, which makes reruns byte-stable.
func Update(path string, entries map[string]Entry) (*UpdateResult, error) {
	mu := lockedfile.MutexAt(path + ".lock")
	unlock, err := mu.Lock()
	if err != nil {
		return nil, &WriteError{Path: path, Err: errors.Wrap(err, "acquiring update lock")}
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	out, result, err := render(path, data, entries)
	if err != nil {
		return nil, err
	}

	if bytes.Equal(out, data) {
		return result, nil
	}
	if err := replaceFile(path, out); err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	result.Changed = true
	return result, nil
}

// Preview computes the manifest bytes Update would write, without locking
// or touching the file. Changed reports whether the result differs from
// what is on disk.
func Preview(path string, entries map[string]Entry) ([]byte, *UpdateResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &WriteError{Path: path, Err: err}
	}
	out, result, err := render(path, data, entries)
	if err != nil {
		return nil, nil, err
	}
	result.Changed = !bytes.Equal(out, data)
	return out, result, nil
}

func render(path string, data []byte, entries map[string]Entry) ([]byte, *UpdateResult, error) {
	if len(entries) == 0 {
		return nil, nil, &WriteError{Path: path, Err: errors.New("no metadata entries to record")}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, &WriteError{Path: path, Err: errors.Wrap(err, "parsing manifest")}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, nil, &WriteError{Path: path, Err: errors.New("manifest root is not a mapping")}
	}
	seq := mappingValue(doc.Content[0], "connection-types")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil, nil, &WriteError{Path: path, Err: errors.New("manifest has no connection-types sequence")}
	}

	result := &UpdateResult{}
	seen := make(map[string]bool, len(entries))
	for _, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		classNode := mappingValue(item, "hook-class-name")
		if classNode == nil {
			continue
		}
		entry, ok := entries[classNode.Value]
		if !ok || seen[classNode.Value] {
			continue
		}
		seen[classNode.Value] = true
		result.Matched = append(result.Matched, classNode.Value)

		replaced, err := applyEntry(item, entry)
		if err != nil {
			return nil, nil, &WriteError{Path: path, Err: err}
		}
		if replaced {
			result.Replaced = append(result.Replaced, classNode.Value)
		}
	}
	for class := range entries {
		if !seen[class] {
			result.Missing = append(result.Missing, class)
		}
	}
	sort.Strings(result.Missing)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, nil, &WriteError{Path: path, Err: errors.Wrap(err, "encoding manifest")}
	}
	if err := enc.Close(); err != nil {
		return nil, nil, &WriteError{Path: path, Err: errors.Wrap(err, "encoding manifest")}
	}
	return buf.Bytes(), result, nil
}

// applyEntry rewrites the two generated sections of one connection-types
// entry. It reports whether previously declared content was overwritten or
// removed; a fresh insert or an entry already holding the generated
// metadata reports false.
func applyEntry(item *yaml.Node, entry Entry) (bool, error) {
	behaviorNode := mappingValue(item, "ui-field-behaviour")
	fieldsNode := mappingValue(item, "conn-fields")

	desired := Metadata{Behaviour: entry.Behavior, ConnFields: entry.ConnFields}
	current, decodeErr := decodeSections(behaviorNode, fieldsNode)
	if decodeErr == nil && reflect.DeepEqual(current, desired) {
		return false, nil
	}

	hadContent := behaviorNode != nil || fieldsNode != nil

	if entry.Behavior == nil || entry.Behavior.IsZero() {
		deleteMappingKey(item, "ui-field-behaviour")
	} else {
		node, err := encodeNode(entry.Behavior)
		if err != nil {
			return false, err
		}
		setMappingValue(item, "ui-field-behaviour", node)
	}

	if len(entry.ConnFields) == 0 {
		deleteMappingKey(item, "conn-fields")
	} else {
		node, err := encodeNode(entry.ConnFields)
		if err != nil {
			return false, err
		}
		setMappingValue(item, "conn-fields", node)
	}
	return hadContent, nil
}

// decodeSections reads the currently declared sections in typed form so
// applyEntry can tell genuine drift from a no-op rerun.
func decodeSections(behaviorNode, fieldsNode *yaml.Node) (Metadata, error) {
	var ct ConnectionType
	if behaviorNode != nil {
		if err := behaviorNode.Decode(&ct.Behaviour); err != nil {
			return Metadata{}, err
		}
	}
	if fieldsNode != nil {
		if err := fieldsNode.Decode(&ct.ConnFields); err != nil {
			return Metadata{}, err
		}
	}
	return ct.Metadata()
}

func encodeNode(v any) (*yaml.Node, error) {
	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, errors.Wrap(err, "encoding generated metadata")
	}
	return node, nil
}

// mappingValue returns the value node of key in a mapping node, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// setMappingValue replaces the value of key in place, or appends the pair
// at the end of the mapping when the key is new.
func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

func deleteMappingKey(m *yaml.Node, key string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return
		}
	}
}

// replaceFile writes data next to path and renames it into place, keeping
// the original file mode. On any failure the original file is untouched.
func replaceFile(path string, data []byte) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".provider-*.yaml")
	if err != nil {
		return errors.Wrap(err, "creating temp manifest")
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp manifest")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing temp manifest")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp manifest")
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return errors.Wrap(err, "setting manifest permissions")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "replacing manifest")
	}
	success = true
	return nil
}
