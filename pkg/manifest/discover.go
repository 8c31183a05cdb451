package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// FileName is the manifest file name inside every provider directory.
const FileName = "provider.yaml"

// NotFoundError reports a provider without a manifest under the root.
type NotFoundError struct {
	Provider string
	Root     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("provider %q has no %s under %s", e.Provider, FileName, e.Root)
}

// IsNotFound reports whether err is a manifest NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Info names one discovered provider. Name is the manifest's directory
// relative to the root, slash-separated, so nested providers come out as
// e.g. "apache/kafka".
type Info struct {
	Name string
	Path string
}

// Locate resolves the manifest of a named provider.
func Locate(root, provider string) (Info, error) {
	provider = strings.Trim(filepath.ToSlash(provider), "/")
	if provider == "" || strings.Contains(provider, "..") {
		return Info{}, &NotFoundError{Provider: provider, Root: root}
	}
	path := filepath.Join(root, filepath.FromSlash(provider), FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Info{}, &NotFoundError{Provider: provider, Root: root}
		}
		return Info{}, errors.Wrapf(err, "locating provider %q", provider)
	}
	return Info{Name: provider, Path: path}, nil
}

// Discover lists every provider manifest under the root, sorted by provider
// name. Provider directories may nest, so the walk uses a recursive glob.
func Discover(root string) ([]Info, error) {
	pattern := filepath.Join(root, "**", FileName)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "globbing %q", pattern)
	}

	infos := make([]Info, 0, len(matches))
	for _, match := range matches {
		rel, err := filepath.Rel(root, filepath.Dir(match))
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		infos = append(infos, Info{Name: filepath.ToSlash(rel), Path: match})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
