package extract

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RenderFragments writes extracted metadata as manifest-ready YAML
// fragments. Each hook gets a comment header naming the class and
// connection type, followed by the ui-field-behaviour and conn-fields
// sections at top level, so the block can be pasted into a
// connection-types entry as-is. Hooks without metadata are skipped.
func RenderFragments(w io.Writer, metas []HookMetadata) error {
	first := true
	for _, meta := range metas {
		if meta.Empty() {
			continue
		}
		if !first {
			if _, err := fmt.Fprintln(w); err != nil {
				return errors.Wrap(err, "writing fragment")
			}
		}
		first = false

		if _, err := fmt.Fprintf(w, "# %s (connection-type: %s)\n", meta.Class, meta.ConnectionType); err != nil {
			return errors.Wrap(err, "writing fragment")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(meta.Metadata()); err != nil {
			enc.Close()
			return errors.Wrapf(err, "rendering fragment for %s", meta.Class)
		}
		if err := enc.Close(); err != nil {
			return errors.Wrapf(err, "rendering fragment for %s", meta.Class)
		}
	}
	return nil
}
