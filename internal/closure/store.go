package closure

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/pippath"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/util"
)

// ReadTable loads the closure artifact at path. A missing file gets an
// error telling the user how to create one. Entries are normalized on the
// way in: null closures count as empty and lists are re-sorted so lookups
// can binary search even over a hand-edited file.
func ReadTable(path pippath.AbsoluteSystemPath) (Table, error) {
	contents, err := path.ReadFile()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "Not found: `%v`. Run `pipdeps configure` to create it", path)
		}
		return nil, errors.Wrapf(err, "reading %v", path)
	}
	var table Table
	if err := json.Unmarshal(contents, &table); err != nil {
		return nil, errors.Wrapf(err, "could not parse %v", path)
	}
	for root, deps := range table {
		if deps == nil {
			table[root] = []string{}
			continue
		}
		sort.Strings(deps)
	}
	return table, nil
}

// Encode writes the table as indented JSON. encoding/json emits map keys
// in sorted order, so the artifact is byte-stable for a given table and
// diffs cleanly across runs.
func (t Table) Encode(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "    ")
	return errors.Wrap(encoder.Encode(t), "encoding closure table")
}

// WriteTable replaces the closure artifact at path.
func WriteTable(path pippath.AbsoluteSystemPath, table Table) error {
	if err := path.EnsureDir(); err != nil {
		return errors.Wrapf(err, "creating directory for %v", path)
	}
	file, err := path.Create()
	if err != nil {
		return errors.Wrapf(err, "creating %v", path)
	}
	writer := bufio.NewWriter(file)
	if err := table.Encode(writer); err != nil {
		util.CloseAndIgnoreError(file)
		return err
	}
	if err := writer.Flush(); err != nil {
		util.CloseAndIgnoreError(file)
		return errors.Wrapf(err, "writing %v", path)
	}
	return errors.Wrapf(file.Close(), "closing %v", path)
}
