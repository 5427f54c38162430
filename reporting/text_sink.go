package reporting

import (
	"os"

	"github.com/acarl005/stripansi"
	"github.com/pkg/errors"
)

// SaveText writes a plain-text copy of console output to path. ANSI color
// sequences from the table renderer and progress lines are stripped so the
// file is readable in CI artifact viewers.
func SaveText(path, content string) error {
	clean := stripansi.Strip(content)
	if err := os.WriteFile(path, []byte(clean), 0o644); err != nil {
		return errors.Wrapf(err, "writing text report %s", path)
	}
	return nil
}
