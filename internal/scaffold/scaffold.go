package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/statetrap/internal/ux"
)

var configTemplate = `# statetrap configuration
extensions: [.v, .sv]
workers: 4

backup:
  suffix: .bak
  policy: skip-if-exists    # always-overwrite replaces an existing backup

payload:
  trap-state: DEADBEEF_DETECT
  quarantine-state: SPECIAL_IDLE
  input-signal: data_in
  input-width: 32
  sentinel: 32'hDEADBEEF
  reset-state: IDLE
`

// Init writes an example statetrap.yaml into targetDir.
func Init(targetDir string) error {
	path := filepath.Join(targetDir, "statetrap.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("statetrap.yaml already exists in %s", targetDir)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing statetrap.yaml: %w", err)
	}

	fmt.Printf("\n%s%s✓ Wrote statetrap.yaml%s\n\n", ux.Bold, ux.Green, ux.Reset)
	fmt.Printf("  Next steps:\n")
	fmt.Printf("    1. Adjust the %spayload%s section for your design\n", ux.Cyan, ux.Reset)
	fmt.Printf("    2. Run %sstatetrap patch --dry-run <dir>%s to preview changes\n\n", ux.Cyan, ux.Reset)

	return nil
}
