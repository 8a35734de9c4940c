package discover

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// miraxManifestName is the Mirax slide manifest, looked up
// case-insensitively next to the .mrxs file.
const miraxManifestName = "Slidedat.ini"

var miraxFileLine = regexp.MustCompile(`^(?:INDEXFILE|FILE_\d+)\s*=\s*(.+)$`)

// discoverMirax resolves the Slidedat.ini manifest next to the .mrxs file
// and every data file it references. The manifest itself is part of the
// returned companion list.
func discoverMirax(mrxsPath string) ([]string, error) {
	dir := filepath.Dir(mrxsPath)

	manifest, err := resolveReference(dir, miraxManifestName)
	if err != nil {
		return nil, fmt.Errorf("mirax manifest: %w", err)
	}

	f, err := os.Open(manifest)
	if err != nil {
		return nil, fmt.Errorf("mirax manifest: %w", err)
	}
	defer f.Close()

	companions := []string{manifest}
	seen := map[string]bool{manifest: true}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		// Mirax manifests are often UTF-8 with a BOM.
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		m := miraxFileLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p, err := resolveReference(dir, strings.TrimSpace(m[1]))
		if err != nil {
			return nil, fmt.Errorf("mirax: %w", err)
		}
		if !seen[p] {
			seen[p] = true
			companions = append(companions, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mirax manifest: %w", err)
	}

	return companions, nil
}
