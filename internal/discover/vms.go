package discover

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Hamamatsu VMS/VMU index files reference their companions inline; there is
// no separate manifest.
var vmsFileLine = regexp.MustCompile(`^(?:ImageFile(?:\(\d+\))?|MapFile|OptimisationFile|MacroImage)\s*=\s*(.+)$`)

// discoverVMS parses the .vms/.vmu index and resolves every referenced
// companion. Companions whose on-disk names differ from the declared names
// get a rename entry so the converter sees the names the index declares.
func discoverVMS(vmsPath string) ([]string, []Rename, error) {
	dir := filepath.Dir(vmsPath)

	f, err := os.Open(vmsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("vms index: %w", err)
	}
	defer f.Close()

	var (
		companions []string
		renames    []Rename
	)
	seen := map[string]bool{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		m := vmsFileLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		declared := strings.TrimSpace(m[1])
		p, err := resolveReference(dir, declared)
		if err != nil {
			return nil, nil, fmt.Errorf("vms: %w", err)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		companions = append(companions, p)

		want := filepath.Join(dir, filepath.Base(strings.ReplaceAll(declared, `\`, "/")))
		if p != want {
			renames = append(renames, Rename{From: p, To: want})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("vms index: %w", err)
	}

	return companions, renames, nil
}
