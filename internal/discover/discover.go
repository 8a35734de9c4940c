package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Candidate is one logical slide discovered in a batch.
type Candidate struct {
	// Path is the primary file: the .mrxs/.vms/.vmu index, the vendor
	// file to convert, or the plain TIFF itself.
	Path string
	Kind Kind
	// Companions are the additional files that belong to this slide
	// (manifest plus referenced data files). Empty for single-file kinds.
	Companions []string
	// Renames is the staging plan: files that must carry their
	// manifest-declared names before conversion. Executed by the caller.
	Renames []Rename
}

// Rename is one staging step.
type Rename struct {
	From string
	To   string
}

// Partition groups a batch of files into slide candidates. Files referenced
// as companions of a multi-file slide are claimed and do not reappear as
// standalone candidates. Discovery failures are returned per primary
// filename; a failed candidate is neither claimed nor emitted, so its files
// stay visible to later batches.
func Partition(files []string) ([]Candidate, map[string]string) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	var candidates []Candidate
	errs := map[string]string{}
	claimed := map[string]bool{}

	// Multi-file formats claim their companions first.
	for _, f := range sorted {
		kind := Classify(f)
		if kind != KindMirax && kind != KindVMS {
			continue
		}
		var (
			companions []string
			renames    []Rename
			err        error
		)
		switch kind {
		case KindMirax:
			companions, err = discoverMirax(f)
		case KindVMS:
			companions, renames, err = discoverVMS(f)
		}
		if err != nil {
			errs[filepath.Base(f)] = fmt.Sprintf("discovery: %v", err)
			continue
		}
		claimed[f] = true
		for _, c := range companions {
			claimed[c] = true
		}
		candidates = append(candidates, Candidate{
			Path:       f,
			Kind:       kind,
			Companions: companions,
			Renames:    renames,
		})
	}

	// Everything unclaimed is a standalone candidate; unknown extensions
	// are attempted as plain TIFFs and fail later if they are not.
	for _, f := range sorted {
		if claimed[f] {
			continue
		}
		kind := Classify(f)
		switch kind {
		case KindMirax, KindVMS:
			continue
		case KindConvert:
			candidates = append(candidates, Candidate{Path: f, Kind: KindConvert})
		default:
			candidates = append(candidates, Candidate{Path: f, Kind: KindTIFF})
		}
	}

	return candidates, errs
}

// ListBatch returns the regular files directly inside dir, sorted. Batches
// are flat: subdirectories and hidden files are skipped.
func ListBatch(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list batch: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Stage executes a rename plan. Renames to an already-correct name are
// skipped.
func Stage(renames []Rename) error {
	for _, r := range renames {
		if r.From == r.To {
			continue
		}
		if err := os.Rename(r.From, r.To); err != nil {
			return fmt.Errorf("stage %s: %w", filepath.Base(r.From), err)
		}
	}
	return nil
}

// resolveReference finds the single file in dir whose name matches ref
// case-insensitively. Vendor manifests may use backslash separators and
// differ in case from what is actually on disk.
func resolveReference(dir, ref string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(ref, `\`, "/"))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(e.Name(), base) {
			matches = append(matches, filepath.Join(dir, e.Name()))
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("referenced file %q not found", base)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("referenced file %q matches %d files", base, len(matches))
	}
}
