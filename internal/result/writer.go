package result

import (
	"encoding/json"
	"os"
	"sort"
	"time"
)

// New creates an empty batch result.
func New() *Result {
	return &Result{
		Version:     SupportedResultVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		FileErrors:  make(map[string]string),
	}
}

// ComputeStats recalculates aggregate statistics from the record sets.
func (r *Result) ComputeStats() {
	var s Stats
	s.TotalImages = len(r.NewImages)
	s.TotalFiles = len(r.NewImageFiles)
	s.TotalFolders = len(r.NewFolders)
	s.TotalConsumed = len(r.ConsumedFiles)
	s.TotalErrors = len(r.FileErrors)
	for _, f := range r.NewImageFiles {
		s.TotalOutputBytes += f.Size
	}
	r.Stats = s
}

// Normalize sorts the record sets for stable output.
func (r *Result) Normalize() {
	sort.Strings(r.ConsumedFiles)
	sort.Slice(r.NewImages, func(i, j int) bool {
		return r.NewImages[i].Name < r.NewImages[j].Name
	})
	sort.Slice(r.NewImageFiles, func(i, j int) bool {
		return r.NewImageFiles[i].Path < r.NewImageFiles[j].Path
	})
	sort.Slice(r.NewFolders, func(i, j int) bool {
		return r.NewFolders[i].Path < r.NewFolders[j].Path
	})
}

// WriteJSON serializes the result to a JSON file with stable ordering.
func WriteJSON(r *Result, path string) error {
	r.Normalize()
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
