package discover

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	files, err := ListBatch(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return files
}

func baseNames(paths []string) []string {
	var out []string
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	sort.Strings(out)
	return out
}

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"slide.mrxs":   KindMirax,
		"slide.MRXS":   KindMirax,
		"slide.vms":    KindVMS,
		"slide.vmu":    KindVMS,
		"slide.svs":    KindConvert,
		"slide.ndpi":   KindConvert,
		"slide.scn":    KindConvert,
		"slide.bif":    KindConvert,
		"slide.tif":    KindTIFF,
		"slide.TIFF":   KindTIFF,
		"notes.txt":    KindUnknown,
		"Slidedat.ini": KindUnknown,
	}
	for path, want := range cases {
		if got := Classify(path); got != want {
			t.Errorf("%s: got %v, want %v", path, got, want)
		}
	}
}

func TestPartitionMirax(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"CMU-1.mrxs": "",
		"Slidedat.ini": "[HIERARCHICAL]\r\n" +
			"INDEXFILE = Index.dat\r\n" +
			"FILE_0 = Data0000.dat\r\n" +
			"FILE_1 = Data0001.dat\r\n",
		"Index.dat":    "idx",
		"Data0000.dat": "d0",
		"Data0001.dat": "d1",
	})

	candidates, errs := Partition(listDir(t, dir))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates: got %d, want 1", len(candidates))
	}

	c := candidates[0]
	if c.Kind != KindMirax {
		t.Errorf("kind: got %v", c.Kind)
	}
	if filepath.Base(c.Path) != "CMU-1.mrxs" {
		t.Errorf("path: got %s", c.Path)
	}
	want := []string{"Data0000.dat", "Data0001.dat", "Index.dat", "Slidedat.ini"}
	got := baseNames(c.Companions)
	if len(got) != len(want) {
		t.Fatalf("companions: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("companions: got %v, want %v", got, want)
			break
		}
	}
}

func TestPartitionMiraxCaseInsensitiveManifest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.mrxs":       "",
		"SLIDEDAT.INI": "INDEXFILE = index.dat\n",
		"Index.dat":    "idx",
	})

	candidates, errs := Partition(listDir(t, dir))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(candidates) != 1 || len(candidates[0].Companions) != 2 {
		t.Fatalf("got %+v", candidates)
	}
}

func TestPartitionMiraxMissingManifest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"orphan.mrxs": ""})

	candidates, errs := Partition(listDir(t, dir))
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
	if _, ok := errs["orphan.mrxs"]; !ok {
		t.Errorf("expected discovery error for orphan.mrxs, got %v", errs)
	}
}

func TestPartitionMiraxMissingReference(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.mrxs":       "",
		"Slidedat.ini": "FILE_0 = Missing.dat\n",
	})

	candidates, errs := Partition(listDir(t, dir))
	if len(errs) != 1 {
		t.Errorf("expected one error, got %v", errs)
	}
	// The unclaimed manifest falls back to a standalone candidate; the
	// failed .mrxs does not.
	for _, c := range candidates {
		if filepath.Base(c.Path) == "a.mrxs" {
			t.Errorf("failed slide must not become a candidate")
		}
	}
}

func TestPartitionMiraxAmbiguousReference(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.mrxs":       "",
		"Slidedat.ini": "FILE_0 = data.dat\n",
		"data.dat":     "x",
		"DATA.DAT":     "y",
	})

	_, errs := Partition(listDir(t, dir))
	if len(errs) != 1 {
		t.Fatalf("expected ambiguity error, got %v", errs)
	}
}

func TestPartitionVMS(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"slide.vms": "[Virtual Microscope Specimen]\n" +
			"ImageFile = slide(x=0,y=0).jpg\n" +
			"ImageFile(1) = slide(x=1,y=0).jpg\n" +
			"MapFile = slide_map.jpg\n" +
			"OptimisationFile = slide.opt\n" +
			"MacroImage = slide_macro.jpg\n",
		"slide(x=0,y=0).jpg": "a",
		"slide(x=1,y=0).jpg": "b",
		"slide_map.jpg":      "m",
		"slide.opt":          "o",
		"slide_macro.jpg":    "k",
	})

	candidates, errs := Partition(listDir(t, dir))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates: got %d, want 1", len(candidates))
	}

	c := candidates[0]
	if c.Kind != KindVMS {
		t.Errorf("kind: got %v", c.Kind)
	}
	if len(c.Companions) != 5 {
		t.Errorf("companions: got %v", baseNames(c.Companions))
	}
	if len(c.Renames) != 0 {
		t.Errorf("renames: got %v, want none", c.Renames)
	}
}

func TestVMSRenamePlanAndStage(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"slide.vms":     "MapFile = Slide_Map.jpg\n",
		"slide_map.jpg": "m",
	})

	candidates, errs := Partition(listDir(t, dir))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	c := candidates[0]
	if len(c.Renames) != 1 {
		t.Fatalf("renames: got %v", c.Renames)
	}
	if filepath.Base(c.Renames[0].To) != "Slide_Map.jpg" {
		t.Errorf("rename target: got %s", c.Renames[0].To)
	}

	// Plan is not executed during discovery.
	if _, err := os.Stat(filepath.Join(dir, "slide_map.jpg")); err != nil {
		t.Fatalf("discovery must not rename: %v", err)
	}

	if err := Stage(c.Renames); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Slide_Map.jpg")); err != nil {
		t.Errorf("staged file missing: %v", err)
	}
}

func TestPartitionStandaloneAndUnknown(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"plain.tif": "t",
		"scan.svs":  "s",
		"notes.txt": "n",
	})

	candidates, errs := Partition(listDir(t, dir))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(candidates) != 3 {
		t.Fatalf("candidates: got %d, want 3", len(candidates))
	}

	kinds := map[string]Kind{}
	for _, c := range candidates {
		kinds[filepath.Base(c.Path)] = c.Kind
	}
	if kinds["plain.tif"] != KindTIFF {
		t.Errorf("plain.tif: got %v", kinds["plain.tif"])
	}
	if kinds["scan.svs"] != KindConvert {
		t.Errorf("scan.svs: got %v", kinds["scan.svs"])
	}
	// Unclaimed unknown extensions are attempted as plain TIFFs.
	if kinds["notes.txt"] != KindTIFF {
		t.Errorf("notes.txt: got %v", kinds["notes.txt"])
	}
}

func TestListBatchSkipsDirsAndHidden(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.tif": "", ".hidden": ""})
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	files := listDir(t, dir)
	if len(files) != 1 || filepath.Base(files[0]) != "a.tif" {
		t.Errorf("got %v", files)
	}
}
