package drill2exc

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Artifact extensions, without the leading dot.
const (
	BoardExtension     = "kicad_pcb"
	RawExtension       = "drl"
	ConvertedExtension = "exc"
)

// Artifacts holds the paths involved in one conversion.
// Raw and Converted share Board's directory and base name.
type Artifacts struct {
	Board     string // KiCad board file
	Raw       string // drill file relocated next to the board
	Converted string // final EAGLE-compatible drill file
}

// DeriveArtifacts computes the raw and converted paths for a board by
// replacing the last extension segment of its file name.
func DeriveArtifacts(board, rawExt, convertedExt string) (Artifacts, error) {
	base := baseName(board)
	if base == "" {
		return Artifacts{}, fmt.Errorf("%w: %q has no base name", ErrInvalidBoardPath, board)
	}
	dir := filepath.Dir(board)

	return Artifacts{
		Board:     board,
		Raw:       filepath.Join(dir, base+"."+rawExt),
		Converted: filepath.Join(dir, base+"."+convertedExt),
	}, nil
}

// ExportedIn returns where the exporter leaves the raw drill file when run
// with workDir as its working directory.
func (a Artifacts) ExportedIn(workDir string) string {
	return filepath.Join(workDir, filepath.Base(a.Raw))
}

// baseName returns the file name of path without its last extension.
func baseName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
