// Package drill2exc converts KiCad drill exports into EAGLE-compatible
// Excellon files.
//
// # Quick Start
//
// Run the full pipeline on a board file:
//
//	p, err := drill2exc.NewPipeline(
//	    drill2exc.WithExporterPath("/usr/bin/kicad-cli"),
//	    drill2exc.WithTimeout(2 * time.Minute),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := p.Run(ctx, "board.kicad_pcb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Artifacts.Converted) // board.exc
//
// # Conversion Pipeline
//
// The pipeline runs these stages in order and aborts on the first failure:
//
//  1. Board validation (kicad_pcb s-expression header, optional)
//  2. Drill export via kicad-cli in a scratch working directory
//  3. Relocation of the raw .drl file next to the board
//  4. Header skip and X coordinate rewrite into the .exc file
//  5. Removal of the raw .drl file
//
// # Converter
//
// The converter can be used on its own when a drill file already exists:
//
//	conv, err := drill2exc.NewConverter(drill2exc.WithSentinel("T1"))
//	stats, err := conv.ConvertFile(ctx, "board.drl", "board.exc")
//
// Every line before the sentinel (and the sentinel itself) is dropped. Each
// following line has its first "X-" replaced by "X". Only the leftmost
// occurrence per line is rewritten.
//
// # Exporter Requirements
//
// The export stage needs kicad-cli from KiCad 7 or later. The pipeline looks
// in well-known install locations and on PATH; use WithExporterPath to point
// at a custom installation.
package drill2exc
