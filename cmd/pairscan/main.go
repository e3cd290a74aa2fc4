// Command pairscan dry-runs the filename pairing on two directories and
// prints the resulting queue without opening the UI.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"flickertag/internal/pairing"
)

func main() {
	refDir := flag.String("a", "", "Reference image directory")
	tgtDir := flag.String("b", "", "Target image directory")
	outDir := flag.String("o", "", "Output directory (used to count finished pairs)")
	refTag := flag.String("atag", "_2018_", "Reference filename tag")
	tgtTag := flag.String("btag", "_2020_", "Target filename tag")
	outTag := flag.String("otag", "_2018-2020_", "Output filename tag")
	flag.Parse()

	if *refDir == "" || *tgtDir == "" {
		fmt.Println("Usage: pairscan -a <reference dir> -b <target dir> [-o <output dir>] [-atag ..] [-btag ..] [-otag ..]")
		os.Exit(1)
	}

	cfg := pairing.Config{
		ReferenceDir: *refDir,
		TargetDir:    *tgtDir,
		OutputDir:    *outDir,
		ReferenceTag: *refTag,
		TargetTag:    *tgtTag,
		OutputTag:    *outTag,
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(*refDir, "OUT")
	}

	pairs, stats, err := pairing.Find(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pairing failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n\n", stats)
	for _, p := range pairs {
		fmt.Printf("%s\n  A: %s\n  B: %s\n  out: %s\n", p.Key, p.ReferencePath, p.TargetPath, p.OutputPath)
	}
}
