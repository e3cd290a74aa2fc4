// Command aligncheck verifies the co-registration of an image pair from a
// file of corresponding control points: it fits the affine between target
// and reference coordinates and reports per-point residuals.
//
// The points file holds one correspondence per line:
//
//	refX refY tgtX tgtY
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"flickertag/pkg/geometry"
)

func main() {
	pointsPath := flag.String("points", "", "Path to control points file (refX refY tgtX tgtY per line)")
	flag.Parse()

	if *pointsPath == "" {
		fmt.Println("Usage: aligncheck -points <file>")
		os.Exit(1)
	}

	ref, tgt, err := readPoints(*pointsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read points: %v\n", err)
		os.Exit(1)
	}

	transform, err := geometry.FitAffine(tgt, ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fit failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("target -> reference affine: [%.6f %.6f %.3f; %.6f %.6f %.3f]\n",
		transform.A, transform.B, transform.TX, transform.C, transform.D, transform.TY)

	var worst, sum float64
	for i := range tgt {
		residual := transform.Apply(tgt[i]).Distance(ref[i])
		sum += residual
		if residual > worst {
			worst = residual
		}
		fmt.Printf("point %d: residual %.3f px\n", i, residual)
	}
	fmt.Printf("mean residual: %.3f px, worst: %.3f px\n", sum/float64(len(tgt)), worst)
}

// readPoints parses the control points file.
func readPoints(path string) (ref, tgt []geometry.Point2D, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var rx, ry, tx, ty float64
		if _, err := fmt.Sscanf(text, "%f %f %f %f", &rx, &ry, &tx, &ty); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		ref = append(ref, geometry.NewPoint2D(rx, ry))
		tgt = append(tgt, geometry.NewPoint2D(tx, ty))
	}
	return ref, tgt, scanner.Err()
}
