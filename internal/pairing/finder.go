// Package pairing matches reference and target image files by filename tag
// substitution, producing the ordered queue of pairs for automatic mode.
package pairing

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"flickertag/internal/image"
)

// Config holds the directories and filename tags that drive automatic pairing.
type Config struct {
	ReferenceDir string
	TargetDir    string
	OutputDir    string

	// ReferenceTag and TargetTag distinguish the two halves of a pair;
	// OutputTag names the result artifact derived from the matched pair.
	ReferenceTag string
	TargetTag    string
	OutputTag    string
}

// Validate checks the configuration before any pairing or annotation begins.
func (c Config) Validate() error {
	if c.ReferenceDir == "" || c.TargetDir == "" || c.OutputDir == "" {
		return errors.New("reference, target, and output directories must all be set")
	}
	if c.ReferenceTag == "" || c.TargetTag == "" || c.OutputTag == "" {
		return errors.New("reference, target, and output tags must all be set")
	}
	if c.ReferenceTag == c.TargetTag {
		return fmt.Errorf("reference and target tags are both %q", c.ReferenceTag)
	}
	for _, dir := range []string{c.ReferenceDir, c.TargetDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("cannot access directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
	}
	return nil
}

// Pair is one matched (reference, target) image pair, immutable once created.
type Pair struct {
	// Key is the tag-stripped filename shared by both halves.
	Key           string
	ReferencePath string
	TargetPath    string

	// OutputPath is where this pair's result artifact belongs.
	OutputPath string
}

// Stats summarizes a pairing run for the operator.
type Stats struct {
	ToDo    int // matched pairs without a result artifact yet
	Done    int // matched pairs that already have a result artifact
	Unknown int // files on either side with no partner
}

func (s Stats) String() string {
	return fmt.Sprintf("to do: %d; done: %d; unknown: %d", s.ToDo, s.Done, s.Unknown)
}

// AmbiguousMatchError reports filenames that cannot be paired unambiguously,
// either because a tag occurs more than once in a name or because two files
// collapse onto the same match key.
type AmbiguousMatchError struct {
	Tag   string
	Files []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match for tag %q: %s", e.Tag, strings.Join(e.Files, ", "))
}

// Find enumerates matched pairs in deterministic (match-key) order.
//
// Files lacking a partner are not an error: they are logged and counted in
// Stats.Unknown. A filename on either side containing its tag more than once
// fails fast with AmbiguousMatchError; otherwise two references could claim
// the same target. Pairs whose output artifact already exists are excluded
// from the returned queue and counted in Stats.Done.
func Find(cfg Config) ([]Pair, Stats, error) {
	var stats Stats

	refNames, err := listTagged(cfg.ReferenceDir, cfg.ReferenceTag)
	if err != nil {
		return nil, stats, err
	}
	tgtNames, err := listTagged(cfg.TargetDir, cfg.TargetTag)
	if err != nil {
		return nil, stats, err
	}
	for _, name := range tgtNames {
		if _, _, err := splitOnTag(name, cfg.TargetTag); err != nil {
			return nil, stats, err
		}
	}
	outNames, err := listAll(cfg.OutputDir)
	if err != nil {
		return nil, stats, err
	}

	tgtByName := make(map[string]bool, len(tgtNames))
	for _, name := range tgtNames {
		tgtByName[name] = true
	}
	outByName := make(map[string]bool, len(outNames))
	for _, name := range outNames {
		outByName[name] = true
	}

	seen := make(map[string]string) // match key -> reference filename
	matchedTargets := make(map[string]bool)
	var pairs []Pair

	for _, refName := range refNames {
		prefix, suffix, err := splitOnTag(refName, cfg.ReferenceTag)
		if err != nil {
			return nil, stats, err
		}

		key := prefix + "\x00" + suffix
		if prev, dup := seen[key]; dup {
			return nil, stats, &AmbiguousMatchError{
				Tag:   cfg.ReferenceTag,
				Files: []string{prev, refName},
			}
		}
		seen[key] = refName

		tgtName := prefix + cfg.TargetTag + suffix
		outName := resultName(prefix+cfg.OutputTag+suffix)

		if !tgtByName[tgtName] {
			log.Printf("pairing: no target for %s (expected %s)", refName, tgtName)
			stats.Unknown++
			continue
		}
		matchedTargets[tgtName] = true

		if outByName[outName] {
			stats.Done++
			continue
		}

		stats.ToDo++
		pairs = append(pairs, Pair{
			Key:           prefix + suffix,
			ReferencePath: filepath.Join(cfg.ReferenceDir, refName),
			TargetPath:    filepath.Join(cfg.TargetDir, tgtName),
			OutputPath:    filepath.Join(cfg.OutputDir, outName),
		})
	}

	for _, tgtName := range tgtNames {
		if !matchedTargets[tgtName] {
			log.Printf("pairing: no reference for %s", tgtName)
			stats.Unknown++
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, stats, nil
}

// ResultName derives the output artifact filename for a manually selected
// pair from its target filename.
func ResultName(targetName, targetTag, outputTag string) (string, error) {
	prefix, suffix, err := splitOnTag(targetName, targetTag)
	if err != nil {
		return "", err
	}
	return resultName(prefix + outputTag + suffix), nil
}

// resultName swaps the image extension for the result format's.
func resultName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".json"
}

// splitOnTag splits a filename around exactly one occurrence of tag.
// Zero or multiple occurrences cannot be resolved unambiguously.
func splitOnTag(name, tag string) (prefix, suffix string, err error) {
	switch strings.Count(name, tag) {
	case 1:
		idx := strings.Index(name, tag)
		return name[:idx], name[idx+len(tag):], nil
	case 0:
		return "", "", fmt.Errorf("filename %s does not contain tag %q", name, tag)
	default:
		return "", "", &AmbiguousMatchError{Tag: tag, Files: []string{name}}
	}
}

// listTagged returns the supported image filenames in dir containing tag.
func listTagged(dir, tag string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.Contains(name, tag) && image.IsSupportedFormat(name) {
			names = append(names, name)
		}
	}
	return names, nil
}

// listAll returns every filename in dir; a missing directory is treated as
// empty since the output directory is created lazily on first save.
func listAll(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
