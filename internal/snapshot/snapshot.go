// Package snapshot orchestrates one dircontxt run: load config and
// ignore rules, walk the target directory, diff against any prior
// archive, write the new archive and text outputs, and report what
// changed. The step order here is the one invariant the spec fixes
// precisely — read the prior archive before it is overwritten, so the
// differ's false-positive suppression pass can still see the old
// bytes — mirrored from original_source/src/main.c's run sequencing.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eris-Margeta/dircontxt/internal/archive"
	"github.com/Eris-Margeta/dircontxt/internal/config"
	"github.com/Eris-Margeta/dircontxt/internal/dctxclip"
	"github.com/Eris-Margeta/dircontxt/internal/dctxerr"
	"github.com/Eris-Margeta/dircontxt/internal/dctxlog"
	"github.com/Eris-Margeta/dircontxt/internal/differ"
	"github.com/Eris-Margeta/dircontxt/internal/formatter"
	"github.com/Eris-Margeta/dircontxt/internal/fsutil"
	"github.com/Eris-Margeta/dircontxt/internal/ignore"
	"github.com/Eris-Margeta/dircontxt/internal/tree"
	"github.com/Eris-Margeta/dircontxt/internal/version"
	"github.com/Eris-Margeta/dircontxt/internal/walker"
)

const (
	binaryName   = ".dircontxt"
	manifestName = ".llmcontext.txt"
)

// Options configures one Run.
type Options struct {
	// Path is the user-supplied target directory (relative or absolute).
	Path string
	// Clipboard selects -c/--clipboard: copy the manifest to the
	// clipboard instead of writing it, then remove the binary archive
	// this run wrote and any manifest file already at the manifest path.
	// A diff file written by the same run stays on disk.
	Clipboard bool
	// Fresh forces a fresh snapshot even if prior output files exist,
	// the supplemental --fresh flag ported from the original's
	// "no prior state -> fresh" path made explicitly user-triggerable.
	Fresh bool
}

// Result summarizes what a Run produced.
type Result struct {
	Root          string
	FromVersion   version.Version
	ToVersion     version.Version
	Changed       bool
	BinaryPath    string
	ManifestPath  string
	DiffPath      string
	DiffEntries   int
}

// Run executes one full snapshot pipeline and returns a summary.
func Run(opts Options) (*Result, error) {
	root, err := fsutil.ResolveRoot(opts.Path)
	if err != nil {
		return nil, dctxerr.WrapFatal("resolve target path", err)
	}

	binaryPath := filepath.Join(root, binaryName)
	manifestPath := filepath.Join(root, manifestName)

	cfgPath := ""
	if home := fsutil.HomeDir(); home != "" {
		cfgPath = filepath.Join(home, ".config", "dircontxt", "config")
	}
	cfg := config.Load(cfgPath)
	dctxlog.Debug("snapshot: config loaded, output mode %s", cfg.OutputMode)

	binaryFound, manifestFound := fileExists(binaryPath), fileExists(manifestPath)
	if !opts.Fresh && binaryFound != manifestFound {
		found, missing := binaryName, manifestName
		if manifestFound {
			found, missing = manifestName, binaryName
		}
		dctxlog.Warn("snapshot: found %s without its counterpart %s, falling back to fresh mode", found, missing)
	}
	priorExists := !opts.Fresh && binaryFound && manifestFound

	eng := ignore.Load(fsutil.HomeDir(), root, binaryName, manifestName)
	dctxlog.Debug("snapshot: loaded %d ignore rules", len(eng.Rules()))

	var oldArchive *archive.Archive
	fromVer := version.Initial
	if priorExists {
		oldArchive, err = archive.Open(binaryPath)
		switch {
		case err == nil:
			fromVer = readManifestVersion(manifestPath)
		case os.IsNotExist(err):
			oldArchive = nil
		default:
			dctxlog.Warn("snapshot: prior archive unreadable, treating as absent: %v", err)
			oldArchive = nil
		}
	}

	newRoot, err := walker.Walk(root, eng)
	if err != nil {
		return nil, dctxerr.WrapFatal("walk target directory", err)
	}
	dctxlog.Debug("snapshot: walked %d nodes under %s", newRoot.Count(), root)

	var rep *differ.Report
	if oldArchive != nil {
		rep, err = differ.Compare(oldArchive.Root, newRoot, oldArchive)
		if err != nil {
			return nil, err
		}
	} else {
		rep = fullTreeAsAdditions(newRoot)
	}

	// A fresh snapshot (no prior archive) is always "changed" but starts
	// at the initial version rather than incrementing past it; only an
	// update against existing state advances the version token.
	fresh := oldArchive == nil
	changed := fresh || len(rep.Entries) > 0
	toVer := fromVer
	if changed && !fresh {
		toVer = version.Next(fromVer)
	}

	res := &Result{
		Root:        root,
		FromVersion: fromVer,
		ToVersion:   toVer,
		Changed:     changed,
		DiffEntries: len(rep.Entries),
	}

	if !changed {
		dctxlog.Info("snapshot: no changes detected, staying at %s", fromVer)
	}

	writeBinary := cfg.OutputMode != config.TextOnly
	writeText := cfg.OutputMode != config.BinaryOnly

	if writeBinary || writeText {
		if err := archive.Write(binaryPath, newRoot); err != nil {
			return nil, err
		}
	}
	if writeBinary {
		res.BinaryPath = binaryPath
	}

	if writeText {
		newArchive, err := archive.Open(binaryPath)
		if err != nil {
			return nil, err
		}

		manifestText, err := formatter.WriteManifest(newRoot, newArchive, toVer)
		if err != nil {
			return nil, err
		}

		if changed && toVer.HasMinor() && oldArchive != nil {
			diffText, err := formatter.WriteDiff(rep, newRoot, newArchive, fromVer, toVer)
			if err != nil {
				return nil, err
			}
			diffPath := filepath.Join(root, fmt.Sprintf(".llmcontext-%s-diff.txt", toVer))
			if err := os.WriteFile(diffPath, []byte(diffText), 0o644); err != nil {
				return nil, dctxerr.WrapFatal("write diff file", err)
			}
			res.DiffPath = diffPath
		}

		if opts.Clipboard {
			if err := dctxclip.Copy(manifestText); err != nil {
				return nil, dctxerr.WrapFatal("copy manifest to clipboard", err)
			}
			// No-trace mode: no manifest file and no archive are left
			// on disk once the clipboard has the content.
			os.Remove(manifestPath)
			os.Remove(binaryPath)
			res.BinaryPath = ""
			dctxlog.Success("snapshot: manifest copied to clipboard, manifest and archive files removed")
		} else {
			if err := os.WriteFile(manifestPath, []byte(manifestText), 0o644); err != nil {
				return nil, dctxerr.WrapFatal("write manifest", err)
			}
			res.ManifestPath = manifestPath
		}
	} else {
		os.Remove(manifestPath)
		removeStaleDiffFiles(root)
	}
	if !writeBinary {
		// Text-only mode keeps no archive on disk.
		os.Remove(binaryPath)
	}

	dctxlog.Success("snapshot: %s -> %s (%d changes)", fromVer, toVer, len(rep.Entries))
	return res, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fullTreeAsAdditions treats every node in root as an addition, the
// diff posture for a fresh snapshot with no prior archive to compare
// against.
func fullTreeAsAdditions(root *tree.Node) *differ.Report {
	rep := &differ.Report{}
	for _, c := range root.Children {
		c.Walk(func(n *tree.Node) {
			rep.Entries = append(rep.Entries, differ.Entry{
				Type:    differ.Added,
				RelPath: n.RelPath,
				IsDir:   n.IsDir(),
				NewNode: n,
			})
		})
	}
	return rep
}

// readManifestVersion reads just the first line of the prior manifest
// to recover its version token.
func readManifestVersion(path string) version.Version {
	data, err := os.ReadFile(path)
	if err != nil {
		return version.Initial
	}
	firstLine, _, _ := strings.Cut(string(data), "\n")
	token := strings.TrimSpace(firstLine)
	token = strings.TrimPrefix(token, "[DIRCONTXT_LLM_SNAPSHOT_")
	token = strings.TrimSuffix(token, "]")
	return version.Parse(token)
}

// removeStaleDiffFiles clears any .llmcontext-*-diff.txt files left
// behind from a prior run when the config switches to binary-only
// output, mirroring the original's binary-only stale-file cleanup.
func removeStaleDiffFiles(root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".llmcontext-") {
			os.Remove(filepath.Join(root, e.Name()))
		}
	}
}
