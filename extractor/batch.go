package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor/common"
)

// BatchResult tracks the outcome of a ProcessBatch run
type BatchResult struct {
	Processed int          `json:"processed"`
	Succeeded int          `json:"succeeded"`
	Invalid   int          `json:"invalid"`
	Unknown   int          `json:"unknown"`
	Failed    int          `json:"failed"`
	Files     []FileResult `json:"files"`
}

type FileResult struct {
	File string `json:"file"`
	Result
}

// Errors lists one line per file that did not succeed.
func (b BatchResult) Errors() []string {
	var out []string
	for _, f := range b.Files {
		if f.Status == common.StatusSuccess {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s %s", f.File, f.Status, f.Message))
	}
	return out
}

// ProcessBatch runs uploads one after another. It stops early, without
// counting the rest, once ctx is done.
func (p *Pipeline) ProcessBatch(ctx context.Context, uploads []Upload) BatchResult {
	var out BatchResult
	for _, up := range uploads {
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Batch cancelled")
			break
		}
		res := p.Process(ctx, up)
		out.Processed++
		switch res.Status {
		case common.StatusSuccess:
			out.Succeeded++
		case common.StatusInvalid:
			out.Invalid++
		case common.StatusUnknown:
			out.Unknown++
		default:
			out.Failed++
		}
		name := up.OriginalFilename
		if name == "" {
			name = filepath.Base(up.Path)
		}
		out.Files = append(out.Files, FileResult{File: name, Result: res})
	}
	return out
}

// CollectUploads expands path into uploads. A directory contributes every
// file directly inside it whose extension is allowed, sorted by name. base
// supplies the company and user of each upload.
func CollectUploads(path string, allowed []string, base Upload) ([]Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	allow := make(map[string]bool, len(allowed))
	for _, ext := range allowed {
		allow[normaliseExt(ext)] = true
	}
	accept := func(name string) bool {
		return len(allow) == 0 || allow[normaliseExt(filepath.Ext(name))]
	}
	mk := func(p string) Upload {
		up := base
		up.Path = p
		up.Ext = normaliseExt(filepath.Ext(p))
		up.OriginalFilename = filepath.Base(p)
		return up
	}

	if !info.IsDir() {
		if !accept(path) {
			return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Base(path))
		}
		return []Upload{mk(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var uploads []Upload
	for _, e := range entries {
		if e.IsDir() || !accept(e.Name()) {
			continue
		}
		uploads = append(uploads, mk(filepath.Join(path, e.Name())))
	}
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].Path < uploads[j].Path })
	log.WithField("dir", path).Debugf("Found %d statement file(s)", len(uploads))
	return uploads, nil
}

func normaliseExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
