package analyzer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/repolens/internal/framework"
	"github.com/firefly-engineering/repolens/internal/manifest"
	"github.com/firefly-engineering/repolens/internal/report"
)

// process reads one regular file. It never fails: read errors turn the entry
// into role=unknown with a skip reason.
func (a *Analyzer) process(root string, job fileJob) finding {
	res := finding{
		index: job.index,
		path:  job.rel,
		entry: report.FileEntry{Path: job.rel, Size: job.size, Language: job.language, Role: report.RoleUnknown},
	}
	unreadable := func() finding {
		res.entry.Language = ""
		res.entry.Role = report.RoleUnknown
		res.manifest = nil
		res.sample = nil
		res.skipped = report.ReasonUnreadableFile
		return res
	}

	if job.format != nil && job.size > a.maxManifestBytes {
		res.entry.Role = report.RoleManifest
		res.skipped = report.ReasonTooLarge
		res.manifest = &manifest.Result{
			Format:       *job.format,
			Dependencies: []report.Dependency{},
			Partial:      true,
			Err:          fmt.Errorf("%d bytes exceeds the %d byte limit", job.size, a.maxManifestBytes),
		}
		return res
	}

	full, err := securejoin.SecureJoin(root, filepath.FromSlash(job.rel))
	if err != nil {
		return unreadable()
	}
	f, err := os.Open(full)
	if err != nil {
		return unreadable()
	}
	defer f.Close()

	switch {
	case job.format != nil:
		content, err := io.ReadAll(io.LimitReader(f, a.maxManifestBytes))
		if err != nil {
			return unreadable()
		}
		res.entry.Role = report.RoleManifest
		res.manifest = job.format.Parse(job.rel, content)

	case job.sniff || job.sample:
		n := a.sampleBytes
		if job.sniff && n < minSniffBytes {
			n = minSniffBytes
		}
		head, err := readHead(f, n)
		if err != nil {
			return unreadable()
		}
		if job.sniff {
			if lang, ok := a.classifier.ClassifyContent(job.rel, head); ok {
				res.entry.Language = lang
				res.entry.Role = report.RoleSource
			}
		} else {
			res.entry.Role = report.RoleSource
		}
		if job.sample {
			res.sample = &framework.Sample{Path: job.rel, Language: job.language, Head: head}
		}

	case job.language != "":
		res.entry.Role = report.RoleSource
	}
	return res
}

func readHead(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return buf[:read], err
}
