package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sessionics/internal/ics"
	appLog "sessionics/internal/log"
	"sessionics/internal/venuetime"
)

// Writer renders jobs and stores them under Dir.
type Writer struct {
	Dir  string
	Zone venuetime.Zone

	// Now supplies DTSTAMP. Defaults to time.Now.
	Now func() time.Time
}

func NewWriter(dir string, zone venuetime.Zone) *Writer {
	return &Writer{Dir: dir, Zone: zone, Now: time.Now}
}

// Render serializes job without touching the filesystem.
func (w *Writer) Render(job Job) ([]byte, error) {
	var buf bytes.Buffer
	switch job.Format {
	case FormatCSV:
		if err := WriteCSV(&buf, job.Sessions, w.Zone, job.Columns); err != nil {
			return nil, err
		}
	default:
		now := time.Now
		if w.Now != nil {
			now = w.Now
		}
		if err := ics.Encode(&buf, job.Name, ics.FromSessions(job.Sessions), now()); err != nil {
			return nil, fmt.Errorf("render %s: %w", job.Filename(), err)
		}
	}
	return buf.Bytes(), nil
}

// Write renders job into Dir and returns the written path. Rewriting an
// existing calendar logs how many events were added or removed since the
// previous run.
func (w *Writer) Write(job Job) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := w.Render(job)
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.Dir, job.Filename())
	if job.Format == FormatICS {
		w.logChanges(path, job)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	appLog.Info("wrote events", "count", len(job.Sessions), "path", path)
	return path, nil
}

// WriteAll writes jobs in order, stopping at the first failure.
func (w *Writer) WriteAll(jobs []Job) ([]string, error) {
	paths := make([]string, 0, len(jobs))
	for _, job := range jobs {
		p, err := w.Write(job)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (w *Writer) logChanges(path string, job Job) {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			appLog.Warn("cannot read previous calendar", "path", path, "err", err)
		}
		return
	}
	defer f.Close()

	prev, err := ics.Decode(f)
	if err != nil {
		appLog.Warn("cannot read previous calendar", "path", path, "err", err)
		return
	}
	added, removed := diffUIDs(prev, ics.FromSessions(job.Sessions))
	if added > 0 || removed > 0 {
		appLog.Info("calendar changed", "path", path, "added", added, "removed", removed)
	}
}

func diffUIDs(prev, next []ics.Event) (added, removed int) {
	seen := make(map[string]bool, len(prev))
	for _, ev := range prev {
		seen[ev.UID] = true
	}
	current := make(map[string]bool, len(next))
	for _, ev := range next {
		current[ev.UID] = true
		if !seen[ev.UID] {
			added++
		}
	}
	for uid := range seen {
		if !current[uid] {
			removed++
		}
	}
	return added, removed
}
