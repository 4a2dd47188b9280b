package workers

import (
	"contact-lab/domain"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

const defaultReportInterval = time.Minute

// ListStats is a snapshot of the tree size.
type ListStats struct {
	Groups       int
	MetaContacts int
	Online       int
}

// ReporterWorker periodically logs the size of the contact list together with
// the memory and CPU use of the process.
type ReporterWorker struct {
	log      *slog.Logger
	root     *domain.MetaContactGroup
	changes  func() int
	interval time.Duration
}

func NewReporterWorker(log *slog.Logger, root *domain.MetaContactGroup, changes func() int,
	interval time.Duration) *ReporterWorker {
	if interval <= 0 {
		interval = defaultReportInterval
	}
	return &ReporterWorker{log: log, root: root, changes: changes, interval: interval}
}

// Run reports on every tick and once more when ctx is done.
func (w *ReporterWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report(p)
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *ReporterWorker) Snapshot() ListStats {
	var stats ListStats
	w.root.Walk(func(g *domain.MetaContactGroup) bool {
		if !g.IsRoot() {
			stats.Groups++
		}
		stats.MetaContacts += g.CountChildren()
		stats.Online += g.CountOnlineChildren()
		return true
	})
	return stats
}

func (w *ReporterWorker) report(p *process.Process) {
	stats := w.Snapshot()
	attrs := []any{"groups", stats.Groups, "meta_contacts", stats.MetaContacts, "online", stats.Online}
	if w.changes != nil {
		attrs = append(attrs, "changes", w.changes())
	}
	if mem, err := p.MemoryInfo(); err == nil {
		attrs = append(attrs, "rss_mb", mem.RSS/1024/1024)
	}
	if cpu, err := p.CPUPercent(); err == nil {
		attrs = append(attrs, "cpu", fmt.Sprintf("%.1f%%", cpu))
	}
	w.log.Info("Contact list report", attrs...)
}
