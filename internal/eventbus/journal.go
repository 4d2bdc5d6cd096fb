package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"github.com/kazz187/todotxt/pkg/storage"
)

// Journal appends events to one NDJSON file per day under dir in storage.
type Journal struct {
	storage storage.Storage
	dir     string
	mu      sync.Mutex
}

func NewJournal(s storage.Storage, dir string) *Journal {
	return &Journal{storage: s, dir: dir}
}

func (j *Journal) filePath(e *Event) string {
	return path.Join(j.dir, "events_"+e.CreatedAt.Format("2006-01-02")+".ndjson")
}

// Record appends e to the file for its day.
func (j *Journal) Record(ctx context.Context, e *Event) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	p := j.filePath(e)
	data, err := j.storage.Read(ctx, p)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read %s: %w", p, err)
	}
	data = append(data, line...)
	data = append(data, '\n')
	if err := j.storage.Write(ctx, p, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// Run records every event published on bus until ctx is done.
func (j *Journal) Run(ctx context.Context, bus *Bus) error {
	return bus.Listen(ctx, 256, func(ctx context.Context, e *Event) {
		if err := j.Record(ctx, e); err != nil {
			slog.ErrorContext(ctx, "failed to record event", "event_id", e.ID, "error", err)
		}
	})
}
