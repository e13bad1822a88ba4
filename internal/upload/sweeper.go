package upload

import (
	"context"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"qrmenu/internal/repository"
)

// Sweeper deletes stored images that nothing in the catalog points at.
// Files younger than grace are left alone.
type Sweeper struct {
	dir   string
	refs  repository.ImageRefs
	grace time.Duration
	now   func() time.Time
}

func NewSweeper(dir string, refs repository.ImageRefs, grace time.Duration) *Sweeper {
	return &Sweeper{dir: dir, refs: refs, grace: grace, now: time.Now}
}

// Sweep returns the number of files removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	urls, err := s.refs.ImageRefs(ctx)
	if err != nil {
		return 0, err
	}
	inUse := make(map[string]bool, len(urls))
	for _, u := range urls {
		inUse[path.Base(u)] = true
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || inUse[e.Name()] {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			log.Printf("sweeper: remove %s: %v", e.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Schedule runs Sweep on the given cron spec. Stop the returned cron on
// shutdown.
func (s *Sweeper) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := s.Sweep(context.Background())
		if err != nil {
			log.Printf("sweeper: %v", err)
			return
		}
		log.Printf("sweeper: removed %d orphaned images", n)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("sweeper scheduled (%s)", spec)
	return c, nil
}
