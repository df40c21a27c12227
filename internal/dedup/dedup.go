// Package dedup keeps the record of every posting already seen so repeated
// runs never notify twice.
package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"onlinejobs-scout/internal/models"
)

// Store is the full persistence contract shared by every backend.
type Store interface {
	Exists(ctx context.Context, jobID string) (bool, error)
	Upsert(ctx context.Context, rec *models.JobRecord) error
	MarkSent(ctx context.Context, jobID string) error
	RecordRun(ctx context.Context, run models.ScrapeRun) error
	Stats(ctx context.Context) (models.Stats, error)
	Unsent(ctx context.Context) ([]models.JobRecord, error)
	Cleanup(ctx context.Context, olderThan time.Duration) (int, error)
	Close() error
}

// fileData is the on-disk layout.
type fileData struct {
	Jobs []models.JobRecord `json:"jobs"`
	Runs []models.ScrapeRun `json:"runs"`
}

// FileStore is a Store backed by a single JSON file. Every mutation rewrites
// the file through a temp file and rename. Another process writing the same
// file is picked up on the next call, keyed on the file's mtime and size.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	jobs     map[string]models.JobRecord
	urlIndex map[string]string // url -> job id
	runs     []models.ScrapeRun
	modTime  time.Time
	size     int64
	now      func() time.Time
}

// OpenFileStore creates or loads the store at path.
func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	fs := &FileStore{
		filePath: path,
		jobs:     make(map[string]models.JobRecord),
		urlIndex: make(map[string]string),
		now:      time.Now,
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	log.Printf("📋 Loaded %d stored jobs and %d runs from %s", len(fs.jobs), len(fs.runs), fs.filePath)
	return fs, nil
}

// Exists checks if a job ID has already been stored.
func (fs *FileStore) Exists(ctx context.Context, jobID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.refresh(); err != nil {
		return false, err
	}
	_, ok := fs.jobs[jobID]
	return ok, nil
}

// Upsert inserts rec or replaces the stored copy. A record that was already
// sent stays sent.
func (fs *FileStore) Upsert(ctx context.Context, rec *models.JobRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.refresh(); err != nil {
		return err
	}

	if owner, ok := fs.urlIndex[rec.URL]; ok && owner != rec.JobID {
		return fmt.Errorf("upsert %s: %w (owner %s)", rec.JobID, models.ErrDuplicateURL, owner)
	}

	prev, existed := fs.jobs[rec.JobID]
	next := *rec
	if existed {
		next.Sent = next.Sent || prev.Sent
		delete(fs.urlIndex, prev.URL)
	}
	fs.jobs[rec.JobID] = next
	fs.urlIndex[next.URL] = next.JobID

	if err := fs.save(); err != nil {
		delete(fs.urlIndex, next.URL)
		if existed {
			fs.jobs[rec.JobID] = prev
			fs.urlIndex[prev.URL] = prev.JobID
		} else {
			delete(fs.jobs, rec.JobID)
		}
		return fmt.Errorf("upsert %s: %w", rec.JobID, err)
	}
	rec.Sent = next.Sent
	return nil
}

// MarkSent flags a job as notified. Marking twice is a no-op.
func (fs *FileStore) MarkSent(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.refresh(); err != nil {
		return err
	}

	rec, ok := fs.jobs[jobID]
	if !ok {
		return fmt.Errorf("mark sent %s: %w", jobID, models.ErrNotFound)
	}
	if rec.Sent {
		return nil
	}
	rec.Sent = true
	fs.jobs[jobID] = rec
	if err := fs.save(); err != nil {
		rec.Sent = false
		fs.jobs[jobID] = rec
		return fmt.Errorf("mark sent %s: %w", jobID, err)
	}
	return nil
}

func (fs *FileStore) RecordRun(ctx context.Context, run models.ScrapeRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.refresh(); err != nil {
		return err
	}

	fs.runs = append(fs.runs, run)
	if err := fs.save(); err != nil {
		fs.runs = fs.runs[:len(fs.runs)-1]
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (fs *FileStore) Stats(ctx context.Context) (models.Stats, error) {
	if err := ctx.Err(); err != nil {
		return models.Stats{}, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.refresh(); err != nil {
		return models.Stats{}, err
	}

	recentCutoff := fs.now().Add(-models.RecentWindow)
	var st models.Stats
	for _, rec := range fs.jobs {
		st.Total++
		if rec.Sent {
			st.Sent++
		}
		if !rec.PostedDate.Before(recentCutoff) {
			st.Recent++
		}
	}
	st.Unsent = st.Total - st.Sent

	for i := range fs.runs {
		if st.LastRun == nil || fs.runs[i].At.After(st.LastRun.At) {
			run := fs.runs[i]
			st.LastRun = &run
		}
	}
	return st, nil
}

// Unsent returns every record not yet notified, newest posting first.
func (fs *FileStore) Unsent(ctx context.Context) ([]models.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.refresh(); err != nil {
		return nil, err
	}

	var out []models.JobRecord
	for _, rec := range fs.jobs {
		if !rec.Sent {
			out = append(out, rec)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// Cleanup removes records posted before now-olderThan.
func (fs *FileStore) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.refresh(); err != nil {
		return 0, err
	}

	cutoff := fs.now().Add(-olderThan)
	removed := make(map[string]models.JobRecord)
	for id, rec := range fs.jobs {
		if rec.PostedDate.Before(cutoff) {
			removed[id] = rec
			delete(fs.jobs, id)
			delete(fs.urlIndex, rec.URL)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}
	if err := fs.save(); err != nil {
		for id, rec := range removed {
			fs.jobs[id] = rec
			fs.urlIndex[rec.URL] = id
		}
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	log.Printf("🧹 Removed %d jobs older than %s", len(removed), cutoff.Format("2006-01-02"))
	return len(removed), nil
}

func (fs *FileStore) Close() error { return nil }

// refresh reloads the file when something other than this store has
// replaced it since the last load or save. Callers hold mu.
func (fs *FileStore) refresh() error {
	info, err := os.Stat(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", fs.filePath, err)
	}
	if info.ModTime().Equal(fs.modTime) && info.Size() == fs.size {
		return nil
	}
	fs.jobs = make(map[string]models.JobRecord)
	fs.urlIndex = make(map[string]string)
	fs.runs = nil
	return fs.load()
}

// load reads the store from disk into memory. A missing file is an empty store.
func (fs *FileStore) load() error {
	f, err := os.Open(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", fs.filePath, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", fs.filePath, err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", fs.filePath, err)
	}
	fs.modTime, fs.size = info.ModTime(), info.Size()
	if len(data) == 0 {
		return nil
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return fmt.Errorf("parse %s: %w", fs.filePath, err)
	}
	for _, rec := range fd.Jobs {
		fs.jobs[rec.JobID] = rec
		fs.urlIndex[rec.URL] = rec.JobID
	}
	fs.runs = fd.Runs
	return nil
}

// save writes the current state to disk. Callers hold mu.
func (fs *FileStore) save() error {
	fd := fileData{
		Jobs: make([]models.JobRecord, 0, len(fs.jobs)),
		Runs: fs.runs,
	}
	for _, rec := range fs.jobs {
		fd.Jobs = append(fd.Jobs, rec)
	}
	sort.Slice(fd.Jobs, func(i, j int) bool { return fd.Jobs[i].JobID < fd.Jobs[j].JobID })
	if fd.Runs == nil {
		fd.Runs = []models.ScrapeRun{}
	}

	data, err := json.MarshalIndent(fd, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.filePath), ".jobs-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.filePath); err != nil {
		return fmt.Errorf("replace %s: %w", fs.filePath, err)
	}
	if info, err := os.Stat(fs.filePath); err == nil {
		fs.modTime, fs.size = info.ModTime(), info.Size()
	}
	return nil
}

func sortNewestFirst(recs []models.JobRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].PostedDate.Equal(recs[j].PostedDate) {
			return recs[i].PostedDate.After(recs[j].PostedDate)
		}
		return recs[i].JobID < recs[j].JobID
	})
}
