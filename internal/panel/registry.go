package panel

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"hls-restream-panel/internal/platform/metrics"
)

// Registry sequences add, edit and delete over the store, the playlist, the
// reaper and the asset manager. Each mutation runs under one lock from the
// store read to the playlist write, so after every completed operation the
// playlist matches the store.
type Registry struct {
	mu       sync.Mutex
	store    *Store
	playlist *Playlist
	reaper   *Reaper
	assets   *AssetManager
	hlsRoot  string
	log      *slog.Logger
	metrics  *metrics.Metrics
	newID    func() string
}

// NewRegistry wires the components together. hlsRoot is the directory the
// transcoder writes output paths under. Metrics may be nil.
func NewRegistry(store *Store, playlist *Playlist, reaper *Reaper, assets *AssetManager, hlsRoot string, log *slog.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		store:    store,
		playlist: playlist,
		reaper:   reaper,
		assets:   assets,
		hlsRoot:  hlsRoot,
		log:      log,
		metrics:  m,
		newID:    uuid.NewString,
	}
}

// List returns the current records.
func (r *Registry) List() ([]StreamRecord, error) {
	return r.store.Load()
}

// Raw returns the configuration document as stored.
func (r *Registry) Raw() ([]byte, error) {
	return r.store.Raw()
}

// Add validates in, assigns a fresh channel id, stores the optional logo and
// appends the record. Invalid input changes nothing.
func (r *Registry) Add(in StreamInput, up *Upload) (StreamRecord, error) {
	if err := in.Validate(); err != nil {
		return StreamRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := StreamRecord{
		Name:       in.Name,
		SourceURL:  in.SourceURL,
		OutputPath: in.OutputPath,
		ChannelID:  r.newID(),
	}

	var wrote, shared bool
	records, err := r.store.Update(func(records []StreamRecord) ([]StreamRecord, error) {
		wrote = r.storeLogo(&rec, up)
		shared = wrote && logoInUse(records, rec.Logo)
		return append(records, rec), nil
	})
	if err != nil {
		if wrote && !shared {
			r.discardLogo(rec)
		}
		return StreamRecord{}, err
	}

	r.log.Info("stream added",
		slog.String("channel_id", rec.ChannelID),
		slog.String("name", rec.Name),
		slog.Int("streams", len(records)))
	if r.metrics != nil {
		r.metrics.IncStreamsAdded()
	}

	return rec, r.regenerate(records)
}

// Edit replaces the editable fields of the record at index. The channel id is
// kept and the logo only changes when up is an accepted upload.
func (r *Registry) Edit(index int, in StreamInput, up *Upload) (StreamRecord, error) {
	return r.edit(atIndex(index), in, up)
}

// EditByChannel is Edit addressed by channel id.
func (r *Registry) EditByChannel(channelID string, in StreamInput, up *Upload) (StreamRecord, error) {
	return r.edit(byChannel(channelID), in, up)
}

// Delete stops the record's process, removes its logo and output directory,
// then removes it from the store. Cleanup failures are reported, logged and
// never stop the record from being removed.
func (r *Registry) Delete(index int) (DeleteReport, error) {
	return r.delete(atIndex(index))
}

// DeleteByChannel is Delete addressed by channel id.
func (r *Registry) DeleteByChannel(channelID string) (DeleteReport, error) {
	return r.delete(byChannel(channelID))
}

// RegeneratePlaylist rewrites the playlist from the current store contents.
// It repairs a playlist left stale by a failed write.
func (r *Registry) RegeneratePlaylist() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.store.Load()
	if err != nil {
		return err
	}
	return r.regenerate(records)
}

// locator resolves the position of the target record in records.
type locator func(records []StreamRecord) (int, error)

func atIndex(index int) locator {
	return func(records []StreamRecord) (int, error) {
		if index < 0 || index >= len(records) {
			return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(records))
		}
		return index, nil
	}
}

func byChannel(channelID string) locator {
	return func(records []StreamRecord) (int, error) {
		for i, rec := range records {
			if channelID != "" && rec.ChannelID == channelID {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrStreamNotFound, channelID)
	}
}

func (r *Registry) edit(locate locator, in StreamInput, up *Upload) (StreamRecord, error) {
	if err := in.Validate(); err != nil {
		return StreamRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var rec StreamRecord
	records, err := r.store.Update(func(records []StreamRecord) ([]StreamRecord, error) {
		i, err := locate(records)
		if err != nil {
			return nil, err
		}

		rec = records[i]
		rec.Name = in.Name
		rec.SourceURL = in.SourceURL
		rec.OutputPath = in.OutputPath
		r.storeLogo(&rec, up)

		records[i] = rec
		return records, nil
	})
	if err != nil {
		return StreamRecord{}, err
	}

	r.log.Info("stream edited",
		slog.String("channel_id", rec.ChannelID),
		slog.String("name", rec.Name))
	if r.metrics != nil {
		r.metrics.IncStreamsEdited()
	}

	return rec, r.regenerate(records)
}

func (r *Registry) delete(locate locator) (DeleteReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var report DeleteReport
	records, err := r.store.Update(func(records []StreamRecord) ([]StreamRecord, error) {
		i, err := locate(records)
		if err != nil {
			return nil, err
		}

		rec := records[i]
		report = DeleteReport{
			Record:    rec,
			Reaper:    r.reaper.Terminate(rec),
			Logo:      r.assets.DeleteLogo(rec),
			OutputDir: r.removeOutputDir(rec),
		}
		r.logCleanup(report)

		return append(records[:i], records[i+1:]...), nil
	})
	if err != nil {
		return DeleteReport{}, err
	}

	r.log.Info("stream deleted",
		slog.String("channel_id", report.Record.ChannelID),
		slog.String("name", report.Record.Name),
		slog.Int("cleanup_failures", report.Failures()))
	if r.metrics != nil {
		r.metrics.IncStreamsDeleted()
	}

	return report, r.regenerate(records)
}

// storeLogo saves an upload for rec and reports whether a file was written.
// A failed write keeps the previous logo; the mutation itself goes ahead.
func (r *Registry) storeLogo(rec *StreamRecord, up *Upload) bool {
	if up == nil {
		return false
	}
	stored, err := r.assets.StoreLogo(rec, up)
	switch {
	case err != nil:
		r.log.Error("logo upload failed",
			slog.String("name", rec.Name),
			slog.String("filename", up.Filename),
			slog.String("error", err.Error()))
	case !stored:
		r.log.Debug("logo upload ignored",
			slog.String("name", rec.Name),
			slog.String("filename", up.Filename))
	}
	return stored
}

// discardLogo removes a logo written for a record that was never stored.
func (r *Registry) discardLogo(rec StreamRecord) {
	if err := r.assets.DeleteLogo(rec); err != nil {
		r.log.Error("discard logo failed",
			slog.String("name", rec.Name),
			slog.String("error", err.Error()))
	}
}

func logoInUse(records []StreamRecord, logo string) bool {
	for _, rec := range records {
		if rec.Logo == logo {
			return true
		}
	}
	return false
}

func (r *Registry) regenerate(records []StreamRecord) error {
	err := r.playlist.Regenerate(records)
	if r.metrics != nil {
		r.metrics.ObservePlaylistWrite(err)
	}
	if err != nil {
		r.log.Error("playlist regeneration failed",
			slog.String("path", r.playlist.Path()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrPlaylistStale, err)
	}
	return nil
}

// OutputDir returns the directory holding rec's HLS output: the parent of its
// output path under the HLS root. ok is false when that would be the root
// itself or a path outside it.
func (r *Registry) OutputDir(rec StreamRecord) (dir string, ok bool) {
	rel := path.Dir(strings.TrimLeft(rec.OutputPath, "/"))
	if rel == "." || rel == "/" {
		return "", false
	}

	root := filepath.Clean(r.hlsRoot)
	dir = filepath.Join(root, filepath.FromSlash(rel))
	check, err := filepath.Rel(root, dir)
	if err != nil || check == "." || escapesRoot(check) {
		return "", false
	}
	return dir, true
}

func (r *Registry) removeOutputDir(rec StreamRecord) error {
	dir, ok := r.OutputDir(rec)
	if !ok {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove output dir: %w", err)
	}
	return nil
}

func (r *Registry) logCleanup(report DeleteReport) {
	steps := []struct {
		name string
		err  error
	}{
		{"reaper", report.Reaper},
		{"logo", report.Logo},
		{"output_dir", report.OutputDir},
	}
	for _, step := range steps {
		if step.err == nil {
			continue
		}
		r.log.Error("stream cleanup failed",
			slog.String("step", step.name),
			slog.String("name", report.Record.Name),
			slog.String("error", step.err.Error()))
		if r.metrics != nil {
			r.metrics.IncCleanupFailure(step.name)
		}
	}
}
