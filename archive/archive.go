package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/chronidx"
	"github.com/hupe1980/chronidx/blobstore"
	"github.com/hupe1980/chronidx/internal/fs"
	"github.com/hupe1980/chronidx/resource"
)

// Options configures an Archiver.
type Options struct {
	// Codec compresses archived objects. Default: CodecZstd.
	Codec Codec
	// Concurrency bounds the files transferred at once. Default: 4.
	Concurrency int
	// Resource, if set, gates transfers on its background slots and IO limit.
	Resource *resource.Controller
	// Logger receives per-cycle progress. Default: discard.
	Logger *slog.Logger

	fs fs.FileSystem
}

// Archiver copies cycle directories to and from a blob store.
type Archiver struct {
	store blobstore.BlobStore
	opts  Options
}

// aborter is implemented by writable blobs that can discard a partial upload.
type aborter interface {
	Abort() error
}

// New creates an Archiver writing to store.
func New(store blobstore.BlobStore, optFns ...func(o *Options)) *Archiver {
	opts := Options{
		Codec:       CodecZstd,
		Concurrency: 4,
		Logger:      slog.New(slog.DiscardHandler),
		fs:          fs.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Archiver{store: store, opts: opts}
}

// ArchiveCycle uploads every index file in dir as "<name>/<file><ext>" and
// returns the number of files uploaded.
func (a *Archiver) ArchiveCycle(ctx context.Context, dir, name string) (int, error) {
	entries, err := a.opts.fs.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("archive: list %s: %w", dir, err)
	}

	var n atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), chronidx.IndexPrefix) {
			continue
		}
		file := e.Name()
		g.Go(func() error {
			if err := a.upload(ctx, filepath.Join(dir, file), path.Join(name, file+a.opts.Codec.Ext())); err != nil {
				return err
			}
			n.Add(1)
			return nil
		})
	}

	err = g.Wait()
	a.opts.Logger.InfoContext(ctx, "cycle archived",
		"dir", dir,
		"name", name,
		"files", n.Load(),
		"codec", a.opts.Codec.String(),
		"error", err,
	)
	return int(n.Load()), err
}

func (a *Archiver) upload(ctx context.Context, src, object string) (err error) {
	rc := a.opts.Resource
	if err := rc.AcquireBackground(ctx); err != nil {
		return err
	}
	defer rc.ReleaseBackground()

	f, err := a.opts.fs.OpenFile(src, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", src, err)
	}
	defer func() { _ = f.Close() }()

	w, err := a.store.Create(ctx, object)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", object, err)
	}
	defer func() {
		if err != nil {
			if ab, ok := w.(aborter); ok {
				_ = ab.Abort()
			}
		}
	}()

	cw, err := a.opts.Codec.newWriter(w)
	if err != nil {
		return err
	}
	if _, err = io.Copy(cw, resource.NewRateLimitedReader(ctx, f, rc)); err != nil {
		_ = cw.Close()
		return fmt.Errorf("archive: upload %s: %w", object, err)
	}
	if err = cw.Close(); err != nil {
		return fmt.Errorf("archive: compress %s: %w", object, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("archive: commit %s: %w", object, err)
	}

	a.opts.Logger.DebugContext(ctx, "index file archived", "src", src, "object", object)
	return nil
}

// RestoreCycle downloads every index file archived under name into dir,
// creating dir if needed, and returns the number of files restored. Files
// are written to a temporary name and renamed into place.
func (a *Archiver) RestoreCycle(ctx context.Context, name, dir string) (int, error) {
	objects, err := a.store.List(ctx, name+"/")
	if err != nil {
		return 0, fmt.Errorf("archive: list %s: %w", name, err)
	}
	if len(objects) == 0 {
		return 0, nil
	}
	if err := a.opts.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("archive: create %s: %w", dir, err)
	}

	var n atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for _, object := range objects {
		file, codec := codecFor(path.Base(object))
		if !strings.HasPrefix(file, chronidx.IndexPrefix) {
			continue
		}
		g.Go(func() error {
			if err := a.download(ctx, object, codec, filepath.Join(dir, file)); err != nil {
				return err
			}
			n.Add(1)
			return nil
		})
	}

	err = g.Wait()
	a.opts.Logger.InfoContext(ctx, "cycle restored",
		"name", name,
		"dir", dir,
		"files", n.Load(),
		"error", err,
	)
	return int(n.Load()), err
}

func (a *Archiver) download(ctx context.Context, object string, codec Codec, dst string) error {
	rc := a.opts.Resource
	if err := rc.AcquireBackground(ctx); err != nil {
		return err
	}
	defer rc.ReleaseBackground()

	b, err := a.store.Open(ctx, object)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", object, err)
	}
	defer func() { _ = b.Close() }()

	body, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return fmt.Errorf("archive: read %s: %w", object, err)
	}
	defer func() { _ = body.Close() }()

	r, err := codec.newReader(body)
	if err != nil {
		return fmt.Errorf("archive: decode %s: %w", object, err)
	}
	defer func() { _ = r.Close() }()

	tmp := dst + ".restore"
	f, err := a.opts.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", tmp, err)
	}

	_, err = io.Copy(resource.NewRateLimitedWriter(ctx, f, rc), r)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = a.opts.fs.Rename(tmp, dst)
	}
	if err != nil {
		_ = a.opts.fs.Remove(tmp)
		return fmt.Errorf("archive: restore %s: %w", object, err)
	}

	a.opts.Logger.DebugContext(ctx, "index file restored", "object", object, "dst", dst)
	return nil
}
