package source

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrUnplayable marks a source that cannot be opened. The queue manager
// skips forward on it instead of stalling.
var ErrUnplayable = errors.New("unplayable source")

// ObjectProvider defines what we need from the remote storage layer.
type ObjectProvider interface {
	Get(bucket, key string) (io.ReadCloser, error)
}

// Resolver turns a track's source URI into an open audio handle.
// Local URIs open directly; s3:// URIs download into a local cache first
// so playback reads block on disk, not the network.
type Resolver struct {
	objects  ObjectProvider // nil when no remote storage is configured
	cacheDir string
	mu       sync.Mutex
	pending  map[string]chan struct{}
}

func NewResolver(objects ObjectProvider, tmpDir string) *Resolver {
	cacheDir := filepath.Join(tmpDir, "track_cache")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create cache dir: %v", err)
	}

	return &Resolver{
		objects:  objects,
		cacheDir: cacheDir,
		pending:  make(map[string]chan struct{}),
	}
}

func (r *Resolver) Resolve(uri string) (*Handle, error) {
	switch {
	case strings.HasPrefix(uri, "local:"):
		return r.openLocal(uri, strings.TrimPrefix(uri, "local:"))
	case strings.HasPrefix(uri, "s3://"):
		path, err := r.fetch(strings.TrimPrefix(uri, "s3://"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnplayable, err)
		}
		return r.openLocal(uri, path)
	default:
		// Bare paths are treated as local files.
		return r.openLocal(uri, uri)
	}
}

func (r *Resolver) openLocal(uri, path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnplayable, err)
	}
	return newHandle(uri, f), nil
}

// fetch downloads bucket/key into the cache unless it is already there or
// another goroutine is mid-download.
func (r *Resolver) fetch(remote string) (string, error) {
	if r.objects == nil {
		return "", errors.New("no object storage configured")
	}

	bucket, key, ok := strings.Cut(remote, "/")
	if !ok {
		return "", fmt.Errorf("malformed s3 locator %q", remote)
	}

	localPath := filepath.Join(r.cacheDir, filepath.Base(key))

	if r.exists(localPath) {
		os.Chtimes(localPath, time.Now(), time.Now())
		return localPath, nil
	}

	r.mu.Lock()
	waitCh, downloading := r.pending[remote]
	if downloading {
		r.mu.Unlock()
		<-waitCh
		return localPath, nil
	}
	done := make(chan struct{})
	r.pending[remote] = done
	r.mu.Unlock()

	defer func() {
		close(done)
		r.mu.Lock()
		delete(r.pending, remote)
		r.mu.Unlock()
	}()

	log.Printf("📥 Cache Miss: Downloading %s", remote)
	if err := r.download(bucket, key, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

func (r *Resolver) exists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir() && info.Size() > 0
}

func (r *Resolver) download(bucket, key, dest string) error {
	tmp := dest + ".tmp"

	reader, err := r.objects.Get(bucket, key)
	if err != nil {
		return err
	}
	defer reader.Close()

	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return err
	}

	// Rename to final file (Atomic)
	return os.Rename(tmp, dest)
}
