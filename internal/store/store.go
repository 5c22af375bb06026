package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/stream"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketBooks        = []byte("books")
	bucketChapters     = []byte("chapters")
	bucketChapterIndex = []byte("chapter_index")
)

var allBuckets = [][]byte{bucketBooks, bucketChapters, bucketChapterIndex}

// dbFileName is the bolt file created inside the data directory
const dbFileName = "library.db"

// LibraryStore implements domain.BookStore using BoltDB.
type LibraryStore struct {
	db     *bolt.DB
	logger *slog.Logger

	mu     sync.RWMutex // Protects cache and closed
	closed bool

	// In-memory cache for hot-path reads (promoted on access).
	// In memory-only mode this is the whole store.
	cache map[string][]byte

	// writeMu serializes mutations so snapshots are published in order
	writeMu sync.Mutex
	library *stream.Broadcaster[[]domain.BookWithProgress]
}

// NewLibraryStore opens the store in dataDir. An empty dataDir keeps
// everything in memory.
func NewLibraryStore(dataDir string, logger *slog.Logger) (*LibraryStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &LibraryStore{
		logger:  logger,
		cache:   make(map[string][]byte),
		library: stream.NewBroadcaster[[]domain.BookWithProgress](),
	}

	if dataDir != "" {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		dbPath := filepath.Join(dataDir, dbFileName)
		db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt db: %w", err)
		}

		err = db.Update(func(tx *bolt.Tx) error {
			for _, bucket := range allBuckets {
				if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			db.Close()
			return nil, err
		}
		s.db = db
	}

	if err := s.publish(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database and closes every library subscription
func (s *LibraryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.library.Close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

// op is a single write applied by apply
type op struct {
	bucket []byte
	key    string
	data   []byte // nil deletes the key
}

func putOp(bucket []byte, key string, value interface{}) (op, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return op{}, err
	}
	return op{bucket: bucket, key: key, data: data}, nil
}

func deleteOp(bucket []byte, key string) op {
	return op{bucket: bucket, key: key}
}

func cacheKey(bucket []byte, key string) string {
	return string(bucket) + ":" + key
}

func (s *LibraryStore) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return nil
}

func (s *LibraryStore) get(bucket []byte, key string, dest interface{}) bool {
	ck := cacheKey(bucket, key)

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[ck]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[ck] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

// apply writes all ops in one transaction, then mirrors them into the cache
func (s *LibraryStore) apply(ops []op) error {
	if len(ops) == 0 {
		return nil
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			for _, o := range ops {
				b := tx.Bucket(o.bucket)
				var err error
				if o.data == nil {
					err = b.Delete([]byte(o.key))
				} else {
					err = b.Put([]byte(o.key), o.data)
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	for _, o := range ops {
		ck := cacheKey(o.bucket, o.key)
		if o.data == nil {
			delete(s.cache, ck)
		} else {
			s.cache[ck] = o.data
		}
	}
	s.mu.Unlock()
	return nil
}

// scan calls fn for every key in bucket starting with prefix, in key order
func (s *LibraryStore) scan(bucket []byte, prefix string, fn func(key string, data []byte) error) error {
	if s.db != nil {
		return s.db.View(func(tx *bolt.Tx) error {
			c := tx.Bucket(bucket).Cursor()
			p := []byte(prefix)
			for k, v := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
				if err := fn(string(k), v); err != nil {
					return err
				}
			}
			return nil
		})
	}

	// Memory-only mode
	full := cacheKey(bucket, prefix)
	trim := len(bucket) + 1

	s.mu.RLock()
	keys := make([]string, 0)
	for k := range s.cache {
		if strings.HasPrefix(k, full) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	entries := make([][]byte, len(keys))
	for i, k := range keys {
		entries[i] = s.cache[k]
	}
	s.mu.RUnlock()

	for i, k := range keys {
		if err := fn(k[trim:], entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// deletePrefixOps returns delete ops for every key in bucket with prefix
func (s *LibraryStore) deletePrefixOps(bucket []byte, prefix string) ([]op, error) {
	var ops []op
	err := s.scan(bucket, prefix, func(key string, _ []byte) error {
		ops = append(ops, deleteOp(bucket, key))
		return nil
	})
	return ops, err
}

// chapterPrefix is the key prefix shared by every chapter of a book.
// URLs never contain NUL, so prefixes of different books cannot overlap.
func chapterPrefix(bookURL string) string {
	return bookURL + "\x00"
}

func chapterKey(bookURL, chapterURL string) string {
	return chapterPrefix(bookURL) + chapterURL
}
