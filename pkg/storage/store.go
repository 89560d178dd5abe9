package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fredcat/pkg/dataset"
	fcerrors "fredcat/pkg/errors"
	"fredcat/pkg/logger"
)

// Store persists tables as flat files in one directory.
type Store struct {
	dir    string
	codec  Codec
	logger logger.Logger
}

// FileInfo describes one stored table file.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on the first Save.
func NewStore(dir string, codec Codec, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{dir: dir, codec: codec, logger: log}
}

// Dir returns the output directory path
func (s *Store) Dir() string {
	return s.dir
}

// Extension returns the file suffix of the store's codec.
func (s *Store) Extension() string {
	return s.codec.Extension()
}

// Path returns the full path of filename inside the store.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Save writes t to filename, replacing any previous file. The write goes to a
// temporary file that is renamed into place, so readers never see a partial
// table.
func (s *Store) Save(t *dataset.Table, filename string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fcerrors.New(fcerrors.ErrorTypeStorage, "failed to create output directory", err)
	}

	target := s.Path(filename)
	tmp, err := os.CreateTemp(s.dir, filename+".*.tmp")
	if err != nil {
		return fcerrors.New(fcerrors.ErrorTypeStorage, "failed to create temporary file", err)
	}
	tmpName := tmp.Name()

	encErr := s.codec.Encode(tmp, t)
	if encErr == nil {
		encErr = tmp.Sync()
	}
	closeErr := tmp.Close()

	if encErr != nil {
		os.Remove(tmpName)
		return fcerrors.New(fcerrors.ErrorTypeStorage, fmt.Sprintf("failed to write %s", filename), encErr)
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return fcerrors.New(fcerrors.ErrorTypeStorage, "failed to close temporary file", closeErr)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fcerrors.New(fcerrors.ErrorTypeStorage, "failed to rename temporary file", err)
	}

	s.logger.DebugWithFields("Table saved", logger.Fields{
		"path": target,
		"rows": t.Len(),
	})
	return nil
}

// Load reads filename. A missing file is not an error: it returns (nil, nil).
func (s *Store) Load(filename string) (*dataset.Table, error) {
	path := s.Path(filename)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fcerrors.New(fcerrors.ErrorTypeStorage, fmt.Sprintf("failed to open %s", filename), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fcerrors.New(fcerrors.ErrorTypeStorage, fmt.Sprintf("failed to stat %s", filename), err)
	}

	t, err := s.codec.Decode(f, info.Size())
	if err != nil {
		return nil, fcerrors.New(fcerrors.ErrorTypeStorage, fmt.Sprintf("failed to decode %s", filename), err)
	}

	s.logger.DebugWithFields("Table loaded", logger.Fields{
		"path": path,
		"rows": t.Len(),
	})
	return t, nil
}

// Exists reports whether filename is present in the store.
func (s *Store) Exists(filename string) bool {
	_, err := os.Stat(s.Path(filename))
	return err == nil
}

// List returns the files carrying the codec's extension, sorted by name.
// A missing directory yields an empty list.
func (s *Store) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fcerrors.New(fcerrors.ErrorTypeStorage, "failed to read output directory", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.codec.Extension()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
