// Package parser reads cricsheet match files into model.Match values.
//
// Both cricsheet layouts are supported: the legacy YAML layout keyed by
// "over.ball" and the current layout with per-over delivery lists (usually
// shipped as JSON, which is also valid YAML). Files may be compressed with
// gzip, bzip2 or zstd; the suffix selects the decoder.
package parser

import (
	"bytes"
	"compress/bzip2"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"github.com/pable/go-cricket-prs/internal/model"
)

// Options controls parsing.
type Options struct {
	// Resilient drops malformed deliveries instead of rejecting their innings.
	Resilient bool
	// DefaultOvers and BallsPerOver fill in match metadata the file omits.
	DefaultOvers int
	BallsPerOver int
	Log          *logrus.Entry
}

// FileError is a failure that prevents a whole match file from being read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

var matchExts = []string{".yaml", ".yml", ".json"}

// IsMatchFile reports whether path has a match file extension, optionally
// followed by a compression suffix.
func IsMatchFile(path string) bool {
	base := strings.ToLower(path)
	for _, c := range []string{".gz", ".bz2", ".zst"} {
		base = strings.TrimSuffix(base, c)
	}
	for _, ext := range matchExts {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// FindMatchFiles returns the match files at path: path itself when it is a
// file, or every match file below it, sorted, when it is a directory.
func FindMatchFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsMatchFile(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

// ParseFile reads and parses the match file at path. Failures that affect
// the whole file are returned as *FileError. Delivery-level problems are
// attached to their innings: in strict mode as Innings.Err, in resilient
// mode as Innings.Dropped.
func ParseFile(path string, opts Options) (*model.Match, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	m, err := Parse(data, opts)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	m.Source = path

	log := opts.logger().WithFields(logrus.Fields{"source": path})
	for _, in := range m.Innings {
		log.WithFields(logrus.Fields{
			"innings":    in.Number,
			"deliveries": len(in.Deliveries),
		}).Debug("innings parsed")
	}
	return m, nil
}

// Parse parses match file contents. The returned match has no Source.
func Parse(data []byte, opts Options) (*model.Match, error) {
	sum := sha256.Sum256(data)
	m, err := decodeMatch(data, opts)
	if err != nil {
		return nil, err
	}
	m.Hash = fmt.Sprintf("%x", sum)
	return m, nil
}

// readFile returns the decompressed contents of path.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	switch lower := strings.ToLower(path); {
	case strings.HasSuffix(lower, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	case strings.HasSuffix(lower, ".bz2"):
		src = bzip2.NewReader(f)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return buf.Bytes(), nil
}

func (o Options) logger() *logrus.Entry {
	if o.Log != nil {
		return o.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
