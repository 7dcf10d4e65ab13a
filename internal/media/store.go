// Package media stores uploaded files on local disk and serves them under
// /uploads/.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path uploads are served from.
const URLPrefix = "/uploads/"

var (
	ErrTooLarge    = errors.New("file exceeds the upload size limit")
	ErrEmptyFile   = errors.New("file is empty")
	ErrInvalidName = errors.New("invalid stored file name")
)

// Stored describes a saved upload.
type Stored struct {
	Filename  string // original client name
	Name      string // name on disk
	URL       string
	MimeType  string
	SizeBytes int64
}

// DiskStore saves files under Dir with uuid-prefixed names.
type DiskStore struct {
	Dir      string
	MaxBytes int64
}

func NewDiskStore(dir string, maxBytes int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Dir: dir, MaxBytes: maxBytes}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// cleanName keeps the base of a client file name, restricted to safe
// characters.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return name
}

// Save copies r to disk. The MIME type is sniffed from the first bytes of
// the content rather than trusted from the client.
func (s *DiskStore) Save(filename string, r io.Reader) (*Stored, error) {
	name := uuid.NewString() + "-" + cleanName(filename)
	dst := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		os.Remove(dst)
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		f.Close()
		os.Remove(dst)
		return nil, ErrEmptyFile
	}

	limit := s.MaxBytes
	src := io.MultiReader(bytes.NewReader(head), r)
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	written, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if limit > 0 && written > limit {
		os.Remove(dst)
		return nil, ErrTooLarge
	}

	return &Stored{
		Filename:  filename,
		Name:      name,
		URL:       path.Join(URLPrefix, name),
		MimeType:  http.DetectContentType(head),
		SizeBytes: written,
	}, nil
}

// Delete removes the file behind a public URL. A file that is already gone
// is not an error.
func (s *DiskStore) Delete(url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}
	name := strings.TrimPrefix(url, URLPrefix)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// inlineTypes may be displayed by the browser. SVG is left out because it
// can carry script.
var inlineTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"image/avif":      true,
	"application/pdf": true,
	"video/mp4":       true,
	"video/webm":      true,
	"audio/mpeg":      true,
}

// Handler serves stored files. Anything that is not a plain image, document
// or media type is sent as an opaque download so an uploaded page or script
// never runs on the site's origin.
func (s *DiskStore) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.Dir))
	return http.StripPrefix(URLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Base(r.URL.Path)
		ctype, _, _ := mime.ParseMediaType(mime.TypeByExtension(path.Ext(name)))
		if !inlineTypes[ctype] {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	}))
}
