package imagepicker

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atomicstack/tweet-popup/internal/draft"
	uistate "github.com/atomicstack/tweet-popup/internal/ui/state"
	"github.com/dustin/go-humanize"
)

// MaxImageSize is the largest file Load accepts.
const MaxImageSize = 5 << 20

// DefaultDepth bounds how far below the root Scan descends.
const DefaultDepth = 3

var (
	// ErrTooLarge is returned for files over MaxImageSize.
	ErrTooLarge = errors.New("image too large")
	// ErrNotImage is returned when the file content is not a supported image.
	ErrNotImage = errors.New("not an image")
)

var extensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// IsImageName reports whether name has a supported image extension.
func IsImageName(name string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Scan lists image files under root, at most depth directories deep. Hidden
// files and directories are skipped. Items are keyed by absolute path and
// labelled with the path relative to root.
func Scan(root string, depth int) ([]uistate.Item, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	if depth <= 0 {
		depth = DefaultDepth
	}
	var items []uistate.Item
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == abs {
				return walkErr
			}
			return nil
		}
		rel, _ := filepath.Rel(abs, path)
		if path != abs && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if rel != "." && strings.Count(filepath.ToSlash(rel), "/")+1 >= depth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsImageName(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		items = append(items, uistate.Item{
			ID:     path,
			Label:  filepath.ToSlash(rel),
			Detail: humanize.Bytes(uint64(info.Size())),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items, nil
}

// Load reads an image file and encodes it for submission.
func Load(path string) (*draft.StatusImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > MaxImageSize {
		return nil, fmt.Errorf("%s is %s: %w (limit %s)", filepath.Base(path), humanize.Bytes(uint64(info.Size())), ErrTooLarge, humanize.Bytes(MaxImageSize))
	}
	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrTooLarge)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s (%s): %w", filepath.Base(path), mime, ErrNotImage)
	}
	return &draft.StatusImage{
		Data:     base64.StdEncoding.EncodeToString(data),
		Name:     filepath.Base(path),
		MimeType: mime,
		Size:     int64(len(data)),
	}, nil
}
