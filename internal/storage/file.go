package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/pagepal/internal/library"
)

// FileStore keeps materialised content under Root using the layout
// <root>/<title>/<chapter>/<sequence><ext>.
type FileStore struct {
	Root string
}

func New(root string) *FileStore {
	if root == "" {
		root = "library"
	}

	return &FileStore{Root: root}
}

func (s *FileStore) Path(title library.Label, chapter, seq int, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return filepath.Join(s.Root, string(title), fmt.Sprintf("%04d", chapter), fmt.Sprintf("%04d%s", seq, ext))
}

// Save writes data to unit.Location. Text units with no data write their body.
func (s *FileStore) Save(unit library.Content, data []byte) (library.Content, error) {
	if unit.Location == "" {
		return unit, fmt.Errorf("save %s unit: empty location", unit.Kind)
	}
	if data == nil && unit.Kind == library.KindText {
		data = []byte(unit.Body)
	}

	if err := os.MkdirAll(filepath.Dir(unit.Location), 0755); err != nil {
		return unit, err
	}
	if err := os.WriteFile(unit.Location, data, 0644); err != nil {
		return unit, fmt.Errorf("save %s: %w", unit.Location, err)
	}

	return unit, nil
}

// Write streams r into unit.Location, reporting the running byte count to
// progress after every chunk.
func (s *FileStore) Write(unit library.Content, r io.Reader, progress func(done int64)) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(unit.Location), 0755); err != nil {
		return 0, err
	}

	f, err := os.Create(unit.Location)
	if err != nil {
		return 0, err
	}

	written, err := copyWithProgress(f, r, progress)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(unit.Location)
		return written, fmt.Errorf("write %s: %w", unit.Location, err)
	}

	return written, nil
}

// Load reads a file back into a unit. Image extensions become Image units,
// everything else is read as Text.
func (s *FileStore) Load(path string) (library.Content, error) {
	if library.IsImagePath(path) {
		if _, err := os.Stat(path); err != nil {
			return library.Content{}, err
		}

		return library.Image(path, ""), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return library.Content{}, err
	}

	return library.Text(path, "", string(b)), nil
}

func copyWithProgress(dst io.Writer, src io.Reader, progress func(done int64)) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		nr, er := src.Read(buf)

		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])

			if nw > 0 {
				total += int64(nw)
				if progress != nil {
					progress(total)
				}
			}

			if ew != nil {
				return total, ew
			}

			if nr != nw {
				return total, io.ErrShortWrite
			}
		}

		if er != nil {
			if er == io.EOF {
				break
			}
			return total, er
		}
	}

	return total, nil
}
