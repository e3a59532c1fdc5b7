package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/pagepal/internal/library"
)

var ErrNoPages = errors.New("no pages to pack")

// CBZ packs the image units into a comic archive at output. Entries are
// renumbered in the given order so readers sort them correctly even when the
// units come from several chapter folders. Non-image units are skipped.
func CBZ(output string, units []library.Content) (err error) {
	var pages []library.Content
	for _, u := range units {
		if u.Visual() {
			pages = append(pages, u)
		}
	}
	if len(pages) == 0 {
		return fmt.Errorf("cbz %s: %w", output, ErrNoPages)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("cbz: %w", err)
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("cbz: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("cbz: close %s: %w", output, cerr)
		}
		if err != nil {
			_ = os.Remove(output)
		}
	}()

	z := zip.NewWriter(out)
	for i, p := range pages {
		name := fmt.Sprintf("%04d%s", i+1, strings.ToLower(filepath.Ext(p.Location)))
		if err := addFileToZip(z, p.Location, name); err != nil {
			_ = z.Close()
			return fmt.Errorf("cbz: %s: %w", p.Location, err)
		}
	}

	return z.Close()
}

func addFileToZip(z *zip.Writer, file, name string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = name
	header.Method = zip.Deflate

	w, err := z.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, f)
	return err
}
