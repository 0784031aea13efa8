package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

// File is one artifact to package.
type File struct {
	Name string
	Path string
}

// Packager bundles per-table artifacts into one zip archive in Dir. Archive
// names carry a timestamp and a short run id.
type Packager struct {
	Dir string
	now func() time.Time
}

func NewPackager(dir string) *Packager {
	return &Packager{Dir: dir, now: time.Now}
}

func (p *Packager) Package(files []File) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("no files to package")
	}
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	now := time.Now()
	if p.now != nil {
		now = p.now()
	}
	archivePath := filepath.Join(p.Dir, fmt.Sprintf("dummy_data_%s_%s.zip", now.Format("2006-01-02_15-04-05"), uuid.NewString()[:8]))

	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	for _, f := range files {
		if err := addFile(zw, f, now); err != nil {
			zw.Close()
			out.Close()
			os.Remove(archivePath)
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(archivePath)
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return archivePath, nil
}

func addFile(zw *zip.Writer, f File, modified time.Time) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer src.Close()

	name := f.Name
	if name == "" {
		name = filepath.Base(f.Path)
	}
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to compress %s: %w", name, err)
	}
	return nil
}

// SaveAs copies an artifact to dest. A directory dest keeps the file name.
func SaveAs(src, dest string) (string, error) {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, filepath.Base(src))
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to copy artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dest, nil
}
