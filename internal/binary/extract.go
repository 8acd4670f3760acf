package binary

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractToTemp extracts a .tar.gz archive into a new uuid-named directory
// under tempDir and returns that directory.
func (e *Extractor) ExtractToTemp(archivePath, tempDir string) (string, error) {
	destDir := filepath.Join(tempDir, uuid.NewString())
	if err := e.ExtractTarGz(archivePath, destDir); err != nil {
		return destDir, err
	}
	return destDir, nil
}

// ExtractTarGz extracts a .tar.gz archive to a destination directory.
// Entries and symlink targets that would land outside destDir are rejected,
// as is any entry that would be written through an extracted symlink.
// Files already written are left in place when extraction fails.
func (e *Extractor) ExtractTarGz(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: open archive: %w", ErrExtraction, err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("%w: create gzip reader: %w", ErrExtraction, err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("%w: create dest dir: %w", ErrExtraction, err)
	}
	base := filepath.Clean(destDir)
	root := base + string(os.PathSeparator)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read tar header: %w", ErrExtraction, err)
		}

		target := filepath.Join(destDir, header.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("%w: illegal file path: %s", ErrExtraction, header.Name)
		}
		linked, err := throughSymlink(base, target)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExtraction, err)
		}
		if linked {
			return fmt.Errorf("%w: path crosses a symlink: %s", ErrExtraction, header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("%w: create directory %s: %w", ErrExtraction, target, err)
			}

		case tar.TypeReg:
			if err := writeFile(target, tarReader, os.FileMode(header.Mode).Perm()); err != nil {
				return fmt.Errorf("%w: %w", ErrExtraction, err)
			}

		case tar.TypeSymlink:
			resolved := filepath.Clean(header.Linkname)
			if !filepath.IsAbs(resolved) {
				resolved = filepath.Join(filepath.Dir(target), resolved)
			}
			if !strings.HasPrefix(resolved, root) {
				return fmt.Errorf("%w: illegal symlink target: %s -> %s", ErrExtraction, header.Name, header.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("%w: create parent dir for %s: %w", ErrExtraction, target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("%w: create symlink %s: %w", ErrExtraction, target, err)
			}

		default:
			// char devices, fifos and the like are never part of a release
			continue
		}
	}
}

// throughSymlink reports whether target, or any directory between base and
// target, already exists on disk as a symlink.
func throughSymlink(base, target string) (bool, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", target, err)
	}

	path := base
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		path = filepath.Join(path, part)
		info, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return true, nil
		}
	}
	return false, nil
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", path, err)
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return out.Close()
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
