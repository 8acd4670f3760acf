package binary

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func createTestTarGz(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "test.tar.gz")

	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer func() { _ = gzipWriter.Close() }()

	tarWriter := tar.NewWriter(gzipWriter)
	defer func() { _ = tarWriter.Close() }()

	for name, content := range files {
		header := &tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(content)),
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", name, err)
		}

		if _, err := tarWriter.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write content for %s: %v", name, err)
		}
	}

	return archivePath
}

func TestExtractTarGz(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr bool
	}{
		{
			name: "simple_extraction",
			files: map[string]string{
				"file1.txt": "content1",
				"file2.txt": "content2",
			},
			wantErr: false,
		},
		{
			name: "nested_directories",
			files: map[string]string{
				"dir1/file1.txt":      "content1",
				"dir1/dir2/file2.txt": "content2",
				"dir3/file3.txt":      "content3",
			},
			wantErr: false,
		},
		{
			name: "release_layout",
			files: map[string]string{
				"voorhees":  "#!/bin/sh\necho hello",
				"LICENSE":   "MIT",
				"README.md": "readme",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archivePath := createTestTarGz(t, tt.files)

			destDir := t.TempDir()
			extractor := NewExtractor()
			err := extractor.ExtractTarGz(archivePath, destDir)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("extraction failed: %v", err)
			}

			// Verify extracted files
			for name, expectedContent := range tt.files {
				extractedPath := filepath.Join(destDir, name)

				if !fileExists(extractedPath) {
					t.Errorf("file %s was not extracted", name)
					continue
				}

				content, err := os.ReadFile(extractedPath)
				if err != nil {
					t.Errorf("failed to read extracted file %s: %v", name, err)
					continue
				}

				if string(content) != expectedContent {
					t.Errorf("content mismatch for %s:\ngot:  %q\nwant: %q",
						name, string(content), expectedContent)
				}
			}
		})
	}
}

func TestExtractTarGz_PathTraversal(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		shouldFail  bool
		description string
	}{
		{
			name:        "obvious_traversal",
			fileName:    "../../../etc/passwd",
			shouldFail:  true,
			description: "Simple parent directory traversal",
		},
		{
			name:        "absolute_path",
			fileName:    "/etc/passwd",
			shouldFail:  false, // filepath.Join makes this relative, becomes <destdir>/etc/passwd
			description: "Absolute path (filepath.Join makes it relative)",
		},
		{
			name:        "symlink_traversal",
			fileName:    "link/../../../etc/passwd",
			shouldFail:  true,
			description: "Traversal via symlink path component",
		},

		{
			name:        "valid_subdirectory",
			fileName:    "subdir/file.txt",
			shouldFail:  false,
			description: "Valid file in subdirectory",
		},
		{
			name:        "valid_file",
			fileName:    "file.txt",
			shouldFail:  false,
			description: "Valid file in root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			archivePath := filepath.Join(tmpDir, "test.tar.gz")

			// Create archive with the test file
			if err := createTestArchiveWithFile(archivePath, tt.fileName, "test content"); err != nil {
				t.Fatalf("failed to create test archive: %v", err)
			}

			destDir := filepath.Join(tmpDir, "extract")
			extractor := NewExtractor()
			err := extractor.ExtractTarGz(archivePath, destDir)

			if tt.shouldFail {
				if err == nil {
					t.Errorf("expected error for %s, but extraction succeeded", tt.description)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error for %s: %v", tt.description, err)
				}
			}
		})
	}
}

// createTestArchiveWithFile creates a tar.gz with a single file
func createTestArchiveWithFile(archivePath, fileName, content string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = archiveFile.Close() }()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer func() { _ = gzipWriter.Close() }()

	tarWriter := tar.NewWriter(gzipWriter)
	defer func() { _ = tarWriter.Close() }()

	header := &tar.Header{
		Name: fileName,
		Mode: 0644,
		Size: int64(len(content)),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	if _, err := tarWriter.Write([]byte(content)); err != nil {
		return err
	}

	return nil
}

func TestExtractTarGz_SymlinkTraversal(t *testing.T) {
	tests := []struct {
		name        string
		linkName    string
		linkTarget  string
		shouldFail  bool
		description string
	}{
		{
			name:        "absolute_symlink",
			linkName:    "link",
			linkTarget:  "/etc/passwd",
			shouldFail:  true,
			description: "Symlink to absolute path outside destDir",
		},
		{
			name:        "relative_traversal_symlink",
			linkName:    "link",
			linkTarget:  "../../../etc/passwd",
			shouldFail:  true,
			description: "Symlink with relative path traversal",
		},
		{
			name:        "valid_relative_symlink",
			linkName:    "link",
			linkTarget:  "target.txt",
			shouldFail:  false,
			description: "Valid symlink within destDir",
		},
		{
			name:        "valid_subdir_symlink",
			linkName:    "subdir/link",
			linkTarget:  "../target.txt",
			shouldFail:  false,
			description: "Valid symlink in subdirectory pointing to parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			archivePath := filepath.Join(tmpDir, "test.tar.gz")

			// Create archive with symlink
			archiveFile, err := os.Create(archivePath)
			if err != nil {
				t.Fatalf("failed to create archive: %v", err)
			}
			defer func() { _ = archiveFile.Close() }()

			gzipWriter := gzip.NewWriter(archiveFile)
			defer func() { _ = gzipWriter.Close() }()

			tarWriter := tar.NewWriter(gzipWriter)
			defer func() { _ = tarWriter.Close() }()

			// Add a target file first (for valid tests)
			if !tt.shouldFail {
				header := &tar.Header{
					Name: "target.txt",
					Mode: 0644,
					Size: 4,
				}
				_ = tarWriter.WriteHeader(header)
				_, _ = tarWriter.Write([]byte("test"))
			}

			// Add symlink
			header := &tar.Header{
				Name:     tt.linkName,
				Typeflag: tar.TypeSymlink,
				Linkname: tt.linkTarget,
			}
			if err := tarWriter.WriteHeader(header); err != nil {
				t.Fatalf("failed to write symlink header: %v", err)
			}

			_ = tarWriter.Close()
			_ = gzipWriter.Close()
			_ = archiveFile.Close()

			destDir := filepath.Join(tmpDir, "extract")
			extractor := NewExtractor()
			err = extractor.ExtractTarGz(archivePath, destDir)

			if tt.shouldFail {
				if err == nil {
					t.Errorf("expected error for %s, but extraction succeeded", tt.description)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error for %s: %v", tt.description, err)
				}
			}
		})
	}
}

func TestSetExecutable(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test-file")

	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	// Verify initial permissions
	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("failed to stat file: %v", err)
	}

	if info.Mode().Perm()&0111 != 0 {
		t.Error("file should not be executable initially")
	}

	// Set executable
	if err := SetExecutable(testFile); err != nil {
		t.Fatalf("SetExecutable failed: %v", err)
	}

	// Verify new permissions
	info, err = os.Stat(testFile)
	if err != nil {
		t.Fatalf("failed to stat file after SetExecutable: %v", err)
	}

	if info.Mode().Perm() != 0755 {
		t.Errorf("permissions mismatch: got %o, want 0755", info.Mode().Perm())
	}
}

func TestExtractTarGz_CorruptedArchive(t *testing.T) {
	tmpDir := t.TempDir()

	// Create a corrupted archive
	corruptedPath := filepath.Join(tmpDir, "corrupted.tar.gz")
	if err := os.WriteFile(corruptedPath, []byte("not a valid gzip file"), 0644); err != nil {
		t.Fatalf("failed to create corrupted file: %v", err)
	}

	destDir := filepath.Join(tmpDir, "extract")
	extractor := NewExtractor()
	err := extractor.ExtractTarGz(corruptedPath, destDir)

	if !errors.Is(err, ErrExtraction) {
		t.Errorf("error = %v, want ErrExtraction", err)
	}
}

func TestExtractToTemp(t *testing.T) {
	archivePath := createTestTarGz(t, map[string]string{"voorhees": "binary"})
	tempDir := t.TempDir()
	extractor := NewExtractor()

	first, err := extractor.ExtractToTemp(archivePath, tempDir)
	if err != nil {
		t.Fatalf("ExtractToTemp() error = %v", err)
	}
	second, err := extractor.ExtractToTemp(archivePath, tempDir)
	if err != nil {
		t.Fatalf("ExtractToTemp() error = %v", err)
	}

	if filepath.Dir(first) != tempDir {
		t.Errorf("ExtractToTemp() = %s, want a directory in %s", first, tempDir)
	}
	if first == second {
		t.Error("each extraction should get a fresh directory")
	}
	if !fileExists(filepath.Join(first, "voorhees")) {
		t.Error("voorhees was not extracted")
	}
}

func TestExtractTarGz_KeepsFileMode(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "test.tar.gz")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	content := []byte("#!/bin/sh\n")
	if err := tw.WriteHeader(&tar.Header{Name: "voorhees", Mode: 0755, Size: int64(len(content))}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	_ = tw.Close()
	_ = gw.Close()
	_ = f.Close()

	destDir := filepath.Join(tmpDir, "extract")
	if err := NewExtractor().ExtractTarGz(archivePath, destDir); err != nil {
		t.Fatalf("ExtractTarGz() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(destDir, "voorhees"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %o, want 0755", info.Mode().Perm())
	}
}

func writeTarGzEntries(t *testing.T, path string, headers []*tar.Header, contents map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for _, h := range headers {
		if h.Typeflag == tar.TypeReg {
			h.Size = int64(len(contents[h.Name]))
		}
		if err := tw.WriteHeader(h); err != nil {
			t.Fatalf("failed to write header for %s: %v", h.Name, err)
		}
		if h.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(contents[h.Name])); err != nil {
				t.Fatal(err)
			}
		}
	}
	_ = tw.Close()
	_ = gw.Close()
	_ = f.Close()
}

func TestExtractTarGz_WriteThroughSymlink(t *testing.T) {
	tests := []struct {
		name    string
		headers func(destDir string) []*tar.Header
	}{
		{
			name: "absolute_target_with_dot_dot",
			headers: func(destDir string) []*tar.Header {
				return []*tar.Header{
					{Name: "link", Typeflag: tar.TypeSymlink, Linkname: destDir + "/../outside"},
					{Name: "link/evil", Typeflag: tar.TypeReg, Mode: 0644},
				}
			},
		},
		{
			name: "file_under_inside_link",
			headers: func(destDir string) []*tar.Header {
				return []*tar.Header{
					{Name: "real/", Typeflag: tar.TypeDir, Mode: 0755},
					{Name: "link", Typeflag: tar.TypeSymlink, Linkname: "real"},
					{Name: "link/evil", Typeflag: tar.TypeReg, Mode: 0644},
				}
			},
		},
		{
			name: "file_over_link",
			headers: func(destDir string) []*tar.Header {
				return []*tar.Header{
					{Name: "target.txt", Typeflag: tar.TypeReg, Mode: 0644},
					{Name: "link", Typeflag: tar.TypeSymlink, Linkname: "target.txt"},
					{Name: "link", Typeflag: tar.TypeReg, Mode: 0644},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			outside := filepath.Join(tmpDir, "outside")
			if err := os.MkdirAll(outside, 0755); err != nil {
				t.Fatal(err)
			}
			destDir := filepath.Join(tmpDir, "extract")
			archivePath := filepath.Join(tmpDir, "test.tar.gz")
			writeTarGzEntries(t, archivePath, tt.headers(destDir), map[string]string{
				"link/evil":  "pwned",
				"link":       "pwned",
				"target.txt": "safe",
			})

			err := NewExtractor().ExtractTarGz(archivePath, destDir)
			if !errors.Is(err, ErrExtraction) {
				t.Fatalf("ExtractTarGz() error = %v, want ErrExtraction", err)
			}
			if _, err := os.Stat(filepath.Join(outside, "evil")); !os.IsNotExist(err) {
				t.Errorf("file written outside destDir (stat err = %v)", err)
			}
		})
	}
}
