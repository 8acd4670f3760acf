package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Logger receives progress messages from the Installer.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}

// Installer orchestrates download, optional verification, extraction and
// placement of the voorhees binary.
type Installer struct {
	workDir    string
	tempDir    string
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
	logger     Logger
}

// Config holds configuration for the installer
type Config struct {
	// WorkDir receives the installed binary.
	WorkDir string
	// TempDir holds extracted archives (default: DefaultTempDir()).
	TempDir string
	// Downloader defaults to NewDownloader(WithTempDir(TempDir)).
	Downloader *Downloader
	Logger     Logger
}

// NewInstaller creates a new installer
func NewInstaller(cfg Config) (*Installer, error) {
	if cfg.WorkDir == "" {
		return nil, fmt.Errorf("WorkDir is required")
	}
	if cfg.TempDir == "" {
		cfg.TempDir = DefaultTempDir()
	}
	if cfg.Downloader == nil {
		cfg.Downloader = NewDownloader(WithTempDir(cfg.TempDir))
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	return &Installer{
		workDir:    cfg.WorkDir,
		tempDir:    cfg.TempDir,
		downloader: cfg.Downloader,
		verifier:   NewVerifier(),
		extractor:  NewExtractor(),
		logger:     cfg.Logger,
	}, nil
}

// BinaryPath returns where Install places the binary.
func (i *Installer) BinaryPath() string {
	return filepath.Join(i.workDir, Name)
}

// IsInstalled checks if the binary is present in the work dir and executable
func (i *Installer) IsInstalled() (bool, error) {
	info, err := os.Stat(i.BinaryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat binary: %w", err)
	}

	if !info.Mode().IsRegular() {
		return false, nil
	}
	return info.Mode().Perm()&0111 != 0, nil
}

// Install downloads the archive described by info, verifies it when asked
// to, extracts it and moves the voorhees binary into the work dir,
// replacing any previous copy. Nothing is rolled back on failure.
func (i *Installer) Install(ctx context.Context, info *DownloadInfo, opts InstallOptions) (*InstallResult, error) {
	if info == nil {
		return nil, fmt.Errorf("download info is required")
	}
	startTime := time.Now()

	i.logger.Debug("downloading archive", "url", info.URL)
	archivePath, err := i.downloader.DownloadTool(ctx, info.URL)
	if err != nil {
		return nil, err
	}
	defer os.Remove(archivePath)

	verified, err := i.verify(ctx, info, archivePath, opts)
	if err != nil {
		return nil, err
	}
	downloadTime := time.Since(startTime)

	dir, err := i.extractor.ExtractToTemp(archivePath, i.tempDir)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	i.logger.Debug("extracted archive", "dir", dir)

	src := filepath.Join(dir, Name)
	if !fileExists(src) {
		return nil, fmt.Errorf("%w: %s not found in archive", ErrExtraction, Name)
	}

	dest := i.BinaryPath()
	if present, err := i.IsInstalled(); err == nil && present {
		i.logger.Debug("replacing existing binary", "path", dest)
	}
	if err := moveFile(src, dest); err != nil {
		return nil, fmt.Errorf("%w: install %s: %w", ErrExtraction, dest, err)
	}
	if err := SetExecutable(dest); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	i.logger.Debug("installed voorhees", "version", info.Version, "path", dest)

	return &InstallResult{
		Version:      info.Version,
		URL:          info.URL,
		Path:         dest,
		Verified:     verified,
		DownloadTime: downloadTime,
	}, nil
}

// verify runs the checks requested in opts. A signing key implies the
// checksum check since the signature only covers the checksum file.
func (i *Installer) verify(ctx context.Context, info *DownloadInfo, archivePath string, opts InstallOptions) (VerificationMethod, error) {
	if !opts.VerifyChecksum && opts.SigningKey == "" {
		return VerificationNone, nil
	}

	checksumPath, err := i.downloader.DownloadTool(ctx, info.ChecksumURL)
	if err != nil {
		return VerificationNone, fmt.Errorf("download checksums: %w", err)
	}
	defer os.Remove(checksumPath)

	method := VerificationSHA256
	if opts.SigningKey != "" {
		sigPath, err := i.downloader.DownloadTool(ctx, info.SignatureURL)
		if err != nil {
			return VerificationNone, fmt.Errorf("download signature: %w", err)
		}
		defer os.Remove(sigPath)

		if err := i.verifier.VerifySignature(checksumPath, sigPath, opts.SigningKey); err != nil {
			return VerificationNone, err
		}
		i.logger.Debug("checksum signature verified", "key", opts.SigningKey)
		method = VerificationOpenPGP
	}

	if err := i.verifier.VerifyChecksum(archivePath, checksumPath, path.Base(info.URL)); err != nil {
		return VerificationNone, err
	}
	i.logger.Debug("checksum verified", "asset", path.Base(info.URL))

	return method, nil
}

// moveFile renames src to dest, falling back to copy and delete when the
// two live on different filesystems.
func moveFile(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := writeFile(dest, in, 0755); err != nil {
		return err
	}
	return os.Remove(src)
}
