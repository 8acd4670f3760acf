package binary

import (
	"errors"
	"time"
)

// Name is the executable shipped in every voorhees release archive.
const Name = "voorhees"

var (
	// ErrUnsupportedPlatform is returned when no archive is published for the
	// host OS/architecture pair.
	ErrUnsupportedPlatform = errors.New("system not supported")
	// ErrTransport wraps download failures.
	ErrTransport = errors.New("download failed")
	// ErrExtraction wraps archive extraction and install failures.
	ErrExtraction = errors.New("extraction failed")
	// ErrVerification wraps checksum and signature failures.
	ErrVerification = errors.New("verification failed")
)

// VerificationMethod indicates how an archive was verified
type VerificationMethod int

const (
	// VerificationNone means the archive was installed unverified (the default)
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 means the archive matched the release checksum file
	VerificationSHA256
	// VerificationOpenPGP means the checksum file carried a valid detached
	// signature and the archive matched it
	VerificationOpenPGP
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationNone:
		return "None"
	case VerificationSHA256:
		return "SHA256"
	case VerificationOpenPGP:
		return "OpenPGP"
	default:
		return "Unknown"
	}
}

// DownloadInfo describes the release archive for one version and host.
type DownloadInfo struct {
	Version       string
	OS            string // identifier as supplied, e.g. "linux", "win32"
	Arch          string // identifier as supplied, e.g. "x64", "amd64"
	PlatformLabel string // "Linux", "Darwin" or "Windows"
	ArchLabel     string // "x86_64" or "i386"
	URL           string
	ChecksumURL   string
	SignatureURL  string
}

// InstallOptions controls optional verification during Install.
type InstallOptions struct {
	// VerifyChecksum checks the archive against the release checksum file.
	VerifyChecksum bool
	// SigningKey is a path to an OpenPGP public key. When set, the checksum
	// file signature is checked too, which implies VerifyChecksum.
	SigningKey string
}

// InstallResult contains information about a completed install
type InstallResult struct {
	Version      string
	URL          string
	Path         string
	Verified     VerificationMethod
	DownloadTime time.Duration
}
