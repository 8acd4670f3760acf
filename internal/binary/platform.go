package binary

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultReleaseBaseURL is where voorhees publishes its release assets.
const DefaultReleaseBaseURL = "https://github.com/Nivl/voorhees/releases"

const (
	archX86_64 = "x86_64"
	archI386   = "i386"
)

// BuildDownloadURL returns the archive location for version v on the given
// host. osID and archID accept both runner-style ("win32", "x64", "ia32")
// and Go ("windows", "amd64", "386") identifiers.
//
// Pattern: {base}/download/v{version}/voorhees_{version}_{Platform}_{Arch}.tar.gz
//
// Darwin always resolves to x86_64; there is no native arm64 archive.
// Windows and Linux only publish x86_64 and i386 builds.
func BuildDownloadURL(baseURL string, v *semver.Version, osID, archID string) (*DownloadInfo, error) {
	if v == nil {
		return nil, fmt.Errorf("version is required")
	}

	arch := mapArch(archID)

	var label string
	switch osID {
	case "win32", "windows":
		label = "Windows"
	case "darwin":
		label = "Darwin"
		arch = archX86_64
	case "linux":
		label = "Linux"
	default:
		return nil, unsupported(osID, archID)
	}

	if arch != archX86_64 && arch != archI386 {
		return nil, unsupported(osID, archID)
	}

	if baseURL == "" {
		baseURL = DefaultReleaseBaseURL
	}
	ver := v.String()
	dir := fmt.Sprintf("%s/download/v%s", strings.TrimRight(baseURL, "/"), ver)
	checksums := fmt.Sprintf("%s/voorhees_%s_checksums.txt", dir, ver)

	return &DownloadInfo{
		Version:       ver,
		OS:            osID,
		Arch:          archID,
		PlatformLabel: label,
		ArchLabel:     arch,
		URL:           fmt.Sprintf("%s/voorhees_%s_%s_%s.tar.gz", dir, ver, label, arch),
		ChecksumURL:   checksums,
		SignatureURL:  checksums + ".sig",
	}, nil
}

// mapArch maps runner and Go architecture names to the release asset names.
// Anything unknown passes through unchanged.
func mapArch(arch string) string {
	switch arch {
	case "x64", "amd64":
		return archX86_64
	case "x32", "ia32", "386":
		return archI386
	default:
		return arch
	}
}

func unsupported(osID, archID string) error {
	return fmt.Errorf("%w: %s %s", ErrUnsupportedPlatform, osID, archID)
}
