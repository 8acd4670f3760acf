// Package binary resolves, downloads, verifies and installs the voorhees
// release archive for the current host.
//
// # URL Construction
//
// BuildDownloadURL maps an OS/architecture pair onto the goreleaser asset
// naming used by voorhees:
//
//	{base}/download/v{version}/voorhees_{version}_{Platform}_{Arch}.tar.gz
//
// Platform is one of Linux, Darwin or Windows and Arch one of x86_64 or
// i386. Darwin is always x86_64. Other combinations return
// ErrUnsupportedPlatform.
//
// # Verification
//
// Verification is opt-in. With InstallOptions.VerifyChecksum the archive is
// checked against voorhees_{version}_checksums.txt from the same release.
// With InstallOptions.SigningKey the checksum file must also carry a valid
// detached OpenPGP signature (checksums.txt.sig) from that key.
//
// # Usage
//
//	info, err := binary.BuildDownloadURL(binary.DefaultReleaseBaseURL, v, "linux", "x64")
//	if err != nil {
//	    return err
//	}
//
//	inst, err := binary.NewInstaller(binary.Config{WorkDir: cwd})
//	if err != nil {
//	    return err
//	}
//
//	res, err := inst.Install(ctx, info, binary.InstallOptions{})
//
// # Architecture
//
//   - Installer: download, verify, extract, move into place
//   - Downloader: single-attempt HTTP download with optional progress bar
//   - Verifier: SHA256 and OpenPGP verification
//   - Extractor: tar.gz extraction
package binary
