package binary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verifier checks release archives against the release checksum file and,
// optionally, the checksum file against a detached OpenPGP signature.
type Verifier struct{}

// NewVerifier creates a new verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyChecksum checks that the SHA256 of archivePath matches the entry
// for assetName in a "<sha256>  <filename>" checksum file.
func (v *Verifier) VerifyChecksum(archivePath, checksumPath, assetName string) error {
	actual, err := calculateSHA256(archivePath)
	if err != nil {
		return fmt.Errorf("%w: calculate checksum: %w", ErrVerification, err)
	}

	expected, err := findChecksum(checksumPath, assetName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}

	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("%w: checksum mismatch for %s:\nactual:   %s\nexpected: %s",
			ErrVerification, assetName, actual, expected)
	}
	return nil
}

// VerifySignature checks a detached signature over the checksum file using
// the public key(s) at keyringPath. Armored and binary forms are accepted
// for both the signature and the keyring.
func (v *Verifier) VerifySignature(checksumPath, signaturePath, keyringPath string) error {
	keyring, err := loadKeyring(keyringPath)
	if err != nil {
		return fmt.Errorf("%w: load keyring: %w", ErrVerification, err)
	}

	signed, err := os.Open(checksumPath)
	if err != nil {
		return fmt.Errorf("%w: open checksums: %w", ErrVerification, err)
	}
	defer signed.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("%w: open signature: %w", ErrVerification, err)
	}
	defer sigFile.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(keyring, signed, sigFile, nil)
	if err != nil {
		if _, serr := signed.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("%w: %w", ErrVerification, serr)
		}
		if _, serr := sigFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("%w: %w", ErrVerification, serr)
		}
		_, err = openpgp.CheckDetachedSignature(keyring, signed, sigFile, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: verify signature: %w", ErrVerification, err)
	}
	return nil
}

// loadKeyring reads an armored or binary OpenPGP keyring.
func loadKeyring(path string) (openpgp.EntityList, error) {
	keyringFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		if _, serr := keyringFile.Seek(0, io.SeekStart); serr != nil {
			return nil, serr
		}
		keyring, err = openpgp.ReadKeyRing(keyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}
	return keyring, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum finds the checksum for a specific filename in a checksum file
// Format: "abc123def456  filename.tar.gz"
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		// sha256sum marks binary mode with a leading '*'
		name := strings.TrimPrefix(parts[1], "*")
		if name == filename || filepath.Base(name) == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}
	return "", fmt.Errorf("checksum not found for %s", filename)
}
