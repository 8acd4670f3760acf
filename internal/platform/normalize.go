package platform

import (
	"strings"
)

// familyMap maps gopsutil family strings to canonical family names.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
}

// normalizeArch maps kernel machine names onto GOARCH spelling.
// Unknown values are returned lowercased so the URL builder can reject them.
func normalizeArch(arch string) string {
	switch a := strings.ToLower(strings.TrimSpace(arch)); a {
	case "amd64", "x86_64", "x64":
		return "amd64"
	case "386", "i386", "i686", "x86", "ia32", "x32":
		return "386"
	case "arm64", "aarch64":
		return "arm64"
	default:
		return a
	}
}

// normalizeOS maps runner-style OS names onto GOOS spelling.
func normalizeOS(goos string) string {
	switch o := strings.ToLower(strings.TrimSpace(goos)); o {
	case "win32", "win", "windows":
		return "windows"
	case "macos", "osx":
		return "darwin"
	default:
		return o
	}
}

// normalizePlatform lowercases and trims platform IDs.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	if canonical, ok := familyMap[normalizePlatform(family)]; ok {
		return canonical
	}
	return FamilyUnknown
}
