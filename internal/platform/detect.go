package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector for the running host.
type RealDetector struct {
	goos   string
	goarch string
}

// NewDetector creates a detector for the running host.
func NewDetector() Detector {
	return &RealDetector{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

// Detect returns the host OS and architecture from the Go runtime and fills
// the kernel architecture and distro fields from gopsutil.
//
// gopsutil failures are swallowed: the URL only depends on OS and Arch. A
// cancelled context is still reported.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   d.goos,
		Arch: normalizeArch(d.goarch),
	}

	stat, err := host.InfoWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	info.ArchRaw = normalizePlatform(stat.KernelArch)

	if info.OS == "linux" {
		platform := normalizePlatform(stat.Platform)
		if platform != "" {
			info.Platform = platform
			info.Family = mapFamily(stat.PlatformFamily)
			info.Version = normalizePlatform(stat.PlatformVersion)
		}
	}

	return info, nil
}

// StaticDetector returns a fixed Info. It backs the platform/arch input
// overrides and tests.
type StaticDetector struct {
	Info *Info
	Err  error
}

// NewStaticDetector returns a detector that reports os/arch as given.
// Aliases such as "win32" or "x86_64" are normalized.
func NewStaticDetector(goos, goarch string) Detector {
	return &StaticDetector{Info: &Info{OS: normalizeOS(goos), Arch: normalizeArch(goarch), ArchRaw: goarch}}
}

// Detect returns the configured Info.
func (s *StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Info == nil {
		return nil, fmt.Errorf("no platform info configured")
	}
	info := *s.Info
	return &info, nil
}

// Override wraps base so that non-empty goos/goarch replace the detected
// values. It returns base untouched when both are empty.
func Override(base Detector, goos, goarch string) Detector {
	if goos == "" && goarch == "" {
		return base
	}
	return &overrideDetector{base: base, goos: goos, goarch: goarch}
}

type overrideDetector struct {
	base   Detector
	goos   string
	goarch string
}

func (o *overrideDetector) Detect(ctx context.Context) (*Info, error) {
	info, err := o.base.Detect(ctx)
	if err != nil {
		return nil, err
	}
	if goos := normalizeOS(o.goos); goos != "" && goos != info.OS {
		info.OS = goos
		// distro data describes the real host, not the requested one
		info.Platform, info.Family, info.Version = "", "", ""
	}
	if o.goarch != "" {
		info.Arch = normalizeArch(o.goarch)
	}
	return info, nil
}
