package binary

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupportedPlatform is returned for operating systems or architectures
// no release is built for.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// OS is the operating system family a release asset targets.
type OS string

const (
	OSMac     OS = "mac"
	OSLinux   OS = "linux"
	OSWindows OS = "windows"
)

// Arch is the cpu architecture a release asset targets.
type Arch string

const (
	ArchX86     Arch = "x86"
	ArchX8664   Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"
)

// Platform identifies the environment the language server has to run on.
type Platform struct {
	OS   OS
	Arch Arch
}

func (p Platform) String() string {
	return string(p.OS) + "/" + string(p.Arch)
}

// Executable returns the suffix executables carry on the platform.
func (p Platform) Executable() string {
	if p.OS == OSWindows {
		return ".exe"
	}
	return ""
}

// ParsePlatform maps os and architecture identifiers to a [Platform].
// Both go runtime values (darwin, amd64, arm64...) and the release naming
// values (mac, x86_64, aarch64...) are understood.
func ParsePlatform(os, arch string) (Platform, error) {
	var p Platform

	switch os {
	case "darwin", "macos", "mac":
		p.OS = OSMac
	case "linux":
		p.OS = OSLinux
	case "windows":
		p.OS = OSWindows
	default:
		return Platform{}, fmt.Errorf("%w: operating system %q", ErrUnsupportedPlatform, os)
	}

	switch arch {
	case "386", "x86", "i686":
		p.Arch = ArchX86
	case "amd64", "x86_64":
		p.Arch = ArchX8664
	case "arm64", "aarch64":
		p.Arch = ArchAarch64
	default:
		return Platform{}, fmt.Errorf("%w: architecture %q", ErrUnsupportedPlatform, arch)
	}

	return p, nil
}

// CurrentPlatform returns the platform this process runs on.
func CurrentPlatform() (Platform, error) {
	return ParsePlatform(runtime.GOOS, runtime.GOARCH)
}
