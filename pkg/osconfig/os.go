package osconfig

import (
	"regexp"
	"slices"
	"sort"
)

const (
	Windows = "windows"
	Linux   = "linux"
	Darwin  = "darwin"

	AMD64     = "amd64"
	ARM64     = "arm64"
	I386      = "386"
	ARM       = "arm"
	Universal = "universal"
)

// Format is the packaging of a downloadable artifact
type Format string

const (
	FormatZip      Format = "zip"
	FormatTar      Format = "tar"
	FormatTarGz    Format = "tar.gz"
	FormatTarXz    Format = "tar.xz"
	FormatTarBz2   Format = "tar.bz2"
	Format7z       Format = "7z"
	FormatAppImage Format = "appimage"
	FormatExe      Format = "exe"
	FormatBinary   Format = "binary"
)

// SelfContained reports whether the artifact runs as downloaded, without extraction
func (f Format) SelfContained() bool {
	return f == FormatAppImage || f == FormatExe || f == FormatBinary
}

// Formats is every packaging format the installer can unpack
var Formats = []Format{
	FormatZip, FormatTar, FormatTarGz, FormatTarXz, FormatTarBz2, Format7z,
	FormatAppImage, FormatExe, FormatBinary,
}

// osTokens maps the words used in asset names onto an operating system family
var osTokens = map[string]string{
	"windows": Windows,
	"win":     Windows,
	"win32":   Windows,
	"win64":   Windows,
	"linux":   Linux,
	"darwin":  Darwin,
	"macos":   Darwin,
	"mac":     Darwin,
	"osx":     Darwin,
}

// archTokens maps the words used in asset names onto a canonical architecture. Names such as
// x86_64 are normalized to x64 by the asset parser before lookup, so x86 here is 32-bit.
var archTokens = map[string]string{
	"amd64":      AMD64,
	"x64":        AMD64,
	"win64":      AMD64,
	"386":        I386,
	"x86":        I386,
	"i386":       I386,
	"i686":       I386,
	"win32":      I386,
	"arm64":      ARM64,
	"aarch64":    ARM64,
	"armv8":      ARM64,
	"arm":        ARM,
	"armv7":      ARM,
	"armv7l":     ARM,
	"armhf":      ARM,
	"universal":  Universal,
	"universal2": Universal,
}

// LookupOS returns the operating system family a name token refers to
func LookupOS(token string) (string, bool) {
	v, ok := osTokens[token]
	return v, ok
}

// foreignArch matches architectures builds are published for that no supported platform runs.
// They are still recognised so such builds never pass as generic ones.
var foreignArch = regexp.MustCompile(`^(riscv(32|64)?|ppc(64)?(le)?|s390x?|mips(64)?(el|le)?|loong(arch)?64|sparc(64)?|ia64|wasm(32)?|armel|armv[0-9]+[a-z]*)$`)

// LookupArch returns the canonical architecture a name token refers to. Foreign architectures are
// returned as written.
func LookupArch(token string) (string, bool) {
	if v, ok := archTokens[token]; ok {
		return v, true
	}

	if foreignArch.MatchString(token) {
		return token, true
	}

	return "", false
}

// OS describes the machine builds are selected for
type OS struct {
	Name       string
	Arch       string
	Compatible []string
	Formats    []Format
}

// Match is the outcome of matching an asset's platform tags against an OS
type Match struct {
	Applicable bool
	ExactArch  bool
}

type Option func(*settings)

type settings struct {
	compat32 bool
	formats  []Format
}

// WithCompat32 admits 32-bit builds on the matching 64-bit architecture
func WithCompat32(allow bool) Option {
	return func(s *settings) {
		s.compat32 = allow
	}
}

// WithFormats restricts the packaging formats that can be unpacked
func WithFormats(formats ...Format) Option {
	return func(s *settings) {
		s.formats = formats
	}
}

func New(os, arch string, opts ...Option) *OS {
	s := &settings{formats: Formats}
	for _, opt := range opts {
		opt(s)
	}

	newOS := &OS{
		Name:       os,
		Arch:       arch,
		Compatible: []string{},
		Formats:    []Format{},
	}

	if os == Darwin {
		newOS.Compatible = append(newOS.Compatible, Universal)
	}

	if s.compat32 {
		switch arch {
		case AMD64:
			newOS.Compatible = append(newOS.Compatible, I386)
		case ARM64:
			newOS.Compatible = append(newOS.Compatible, ARM)
		}
	}

	// nothing can be installed on an OS family we do not know
	if os != Windows && os != Linux && os != Darwin {
		return newOS
	}

	for _, f := range s.formats {
		switch {
		case f == FormatExe && os != Windows:
			continue
		case f == FormatAppImage && os != Linux:
			continue
		case f == FormatBinary && os == Windows:
			continue
		}
		newOS.Formats = append(newOS.Formats, f)
	}

	return newOS
}

// GetOS returns the OS name followed by every alias an asset may use for it
func (o *OS) GetOS() []string {
	names := []string{o.Name}
	var aliases []string
	for token, name := range osTokens {
		if name == o.Name && token != o.Name {
			aliases = append(aliases, token)
		}
	}
	sort.Strings(aliases)

	return append(names, aliases...)
}

// GetArchitectures returns the native architecture followed by the compatible ones
func (o *OS) GetArchitectures() []string {
	return append([]string{o.Arch}, o.Compatible...)
}

func (o *OS) Supports(f Format) bool {
	return slices.Contains(o.Formats, f)
}

// Match decides whether an artifact tagged with os, arch and format can be installed and run here.
// An empty os is an unknown tag and never matches. An empty arch is a generic tag and matches
// any architecture of the right OS, but never as an exact match.
func (o *OS) Match(os, arch string, format Format) Match {
	if os == "" || os != o.Name {
		return Match{}
	}

	if !o.Supports(format) {
		return Match{}
	}

	switch {
	case arch == "":
		return Match{Applicable: true}
	case arch == o.Arch:
		return Match{Applicable: true, ExactArch: true}
	case slices.Contains(o.Compatible, arch):
		return Match{Applicable: true}
	}

	return Match{}
}
