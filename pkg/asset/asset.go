package asset

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/sirupsen/logrus"

	"github.com/intelorca/openlauncher/pkg/osconfig"
)

var (
	msiType      = filetype.AddType("msi", "application/octet-stream")
	apkType      = filetype.AddType("apk", "application/vnd.android.package-archive")
	dmgType      = filetype.AddType("dmg", "application/x-apple-diskimage")
	pkgType      = filetype.AddType("pkg", "application/octet-stream")
	ascType      = filetype.AddType("asc", "text/plain")
	pemType      = filetype.AddType("pem", "application/x-pem-file")
	certType     = filetype.AddType("cert", "application/x-x509-ca-cert")
	crtType      = filetype.AddType("crt", "application/x-x509-ca-cert")
	sigType      = filetype.AddType("sig", "text/plain")
	pubType      = filetype.AddType("pub", "text/plain")
	pdbType      = filetype.AddType("pdb", "application/octet-stream")
	tarGzType    = filetype.AddType("tgz", "application/tar+gzip")
	appImageType = filetype.AddType("appimage", "application/vnd.appimage")

	installerTokens = []string{"installer", "setup"}
	symbolsTokens   = []string{"symbols", "pdb", "debug", "dbgsym"}

	// applied before tokenizing, these spellings would otherwise split into misleading tokens
	archSpellings = strings.NewReplacer(
		"x86_64", "x64",
		"x86-64", "x64",
		"64-bit", "x64",
		"64bit", "x64",
		"32-bit", "x86",
		"32bit", "x86",
	)
)

// Type is the type of asset
type Type int

func (t Type) String() string {
	return [...]string{"unknown", "archive", "binary", "installer", "checksum", "signature", "key", "symbols"}[t]
}

const (
	Unknown Type = iota
	Archive
	Binary
	Installer
	Checksum
	Signature
	Key
	Symbols
)

// Asset is one downloadable artifact of a build. The platform tags are derived from the name
// when the asset is created and never change afterwards.
type Asset struct {
	Name   string
	URI    string
	Size   int64
	Type   Type
	OS     string
	Arch   string
	Format osconfig.Format

	malformed bool
	tags      int
}

// New creates a new asset, parsing its platform tags from the file name
func New(name, uri string, size int64) *Asset {
	a := &Asset{
		Name: name,
		URI:  uri,
		Size: size,
	}

	a.Format = DetectFormat(name)
	a.Type = a.Classify(name)
	a.parseTags(name)

	return a
}

func (a *Asset) GetName() string {
	return a.Name
}

func (a *Asset) GetType() Type {
	return a.Type
}

// Malformed reports whether the name carries conflicting platform tags
func (a *Asset) Malformed() bool {
	return a.malformed
}

// Specificity is the number of platform tags recognised in the name, "windows-x64" scores
// higher than "windows"
func (a *Asset) Specificity() int {
	return a.tags
}

// Installable reports whether the asset is something the game can be installed from
func (a *Asset) Installable() bool {
	return a.Type == Archive || a.Type == Binary
}

// Match runs the asset through the platform matcher. Assets that are malformed or not
// installable never match.
func (a *Asset) Match(p *osconfig.OS) osconfig.Match {
	if a.malformed || !a.Installable() {
		return osconfig.Match{}
	}

	return p.Match(a.OS, a.Arch, a.Format)
}

func (a *Asset) IsApplicableForCurrentPlatform(p *osconfig.OS) bool {
	return a.Match(p).Applicable
}

// DetectFormat determines the packaging of an artifact from its file name
func DetectFormat(name string) osconfig.Format {
	lower := strings.ToLower(name)

	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return osconfig.FormatTarGz
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return osconfig.FormatTarXz
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"):
		return osconfig.FormatTarBz2
	case strings.HasSuffix(lower, ".tar"):
		return osconfig.FormatTar
	case strings.HasSuffix(lower, ".zip"):
		return osconfig.FormatZip
	case strings.HasSuffix(lower, ".7z"):
		return osconfig.Format7z
	case strings.HasSuffix(lower, ".appimage"):
		return osconfig.FormatAppImage
	case strings.HasSuffix(lower, ".exe"):
		return osconfig.FormatExe
	}

	if !isExtension(filepath.Ext(lower)) {
		return osconfig.FormatBinary
	}

	return ""
}

// Classify determines the type of asset based on the file extension and name
func (a *Asset) Classify(name string) Type { //nolint:gocyclo
	aType := Unknown

	if ext := strings.TrimPrefix(filepath.Ext(name), "."); isExtension("." + ext) {
		switch filetype.GetType(strings.ToLower(ext)) {
		case matchers.TypeDeb, matchers.TypeRpm, msiType, apkType, dmgType, pkgType:
			aType = Installer
		case matchers.TypeGz, matchers.TypeZip, matchers.TypeXz, matchers.TypeTar, matchers.TypeBz2,
			matchers.Type7z, tarGzType:
			aType = Archive
		case matchers.TypeExe, appImageType:
			aType = Binary
		case sigType, ascType:
			aType = Signature
		case pemType, pubType, certType, crtType:
			aType = Key
		case pdbType:
			aType = Symbols
		}
	}

	lower := strings.ToLower(name)

	if aType == Unknown {
		logrus.Tracef("classifying asset based on name: %s", name)
		if strings.HasSuffix(lower, ".sha256") || strings.HasSuffix(lower, ".sha512") ||
			strings.HasSuffix(lower, ".md5") || strings.HasSuffix(lower, ".sha1") {
			aType = Checksum
		} else if strings.Contains(lower, "checksums") || strings.Contains(lower, "sums") {
			aType = Checksum
		}
	}

	if aType == Unknown && DetectFormat(name) == osconfig.FormatBinary {
		aType = Binary
	}

	if aType == Archive || aType == Binary {
		tokens := tokenize(name)
		if containsAny(tokens, installerTokens) {
			aType = Installer
		} else if containsAny(tokens, symbolsTokens) {
			aType = Symbols
		}
	}

	logrus.Tracef("classified: %s - %s (type: %d)", name, aType, aType)

	return aType
}

func (a *Asset) parseTags(name string) {
	var osTagged, archTagged bool

	for _, token := range tokenize(name) {
		if v, ok := osconfig.LookupOS(token); ok {
			if a.OS != "" && a.OS != v {
				a.malformed = true
			}
			a.OS = v
			osTagged = true
		}

		if v, ok := osconfig.LookupArch(token); ok {
			if a.Arch != "" && a.Arch != v {
				a.malformed = true
			}
			a.Arch = v
			archTagged = true
		}
	}

	if osTagged {
		a.tags++
	}
	if archTagged {
		a.tags++
	}

	if a.malformed {
		logrus.Debugf("asset has conflicting platform tags: %s", name)
	}
}

func tokenize(name string) []string {
	lower := archSpellings.Replace(strings.ToLower(name))

	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// isExtension reports whether ext looks like a real file extension rather than the tail of a
// dotted version number or platform suffix, e.g. ".5-linux-x64"
func isExtension(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || len(ext) > 8 {
		return false
	}

	hasLetter := false
	for _, r := range ext {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}

	return hasLetter
}

func containsAny(tokens, words []string) bool {
	for _, t := range tokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}

	return false
}
