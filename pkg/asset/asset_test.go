package asset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/intelorca/openlauncher/pkg/osconfig"
)

func TestAsset(t *testing.T) {
	cases := []struct {
		name        string
		expectType  Type
		expectOS    string
		expectArch  string
		format      osconfig.Format
		specificity int
	}{
		{"OpenRCT2-0.4.5-windows-portable-x64.zip", Archive, osconfig.Windows, osconfig.AMD64, osconfig.FormatZip, 2},
		{"OpenRCT2-0.4.5-windows-portable-win32.zip", Archive, osconfig.Windows, osconfig.I386, osconfig.FormatZip, 2},
		{"OpenRCT2-0.4.5-linux-x86_64.AppImage", Binary, osconfig.Linux, osconfig.AMD64, osconfig.FormatAppImage, 2},
		{"OpenRCT2-0.4.5-linux-jammy-x86_64.tar.gz", Archive, osconfig.Linux, osconfig.AMD64, osconfig.FormatTarGz, 2},
		{"OpenRCT2-0.4.5-macos-universal.zip", Archive, osconfig.Darwin, osconfig.Universal, osconfig.FormatZip, 2},
		{"openloco-v24.01-windows.7z", Archive, osconfig.Windows, "", osconfig.Format7z, 1},
		{"game-linux-aarch64.tar.xz", Archive, osconfig.Linux, osconfig.ARM64, osconfig.FormatTarXz, 2},
		{"game-linux-64-bit.tar.bz2", Archive, osconfig.Linux, osconfig.AMD64, osconfig.FormatTarBz2, 2},
		{"game-0.1.2-linux-x64", Binary, osconfig.Linux, osconfig.AMD64, osconfig.FormatBinary, 2},
		{"win-x64.zip", Archive, osconfig.Windows, osconfig.AMD64, osconfig.FormatZip, 2},
		{"linux-x64.tar", Archive, osconfig.Linux, osconfig.AMD64, osconfig.FormatTar, 2},
		{"source.tar.gz", Archive, "", "", osconfig.FormatTarGz, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := New(c.name, "https://example.com/"+c.name, 1024)

			assert.Equal(t, c.name, a.GetName())
			assert.Equal(t, c.expectType, a.GetType())
			assert.Equal(t, c.expectOS, a.OS)
			assert.Equal(t, c.expectArch, a.Arch)
			assert.Equal(t, c.format, a.Format)
			assert.Equal(t, c.specificity, a.Specificity())
			assert.False(t, a.Malformed())
		})
	}
}

func TestAssetTypes(t *testing.T) {
	cases := []struct {
		name     string
		fileType Type
	}{
		{
			name:     "dist-linux-amd64.deb",
			fileType: Installer,
		},
		{
			name:     "dist-linux-amd64.rpm",
			fileType: Installer,
		},
		{
			name:     "dist-windows.msi",
			fileType: Installer,
		},
		{
			name:     "OpenRCT2-0.4.5-macos.dmg",
			fileType: Installer,
		},
		{
			name:     "OpenRCT2-0.4.5-windows-installer-x64.exe",
			fileType: Installer,
		},
		{
			name:     "OpenRCT2-0.4.5-windows-symbols-x64.zip",
			fileType: Symbols,
		},
		{
			name:     "openrct2.pdb",
			fileType: Symbols,
		},
		{
			name:     "dist-linux-amd64.tar.gz",
			fileType: Archive,
		},
		{
			name:     "dist-windows-amd64.exe",
			fileType: Binary,
		},
		{
			name:     "dist-linux-amd64",
			fileType: Binary,
		},
		{
			name:     "dist-linux-amd64.tar.gz.sig",
			fileType: Signature,
		},
		{
			name:     "dist-linux-amd64.tar.gz.asc",
			fileType: Signature,
		},
		{
			name:     "dist-linux-amd64.tar.gz.pem",
			fileType: Key,
		},
		{
			name:     "checksums.txt",
			fileType: Checksum,
		},
		{
			name:     "SHA256SUMS",
			fileType: Checksum,
		},
		{
			name:     "dist-linux-amd64.tar.gz.sha256",
			fileType: Checksum,
		},
		{
			name:     "dist-linux-amd64.json",
			fileType: Unknown,
		},
	}

	for _, c := range cases {
		a := New(c.name, "", 0)
		assert.Equal(t, c.fileType, a.GetType(), fmt.Sprintf("expected type to be %s, got %s for %s", c.fileType, a.GetType(), c.name))
	}
}

func TestAssetMalformed(t *testing.T) {
	cases := []string{
		"game-windows-linux-x64.zip",
		"game-linux-x64-arm64.tar.gz",
		"game-win32-x64.zip",
	}

	p := osconfig.New(osconfig.Linux, osconfig.AMD64)
	w := osconfig.New(osconfig.Windows, osconfig.AMD64, osconfig.WithCompat32(true))

	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			a := New(name, "", 0)
			assert.True(t, a.Malformed())
			assert.False(t, a.IsApplicableForCurrentPlatform(p))
			assert.False(t, a.IsApplicableForCurrentPlatform(w))
		})
	}
}

func TestAssetApplicable(t *testing.T) {
	windows := osconfig.New(osconfig.Windows, osconfig.AMD64)
	linux := osconfig.New(osconfig.Linux, osconfig.AMD64)

	cases := []struct {
		name    string
		windows bool
		linux   bool
	}{
		{"OpenRCT2-0.4.5-windows-portable-x64.zip", true, false},
		{"OpenRCT2-0.4.5-windows-installer-x64.exe", false, false},
		{"OpenRCT2-0.4.5-windows-symbols-x64.zip", false, false},
		{"OpenRCT2-0.4.5-windows-portable-win32.zip", false, false},
		{"OpenRCT2-0.4.5-linux-x86_64.AppImage", false, true},
		{"OpenRCT2-0.4.5-linux-arm64.AppImage", false, false},
		{"openloco-windows.7z", true, false},
		{"game-linux-x64.deb", false, false},
		{"game-linux-x64.tar.gz.sha256", false, false},
		{"source.tar.gz", false, false},
		{"game-linux-x64.weird", false, false},
		{"", false, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := New(c.name, "", 0)
			assert.Equal(t, c.windows, a.IsApplicableForCurrentPlatform(windows))
			assert.Equal(t, c.linux, a.IsApplicableForCurrentPlatform(linux))
		})
	}
}

func TestAssetForeignArch(t *testing.T) {
	platforms := []*osconfig.OS{
		osconfig.New(osconfig.Linux, osconfig.AMD64, osconfig.WithCompat32(true)),
		osconfig.New(osconfig.Linux, osconfig.ARM64, osconfig.WithCompat32(true)),
		osconfig.New(osconfig.Windows, osconfig.AMD64, osconfig.WithCompat32(true)),
	}

	cases := []struct {
		name string
		arch string
	}{
		{"game-linux-riscv64.tar.gz", "riscv64"},
		{"game-linux-ppc64le.tar.gz", "ppc64le"},
		{"game-linux-s390x.tar.gz", "s390x"},
		{"game-linux-mips64el.tar.xz", "mips64el"},
		{"game-linux-loong64.tar.gz", "loong64"},
		{"game-linux-armv6l.tar.gz", "armv6l"},
		{"game-windows-riscv64.zip", "riscv64"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := New(c.name, "", 0)
			assert.Equal(t, c.arch, a.Arch)
			assert.False(t, a.Malformed())
			for _, p := range platforms {
				assert.False(t, a.IsApplicableForCurrentPlatform(p), "%s/%s", p.Name, p.Arch)
			}
		})
	}

	assert.True(t, New("game-linux-riscv64-x64.tar.gz", "", 0).Malformed())

	armv7l := New("game-linux-armv7l.tar.gz", "", 0)
	assert.Equal(t, osconfig.ARM, armv7l.Arch)
	assert.True(t, armv7l.IsApplicableForCurrentPlatform(osconfig.New(osconfig.Linux, osconfig.ARM64, osconfig.WithCompat32(true))))
}

func TestAssetMatchExactness(t *testing.T) {
	p := osconfig.New(osconfig.Windows, osconfig.AMD64, osconfig.WithCompat32(true))

	assert.Equal(t, osconfig.Match{Applicable: true, ExactArch: true}, New("g-windows-x64.zip", "", 0).Match(p))
	assert.Equal(t, osconfig.Match{Applicable: true}, New("g-windows-x86.zip", "", 0).Match(p))
	assert.Equal(t, osconfig.Match{Applicable: true}, New("g-windows.zip", "", 0).Match(p))
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]osconfig.Format{
		"a.tar.gz":     osconfig.FormatTarGz,
		"a.TGZ":        osconfig.FormatTarGz,
		"a.tar.xz":     osconfig.FormatTarXz,
		"a.tar.bz2":    osconfig.FormatTarBz2,
		"a.tar":        osconfig.FormatTar,
		"a.zip":        osconfig.FormatZip,
		"a.7z":         osconfig.Format7z,
		"a.AppImage":   osconfig.FormatAppImage,
		"a.exe":        osconfig.FormatExe,
		"a":            osconfig.FormatBinary,
		"a-1.2.3-x64":  osconfig.FormatBinary,
		"a.deb":        "",
		"a.sha256":     "",
		"a-1.2.3.json": "",
	}

	for name, expected := range cases {
		assert.Equal(t, expected, DetectFormat(name), name)
	}
}
