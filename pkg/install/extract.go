package install

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/gabriel-vasile/mimetype"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/krolaw/zipstream"
	"github.com/sirupsen/logrus"
	"github.com/xi2/xz"
)

var (
	errCorrupt = errors.New("corrupt artifact")

	executableMimetypes = []string{
		"application/x-mach-binary",
		"application/x-executable",
		"application/x-elf",
		"application/x-sharedlib",
		"application/vnd.microsoft.portable-executable",
	}
)

// extractor unpacks a downloaded artifact into a build directory
type extractor struct {
	ctx context.Context
	src string
	dst string

	// single is where an artifact that is not an archive is written, relative to dst
	single string

	files int
}

func newExtractor(ctx context.Context, src, dst, single string) *extractor {
	return &extractor{ctx: ctx, src: src, dst: dst, single: single}
}

func (e *extractor) Extract() error {
	if err := os.MkdirAll(e.dst, 0755); err != nil {
		return err
	}

	in, err := os.Open(e.src)
	if err != nil {
		return err
	}
	defer in.Close()

	logrus.Debugf("extracting %s into %s", e.src, e.dst)

	if err := e.doExtract(in); err != nil {
		return err
	}

	if e.files == 0 {
		return fmt.Errorf("%w: archive is empty", errCorrupt)
	}

	return nil
}

func (e *extractor) doExtract(in io.Reader) error {
	var buf bytes.Buffer
	tee := io.TeeReader(in, &buf)

	t, err := filetype.MatchReader(tee)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	r := io.MultiReader(&buf, in)

	logrus.Debugf("extracting file type: %s", t.Extension)

	switch t {
	case matchers.TypeTar:
		return e.processTar(r)
	case matchers.TypeZip:
		return e.processZip(r)
	case matchers.Type7z:
		return e.process7z()
	case matchers.TypeGz:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("%w: %w", errCorrupt, err)
		}
		defer gr.Close()
		return e.doExtract(gr)
	case matchers.TypeXz:
		xr, err := xz.NewReader(r, 0)
		if err != nil {
			return fmt.Errorf("%w: %w", errCorrupt, err)
		}
		return e.doExtract(xr)
	case matchers.TypeBz2:
		return e.doExtract(bzip2.NewReader(r))
	}

	return e.processDirect(r)
}

// processDirect writes an artifact that is not an archive as the game executable
func (e *extractor) processDirect(in io.Reader) error {
	logrus.Trace("processing direct file")

	target := filepath.Join(e.dst, filepath.FromSlash(e.single))
	if err := e.writeFile(target, in, 0755); err != nil {
		return err
	}

	if e.files == 1 {
		if fi, err := os.Stat(target); err == nil && fi.Size() == 0 {
			return fmt.Errorf("%w: artifact is empty", errCorrupt)
		}
	}

	return nil
}

func (e *extractor) processTar(in io.Reader) error {
	logrus.Trace("processing tar file")
	tr := tar.NewReader(in)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("%w: %w", errCorrupt, err)
		}

		if err := e.ctx.Err(); err != nil {
			return err
		}

		target, err := sanitizeArchivePath(e.dst, header.Name)
		if err != nil {
			return err
		}

		logrus.Tracef("tar > target %s", target)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			mode, err := int64ToUint32(header.Mode)
			if err != nil {
				return err
			}
			if err := e.writeFile(target, tr, os.FileMode(mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := e.symlink(header.Linkname, target); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := sanitizeArchivePath(e.dst, header.Linkname)
			if err != nil {
				return err
			}
			if err := os.Link(source, target); err != nil {
				return err
			}
		default:
			logrus.Tracef("tar > skipping %s (type %c)", header.Name, header.Typeflag)
		}
	}

	return nil
}

func (e *extractor) processZip(in io.Reader) error {
	logrus.Trace("processing zip file")
	zr := zipstream.NewReader(in)

	for {
		header, err := zr.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("%w: %w", errCorrupt, err)
		}

		if err := e.ctx.Err(); err != nil {
			return err
		}

		target, err := sanitizeArchivePath(e.dst, header.Name)
		if err != nil {
			return err
		}

		logrus.Tracef("zip > target %s", target)

		mode := header.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case mode&fs.ModeSymlink != 0:
			link, err := io.ReadAll(io.LimitReader(zr, 4096))
			if err != nil {
				return fmt.Errorf("%w: %w", errCorrupt, err)
			}
			if err := e.symlink(string(link), target); err != nil {
				return err
			}
		default:
			perm := mode.Perm()
			if perm == 0 {
				perm = 0644
			}
			if err := e.writeFile(target, zr, perm); err != nil {
				return err
			}
		}
	}

	return nil
}

// process7z reads the artifact from disk, 7z archives cannot be streamed
func (e *extractor) process7z() error {
	logrus.Trace("processing 7z file")

	r, err := sevenzip.OpenReader(e.src)
	if err != nil {
		return fmt.Errorf("%w: %w", errCorrupt, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := e.ctx.Err(); err != nil {
			return err
		}

		target, err := sanitizeArchivePath(e.dst, f.Name)
		if err != nil {
			return err
		}

		logrus.Tracef("7z > target %s", target)

		info := f.FileInfo()
		if info.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%w: %w", errCorrupt, err)
		}

		perm := info.Mode().Perm()
		if perm == 0 {
			perm = 0644
		}

		err = e.writeFile(target, rc, perm)
		rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *extractor) writeFile(target string, in io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	if fi, err := os.Lstat(target); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		return fmt.Errorf("%w: %s would be written through a link", errCorrupt, target)
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, &ctxReader{ctx: e.ctx, r: in}); err != nil {
		_ = f.Close()
		if e.ctx.Err() != nil || isDiskError(err) {
			return err
		}
		return fmt.Errorf("%w: %w", errCorrupt, err)
	}

	// close each file as it is written rather than deferring until the whole archive is done
	if err := f.Close(); err != nil {
		return err
	}

	e.files++

	return nil
}

// symlink creates a link that must resolve inside the build directory. The link target is walked
// one component at a time and may not pass through another link, so chained links cannot reach
// outside dst.
func (e *extractor) symlink(linkname, target string) error {
	if filepath.IsAbs(linkname) || path.IsAbs(linkname) {
		return fmt.Errorf("%w: absolute symlink %s", errCorrupt, linkname)
	}

	if err := e.resolveLink(filepath.Dir(target), linkname); err != nil {
		return fmt.Errorf("%w: symlink %s: %w", errCorrupt, linkname, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	return os.Symlink(linkname, target)
}

func (e *extractor) resolveLink(dir, linkname string) error {
	parts := strings.Split(filepath.ToSlash(linkname), "/")

	cur := dir
	for i, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
		default:
			cur = filepath.Join(cur, part)
		}

		if err := ensureWithinRoot(e.dst, cur); err != nil {
			return err
		}

		if i == len(parts)-1 {
			break
		}

		if fi, err := os.Lstat(cur); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("passes through link %s", cur)
		}
	}

	return nil
}

// findExecutable returns the path, relative to root, of the file matching want. Archives often
// wrap their contents in a top-level directory so the shallowest match wins. When nothing
// matches, the only executable in the tree is used.
func findExecutable(root, want string) (string, error) {
	want = strings.TrimPrefix(path.Clean(filepath.ToSlash(want)), "/")

	var matches, executables []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if strings.EqualFold(rel, want) || strings.HasSuffix(strings.ToLower(rel), "/"+strings.ToLower(want)) {
			matches = append(matches, rel)
			return nil
		}

		m, err := mimetype.DetectFile(p)
		if err != nil {
			logrus.WithError(err).Warn("unable to determine mimetype")
			return nil
		}

		if slices.Contains(executableMimetypes, m.String()) {
			logrus.Debugf("found executable: %s, %s", rel, m.String())
			executables = append(executables, rel)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	if len(matches) > 0 {
		slices.SortFunc(matches, func(a, b string) int {
			if d := strings.Count(a, "/") - strings.Count(b, "/"); d != 0 {
				return d
			}
			return strings.Compare(a, b)
		})
		return matches[0], nil
	}

	if len(executables) == 1 {
		return executables[0], nil
	}

	return "", fmt.Errorf("%w: executable %s not found (%d candidates)", errCorrupt, want, len(executables))
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

func isDiskError(err error) bool {
	var pe *fs.PathError
	return errors.As(err, &pe)
}

func int64ToUint32(value int64) (uint32, error) {
	if value < 0 || value > math.MaxUint32 {
		return 0, errors.New("value out of range for uint32")
	}
	return uint32(value), nil
}

// sanitizeArchivePath joins an archive entry name onto the build directory, refusing names that
// escape it or whose parent directories include a link
func sanitizeArchivePath(d, t string) (string, error) {
	v := filepath.Join(d, filepath.FromSlash(t))
	if err := ensureWithinRoot(d, v); err != nil {
		return "", fmt.Errorf("%w: %w", errCorrupt, err)
	}
	if err := ensureNoLinkedParents(d, v); err != nil {
		return "", fmt.Errorf("%w: %w", errCorrupt, err)
	}
	return v, nil
}

// ensureNoLinkedParents walks from root down to the parent of target, failing on the first
// component that is a symlink
func ensureNoLinkedParents(root, target string) error {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Dir(filepath.Clean(target)))
	if err != nil || rel == "." {
		return err
	}

	cur := filepath.Clean(root)
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		cur = filepath.Join(cur, part)

		fi, err := os.Lstat(cur)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		} else if err != nil {
			return err
		}

		if fi.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("illegal path %s: parent %s is a link", target, cur)
		}
	}

	return nil
}

func ensureWithinRoot(root, target string) error {
	root = filepath.Clean(root)
	target = filepath.Clean(target)
	if target == root {
		return nil
	}
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return fmt.Errorf("illegal path %s", target)
	}
	return nil
}
