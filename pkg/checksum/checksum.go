package checksum

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	_ "crypto/sha256"
	_ "crypto/sha512"

	"github.com/opencontainers/go-digest"
)

var (
	ErrNotFound    = errors.New("file not listed in checksum file")
	ErrUnsupported = errors.New("unsupported checksum algorithm")
	ErrMismatch    = errors.New("checksum mismatch")

	// SHA256 (file.tar.gz) = abcdef...
	bsdLine = regexp.MustCompile(`^(?i)(sha256|sha512) \((.+)\) = ([0-9a-f]+)$`)
)

// ComputeFileDigest hashes a file with the given algorithm
func ComputeFileDigest(filePath string, alg digest.Algorithm) (digest.Digest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return alg.FromReader(file)
}

// Algorithm infers the digest algorithm from the length of a hex encoded hash
func Algorithm(hex string) (digest.Algorithm, error) {
	switch len(hex) {
	case 64:
		return digest.SHA256, nil
	case 128:
		return digest.SHA512, nil
	}

	return "", fmt.Errorf("%w: %d hex characters", ErrUnsupported, len(hex))
}

// Parse finds the digest of fileName in a checksum file. Both the coreutils format
// ("<hash>  <name>", with an optional "*" before binary names) and the BSD format
// ("SHA256 (<name>) = <hash>") are understood. A file holding a single bare hash applies to
// whatever file it was published for.
func Parse(r io.Reader, fileName string) (digest.Digest, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	if len(lines) == 1 && len(strings.Fields(lines[0])) == 1 {
		return parseHex(lines[0])
	}

	for _, line := range lines {
		if m := bsdLine.FindStringSubmatch(line); m != nil {
			if matchesName(m[2], fileName) {
				return parseHex(m[3])
			}
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		if matchesName(strings.TrimPrefix(parts[1], "*"), fileName) {
			return parseHex(parts[0])
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, fileName)
}

// Verify checks the contents of a file against an expected digest
func Verify(filePath string, expected digest.Digest) error {
	if err := expected.Validate(); err != nil {
		return err
	}

	actual, err := ComputeFileDigest(filePath, expected.Algorithm())
	if err != nil {
		return err
	}

	if actual != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrMismatch, expected, actual)
	}

	return nil
}

func parseHex(hex string) (digest.Digest, error) {
	hex = strings.ToLower(hex)

	alg, err := Algorithm(hex)
	if err != nil {
		return "", err
	}

	d := digest.NewDigestFromEncoded(alg, hex)
	if err := d.Validate(); err != nil {
		return "", err
	}

	return d, nil
}

// matchesName compares names ignoring any directory the checksum file lists them under
func matchesName(listed, fileName string) bool {
	return listed == fileName || path.Base(strings.TrimPrefix(listed, "./")) == fileName
}
