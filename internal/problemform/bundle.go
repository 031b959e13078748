package problemform

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/codecoach/client/types"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/wailsapp/mimetype"
)

var testcaseFilenamePattern = regexp.MustCompile(`^\d+\.(in|out)$`)

// maxTestcaseSize bounds a single .in or .out file.
const maxTestcaseSize = 16 << 20

// ReadBundle reads test cases from a tar archive, optionally compressed with
// gzip or zstd. Files are named N.in and N.out with N consecutive from 1;
// the cases are returned in that order.
func ReadBundle(data []byte) ([]types.TestCase, error) {
	if len(data) == 0 {
		return nil, errors.New("empty bundle data")
	}

	var r io.Reader
	mime := mimetype.Detect(data)
	switch {
	case mime.Is("application/gzip"):
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.New("invalid tar.gz bundle")
		}
		defer gr.Close()
		r = gr
	case mime.Is("application/zstd"):
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.New("invalid tar.zst bundle")
		}
		defer zr.Close()
		r = zr
	case mime.Is("application/x-tar"):
		r = bytes.NewReader(data)
	default:
		return nil, fmt.Errorf("unsupported bundle format %s", mime.String())
	}

	return readTestcases(tar.NewReader(r))
}

func readTestcases(tr *tar.Reader) ([]types.TestCase, error) {
	type pair struct {
		in, out   string
		hasIn     bool
		hasOutput bool
	}
	pairs := make(map[int]*pair)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.New("invalid tar bundle")
		}
		if header.FileInfo().IsDir() {
			continue
		}
		if !header.FileInfo().Mode().IsRegular() {
			return nil, errors.New("bundle contains unsupported entries")
		}
		if err := validateBundleFilename(header.Name); err != nil {
			return nil, err
		}
		if header.Size > maxTestcaseSize {
			return nil, fmt.Errorf("testcase %s exceeds %d bytes", header.Name, maxTestcaseSize)
		}

		base := path.Base(path.Clean(header.Name))
		order, ext, err := parseTestcaseFilename(base)
		if err != nil {
			return nil, err
		}

		content, err := io.ReadAll(io.LimitReader(tr, maxTestcaseSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read testcase: %w", err)
		}

		p := pairs[order]
		if p == nil {
			p = &pair{}
			pairs[order] = p
		}
		switch ext {
		case "in":
			if p.hasIn {
				return nil, fmt.Errorf("duplicate testcase input: %d.in", order)
			}
			p.in, p.hasIn = string(content), true
		case "out":
			if p.hasOutput {
				return nil, fmt.Errorf("duplicate testcase output: %d.out", order)
			}
			p.out, p.hasOutput = string(content), true
		}
	}

	if len(pairs) == 0 {
		return nil, errors.New("bundle has no testcases")
	}

	orders := make([]int, 0, len(pairs))
	for order, p := range pairs {
		if !p.hasIn || !p.hasOutput {
			return nil, fmt.Errorf("testcase %d must have both .in and .out files", order)
		}
		orders = append(orders, order)
	}
	sort.Ints(orders)

	cases := make([]types.TestCase, 0, len(orders))
	for i, order := range orders {
		if order != i+1 {
			return nil, errors.New("testcase numbers must be consecutive from 1")
		}
		p := pairs[order]
		cases = append(cases, types.TestCase{Input: p.in, ExpectedOutput: p.out})
	}
	return cases, nil
}

func parseTestcaseFilename(base string) (int, string, error) {
	ext := strings.TrimPrefix(path.Ext(base), ".")
	order, err := strconv.Atoi(strings.TrimSuffix(base, "."+ext))
	if err != nil || order < 1 {
		return 0, "", fmt.Errorf("invalid testcase filename: %s", base)
	}
	return order, ext, nil
}

func validateBundleFilename(name string) error {
	clean := path.Clean(name)
	if clean == "." {
		return errors.New("invalid testcase filename")
	}
	base := path.Base(clean)
	if base != clean {
		return errors.New("bundle must not contain directories")
	}
	if strings.Contains(base, `\`) {
		return errors.New("invalid testcase filename")
	}
	if !testcaseFilenamePattern.MatchString(base) {
		return fmt.Errorf("invalid testcase filename: %s", base)
	}
	return nil
}
