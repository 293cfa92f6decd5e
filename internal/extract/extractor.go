// Package extract recovers product records from legacy SQL dumps.
//
// The dump is read line by line. Lines whose trimmed text starts with "('"
// are value-tuple candidates; everything else is ignored. A candidate that
// does not match the seven-field prefix, or whose prices are not decimal
// numbers, is skipped without failing the run.
package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/prodmig/internal/encoding"
	"github.com/vvka-141/prodmig/internal/files/filesystem"
	"github.com/vvka-141/prodmig/pkg/prodmig"
)

const (
	initialLineBuffer = 64 * 1024
	maxLineLength     = 16 * 1024 * 1024

	// how often the scan loop checks for cancellation
	cancelCheckInterval = 4096

	byteOrderMark = "\uFEFF"
)

// Extractor reads a dump under a prioritized list of candidate encodings.
type Extractor struct {
	fs         filesystem.FileSystemProvider
	candidates []encoding.Candidate
	logger     prodmig.Logger
}

// New creates an Extractor. candidates are tried in order.
func New(fs filesystem.FileSystemProvider, candidates []encoding.Candidate, logger prodmig.Logger) *Extractor {
	return &Extractor{
		fs:         fs,
		candidates: candidates,
		logger:     logger,
	}
}

// Extract returns the records of the file at path in file order, duplicates included.
func (e *Extractor) Extract(ctx context.Context, path string) (prodmig.ExtractResult, error) {
	var result prodmig.ExtractResult

	open := func() (io.ReadCloser, error) {
		return e.fs.Open(path)
	}

	chosen, err := encoding.Decode(ctx, open, e.candidates, func(c encoding.Candidate, r io.Reader) error {
		e.logger.Info("Reading file with encoding: %s", c.Name)
		result = prodmig.ExtractResult{}

		err := e.scan(ctx, r, &result)
		var decErr *encoding.DecodeError
		if errors.As(err, &decErr) {
			e.logger.Verbose("Encoding %s rejected: %v", c.Name, decErr)
		}
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return prodmig.ExtractResult{}, err
		}
		return prodmig.ExtractResult{}, fmt.Errorf("%w %s: %w", prodmig.ErrFileAccess, path, err)
	}

	result.Encoding = chosen.Name
	e.logger.Verbose("Scanned %d lines: %d tuple candidates, %d records, %d skipped",
		result.Stats.Lines, result.Stats.Candidates, len(result.Records), result.Stats.Skipped())

	return result, nil
}

func (e *Extractor) scan(ctx context.Context, r io.Reader, result *prodmig.ExtractResult) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineLength)

	for scanner.Scan() {
		result.Stats.Lines++
		lineNo := result.Stats.Lines

		if lineNo%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, byteOrderMark)
		}

		if !IsCandidate(line) {
			continue
		}
		result.Stats.Candidates++

		rec, ok := ParseLine(line)
		if !ok {
			result.Stats.SkippedLines = append(result.Stats.SkippedLines, lineNo)
			e.logger.Verbose("Skipping line %d: not a product tuple", lineNo)
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("line %d exceeds %d bytes: %w", result.Stats.Lines+1, maxLineLength, err)
		}
		return err
	}
	return nil
}

var _ prodmig.Extractor = (*Extractor)(nil)
