// Package encoding decodes legacy text files under an ordered list of
// candidate character encodings.
//
// A candidate is adopted only when the whole input decodes under it. When a
// candidate fails part way through, the input is reopened and consumed again
// from the start under the next candidate, so nothing produced by an abandoned
// attempt survives.
package encoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrExhausted is returned by Decode when no candidate decodes the input.
var ErrExhausted = errors.New("input does not decode under any candidate encoding")

// ErrUnknownEncoding is returned by Lookup for names it cannot resolve.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Candidate is one encoding Decode may try.
type Candidate struct {
	// Name is the canonical name reported to the operator.
	Name string

	decoder func() transform.Transformer
}

// NewDecoder returns a fresh transformer that converts the candidate's bytes to UTF-8.
func (c Candidate) NewDecoder() transform.Transformer {
	return c.decoder()
}

func (c Candidate) String() string {
	return c.Name
}

var (
	utf8Candidate = Candidate{
		Name:    "utf-8",
		decoder: func() transform.Transformer { return xencoding.UTF8Validator },
	}
	latin1Candidate = Candidate{
		Name:    "latin-1",
		decoder: func() transform.Transformer { return charmap.ISO8859_1.NewDecoder() },
	}
	cp1252Candidate = Candidate{
		Name:    "cp1252",
		decoder: func() transform.Transformer { return charmap.Windows1252.NewDecoder() },
	}
)

// aliases maps the spellings operators commonly use to the built-in candidates.
// UTF-8 is strict: invalid sequences fail the candidate rather than being replaced.
var aliases = map[string]Candidate{
	"utf-8":        utf8Candidate,
	"utf8":         utf8Candidate,
	"latin-1":      latin1Candidate,
	"latin1":       latin1Candidate,
	"iso-8859-1":   latin1Candidate,
	"iso8859-1":    latin1Candidate,
	"cp1252":       cp1252Candidate,
	"windows-1252": cp1252Candidate,
}

// Lookup resolves an encoding name. Names outside the built-in set are
// resolved through the IANA registry.
func Lookup(name string) (Candidate, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := aliases[key]; ok {
		return c, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return Candidate{}, fmt.Errorf("%q: %w", name, ErrUnknownEncoding)
	}

	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = key
	}
	return Candidate{
		Name:    strings.ToLower(canonical),
		decoder: func() transform.Transformer { return enc.NewDecoder() },
	}, nil
}

// LookupAll resolves names in order.
func LookupAll(names []string) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(names))
	for _, name := range names {
		c, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// OpenFunc opens the raw input. Decode calls it once per attempted candidate.
type OpenFunc func() (io.ReadCloser, error)

// ConsumeFunc reads the decoded text of one attempt. It must discard any
// state from earlier attempts.
type ConsumeFunc func(c Candidate, r io.Reader) error

// DecodeError reports that the input is not valid under a candidate encoding.
type DecodeError struct {
	Encoding string
	Offset   int64 // decoded bytes delivered before the failure
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode as %s failed after %d bytes: %v", e.Encoding, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode tries each candidate in order, handing consume a reader that yields
// UTF-8 text. The first candidate for which consume returns nil is returned.
//
// A DecodeError surfacing from consume abandons the candidate and moves on.
// Any other error (failing to open, an I/O error from the source, or an error
// raised by consume itself) stops Decode immediately.
func Decode(ctx context.Context, open OpenFunc, candidates []Candidate, consume ConsumeFunc) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, fmt.Errorf("%w: no candidates given", ErrExhausted)
	}

	var failures []error
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return Candidate{}, err
		}

		err := attempt(open, c, consume)
		if err == nil {
			return c, nil
		}

		var decErr *DecodeError
		if !errors.As(err, &decErr) {
			return Candidate{}, err
		}
		failures = append(failures, decErr)
	}

	return Candidate{}, fmt.Errorf("%w: %w", ErrExhausted, errors.Join(failures...))
}

func attempt(open OpenFunc, c Candidate, consume ConsumeFunc) error {
	rc, err := open()
	if err != nil {
		return err
	}
	defer rc.Close()

	src := &sourceReader{r: rc}
	return consume(c, &decodingReader{
		r:        transform.NewReader(src, c.NewDecoder()),
		encoding: c.Name,
	})
}

// sourceError marks an error raised by the underlying input rather than the decoder.
type sourceError struct {
	err error
}

func (e *sourceError) Error() string { return e.err.Error() }

func (e *sourceError) Unwrap() error { return e.err }

type sourceReader struct {
	r io.Reader
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		return n, &sourceError{err: err}
	}
	return n, err
}

type decodingReader struct {
	r        io.Reader
	encoding string
	offset   int64
}

func (d *decodingReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	d.offset += int64(n)
	if err == nil || err == io.EOF {
		return n, err
	}

	var srcErr *sourceError
	if errors.As(err, &srcErr) {
		return n, srcErr.err
	}
	return n, &DecodeError{Encoding: d.encoding, Offset: d.offset, Err: err}
}
