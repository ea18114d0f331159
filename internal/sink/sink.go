// Package sink implements the default Sink adapter (spec.md §6): a rotating
// output directory holding numbered identity files and, unless -smi-only is
// set, numbered placeholder structure files. Rotated files are compressed
// with github.com/klauspost/compress/gzip, the DOMAIN STACK dependency this
// component exercises (SPEC_FULL.md §4.11).
package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/cx-luo/synthline/internal/chemoracle"
	"github.com/cx-luo/synthline/internal/errs"
	"github.com/cx-luo/synthline/internal/logging"
	"github.com/cx-luo/synthline/internal/molecule"
	"github.com/cx-luo/synthline/internal/ports"
)

var _ ports.Sink = (*Sink)(nil)

// Sink streams accepted molecules to disk. Writes are serialized through mu
// per spec.md §5 ("Sink: serialize writes").
type Sink struct {
	mu      sync.Mutex
	dir     string
	smiOnly bool
	logger  logging.Logger

	identityCap   int
	identityIdx   int
	identityCount int
	identityFile  *os.File
	identityW     *bufio.Writer

	structCap   int
	structIdx   int
	structCount int
	structFile  *os.File
	structW     *bufio.Writer

	closed bool
}

// New creates the output directory (if absent) and constructs a Sink
// rotating identity files at identityCap lines and structure files at
// structCap records. If smiOnly is true, structure files are never written
// (spec.md §6, -smi-only).
func New(dir string, identityCap, structCap int, smiOnly bool, logger logging.Logger) (*Sink, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ResourceExhausted, err, "sink: creating output directory")
	}
	s := &Sink{dir: dir, identityCap: identityCap, structCap: structCap, smiOnly: smiOnly, logger: logger}
	if err := s.rotateIdentity(); err != nil {
		return nil, err
	}
	if !smiOnly {
		if err := s.rotateStruct(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Emit implements ports.Sink.
func (s *Sink) Emit(_ context.Context, identity string, m *molecule.Molecule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identityCap > 0 && s.identityCount >= s.identityCap {
		if err := s.rotateIdentity(); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(s.identityW, identity); err != nil {
		return errs.Wrap(errs.SinkWriteFailed, err, "sink: writing identity line")
	}
	s.identityCount++

	if !s.smiOnly {
		if err := s.writeStructure(identity, m); err != nil {
			return err
		}
	}
	return nil
}

// writeStructure emits a minimal placeholder structure record: the core
// never performs 3-D materialization (spec.md §1 Non-goals delegate that to
// the oracle/sink boundary), so this records atom/bond counts and the
// identity string rather than coordinates.
func (s *Sink) writeStructure(identity string, m *molecule.Molecule) error {
	fmt.Fprintf(s.structW, "MOLECULE %s\n", identity)
	fmt.Fprintf(s.structW, "  formula=%s atoms=%d bonds=%d fragments=%d\n",
		chemoracle.Formula(m.Atoms, m.Bonds), len(m.Atoms), len(m.Bonds), m.Size())
	fmt.Fprintln(s.structW, "$$$$")
	s.structCount++
	if s.structCap > 0 && s.structCount >= s.structCap {
		return s.rotateStruct()
	}
	return nil
}

func (s *Sink) rotateIdentity() error {
	if s.identityW != nil {
		if err := s.identityW.Flush(); err != nil {
			return errs.Wrap(errs.SinkWriteFailed, err, "sink: flushing identity file")
		}
		path := s.identityFile.Name()
		if err := s.identityFile.Close(); err != nil {
			return errs.Wrap(errs.SinkWriteFailed, err, "sink: closing identity file")
		}
		if err := compressAndRemove(path); err != nil {
			s.logger.Warn("sink: failed to compress rotated identity file", logging.String("path", path), logging.Err(err))
		}
	}
	s.identityIdx++
	path := filepath.Join(s.dir, fmt.Sprintf("identities_%04d.txt", s.identityIdx))
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.SinkWriteFailed, err, "sink: creating identity file")
	}
	s.identityFile = f
	s.identityW = bufio.NewWriter(f)
	s.identityCount = 0
	return nil
}

func (s *Sink) rotateStruct() error {
	if s.structW != nil {
		if err := s.structW.Flush(); err != nil {
			return errs.Wrap(errs.SinkWriteFailed, err, "sink: flushing structure file")
		}
		path := s.structFile.Name()
		if err := s.structFile.Close(); err != nil {
			return errs.Wrap(errs.SinkWriteFailed, err, "sink: closing structure file")
		}
		if err := compressAndRemove(path); err != nil {
			s.logger.Warn("sink: failed to compress rotated structure file", logging.String("path", path), logging.Err(err))
		}
	}
	s.structIdx++
	path := filepath.Join(s.dir, fmt.Sprintf("structures_%04d.sdf", s.structIdx))
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.SinkWriteFailed, err, "sink: creating structure file")
	}
	s.structFile = f
	s.structW = bufio.NewWriter(f)
	s.structCount = 0
	return nil
}

// compressAndRemove gzips src to src+".gz" and removes the uncompressed
// original, implementing the "compressed after rotation" policy of spec.md
// §6's persisted-state description.
func compressAndRemove(src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(src + ".gz")
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := copyAll(gw, in); err != nil {
		gw.Close()
		out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyAll(dst *gzip.Writer, src *os.File) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if rerr != nil {
			if rerr == io.EOF {
				return total, nil
			}
			return total, rerr
		}
	}
}

// Flush implements ports.Sink.
func (s *Sink) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identityW != nil {
		if err := s.identityW.Flush(); err != nil {
			return errs.Wrap(errs.SinkWriteFailed, err, "sink: flushing identity file")
		}
	}
	if s.structW != nil {
		if err := s.structW.Flush(); err != nil {
			return errs.Wrap(errs.SinkWriteFailed, err, "sink: flushing structure file")
		}
	}
	return nil
}

// Close implements ports.Sink.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var firstErr error
	if s.identityFile != nil {
		if err := s.identityW.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := s.identityFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.structFile != nil {
		if err := s.structW.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := s.structFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
