// Copyright (C) 2020-2021,  0xN3utr0n

// Ktrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Ktrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with Ktrace. If not, see <http://www.gnu.org/licenses/>.

package ftrace

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/0xN3utr0n/Ktrace/logger"
	"golang.org/x/sys/unix"
)

const (
	on  = "1"
	off = "0"
)

var log *logger.Logger

// ErrKind classifies a failed tracefs operation.
type ErrKind int

const (
	ErrNone ErrKind = iota
	ErrNotFound
	ErrPermission
	ErrOther
)

func (k ErrKind) String() string {
	switch k {
	case ErrNone:
		return "none"
	case ErrNotFound:
		return "not found"
	case ErrPermission:
		return "permission denied"
	default:
		return "i/o error"
	}
}

// classify maps an I/O error onto its ErrKind.
func classify(err error) ErrKind {
	var errno syscall.Errno
	if errors.As(err, &errno) == true {
		switch errno {
		case unix.ENOENT:
			return ErrNotFound
		case unix.EACCES, unix.EPERM:
			return ErrPermission
		}
		return ErrOther
	}

	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if os.IsPermission(err) {
		return ErrPermission
	}

	return ErrOther
}

// Tracer accesses files below a single tracefs mount. The first
// failure of a phase is latched (kind plus offending path) and every
// later gated operation turns into a no-op, so a whole phase can run
// unchecked and be inspected once at the end.
type Tracer struct {
	tracefs string

	errKind ErrKind
	errPath string
}

// NewTracer creates an unbound Tracer.
func NewTracer() *Tracer {
	return &Tracer{}
}

// SetTracefs binds the tracer to the given tracefs mount, verifying
// that its trace file is reachable. Once a mount has been accepted,
// further calls are ignored. A failed attempt records the failure
// without latching it, so the caller can try the next candidate.
func (t *Tracer) SetTracefs(root string) {
	if t.tracefs != "" {
		return
	}

	trace := filepath.Join(root, "trace")
	if _, err := os.Stat(trace); err != nil {
		t.errKind = classify(err)
		t.errPath = trace
		return
	}

	t.errKind = ErrNone
	t.errPath = ""
	t.tracefs = root
}

// Tracefs returns the bound mount point, or "" before binding.
func (t *Tracer) Tracefs() string {
	return t.tracefs
}

// HasErr reports whether a failure has been latched.
func (t *Tracer) HasErr() bool {
	return t.errKind != ErrNone
}

// Err returns the latched failure.
func (t *Tracer) Err() (ErrKind, string) {
	return t.errKind, t.errPath
}

func (t *Tracer) latch(kind ErrKind, path string) {
	if t.errKind != ErrNone {
		return
	}

	t.errKind = kind
	t.errPath = path
}

// Test reports whether path exists below the tracefs root. Probe
// failures are expected, event inventories vary between kernels,
// so they never latch.
func (t *Tracer) Test(path string) bool {
	_, err := os.Stat(filepath.Join(t.tracefs, path))
	return err == nil
}

// Write writes val into the given tracefs file.
func (t *Tracer) Write(path string, val string) {
	if t.HasErr() == true {
		return
	}

	full := filepath.Join(t.tracefs, path)
	if err := ioutil.WriteFile(full, []byte(val), 0644); err != nil {
		t.latch(classify(err), full)
	}
}

// WriteBool writes a boolean toggle into the given tracefs file.
func (t *Tracer) WriteBool(path string, enable bool) {
	if enable == true {
		t.Write(path, on)
	} else {
		t.Write(path, off)
	}
}

// WriteInt writes a numeric value into the given tracefs file.
func (t *Tracer) WriteInt(path string, val int) {
	t.Write(path, strconv.Itoa(val))
}

// Truncate empties the given tracefs file.
func (t *Tracer) Truncate(path string) {
	if t.HasErr() == true {
		return
	}

	full := filepath.Join(t.tracefs, path)
	fd, err := os.OpenFile(full, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		t.latch(classify(err), full)
		return
	}
	fd.Close()
}

// Read returns the content of the given tracefs file, or "" on failure.
func (t *Tracer) Read(path string) string {
	if t.HasErr() == true {
		return ""
	}

	full := filepath.Join(t.tracefs, path)
	buf, err := ioutil.ReadFile(full)
	if err != nil {
		t.latch(classify(err), full)
		return ""
	}

	return string(buf)
}

// forceWrite attempts the write even with a failure latched. Meant
// for writes that must always happen, such as switching tracing_on
// back off after a capture.
func (t *Tracer) forceWrite(path string, val string) {
	full := filepath.Join(t.tracefs, path)
	if err := ioutil.WriteFile(full, []byte(val), 0644); err != nil {
		t.latch(classify(err), full)
	}
}

// bestWrite attempts the write and swallows any failure. Cleanup only.
func (t *Tracer) bestWrite(path string, val string) {
	full := filepath.Join(t.tracefs, path)
	ioutil.WriteFile(full, []byte(val), 0644)
}
