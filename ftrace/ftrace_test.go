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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/0xN3utr0n/Ktrace/logger"
	"github.com/stretchr/testify/assert"
)

// newTracefs lays out a fake tracefs instance below a temporal
// directory. The trace file is always present since binding checks it.
func newTracefs(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	if _, ok := files["trace"]; ok == false {
		files["trace"] = ""
	}

	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := ioutil.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return root
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()

	lg, err := logger.New(filepath.Join(t.TempDir(), "test.log"), false)
	if err != nil {
		t.Fatal(err)
	}

	return lg
}

func readFile(t *testing.T, root string, path string) string {
	t.Helper()

	buf, err := ioutil.ReadFile(filepath.Join(root, path))
	if err != nil {
		t.Fatal(err)
	}

	return string(buf)
}

func TestTracerBind(t *testing.T) {
	assert := assert.New(t)

	missing := filepath.Join(t.TempDir(), "nodir")
	root := newTracefs(t, map[string]string{})

	tracer := NewTracer()

	tracer.SetTracefs(missing)
	assert.True(tracer.HasErr())
	kind, path := tracer.Err()
	assert.Equal(ErrNotFound, kind)
	assert.Equal(filepath.Join(missing, "trace"), path)
	assert.Equal("", tracer.Tracefs())

	// A later candidate clears the failed attempt.
	tracer.SetTracefs(root)
	assert.False(tracer.HasErr())
	assert.Equal(root, tracer.Tracefs())

	// Once bound, the root never changes.
	tracer.SetTracefs(missing)
	assert.False(tracer.HasErr())
	assert.Equal(root, tracer.Tracefs())
}

func TestTracerLatchOnce(t *testing.T) {
	assert := assert.New(t)

	root := newTracefs(t, map[string]string{"knob": "orig"})

	tracer := NewTracer()
	tracer.SetTracefs(root)

	tracer.Write("options/missing", on)
	assert.True(tracer.HasErr())
	kind, path := tracer.Err()
	assert.Equal(ErrNotFound, kind)
	assert.Equal(filepath.Join(root, "options/missing"), path)

	// Latched: later operations are skipped and the first
	// failure is kept.
	tracer.Write("knob", "new")
	assert.Equal("orig", readFile(t, root, "knob"))

	assert.Equal("", tracer.Read("knob"))

	tracer.Truncate("knob")
	assert.Equal("orig", readFile(t, root, "knob"))

	kind, path = tracer.Err()
	assert.Equal(ErrNotFound, kind)
	assert.Equal(filepath.Join(root, "options/missing"), path)
}

func TestTracerReadSentinel(t *testing.T) {
	assert := assert.New(t)

	root := newTracefs(t, map[string]string{})

	tracer := NewTracer()
	tracer.SetTracefs(root)

	assert.Equal("", tracer.Read("options/absent"))
	assert.True(tracer.HasErr())

	kind, _ := tracer.Err()
	assert.Equal(ErrNotFound, kind)
}

func TestTracerProbeNeverLatches(t *testing.T) {
	assert := assert.New(t)

	root := newTracefs(t, map[string]string{"knob": "1"})

	tracer := NewTracer()
	tracer.SetTracefs(root)

	assert.True(tracer.Test("knob"))
	assert.False(tracer.Test("absent"))
	assert.False(tracer.HasErr())
}

func TestTracerForceWrite(t *testing.T) {
	assert := assert.New(t)

	root := newTracefs(t, map[string]string{"tracing_on": on})

	tracer := NewTracer()
	tracer.SetTracefs(root)

	tracer.Write("options/missing", on)
	assert.True(tracer.HasErr())
	_, first := tracer.Err()

	// forceWrite still lands despite the latch, and does not
	// overwrite the original failure.
	tracer.forceWrite("tracing_on", off)
	assert.Equal(off, readFile(t, root, "tracing_on"))

	_, path := tracer.Err()
	assert.Equal(first, path)
}

func TestTracerBestWrite(t *testing.T) {
	assert := assert.New(t)

	root := newTracefs(t, map[string]string{"knob": on})

	tracer := NewTracer()
	tracer.SetTracefs(root)

	tracer.bestWrite("knob", off)
	assert.Equal(off, readFile(t, root, "knob"))

	// Failures are swallowed.
	tracer.bestWrite("options/missing", off)
	assert.False(tracer.HasErr())
}

func TestTracerWriteCreatesNothingOnMissingDir(t *testing.T) {
	assert := assert.New(t)

	root := newTracefs(t, map[string]string{})

	tracer := NewTracer()
	tracer.SetTracefs(root)

	tracer.Write("events/sched/enable", on)
	assert.True(tracer.HasErr())

	kind, path := tracer.Err()
	assert.Equal(ErrNotFound, kind)
	assert.Equal(filepath.Join(root, "events/sched/enable"), path)
}
