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
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/0xN3utr0n/Ktrace/logger"
	"github.com/0xN3utr0n/Ktrace/timer"
)

// Config carries everything a single capture session needs.
type Config struct {
	Output     string
	Timeout    uint
	Categories []Category
	Explicit   bool
	// Candidate tracefs roots. Empty means autodetect.
	Tracefs []string
}

// TraceError describes the failure that stopped a session.
type TraceError struct {
	Phase string
	Kind  ErrKind
	Path  string
}

func (e *TraceError) Error() string {
	return e.Phase + ": " + e.Path + " " + e.Kind.String()
}

// Session owns one arm -> capture -> dump -> disarm cycle against
// the kernel's tracing facility.
type Session struct {
	tracer *Tracer
	paths  []string
	dumped int
}

// NewSession creates a new capture session.
func NewSession(main *logger.Logger) *Session {
	log = main

	return &Session{tracer: NewTracer()}
}

// Dumped returns the number of bytes saved by the last Run.
func (s *Session) Dumped() int {
	return s.dumped
}

// Run drives the whole capture. On failure it returns a *TraceError
// naming the phase that latched; the disarm phase runs either way,
// so no enabled event outlives the session.
func (s *Session) Run(cfg Config) error {
	candidates := cfg.Tracefs
	if len(candidates) == 0 {
		candidates = Candidates()
	}

	s.bind(candidates)
	if err := s.check("failed to set tracefs"); err != nil {
		return err
	}

	log.InfoS("Setting trace options", "Session")
	s.setOptions()
	if err := s.check("failed to set options"); err != nil {
		return s.abort(err)
	}

	log.InfoS("Enabling trace events", "Session")
	s.paths = collectEvents(s.tracer, cfg.Categories, cfg.Explicit)
	if len(s.paths) == 0 {
		log.WarnS("No trace events available", "Session")
	}
	s.enableEvents()
	if err := s.check("failed to set events"); err != nil {
		return s.abort(err)
	}

	log.InfoS(fmt.Sprintf("Tracing for %d seconds", cfg.Timeout), "Session")
	s.capture(cfg.Timeout)
	if err := s.check("failed to enable tracing"); err != nil {
		return s.abort(err)
	}

	log.InfoS("Saving the trace to "+cfg.Output, "Session")
	s.dump(cfg.Output)
	if err := s.check("failed to save the trace"); err != nil {
		return s.abort(err)
	}

	s.cleanup()

	return nil
}

// bind attaches the tracer to the first usable candidate root.
func (s *Session) bind(candidates []string) {
	for _, root := range candidates {
		s.tracer.SetTracefs(root)
		if s.tracer.HasErr() == false {
			log.DebugS("Using tracefs at "+root, "Session")
			return
		}
	}
}

// check turns a latched failure into the session's error.
func (s *Session) check(phase string) error {
	if s.tracer.HasErr() == false {
		return nil
	}

	kind, path := s.tracer.Err()

	return &TraceError{Phase: phase, Kind: kind, Path: path}
}

// abort disarms before surfacing err. Events that made it on must
// never outlive the session, no matter which phase failed.
func (s *Session) abort(err error) error {
	s.cleanup()
	return err
}

// Trace clocks in preference order.
var preferredClocks = []string{"boot", "mono", "global"}

// setOptions resets the tracing facility into a known state: tracing
// halted, buffer emptied and sized, no active tracer, no function
// filter, TGID recording on and the best available clock selected.
func (s *Session) setOptions() {
	s.tracer.WriteBool("tracing_on", false)
	s.tracer.Truncate("trace")

	if s.tracer.Test("options/record-tgid") {
		s.tracer.WriteBool("options/record-tgid", true)
	} else {
		// Android / CrOS only
		s.tracer.WriteBool("options/print-tgid", true)
	}

	s.tracer.WriteInt("buffer_size_kb", 32*1024)
	s.tracer.Write("current_tracer", "nop")
	s.tracer.Truncate("set_ftrace_filter")

	s.setTraceClock()
}

// setTraceClock selects the first preferred clock the kernel offers.
// Writing trace_clock clears the buffer and can take a while, so the
// write is skipped when that clock is already active.
func (s *Session) setTraceClock() {
	val := s.tracer.Read("trace_clock")

	for _, clock := range preferredClocks {
		if strings.Contains(val, clock) == false {
			continue
		}

		if strings.Contains(val, "["+clock+"]") == false {
			s.tracer.Write("trace_clock", clock)
		}
		break
	}
}

// enableEvents arms every resolved enable file. The loop stops at
// the first failure; the latch keeps the failing path for the report.
func (s *Session) enableEvents() {
	for _, path := range s.paths {
		s.tracer.WriteBool(path, true)
		if s.tracer.HasErr() == true {
			break
		}
		log.DebugS("Ftrace: Enabled - "+path, "Session")
	}
}

// capture opens the tracing window for the requested time. The window
// ends early on an operator interrupt. Whatever happens, tracing_on is
// switched back off.
func (s *Session) capture(seconds uint) {
	s.tracer.WriteBool("tracing_on", true)
	if s.tracer.HasErr() == false {
		timer.Sleep(seconds)
	}
	s.tracer.forceWrite("tracing_on", off)
}

// dump saves the capture buffer into output and empties it. Copy and
// rename do not work on tracefs everywhere, so the buffer goes
// through memory.
func (s *Session) dump(output string) {
	buf := s.tracer.Read("trace")
	if s.tracer.HasErr() == false {
		if err := ioutil.WriteFile(output, []byte(buf), 0644); err != nil {
			s.tracer.latch(classify(err), output)
		} else {
			s.dumped = len(buf)
		}
	}

	// A latched failure skips the truncate, keeping the buffer
	// around for another attempt.
	s.tracer.Truncate("trace")
}

// cleanup switches every resolved event back off. Disabling an event
// that never made it on is a harmless no-op, so the whole resolved
// set is written unconditionally and failures are ignored.
func (s *Session) cleanup() {
	for _, path := range s.paths {
		s.tracer.bestWrite(path, off)
		log.DebugS("Ftrace: Disabled - "+path, "Session")
	}
}
