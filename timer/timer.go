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

package timer

import (
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Sleep blocks for up to secs seconds. An operator interrupt (SIGINT
// or SIGTERM) ends the wait early, so a capture can be cut short
// without losing the collected data. The signal handler only lives
// for the duration of the wait; afterwards the default dispositions
// are restored.
func Sleep(secs uint) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	defer func() {
		signal.Stop(sig)
		signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	}()

	select {
	case <-sig:
	case <-time.After(time.Duration(secs) * time.Second):
	}
}
