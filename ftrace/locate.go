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
	"github.com/prometheus/procfs"
)

// Well-known tracefs mounts, in preference order.
var tracefsPaths = []string{
	"/sys/kernel/tracing",
	"/sys/kernel/debug/tracing",
}

// Candidates returns the tracefs roots worth probing: the well-known
// mounts first, then anything else the mount table reveals. Keeping
// the well-known pair in front makes the chosen root predictable on
// standard systems.
func Candidates() []string {
	candidates := make([]string, len(tracefsPaths))
	copy(candidates, tracefsPaths)

	mounts, err := procfs.GetMounts()
	if err != nil {
		return candidates
	}

	for _, mount := range mounts {
		var root string

		switch mount.FSType {
		case "tracefs":
			root = mount.MountPoint
		case "debugfs":
			root = mount.MountPoint + "/tracing"
		default:
			continue
		}

		if contains(candidates, root) == false {
			candidates = append(candidates, root)
		}
	}

	return candidates
}

func contains(list []string, elem string) bool {
	for _, val := range list {
		if val == elem {
			return true
		}
	}

	return false
}
