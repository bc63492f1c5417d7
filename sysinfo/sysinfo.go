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

package sysinfo

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// Info describes the host a trace was captured on. It travels with
// the capture history so old traces stay interpretable.
type Info struct {
	Hostname string
	Kernel   string
	Arch     string
	CPUs     int
}

// Collect gathers the host information worth attaching to a capture.
func Collect() (*Info, error) {
	hinfo, err := host.Info()
	if err != nil {
		return nil, err
	}

	// A missing cpu count does not invalidate the snapshot.
	cpus, err := cpu.Counts(true)
	if err != nil {
		cpus = 0
	}

	return &Info{
		Hostname: hinfo.Hostname,
		Kernel:   hinfo.KernelVersion,
		Arch:     hinfo.KernelArch,
		CPUs:     cpus,
	}, nil
}
