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

import "strings"

// Event identifies a single kernel trace event, or a whole event
// subsystem when Name is empty. Required marks the events a category
// is useless without.
type Event struct {
	Subsystem string
	Name      string
	Required  bool
}

// EnablePath returns the event's enable file, relative to the tracefs root.
func (ev *Event) EnablePath() string {
	comps := []string{"events", ev.Subsystem}
	if ev.Name != "" {
		comps = append(comps, ev.Name)
	}
	comps = append(comps, "enable")

	return strings.Join(comps, "/")
}

// Category is a user-facing group of related kernel trace events.
type Category struct {
	Name        string
	Description string
	Events      []Event
}

var categories = []Category{
	{
		"sched",
		"scheduler-related events",
		[]Event{
			{"sched", "sched_switch", true},
			{"sched", "sched_wakeup", true},
			{"sched", "sched_waking", false},
			// Android / CrOS only
			{"sched", "sched_blocked_reason", false},
			// Android / CrOS only
			{"sched", "sched_cpu_hotplug", false},
			{"sched", "sched_pi_setprio", false},
			{"cgroup", "", false},
		},
	},
	{
		"freq",
		"CPU frequency events",
		[]Event{
			{"power", "cpu_frequency", true},
			{"power", "clock_set_rate", false},
			{"power", "clock_disable", false},
			{"power", "clock_enable", false},
			{"clk", "clk_set_rate", false},
			{"clk", "clk_disable", false},
			{"clk", "clk_enable", false},
			{"power", "cpu_frequency_limits", false},
		},
	},
	{
		"idle",
		"CPU idle state events",
		[]Event{
			{"power", "cpu_idle", true},
		},
	},
	{
		"irq",
		"IRQ events",
		[]Event{
			{"irq", "", true},
		},
	},
	{
		"drm",
		"DRM vblank events",
		[]Event{
			{"drm", "", true},
		},
	},
	{
		"fence",
		"DMA-FENCE events",
		[]Event{
			{"dma_fence", "", true},
			{"sync_trace", "sync_timeline", true},
		},
	},
	{
		"virtio-gpu",
		"virtio-gpu GPU events",
		[]Event{
			{"virtio_gpu", "", true},
		},
	},
	{
		"i915",
		"Intel GPU events",
		[]Event{
			{"i915", "i915_request_queue", true},
			{"i915", "i915_request_add", true},
			{"i915", "i915_request_retire", true},
			{"i915", "i915_request_wait_begin", true},
			{"i915", "i915_request_wait_end", true},
			{"i915", "intel_gpu_freq_change", true},
			{"i915", "i915_gem_evict", true},
			{"i915", "i915_gem_evict_node", true},
			{"i915", "i915_gem_evict_vm", true},
			{"i915", "i915_gem_shrink", true},
			{"i915", "i915_pipe_update_start", true},
			{"i915", "i915_pipe_update_end", true},
		},
	},
	{
		"kvm",
		"KVM events",
		[]Event{
			{"kvm", "kvm_entry", true},
			{"kvm", "kvm_exit", true},
			{"kvm", "kvm_userspace_exit", true},
			{"kvm", "kvm_mmio", true},
			{"kvm", "kvm_set_irq", true},
			{"kvm", "kvm_msi_set_irq", true},
		},
	},
	{
		"syscalls",
		"system call events",
		[]Event{
			{"syscalls", "", true},
		},
	},
}

// Categories returns the built-in category catalog, in declaration order.
func Categories() []Category {
	return categories
}

// Merge returns the catalog extended with extra categories. An extra
// carrying a known name replaces the built-in one and keeps its
// position; new names are appended. The built-in table is never
// modified.
func Merge(extra []Category) []Category {
	merged := make([]Category, len(categories), len(categories)+len(extra))
	copy(merged, categories)

	for _, cat := range extra {
		if i := index(merged, cat.Name); i >= 0 {
			merged[i] = cat
		} else {
			merged = append(merged, cat)
		}
	}

	return merged
}

// Find returns the named category within the given catalog.
func Find(catalog []Category, name string) *Category {
	if i := index(catalog, name); i >= 0 {
		return &catalog[i]
	}

	return nil
}

func index(catalog []Category, name string) int {
	for i := range catalog {
		if catalog[i].Name == name {
			return i
		}
	}

	return -1
}
