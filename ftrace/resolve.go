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

// collectEvents maps the selected categories onto the enable files the
// running kernel actually exposes, preserving category order and the
// event order within each category.
//
// In explicit mode the user asked for these categories by name:
// required events are kept sight unseen (a later enable failure is a
// hard, reportable error), optional ones only when present. In
// implicit mode a category missing any required event is dropped
// whole, so a machine without the hardware never half-enables a
// category.
func collectEvents(t *Tracer, categories []Category, explicit bool) []string {
	var paths []string

	for i := range categories {
		cat := &categories[i]

		catPaths := make([]string, 0, len(cat.Events))
		for _, ev := range cat.Events {
			path := ev.EnablePath()

			if explicit == true {
				if ev.Required || t.Test(path) {
					catPaths = append(catPaths, path)
				}
				continue
			}

			if t.Test(path) {
				catPaths = append(catPaths, path)
			} else if ev.Required {
				catPaths = catPaths[:0]
				break
			}
		}

		if len(catPaths) == 0 && explicit == false {
			log.Warn("Resolver").Str("Type", "Skip").
				Msg("Skipping category " + cat.Name)
		}

		paths = append(paths, catPaths...)
	}

	return paths
}
