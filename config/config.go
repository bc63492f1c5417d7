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

package config

import (
	"fmt"
	"io/ioutil"

	"github.com/0xN3utr0n/Ktrace/ftrace"
	"gopkg.in/yaml.v3"
)

// Profile mirrors an on-disk capture profile. Every field is
// optional; command line flags win over any of them.
type Profile struct {
	Output     string   `yaml:"output"`
	Timeout    uint     `yaml:"timeout"`
	Categories []string `yaml:"categories"`
	Extra      []Extra  `yaml:"extra"`
}

// Extra describes a user-defined category.
type Extra struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Events      []ExtraEvent `yaml:"events"`
}

// ExtraEvent describes one event of a user-defined category. An
// empty name selects the whole subsystem.
type ExtraEvent struct {
	Subsystem string `yaml:"subsystem"`
	Name      string `yaml:"name"`
	Required  bool   `yaml:"required"`
}

// Load reads and validates the given capture profile.
func Load(path string) (*Profile, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	profile := new(Profile)
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	if err := profile.validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	return profile, nil
}

func (p *Profile) validate() error {
	for _, cat := range p.Extra {
		if cat.Name == "" {
			return fmt.Errorf("extra category without a name")
		}
		if len(cat.Events) == 0 {
			return fmt.Errorf("extra category %s has no events", cat.Name)
		}
		for _, ev := range cat.Events {
			if ev.Subsystem == "" {
				return fmt.Errorf("extra category %s: event without a subsystem", cat.Name)
			}
		}
	}

	return nil
}

// ExtraCategories converts the profile's user-defined categories
// into catalog entries.
func (p *Profile) ExtraCategories() []ftrace.Category {
	if len(p.Extra) == 0 {
		return nil
	}

	extra := make([]ftrace.Category, 0, len(p.Extra))
	for _, cat := range p.Extra {
		events := make([]ftrace.Event, 0, len(cat.Events))
		for _, ev := range cat.Events {
			events = append(events, ftrace.Event{
				Subsystem: ev.Subsystem,
				Name:      ev.Name,
				Required:  ev.Required,
			})
		}

		desc := cat.Description
		if desc == "" {
			desc = "user-defined events"
		}

		extra = append(extra, ftrace.Category{
			Name:        cat.Name,
			Description: desc,
			Events:      events,
		})
	}

	return extra
}
