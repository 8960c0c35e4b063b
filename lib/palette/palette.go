/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package palette

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

const (
	DefaultBeginning = "#00a651"
	DefaultInside    = "#7ed321"
)

type Colours struct {
	Beginning string `yaml:"beginning"`
	Inside    string `yaml:"inside"`
}

// Palette decides how each entity category is drawn, and which categories
// are not drawn at all.
type Palette struct {
	Default    Colours
	Categories map[string]Colours
	Hidden     map[string]bool
}

func Default() Palette {
	return Palette{
		Default:    Colours{Beginning: DefaultBeginning, Inside: DefaultInside},
		Categories: map[string]Colours{},
		Hidden:     map[string]bool{},
	}
}

// Colour returns the colour for a tagged segment. Missing category or
// half-filled entries fall back to the default colours.
func (p Palette) Colour(category string, beginning bool) string {
	colours, ok := p.Categories[category]
	if !ok {
		colours = p.Default
	}
	if beginning {
		if colours.Beginning != "" {
			return colours.Beginning
		}
		return p.Default.Beginning
	}
	if colours.Inside != "" {
		return colours.Inside
	}
	return p.Default.Inside
}

// Allowed returns false for hidden categories. Matching is case insensitive.
func (p Palette) Allowed(category string) bool {
	return !p.Hidden[strings.ToLower(category)]
}

// Load returns a palette from a YAML file at the given path, on top of the
// default colours.
func Load(path string) (*Palette, error) {

	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not find palette at %v", path))
		return nil, err
	}

	type yamlPalette struct {
		Default    Colours            `yaml:"default"`
		Categories map[string]Colours `yaml:"categories"`
		Hidden     []string           `yaml:"hidden"`
	}

	yamlP := yamlPalette{}
	if err := yaml.Unmarshal(bytes, &yamlP); err != nil {
		log.Error().Msg(fmt.Sprintf("could not load palette from %v", path))
		return nil, err
	}

	res := Default()
	if yamlP.Default.Beginning != "" {
		res.Default.Beginning = yamlP.Default.Beginning
	}
	if yamlP.Default.Inside != "" {
		res.Default.Inside = yamlP.Default.Inside
	}
	for category, colours := range yamlP.Categories {
		res.Categories[category] = colours
	}
	for _, category := range yamlP.Hidden {
		res.Hidden[strings.ToLower(category)] = true
	}

	log.Info().Msg(fmt.Sprintf("palette set from %v", path))

	return &res, nil
}
