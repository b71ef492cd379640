/*
 * config.go, part of gosieve
 *
 * Copyright 2026 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

// Package config reads the TOML description of a filtering job and turns it into
// the criteria and options used by a sieve.Filter.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/pelletier/go-toml/v2"

	sieve "github.com/rmera/gosieve"
)

// Defaults for the optional fields.
const (
	DefaultBins      = 30
	DefaultPrecision = 6
)

// validate is a package-level singleton, as creating a validator is expensive.
var validate = validator.New()

// Config describes a filtering job.
type Config struct {
	// Trajectory to filter: an XYZ file, an stf file (.stf, .stz, .stl, .str) or a DCD file.
	Input string `toml:"input" json:"input" validate:"required" jsonschema:"description=Trajectory to filter (xyz, stf or dcd)"`
	// File where the accepted structures are written. Optional.
	Output string `toml:"output,omitempty" json:"output,omitempty" jsonschema:"description=Trajectory for the accepted structures (xyz, stf or dcd)"`
	// SQLite database where every structure is recorded. Optional.
	Database string `toml:"database,omitempty" json:"database,omitempty" jsonschema:"description=SQLite database where every structure is stored"`
	// Prefix for the histogram plots, one per criteria. Optional.
	Plot string `toml:"plot,omitempty" json:"plot,omitempty" jsonschema:"description=Prefix for the PNG histograms of the descriptor values"`
	Bins int    `toml:"bins,omitempty" json:"bins,omitempty" validate:"omitempty,min=1" jsonschema:"minimum=1,default=30"`
	// Frames evaluated at once.
	Batch     int  `toml:"batch,omitempty" json:"batch,omitempty" validate:"omitempty,min=1" jsonschema:"minimum=1,default=128"`
	Cpus      int  `toml:"cpus,omitempty" json:"cpus,omitempty" validate:"omitempty,min=1" jsonschema:"minimum=1"`
	Center    bool `toml:"center,omitempty" json:"center,omitempty" jsonschema:"description=Write the accepted structures with their center of mass at the origin"`
	Precision int  `toml:"precision,omitempty" json:"precision,omitempty" validate:"omitempty,min=1,max=12" jsonschema:"minimum=1,maximum=12,default=6"`
	// Needed only if the input doesn't contain them (DCD files, and stf files without an atomic_numbers header).
	AtomicNumbers []int `toml:"atomic_numbers,omitempty" json:"atomic_numbers,omitempty" validate:"omitempty,dive,min=1"`
	// Masses replacing the standard ones, keyed by atomic number.
	Masses   map[string]float64 `toml:"masses,omitempty" json:"masses,omitempty" validate:"omitempty,dive,keys,numeric,endkeys,gt=0"`
	Criteria []Criterion        `toml:"criteria" json:"criteria" validate:"required,min=1,dive"`
}

// Criterion describes one sieve.Criteria.
type Criterion struct {
	Descriptor string  `toml:"descriptor" json:"descriptor" validate:"required,oneof=max_atom_pair_dist com_distance_sum" jsonschema:"enum=max_atom_pair_dist,enum=com_distance_sum"`
	Cutoff     float64 `toml:"cutoff" json:"cutoff" validate:"gt=0" jsonschema:"exclusiveMinimum=0"`
	// Entity of each atom, required by com_distance_sum.
	EntityIDs []int `toml:"entity_ids,omitempty" json:"entity_ids,omitempty" validate:"required_if=Descriptor com_distance_sum"`
}

// Load reads and validates the configuration file in path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a TOML configuration. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("parsing config at line %d, column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.setDefaults()
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Bins == 0 {
		c.Bins = DefaultBins
	}
	if c.Batch == 0 {
		c.Batch = sieve.DefaultBatch
	}
	if c.Precision == 0 {
		c.Precision = DefaultPrecision
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	for i, cr := range c.Criteria {
		if cr.Descriptor != sieve.COMDistanceSumName && len(cr.EntityIDs) > 0 {
			return fmt.Errorf("config validation failed: criteria %d: %s takes no entity_ids", i, cr.Descriptor)
		}
		if cr.Descriptor == sieve.COMDistanceSumName && len(cr.EntityIDs) == 0 {
			return fmt.Errorf("config validation failed: criteria %d: empty entity_ids", i)
		}
		if len(c.AtomicNumbers) > 0 && len(cr.EntityIDs) > 0 && len(cr.EntityIDs) != len(c.AtomicNumbers) {
			return fmt.Errorf("config validation failed: criteria %d: %d entity_ids for %d atoms", i, len(cr.EntityIDs), len(c.AtomicNumbers))
		}
	}
	return nil
}

// Encode returns the configuration in TOML format.
func (c *Config) Encode() (string, error) {
	b, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(b), nil
}

// Options returns the descriptor options for the configuration.
func (c *Config) Options() (*sieve.Options, error) {
	o := sieve.DefaultOptions()
	if c.Cpus > 0 {
		o.Cpus(c.Cpus)
	}
	if len(c.Masses) > 0 {
		m := overrideMasses{custom: make(map[int]float64, len(c.Masses))}
		for k, v := range c.Masses {
			z, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("invalid atomic number %q in masses: %w", k, err)
			}
			m.custom[z] = v
		}
		o.Masses(m)
	}
	return o, nil
}

// Build returns the criteria described in the configuration, in order,
// with the configuration's options.
func (c *Config) Build() ([]*sieve.Criteria, error) {
	o, err := c.Options()
	if err != nil {
		return nil, err
	}
	ret := make([]*sieve.Criteria, 0, len(c.Criteria))
	for i, cr := range c.Criteria {
		d, err := sieve.DescriptorByName(cr.Descriptor)
		if err != nil {
			return nil, fmt.Errorf("criteria %d: %w", i, err)
		}
		var fixed sieve.Args
		if len(cr.EntityIDs) > 0 {
			fixed = sieve.Args{sieve.EntityIDsArg: append([]int(nil), cr.EntityIDs...)}
		}
		C, err := sieve.NewCriteria(d, fixed, cr.Cutoff, o)
		if err != nil {
			return nil, fmt.Errorf("criteria %d: %w", i, err)
		}
		ret = append(ret, C)
	}
	return ret, nil
}

// overrideMasses uses the custom masses when available, and the standard ones otherwise.
type overrideMasses struct {
	custom map[int]float64
}

func (m overrideMasses) Mass(z int) (float64, error) {
	if v, ok := m.custom[z]; ok {
		return v, nil
	}
	return sieve.StandardMasses.Mass(z)
}

// Schema returns the JSON schema of the configuration.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Config{})
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling schema: %w", err)
	}
	return b, nil
}
