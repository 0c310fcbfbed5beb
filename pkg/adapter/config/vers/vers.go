// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers contains the common versions parsing which is required
// by all config versions. Two versions are tracked here, namely the
// configuration files and the persisted pins document (and other
// aspects which may need migration support can be added later). The
// idea is that versions should be known before trying to obtain and
// parse the actual data, so the actual data format can be known and
// verified when loading them and although the format of keeping
// versions may change too, but it is less likely to change over time.
package vers

import (
	"fmt"

	"github.com/momeni/fieldpin/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// Config contains the versions of those system components which should
// be supported in the migration operations. It may be embedded with
// inline format in the released config struct versions in order to
// indicate their versions and relevant items format.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions contains the configuration file and pins document versions
// which are used for detecting their relevant formats.
// Although older pins documents may be read and migrated, each binary
// writes only the latest pins document version which is known to it.
type Versions struct {
	Config model.SemVer `yaml:"config"`
	Pins   model.SemVer `yaml:"pins"`
}

// Load deserializes the data byte slice into a new instance of Config
// struct. Of course, data may contain extra fields which will be
// ignored. The deserialized version fields (in the returned Config)
// can be used to detect the format of other settings in the data and
// complete deserialization of the remaining fields.
func Load(data []byte) (*Config, error) {
	vc := &Config{}
	if err := yaml.Unmarshal(data, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Validate returns an error if the configuration settings version which
// is stored in the `vc` Config instance is not supported by the given
// major and minor version arguments. That is, stored major version
// must match with the major argument and the stored minor version must
// be at most equal with the given minor version (not newer than it).
func (vc *Config) Validate(major, minor uint) error {
	v := vc.Versions.Config
	if v[0] != major {
		return fmt.Errorf("incompatible major version: %d", v[0])
	}
	if v[1] > minor {
		return fmt.Errorf("unsupported minor version: %d", v[1])
	}
	return nil
}
