// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/curioloop/maxwell/fdfd"
	"github.com/curioloop/maxwell/operator"
	"github.com/curioloop/maxwell/vecfield"
)

var errInvalidConfig = errors.New("invalid config")

// Config describes a point-source solve in a homogeneous medium.
type Config struct {
	Grid   GridConfig   `mapstructure:"grid" yaml:"grid"`
	Pml    PmlConfig    `mapstructure:"pml" yaml:"pml"`
	Medium MediumConfig `mapstructure:"medium" yaml:"medium"`
	Source SourceConfig `mapstructure:"source" yaml:"source"`
	Solver SolverConfig `mapstructure:"solver" yaml:"solver"`
	Output OutputConfig `mapstructure:"output" yaml:"output"`
}

type GridConfig struct {
	Shape []int `mapstructure:"shape" yaml:"shape"`
}

type PmlConfig struct {
	Thickness int     `mapstructure:"thickness" yaml:"thickness"`
	WEff      float64 `mapstructure:"w_eff" yaml:"w_eff"`
	M         float64 `mapstructure:"m" yaml:"m"`
	LnR       float64 `mapstructure:"ln_r" yaml:"ln_r"`
}

// MediumConfig gives z = ω²ε with a complex relative permittivity.
type MediumConfig struct {
	Omega float64 `mapstructure:"omega" yaml:"omega"`
	EpsRe float64 `mapstructure:"eps_re" yaml:"eps_re"`
	EpsIm float64 `mapstructure:"eps_im" yaml:"eps_im"`
}

// SourceConfig places a current J at one cell; the source term is b = -iωJ.
type SourceConfig struct {
	Component string  `mapstructure:"component" yaml:"component"`
	Index     []int   `mapstructure:"index" yaml:"index"`
	AmpRe     float64 `mapstructure:"amp_re" yaml:"amp_re"`
	AmpIm     float64 `mapstructure:"amp_im" yaml:"amp_im"`
}

type SolverConfig struct {
	Eps           float64 `mapstructure:"eps" yaml:"eps"`
	MaxIterations int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	MonitorEvery  int     `mapstructure:"monitor_every" yaml:"monitor_every"`
	Adjoint       bool    `mapstructure:"adjoint" yaml:"adjoint"`
}

type OutputConfig struct {
	File     string `mapstructure:"file" yaml:"file"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("grid.shape", []int{32, 32, 32})

	pml := operator.DefaultPmlParams()
	v.SetDefault("pml.thickness", 8)
	v.SetDefault("pml.w_eff", pml.WEff)
	v.SetDefault("pml.m", pml.M)
	v.SetDefault("pml.ln_r", pml.LnR)

	v.SetDefault("medium.omega", 0.3)
	v.SetDefault("medium.eps_re", 1.0)
	v.SetDefault("medium.eps_im", 0.0)

	v.SetDefault("source.component", "z")
	v.SetDefault("source.index", []int{})
	v.SetDefault("source.amp_re", 1.0)
	v.SetDefault("source.amp_im", 0.0)

	v.SetDefault("solver.eps", 1e-6)
	v.SetDefault("solver.max_iterations", 10000)
	v.SetDefault("solver.monitor_every", 100)
	v.SetDefault("solver.adjoint", false)

	v.SetDefault("output.file", "-")
	v.SetDefault("output.log_level", "info")
}

// loadConfig reads path, if any, over the defaults. Values already bound to
// flags on v take precedence.
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case len(c.Grid.Shape) != 3:
		return fmt.Errorf("%w: grid.shape needs 3 extents, got %v", errInvalidConfig, c.Grid.Shape)
	case componentIndex(c.Source.Component) < 0:
		return fmt.Errorf("%w: source.component must be x, y or z, got %q", errInvalidConfig, c.Source.Component)
	case len(c.Source.Index) != 0 && len(c.Source.Index) != 3:
		return fmt.Errorf("%w: source.index needs 3 indices, got %v", errInvalidConfig, c.Source.Index)
	}
	shape := c.shape()
	if !shape.Valid() || shape.Len() == 0 {
		return fmt.Errorf("%w: grid.shape %v is empty", errInvalidConfig, c.Grid.Shape)
	}
	for axis, i := range c.sourceIndex() {
		if i < 0 || i >= shape[axis] {
			return fmt.Errorf("%w: source.index %v outside grid %v", errInvalidConfig, c.Source.Index, shape)
		}
	}
	return nil
}

func componentIndex(name string) int {
	switch strings.ToLower(name) {
	case "x":
		return 0
	case "y":
		return 1
	case "z":
		return 2
	}
	return -1
}

func (c *Config) shape() vecfield.Shape {
	return vecfield.Shape{c.Grid.Shape[0], c.Grid.Shape[1], c.Grid.Shape[2]}
}

// sourceIndex defaults to the grid centre.
func (c *Config) sourceIndex() [3]int {
	if len(c.Source.Index) == 3 {
		return [3]int{c.Source.Index[0], c.Source.Index[1], c.Source.Index[2]}
	}
	s := c.shape()
	return [3]int{s[0] / 2, s[1] / 2, s[2] / 2}
}

// problem returns the solver problem and the z and b fields of the config.
func (c *Config) problem() (p fdfd.Problem, z, b vecfield.Field) {
	shape := c.shape()
	p = fdfd.Problem{
		Shape:     shape,
		Thickness: operator.UniformThickness(c.Pml.Thickness),
		Pml:       operator.PmlParams{WEff: c.Pml.WEff, M: c.Pml.M, LnR: c.Pml.LnR},
		Stop: fdfd.Termination{
			Eps:           c.Solver.Eps,
			MaxIterations: c.Solver.MaxIterations,
		},
		MonitorEvery: c.Solver.MonitorEvery,
	}

	w := c.Medium.Omega
	z = vecfield.Uniform(shape, complex(w*w, 0)*complex(c.Medium.EpsRe, c.Medium.EpsIm))

	i := c.sourceIndex()
	j := complex(c.Source.AmpRe, c.Source.AmpIm)
	b = vecfield.Delta(shape, componentIndex(c.Source.Component), i[0], i[1], i[2], complex(0, -w)*j)
	return
}
