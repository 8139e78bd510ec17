// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/curioloop/maxwell/fdfd"
)

const smallConfig = `
grid:
  shape: [6, 6, 6]
pml:
  thickness: 1
  w_eff: 1
medium:
  omega: 1
  eps_re: -1
  eps_im: -1
source:
  component: x
  index: [3, 3, 3]
solver:
  eps: 1.0e-8
  max_iterations: 500
  monitor_every: 5
`

func writeConfig(t *testing.T, text string) string {
	path := filepath.Join(t.TempDir(), "fdfd.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(viper.New(), writeConfig(t, smallConfig))
	switch {
	case err != nil:
		t.Fatal(err)
	case cfg.Pml.M != 4 || cfg.Pml.LnR != -16:
		t.Fatalf("pml defaults not applied: %+v", cfg.Pml)
	case cfg.Output.File != "-":
		t.Fatalf("unexpected output %q", cfg.Output.File)
	}

	p, z, b := cfg.problem()
	switch {
	case p.Stop.Eps != 1e-8 || p.Stop.MaxIterations != 500 || p.MonitorEvery != 5:
		t.Fatalf("unexpected problem %+v", p)
	case z.X[0] != -1-1i:
		t.Fatalf("unexpected z %v", z.X[0])
	case b.X[b.Shape.Index(3, 3, 3)] != -1i:
		t.Fatalf("unexpected source %v", b.X[b.Shape.Index(3, 3, 3)])
	}

	cfg, err = loadConfig(viper.New(), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.sourceIndex() != [3]int{16, 16, 16} {
		t.Fatalf("source not centred: %v", cfg.sourceIndex())
	}
}

func TestInvalidConfig(t *testing.T) {
	for _, text := range []string{
		"grid:\n  shape: [4, 4]\n",
		"source:\n  component: w\n",
		"grid:\n  shape: [4, 4, 4]\nsource:\n  index: [4, 0, 0]\n",
	} {
		if _, err := loadConfig(viper.New(), writeConfig(t, text)); !errors.Is(err, errInvalidConfig) {
			t.Errorf("%q: expected invalid config, got %v", text, err)
		}
	}
}

func TestRun(t *testing.T) {
	cfg, err := loadConfig(viper.New(), writeConfig(t, smallConfig))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err = run(context.Background(), cfg, quietLogger(), &out); err != nil {
		t.Fatal(err)
	}
	var rep report
	if err = yaml.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	switch {
	case !rep.OK || rep.Mode != "primal":
		t.Fatalf("unexpected report %+v", rep)
	case rep.Iterations != len(rep.Errs) || rep.Applications != rep.Iterations+1:
		t.Fatalf("inconsistent counts %+v", rep)
	case rep.Errs[len(rep.Errs)-1] > rep.TermErr:
		t.Fatal("final residual above threshold")
	case rep.FieldNorms[0] == 0:
		t.Fatal("empty field")
	}
}

func TestRunCancelled(t *testing.T) {
	cfg, err := loadConfig(viper.New(), writeConfig(t, smallConfig))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err = run(ctx, cfg, quietLogger(), &out)
	if !errors.Is(err, fdfd.ErrHalted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected halt by cancellation, got %v", err)
	}
	var rep report
	if err = yaml.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.OK || rep.Iterations != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestSolveCommand(t *testing.T) {
	path := writeConfig(t, smallConfig)
	summary := filepath.Join(t.TempDir(), "summary.yaml")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"solve", "-c", path, "--adjoint", "-o", summary, "--log-level", "error"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatal(err)
	}
	var rep report
	if err = yaml.Unmarshal(data, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Mode != "adjoint" || !rep.OK {
		t.Fatalf("unexpected report %+v", rep)
	}
}
