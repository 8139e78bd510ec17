// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fdfd solves a point-source FDFD problem described by a YAML config
// and writes the solve summary as YAML.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/curioloop/maxwell/fdfd"
	"github.com/curioloop/maxwell/vecfield"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fdfd",
		Short:         "Matrix-free FDFD Maxwell solver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSolveCmd())
	return root
}

func newSolveCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve the wave equation for a point source",
		Long: `Solve (∇×∇× - ω²ε) E = -iωJ for a point current J in a homogeneous
medium surrounded by PML. The config file is YAML; flags override it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Output.LogLevel)

			out := cmd.OutOrStdout()
			if cfg.Output.File != "-" {
				f, err := os.Create(cfg.Output.File)
				if err != nil {
					logger.WithError(err).Error("cannot create output")
					return err
				}
				defer f.Close()
				out = f
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := run(ctx, cfg, logger, out); err != nil {
				logger.WithError(err).Error("solve failed")
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Configuration file path")
	flags.Float64("eps", 0, "Residual tolerance (overrides config)")
	flags.Int("max-iter", 0, "Iteration limit (overrides config)")
	flags.Int("monitor-every", 0, "Monitor cadence in iterations (overrides config)")
	flags.Bool("adjoint", false, "Run the adjoint solve")
	flags.StringP("output", "o", "", "Summary file, - for stdout")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	for key, name := range map[string]string{
		"solver.eps":            "eps",
		"solver.max_iterations": "max-iter",
		"solver.monitor_every":  "monitor-every",
		"solver.adjoint":        "adjoint",
		"output.file":           "output",
		"output.log_level":      "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
	v.SetEnvPrefix("FDFD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return cmd
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// report is the YAML summary of a solve.
type report struct {
	Mode         string     `yaml:"mode"`
	Status       string     `yaml:"status"`
	OK           bool       `yaml:"ok"`
	Iterations   int        `yaml:"iterations"`
	Applications int        `yaml:"applications"`
	TermErr      float64    `yaml:"term_err"`
	Elapsed      string     `yaml:"elapsed"`
	FieldNorms   [3]float64 `yaml:"field_norms,flow"`
	Errs         []float64  `yaml:"errs,flow"`
}

// run solves the configured problem and writes the report to out. The
// monitor logs progress and halts the solve once ctx is done.
func run(ctx context.Context, cfg *Config, logger *logrus.Logger, out io.Writer) error {
	p, z, b := cfg.problem()
	p.Monitor = func(x vecfield.Field, errs []float64) error {
		logger.WithFields(logrus.Fields{
			"iteration": len(errs),
			"residual":  errs[len(errs)-1],
		}).Info("cocg progress")
		return ctx.Err()
	}

	var solverLog *fdfd.Logger
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		w := logger.WriterLevel(logrus.DebugLevel)
		defer w.Close()
		solverLog = &fdfd.Logger{Level: fdfd.LogLast, Msg: w, Out: w}
	}

	s, err := p.New(solverLog)
	if err != nil {
		return err
	}

	mode := "primal"
	solve := s.Solve
	if cfg.Solver.Adjoint {
		mode, solve = "adjoint", s.SolveAdjoint
	}

	logger.WithFields(logrus.Fields{
		"mode":  mode,
		"shape": p.Shape,
		"pml":   cfg.Pml.Thickness,
	}).Info("starting solve")

	r, err := solve(z, b)
	if r == nil {
		return err
	}
	if err != nil {
		logger.WithError(err).Warn("solve halted")
	} else if !r.OK {
		logger.WithField("status", r.Status.String()).Warn("solve did not converge")
	}

	rep := report{
		Mode:         mode,
		Status:       r.Status.String(),
		OK:           r.OK,
		Iterations:   r.NumIter,
		Applications: r.NumApply,
		TermErr:      r.TermErr,
		Elapsed:      r.Elapsed.String(),
		Errs:         r.Errs,
	}
	for i := range rep.FieldNorms {
		rep.FieldNorms[i] = vecfield.Norm(componentOf(r.X, i))
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if e := enc.Encode(rep); e != nil {
		return fmt.Errorf("failed to write summary: %w", e)
	}
	if e := enc.Close(); e != nil {
		return fmt.Errorf("failed to write summary: %w", e)
	}
	return err
}

func componentOf(f vecfield.Field, i int) vecfield.Field {
	c := vecfield.Zeros(f.Shape)
	copy(c.Component(i), f.Component(i))
	return c
}
