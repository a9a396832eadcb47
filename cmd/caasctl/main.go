/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/


package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fluxcd/pkg/ssa"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/stefanprodan/caasctl/pkg/config"
)

var VERSION = "0.1.0-dev.0"

const PROJECT = "caasctl"

var rootCmd = &cobra.Command{
	Use:           PROJECT,
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "A command line utility to run and track the provisioning jobs of CaaS clusters.",
	Long: `Caasctl runs the Ansible playbook of a cluster type as a Kubernetes Job
and reports the outcome of the create and remove jobs of a cluster.

Install the Cluster and ClusterType custom resource definitions:

- caasctl install [--export]
- caasctl uninstall

Render, submit and track the playbook jobs:

- caasctl render <cluster> -f <path> --action <create|remove>
- caasctl start <cluster> -n <namespace> --action <create|remove>
- caasctl status <cluster> -n <namespace>
- caasctl wait <cluster> -n <namespace> [--for-delete]
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(rootArgs.logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level '%s', error: %w", rootArgs.logLevel, err)
		}
		logger = logger.Level(level)
		return nil
	},
}

type rootFlags struct {
	timeout  time.Duration
	logLevel string
}

var (
	rootArgs = rootFlags{}
	logger   = newLogger(os.Stderr)
	cfg      = config.NewConfig()
	owner    = ssa.Owner{
		Field: cfg.FieldManager.Name,
		Group: cfg.FieldManager.Group,
	}
)

var kubeconfigArgs = genericclioptions.NewConfigFlags(false)

func init() {
	rootCmd.PersistentFlags().DurationVar(&rootArgs.timeout, "timeout", time.Minute,
		"The length of time to wait before giving up on the current operation.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.logLevel, "log-level", "info",
		"The log verbosity, one of: trace, debug, info, warn, error.")

	kubeconfigArgs.Timeout = nil
	kubeconfigArgs.Namespace = nil
	kubeconfigArgs.AddFlags(rootCmd.PersistentFlags())

	defaultNamespace := "default"
	kubeconfigArgs.Namespace = &defaultNamespace
	rootCmd.PersistentFlags().StringVarP(kubeconfigArgs.Namespace, "namespace", "n", *kubeconfigArgs.Namespace, "The cluster namespace.")

	rootCmd.DisableAutoGenTag = true
	rootCmd.SetOut(os.Stdout)
}

func main() {
	loadConfig()
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Msgf("✗ %v", err)
		os.Exit(1)
	}
}

func loadConfig() {
	if c, err := config.Read(""); err != nil {
		logger.Error().Msgf("✗ %v", fmt.Errorf("loading the config failed, error: %w", err))
	} else {
		cfg = c
	}

	owner = ssa.Owner{
		Field: cfg.FieldManager.Name,
		Group: cfg.FieldManager.Group,
	}
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	})
}

// newContext returns a context bounded by the --timeout flag
// that carries the CLI logger for the library packages.
func newContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	return log.IntoContext(ctx, zerologr.New(&logger)), cancel
}
