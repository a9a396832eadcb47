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
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/stefanprodan/caasctl/pkg/jobs"
	"github.com/stefanprodan/caasctl/pkg/lifecycle"
)

var waitCmd = &cobra.Command{
	Use:   "wait [cluster name]",
	Short: "Wait polls the jobs of a cluster until the create job has finished or a remove job has succeeded.",
	Example: `  # Wait for the create job to finish
  caasctl wait db1 -n tenant1 --timeout=30m

  # Wait for a remove job to succeed
  caasctl wait db1 -n tenant1 --for-delete --interval=10s
`,
	Args: cobra.ExactArgs(1),
	RunE: runWaitCmd,
}

type waitFlags struct {
	forDelete bool
	interval  time.Duration
}

var waitArgs = waitFlags{
	interval: 5 * time.Second,
}

func init() {
	waitCmd.Flags().BoolVar(&waitArgs.forDelete, "for-delete", false,
		"Wait for a remove job to succeed instead of the create job to finish.")
	waitCmd.Flags().DurationVar(&waitArgs.interval, "interval", waitArgs.interval,
		"The time to wait between the job status queries.")

	rootCmd.AddCommand(waitCmd)
}

func runWaitCmd(cmd *cobra.Command, args []string) error {
	name := args[0]
	namespace := *kubeconfigArgs.Namespace

	manager, err := newManager()
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	if waitArgs.forDelete {
		logger.Info().Msgf("waiting for %s/%s remove job to succeed...", namespace, name)
		err := wait.PollImmediateUntil(waitArgs.interval, func() (bool, error) {
			outcomes, err := manager.GetDeleteStatus(ctx, name, namespace)
			if err != nil {
				return false, err
			}
			return jobs.AnySucceeded(outcomes), nil
		}, ctx.Done())
		if err != nil {
			return waitError("remove", err)
		}

		logger.Info().Msg("remove job succeeded")
		return nil
	}

	logger.Info().Msgf("waiting for %s/%s create job to finish...", namespace, name)
	var outcome jobs.Outcome
	err = wait.PollImmediateUntil(waitArgs.interval, func() (bool, error) {
		var err error
		outcome, err = manager.EnsureCreateFinished(ctx, name, namespace)
		if lifecycle.IsWaiting(err) {
			logger.Debug().Msg(err.Error())
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}, ctx.Done())
	if err != nil {
		return waitError("create", err)
	}

	if outcome != jobs.OutcomeSuccess {
		return fmt.Errorf("create job of %s/%s finished with outcome %s", namespace, name, outcome)
	}

	logger.Info().Msg("create job succeeded")
	return nil
}

func waitError(action string, err error) error {
	if errors.Is(err, wait.ErrWaitTimeout) {
		return fmt.Errorf("timeout waiting for %s job after %s", action, rootArgs.timeout)
	}
	return fmt.Errorf("waiting for %s job failed, error: %w", action, err)
}
