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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stefanprodan/caasctl/pkg/manifest"
)

var startCmd = &cobra.Command{
	Use:   "start [cluster name]",
	Short: "Start applies the parameters ConfigMap of a cluster and submits a new playbook Job.",
	Example: `  # Run the create playbook of a cluster
  caasctl start db1 -n tenant1 --action create

  # Run the remove playbook and wait for it to succeed
  caasctl start db1 -n tenant1 --action remove && caasctl wait db1 -n tenant1 --for-delete
`,
	Args: cobra.ExactArgs(1),
	RunE: runStartCmd,
}

type startFlags struct {
	action string
}

var startArgs startFlags

func init() {
	startCmd.Flags().StringVar(&startArgs.action, "action", string(manifest.CreateAction),
		"The playbook action, one of: create, remove.")

	rootCmd.AddCommand(startCmd)
}

func runStartCmd(cmd *cobra.Command, args []string) error {
	name := args[0]
	namespace := *kubeconfigArgs.Namespace

	action, err := manifest.ParseAction(startArgs.action)
	if err != nil {
		return err
	}

	manager, err := newManager()
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	cluster, err := manager.GetCluster(ctx, name, namespace)
	if err != nil {
		return err
	}

	clusterType, err := manager.GetClusterType(ctx, cluster)
	if err != nil {
		return err
	}

	logger.Info().Msgf("starting %s job for %s/%s...", action, namespace, name)

	changeSet, err := manager.StartJob(ctx, cluster, clusterType, namespace, action)
	if changeSet != nil {
		for _, change := range changeSet.Entries {
			logger.Info().Msg(change.String())
		}
	}
	if err != nil {
		return fmt.Errorf("starting %s job failed, error: %w", action, err)
	}

	return nil
}
