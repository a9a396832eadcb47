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

	"github.com/fluxcd/pkg/ssa"
	"github.com/spf13/cobra"

	"github.com/stefanprodan/caasctl/pkg/api/v1alpha1"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall deletes the Cluster and ClusterType CRDs and waits for their termination.",
	Long: `Uninstall deletes the Cluster and ClusterType CRDs and waits for their termination.
Deleting the CRDs deletes all the Cluster and ClusterType objects, the playbook
jobs owned by the clusters are garbage collected.`,
	RunE: runUninstallCmd,
}

type uninstallFlags struct {
	wait bool
}

var uninstallArgs = uninstallFlags{
	wait: true,
}

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallArgs.wait, "wait", uninstallArgs.wait, "Wait for the CRDs to be deleted.")

	rootCmd.AddCommand(uninstallCmd)
}

func runUninstallCmd(cmd *cobra.Command, args []string) error {
	objects, err := v1alpha1.CRDs()
	if err != nil {
		return err
	}

	resMgr, err := newResourceManager()
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	changeSet, err := resMgr.DeleteAll(ctx, objects, ssa.DefaultDeleteOptions())
	if err != nil {
		return fmt.Errorf("deleting CRDs failed, error: %w", err)
	}
	for _, change := range changeSet.Entries {
		logger.Info().Msg(change.String())
	}

	if uninstallArgs.wait {
		logger.Info().Msg("waiting for CRDs to be terminated...")

		waitOpts := ssa.DefaultWaitOptions()
		waitOpts.Timeout = rootArgs.timeout
		if err := resMgr.WaitForTermination(objects, waitOpts); err != nil {
			return fmt.Errorf("waiting for termination failed, error: %w", err)
		}

		logger.Info().Msg("all CRDs are deleted")
	}

	return nil
}
