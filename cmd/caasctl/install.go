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

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install applies the Cluster and ClusterType CRDs using server-side apply and waits for them to become established.",
	Example: `  # Install the CRDs on the current cluster
  caasctl install

  # Print the CRDs
  caasctl install --export > crds.yaml
`,
	RunE: runInstallCmd,
}

type installFlags struct {
	export bool
	force  bool
}

var installArgs installFlags

func init() {
	installCmd.Flags().BoolVar(&installArgs.export, "export", false, "Print the CRDs in YAML format to stdout.")
	installCmd.Flags().BoolVar(&installArgs.force, "force", false, "Recreate the CRDs if they contain immutable fields changes.")

	rootCmd.AddCommand(installCmd)
}

func runInstallCmd(cmd *cobra.Command, args []string) error {
	objects, err := v1alpha1.CRDs()
	if err != nil {
		return err
	}

	if installArgs.export {
		yml, err := ssa.ObjectsToYAML(objects)
		if err != nil {
			return err
		}
		rootCmd.Println(yml)
		return nil
	}

	resMgr, err := newResourceManager()
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	applyOpts := ssa.DefaultApplyOptions()
	applyOpts.Force = installArgs.force

	changeSet, err := resMgr.ApplyAll(ctx, objects, applyOpts)
	if err != nil {
		return fmt.Errorf("applying CRDs failed, error: %w", err)
	}
	for _, change := range changeSet.Entries {
		logger.Info().Msg(change.String())
	}

	logger.Info().Msg("waiting for CRDs to become established...")

	waitOpts := ssa.DefaultWaitOptions()
	waitOpts.Timeout = rootArgs.timeout
	if err := resMgr.Wait(objects, waitOpts); err != nil {
		return err
	}

	logger.Info().Msg("all CRDs are ready")
	return nil
}

func newResourceManager() (*ssa.ResourceManager, error) {
	kubeClient, err := kubeClientFactory(kubeconfigArgs)
	if err != nil {
		return nil, fmt.Errorf("client init failed: %w", err)
	}

	statusPoller, err := newKubeStatusPoller(kubeconfigArgs)
	if err != nil {
		return nil, fmt.Errorf("status poller init failed: %w", err)
	}

	return ssa.NewResourceManager(kubeClient, statusPoller, owner), nil
}
