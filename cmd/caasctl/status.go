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
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stefanprodan/caasctl/pkg/manifest"
)

var statusCmd = &cobra.Command{
	Use:   "status [cluster name]",
	Short: "Status prints the create and remove jobs of a cluster and their state.",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	name := args[0]
	namespace := *kubeconfigArgs.Namespace

	manager, err := newManager()
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	states, err := manager.ListJobs(ctx, name, namespace, manifest.CreateAction, manifest.RemoveAction)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		logger.Info().Msgf("no jobs found for %s/%s", namespace, name)
		return nil
	}

	var rows [][]string
	for _, s := range states {
		row := []string{
			s.Name,
			s.Action.String(),
			fmt.Sprintf("%d", s.Active),
			fmt.Sprintf("%d", s.Succeeded),
			fmt.Sprintf("%d", s.Failed),
			s.State.String(),
		}
		rows = append(rows, row)
	}

	printTable(rootCmd.OutOrStdout(), []string{"name", "action", "active", "succeeded", "failed", "state"}, rows)
	return nil
}

func printTable(writer io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}
