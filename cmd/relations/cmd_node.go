package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/persistorai/relations/client"
)

func newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage nodes",
	}
	cmd.AddCommand(nodeCreateCmd())
	cmd.AddCommand(nodeGetCmd())
	return cmd
}

func nodeCreateCmd() *cobra.Command {
	var id, nodeType, propsJSON string
	cmd := &cobra.Command{
		Use:   "create <label>",
		Short: "Create a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &client.CreateNodeRequest{
				ID:    id,
				Label: args[0],
				Type:  nodeType,
			}
			if propsJSON != "" {
				if err := json.Unmarshal([]byte(propsJSON), &req.Properties); err != nil {
					return fmt.Errorf("parse props: %w", err)
				}
			}
			node, err := apiClient.Nodes.Create(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("create node: %w", err)
			}
			return outputNode(cmd.OutOrStdout(), node)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Node ID (generated when empty)")
	cmd.Flags().StringVar(&nodeType, "type", "", "Node type")
	cmd.Flags().StringVar(&propsJSON, "props", "", "Properties as JSON")
	cmd.MarkFlagRequired("type") //nolint:errcheck // flag is defined above.
	return cmd
}

func nodeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a node by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := apiClient.Nodes.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get node: %w", err)
			}
			return outputNode(cmd.OutOrStdout(), node)
		},
	}
}
