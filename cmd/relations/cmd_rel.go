package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/persistorai/relations/client"
)

// relFlags are the descriptor flags shared by every rel subcommand.
type relFlags struct {
	direction string
	nodeType  string
}

func (f *relFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "outgoing|incoming|both (default outgoing)")
	cmd.Flags().StringVar(&f.nodeType, "node-type", "", "Only related nodes of this type")
}

func (f *relFlags) relation(origin, relType string) (client.Relation, error) {
	switch f.direction {
	case "", "out", client.Outgoing, "in", client.Incoming, client.Both:
	default:
		return client.Relation{}, fmt.Errorf("unknown direction %q", f.direction)
	}
	return client.Relation{Origin: origin, Type: relType, Direction: f.direction, NodeType: f.nodeType}, nil
}

func newRelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rel",
		Short: "Read and extend relationship collections",
	}
	cmd.AddCommand(relListCmd())
	cmd.AddCommand(relSizeCmd())
	cmd.AddCommand(relEmptyCmd())
	cmd.AddCommand(relAtCmd())
	cmd.AddCommand(relAddCmd())
	cmd.AddCommand(relStreamCmd())
	return cmd
}

func relListCmd() *cobra.Command {
	var (
		f       relFlags
		page    int
		perPage int
		total   bool
	)
	cmd := &cobra.Command{
		Use:   "list <origin> <type>",
		Short: "List one page of related nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := f.relation(args[0], args[1])
			if err != nil {
				return err
			}
			p, err := apiClient.Relations.Page(cmd.Context(), r, &client.PageOptions{Page: page, PerPage: perPage, WithTotal: total})
			if err != nil {
				return fmt.Errorf("list relations: %w", err)
			}
			return outputPage(cmd.OutOrStdout(), p)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&page, "page", 0, "Page number (server default when 0)")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Page size (server default when 0)")
	cmd.Flags().BoolVar(&total, "total", false, "Also count the whole collection")
	return cmd
}

func relSizeCmd() *cobra.Command {
	var f relFlags
	cmd := &cobra.Command{
		Use:   "size <origin> <type>",
		Short: "Count related nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := f.relation(args[0], args[1])
			if err != nil {
				return err
			}
			n, err := apiClient.Relations.Size(cmd.Context(), r)
			if err != nil {
				return fmt.Errorf("size: %w", err)
			}
			return outputValue(cmd.OutOrStdout(), "size", n)
		},
	}
	f.register(cmd)
	return cmd
}

func relEmptyCmd() *cobra.Command {
	var f relFlags
	cmd := &cobra.Command{
		Use:   "empty <origin> <type>",
		Short: "Report whether a collection has no related nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := f.relation(args[0], args[1])
			if err != nil {
				return err
			}
			empty, err := apiClient.Relations.IsEmpty(cmd.Context(), r)
			if err != nil {
				return fmt.Errorf("empty: %w", err)
			}
			return outputValue(cmd.OutOrStdout(), "empty", empty)
		},
	}
	f.register(cmd)
	return cmd
}

// errNoElement is returned by "rel at" when the index is past the end.
var errNoElement = errors.New("no related node at index")

func relAtCmd() *cobra.Command {
	var f relFlags
	cmd := &cobra.Command{
		Use:   "at <origin> <type> <index>",
		Short: "Get the related node at a zero-based index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[2])
			if err != nil || index < 0 {
				return fmt.Errorf("index must be a non-negative integer, got %q", args[2])
			}
			r, err := f.relation(args[0], args[1])
			if err != nil {
				return err
			}
			node, ok, err := apiClient.Relations.At(cmd.Context(), r, index)
			if err != nil {
				return fmt.Errorf("at: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w %d", errNoElement, index)
			}
			return outputNode(cmd.OutOrStdout(), node)
		},
	}
	f.register(cmd)
	return cmd
}

func relAddCmd() *cobra.Command {
	var f relFlags
	cmd := &cobra.Command{
		Use:   "add <origin> <type> <target>...",
		Short: "Create relationships from origin to each target, in order",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := f.relation(args[0], args[1])
			if err != nil {
				return err
			}
			edges, err := apiClient.Relations.Append(cmd.Context(), r, args[2:]...)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			return outputEdges(cmd.OutOrStdout(), edges)
		},
	}
	f.register(cmd)
	return cmd
}

func relStreamCmd() *cobra.Command {
	var (
		f     relFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "stream <origin> <type>",
		Short: "Print related nodes as the server reads them, one ID per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := f.relation(args[0], args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			seen := 0
			err = apiClient.Relations.Stream(cmd.Context(), r, func(n client.Node) error {
				fmt.Fprintln(w, n.ID)
				seen++
				if limit > 0 && seen >= limit {
					return client.ErrStop
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("stream: %w", err)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many nodes (0 for all)")
	return cmd
}
