package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/suuji/internal/config"
	"github.com/verte-zerg/suuji/internal/numeral"
	"github.com/verte-zerg/suuji/internal/pricelist"
	"github.com/verte-zerg/suuji/internal/quiz"
	"github.com/verte-zerg/suuji/internal/store"
)

var poolShowReadings bool

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage price pools used by the quiz",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pools",
		Args:  cobra.NoArgs,
		RunE:  runPoolListCmd,
	}
	showCmd := &cobra.Command{
		Use:   "show <pool>",
		Short: "Print the values of a pool",
		Args:  cobra.ExactArgs(1),
		RunE:  runPoolShowCmd,
	}
	showCmd.Flags().BoolVar(&poolShowReadings, "readings", false, "print kana and romaji next to each value")
	addCmd := &cobra.Command{
		Use:   "add <pool> <price>...",
		Short: "Add prices to a pool, creating it if needed",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runPoolAddCmd,
	}
	removeCmd := &cobra.Command{
		Use:   "remove <pool> <price>...",
		Short: "Remove prices from a pool",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runPoolRemoveCmd,
	}
	importCmd := &cobra.Command{
		Use:   "import <pool> <file>",
		Short: "Add prices from a text file (one per line, # comments)",
		Args:  cobra.ExactArgs(2),
		RunE:  runPoolImportCmd,
	}
	deleteCmd := &cobra.Command{
		Use:   "delete <pool>",
		Short: "Delete a pool and its prices",
		Args:  cobra.ExactArgs(1),
		RunE:  runPoolDeleteCmd,
	}

	cmd.AddCommand(listCmd, showCmd, addCmd, removeCmd, importCmd, deleteCmd)
	return cmd
}

// withStore opens the pool database, seeds the default pool and runs fn.
func withStore(fn func(ctx context.Context, st *store.Store) error) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	ctx := context.Background()
	if _, err := st.SeedDefault(ctx, defaultPool, quiz.DefaultPool); err != nil {
		return fmt.Errorf("failed to seed default pool: %w", err)
	}
	return fn(ctx, st)
}

func runPoolListCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		pools, err := st.ListPools(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(pools))
		for _, p := range pools {
			rows = append(rows, []string{p.Name, strconv.Itoa(p.Count)})
		}
		return writeTable(cmd.OutOrStdout(), []string{"Pool", "Values"}, rows, map[int]bool{1: true})
	})
}

func runPoolShowCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		pool, err := st.LoadPool(ctx, args[0])
		if err != nil {
			return err
		}
		if len(pool.Values) == 0 {
			logErrln("pool is empty")
			return nil
		}
		headers := []string{"Value"}
		if poolShowReadings {
			headers = append(headers, "Kana", "Romaji")
		}
		rows := make([][]string, 0, len(pool.Values))
		for _, v := range pool.Values {
			row := []string{strconv.Itoa(v)}
			if poolShowReadings {
				kana, romaji, err := numeral.Readings(v)
				if err != nil {
					return err
				}
				row = append(row, kana, romaji)
			}
			rows = append(rows, row)
		}
		return writeTable(cmd.OutOrStdout(), headers, rows, map[int]bool{0: true})
	})
}

func runPoolAddCmd(cmd *cobra.Command, args []string) error {
	values, err := parseValues(args[1:])
	if err != nil {
		return err
	}
	return withStore(func(ctx context.Context, st *store.Store) error {
		added, err := st.AddValues(ctx, args[0], values)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %d of %d values to %s\n", added, len(values), args[0])
		return err
	})
}

func runPoolRemoveCmd(cmd *cobra.Command, args []string) error {
	values, err := parseValues(args[1:])
	if err != nil {
		return err
	}
	return withStore(func(ctx context.Context, st *store.Store) error {
		removed, err := st.RemoveValues(ctx, args[0], values)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d values from %s\n", removed, args[0])
		return err
	})
}

func runPoolImportCmd(cmd *cobra.Command, args []string) error {
	values, err := pricelist.LoadValues(args[1])
	if err != nil {
		return err
	}
	return withStore(func(ctx context.Context, st *store.Store) error {
		added, err := st.AddValues(ctx, args[0], values)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d new values into %s (%d read)\n", added, args[0], len(values))
		return err
	})
}

func runPoolDeleteCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		if err := st.DeletePool(ctx, args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted pool %s\n", args[0])
		return err
	})
}

func parseValues(args []string) ([]int, error) {
	values := make([]int, 0, len(args))
	for _, arg := range args {
		v, err := numeral.ParseDigits(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return values, nil
}
