package main

import (
	"fmt"

	"github.com/cuemby/rtsim/pkg/storage"
	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect stored results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored results",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		results, err := store.ListResults()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(w, "No results stored")
			return nil
		}
		printResultHeader(w)
		for _, res := range results {
			printResultRow(w, res, res.TaskSet)
		}
		return nil
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a stored result",
	Long: `Show a stored result. ID may be abbreviated to any unique prefix.
With --taskset the stored snapshot of the simulated task set is printed too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withTaskSet, _ := cmd.Flags().GetBool("taskset")

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := store.FindResult(args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		printResult(w, res)

		if withTaskSet {
			data, err := store.GetTaskSet(res.Fingerprint)
			if err != nil {
				return err
			}
			fmt.Fprintln(w)
			fmt.Fprint(w, string(data))
		}
		return nil
	},
}

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := store.FindResult(args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteResult(res.ID); err != nil {
			return fmt.Errorf("failed to delete result %s: %w", res.ID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", res.ID)
		return nil
	},
}

func init() {
	resultsCmd.PersistentFlags().String("data-dir", "./rtsim-data", "Directory of the result store")
	resultsShowCmd.Flags().Bool("taskset", false, "Print the task-set snapshot")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
	resultsCmd.AddCommand(resultsDeleteCmd)
}

func openStore(cmd *cobra.Command) (*storage.BoltStore, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	return storage.NewBoltStore(dataDir)
}
