// overlayctl inspects and maintains the durable overlay store without
// starting an event loop or touching the screen.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"desktop-overlay-manager/store"
)

type ctlOptions struct {
	configDir string
	backend   string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &ctlOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(os.Args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *ctlOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "overlayctl",
		Short:         "Inspect and maintain the overlay geometry store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "Store directory (default ~/.desktop_overlay_manager)")
	cmd.PersistentFlags().StringVar(&opts.backend, "store", "json", "Store backend: json or sqlite")

	cmd.AddCommand(newDumpCmd(opts))
	cmd.AddCommand(newResetCmd(opts))
	return cmd
}

func newDumpCmd(opts *ctlOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print stored geometry as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(opts)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Load()
			if err != nil {
				return err
			}
			// Same section names as the backing file and the tray export.
			layout := struct {
				Rects  map[string]store.Entry `json:"rects"`
				Points map[string]store.Entry `json:"points"`
			}{
				Rects:  snap[store.KindRect],
				Points: snap[store.KindPoint],
			}
			data, err := json.MarshalIndent(layout, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newResetCmd(opts *ctlOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored geometry",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(opts)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store reset")
			return nil
		},
	}
}

func openStore(opts *ctlOptions) (store.Store, error) {
	dir := opts.configDir
	if dir == "" {
		var err error
		if dir, err = store.DefaultDir(); err != nil {
			return nil, err
		}
	}
	switch opts.backend {
	case "sqlite":
		return store.NewSQLiteStore(dir)
	case "json", "":
		return store.NewFileStore(dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.backend)
	}
}
