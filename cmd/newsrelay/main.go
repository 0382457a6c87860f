package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsrelay",
		Short:         "Relay new GeekNews and Hacker News posts to chat webhooks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(runCmd())
	root.AddCommand(pollCmd())
	root.AddCommand(stateCmd())
	root.AddCommand(historyCmd())

	return root
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll all configured sources forever",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "status API port (default: from config, 0 disables)")
	return cmd
}

func pollCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run a single poll cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoll(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show how many items each source has marked as seen",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState()
		},
	}
}

func historyCmd() *cobra.Command {
	var (
		jsonOutput bool
		src        string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently delivered messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(jsonOutput, src, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&src, "source", "", "only show one source (feed, hackernews)")
	cmd.Flags().IntVar(&limit, "limit", 20, "max deliveries to show")
	return cmd
}
