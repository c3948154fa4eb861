package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigYAML = `# perfbench configuration
# 0 iterations selects the active profile's default (5 developer, 2 CI).
iterations: 0
sample_interval: 10ms
collect_memory: true
collect_cpu: true

history:
  backend: file
  dir: test-results/performance/history
  max_records: 50

report:
  output_dir: test-results/performance/reports
  markdown: true
  json: true
  html: false
  csv: false

regression:
  min_samples: 3
  history_window: 0

alerts:
  slack_webhook: ""
  file: ""

metrics_port: 2112
verbose: false
`

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default perfbench.yaml in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "perfbench.yaml"
		if !initForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
		if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}
