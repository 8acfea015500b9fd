package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/ramfs/internal/cli/output"
)

var (
	statusOutput  string
	statusAPIPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status and live mounts",
	Long: `Display the current status of the ramfs daemon.

This command calls the admin API health endpoint and lists the live
mounts with their types, options, and node counts.

Examples:
  # Check status (uses default settings)
  ramfs status

  # Check status with custom API port
  ramfs status --api-port 9080

  # Output as JSON
  ramfs status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 8080, "API server port")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// apiResponse is the admin API response wrapper.
type apiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

// mountStatus is one mount as reported by the admin API.
type mountStatus struct {
	ID        string    `json:"id" yaml:"id"`
	Type      string    `json:"type" yaml:"type"`
	Options   string    `json:"options" yaml:"options"`
	MountedAt time.Time `json:"mounted_at" yaml:"mounted_at"`
	LiveNodes int64     `json:"live_nodes" yaml:"live_nodes"`
	Magic     string    `json:"magic" yaml:"magic"`
}

// daemonStatus is the aggregate the status command renders.
type daemonStatus struct {
	Running bool          `json:"running" yaml:"running"`
	Healthy bool          `json:"healthy" yaml:"healthy"`
	Message string        `json:"message,omitempty" yaml:"message,omitempty"`
	Mounts  []mountStatus `json:"mounts,omitempty" yaml:"mounts,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := fetchStatus(statusAPIPort)

	printer := output.NewPrinter(os.Stdout, format)
	if format != output.FormatTable {
		return printer.Print(status)
	}

	if !status.Running {
		printer.Println(status.Message)
		return nil
	}

	health := "unhealthy"
	if status.Healthy {
		health = "healthy"
	}
	printer.Printf("Daemon: running (%s)\n\n", health)

	table := output.NewTableData("ID", "TYPE", "OPTIONS", "MOUNTED AT", "LIVE NODES")
	for _, m := range status.Mounts {
		opts := m.Options
		if opts == "" {
			opts = "-"
		}
		table.AddRow(
			m.ID,
			m.Type,
			opts,
			m.MountedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", m.LiveNodes),
		)
	}
	if len(status.Mounts) == 0 {
		printer.Println("No live mounts.")
		return nil
	}
	return output.PrintTable(os.Stdout, table)
}

// fetchStatus gathers daemon health and mounts from the admin API.
// A connection failure means the daemon is not running.
func fetchStatus(port int) daemonStatus {
	client := &http.Client{Timeout: 2 * time.Second}
	base := fmt.Sprintf("http://localhost:%d", port)

	status := daemonStatus{
		Message: "Daemon is not running",
	}

	resp, err := client.Get(base + "/health")
	if err != nil {
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	var health apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return status
	}
	status.Running = true
	status.Healthy = health.Status == "healthy"
	status.Message = ""

	mountsResp, err := client.Get(base + "/api/v1/mounts")
	if err != nil {
		return status
	}
	defer func() { _ = mountsResp.Body.Close() }()

	var wrapper apiResponse
	if err := json.NewDecoder(mountsResp.Body).Decode(&wrapper); err != nil {
		return status
	}
	_ = json.Unmarshal(wrapper.Data, &status.Mounts)
	return status
}
