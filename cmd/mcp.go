package cmd

import (
	"github.com/ArnoldoM23/pess/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the PESS MCP server",
	Long:  `Launch an MCP server that allows AI agents to score sessions, submit feedback, and query analytics via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Scoring headers and store banners stay off stdio,
		// which is reserved for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
