package main

import (
	"io"

	"github.com/ironsheep/pixelscale/internal/server"
	"github.com/spf13/cobra"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server on stdin and stdout",
		Long: `Serve the Model Context Protocol over stdio so MCP clients can detect
and undo pixel art upscaling. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: runMCPCmd,
	}
}

func runMCPCmd(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// stdout carries the protocol, so progress lines are dropped.
	u, err := newUnscaler(cfg, log, io.Discard)
	if err != nil {
		return err
	}

	log.Info("mcp server starting")
	return server.New(u, log, getVersion()).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}
