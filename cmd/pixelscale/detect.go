package main

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/pixelscale/internal/service"
	"github.com/spf13/cobra"
)

// NewDetectCmd creates the detect command.
func NewDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect INPUT",
		Short: "Print the detected upscale factor",
		Long: `Print the integer factor INPUT was upscaled by, without writing anything.

A factor of 1 means no scale could be established. With --json the full
analysis is printed: candidate run lengths, the reason for the result and,
for a disproved image, the location of the lone pixel.`,
		Args: cobra.ExactArgs(1),
		RunE: runDetectCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Print the full analysis as JSON")

	return cmd
}

func runDetectCmd(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}

	u, err := newUnscaler(cfg, log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	analysis, err := u.Detect(cmd.Context(), args[0], service.DetectOptions{
		IgnoreBorder:   cfg.IgnoreBorder,
		FirstFrameOnly: cfg.FirstFrameOnly,
	})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	fmt.Fprintln(cmd.OutOrStdout(), analysis.Stride)
	return nil
}
