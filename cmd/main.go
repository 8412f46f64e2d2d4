package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "duplink",
	Short: "Find and link duplicated passages in chronological document collections",
	Long: `duplink aligns every document against the documents written after it and
links each copied passage back to its earliest source.

Use "duplink run" for a one-shot run over a directory of documents, or
"duplink serve" to run the ingestion and detection service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode maps an error class onto the process exit status
func exitCode(err error) int {
	switch duplink.Classify(err) {
	case duplink.CodeConfig:
		return 2
	case duplink.CodeInvariant:
		return 3
	case duplink.CodeIO:
		return 4
	default:
		return 1
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(exitCode(err))
	}
}
