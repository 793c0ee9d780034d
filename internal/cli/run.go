package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pmctrack/internal/report"
	"pmctrack/internal/summary"
)

var (
	runTokensFile    string
	runSkipArtifacts bool
)

var runCmd = &cobra.Command{
	Use:   "run [tokens...]",
	Short: "Scrape a batch of complaint tokens",
	Long: `Run searches each token on the portal in input order, persists the
results and writes JSON/CSV/PNG report artifacts.

Individual token failures are recorded in the report; the command only
exits non-zero when the run itself cannot happen (bad configuration,
browser session failure, storage failure).`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := args
		if runTokensFile != "" {
			fileTokens, err := readTokensFile(runTokensFile)
			if err != nil {
				return err
			}
			tokens = append(tokens, fileTokens...)
		}
		if len(tokens) == 0 {
			return fmt.Errorf("no tokens given: pass them as arguments or via --file")
		}

		ctx := cmd.Context()
		deps, err := setup(ctx)
		if err != nil {
			return err
		}
		defer deps.close()

		batch := deps.pipeline.Run(deps.session.Context(), tokens)
		rep := report.Build(batch)
		rep.PrintSummary()

		if !runSkipArtifacts {
			writeArtifacts(ctx, deps, rep)
		}

		if err := deps.notifier.SendBatchSummary(ctx, rep); err != nil {
			log.Println("⚠️  Failed to send Telegram summary:", err)
		}

		// Per-token failures are already in the report; only a run that
		// could not happen at all exits non-zero.
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runTokensFile, "file", "f", "", "file with one token per line")
	runCmd.Flags().BoolVar(&runSkipArtifacts, "no-artifacts", false, "skip writing JSON/CSV/PNG report files")
}

// writeArtifacts writes the report files; failures are logged, never
// fatal, since the data is already persisted.
func writeArtifacts(ctx context.Context, deps *runtimeDeps, rep *report.Report) {
	dir := deps.cfg.ReportDir

	if path, err := rep.WriteJSON(dir); err != nil {
		log.Println("⚠️  Failed to write JSON report:", err)
	} else {
		log.Println("📄 JSON report:", path)
	}

	if path, err := rep.WriteCSV(dir); err != nil {
		log.Println("⚠️  Failed to write CSV report:", err)
	} else {
		log.Println("📄 CSV report:", path)
	}

	png, err := summary.RenderTable(rep)
	if err != nil {
		log.Println("⚠️  Failed to render summary image:", err)
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("pmctrack_summary_%s.png", rep.StartedAt.Format("20060102_150405")))
	if err := os.WriteFile(path, png, 0644); err != nil {
		log.Println("⚠️  Failed to write summary image:", err)
	} else {
		log.Println("🖼️  Summary image:", path)
	}
	if err := deps.notifier.SendSummaryImage(ctx, png, "PMC complaint batch summary"); err != nil {
		log.Println("⚠️  Failed to send summary image:", err)
	}
}
