package cli

import (
	"os"

	"github.com/spf13/cobra"

	"pmctrack/internal/handler"
)

var invokeInput string

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run a batch from a JSON request and print a JSON response",
	Long: `Invoke reads a JSON request ({"tokens": ["T60137", ...]}) from stdin
or --input, runs the batch, and prints the JSON response on stdout.
Logs go to stderr so the output stays machine-readable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if invokeInput != "" {
			file, err := os.Open(invokeInput)
			if err != nil {
				return err
			}
			defer file.Close()
			in = file
		}

		ctx := cmd.Context()
		deps, err := setup(ctx)
		if err != nil {
			return err
		}
		defer deps.close()

		h := handler.New(&sessionRunner{deps: deps})
		return h.Handle(ctx, in, cmd.OutOrStdout())
	},
}

func init() {
	invokeCmd.Flags().StringVarP(&invokeInput, "input", "i", "", "JSON request file (default stdin)")
}
