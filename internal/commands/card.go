package commands

import (
	"fmt"
	"io"
	"os"

	"bestcard/internal/app"
	"bestcard/internal/cardimport"

	"github.com/spf13/cobra"
)

func newCardCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage card policies",
	}
	cmd.AddCommand(newCardAddCommand(e))
	return cmd
}

func newCardAddCommand(e *env) *cobra.Command {
	var fromFile string
	var noRaw bool

	cmd := &cobra.Command{
		Use:   "add [description]",
		Short: "Import a card from a natural-language description",
		Long: "Sends the description to the completion model, normalizes percentages " +
			"(9 -> 0.09), validates the result and upserts it into the configured store.\n" +
			"The description comes from the argument, --file, or stdin (\"-\").",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, err := readDescription(cmd.InOrStdin(), args, fromFile)
			if err != nil {
				return err
			}

			store, closeStore, err := app.NewStore(cmd.Context(), e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer closeStore()

			rawDir := e.cfg.RAGRawDir
			if noRaw {
				rawDir = ""
			}
			importer := cardimport.NewImporter(app.LLMClient(e.cfg, e.logger), store, rawDir, e.logger)
			res, err := importer.Import(cmd.Context(), description)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved card %s (%s) with %d reward rule(s)\n",
				res.Card.CardID, res.Card.CardName, len(res.Card.RewardRules))
			if res.RawPath != "" {
				fmt.Fprintf(out, "Raw description saved to %s; run `bestcard ingest` to refresh chunks\n", res.RawPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "read the description from a file")
	cmd.Flags().BoolVar(&noRaw, "no-raw", false, "do not save the description to RAG_RAW_DIR")
	return cmd
}

func readDescription(stdin io.Reader, args []string, fromFile string) (string, error) {
	switch {
	case fromFile != "":
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("read description: %w", err)
		}
		return string(data), nil
	case len(args) == 1 && args[0] != "-":
		return args[0], nil
	case len(args) == 1:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("description required: pass it as an argument, --file, or \"-\" for stdin")
	}
}
