package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quizgen-service/internal/domain"
	"quizgen-service/internal/extract"
)

type extractOutput struct {
	Dialect   string            `json:"dialect"`
	Count     int               `json:"count"`
	Questions []domain.Question `json:"questions"`
}

// NewExtractCmd runs the question extractor over a file or stdin and prints
// the recovered questions as JSON. Handy for checking model output by hand.
func NewExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract quiz questions from generated text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runExtract(in, cmd.OutOrStdout())
		},
	}
}

func runExtract(in io.Reader, out io.Writer) error {
	var buf strings.Builder
	if _, err := io.Copy(&buf, in); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	questions, dialect := extract.New().ExtractWithDialect(buf.String())
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(extractOutput{
		Dialect:   dialect,
		Count:     len(questions),
		Questions: questions,
	})
}
