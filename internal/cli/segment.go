package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var segmentJSON bool

// segmentCmd represents the segment command
var segmentCmd = &cobra.Command{
	Use:   "segment <source>",
	Short: "Show the units a document would be checked as",
	Long: `Segment prints the units a check would send to the search provider, without
sending anything. Useful for tuning segment.min_length, segment.min_words and
segment.window_size.

Example:
  originality segment essay.txt
  originality segment essay.txt --full-sentence=false --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		doc, err := p.LoadDocument(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load document: %w", err)
		}

		units, err := p.Segment(doc)
		if err != nil {
			return err
		}

		if segmentJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(units)
		}

		width := len(fmt.Sprint(len(units)))
		for _, u := range units {
			fmt.Printf("%s %s\n", dimStyle.Render(fmt.Sprintf("%*d", width, u.Index+1)), u.Text)
		}
		fmt.Fprintf(os.Stderr, "\n%d units (%s strategy)\n", len(units), cfg.Segment.Strategy())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(segmentCmd)
	segmentCmd.Flags().BoolVar(&segmentJSON, "json", false, "print units as JSON")
}
