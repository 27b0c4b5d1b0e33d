package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hardtopnet/image-desc-search/config"
	"github.com/hardtopnet/image-desc-search/store"
)

var (
	searchInput      string
	searchQuery      string
	searchOutput     string
	searchOutputFile string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search indexed descriptions from the command line",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchInput, "input", "i", "", "directory to search under")
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search terms, matched against descriptions")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "output type: text or json")
	searchCmd.Flags().StringVar(&searchOutputFile, "file", "", "write results to a file instead of stdout")
	searchCmd.MarkFlagRequired("input")
	searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)
}

// searchPayload is the json output shape. It mirrors the text output plus
// enough request context to make saved result files self-describing.
type searchPayload struct {
	Mode    string        `json:"mode"`
	DB      string        `json:"db"`
	Input   string        `json:"input"`
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	Matches []store.Match `json:"matches"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	output := cfg.OutputType
	if searchOutput != "" {
		output = searchOutput
	}
	if output != "text" && output != "json" {
		return fmt.Errorf("invalid output type: %s", output)
	}

	dbPath, err := config.DBPath()
	if err != nil {
		return err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		return err
	}

	matches, err := store.Search(cmd.Context(), db, searchInput, searchQuery)
	if err != nil {
		return err
	}

	var out string
	if output == "json" {
		out, err = formatJSON(dbPath, searchInput, searchQuery, matches)
		if err != nil {
			return err
		}
	} else {
		out = formatText(matches)
	}

	if searchOutputFile != "" {
		if err := os.WriteFile(searchOutputFile, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote results to: %s\n", searchOutputFile)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func formatText(matches []store.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Matches: %d\n\n", len(matches))
	for _, m := range matches {
		b.WriteString(m.Path)
		b.WriteByte('\n')
		b.WriteString(m.Description)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func formatJSON(dbPath, input, query string, matches []store.Match) (string, error) {
	if matches == nil {
		matches = []store.Match{}
	}
	payload := searchPayload{
		Mode:    "search",
		DB:      dbPath,
		Input:   input,
		Query:   query,
		Count:   len(matches),
		Matches: matches,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
