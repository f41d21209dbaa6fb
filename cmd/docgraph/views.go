package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scrypster/docgraph/internal/engine"
	"github.com/scrypster/docgraph/internal/render"
)

func (c *cli) queryCmd() *cobra.Command {
	var evidence, trace bool
	cmd := &cobra.Command{
		Use:     "query QUESTION...",
		GroupID: "views",
		Short:   "Answer a question from the graph",
		Example: `  docgraph query What is the minimum credit score for a loan?`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := c.svc.Query
			if trace {
				query = c.svc.Explain
			}
			res := query(joinArgs(args))
			return c.emit(cmd, res, func(w io.Writer) {
				fmt.Fprintln(w, res.Answer)
				if trace {
					printTrace(w, res.Trace)
				}
				if !evidence {
					return
				}
				fmt.Fprintf(w, "\nRelevant entities (%d):\n", len(res.Entities))
				for _, e := range res.Entities {
					fmt.Fprintf(w, "  %s  %s (%s)\n", e.ID, e.Name, e.Type)
				}
				fmt.Fprintf(w, "\nRelevant chunks (%d):\n", len(res.Chunks))
				for _, sc := range res.Chunks {
					fmt.Fprintf(w, "  %.2f  %s\n", sc.Similarity, snippet(sc.Chunk.Text, 100))
				}
			})
		},
	}
	cmd.Flags().BoolVar(&evidence, "evidence", false, "also list matching entities and chunks")
	cmd.Flags().BoolVar(&trace, "trace", false, "show how the answer was reached")
	return cmd
}

func (c *cli) examplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "examples",
		GroupID: "views",
		Short:   "Suggest questions the graph can answer",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			questions := c.svc.ExampleQuestions()
			return c.emit(cmd, questions, func(w io.Writer) {
				for _, q := range questions {
					fmt.Fprintf(w, "- %s\n", q)
				}
			})
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		GroupID: "views",
		Short:   "Show entity and relationship counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := c.svc.Store().Stats()
			return c.emit(cmd, st, func(w io.Writer) {
				fmt.Fprintf(w, "Entities:      %d\n", st.EntityCount)
				fmt.Fprintf(w, "Relationships: %d\n", st.RelationshipCount)
				fmt.Fprintf(w, "Text chunks:   %d\n", st.TextChunkCount)
				printCounts(w, "Entity types", st.EntityTypes)
				printCounts(w, "Relationship types", st.RelationshipTypes)
			})
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	var (
		opts   render.Options
		entity string
		depth  int
	)
	cmd := &cobra.Command{
		Use:     "show",
		GroupID: "views",
		Short:   "Render the graph in the terminal",
		Long: `Render every entity as a table coloured by type, followed by the
relationships. With --entity, render that entity's neighbourhood as a tree
instead.`,
		Example: `  docgraph show --type Requirement
  docgraph show --entity entity-1a2b3c4d --depth 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.Width == 0 {
				opts.Width = terminalWidth(out)
			}
			if entity == "" {
				fmt.Fprint(out, render.Graph(c.svc.Store(), opts))
				return nil
			}
			n, err := c.svc.Neighborhood(cmd.Context(), entity, depth)
			if err != nil {
				return err
			}
			fmt.Fprint(out, render.Neighborhood(n))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Type, "type", "", "only list entities of this type")
	cmd.Flags().StringSliceVar(&opts.Highlight, "highlight", nil, "entity IDs to highlight")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "maximum table width (default: terminal width)")
	cmd.Flags().StringVar(&entity, "entity", "", "render the neighbourhood of this entity ID")
	cmd.Flags().IntVar(&depth, "depth", 2, "hops to follow with --entity")
	return cmd
}

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "chat PROMPT...",
		GroupID:     "views",
		Short:       "Ask the LLM assistant",
		Long:        `Send a prompt to the configured LLM, prefixed with the current graph size.`,
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{annotationAssistant: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := c.svc.Ask(cmd.Context(), joinArgs(args))
			if err != nil {
				return err
			}
			resp := map[string]string{"answer": answer, "model": c.svc.AssistantModel()}
			return c.emit(cmd, resp, func(w io.Writer) {
				fmt.Fprintln(w, answer)
			})
		},
	}
}

// terminalWidth is the column count of w when it is a terminal, else zero.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

func printTrace(w io.Writer, events []engine.TraceEvent) {
	fmt.Fprintln(w, "\nTrace:")
	for _, e := range events {
		switch e.Kind {
		case engine.KindQueryStarted:
			fmt.Fprintf(w, "  keywords: %s\n", strings.Join(e.Keywords, " "))
		case engine.KindEntitiesMatched:
			fmt.Fprintf(w, "  entities matched: %d\n", e.Count)
		case engine.KindChunkScored:
			fmt.Fprintf(w, "  chunk %s scored %.2f\n", e.ChunkID, e.Score)
		case engine.KindChunksRanked:
			fmt.Fprintf(w, "  chunks kept: %d\n", e.Count)
		case engine.KindAnswerSelected:
			fmt.Fprintf(w, "  answer: %s\n", e.Strategy)
		}
	}
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-20s %d\n", k, counts[k])
	}
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
