package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scrypster/docgraph/internal/extraction"
)

func (c *cli) ingestCmd() *cobra.Command {
	var docType string
	cmd := &cobra.Command{
		Use:     "ingest PATH...",
		GroupID: "build",
		Short:   "Extract documents into the graph",
		Long: `Extract one or more files into the graph. A directory argument ingests
every .txt and .md file directly inside it.

YAML frontmatter with "name" or "document_type" keys overrides the file
name and --type for that file.

Examples:
  docgraph ingest "Bank Loan Approval Policy.txt" --type banking_policy
  docgraph ingest notes/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var summaries []*extraction.Summary
			var failed []string
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				if info.IsDir() {
					res, err := c.svc.IngestDirectory(path, docType)
					if err != nil {
						return err
					}
					summaries = append(summaries, res.Documents...)
					failed = append(failed, res.Errors...)
					continue
				}
				sum, err := c.svc.IngestFile(path, docType)
				if err != nil {
					return err
				}
				summaries = append(summaries, sum)
			}
			if err := c.save(); err != nil {
				return err
			}
			return c.emit(cmd, summaries, func(w io.Writer) {
				for _, s := range summaries {
					printSummary(w, s)
				}
				for _, e := range failed {
					fmt.Fprintf(w, "skipped %s\n", e)
				}
			})
		},
	}
	cmd.Flags().StringVar(&docType, "type", extraction.DocumentTypeGeneric, "document type: banking_policy or generic")
	return cmd
}

func (c *cli) samplesCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:     "samples",
		GroupID: "build",
		Short:   "Load the bundled bank policy documents",
		Long: `Write the three sample bank policies into the sample directory when it
is missing or holds no .txt files, then extract every .txt file in it as a
banking policy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.svc.LoadSamples(dir)
			if err != nil {
				return err
			}
			if err := c.save(); err != nil {
				return err
			}
			return c.emit(cmd, res, func(w io.Writer) {
				if res.Seeded {
					fmt.Fprintf(w, "Seeded sample documents into %s\n", res.Directory)
				}
				for _, s := range res.Documents {
					printSummary(w, s)
				}
				for _, e := range res.Errors {
					fmt.Fprintf(w, "skipped %s\n", e)
				}
				fmt.Fprintf(w, "%d of %d files processed\n", res.FilesProcessed, res.FilesFound)
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "sample directory (default: storage.sample_dir)")
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	var docType string
	cmd := &cobra.Command{
		Use:     "watch DIR",
		GroupID: "build",
		Short:   "Ingest files as they appear in a directory",
		Long: `Watch DIR and ingest every .txt or .md file created in it until
interrupted. The graph is saved after each file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			w, err := c.svc.Watch(args[0], docType, func(path string, sum *extraction.Summary, err error) {
				if err != nil {
					log.Printf("watch: %s: %v", path, err)
					return
				}
				printSummary(out, sum)
				if err := c.save(); err != nil {
					log.Printf("watch: save: %v", err)
				}
			})
			if err != nil {
				return err
			}
			defer w.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", args[0])
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&docType, "type", extraction.DocumentTypeGeneric, "document type for new files")
	return cmd
}

func printSummary(w io.Writer, s *extraction.Summary) {
	fmt.Fprintf(w, "Processed %s (%s): %d entities, %d relationships, %d chunks\n",
		s.DocumentName, s.DocumentType, len(s.EntityIDs), len(s.RelationshipIDs), len(s.ChunkIDs))
}

// joinArgs turns the remaining arguments into one question.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
