// Command docgraph builds a knowledge graph from documents and answers
// questions about it from the terminal.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrypster/docgraph/internal/config"
	"github.com/scrypster/docgraph/internal/llm"
	"github.com/scrypster/docgraph/internal/logging"
	"github.com/scrypster/docgraph/internal/services"
	"github.com/scrypster/docgraph/internal/storage/memory"
)

// annotationAssistant marks commands that need the LLM assistant.
const annotationAssistant = "assistant"

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	jsonOutput bool

	cfg       *config.Config
	svc       *services.GraphService
	logCloser io.Closer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "docgraph",
		Short: "Build and query a knowledge graph of policy documents",
		Long: `docgraph extracts entities and relationships from documents into a
knowledge graph stored as JSON, and answers questions against it.

Every command loads the configured graph file first; commands that change
the graph save it again before exiting.`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.open,
		PersistentPostRunE: c.close,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (defaults plus DOCGRAPH_* environment when empty)")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "print machine-readable JSON")

	root.AddGroup(
		&cobra.Group{ID: "build", Title: "Building the graph:"},
		&cobra.Group{ID: "views", Title: "Querying the graph:"},
		&cobra.Group{ID: "maint", Title: "Maintenance:"},
	)
	root.AddCommand(
		c.ingestCmd(), c.samplesCmd(), c.watchCmd(),
		c.queryCmd(), c.examplesCmd(), c.statsCmd(), c.showCmd(), c.chatCmd(), c.mcpCmd(),
		c.exportCmd(), c.importCmd(), c.clearCmd(), c.backupsCmd(),
	)
	return root
}

// open loads configuration and the persisted graph.
func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	store := memory.NewGraphStore()
	var assistant *llm.Assistant
	if cmd.Annotations[annotationAssistant] == "true" {
		if assistant, err = services.NewAssistant(cfg.LLM, store); err != nil {
			closer.Close()
			return err
		}
	}
	svc := services.NewGraphService(cfg, store, assistant)
	if _, err := svc.Load(""); err != nil {
		closer.Close()
		return err
	}

	c.cfg, c.svc, c.logCloser = cfg, svc, closer
	return nil
}

func (c *cli) close(*cobra.Command, []string) error {
	if c.logCloser != nil {
		return c.logCloser.Close()
	}
	return nil
}

// save persists the graph to the configured file.
func (c *cli) save() error {
	return c.svc.Save("")
}

// emit prints v as JSON when --json is set, otherwise calls text.
func (c *cli) emit(cmd *cobra.Command, v interface{}, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if c.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
