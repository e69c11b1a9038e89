package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/realibuddy/citecheck/internal/model"
)

var (
	auditTimeout time.Duration
	auditOut     string
	auditYAML    bool
	llmProvider  string
	llmModel     string
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit <file>",
	Short: "Audit the citations in a document",
	Long: `Audit extracts every academic citation from a document, resolves
each against bibliographic databases and verifies the text's claims
against the resolved records.

Reads from stdin when the file is "-".

Example:
  citecheck audit draft.txt
  citecheck audit draft.txt --out report.json
  citecheck audit - --yaml < draft.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 5*time.Minute, "overall audit timeout")
	auditCmd.Flags().StringVar(&auditOut, "out", "", "write the report to a file instead of stdout")
	auditCmd.Flags().BoolVar(&auditYAML, "yaml", false, "emit YAML instead of JSON")
	auditCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (gemini, openai, ollama)")
	auditCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runAudit(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	cfg, err := auditConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	auditor, err := buildAuditor(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	outcomes, err := auditor.Audit(ctx, text)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	return writeReport(outcomes)
}

// auditConfig loads configuration and applies the command's LLM overrides
// before API keys are resolved.
func auditConfig() (*model.Config, error) {
	if llmProvider != "" {
		viper.Set("llm.provider", llmProvider)
	}
	if llmModel != "" {
		viper.Set("llm.model", llmModel)
	}
	return loadConfig()
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func writeReport(v interface{}) error {
	var data []byte
	var err error
	if auditYAML {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if auditOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(auditOut, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", auditOut)
	}
	return nil
}
