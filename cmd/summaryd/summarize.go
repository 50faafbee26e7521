package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/notes-summarizer/constants"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
	"github.com/joseph-ayodele/notes-summarizer/internal/export"
)

var (
	flagOutput string
	flagXLSX   string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file|-]",
	Short: "summarize one note file (or stdin) and print the result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  doSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&flagOutput, "output", "o", "json", "output format: json or yaml")
	summarizeCmd.Flags().StringVar(&flagXLSX, "xlsx", "", "also write the result as an XLSX workbook to this path")
}

// summaryOutput is the CLI rendering of a finished job.
type summaryOutput struct {
	JobID       string             `json:"jobId" yaml:"jobId"`
	State       constants.JobState `json:"state" yaml:"state"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
	Language    string             `json:"language" yaml:"language"`
	Summary     string             `json:"summary" yaml:"summary"`
	Decisions   []string           `json:"decisions" yaml:"decisions"`
	ActionItems []string           `json:"actionItems" yaml:"actionItems"`
	Risks       []string           `json:"risks" yaml:"risks"`
}

func newSummaryOutput(id string, in entity.JobInput, st entity.JobStatus) summaryOutput {
	out := summaryOutput{JobID: id, State: st.State, Language: in.DetectedLanguage}
	if st.Error != nil {
		out.Error = *st.Error
	}
	res := entity.JobResult{}.Clone()
	if st.Result != nil {
		res = st.Result.Clone()
	}
	out.Summary = res.Summary
	out.Decisions = res.Decisions
	out.ActionItems = res.ActionItems
	out.Risks = res.Risks
	return out
}

func doSummarize(cmd *cobra.Command, args []string) error {
	if flagOutput != "json" && flagOutput != "yaml" {
		return fmt.Errorf("unsupported --output %q", flagOutput)
	}
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	id, err := a.jobs.Start(ctx, text)
	if err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(ctx, cfg.Jobs.Timeout+cfg.Cleaner.Timeout)
	defer cancel()
	if _, err := a.jobs.Wait(waitCtx, id); err != nil {
		return fmt.Errorf("wait for job %s: %w", id, err)
	}
	in, st, err := a.jobs.Job(id)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), flagOutput, newSummaryOutput(id, in, st)); err != nil {
		return err
	}
	if st.State != constants.JobStateDone {
		return fmt.Errorf("job %s ended in %s", id, st.State)
	}
	if flagXLSX != "" {
		b, err := export.RenderXLSX(id, in, st)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagXLSX, b, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		logger.Info("summarize.xlsx.written", "path", flagXLSX)
	}
	return nil
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read note: %w", err)
	}
	return string(b), nil
}

func writeOutput(w io.Writer, format string, out summaryOutput) error {
	switch strings.ToLower(format) {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}
