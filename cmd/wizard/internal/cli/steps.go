package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/coursewizard/cmd/wizard/internal/ui"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the wizard steps and their fields",
	Args:  cobra.NoArgs,
	RunE:  runSteps,
}

var draftCmd = &cobra.Command{
	Use:   "draft <draft-id>",
	Short: "Print a saved draft as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraft,
}

func runSteps(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	backend, release, err := openBackend(ctx, 0)
	if err != nil {
		return err
	}
	defer release()

	resp, err := backend.Steps(ctx)
	if err != nil {
		return err
	}

	ui.PrintHeader(fmt.Sprintf("%s (%d steps)", resp.Table, resp.MaxSteps))
	for _, s := range resp.Steps {
		ui.PrintInfo(fmt.Sprintf("%d. %s  [%s]", s.Number, s.Title, strings.Join(nonEmpty(s.BackLabel, s.SubmitLabel), " | ")))
		if s.Note != "" {
			ui.PrintMuted(s.Note)
		}
		var rows [][]string
		for _, f := range s.Fields {
			rows = append(rows, []string{f.Name, string(f.Kind), strconv.FormatBool(f.Required), f.Label})
		}
		ui.PrintTable([]string{"FIELD", "KIND", "REQUIRED", "LABEL"}, rows)
		ui.PrintInfo("")
	}
	return nil
}

func runDraft(cmd *cobra.Command, args []string) error {
	draftID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || draftID <= 0 {
		return fmt.Errorf("invalid draft id %q", args[0])
	}

	ctx := cmd.Context()
	backend, release, err := openBackend(ctx, 0)
	if err != nil {
		return err
	}
	defer release()

	d, err := backend.GetDraft(ctx, draftID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
