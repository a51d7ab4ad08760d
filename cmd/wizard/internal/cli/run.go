package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/coursewizard/cmd/wizard/internal/ui"
	"github.com/example/coursewizard/internal/driver"
)

var (
	scope      int64
	resumeStep int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a new draft",
	Long: `Start a new wizard draft in a course and walk through its steps.

EXAMPLES:
  wizard run --scope 42`,
	Args: cobra.NoArgs,
	RunE: runWizard,
}

var resumeCmd = &cobra.Command{
	Use:   "resume <draft-id>",
	Short: "Resume a saved draft",
	Long: `Re-enter a saved draft with its values filled in. Without --step the
wizard opens at the draft's current step.

EXAMPLES:
  wizard resume 7
  wizard resume 7 --step 2`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	runCmd.Flags().Int64Var(&scope, "scope", 0, "course the draft belongs to")
	runCmd.MarkFlagRequired("scope")
	resumeCmd.Flags().IntVar(&resumeStep, "step", 0, "step to open")
	resumeCmd.Flags().Int64Var(&scope, "scope", 0, "course of the draft, for --db")
}

func newSession(backend driver.Backend, scope int64) *driver.Session {
	presenter := driver.NewTerminalPresenter(nil, os.Stdout)
	return driver.NewSession(backend, presenter, ui.Notifier{}, scope)
}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	backend, release, err := openBackend(ctx, scope)
	if err != nil {
		return err
	}
	defer release()

	out, err := newSession(backend, scope).Run(ctx)
	if err != nil {
		return err
	}
	report(out)
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	draftID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || draftID <= 0 {
		return fmt.Errorf("invalid draft id %q", args[0])
	}

	ctx := cmd.Context()
	backend, release, err := openBackend(ctx, scope)
	if err != nil {
		return err
	}
	defer release()

	out, err := newSession(backend, scope).Resume(ctx, draftID, resumeStep)
	if err != nil {
		return err
	}
	report(out)
	return nil
}

func report(out *driver.Outcome) {
	switch {
	case out.Submitted:
		ui.PrintInfo(fmt.Sprintf("Record: %d", out.DraftID))
	case out.DraftID != 0:
		ui.PrintInfo(fmt.Sprintf("Draft %d saved. Resume with: wizard resume %d", out.DraftID, out.DraftID))
	default:
		ui.PrintMuted("Closed without saving.")
	}
}
