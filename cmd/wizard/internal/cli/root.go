package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/coursewizard/client"
	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/driver"
	"github.com/example/coursewizard/internal/endpoint"
	"github.com/example/coursewizard/internal/service"
	"github.com/example/coursewizard/internal/steps"
	"github.com/example/coursewizard/internal/storage/sqlite"
)

var (
	serverAddr string
	token      string
	dbPath     string
	tableName  string
	tableFile  string
	userID     int64
)

var rootCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Fill in the course feedback wizard from a terminal",
	Long: `wizard walks through the steps of the course feedback wizard one at a time.

Progress is saved after every step, so a draft can be closed and resumed later.

The wizard talks to a wizardd server over gRPC by default. With --db it opens a
local database instead and acts as the user given by --user.

EXAMPLES:
  # Start a new draft in course 42 on a server
  wizard run --scope 42 --server localhost:50051 --token "$WIZARD_TOKEN"

  # Resume draft 7 at step 2
  wizard resume 7 --step 2

  # Work offline on a local database
  wizard run --scope 42 --db wizard.db --user 1`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&serverAddr, "server", envOr("WIZARD_SERVER", "localhost:50051"), "wizardd gRPC address")
	flags.StringVar(&token, "token", os.Getenv("WIZARD_TOKEN"), "identity token for the server")
	flags.StringVar(&dbPath, "db", "", "use a local database instead of a server")
	flags.StringVar(&tableName, "table", "feedback", "built-in step table for --db")
	flags.StringVar(&tableFile, "table-file", "", "YAML step table for --db")
	flags.Int64Var(&userID, "user", 0, "user id for --db")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(tokenCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openBackend connects to the server, or opens the local database when
// --db is set. The returned function releases it.
func openBackend(ctx context.Context, scope int64) (driver.Backend, func(), error) {
	if dbPath == "" {
		w, err := client.Dial(serverAddr, token)
		if err != nil {
			return nil, nil, err
		}
		return w, func() { w.Close() }, nil
	}

	if userID <= 0 {
		return nil, nil, fmt.Errorf("--user is required with --db")
	}
	table, err := steps.Resolve(tableName, tableFile)
	if err != nil {
		return nil, nil, err
	}
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to migrate %s: %w", dbPath, err)
	}

	svc := service.NewWizard(store, table, auth.ClaimsAuthorizer{})
	identity := auth.Identity{UserID: userID}
	if scope > 0 {
		identity.Scopes = []int64{scope}
	}
	return client.NewLocal(endpoint.MakeEndpoints(svc), identity), func() { store.Close() }, nil
}
