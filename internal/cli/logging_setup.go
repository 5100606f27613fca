package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/dfm-setup/internal/logging"
	"github.com/rshade/dfm-setup/pkg/version"
)

// setupLogging configures logging from the environment and CLI flags and
// stores a session-tagged logger in the command context.
func setupLogging(cmd *cobra.Command) logging.LogPathResult {
	cfg := logging.Config{Level: "info", Format: logging.FormatConsole}

	if envLevel := os.Getenv(logging.EnvLogLevel); envLevel != "" {
		cfg.Level = envLevel
	}

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		cfg.Level = "debug"
	} else {
		cfg.File, _ = cmd.Flags().GetString("log-file")
		if cfg.File == "" {
			if path, err := logging.DefaultLogFile(); err == nil {
				cfg.File = path
			}
		}
	}

	result := logging.NewLoggerWithPath(cfg, cmd.ErrOrStderr())
	logger := logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	sessionID := logging.NewSessionID()
	ctx := logging.WithSession(cmd.Context(), logger, sessionID)
	cmd.SetContext(ctx)

	logging.FromContext(ctx).Info().
		Str("command", cmd.Name()).
		Str("version", version.GetVersion()).
		Str("commit", version.GetGitCommit()).
		Str("build_date", version.GetBuildDate()).
		Msg("command started")

	return result
}
