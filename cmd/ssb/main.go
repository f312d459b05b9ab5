package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"ssb-go/internal/app"
	"ssb-go/internal/config"
	"ssb-go/internal/ssb"

	"github.com/spf13/cobra"
)

// fatalDelay keeps the error on screen when the console window closes on exit.
const fatalDelay = 5 * time.Second

// legacyNoInputArg is the single-dash switch older versions took. pflag
// would read it as a bundle of short flags, so it is removed before parsing.
const legacyNoInputArg = "-noinput"

var noInput bool

func main() {
	args, legacy := stripLegacyNoInput(os.Args[1:])
	if legacy {
		noInput = true
	}
	rootCmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Println(app.DescribeError(err))
		time.Sleep(fatalDelay)
		os.Exit(1)
	}
}

// stripLegacyNoInput removes every exact "-noinput" argument and reports
// whether there was one.
func stripLegacyNoInput(args []string) ([]string, bool) {
	out := make([]string, 0, len(args))
	found := false
	for _, a := range args {
		if a == legacyNoInputArg {
			found = true
			continue
		}
		out = append(out, a)
	}
	return out, found
}

// session bundles what a command needs to talk to the user.
type session struct {
	app      *app.SSBApp
	console  *app.Console
	prompter *app.Prompter // nil when input is disabled
}

// newSession loads the settings, prompting for them when needed, and
// creates an SSBApp. The caller must defer s.app.Close().
// operation identifies the CLI command being run (e.g. "Backup", "RefreshAppIDs").
func newSession(ctx context.Context, operation string) (*session, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	console := app.NewStdoutConsole()
	var prompter *app.Prompter
	if !noInput {
		prompter = app.NewPrompter(os.Stdin, console)
	}

	cfg, err := app.LoadOrPromptConfig(defaults["config_path"], defaults["base_dir"], prompter)
	if err != nil {
		return nil, err
	}

	a, err := app.NewSSBApp(ctx, cfg, operation, console)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return &session{app: a, console: console, prompter: prompter}, nil
}

var rootCmd = &cobra.Command{
	Use:           "ssb",
	Short:         "Back up Steam screenshots into one folder per game",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), "Backup")
		if err != nil {
			return err
		}
		defer s.app.Close()

		summary, err := s.app.Backup(cmd.Context())
		if err != nil {
			return err
		}

		if summary.Failed > 0 || summary.Unreadable > 0 {
			s.console.Notice(fmt.Sprintf("%d file(s) could not be copied and %d folder(s) could not be read; see the log for details.",
				summary.Failed, summary.Unreadable))
		}

		if s.prompter != nil {
			s.console.Notice("Done! Press ENTER to exit!")
			return s.prompter.WaitForEnter()
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		steamFolder, _ := cmd.Flags().GetString("steam-folder")
		if steamFolder == "" {
			steamFolder = app.DefaultSteamFolder()
		}
		targetFolder, _ := cmd.Flags().GetString("target-folder")

		// Create config with defaults
		cfg := config.NewConfig(defaults["base_dir"], steamFolder, targetFolder)

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Steam Folder:  %s\n", cfg.SteamFolder)
		fmt.Printf("Target Folder: %s\n", cfg.TargetFolder)
		if err := cfg.Validate(); err != nil {
			fmt.Printf("Edit the file before backing up: %v\n", err)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		config.ApplyDefaults(cfg, defaults["base_dir"])
		if cfg.Target.S3SecretAccessKey != "" {
			cfg.Target.S3SecretAccessKey = "********"
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

// appids command
var appidsCmd = &cobra.Command{
	Use:   "appids",
	Short: "Manage the cached Steam app list",
}

var appidsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Download the app list now",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), "RefreshAppIDs")
		if err != nil {
			return err
		}
		defer s.app.Close()

		n, err := s.app.RefreshAppIDs(cmd.Context())
		if err != nil {
			return fmt.Errorf("refreshing app list: %w", err)
		}

		fmt.Printf("App list holds %d app(s)\n", n)
		return nil
	},
}

var appidsLookupCmd = &cobra.Command{
	Use:   "lookup APPID",
	Short: "Show the name and backup folder for an app id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid app id %q: %w", args[0], ssb.ErrConfig)
		}

		s, err := newSession(cmd.Context(), "LookupApp")
		if err != nil {
			return err
		}
		defer s.app.Close()

		name, folder, found, err := s.app.LookupApp(cmd.Context(), uint32(id))
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("AppID %d is not in the app list; its screenshots are skipped.\n", id)
			return nil
		}

		fmt.Printf("%d  %s  -> %s\n", id, name, folder)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View backup run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		runID, _ := cmd.Flags().GetString("run")

		s, err := newSession(cmd.Context(), "GetHistory")
		if err != nil {
			return err
		}
		defer s.app.Close()

		if runID != "" {
			return printRunCopies(s.app, runID)
		}

		runs, err := s.app.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No backup runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt != nil {
				d := r.FinishedAt.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("%s  %-13s  %s  %-7s  games:%d copied:%d skipped:%d failed:%d  %s\n",
				r.ID,
				r.Operation,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				r.Games,
				r.Copied,
				r.Skipped,
				r.Failed,
				duration,
			)
		}
		return nil
	},
}

func printRunCopies(a *app.SSBApp, runID string) error {
	copies, err := a.GetRunCopies(runID)
	if err != nil {
		return err
	}

	if len(copies) == 0 {
		fmt.Printf("Run %s copied no files.\n", runID)
		return nil
	}

	for _, c := range copies {
		fmt.Printf("%s  %-8d  %s/%s  %d  %s\n",
			c.CopiedAt.Local().Format("2006-01-02 15:04:05"),
			c.AppID,
			c.GameName,
			c.FileName,
			c.Size,
			c.SourcePath,
		)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "Never prompt or wait for ENTER (same as -noinput)")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("steam-folder", "", "Steam userdata folder (default: detected install)")
	configInitCmd.Flags().String("target-folder", "", "Folder to copy screenshots to")

	// appids subcommands
	appidsCmd.AddCommand(appidsRefreshCmd)
	appidsCmd.AddCommand(appidsLookupCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(appidsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	historyCmd.Flags().String("run", "", "List the files copied by one run")
}
