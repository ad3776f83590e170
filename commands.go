package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"edusolver/config"
	"edusolver/mcp"
	"edusolver/model"
	"edusolver/provider"
	"edusolver/server"
	"edusolver/storage"
	"edusolver/ui"
)

// App carries the dependencies of every command so tests can swap them.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	LoadConfig  func() (*config.Config, error)
	NewProvider func(cfg *config.Config) (model.Provider, error)
	OpenHistory func(dataDir string) (*storage.HistoryStore, error)
}

func DefaultApp() *App {
	return &App{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		LoadConfig:  config.Load,
		NewProvider: provider.InitializeProvider,
		OpenHistory: storage.NewHistoryStore,
	}
}

// setup loads the configuration and starts the debug log.
func (app *App) setup() (*config.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.InitDebugLog(cfg.DataDir())
	return cfg, nil
}

// openHistory never fails the command: without a history store solves still
// work, they are just not recorded.
func (app *App) openHistory(cfg *config.Config) *storage.HistoryStore {
	store, err := app.OpenHistory(cfg.DataDir())
	if err != nil {
		config.DebugLog.Warnw("history unavailable", "error", err)
		fmt.Fprintf(app.Err, "Warning: history disabled: %v\n", err)
		return nil
	}
	return store
}

// requireProvider turns a missing credential into a readable command error.
func (app *App) requireProvider(cfg *config.Config) (model.Provider, error) {
	p, err := app.NewProvider(cfg)
	var credErr *config.CredentialError
	if errors.As(err, &credErr) {
		return nil, fmt.Errorf("%s API key missing: set %s or choose another provider in %s",
			config.GetProviderDisplayName(credErr.Provider),
			strings.Join(credErr.EnvVars, " or "),
			config.GetConfigFilePath())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return p, nil
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edusolver",
		Short: "Multi-agent STEM problem solver and tutor",
		Long: `EduSolver solves STEM problems step by step with a validated alternative
method, and tutors you through follow-up questions.

Run without arguments for the terminal UI.

Examples:
  edusolver solve "Find the roots of x^2 - 5x + 6 = 0"
  edusolver solve --mode quick --image homework.png
  edusolver serve --addr :8080`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}

	cmd.AddCommand(
		newSolveCmd(app),
		newChatCmd(app),
		newServeCmd(app),
		newMCPCmd(app),
		newHistoryCmd(app),
	)
	return cmd
}

func runTUI(ctx context.Context, app *App) error {
	cfg, err := app.setup()
	if err != nil {
		return err
	}
	defer config.SyncDebugLog()

	p, err := app.NewProvider(cfg)
	var credErr *config.CredentialError
	if errors.As(err, &credErr) {
		_, err := tea.NewProgram(ui.NewCredentialModal(credErr), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	history := app.openHistory(cfg)
	if history != nil {
		defer history.Close()
	}

	dataModel := model.NewModel(cfg, p, history, nil, Version)
	defer dataModel.Shutdown()

	prog := tea.NewProgram(ui.NewAppView(dataModel), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running edusolver: %w", err)
	}
	return nil
}

type solveOptions struct {
	mode     string
	image    string
	jsonOut  bool
	width    int
	noRecord bool
}

func newSolveCmd(app *App) *cobra.Command {
	var opts solveOptions
	cmd := &cobra.Command{
		Use:   "solve [prompt]",
		Short: "Solve one problem and print the solution",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context(), app, strings.Join(args, " "), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "solve mode: quick or deep (default from config)")
	cmd.Flags().StringVarP(&opts.image, "image", "i", "", "path to an image of the problem")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the solution as JSON")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 100, "wrap width for rendered output")
	cmd.Flags().BoolVar(&opts.noRecord, "no-history", false, "do not record the solve")
	return cmd
}

func runSolve(ctx context.Context, app *App, prompt string, opts solveOptions) error {
	cfg, err := app.setup()
	if err != nil {
		return err
	}
	defer config.SyncDebugLog()

	modeName := opts.mode
	if modeName == "" {
		modeName = cfg.DefaultMode
	}
	mode, err := model.ParseMode(modeName)
	if err != nil {
		return err
	}

	in := model.SolveInput{Prompt: prompt, Mode: mode}
	if opts.image != "" {
		img, err := model.LoadImage(opts.image)
		if err != nil {
			return err
		}
		in.Image = img
	}
	if in.IsEmpty() {
		return model.ErrEmptyInput
	}

	p, err := app.requireProvider(cfg)
	if err != nil {
		return err
	}

	req, err := model.BuildRequest(in, provider.ModelsFor(cfg))
	if err != nil {
		return err
	}

	pipeline := model.NewPipeline(p, model.NoChoreography)
	pipeline.Timeout = cfg.RequestTimeout.Duration

	fmt.Fprintf(app.Err, "%s with %s (%s)\n", mode.Label(), config.GetProviderDisplayName(cfg.Provider), req.Model)
	sol, err := pipeline.Run(ctx, "cli", req, func(ev model.Event) {
		if adv, ok := ev.(model.StageAdvanced); ok {
			fmt.Fprintf(app.Err, "  %s...\n", adv.Stage)
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		config.DebugLog.Errorw("cli solve failed", "kind", model.FailureKind(err), "error", err)
		return errors.New(model.SolveFailureText)
	}

	if !opts.noRecord {
		if history := app.openHistory(cfg); history != nil {
			defer history.Close()
			rec, err := model.NewHistoryRecord(req, sol, p.Name())
			if err == nil {
				err = history.Save(rec)
			}
			if err != nil {
				config.DebugLog.Warnw("failed to record solve", "error", err)
			}
		}
	}

	if opts.jsonOut {
		enc := json.NewEncoder(app.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(sol)
	}
	fmt.Fprintln(app.Out, ui.RenderMarkdown(sol.Markdown(), opts.width))
	return nil
}

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the tutor line by line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), app)
		},
	}
}

// runChat reads one message per line and streams each reply as it arrives.
// The conversation is kept in a Session so failed replies follow the same
// rules as the TUI.
func runChat(ctx context.Context, app *App) error {
	cfg, err := app.setup()
	if err != nil {
		return err
	}
	defer config.SyncDebugLog()

	p, err := app.requireProvider(cfg)
	if err != nil {
		return err
	}

	tutor := model.NewTutor(p, provider.ModelsFor(cfg).Chat)
	tutor.Timeout = cfg.RequestTimeout.Duration
	session := model.NewSession(model.ModeDeep, cfg.Chat.KeepPartialReplies)

	if greeting, ok := session.LastReply(); ok {
		fmt.Fprintf(app.Out, "tutor> %s\n", greeting.Text)
	}

	scanner := bufio.NewScanner(app.In)
	for {
		fmt.Fprint(app.Out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(app.Out)
			return scanner.Err()
		}
		sent, err := session.BeginChat(scanner.Text())
		if err != nil {
			continue
		}

		history := session.History()
		session = session.Apply(sent)

		fmt.Fprint(app.Out, "tutor> ")
		printed := 0
		tutor.Send(ctx, sent.RunID, history, sent.Message.Text, func(ev model.Event) {
			session = session.Apply(ev)
			switch ev := ev.(type) {
			case model.ChatChunk:
				fmt.Fprint(app.Out, ev.Text[printed:])
				printed = len(ev.Text)
			case model.ChatFailed:
				if printed > 0 {
					fmt.Fprintln(app.Out)
				}
				fmt.Fprint(app.Out, ev.Fallback.Text)
			}
		})
		fmt.Fprintln(app.Out)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver and tutor over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.setup()
			if err != nil {
				return err
			}
			defer config.SyncDebugLog()

			p, err := app.NewProvider(cfg)
			var credErr *config.CredentialError
			if err != nil && !errors.As(err, &credErr) {
				return fmt.Errorf("failed to create provider: %w", err)
			}
			if credErr != nil {
				fmt.Fprintf(app.Err, "Warning: %v; /api/solve and /api/chat will answer 503\n", credErr)
			}

			history := app.openHistory(cfg)
			if history != nil {
				defer history.Close()
			}

			if addr == "" {
				addr = cfg.Server.Address
			}
			fmt.Fprintf(app.Err, "Listening on http://%s\n", addr)
			return server.New(cfg, p, history, err).Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newMCPCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve solve_problem and solve_history as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.setup()
			if err != nil {
				return err
			}
			defer config.SyncDebugLog()

			p, err := app.requireProvider(cfg)
			if err != nil {
				return err
			}
			history := app.openHistory(cfg)
			if history != nil {
				defer history.Close()
			}

			return mcp.NewToolServer(cfg, p, history, Version).Serve(cmd.Context(), app.In, app.Out)
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List solved problems, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.setup()
			if err != nil {
				return err
			}
			history, err := app.OpenHistory(cfg.DataDir())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer history.Close()

			records, err := history.List(limit)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(app.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			printHistory(app.Out, records)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print records as JSON")
	return cmd
}

func printHistory(w io.Writer, records []storage.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No problems solved yet.")
		return
	}

	cell := func(s string, width int) string {
		return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
	}
	fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		cell("WHEN", 16), cell("MODE", 5), cell("TOPIC", 28), cell("OK", 2), "ANSWER")
	for _, r := range records {
		ok := "✓"
		if !r.Consistent {
			ok = "✗"
		}
		fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			cell(r.CreatedAt.Local().Format("2006-01-02 15:04"), 16),
			cell(r.Mode, 5),
			cell(r.Topic, 28),
			cell(ok, 2),
			runewidth.Truncate(strings.Join(strings.Fields(r.FinalAnswer), " "), 40, "…"),
		)
	}
	fmt.Fprintf(w, "\n%d record(s)\n", len(records))
}
