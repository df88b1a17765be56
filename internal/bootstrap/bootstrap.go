package bootstrap

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	connectorinadapter "meetnote/internal/modules/connector/adapter/in"
	connectorservice "meetnote/internal/modules/connector/service"
	connectorusecase "meetnote/internal/modules/connector/usecase"
	meetinginadapter "meetnote/internal/modules/meeting/adapter/in"
	meetingoutadapter "meetnote/internal/modules/meeting/adapter/out"
	meetingout "meetnote/internal/modules/meeting/port/out"
	meetingservice "meetnote/internal/modules/meeting/service"
	meetingusecase "meetnote/internal/modules/meeting/usecase"
	summaryinadapter "meetnote/internal/modules/summary/adapter/in"
	summaryoutadapter "meetnote/internal/modules/summary/adapter/out"
	summaryout "meetnote/internal/modules/summary/port/out"
	summaryservice "meetnote/internal/modules/summary/service"
	summaryusecase "meetnote/internal/modules/summary/usecase"
	"meetnote/internal/platform/clock"
	"meetnote/internal/platform/config"
	"meetnote/internal/platform/id"
	"meetnote/internal/platform/logging"
	"meetnote/internal/platform/notify"
	"meetnote/internal/platform/random"
	"meetnote/internal/server"
	"meetnote/internal/state"
	uiapp "meetnote/internal/ui/app"
)

// Options select the event consumers of one process.
type Options struct {
	Logger hclog.Logger
	// Console receives one line per event when set.
	Console io.Writer
}

type App struct {
	Config       config.Config
	Logger       hclog.Logger
	Scheduler    *clock.SystemScheduler
	Store        *state.Store
	Hub          *server.Hub
	Events       *uiapp.Events
	ConnectorCLI connectorinadapter.CLIHandler
	MeetingCLI   meetinginadapter.CLIHandler
	SummaryCLI   summaryinadapter.CLIHandler
	Server       *server.Server

	closers []func() error
}

func New(cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(cfg.LogLevel, nil)
	}
	scheduler := clock.NewSystemScheduler()
	rng := random.NewSystem()
	store := state.New(state.Preferences{
		AutoStart:     cfg.Preferences.AutoStart,
		Language:      cfg.Preferences.Language,
		Notifications: cfg.Preferences.Notifications,
	})
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Scheduler: scheduler,
		Store:     store,
		Hub:       server.NewHub(logger.Named("ws")),
		Events:    uiapp.NewEvents(),
	}

	var console notify.Notifier
	if opts.Console != nil {
		console = notify.NewConsole(opts.Console)
	}
	notifier := notify.Gate(
		notify.Multi(notify.NewLog(logger.Named("events")), console, app.Hub, app.Events),
		func() bool { return store.Preferences().Notifications },
	)

	connectorUC := connectorusecase.NewInteractor(
		connectorservice.NewConnectorService(scheduler, store),
		scheduler,
		notifier,
		logger.Named("connector"),
		connectorusecase.Timings{Connect: cfg.Timings.Connect, Seed: cfg.Timings.Seed},
		cfg.SeedPlatforms,
	)

	var plugin summaryout.Provider
	if cfg.SummarizerPlugin != "" {
		provider := summaryoutadapter.NewPluginProvider(cfg.SummarizerPlugin, logger.Named("summarizer"))
		app.closers = append(app.closers, func() error { provider.Close(); return nil })
		// Launch outside scheduler callbacks. Generate retries and falls back
		// to the builtin generator on failure.
		if err := provider.Start(context.Background()); err != nil {
			logger.Warn("summarizer plugin unavailable", "plugin", cfg.SummarizerPlugin, "error", err)
		}
		plugin = provider
	}
	summaryUC := summaryusecase.NewInteractor(
		summaryservice.NewGenerator(rng),
		plugin,
		scheduler,
		cfg.Timings.Preview,
		logger.Named("summary"),
	)

	var (
		sinks []meetingout.HistorySink
		index meetingout.HistoryIndex
	)
	if cfg.VaultPath != "" {
		sqliteIndex, err := meetingoutadapter.NewSQLiteHistoryIndex(cfg.DBPath)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("new history index: %w", err)
		}
		app.closers = append(app.closers, sqliteIndex.Close)
		sinks = append(sinks, meetingoutadapter.NewVaultMeetingStore(cfg.VaultPath), sqliteIndex)
		index = sqliteIndex
	}
	meetingUC := meetingusecase.NewInteractor(meetingusecase.Deps{
		Service:   meetingservice.NewLifecycleService(scheduler, id.Prefixed{Prefix: "meeting"}, rng, store),
		Store:     store,
		Connector: connectorUC,
		Summaries: summaryUC,
		Scheduler: scheduler,
		Notifier:  notifier,
		Logger:    logger.Named("meeting"),
		Timings: meetingusecase.Timings{
			Start:      cfg.Timings.Start,
			Recording:  cfg.Timings.Recording,
			Processing: cfg.Timings.Processing,
		},
		Sinks: sinks,
		Index: index,
	})

	app.ConnectorCLI = connectorinadapter.NewCLIHandler(connectorUC)
	app.MeetingCLI = meetinginadapter.NewCLIHandler(meetingUC)
	app.SummaryCLI = summaryinadapter.NewCLIHandler(summaryUC)
	app.Server = server.New(server.Deps{
		Connector:   connectorUC,
		Meetings:    meetingUC,
		Summaries:   summaryUC,
		Preferences: store,
		Hub:         app.Hub,
		Logger:      logger.Named("http"),
	})
	return app, nil
}

// Close releases the plugin process and the history index. Pending
// callbacks are not awaited.
func (a *App) Close() error {
	a.Hub.Close()
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Config.KnownPlatforms, app.ConnectorCLI, app.MeetingCLI, app.SummaryCLI, app.Events)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
