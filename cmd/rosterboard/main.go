package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	specpkg "github.com/rosterboard/rosterboard/api"
	"github.com/rosterboard/rosterboard/internal/api"
	"github.com/rosterboard/rosterboard/internal/audit"
	"github.com/rosterboard/rosterboard/internal/auth"
	"github.com/rosterboard/rosterboard/internal/board"
	"github.com/rosterboard/rosterboard/internal/command"
	"github.com/rosterboard/rosterboard/internal/config"
	"github.com/rosterboard/rosterboard/internal/database"
	"github.com/rosterboard/rosterboard/internal/discord"
	"github.com/rosterboard/rosterboard/internal/roster"
	"github.com/rosterboard/rosterboard/internal/snapshot"
	"github.com/rosterboard/rosterboard/internal/sqlitestore"
)

const (
	shutdownTimeout = 15 * time.Second
	startupTimeout  = 30 * time.Second
	adminKeyCost    = 12
)

func main() {
	genKey := flag.Bool("gen-admin-key", false, "print a new admin API key and its ADMIN_API_KEY_HASH, then exit")
	flag.Parse()

	if *genKey {
		rawKey, hash, err := auth.GenerateKey(adminKeyCost)
		if err != nil {
			fmt.Fprintln(os.Stderr, "generating admin key:", err)
			os.Exit(1)
		}
		// Single quotes keep godotenv from expanding the $ segments of the hash.
		fmt.Printf("API key: %s\nADMIN_API_KEY_HASH='%s'\n", rawKey, hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("rosterboard stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("rosterboard stopped gracefully")
}

func run(cfg *config.Config) error {
	rosterFile, err := config.LoadRosterFile(cfg.RosterFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.close()

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	if err := session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("failed to close discord session", "error", err)
		}
	}()

	client := discord.NewClient(session, cfg.GuildID)

	settings, err := resolveSettings(ctx, client, rosterFile)
	if err != nil {
		return err
	}
	slog.Info("roster settings loaded", "teams", len(settings.Teams()), "rosterFile", cfg.RosterFile)

	builder := roster.NewViewBuilder(settings, language.English)
	mutator := roster.NewMutator(client, roster.NewGuard(settings), settings)

	var reconciler *board.Reconciler
	svcCfg := command.Config{
		Source:              client,
		Mutator:             mutator,
		Builder:             builder,
		Settings:            settings,
		Auditor:             audit.NewRecorder(st.audits),
		ManagementChannelID: cfg.CaptainsChannelID,
	}
	if cfg.RostersChannelID != "" {
		reconciler = board.New(board.Config{
			Source:    client,
			Channel:   discord.NewBoardChannel(session, cfg.RostersChannelID),
			Index:     st.index,
			Snapshots: snapshot.NewSaver(st.snapshots),
			Builder:   builder,
			Settings:  settings,
			Interval:  cfg.SyncInterval(),
		})
		svcCfg.Board = reconciler
	} else {
		slog.Warn("ROSTERS_CHANNEL_ID not set; roster board disabled")
	}

	svc := command.NewService(svcCfg)

	session.AddHandler(discord.NewHandler(ctx, svc).OnInteraction)
	if err := discord.RegisterCommands(ctx, session, cfg.ClientID, cfg.GuildID); err != nil {
		return err
	}

	svc.SyncBoard(ctx)

	routerDeps := api.RouterDeps{
		Gateway:     client,
		DBPinger:    st.pinger,
		Version:     cfg.Version,
		OpenAPISpec: specpkg.OpenAPISpec,
	}
	if cfg.AdminAPIKeyHash != "" {
		routerDeps.Auth = auth.NewService(cfg.AdminAPIKeyHash)
		routerDeps.Rosters = svc
		routerDeps.Audits = st.audits
		routerDeps.Snapshots = st.snapshots
		if reconciler != nil {
			routerDeps.Board = reconciler
		}
	} else {
		slog.Info("ADMIN_API_KEY_HASH not set; admin API disabled")
	}
	router, err := api.NewRouter(routerDeps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting rosterboard server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if reconciler != nil && cfg.SyncInterval() > 0 {
		g.Go(func() error {
			reconciler.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// resolveSettings fills role ids missing from the roster file by name.
func resolveSettings(ctx context.Context, client *discord.Client, rf *config.RosterFile) (roster.Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	roles, err := client.Roles(ctx)
	if err != nil {
		return roster.Settings{}, fmt.Errorf("reading guild roles: %w", err)
	}

	ids, err := roster.ResolveRoleIDs(rf.RoleIDs(), rf.Names(), roles)
	if err != nil {
		return roster.Settings{}, fmt.Errorf("resolving role ids: %w", err)
	}

	return rf.Settings(ids), nil
}

// stores bundles the durable repositories of whichever backend DATABASE_URL selects.
type stores struct {
	audits    audit.Repository
	snapshots snapshot.Repository
	index     board.Index
	pinger    interface{ Ping(context.Context) error }
	close     func()
}

func openStores(ctx context.Context, databaseURL string) (*stores, error) {
	if database.IsPostgresURL(databaseURL) {
		db, err := database.New(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating postgres: %w", err)
		}
		slog.Info("using postgres store")
		return &stores{
			audits:    audit.NewRepository(db.Pool()),
			snapshots: snapshot.NewRepository(db.Pool()),
			index:     board.NewPostgresIndex(db.Pool()),
			pinger:    db,
			close:     db.Close,
		}, nil
	}

	path := sqlitestore.PathFromURL(databaseURL)
	st, err := sqlitestore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	slog.Info("using sqlite store", "path", path)
	return &stores{
		audits:    st,
		snapshots: st,
		index:     st,
		pinger:    st,
		close: func() {
			if err := st.Close(); err != nil {
				slog.Warn("failed to close sqlite store", "error", err)
			}
		},
	}, nil
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
