// Package main provides the digibouquet CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"digibouquet/internal/core"
	"digibouquet/internal/flood"
	httpserver "digibouquet/internal/http"
	"digibouquet/internal/i18n"
	"digibouquet/internal/spotify"
	"digibouquet/internal/store"
)

const (
	defaultServerHost = "0.0.0.0"
	envPrefix         = "DIGIBOUQUET"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "digibouquet",
	Short: "digibouquet - digital bouquets with a song",
	Long: `digibouquet serves the bouquet API: it stores bouquets, decodes share links and
resolves YouTube, Spotify and SoundCloud links into embeddable players.`,
	RunE: runDigibouquet,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, text)")
	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")
	flags.String("db-path", defaults.Store.Path, "SQLite database path")
	flags.Int("cache-size", core.DefaultCacheSize, "Number of bouquets kept in the read cache")
	flags.Int("known-id-capacity", core.DefaultKnownIDCapacity, "Expected number of stored bouquets")
	flags.String("public-base-url", defaults.App.PublicBaseURL, "Public base URL used in share links")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("Language of user-facing text (%s)", supportedLangs))
	flags.Int("flood-limit-per-minute", core.DefaultFloodLimitPerMinute, "Maximum bouquets per client per minute (0 disables)")
	flags.String("spotify-client-id", "", "Spotify client ID (enables Spotify API lookups)")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.Int("lookup-timeout-secs", core.DefaultLookupTimeoutSecs, "Song info lookup timeout in seconds")
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureServer(cfg)
	configureStore(cfg)
	configureSpotify(cfg)
	configureApp(cfg)

	return cfg
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func configureStore(cfg *core.Config) {
	if path := viper.GetString("db-path"); path != "" {
		cfg.Store.Path = path
	}

	cfg.Store.CacheSize = viper.GetInt("cache-size")
	if cfg.Store.CacheSize <= 0 {
		cfg.Store.CacheSize = core.DefaultCacheSize
	}

	cfg.Store.KnownIDCapacity = viper.GetInt("known-id-capacity")
	if cfg.Store.KnownIDCapacity <= 0 {
		cfg.Store.KnownIDCapacity = core.DefaultKnownIDCapacity
	}
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
}

func configureApp(cfg *core.Config) {
	if baseURL := viper.GetString("public-base-url"); baseURL != "" {
		cfg.App.PublicBaseURL = baseURL
	}

	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}

	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
	if cfg.App.FloodLimitPerMinute < 0 {
		cfg.App.FloodLimitPerMinute = core.DefaultFloodLimitPerMinute
	}

	cfg.App.LookupTimeoutSecs = viper.GetInt("lookup-timeout-secs")
	if cfg.App.LookupTimeoutSecs <= 0 {
		cfg.App.LookupTimeoutSecs = core.DefaultLookupTimeoutSecs
	}
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	if strings.EqualFold(format, "text") {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runDigibouquet(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting digibouquet",
		zap.String("version", "1.0.0"),
		zap.String("db_path", config.Store.Path),
		zap.String("public_base_url", config.App.PublicBaseURL),
		zap.Bool("spotify_lookups", config.Spotify.Enabled()))

	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer svcs.close()

	return runServices(ctx, svcs)
}

type services struct {
	sqlite     *store.SQLiteStore
	floodgate  *flood.Floodgate
	httpServer *httpserver.Server
}

func (s *services) close() {
	s.floodgate.Stop()
	if err := s.sqlite.Close(); err != nil {
		logger.Debug("Failed to close database", zap.Error(err))
	}
}

func initializeServices(ctx context.Context) (*services, error) {
	sqlite, err := store.OpenSQLite(ctx, config.Store.Path, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open bouquet store: %w", err)
	}

	cache, err := store.NewCachedRepository(sqlite, config.Store.CacheSize,
		config.Store.KnownIDCapacity, config.Store.KnownIDFalsePositiveRate)
	if err != nil {
		_ = sqlite.Close()
		return nil, fmt.Errorf("failed to create bouquet cache: %w", err)
	}

	ids, err := sqlite.IDs(ctx, time.Time{})
	if err != nil {
		_ = sqlite.Close()
		return nil, fmt.Errorf("failed to load bouquet IDs: %w", err)
	}
	cache.Load(ids)
	logger.Info("Bouquet store ready", zap.Int("bouquets", len(ids)))

	var spotifyClient core.SpotifyClient
	if config.Spotify.Enabled() {
		spotifyClient = spotify.NewClient(ctx, &config.Spotify, logger.Named("spotify"))
	}
	songs := core.NewMusicLinkLookupAdapter(spotifyClient, logger.Named("songs"))

	bouquets := core.NewBouquetService(config, cache, songs, logger.Named("bouquets"))
	floodgate := flood.New(config.App.FloodLimitPerMinute)

	httpServer := httpserver.NewServer(&config.Server, bouquets, httpserver.Options{
		Floodgate:     floodgate,
		Readiness:     sqlite,
		CacheStats:    cache.Stats,
		Inventory:     cache,
		LookupTimeout: time.Duration(config.App.LookupTimeoutSecs) * time.Second,
	}, logger.Named("http"))

	return &services{
		sqlite:     sqlite,
		floodgate:  floodgate,
		httpServer: httpServer,
	}, nil
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	logger.Info("digibouquet started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("digibouquet stopped with error", zap.Error(err))
		return err
	}

	logger.Info("digibouquet stopped gracefully")
	return nil
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# digibouquet Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: " + envPrefix + "_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	writeEnvSection(&content, cmd, "HTTP Server", "server-host", "server-port", "public-base-url")
	writeEnvSection(&content, cmd, "Storage", "db-path", "cache-size", "known-id-capacity")
	writeEnvSection(&content, cmd, "Song Lookups (Spotify credentials are optional)",
		"spotify-client-id", "spotify-client-secret", "lookup-timeout-secs")
	writeEnvSection(&content, cmd, "Application", "language", "flood-limit-per-minute")
	writeEnvSection(&content, cmd, "Logging", "log-level", "log-format")

	return content.String()
}

func writeEnvSection(content *strings.Builder, cmd *cobra.Command, title string, flagNames ...string) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", title)
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# CLI: --%s\n", strings.Join(flagNames, ", --"))

	for _, name := range flagNames {
		f := cmd.PersistentFlags().Lookup(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(content, "# %s\n", f.Usage)
		fmt.Fprintf(content, "%s=%s\n", flagToEnvVar(name), f.DefValue)
	}
	content.WriteString("\n")
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
