package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/talentlens/console/internal/api"
	"github.com/talentlens/console/internal/backend"
	"github.com/talentlens/console/internal/config"
	"github.com/talentlens/console/internal/logger"
	"github.com/talentlens/console/internal/models"
	"github.com/talentlens/console/internal/storage"
	"github.com/talentlens/console/internal/upload"
	"github.com/talentlens/console/internal/web"
	"go.uber.org/zap"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := os.Getenv("TALENTLENS_CONFIG")
	if configPath == "" {
		configPath = filepath.Join(exeDir, "TalentLensConsole.config")
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	embeddedMode := web.HasEmbeddedFiles()

	log := logger.New(logger.Options{
		Level:      cfg.Advanced.LogLevel,
		FilePath:   cfg.Advanced.LogFile,
		Production: embeddedMode,
	})
	defer log.Sync()

	catalog, err := config.LoadProviderCatalog(cfg.Backend.ProvidersFile)
	if err != nil {
		log.Fatal("failed to load provider catalog", zap.Error(err))
	}
	if p := models.Provider(cfg.Backend.DefaultProvider); p != "" {
		if catalog.Has(p) {
			catalog.Default = p
		} else {
			log.Warn("configured default provider is not in the catalog", zap.String("provider", string(p)))
		}
	}

	fileStore, err := storage.NewLocalStore(cfg.GetStagingDir())
	if err != nil {
		log.Fatal("failed to initialize staging storage", zap.Error(err))
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.GetBackendTimeout(), log)

	policy := upload.NewPolicy(
		config.SplitList(cfg.Security.DocumentTypes),
		config.SplitList(cfg.Security.DocumentExtensions),
		config.SplitList(cfg.Security.ArchiveTypes),
		config.SplitList(cfg.Security.ArchiveExtensions),
	)

	// Idle workspaces expire and release their staged files
	workspaces := upload.NewManager(policy, client, fileStore, cfg.GetWorkspaceTTL(), cfg.GetCleanupInterval(), log)

	handlers := api.NewHandlers(&api.Dependencies{
		Store:      fileStore,
		Workspaces: workspaces,
		Backend:    client,
		Catalog:    catalog,
		Logger:     log,
		Version:    Version,
	})

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, !embeddedMode)

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/ws") || path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// No request timeout: dispatch and import wait as long as the backend does
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		if embeddedMode {
			origins := config.SplitList(cfg.Server.AllowOrigins)
			if len(origins) == 0 {
				origins = []string{"*"}
			}
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: origins,
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			}))
		} else {
			// Development mode - only allow localhost
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: []string{
					"http://localhost:5173", "http://127.0.0.1:5173",
					"http://localhost:3000", "http://127.0.0.1:3000",
				},
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			}))
		}
	}

	api.RegisterRoutes(e, handlers)

	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			log.Warn("failed to register static routes", zap.Error(err))
		} else {
			log.Info("serving embedded console shell")
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	mode := "Development"
	if embeddedMode {
		mode = "Embedded Shell"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           TalentLens Console                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Backend:   %-46s║\n", client.BaseURL())
	fmt.Printf("║  Provider:  %-46s║\n", string(catalog.Default))
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}
