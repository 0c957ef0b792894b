package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	internalcli "github.com/adyen/storefront-e2e/internal/cli"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/database"
	"github.com/adyen/storefront-e2e/internal/handlers"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/money"
	"github.com/adyen/storefront-e2e/internal/observability"
	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/adyen/storefront-e2e/internal/repository"
	"github.com/joho/godotenv"
	"github.com/playwright-community/playwright-go"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var version = "0.1.0"

func newLogger() (*zap.Logger, error) {
	cfg, err := config.LoadLogConfig(os.Getenv)
	if err != nil {
		return nil, err
	}
	return observability.NewLogger(cfg)
}

// InstallCommand returns the install command
func InstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Download the playwright driver and Chromium",
		Action: func(c *cli.Context) error {
			if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
				return fmt.Errorf("failed to install playwright: %w", err)
			}
			return nil
		},
	}
}

// buildServerDependencies creates everything the fixture server needs
func buildServerDependencies(logger *zap.Logger) (internalcli.ServerDependencies, error) {
	var deps internalcli.ServerDependencies

	serverConfig, err := config.LoadServerConfig(os.Getenv)
	if err != nil {
		return deps, fmt.Errorf("invalid server configuration: %w", err)
	}
	deps.ServerConfig = serverConfig
	deps.Logger = logger

	shop, err := handlers.NewStorefront(handlers.Options{Config: serverConfig, Logger: logger})
	if err != nil {
		return deps, fmt.Errorf("failed to create storefront: %w", err)
	}
	deps.Handler = shop.Handler()

	return deps, nil
}

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the fixture storefront",
		Action: func(c *cli.Context) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			deps, err := buildServerDependencies(logger)
			if err != nil {
				return err
			}
			return internalcli.RunServe(deps)
		},
	}
}

// MoneyCommand returns the money command
func MoneyCommand() *cli.Command {
	return &cli.Command{
		Name:      "money",
		Usage:     "Normalize price labels the way the page objects read them",
		ArgsUsage: "<text>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("at least one price text is required")
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, text := range c.Args().Slice() {
				v := money.Parse(text)
				note := ""
				if v.Ambiguous {
					note = "ambiguous"
				}
				if !v.Valid() {
					note = "unparseable"
				}
				fmt.Fprintf(w, "%q\t%v\t%s\n", text, v.Amount, note)
			}
			return w.Flush()
		},
	}
}

// ProbeCommand returns the probe command
func ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Open BASE_URL in Chromium and report what the detectors see",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "timeout", Value: time.Minute, Usage: "overall probe deadline"},
		},
		Action: func(c *cli.Context) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			suite, err := config.LoadSuiteConfig(os.Getenv)
			if err != nil {
				return fmt.Errorf("invalid suite configuration: %w", err)
			}

			pw, err := playwright.Run()
			if err != nil {
				return fmt.Errorf("failed to start playwright: %w", err)
			}
			defer pw.Stop()

			browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
				Headless: playwright.Bool(suite.Headless),
			})
			if err != nil {
				return fmt.Errorf("failed to launch chromium: %w", err)
			}
			defer browser.Close()

			page, err := browser.NewPage()
			if err != nil {
				return fmt.Errorf("failed to open page: %w", err)
			}
			s, err := pages.NewSession(page, suite, pages.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()
			return probe(ctx, c.App.Writer, s)
		},
	}
}

func probe(ctx context.Context, w io.Writer, s *pages.Session) error {
	if err := s.GotoPath(pages.RouteHome); err != nil {
		return err
	}
	fmt.Fprintf(w, "home: %s\n", s.ErrorPage().Detect(ctx))
	fmt.Fprintf(w, "home: %s\n", pages.NewLoginPage(s).LoggedIn().Detect(ctx))

	if err := s.OpenCart(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "cart: %s\n", pages.NewCartPage(s).EmptyDetector().Detect(ctx))
	return nil
}

// WaitsCommand returns the waits command
func WaitsCommand() *cli.Command {
	return &cli.Command{
		Name:  "waits",
		Usage: "List recorded wait outcomes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "run", Usage: "list every wait of one run ID"},
			&cli.IntFlag{Name: "failures", Value: 20, Usage: "list the most recent failed waits"},
		},
		Action: func(c *cli.Context) error {
			pgConfig, err := config.LoadPostgresConfig(os.Getenv)
			if err != nil {
				return fmt.Errorf("missing required database configuration: %w", err)
			}
			if err := database.Connect(pgConfig); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			if err := database.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}

			repo := repository.NewWaitRepository()
			var waits []*models.WaitOutcome
			if run := c.String("run"); run != "" {
				waits, err = repo.ListByRun(c.Context, run)
			} else {
				waits, err = repo.ListFailures(c.Context, c.Int("failures"))
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tCONDITION\tRESULT\tATTEMPTS\tELAPSED\tSLACK\tLAST ERROR")
			for _, o := range waits {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.0f%%\t%s\n",
					o.RunID, o.Condition, o.Result, o.Attempts,
					o.Elapsed.Round(time.Millisecond), o.Slack()*100, firstLine(o.LastError))
			}
			return w.Flush()
		},
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "storefront-e2e",
		Usage:   "Browser journeys against a Sylius-style storefront",
		Version: version,
		Commands: []*cli.Command{
			InstallCommand(),
			ServeCommand(),
			MoneyCommand(),
			ProbeCommand(),
			WaitsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Fatal(err)
	}
}
