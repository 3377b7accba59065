package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/framewise/resolve-mcp/internal/config"
	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/server"
	"github.com/framewise/resolve-mcp/internal/ui"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

func main() {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "resolve-mcp",
		Short: "resolve-mcp — MCP server for DaVinci Resolve",
		Long:  "A Model Context Protocol server that exposes DaVinci Resolve's editing, grading, compositing and delivery surface as tools and resources over stdio.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Init(noColor)
		},
	}

	rootCmd.Version = buildVersion()
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(pagesCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(guideCmd())
	rootCmd.AddCommand(completionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connector returns the host connector for this run: the in-memory
// simulator, or the probe for a live application.
func connector(simulate bool) host.Connector {
	if simulate {
		return func() (host.Host, error) { return host.NewSim(), nil }
	}
	return host.Detect
}

func serveCmd() *cobra.Command {
	var simulate bool
	var legacy bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long:  "Start the MCP server over stdio. The server starts even when DaVinci Resolve is unreachable; operations answer with connection errors until a reconnect succeeds.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Home())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("legacy") {
				cfg.Server.Legacy = legacy
			}
			if cmd.Flags().Changed("simulate") {
				cfg.Host.Simulate = simulate
			}
			applyLogLevel(cfg)

			connect := connector(cfg.Host.Simulate)
			handle := host.NewHandle(nil)
			if h, err := connect(); err != nil {
				ui.Logger.Warn("not connected at startup", "err", err)
			} else {
				handle.Publish(h)
				ui.Logger.Info("connected", "product", h.ProductName(), "version", h.Version())
			}

			srv, err := server.New(cfg, handle, connect, ui.Logger, version)
			if err != nil {
				return err
			}
			ui.Logger.Info("serving MCP on stdio",
				"name", cfg.Server.Name,
				"operations", len(srv.Registry().Descriptors()),
				"simulate", cfg.Host.Simulate)
			return srv.Run(context.Background())
		},
	}
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Serve an in-memory simulated host instead of a live application")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Use the plain-string response encoding for operations that support it")
	return cmd
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, catalog and host connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.Banner("DOCTOR", "health check")

			home := config.Home()
			issues := config.CheckHealth(home)

			ui.SectionHeader("Configuration")
			ui.KeyValue("home", home)

			cfg, err := config.Load(home)
			if err != nil {
				issues = append(issues, config.Issue{Severity: "error", Message: err.Error()})
				cfg = config.DefaultConfig()
			}
			ui.KeyValue("log level", cfg.Log.Level)

			ui.SectionHeader("Operation catalog")
			// Bind the full catalog against a simulated host so duplicate
			// names or other registration errors surface here.
			handle := host.NewHandle(host.NewSim())
			srv, err := server.New(cfg, handle, connector(true), ui.Logger, version)
			if err != nil {
				issues = append(issues, config.Issue{Severity: "error", Message: fmt.Sprintf("operation catalog: %v", err)})
			} else {
				tools, resources := 0, 0
				for _, d := range srv.Registry().Descriptors() {
					if d.Kind == dispatch.Action {
						tools++
					} else {
						resources++
					}
				}
				ui.Success("All operations registered")
				ui.Detail("tools", fmt.Sprintf("%d", tools))
				ui.Detail("resources", fmt.Sprintf("%d", resources))
			}

			ui.SectionHeader("Host")
			ui.Status("Probing DaVinci Resolve scripting runtime")
			if _, err := host.Detect(); err != nil {
				issues = append(issues, config.Issue{Severity: "warning", Message: err.Error()})
			} else {
				ui.Success("DaVinci Resolve reachable")
			}

			if len(issues) == 0 {
				ui.Success("Everything looks good")
				return nil
			}

			hasError := false
			for _, issue := range issues {
				if issue.Severity == "error" {
					ui.Error(fmt.Sprintf("[ERR]  %s", issue.Message))
					hasError = true
				} else {
					ui.Warning(fmt.Sprintf("[WARN] %s", issue.Message))
				}
			}
			if hasError {
				os.Exit(2)
			}
			os.Exit(1)
			return nil
		},
	}
}

func pagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List the pages operations can require",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(page.All()))
			for _, p := range page.All() {
				rows = append(rows, []string{string(p)})
			}
			ui.Table([]string{"PAGE"}, rows)
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and edit resolve-mcp configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configInitCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.Home()
			cfg, err := config.Load(home)
			if err != nil {
				return err
			}
			ui.Info(fmt.Sprintf("Effective configuration (home: %s)", home))
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.Home()
			if _, err := os.Stat(home); err == nil && force {
				ok, err := ui.Confirm(fmt.Sprintf("Overwrite existing configuration at %s?", home))
				if err != nil {
					return err
				}
				if !ok {
					ui.EmptyState("Aborted.")
					return nil
				}
			}
			if err := config.Init(home, force); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("Initialized %s", home))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Reinitialize even if configuration exists")
	return cmd
}

func guideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide",
		Short: "Show the usage guide",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.RenderMarkdown(usageGuide)
			return nil
		},
	}
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", args[0])
			}
		},
	}
}

func applyLogLevel(cfg config.Config) {
	switch cfg.Log.Level {
	case "debug":
		ui.Logger.SetLevel(log.DebugLevel)
	case "warn":
		ui.Logger.SetLevel(log.WarnLevel)
	case "error":
		ui.Logger.SetLevel(log.ErrorLevel)
	default:
		ui.Logger.SetLevel(log.InfoLevel)
	}
}
