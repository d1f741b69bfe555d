package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/netdap/netdap-mcp/internal/config"
	"github.com/netdap/netdap-mcp/internal/mcp"
)

var version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	help := flag.Bool("help", false, "Show help and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("netdap-mcp version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printHelp()
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel(cfg.LogLevel),
	})))

	srv := mcp.NewServer(*cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		srv.Close()
		os.Exit(0)
	}()

	slog.Info("netdap-mcp starting", "netcoredbg", cfg.NetcoredbgPath, "dotnet", cfg.DotnetPath)
	if err := srv.ServeStdio(); err != nil {
		srv.Close()
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
	srv.Close()
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printHelp() {
	fmt.Println(`netdap-mcp: .NET debugger-control mediator

A Model Context Protocol (MCP) server that drives netcoredbg over the Debug
Adapter Protocol, including transparent reattachment across 'dotnet watch'
hot-reload rebuilds.

USAGE:
    netdap-mcp [OPTIONS]

OPTIONS:
    -config <path>   Path to configuration file (JSON)
    -version         Show version and exit
    -help            Show this help message

CONFIGURATION:
    {
        "netcoredbgPath": "netcoredbg",
        "dotnetPath": "dotnet",
        "harnessPath": "",
        "maxSessions": 10,
        "sessionTimeout": 1800000000000,
        "logLevel": "info"
    }

TOOLS:
    launch, attach, launch_watch, stop_watch, restart,
    set_breakpoint, remove_breakpoint, list_breakpoints,
    continue, pause, step_over, step_into, step_out,
    stack_trace, scopes, variables, evaluate, threads,
    output, status, terminate,
    list_sessions, select_session, terminate_session,
    invoke`)
}
