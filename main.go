// zurk - A Gemini-powered terminal chat client.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ZeynTheCreator/ZurkAi/internal/cli"
	"github.com/ZeynTheCreator/ZurkAi/internal/config"
	"github.com/ZeynTheCreator/ZurkAi/internal/engine"
	"github.com/ZeynTheCreator/ZurkAi/internal/gemini"
	"github.com/ZeynTheCreator/ZurkAi/internal/persona"
	"github.com/ZeynTheCreator/ZurkAi/internal/storage"
	"github.com/ZeynTheCreator/ZurkAi/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	case cli.CmdConfig:
		exitOnError(cli.HandleConfigCommand(args))
	case cli.CmdExport:
		store, cleanup := openStore()
		defer cleanup()
		exitOnError(cli.HandleExportCommand(store, args))
	case cli.CmdChat:
		eng, cleanup := buildEngine()
		defer cleanup()
		exitOnError(cli.RunChat(eng, args))
	case cli.CmdTUI:
		runTUI(args)
	default:
		cli.PrintUsage()
		os.Exit(1)
	}
}

// runTUI starts the Bubble Tea frontend.
func runTUI(args cli.Args) {
	if os.Getenv("ZURK_DEBUG") != "" {
		f, err := tea.LogToFile("zurk-debug.log", "debug")
		if err == nil {
			defer f.Close()
		}
	}

	eng, cleanup := buildEngine()
	defer cleanup()

	cfg := config.Global()
	exitOnError(chat.Run(eng, cfg, Version))
}

// openStore opens the session repository using the configured backend.
func openStore() (*storage.Store, func()) {
	cfg := config.Global()

	dir, err := cfg.StorageDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot resolve storage directory: %v\n", err)
		os.Exit(1)
	}

	var kv storage.KV
	switch cfg.Storage.Backend {
	case "sqlite":
		kv, err = storage.NewSQLiteKV(filepath.Join(dir, "zurk.db"))
	default:
		kv, err = storage.NewFileKV(dir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open storage: %v\n", err)
		os.Exit(1)
	}

	store := storage.NewStore(kv)
	store.MaxSessions = cfg.Storage.MaxSessions
	return store, func() { store.Close() }
}

// buildEngine wires storage, the Gemini service, and the persona
// policy into a conversation engine. Without an API key the engine
// still serves stored sessions; generation returns a notice instead.
func buildEngine() (*engine.Engine, func()) {
	cfg := config.Global()
	store, cleanup := openStore()

	var svc gemini.Service
	if cfg.API.Key != "" {
		client, err := gemini.NewClient(context.Background(), gemini.ClientConfig{
			APIKey:            cfg.API.Key,
			ChatModel:         cfg.API.Model,
			ImageModel:        cfg.API.ImageModel,
			RequestsPerMinute: cfg.API.RequestsPerMinute,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: gemini client unavailable: %v\n", err)
		} else {
			svc = client
		}
	} else {
		fmt.Fprintln(os.Stderr, "Warning: no API key configured; set ZURK_API_KEY or GEMINI_API_KEY to enable generation")
	}

	policy := persona.New(cfg.Developer.SourceSnapshot)
	eng := engine.New(store, svc, policy, nil)
	return eng, cleanup
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
