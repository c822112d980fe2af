package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pagihq/pagichat-go/pagichat"
	"github.com/pagihq/pagichat-go/pagichat/stats"
	"github.com/pagihq/pagichat-go/pagichat/store"
)

var rootCmd = &cobra.Command{
	Use:          "pagichat",
	Short:        "Terminal client for pagi-chat servers",
	RunE:         runChat,
	SilenceUsage: true,
}

var (
	flagConfig   string
	flagServer   string
	flagName     string
	flagStats    string
	flagStoreDir string
	flagLogLevel string
	flagRoom     string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "path to yaml config file")
	flags.StringVar(&flagServer, "server", "", "websocket endpoint, e.g. ws://localhost:8080/ws/chat")
	flags.StringVar(&flagName, "name", "", "display name (default: persisted or generated guest name)")
	flags.StringVar(&flagStats, "stats", "", "stats endpoint polled for server counters (empty to disable)")
	flags.StringVar(&flagStoreDir, "store-dir", "", "directory for the persistent session store")
	flags.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&flagRoom, "room", "general", "room to join after connecting")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootLog := pagichat.NewLogger(flagLogLevel)
	cfg, err := loadConfig(bootLog, flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	logger := pagichat.NewLogger(cfg.LogLevel)

	var identityStore pagichat.Store
	pebbleStore, err := store.OpenPebble(cfg.StoreDir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.StoreDir).Msg("session store unavailable, session will not survive restarts")
		identityStore = store.NewMemory()
	} else {
		defer pebbleStore.Close()
		identityStore = pebbleStore
	}

	// A fresh install with no flag and no persisted name gets a guest name.
	if cfg.Name == "" {
		persisted, err := pagichat.LoadIdentity(identityStore)
		if err != nil {
			return err
		}
		if persisted.Name == "" {
			cfg.Name = "guest-" + uuid.NewString()[:8]
		}
	}

	clientCfg := pagichat.DefaultConfig()
	clientCfg.URL = cfg.Server
	clientCfg.Name = cfg.Name
	clientCfg.ReconnectDelay = cfg.ReconnectDelay
	clientCfg.StatsURL = cfg.StatsURL
	clientCfg.StatsInterval = cfg.StatsInterval

	sink := newTerminalSink(os.Stdout)
	client := pagichat.NewClient(clientCfg)
	client.SetLogger(logger)
	client.SetStore(identityStore)
	client.SetSink(sink)
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		// Connection errors are retried by the client itself; anything
		// else (bad config, broken store) is fatal.
		if !pagichat.IsConnectionError(err) {
			return err
		}
		logger.Warn().Err(err).Msg("initial connect failed, retrying in background")
	}

	if clientCfg.StatsURL != "" {
		poller := stats.NewPoller(stats.NewClient(clientCfg.StatsURL), clientCfg.StatsInterval, func(s stats.Stats) {
			sink.SetStats(s.UsersOnline, s.RoomsCount)
		})
		poller.SetLogger(logger)
		go poller.Run(ctx)
	}

	if flagRoom != "" {
		client.JoinRoom(flagRoom)
	}

	return inputLoop(ctx, client, sink)
}

// applyFlags overlays explicitly-set flags on top of the loaded config.
func applyFlags(cmd *cobra.Command, cfg *fileConfig) {
	if cmd.Flags().Changed("server") {
		cfg.Server = flagServer
	}
	if cmd.Flags().Changed("name") {
		cfg.Name = flagName
	}
	if cmd.Flags().Changed("stats") {
		cfg.StatsURL = flagStats
	}
	if cmd.Flags().Changed("store-dir") {
		cfg.StoreDir = flagStoreDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
}

// inputLoop reads stdin lines and turns them into outbound envelopes or local
// commands until ctx is cancelled or stdin closes.
func inputLoop(ctx context.Context, client *pagichat.Client, sink *terminalSink) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !strings.HasPrefix(line, "/") {
				client.SendMessage(line)
				continue
			}
			cmd, rest, _ := strings.Cut(line, " ")
			switch cmd {
			case "/join":
				client.JoinRoom(rest)
			case "/rooms":
				sink.SetRoomList(client.Rooms().Known())
			case "/who":
				sink.SetPresence(client.Presence().CurrentMembers())
			case "/quit":
				return nil
			default:
				fmt.Fprintf(os.Stdout, "* unknown command %s\n", cmd)
			}
		}
	}
}
