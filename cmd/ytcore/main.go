// Command ytcore inspects YouTube videos: it prints video details, resolves
// stream URLs and selects streams with a compact filter spec.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ytget/ytcore"
	"github.com/ytget/ytcore/internal/config"
	"github.com/ytget/ytcore/internal/logger"
)

// Version is set at build time via ldflags.
var Version = "dev"

// errReported marks failures whose envelope was already printed.
var errReported = errors.New("reported")

var (
	flagStats bool

	session  *ytcore.Session
	registry *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:   "ytcore",
	Short: "Extract and resolve YouTube media streams",
	Long: `ytcore reads a watch page, parses its muxed and adaptive streams and
resolves signature-protected stream URLs with the page's own player script.
Results are printed as JSON envelopes on stdout; logs go to stderr.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: printStats,
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolVar(&flagStats, "stats", false, "print decipher counters to stderr on exit")

	rootCmd.AddCommand(infoCmd, urlCmd, selectCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// setup loads configuration (defaults < config file < YTCORE_* env < flags),
// installs the logger and builds the session.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd == versionCmd {
		return nil
	}
	v := config.New()
	if err := config.Init(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lc, err := cfg.LoggerConfig(os.Stderr)
	if err != nil {
		return err
	}
	logger.SetGlobalLogger(logger.New(lc))

	registry = prometheus.NewRegistry()
	session, err = ytcore.NewFromConfig(cfg, registry)
	if err != nil {
		return err
	}
	logger.WithComponent(logger.ComponentApp).Debug("Session ready", map[string]interface{}{
		"session":   session.ID(),
		"js_engine": cfg.JSEngine,
		"cache_dir": cfg.CacheDir,
	})
	return nil
}

// printStats writes every counter sample as "name{labels} value".
func printStats(cmd *cobra.Command, _ []string) error {
	if !flagStats || registry == nil {
		return nil
	}
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	w := cmd.ErrOrStderr()
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}
