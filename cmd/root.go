// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/aulev/internal/config"
	"firestige.xyz/aulev/pkg/log"
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aulev",
	Short: "aulev - RFC 6464 audio-level RTP header extension toolkit",
	Long: `aulev implements the Client-to-Mixer Audio Level Indication (RFC 6464)
RTP header extension: the wire codec, the vad=on/vad=off extmap
negotiation, and pcap tooling built on top of it.

Commands:
  inspect    decode audio-level extensions out of a pcap capture
  generate   synthesize a pcap carrying an annotated RTP stream
  extmap     print the extmap line advertised for the current config`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (default: built-in defaults)")
}

// loadConfig loads configuration and initializes the global logger.
func loadConfig() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		exitWithError("loading configuration", err)
	}
	if err := log.Init(cfg.Log); err != nil {
		exitWithError("initializing logger", err)
	}
	return cfg
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
