package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/aulev/pkg/rtpext"
)

var extmapCmd = &cobra.Command{
	Use:   "extmap",
	Short: "Print the extmap line advertised for the current config",
	Long: `
Build the configured extension, apply its negotiated attributes and
print the session-description extmap line it would advertise back.

Examples:
  aulev extmap                  # a=extmap:1 urn:ietf:params:rtp-hdrext:ssrc-audio-level vad=on
  aulev extmap -c aulev.yml     # With vad=off configured: ... vad=off
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		entry, err := cfg.Extmap.Entry()
		if err != nil {
			exitWithError("parsing extmap config", err)
		}
		ext, err := rtpext.NewFromExtmap(entry)
		if err != nil {
			exitWithError("configuring extension", err)
		}

		caps := rtpext.NewCaps()
		if err := ext.SetCapsFromAttributes(caps, entry.ID); err != nil {
			exitWithError("deriving attributes", err)
		}

		advertised, _ := caps.Extmap(entry.ID)
		fmt.Printf("a=%s\n", advertised)
	},
}

func init() {
	rootCmd.AddCommand(extmapCmd)
}
