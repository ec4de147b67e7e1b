package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/aulev/internal/inspect"
)

var inspectPorts []int

var inspectCmd = &cobra.Command{
	Use:   "inspect <capture.pcap>",
	Short: "Decode audio-level extensions out of a pcap capture",
	Long: `
Walk a pcap file, detect RTP datagrams and decode the RFC 6464
audio-level header extension negotiated in the configuration.

Examples:
  aulev inspect call.pcap                  # Inspect using built-in defaults (extmap id 1)
  aulev inspect -c aulev.yml call.pcap     # Inspect with a custom extmap / log config
  aulev inspect --ports 5004 call.pcap     # Only consider UDP datagrams to port 5004
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if len(inspectPorts) > 0 {
			cfg.Inspect.Ports = inspectPorts
		}

		ins, err := inspect.New(cfg)
		if err != nil {
			exitWithError("wiring inspector", err)
		}

		summary, err := ins.Run(args[0])
		if err != nil {
			exitWithError("inspecting capture", err)
		}

		fmt.Printf("frames:            %d\n", summary.Frames)
		fmt.Printf("udp datagrams:     %d\n", summary.UDP)
		fmt.Printf("rtp packets:       %d\n", summary.RTP)
		fmt.Printf("with audio level:  %d\n", summary.WithAudioLevel)
		if summary.WithAudioLevel > 0 {
			fmt.Printf("voice ratio:       %.2f\n", summary.VoiceRatio())
			fmt.Printf("level min/avg/max: %d / %.1f / %d (dBov attenuation)\n",
				summary.MinLevel, summary.AvgLevel(), summary.MaxLevel)
		}
	},
}

func init() {
	inspectCmd.Flags().IntSliceVar(&inspectPorts, "ports", nil,
		"restrict RTP detection to these UDP destination ports")
	rootCmd.AddCommand(inspectCmd)
}
