package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/wokar/lgnetcast/internal"
	"github.com/wokar/lgnetcast/internal/device"
	"github.com/wokar/lgnetcast/internal/netcast"
)

var (
	tvHost     string
	tvKey      string
	tvProtocol string
	tvTimeout  time.Duration
)

// addTVFlags registers the connection flags shared by every command that
// talks to a TV. The pairing key is optional for commands that can run
// before the TV has been paired.
func addTVFlags(cmd *cobra.Command, keyRequired bool) {
	cmd.Flags().StringVarP(&tvHost, "host", "H", "", "TV host address (port defaults to 8080)")
	cmd.Flags().StringVarP(&tvKey, "key", "k", "", "pairing key shown on the TV screen")
	cmd.Flags().StringVarP(&tvProtocol, "protocol", "p", "roap", "protocol variant (roap or hdcp)")
	cmd.Flags().DurationVarP(&tvTimeout, "timeout", "t", internal.DefaultTimeout, "request timeout")

	cmd.MarkFlagRequired("host")
	if keyRequired {
		cmd.MarkFlagRequired("key")
	}
}

// openTV connects and pairs with the TV described by the shared flags.
func openTV() (*netcast.Client, error) {
	protocol := netcast.Protocol(tvProtocol)
	if protocol != netcast.ProtocolROAP && protocol != netcast.ProtocolHDCP {
		return nil, fmt.Errorf("unknown protocol: %s (use 'roap' or 'hdcp')", tvProtocol)
	}

	options := internal.NewModeOptions(
		internal.WithDebug(verbose),
		internal.WithTimeout(tvTimeout),
	)

	client := netcast.NewClient(tvHost, tvKey, protocol, options)
	if err := client.Open(); err != nil {
		return nil, guideError(err, tvHost)
	}
	return client, nil
}

// resolveCommand accepts either an action name from the remote vocabulary
// or a raw NetCast key code.
func resolveCommand(name string) (netcast.Command, error) {
	if code, ok := netcast.CommandForAction(device.RemoteAction(name)); ok {
		return code, nil
	}
	if raw, err := strconv.Atoi(name); err == nil {
		return netcast.Command(raw), nil
	}
	return 0, fmt.Errorf("unknown remote action: %s (see 'lgnetcast list remote')", name)
}

// resolveQuery accepts either a query name from the vocabulary or a raw
// NetCast target keyword.
func resolveQuery(name string) netcast.Query {
	if query, ok := netcast.QueryForAction(device.QueryAction(name)); ok {
		return query
	}
	return netcast.Query(name)
}

var sendCmd = &cobra.Command{
	Use:   "send [action]",
	Short: "Press a remote control key on the TV",
	Long: `Press a remote control key on the TV. Accepts an action name such as
volume_up or a raw NetCast key code. See 'lgnetcast list remote' for
the vocabulary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command, err := resolveCommand(args[0])
		if err != nil {
			return err
		}

		client, err := openTV()
		if err != nil {
			return err
		}
		defer client.Close()

		log.Info().
			Str("host", client.Host()).
			Str("action", args[0]).
			Int("code", int(command)).
			Msg("Sending remote key")

		if err := client.SendCommand(command); err != nil {
			return guideError(err, tvHost)
		}

		log.Info().Msg("Remote key sent successfully")
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query [target]",
	Short: "Read status data from the TV",
	Long: `Read status data from the TV and print the XML elements it returns.
Accepts a query name such as volume_info or a raw NetCast target
keyword. See 'lgnetcast list query' for the vocabulary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openTV()
		if err != nil {
			return err
		}
		defer client.Close()

		elements, err := client.QueryData(resolveQuery(args[0]))
		if err != nil {
			return guideError(err, tvHost)
		}

		if len(elements) == 0 {
			cmd.Println("No data returned")
			return nil
		}
		for _, element := range elements {
			cmd.Println(element.String())
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current channel, volume and UI state",
	Long:  `Query the TV for its current channel, volume, on-screen UI mode and 3D state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openTV()
		if err != nil {
			return err
		}
		defer client.Close()

		elements, err := client.QueryData(netcast.QueryCurrentChannel)
		if err != nil {
			return guideError(err, tvHost)
		}
		if len(elements) > 0 {
			if channel, chanErr := netcast.ChannelFromData(elements[0]); chanErr == nil {
				cmd.Printf("Channel: %s\n", channel)
			}
			if name, ok := elements[0].Field("progName"); ok {
				cmd.Printf("Programme: %s\n", name)
			}
		}

		elements, err = client.QueryData(netcast.QueryVolumeInfo)
		if err != nil {
			return guideError(err, tvHost)
		}
		if len(elements) > 0 {
			if level, ok := elements[0].Field("level"); ok {
				cmd.Printf("Volume: %s\n", level)
			}
			if mute, ok := elements[0].Field("mute"); ok {
				cmd.Printf("Muted: %s\n", mute)
			}
		}

		elements, err = client.QueryData(netcast.QueryContextUI)
		if err != nil {
			return guideError(err, tvHost)
		}
		if len(elements) > 0 {
			if mode, ok := elements[0].Field("mode"); ok {
				cmd.Printf("UI mode: %s\n", mode)
			}
		}

		elements, err = client.QueryData(netcast.Query3D)
		if err != nil {
			return guideError(err, tvHost)
		}
		if len(elements) > 0 {
			if is3D, ok := elements[0].Field("is3D"); ok {
				cmd.Printf("3D: %s\n", is3D)
			}
		}

		return nil
	},
}

var (
	channelMajor    int
	channelMinor    int
	channelSource   int
	channelPhysical int
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Switch the TV to a channel",
	Long: `Switch the TV to a channel by its tuner numbers. Major and minor
numbers follow the values reported by 'lgnetcast channels'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openTV()
		if err != nil {
			return err
		}
		defer client.Close()

		channel := netcast.Channel{
			Major:       channelMajor,
			Minor:       channelMinor,
			SourceIndex: channelSource,
			PhysicalNum: channelPhysical,
		}

		log.Info().
			Str("host", client.Host()).
			Str("channel", channel.String()).
			Msg("Changing channel")

		if err := client.ChangeChannel(channel); err != nil {
			return guideError(err, tvHost)
		}
		return nil
	},
}

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the channels the TV knows about",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openTV()
		if err != nil {
			return err
		}
		defer client.Close()

		elements, err := client.QueryData(netcast.QueryChannelList)
		if err != nil {
			return guideError(err, tvHost)
		}

		for _, element := range elements {
			channel, chanErr := netcast.ChannelFromData(element)
			if chanErr != nil {
				cmd.Println(element.String())
				continue
			}
			cmd.Printf("%3d.%-3d %s\n", channel.Major, channel.Minor, channel.Name)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List available remote actions or query targets",
	Long:  `List the remote action vocabulary or the query target vocabulary.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "remote", "actions", "commands":
			fmt.Println("Available remote actions:")
			for _, action := range device.RemoteActions {
				code, _ := netcast.CommandForAction(action)
				fmt.Printf("  %-20s code %d\n", action, code)
			}
		case "query", "targets", "queries":
			fmt.Println("Available query targets:")
			for _, action := range device.QueryActions {
				target, _ := netcast.QueryForAction(action)
				fmt.Printf("  %-20s target %s\n", action, target)
			}
		default:
			return fmt.Errorf("unknown list type: %s (use 'remote' or 'query')", args[0])
		}
		return nil
	},
}

func init() {
	addTVFlags(sendCmd, true)
	addTVFlags(queryCmd, true)
	addTVFlags(statusCmd, true)
	addTVFlags(channelCmd, true)
	addTVFlags(channelsCmd, true)

	channelCmd.Flags().IntVar(&channelMajor, "major", 0, "major channel number")
	channelCmd.Flags().IntVar(&channelMinor, "minor", 0, "minor channel number")
	channelCmd.Flags().IntVar(&channelSource, "source", 1, "tuner source index")
	channelCmd.Flags().IntVar(&channelPhysical, "physical", 0, "physical channel number")
	channelCmd.MarkFlagRequired("major")

	// Add to root command
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(listCmd)
}
