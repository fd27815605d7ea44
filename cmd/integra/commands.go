package main

import (
	"fmt"
	"strconv"
	"strings"

	integra "github.com/caarlos0/homekit-integra"
	"github.com/spf13/cobra"
)

var (
	eventLimit int
	longDoors  bool
)

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(zonesCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(doorsCmd)

	eventsCmd.Flags().IntVar(&eventLimit, "limit", 10, "Maximum number of events, 0 reads the whole log")
	doorsCmd.Flags().BoolVar(&longDoors, "long", false, "Doors opened for too long")
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the panel type and the firmware versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli, err := newClient()
		if err != nil {
			return err
		}
		panel, err := cli.PanelVersion(cmd.Context())
		if err != nil {
			return err
		}
		module, err := cli.ModuleVersion(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderInfo(panel, module))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the panel clock and basic system status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli, err := newClient()
		if err != nil {
			return err
		}
		status, err := cli.SystemStatus(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderStatus(status))
		return nil
	},
}

var zonesCmd = &cobra.Command{
	Use:   "zones [state]",
	Short: "List the zones in a state, violation by default",
	Long: `List the zones in a state along with their names.

States: ` + strings.Join(zoneStateNames(), ", ") + `.`,
	Example: `  integra --host 192.168.1.112 zones
  integra --host 192.168.1.112 zones "tamper alarm memory"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state := integra.ZonesViolation
		if len(args) == 1 {
			var err error
			if state, err = parseZoneState(args[0]); err != nil {
				return err
			}
		}
		cli, err := newClient()
		if err != nil {
			return err
		}
		zones, err := cli.Zones(cmd.Context(), state)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderZones(state, zones))
		return nil
	},
}

var nameCmd = &cobra.Command{
	Use:     "name <partition|zone|user|expander|output> <number>",
	Short:   "Show the name of an object",
	Example: `  integra --host 192.168.1.112 name zone 14`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := parseObjectType(args[0])
		if err != nil {
			return err
		}
		number, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", args[1], err)
		}
		cli, err := newClient()
		if err != nil {
			return err
		}
		name, err := cli.ObjectName(cmd.Context(), typ, number)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), name.Name)
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the most recent events of the panel log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli, err := newClient()
		if err != nil {
			return err
		}
		events, err := cli.Events(cmd.Context(), eventLimit)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderEvents(events))
		return nil
	},
}

var doorsCmd = &cobra.Command{
	Use:   "doors",
	Short: "Show the opened doors report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli, err := newClient()
		if err != nil {
			return err
		}
		doors, err := cli.OpenedDoors(cmd.Context(), longDoors)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doors.Hex)
		return nil
	},
}

func zoneStateNames() []string {
	var names []string
	for s := integra.ZonesViolation; s <= integra.ZonesLongViolationTrouble; s++ {
		names = append(names, s.String())
	}
	return names
}

func parseZoneState(name string) (integra.ZoneState, error) {
	for s := integra.ZonesViolation; s <= integra.ZonesLongViolationTrouble; s++ {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown zone state %q, must be one of: %s", name, strings.Join(zoneStateNames(), ", "))
}

func parseObjectType(name string) (integra.ObjectType, error) {
	for t := integra.ObjectPartition; t <= integra.ObjectZoneWithPartition; t++ {
		if strings.EqualFold(t.String(), name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown object type %q", name)
}
