package main

import (
	"context"
	"fmt"

	"github.com/brutella/hap/accessory"
	integra "github.com/caarlos0/homekit-integra"
)

type zoneStatus struct {
	violated bool
	tamper   bool
	alarm    bool
	bypassed bool
	trouble  bool
}

// polledStates are the zone bitmaps read on every poll.
var polledStates = []integra.ZoneState{
	integra.ZonesViolation,
	integra.ZonesTamper,
	integra.ZonesAlarm,
	integra.ZonesBypass,
	integra.ZonesNoViolationTrouble,
	integra.ZonesLongViolationTrouble,
}

func mergeZoneStates(states map[integra.ZoneState][]int) map[int]zoneStatus {
	zones := map[int]zoneStatus{}
	for state, numbers := range states {
		for _, n := range numbers {
			zone := zones[n]
			switch state {
			case integra.ZonesViolation:
				zone.violated = true
			case integra.ZonesTamper:
				zone.tamper = true
			case integra.ZonesAlarm:
				zone.alarm = true
			case integra.ZonesBypass:
				zone.bypassed = true
			case integra.ZonesNoViolationTrouble, integra.ZonesLongViolationTrouble:
				zone.trouble = true
			}
			zones[n] = zone
		}
	}
	return zones
}

func pollZones(ctx context.Context, cli *integra.Client) (map[int]zoneStatus, error) {
	states := map[integra.ZoneState][]int{}
	for _, state := range polledStates {
		numbers, err := cli.ZoneNumbers(ctx, state)
		if err != nil {
			return nil, fmt.Errorf("could not read %s zones: %w", state, err)
		}
		states[state] = numbers
	}
	return mergeZoneStates(states), nil
}

func setupZones(ctx context.Context, execute Executor, cfg Config, zones map[int]zoneStatus) ZoneSensors {
	var sensors ZoneSensors
	for _, zone := range cfg.allZones() {
		name := zone.name
		if name == "" {
			name = readZoneName(ctx, execute, zone.number)
		}
		sensor := newZoneSensor(accessory.Info{
			Name:         name,
			Manufacturer: manufacturer,
		}, zone.number)
		sensor.Update(zones[zone.number])
		sensors = append(sensors, sensor)
	}
	return sensors
}

func readZoneName(ctx context.Context, execute Executor, number int) string {
	var name integra.ObjectName
	if err := execute(ctx, func(cli *integra.Client) (err error) {
		name, err = cli.ObjectName(ctx, integra.ObjectZone, number)
		return
	}); err != nil || name.Name == "" {
		log.Warn("could not read zone name", "zone", number, "err", err)
		return fmt.Sprintf("Zone %d", number)
	}
	return name.Name
}
