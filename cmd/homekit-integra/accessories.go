package main

import (
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
)

type ZoneSensors []*ZoneSensor

func (sensors ZoneSensors) Update(zones map[int]zoneStatus) {
	for _, sensor := range sensors {
		sensor.Update(zones[sensor.Number])
	}
}

// ZoneSensor is a contact sensor for a panel zone.
type ZoneSensor struct {
	*accessory.A
	Number  int
	Contact *service.ContactSensor
	Tamper  *characteristic.StatusTampered
	Fault   *characteristic.StatusFault
	Active  *characteristic.StatusActive
}

func newZoneSensor(info accessory.Info, number int) *ZoneSensor {
	a := ZoneSensor{
		Number: number,
	}
	a.A = accessory.New(info, accessory.TypeSensor)

	a.Contact = service.NewContactSensor()
	a.AddS(a.Contact.S)

	a.Tamper = characteristic.NewStatusTampered()
	a.Contact.AddC(a.Tamper.C)

	a.Fault = characteristic.NewStatusFault()
	a.Contact.AddC(a.Fault.C)

	a.Active = characteristic.NewStatusActive()
	a.Active.SetValue(true)
	a.Contact.AddC(a.Active.C)

	return &a
}

func (sensor *ZoneSensor) Update(zone zoneStatus) {
	name := sensor.Name()
	violatedGauge.WithLabelValues(name).Set(boolAs[float64](zone.violated))
	tamperGauge.WithLabelValues(name).Set(boolAs[float64](zone.tamper))
	alarmGauge.WithLabelValues(name).Set(boolAs[float64](zone.alarm))
	bypassedGauge.WithLabelValues(name).Set(boolAs[float64](zone.bypassed))
	troubleGauge.WithLabelValues(name).Set(boolAs[float64](zone.trouble))

	tamper := boolAs[int](zone.tamper)
	if sensor.Tamper.Value() != tamper {
		log.Info("tamper", "zone", sensor.Number, "status", zone.tamper)
		_ = sensor.Tamper.SetValue(tamper)
	}

	fault := boolAs[int](zone.trouble)
	if sensor.Fault.Value() != fault {
		log.Info("trouble", "zone", sensor.Number, "status", zone.trouble)
		_ = sensor.Fault.SetValue(fault)
	}

	if active := !zone.bypassed; sensor.Active.Value() != active {
		log.Info("bypass", "zone", sensor.Number, "status", zone.bypassed)
		sensor.Active.SetValue(active)
	}

	current := boolAs[int](zone.violated)
	if v := sensor.Contact.ContactSensorState.Value(); v == current {
		return
	}
	_ = sensor.Contact.ContactSensorState.SetValue(current)
	log.Info(
		"contact",
		"zone", sensor.Number,
		"status", current,
		"violated", zone.violated,
		"alarm", zone.alarm,
	)
}
