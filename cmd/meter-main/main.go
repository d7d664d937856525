// cmd/meter-main/main.go
//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"runtime"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ili9341"

	"devicecode-go/bus"
	"devicecode-go/services/config"
	"devicecode-go/services/display"
	"devicecode-go/services/heartbeat"
	"devicecode-go/services/meter"
	"devicecode-go/types"
)

const device = "pico"

// Display panel on SPI0. The meter lines use GP2..GP13 per the embedded
// config.
var (
	panelSCK = machine.GP18
	panelSDO = machine.GP19
	panelSDI = machine.GP16
	panelCS  = machine.GP17
	panelDC  = machine.GP20
	panelRST = machine.GP21
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, device)

	println("[main] bootstrapping bus …")
	b := bus.NewBus(8)
	uiConn := b.NewConnection("ui")

	mon := uiConn.Subscribe(bus.T("meter", "#"))
	go func() {
		for m := range mon.Channel() {
			switch p := m.Payload.(type) {
			case types.MeterState:
				println("[monitor]", m.Topic.String(), p.Level, p.Status, p.Error)
			case types.RelativeEvent:
				println("[monitor]", m.Topic.String(), "active:", p.Active, p.Baseline)
			}
		}
	}()

	svc := meter.New(b.NewConnection("meter"))
	go svc.Run(ctx)

	hb := &heartbeat.Service{}
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		println("[main] heartbeat:", err.Error())
	}

	println("[main] starting config service …")
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	<-svc.Ready()
	println("[main] decoder attached")

	cfg, err := config.Lookup(device)
	if err != nil {
		println("[main] config lookup failed:", err.Error())
	} else if cfg.Display.Enabled {
		go runPanel(ctx, svc, cfg.Display)
	}

	values := uiConn.Subscribe(meter.TopicValue)
	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()
	var last types.MeterValue
	for {
		select {
		case m := <-values.Channel():
			if v, ok := m.Payload.(types.MeterValue); ok {
				last = v
			}
		case <-tick.C:
			println("[main] value", last.Text, "rel:", last.Relative, last.Delta)
			printMem()
		}
	}
}

func runPanel(ctx context.Context, svc *meter.Service, cfg types.DisplayConfig) {
	machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 40_000_000,
		SCK:       panelSCK,
		SDO:       panelSDO,
		SDI:       panelSDI,
	})
	lcd := ili9341.NewSPI(machine.SPI0, panelDC, panelCS, panelRST)
	lcd.Configure(ili9341.Config{})
	if err := lcd.SetRotation(drivers.Rotation90); err != nil {
		println("[display] rotation:", err.Error())
	}
	lcd.FillScreen(display.Black)

	p := display.NewPanel(lcd, int(cfg.Scale))
	println("[display] running every", cfg.RefreshMs, "ms")
	p.Run(ctx, svc.Decoder(), time.Duration(cfg.RefreshMs)*time.Millisecond)
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
