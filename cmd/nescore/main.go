package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/pkg/profile"

	"github.com/nevisdale/nescore/internal/cpu"
	"github.com/nevisdale/nescore/internal/monitor"
	"github.com/nevisdale/nescore/internal/nes"
	"github.com/nevisdale/nescore/internal/script"
	"github.com/nevisdale/nescore/internal/ui"
)

func main() {
	var (
		romPath     = flag.String("rom", "", "iNES cartridge to run")
		binPath     = flag.String("bin", "", "raw binary to load on a flat 64KB machine")
		org         = flag.String("org", "$8000", "load address of -bin")
		entry       = flag.String("entry", "", "start address, overrides the reset vector (default: -org when the image has no vectors)")
		headless    = flag.Bool("headless", false, "run without a window")
		frames      = flag.Int("frames", 60, "frames to run in headless mode")
		useMonitor  = flag.Bool("monitor", false, "start the interactive monitor")
		scriptPath  = flag.String("script", "", "Lua script driving the machine")
		profileMode = flag.String("profile", "", "write a cpu or mem profile")
		statsAddr   = flag.String("statsview", "", "serve runtime stats at this address, e.g. localhost:18066")
		decimal     = flag.Bool("decimal", false, "enable BCD arithmetic (NMOS 6502 instead of 2A03)")
		strict      = flag.Bool("strict", false, "treat undocumented opcodes as diagnostic no-ops")
		queueNMI    = flag.Bool("queue-nmi", false, "service every NMI edge instead of coalescing them")
	)
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		log.Fatalf("unknown profile mode %q\n", *profileMode)
	}

	if *statsAddr != "" {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(*statsAddr))
			statsview.New().Start()
		}()
		log.Printf("stats server available at http://%s/debug/statsview\n", *statsAddr)
	}

	cfg := cpu.DefaultConfig()
	cfg.Decimal = *decimal
	cfg.Unofficial = !*strict
	cfg.QueueNMI = *queueNMI

	machine, err := newMachine(*romPath, *binPath, *org, cfg)
	if err != nil {
		log.Fatalf("couldn't create the machine: %s\n", err)
	}
	if *entry != "" {
		addr, err := parseAddr(*entry)
		if err != nil {
			log.Fatalf("bad -entry: %s\n", err)
		}
		machine.CPU().SetPC(addr)
	}

	runFrame := func() error {
		machine.RunFrame()
		return nil
	}
	if *scriptPath != "" {
		engine := script.New(machine, os.Stdout)
		defer engine.Close()
		if err := engine.DoFile(*scriptPath); err != nil {
			log.Fatalf("%s\n", err)
		}
		runFrame = engine.RunFrame
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *useMonitor:
		m := monitor.New(machine, os.Stdout)
		if err := m.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
			log.Fatalf("monitor: %s\n", err)
		}
	case *headless:
		for i := 0; i < *frames && ctx.Err() == nil; i++ {
			if err := runFrame(); err != nil {
				log.Fatalf("%s\n", err)
			}
		}
		fmt.Println(machine.CPU().Trace())
		report(machine.CPU().Diagnostics())
	default:
		if err := ui.RunUI(ui.New(machine, ui.WithFrameFunc(runFrame))); err != nil {
			log.Fatalf("ui: %s\n", err)
		}
	}
}

func newMachine(romPath, binPath, org string, cfg cpu.Config) (nes.Machine, error) {
	switch {
	case romPath != "" && binPath != "":
		return nil, fmt.Errorf("-rom and -bin are exclusive")
	case romPath != "":
		cart, err := nes.NewCartFromFile(romPath)
		if err != nil {
			return nil, err
		}
		log.Printf("loaded %s: %s\n", romPath, cart)
		return nes.NewConsole(cart, cfg)
	case binPath != "":
		addr, err := parseAddr(org)
		if err != nil {
			return nil, fmt.Errorf("bad -org: %w", err)
		}
		data, err := os.ReadFile(binPath)
		if err != nil {
			return nil, fmt.Errorf("couldn't read the binary: %w", err)
		}
		f := nes.NewFlat(cfg)
		f.LoadImage(addr, data)
		f.Reset()
		return f, nil
	}
	return nil, fmt.Errorf("one of -rom or -bin is required")
}

// parseAddr accepts decimal, 0x hex and $ hex.
func parseAddr(s string) (uint16, error) {
	if len(s) > 0 && s[0] == '$' {
		s = "0x" + s[1:]
	}
	v, err := strconv.ParseUint(s, 0, 16)
	return uint16(v), err
}

func report(d cpu.Diagnostics) {
	log.Printf("nmis: %d irqs: %d coalesced nmis: %d resets: %d\n", d.NMIs, d.IRQs, d.CoalescedNMIs, d.Resets)
	if d.IllegalOpcodes > 0 {
		log.Printf("illegal opcodes: %d, last %02X at $%04X\n", d.IllegalOpcodes, d.LastIllegal, d.LastIllegalPC)
	}
}
