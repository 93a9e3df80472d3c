// Command gintendo loads an iNES ROM and runs it, presenting the
// PPU's output in an ebiten window.
package main

import (
	"context"
	"flag"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/bdwalton/gintendo/bus"
	"github.com/bdwalton/gintendo/joypad"
	"github.com/bdwalton/gintendo/mappers"
	"github.com/bdwalton/gintendo/nesrom"
	"github.com/bdwalton/gintendo/ppu"
)

var romFile = flag.String("rom", "", "Path to the iNES ROM to run.")

// keymap1 binds ebiten keys to joypad 1's buttons, in hardware shift
// order (A, B, Select, Start, Up, Down, Left, Right).
var keymap1 = []struct {
	key    ebiten.Key
	button uint8
}{
	{ebiten.KeyA, joypad.A},
	{ebiten.KeyB, joypad.B},
	{ebiten.KeySpace, joypad.Select},
	{ebiten.KeyEnter, joypad.Start},
	{ebiten.KeyUp, joypad.Up},
	{ebiten.KeyDown, joypad.Down},
	{ebiten.KeyLeft, joypad.Left},
	{ebiten.KeyRight, joypad.Right},
}

// pollJoypad1 samples ebiten's keyboard state into j1, matching the
// host contract: the vblank callback is the only place core state is
// mutated from outside the bus/CPU/PPU tick loop.
func pollJoypad1(p *ppu.PPU, j1, j2 *joypad.Joypad) {
	for _, k := range keymap1 {
		if ebiten.IsKeyPressed(k.key) {
			j1.Set(k.button)
		} else {
			j1.Clear(k.button)
		}
	}
}

func main() {
	flag.Parse()

	rom, err := nesrom.New(*romFile)
	if err != nil {
		glog.Fatalf("invalid ROM %q: %v", *romFile, err)
	}

	m, err := mappers.Get(rom)
	if err != nil {
		glog.Fatalf("couldn't load mapper: %v", err)
	}

	b := bus.New(m, pollJoypad1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	if err := ebiten.RunGame(b); err != nil {
		glog.Fatalf("ebiten.RunGame: %v", err)
	}
}
