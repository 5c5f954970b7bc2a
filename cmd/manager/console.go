package main

import (
	"sync"

	"github.com/pterm/pterm"
)

// consolePanel renders the four difficulty lamps in the terminal, standing in
// for the binary LED row on the real board.
type consolePanel struct {
	mu    sync.Mutex
	area  *pterm.AreaPrinter
	level uint8
	allOn bool
	blink bool // SetAll overrides the binary display while blinking
}

func newConsolePanel() *consolePanel {
	area, _ := pterm.DefaultArea.Start()
	p := &consolePanel{area: area}
	p.render()
	return p
}

func (p *consolePanel) ShowDifficulty(level uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.blink = false
	p.render()
}

func (p *consolePanel) SetAll(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blink = true
	p.allOn = on
	p.render()
}

func (p *consolePanel) render() {
	lamps := ""
	for i := 0; i < 4; i++ {
		on := p.blink && p.allOn || !p.blink && (p.level>>i)&1 == 1
		if on {
			lamps += pterm.LightGreen("■ ")
		} else {
			lamps += pterm.Gray("□ ")
		}
	}
	box := pterm.DefaultBox.WithTitle("MANAGER").WithTitleTopCenter()
	p.area.Update(box.Sprintf("%s  difficulty=%d", lamps, p.level))
}

func printUsage() {
	pterm.DefaultBasicText.Println(
		"enter = short press (next difficulty), l = long press (start round)")
}
