package main

import (
	"sync"

	"github.com/pterm/pterm"
)

// consoleLamps renders the red/green feedback pair, intensity included, so
// the ambient breathe animation is visible in the terminal.
type consoleLamps struct {
	mu    sync.Mutex
	area  *pterm.AreaPrinter
	red   uint8
	green uint8
}

func newConsoleLamps() *consoleLamps {
	area, _ := pterm.DefaultArea.Start()
	l := &consoleLamps{area: area}
	l.render()
	return l
}

func (l *consoleLamps) SetRed(level uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.red = level
	l.render()
}

func (l *consoleLamps) SetGreen(level uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.green = level
	l.render()
}

func (l *consoleLamps) render() {
	red := pterm.NewRGB(l.red, 0, 0).Sprint("●")
	green := pterm.NewRGB(0, l.green, 0).Sprint("●")
	box := pterm.DefaultBox.WithTitle("REMOTE").WithTitleTopCenter()
	l.area.Update(box.Sprintf("%s %s", red, green))
}

func printUsage() {
	pterm.DefaultBasicText.Println("1 / 2 / 3 = press that button")
}
