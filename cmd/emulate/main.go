// Command emulate loads a flat binary image produced by the assemble
// command and runs it to completion, printing the halt-time machine
// state.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/armforge/arm2core/config"
	"github.com/armforge/arm2core/errctx"
	"github.com/armforge/arm2core/ioutil"
	"github.com/armforge/arm2core/viewer"
	"github.com/armforge/arm2core/vm"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (default: platform config dir)")
	noGPIO := flag.Bool("no-gpio-print", false, "Suppress GPIO access banners")
	showViewer := flag.Bool("viewer", false, "Open the read-only register/memory dashboard after halting")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: emulate <image.bin>")
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errctx.Wrap(err))
		os.Exit(1)
	}
	if *noGPIO {
		cfg.Emulate.GPIOPrintEnabled = false
	}
	if *showViewer {
		cfg.Viewer.Enabled = true
	}

	if err := run(cfg, imagePath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func run(cfg *config.Config, imagePath string) error {
	image, err := ioutil.LoadImage(imagePath)
	if err != nil {
		return errctx.Wrap(err)
	}

	mem := vm.NewMemory(os.Stdout, cfg.Emulate.GPIOPrintEnabled)
	if err := mem.LoadImage(image); err != nil {
		return err // already stamped by errctx.Invalidf inside vm.Memory.LoadImage
	}

	m, err := vm.NewMachine(mem)
	if err != nil {
		return err // already stamped inside vm, via Memory.LoadWord
	}
	if err := m.Run(); err != nil {
		return err
	}

	m.DumpState(os.Stdout)

	if cfg.Viewer.Enabled {
		v := viewer.New(m, cfg.Viewer.ColorOutput, cfg.Viewer.NumberFormat)
		return errctx.Wrap(v.Run())
	}
	return nil
}
