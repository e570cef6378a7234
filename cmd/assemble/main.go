// Command assemble translates one source file of this instruction
// set's assembly syntax into a flat binary image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/armforge/arm2core/asm/encoder"
	"github.com/armforge/arm2core/asm/lexer"
	"github.com/armforge/arm2core/asm/parser"
	"github.com/armforge/arm2core/config"
	"github.com/armforge/arm2core/errctx"
	"github.com/armforge/arm2core/ioutil"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (default: platform config dir)")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: assemble <source.s> <out.bin>")
		os.Exit(2)
	}
	sourcePath, outPath := flag.Arg(0), flag.Arg(1)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errctx.Wrap(err))
		os.Exit(1)
	}

	if err := run(cfg, sourcePath, outPath); err != nil {
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

func run(cfg *config.Config, sourcePath, outPath string) error {
	lines, err := ioutil.LoadLines(sourcePath, cfg.Assemble.MaxLines, cfg.Assemble.MaxLineLength)
	if err != nil {
		return errctx.Wrap(err)
	}

	s := parser.NewState()
	for lineNo, line := range lines {
		tokens, blank := lexer.Tokenize(line)
		if blank {
			continue
		}

		ins, skip, err := parser.ParseLine(s, tokens)
		if err != nil {
			return err
		}
		if skip {
			continue
		}

		word, err := encoder.Encode(ins)
		if err != nil {
			return err
		}
		s.Emit(word)
	}

	if pending := s.Reftab.Pending(); len(pending) > 0 {
		return errctx.Invalidf("undefined label(s) referenced: %v", pending)
	}
	s.FlushLiterals()

	return errctx.Wrap(ioutil.SaveImage(outPath, s.Image))
}
