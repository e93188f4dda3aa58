// Tapemill CLI - the main entry point for running Brainfuck programs
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"tapemill/compiler"
	"tapemill/manifest"
	"tapemill/vm"
)

var log = commonlog.GetLogger("tapemill")

func main() {
	verbose := flag.Bool("v", false, "Verbose diagnostics (phase timings)")
	dump := flag.Bool("dump", false, "Write a debug dump of the instruction tree to a side file")
	width := flag.Int("width", 0, "Cell width in bits: 8, 16, 32, or 64 (0 = manifest/default)")
	tapeLen := flag.Int("tape", 0, "Tape length in cells (0 = manifest/default)")
	emitImage := flag.String("emit-image", "", "Compile to a CBOR program image instead of running")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tapemill [options] <program.b | program.tmi>\n\n")
		fmt.Fprintf(os.Stderr, "Parses, optimizes, and runs a Brainfuck program, or runs a precompiled\n")
		fmt.Fprintf(os.Stderr, "program image. Settings come from flags, then a tapemill.toml found by\n")
		fmt.Fprintf(os.Stderr, "walking up from the program's directory, then built-in defaults.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tapemill hello.b                   # Run a program\n")
		fmt.Fprintf(os.Stderr, "  tapemill -v -dump mandel.b         # Run with timings and a tree dump\n")
		fmt.Fprintf(os.Stderr, "  tapemill -width 32 unicode.b       # 32-bit cells with UTF-8 I/O\n")
		fmt.Fprintf(os.Stderr, "  tapemill -emit-image m.tmi m.b     # Precompile to an image\n")
		fmt.Fprintf(os.Stderr, "  tapemill m.tmi                     # Run the image\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	path := flag.Arg(0)
	mf, err := manifest.FindAndLoad(filepath.Dir(path))
	if err != nil {
		fatal(err)
	}

	cellBits := mf.Tape.CellBits
	if *width != 0 {
		cellBits = *width
	}
	switch cellBits {
	case 8, 16, 32, 64:
	default:
		fatal(fmt.Errorf("unsupported cell width %d (want 8, 16, 32, or 64)", cellBits))
	}
	if *tapeLen != 0 {
		mf.Tape.Length = *tapeLen
	}

	var code []compiler.Node
	if strings.HasSuffix(path, ".tmi") {
		img, err := loadImage(path)
		if err != nil {
			fatal(err)
		}
		code = img.Code
		cellBits = img.CellBits
		log.Infof("loaded image %s (%d-bit cells)", path, cellBits)
	} else {
		code, err = parseSource(path)
		if err != nil {
			fatal(err)
		}
	}

	if *dump || mf.Dump.Enabled {
		if err := writeDump(path, mf.Dump.Path, code); err != nil {
			fatal(err)
		}
	}

	if *emitImage != "" {
		img := &compiler.Image{Version: compiler.ImageVersion, CellBits: cellBits, Code: code}
		data, err := compiler.MarshalImage(img)
		if err != nil {
			fatal(err)
		}
		if err := os.WriteFile(*emitImage, data, 0o644); err != nil {
			fatal(err)
		}
		log.Infof("wrote image %s (%d bytes)", *emitImage, len(data))
		return
	}

	cfg := vm.MemoryConfig{
		TapeLength:     mf.Tape.Length,
		FlushThreshold: mf.Output.BufferSize,
	}
	start := time.Now()
	switch cellBits {
	case 8:
		err = run[uint8](code, cfg)
	case 16:
		err = run[uint16](code, cfg)
	case 32:
		err = run[uint32](code, cfg)
	case 64:
		err = run[uint64](code, cfg)
	default:
		fatal(fmt.Errorf("unsupported cell width %d (want 8, 16, 32, or 64)", cellBits))
	}
	if err != nil {
		fatal(err)
	}
	log.Infof("executed in %s", time.Since(start))
}

func run[C vm.Cell](code []compiler.Node, cfg vm.MemoryConfig) error {
	return vm.NewInterpreter(vm.NewMemory[C](cfg)).Run(code)
}

func parseSource(path string) ([]compiler.Node, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	code, err := compiler.Parse(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("parsed %s in %s", path, time.Since(start))
	return code, nil
}

func loadImage(path string) (*compiler.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return compiler.UnmarshalImage(data)
}

// writeDump serializes a human-readable tree listing to a side file:
// the manifest's dump path if set, otherwise <program>.tree.txt.
func writeDump(srcPath, dumpPath string, code []compiler.Node) error {
	if dumpPath == "" {
		dumpPath = strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + ".tree.txt"
	}
	listing := compiler.DumpWithName(code, filepath.Base(srcPath))
	if err := os.WriteFile(dumpPath, []byte(listing), 0o644); err != nil {
		return err
	}
	log.Infof("wrote tree dump %s", dumpPath)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "tapemill: %v\n", err)
	os.Exit(1)
}
