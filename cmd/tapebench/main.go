// Tapebench - compares interpreter builds by timing repeated runs
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

func main() {
	iterations := flag.Int("n", 100, "Timed runs per binary")
	bins := flag.String("bins", "", "Comma-separated interpreter binaries to compare (at least one)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tapebench -bins <bin1,bin2,...> [options] <program.b>\n\n")
		fmt.Fprintf(os.Stderr, "Runs the same program through each interpreter binary N times and\n")
		fmt.Fprintf(os.Stderr, "reports mean wall-clock time per run. Program output is captured and\n")
		fmt.Fprintf(os.Stderr, "discarded so that only interpreter speed is measured.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  tapebench -bins ./tapemill,./tapemill-old -n 50 mandel.b\n")
	}
	flag.Parse()

	if flag.NArg() != 1 || *bins == "" {
		flag.Usage()
		os.Exit(2)
	}
	program := flag.Arg(0)
	binaries := strings.Split(*bins, ",")

	fmt.Printf("tapebench session %s\n", uuid.NewString())
	fmt.Printf("program: %s, iterations: %d\n\n", program, *iterations)

	means := make([]time.Duration, len(binaries))
	for i, bin := range binaries {
		mean, err := benchBinary(bin, program, *iterations)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tapebench: %s: %v\n", bin, err)
			os.Exit(1)
		}
		means[i] = mean
		fmt.Printf("%-30s %12s/run\n", bin, mean)
	}

	if len(binaries) == 2 && means[1] > 0 && means[0] > 0 {
		ratio := float64(means[1]) / float64(means[0])
		fastest, slowest := binaries[0], binaries[1]
		if ratio < 1 {
			ratio = 1 / ratio
			fastest, slowest = slowest, fastest
		}
		fmt.Printf("\n%s is %.2fx faster than %s\n", fastest, ratio, slowest)
	}
}

// benchBinary runs one interpreter binary over the program the requested
// number of times and returns the mean duration of a run.
func benchBinary(bin, program string, iterations int) (time.Duration, error) {
	var total time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		cmd := exec.Command(bin, program)
		out, err := cmd.CombinedOutput()
		elapsed := time.Since(start)
		if err != nil {
			return 0, fmt.Errorf("run %d failed: %w\n%s", i+1, err, out)
		}
		total += elapsed
	}
	return total / time.Duration(iterations), nil
}
