package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dd0wney/cluso-signal/pkg/auth"
	"github.com/dd0wney/cluso-signal/pkg/config"
	"github.com/dd0wney/cluso-signal/pkg/signal"
)

// laneFile is the JSON input shape: the same lane records the HTTP API
// accepts.
type laneFile struct {
	Lanes []signal.LaneCount `json:"lanes"`
}

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	input := flag.String("in", "-", "Lane counts JSON file, or - for stdin")
	asJSON := flag.Bool("json", false, "Emit the raw timing JSON instead of a table")
	hashKey := flag.String("hash-key", "", "Hash an API key for the configuration file and exit")
	flag.Parse()

	if *hashKey != "" {
		hash, err := auth.HashAPIKey(*hashKey)
		if err != nil {
			fatal(err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}

	var reader io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		reader = f
	}

	var file laneFile
	if err := json.NewDecoder(reader).Decode(&file); err != nil {
		fatal(fmt.Errorf("parsing lane counts: %w", err))
	}

	timing, err := signal.Optimize(file.Lanes, cfg.Signal)
	if err != nil {
		fatal(err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(timing); err != nil {
			fatal(err)
		}
		return
	}

	printTiming(timing)
}

func printTiming(timing *signal.IntersectionTiming) {
	fmt.Printf("Cycle length: %ds (lost time %ds, Y=%.3f)\n",
		timing.CycleLength, timing.LostTime, timing.SaturationDegree)
	if len(timing.Flags) > 0 {
		fmt.Printf("Flags: %v\n", timing.Flags)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DIRECTION\tGREEN\tYELLOW\tRED\tPCU\tFLOW RATIO")
	for _, phase := range timing.Phases {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\t%.4f\n",
			phase.Direction, phase.Green, phase.Yellow, phase.Red,
			phase.PCU, phase.FlowRatio)
	}
	w.Flush()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
