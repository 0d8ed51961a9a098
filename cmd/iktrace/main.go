// iktrace is a CLI utility for inspecting recorded IK traces.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/Faultbox/stance-ik/internal/network/packets"
	"github.com/Faultbox/stance-ik/internal/trace"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "runs", "ls":
		cmdRuns(args)
	case "frames", "dump":
		cmdFrames(args)
	case "export", "x":
		cmdExport(args)
	case "cat":
		cmdCat(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`iktrace - foot IK trace utility

Usage:
  iktrace <command> [options]

Commands:
  runs <trace.db>                       List recorded runs
  frames [-n N] [-c name] <trace.db> <run>  Print a run's frames
  export <trace.db> <run> <out.jsonl.zst>  Export a run as zstd JSON lines
  cat [-n N] <file.jsonl.zst>           Print frames from an export

Examples:
  iktrace runs run.db
  iktrace frames -n 20 run.db 1
  iktrace export run.db 1 run1.jsonl.zst`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func openStore(path string) *trace.Store {
	if _, err := os.Stat(path); err != nil {
		fail("Error: %v", err)
	}
	store, err := trace.OpenStore(path)
	if err != nil {
		fail("Error: %v", err)
	}
	return store
}

func parseRun(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fail("Invalid run id %q", s)
	}
	return id
}

func cmdRuns(args []string) {
	if len(args) < 1 {
		fail("Usage: iktrace runs <trace.db>")
	}

	store := openStore(args[0])
	defer store.Close()

	runs, err := store.Runs(context.Background())
	if err != nil {
		fail("Error: %v", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWORLD\tHZ\tFRAMES\tDROPPED\tSTARTED\tDURATION")
	for _, r := range runs {
		dur := "recording"
		if !r.EndedAt.IsZero() {
			dur = r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.World, r.TickRateHz, r.Frames, r.Dropped,
			r.StartedAt.Local().Format(time.DateTime), dur)
	}
	tw.Flush()
}

func cmdFrames(args []string) {
	fs := flag.NewFlagSet("frames", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N frames (0 = all)")
	name := fs.String("c", "", "Only frames of this character")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: iktrace frames [-n N] [-c name] <trace.db> <run>")
	}

	store := openStore(fs.Arg(0))
	defer store.Close()

	p := newPrinter(*limit, *name)
	err := store.Frames(context.Background(), parseRun(fs.Arg(1)), p.print)
	p.flush()
	if err != nil && !errors.Is(err, errLimit) {
		fail("Error: %v", err)
	}
}

func cmdExport(args []string) {
	if len(args) < 3 {
		fail("Usage: iktrace export <trace.db> <run> <out.jsonl.zst>")
	}

	store := openStore(args[0])
	defer store.Close()

	out, err := os.Create(args[2])
	if err != nil {
		fail("Error: %v", err)
	}
	n, err := store.ExportJSONLZstd(context.Background(), parseRun(args[1]), out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fail("Error: %v", err)
	}
	fmt.Printf("Exported %d frames to %s\n", n, args[2])
}

func cmdCat(args []string) {
	fs := flag.NewFlagSet("cat", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N frames (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: iktrace cat [-n N] <file.jsonl.zst>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}
	defer f.Close()

	p := newPrinter(*limit, "")
	err = trace.ReadJSONLZstd(f, p.print)
	p.flush()
	if err != nil && !errors.Is(err, errLimit) {
		fail("Error: %v", err)
	}
}

var errLimit = errors.New("limit reached")

type printer struct {
	tw    *tabwriter.Writer
	limit int
	name  string
	count int
}

func newPrinter(limit int, name string) *printer {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TICK\tCHAR\tPHASE\tL.OFF\tR.OFF\tL.EFF\tR.EFF\tL.PITCH\tR.PITCH\tHIP\tCAPSULE\t")
	return &printer{tw: tw, limit: limit, name: name}
}

func (p *printer) print(f packets.Frame) error {
	if p.name != "" && f.Character != p.name {
		return nil
	}
	if p.limit > 0 && p.count >= p.limit {
		return errLimit
	}
	p.count++
	fmt.Fprintf(p.tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%.1f\t%.1f\t%.2f\t%.2f\t\n",
		f.Tick, f.Character, f.Phase,
		footOffset(f.Left), footOffset(f.Right),
		fmt.Sprintf("%.2f", f.Left.Effector), fmt.Sprintf("%.2f", f.Right.Effector),
		f.Left.Pitch, f.Right.Pitch, f.HipOffset, f.CapsuleHalfHeight)
	return nil
}

func footOffset(foot packets.Foot) string {
	if !foot.Hit {
		return "-"
	}
	return fmt.Sprintf("%.2f", foot.Offset)
}

func (p *printer) flush() {
	p.tw.Flush()
	fmt.Fprintf(os.Stderr, "\n(%d frames)\n", p.count)
}
