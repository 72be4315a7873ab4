package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	xtc "github.com/lcls-exp/xtcreader_go/pkg"
)

// xtcdump prints the container tree of an XTC file, one line per
// container, and a per-type summary at the end.
func main() {
	filename := flag.String("file", "", "XTC file to dump")
	maxEvents := flag.Int("events", -1, "Maximum number of events to dump (-1 for all)")
	flag.Parse()

	if *filename == "" {
		fmt.Fprintln(os.Stderr, "usage: xtcdump -file <input.xtc> [-events N]")
		os.Exit(1)
	}

	file, err := os.Open(*filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error opening file:", err)
		os.Exit(1)
	}
	defer file.Close()

	registry := xtc.NewTypeRegistry()
	reader := xtc.NewEventReader(file)
	typeCounts := make(map[uint16]int)

	eventID := 0
	for *maxEvents < 0 || eventID < *maxEvents {
		dgram, payload, err := reader.NextEvent()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "stream ended:", err)
			break
		}

		fmt.Printf("event %d  time=%.9f  fiducials=%d  damage=0x%06x  extent=%d\n",
			eventID, dgram.Clock.AsDouble(), dgram.Stamp.Fiducials(),
			dgram.Xtc.Damage.Flags(), dgram.Xtc.Extent)

		err = xtc.WalkXtc(payload, registry, func(node xtc.XtcNode) bool {
			code := node.Header.Contains.ID()
			typeCounts[code]++
			indent := strings.Repeat("  ", node.Depth+1)
			compressed := ""
			if node.Header.Contains.Compressed() {
				compressed = " compressed"
			}
			fmt.Printf("%s%s v%d  src=%d/%d  payload=%d%s\n",
				indent, registry.TypeName(code), node.Header.Contains.Version(),
				node.Header.Src.Level(), node.Header.Src.DetectorID(),
				node.Header.PayloadSize(), compressed)
			return true
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "walk abandoned:", err)
		}
		eventID++
	}

	fmt.Printf("\n%d events\n", eventID)
	for _, code := range sortedCodes(typeCounts) {
		fmt.Printf("%6d  %s\n", typeCounts[code], registry.TypeName(code))
	}
}

func sortedCodes(counts map[uint16]int) []uint16 {
	codes := maps.Keys(counts)
	slices.Sort(codes)
	return codes
}
