package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"grassfinder.dev/internal/sim/packed"
)

func main() {
	var (
		at   = flag.String("at", "", "coordinates x,y,z (repeat with ';' for several)")
		anyY = flag.Bool("any_y", false, "hash without the y coordinate")
	)
	flag.Parse()

	if strings.TrimSpace(*at) == "" {
		fmt.Fprintln(os.Stderr, "missing -at")
		os.Exit(2)
	}
	for _, coord := range strings.Split(*at, ";") {
		x, y, z, err := parseCoord(coord)
		if err != nil {
			fmt.Fprintln(os.Stderr, "parse -at:", err)
			os.Exit(2)
		}
		fmt.Println(describe(x, y, z, *anyY))
	}
}

func parseCoord(s string) (x, y, z int32, err error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%q: want x,y,z", s)
	}
	var v [3]int32
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%q: %w", s, err)
		}
		v[i] = int32(n)
	}
	return v[0], v[1], v[2], nil
}

func describe(x, y, z int32, anyY bool) string {
	v := packed.Packed(x, y, z, anyY)
	nx := packed.Nibble(v, packed.AxisX)
	ny := packed.Nibble(v, packed.AxisY)
	nz := packed.Nibble(v, packed.AxisZ)
	return fmt.Sprintf("%d,%d,%d packed=0x%03x x=%d(%s) y=%d z=%d(%s)",
		x, y, z, v, nx, packed.ZoneOf(nx), ny, nz, packed.ZoneOf(nz))
}
