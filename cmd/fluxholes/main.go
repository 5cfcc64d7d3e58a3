// fluxholes places hole grids into layered designs.
//
// Build:
//
//	go build -o fluxholes ./cmd/fluxholes
//
// Examples:
//
//	fluxholes holes board.dxf out.dxf --zone-layer 1 --hole-layer 100 --circuit-layers 2,3
//	fluxholes batch board.dxf jobs.csv out.dxf --report report.pdf
//	fluxholes layers board.geojson --wkt
package main

import "github.com/piwi3910/fluxholes/cmd/fluxholes/cmd"

func main() {
	cmd.Execute()
}
