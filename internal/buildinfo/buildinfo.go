// Package buildinfo exposes version data injected at link time and prints the
// startup banner.
//
//	go build -ldflags "-X github.com/dmitrijs2005/eutype/internal/buildinfo.BuildVersion=v1.0.0"
package buildinfo

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

var (
	BuildVersion = "N/A"
	BuildDate    = "N/A"
	BuildCommit  = "N/A"
)

// PrintBanner writes the application name as ASCII art followed by the
// build data.
func PrintBanner(w io.Writer, name string) {
	fig := figure.NewFigure(name, "cybermedium", true)
	fmt.Fprintln(w, fig.String())
	PrintBuildData(w)
}

// PrintBuildData writes version, date and commit, one per line.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", BuildVersion)
	fmt.Fprintf(w, "Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "Build commit: %s\n", BuildCommit)
}
