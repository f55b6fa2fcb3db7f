// Command dumbutil bundles the match-log summarizer, SGF duplicate
// finder, and HTML report renderer dumbutil.py carried alongside
// Randy; see original_source/dumbutil.py's -s/-d/-3 modes.
package main

import (
	"fmt"
	"os"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  %[1]s -s <logfile>        print a head-to-head summary of a match .log
  %[1]s -html <logfile>     render a match .log as a standalone HTML report
  %[1]s -d <path>           find duplicate SGFs under path (sha512)
  %[1]s -3 <path>           find duplicate SGFs under path (crc32, faster, not collision-safe)
`, os.Args[0])
}

func main() {
	if len(os.Args) != 3 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "-s":
		err = summaryCmd(os.Args[2])
	case "-html":
		err = htmlReportCmd(os.Args[2], os.Stdout)
	case "-d":
		err = finddupesPath(os.Args[2], sha512Sum, os.Stdout)
	case "-3":
		err = finddupesPath(os.Args[2], crc32Sum, os.Stdout)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
