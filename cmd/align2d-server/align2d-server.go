package main

import (
	"flag"
	"log"

	"github.com/abworrall/align2d/pkg/server"
	"github.com/abworrall/align2d/pkg/session"
)

var (
	fVerbosity int
	fAddr      string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fAddr, "addr", ":8080", "address to listen on")
	flag.Parse()

	log.Printf("align2d-server starting\n")
}

func main() {
	in, err := session.LoadFilesAndDirs(flag.Args()...)
	if err != nil {
		log.Fatal(err)
	}
	if fVerbosity > 0 {
		in.Config.Verbosity = fVerbosity
	}

	s, err := session.New(in.Fixed, in.Moving, in.Config)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("serving %s onto %s, on %s\n", in.Metadata[1].Filename, in.Metadata[0].Filename, fAddr)
	if err := server.New(s).Run(fAddr); err != nil {
		log.Fatal(err)
	}
}
