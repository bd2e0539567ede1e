// cmd/atlas-navdump/main.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/atlasfg/atlas/atlaserr"
	"github.com/atlasfg/atlas/navdb"
)

func dump(root, out string, pretty bool) error {
	var elog atlaserr.ErrorLogger
	db, err := navdb.Load(root, &elog)
	if err != nil {
		return err
	}
	if elog.HaveErrors() {
		fmt.Fprintln(os.Stderr, elog.String())
	}

	result := struct {
		Navaids  any `json:"navaids"`
		Fixes    any `json:"fixes"`
		Airways  any `json:"airways"`
		Airports any `json:"airports"`
	}{db.Navaids, db.Fixes, db.Airways, db.Airports}

	var buf []byte
	if pretty {
		buf, err = json.MarshalIndent(result, "", "  ")
	} else {
		buf, err = json.Marshal(result)
	}
	if err != nil {
		return err
	}

	if out == "" {
		_, err = os.Stdout.Write(buf)
		return err
	}
	return os.WriteFile(out, buf, 0644)
}

func main() {
	app := &cli.App{
		Name:  "atlas-navdump",
		Usage: "dump a loaded FlightGear navigation database as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "navdata",
				Usage:    "path to the navigation data root (contains Navaids/ and Airports/)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "output file path (default: stdout)",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "indent the JSON output",
			},
		},
		Action: func(cCtx *cli.Context) error {
			return dump(cCtx.String("navdata"), cCtx.String("out"), cCtx.Bool("pretty"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
