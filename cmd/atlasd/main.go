// cmd/atlasd/main.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/atlasfg/atlas/atlas"
	"github.com/atlasfg/atlas/atlaserr"
	"github.com/atlasfg/atlas/log"
	"github.com/atlasfg/atlas/navdb"
	"github.com/atlasfg/atlas/tile"
	"github.com/atlasfg/atlas/util"
)

func main() {
	navRoot := flag.String("navdata", "", "path to the FlightGear navigation data root (contains Navaids/ and Airports/)")
	sceneryRoot := flag.String("scenery", "", "path to the FlightGear scenery root rsync mirrors into")
	rsyncServer := flag.String("rsync-server", "", "rsync server for on-demand scenery fetches")
	mapExecutable := flag.String("map-bin", "map", "path to the map-rendering executable")
	fgRoot := flag.String("fg-root", "", "FG_ROOT passed through to the map executable")
	atlasRoot := flag.String("atlas-root", "", "directory atlasd stores rendered maps and caches under")
	mapSize := flag.Int("map-size", 256, "hires map resolution, in pixels per side")
	lowresMapSize := flag.Int("lowres-map-size", 64, "lowres map resolution, in pixels per side")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, or error")
	logDir := flag.String("log-dir", "", "directory for log files (default: OS-appropriate config dir)")
	tickInterval := flag.Duration("tick", 250*time.Millisecond, "main loop tick interval")
	maxCacheBytes := flag.Int64("max-cache-bytes", 512<<20, "trim the on-disk cache directory (tile map sizes) to this many bytes, oldest first, once per hour")
	configPath := flag.String("config", "", "optional config file (YAML/TOML/JSON) supplying defaults for any flag not given explicitly")
	flag.Parse()

	fc, err := loadFileConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlasd: reading -config %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	applyString := func(p *string, flagName, fileValue string) {
		if !explicit[flagName] && fileValue != "" {
			*p = fileValue
		}
	}
	applyInt := func(p *int, flagName string, fileValue int) {
		if !explicit[flagName] && fileValue != 0 {
			*p = fileValue
		}
	}
	applyString(navRoot, "navdata", fc.NavData)
	applyString(sceneryRoot, "scenery", fc.Scenery)
	applyString(rsyncServer, "rsync-server", fc.RsyncServer)
	applyString(mapExecutable, "map-bin", fc.MapExecutable)
	applyString(fgRoot, "fg-root", fc.FGRoot)
	applyString(atlasRoot, "atlas-root", fc.AtlasRoot)
	applyInt(mapSize, "map-size", fc.MapSize)
	applyInt(lowresMapSize, "lowres-map-size", fc.LowresMapSize)
	applyString(logLevel, "log-level", fc.LogLevel)
	applyString(logDir, "log-dir", fc.LogDir)

	if *navRoot == "" {
		fmt.Fprintln(os.Stderr, "atlasd: -navdata is required (or \"navdata\" in -config)")
		flag.Usage()
		os.Exit(1)
	}

	lg := log.New(true, *logLevel, *logDir)

	var elog atlaserr.ErrorLogger
	db, err := navdb.Load(*navRoot, &elog)
	if err != nil {
		lg.Errorf("loading navdata: %v", err)
		os.Exit(1)
	}
	if elog.HaveErrors() {
		elog.PrintErrors(lg)
	}

	cfg := tile.Config{
		RsyncServer:   *rsyncServer,
		SceneryRoot:   *sceneryRoot,
		MapExecutable: *mapExecutable,
		FGRoot:        *fgRoot,
		AtlasRoot:     *atlasRoot,
		MapSize:       *mapSize,
		LowresMapSize: *lowresMapSize,
	}

	c := atlas.NewController(db, cfg, lg)

	c.Subscribe(atlas.EventSceneryChanged, func(e atlas.Event) {
		lg.Infof("scenery changed: %v", e.Data)
	})

	lg.Infof("atlasd running, navdata=%s scenery=%s", *navRoot, *sceneryRoot)

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	cacheCullTicker := time.NewTicker(time.Hour)
	defer cacheCullTicker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CheckForInput()
			c.CheckScenery()
		case <-cacheCullTicker.C:
			if err := util.CacheCullObjects(*maxCacheBytes); err != nil {
				lg.Warnf("culling cache: %v", err)
			}
		}
	}
}
