package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mapwarden/vtt/internal/vtt"
)

// savetool inspects save slots and upgrades legacy ones to the current
// embedded-asset format in place.
//
//	savetool [-saves dir] info <slot>
//	savetool [-saves dir] convert <slot>
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	savesDir := flag.String("saves", vtt.DefaultConfig().SavesDir, "save slot directory")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-saves dir] info <slot> | convert <slot>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "slots run 1..%d\n", vtt.SaveSlots)
	}
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(2)
	}

	slot, err := strconv.Atoi(args[1])
	if err != nil || slot < 1 || slot > vtt.SaveSlots {
		log.Fatalf("slot %q must be a number in 1..%d", args[1], vtt.SaveSlots)
	}
	path := vtt.SlotPath(*savesDir, slot)

	switch args[0] {
	case "info":
		if err := runInfo(path); err != nil {
			log.Fatal(err)
		}
	case "convert":
		if err := runConvert(log, path); err != nil {
			log.Fatal(err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runInfo(path string) error {
	info, err := vtt.InspectSave(path)
	if err != nil {
		return err
	}
	fmt.Printf("file:        %s (%d bytes)\n", info.Path, info.Size)
	if info.Generation == 1 {
		fmt.Printf("format:      legacy referenced-path (revision %d)\n", info.LegacyVersion)
	} else {
		fmt.Printf("format:      embedded-asset\n")
	}
	if info.MapPath != "" {
		fmt.Printf("map:         %s\n", info.MapPath)
	}
	fmt.Printf("tokens:      %d\n", info.TokenCount)
	fmt.Printf("fog:         %dx%d cells\n", info.FogCols, info.FogRows)
	if info.CellSize > 0 {
		fmt.Printf("cell size:   %d px\n", info.CellSize)
	}
	fmt.Printf("camera:      x=%.1f y=%.1f zoom=%.2f\n",
		info.Camera.X, info.Camera.Y, info.Camera.Zoom)
	for _, w := range info.Warnings {
		fmt.Printf("warning:     %v\n", w)
	}
	return nil
}

func runConvert(log *logrus.Logger, path string) error {
	store := vtt.NewAssetStore()
	w, err := vtt.Load(path, store)
	if err != nil {
		return err
	}
	unresolved := 0
	for _, t := range w.Tokens {
		if t.Asset == vtt.NoAsset {
			unresolved++
		}
	}
	if unresolved > 0 {
		log.WithField("tokens", unresolved).Warn("unresolved token images will save as empty records")
	}
	if err := vtt.Save(path, w, store); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"slot":   path,
		"tokens": len(w.Tokens),
	}).Info("converted")
	return nil
}
