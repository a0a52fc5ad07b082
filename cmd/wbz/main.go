// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Command wbz converts game asset archives between the U8 and WBZ container
// formats. The direction is chosen from the input file extension and the
// output path is the input path with the extension swapped:
//
//	wbz track.u8    # writes track.wbz
//	wbz track.wbz   # writes track.u8
//
// Nothing is written on failure and the exit code is non-zero.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zlib"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	wbz "github.com/suprsokr/go-wbz"
)

func main() {
	log.SetOutput(os.Stderr)

	app := cli.NewApp()
	app.Name = "wbz"
	app.Usage = "convert game asset archives between U8 and WBZ"
	app.ArgsUsage = "<file.u8 | file.wbz>"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "level, l",
			Value: zlib.BestCompression,
			Usage: "zlib compression level (1-9), used only when encoding",
		},
		cli.BoolFlag{
			Name:  "verbose, V",
			Usage: "log the archive contents and debug details",
		},
	}
	app.Action = convert

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func convert(ctx *cli.Context) error {
	if ctx.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file, got %d", ctx.NArg())
	}

	inPath := ctx.Args().First()
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	var out []byte
	var outPath string
	switch ext := strings.ToLower(filepath.Ext(inPath)); ext {
	case ".wbz":
		log.Debugf("decoding %s (%d bytes)", inPath, len(data))
		if out, err = wbz.Decode(data); err != nil {
			return err
		}
		logFiles(out)
		outPath = swapExt(inPath, ".u8")

	case ".u8":
		cfg := wbz.DefaultConfig()
		cfg.Level = ctx.Int("level")
		log.Debugf("encoding %s (%d bytes) at level %d", inPath, len(data), cfg.Level)
		logFiles(data)
		if out, err = wbz.Encode(data, cfg); err != nil {
			return err
		}
		outPath = swapExt(inPath, ".wbz")

	default:
		return fmt.Errorf("unsupported file extension %q, want .u8 or .wbz", ext)
	}

	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return err
	}

	log.Infof("wrote %s (%d bytes)", outPath, len(out))
	return nil
}

// logFiles lists the archive contents at debug level.
func logFiles(u8Data []byte) {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}
	files, err := wbz.List(u8Data)
	if err != nil {
		return
	}
	for _, f := range files {
		log.Debugf("  %s (%d bytes at 0x%X)", f.Path, f.Size, f.Offset)
	}
}

// swapExt replaces path's extension with newExt.
func swapExt(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}
