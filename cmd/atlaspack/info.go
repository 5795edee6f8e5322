package main

import (
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <input-dir>",
		Short: "Report how many PNGs a directory holds and their combined pixel area, without packing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runInfo(args[0]); err != nil {
				return exitErr("info", err)
			}
			return nil
		},
	}
}

func runInfo(dir string) error {
	var count int
	var totalArea int64

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".png") {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("skipping unreadable file")
			return nil
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("skipping undecodable PNG")
			return nil
		}

		count++
		totalArea += int64(cfg.Width) * int64(cfg.Height)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", dir, err)
	}

	fmt.Printf("Directory:          %s\n", dir)
	fmt.Printf("Images found:       %d\n", count)
	fmt.Printf("Combined pixel area: %d\n", totalArea)
	return nil
}
