// Command a11ycheck analyses documents from the command line and prints one
// JSON line per file.
//
//	a11ycheck [-config path] [-v] file...
//
// The exit status is 1 when any file is not valid and 2 on usage errors.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"

	"github.com/brunobiangulo/docaccess"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("a11ycheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file (YAML)")
	verbose := fs.Bool("v", false, "Log skipped images and rejections")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: a11ycheck [-config path] [-v] file...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(
		tint.NewHandler(stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	)

	cfg := docaccess.DefaultConfig()
	if *configPath != "" {
		loaded, err := docaccess.LoadConfig(*configPath)
		if err != nil {
			logger.Error("loading config", "error", err)
			return 2
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	evaluator, err := docaccess.New(cfg, docaccess.WithLogger(logger))
	if err != nil {
		logger.Error("creating evaluator", "error", err)
		return 2
	}

	enc := json.NewEncoder(stdout)
	status := 0
	for _, path := range fs.Args() {
		line, valid, err := check(ctx, evaluator, path)
		if err != nil {
			logger.Error("checking file", "file", path, "error", err)
			status = 1
			continue
		}
		if !valid {
			status = 1
		}
		if err := enc.Encode(line); err != nil {
			logger.Error("writing result", "error", err)
			return 1
		}
	}
	return status
}

// check analyses one file and returns its result with a "file" key added.
func check(ctx context.Context, e docaccess.Evaluator, path string) (map[string]json.RawMessage, bool, error) {
	mediaType, ok := docaccess.MediaTypeFromExt(filepath.Ext(path))
	if !ok {
		return nil, false, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	res, err := e.Analyze(ctx, docaccess.Document{
		Name:      filepath.Base(path),
		Data:      data,
		MediaType: mediaType,
	})
	if err != nil {
		return nil, false, err
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return nil, false, err
	}
	var line map[string]json.RawMessage
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, false, err
	}
	name, _ := json.Marshal(path)
	line["file"] = name
	return line, res.Kind() == docaccess.KindValid, nil
}
