// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docketworks/docket/cmd/docket/cli"
	"github.com/docketworks/docket/lib/config"
	"github.com/docketworks/docket/lib/record"
)

// InitCommand returns the "init" command for creating an issue root.
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:    "init",
		Summary: "Create an issue root in the current directory",
		Description: `Create the .docket issue root: the records directory and a
config.yaml holding the defaults. Fails when .docket already exists
here.

Only the current directory is considered. Running init in a
subdirectory of an existing root creates a nested root that shadows
the outer one for commands run below it.`,
		Usage: "docket init",
		Examples: []cli.Example{
			{
				Description: "Create an issue root",
				Command:     "docket init",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			workingDir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}
			root, err := runInit(workingDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "initialized issue root at %s\n", root)
			return nil
		},
	}
}

// runInit creates the issue root directly under dir.
func runInit(dir string) (string, error) {
	root := filepath.Join(dir, config.RootDirName)
	if _, err := os.Stat(root); err == nil {
		return "", fmt.Errorf("%s already exists", root)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking %s: %w", root, err)
	}

	if err := os.MkdirAll(filepath.Join(root, record.DirName), 0o755); err != nil {
		return "", fmt.Errorf("creating issue root: %w", err)
	}
	cfg := config.Default()
	if err := cfg.Save(root); err != nil {
		return "", err
	}
	return root, nil
}
