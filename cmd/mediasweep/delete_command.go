// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/autobrr/mediasweep/internal/services/orphanscan"
	"github.com/autobrr/mediasweep/pkg/pathcmp"
)

var errDeleteNotConfirmed = errors.New("deletion not confirmed")

func RunDeleteCommand(configPath *string) *cobra.Command {
	var (
		fromFile   string
		allOrphans bool
		yes        bool
		remote     remoteFlags
		batch      batchFlags
	)

	cmd := &cobra.Command{
		Use:   "delete [paths...]",
		Short: "Delete orphan files in batches",
		Long: `Delete files under the configured root in batches.

Paths come from the arguments, from --from-file (one per line, "-" for stdin)
or from a fresh scan with --all-orphans. Paths outside the root, directories
and files that are already gone are reported as failed and left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromFile == "-" && !yes {
				return errors.New("--from-file - reads stdin, pass --yes as well")
			}

			var (
				deleter orphanscan.BatchDeleter
				opts    = orphanscan.DefaultDriverOptions()
				root    string
				scan    func(ctx context.Context) ([]string, error)
			)

			if remote.enabled() {
				client, err := remote.client()
				if err != nil {
					return err
				}
				deleter = client
				root = client.BaseURL()
				scan = func(ctx context.Context) ([]string, error) {
					resp, err := client.ScanOrphans(ctx)
					if err != nil {
						return nil, err
					}
					return resp.OrphanFiles, nil
				}
			} else {
				cfg, err := loadConfig(cmd, *configPath)
				if err != nil {
					return err
				}
				local, err := openLocalService(cfg, nil)
				if err != nil {
					return err
				}
				defer local.Close()

				deleter = local.svc
				opts = local.svc.Config().DriverOptions()
				root = local.svc.Root()
				scan = func(ctx context.Context) ([]string, error) {
					res, err := local.svc.Scan(ctx)
					if err != nil {
						return nil, err
					}
					return res.OrphanFiles, nil
				}
			}

			opts, err := batch.apply(cmd, opts)
			if err != nil {
				return err
			}

			paths, err := collectPaths(cmd, args, fromFile)
			if err != nil {
				return err
			}
			if !remote.enabled() {
				for i, p := range paths {
					paths[i] = resolveUnderRoot(p, root)
				}
			}
			if allOrphans {
				orphans, err := scan(cmd.Context())
				if err != nil {
					return err
				}
				paths = append(paths, orphans...)
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintln(out, orphanscan.MessageNoSelection)
				return nil
			}

			if !yes {
				ok, err := confirmDelete(cmd, paths, root)
				if err != nil {
					return err
				}
				if !ok {
					return errDeleteNotConfirmed
				}
			}

			opts.OnProgress = func(p orphanscan.Progress) {
				line := fmt.Sprintf("Batch %d/%d: %d/%d (%d%%) deleted=%d failed=%d remaining=%d",
					p.Batch, p.Batches, p.Processed, p.Total, p.Percent(), p.Deleted, p.Failed, p.Remaining())
				if p.Err != nil {
					line += fmt.Sprintf(" error=%q", p.Err.Error())
				}
				fmt.Fprintln(out, line)
			}

			res, err := orphanscan.RunBatches(cmd.Context(), deleter, paths, opts)
			fmt.Fprintln(out, orphanscan.Summary(res.Deleted, res.Failed))
			if err != nil {
				return fmt.Errorf("deletion stopped after %s: %w", english.Plural(res.Deleted+res.Failed, "file", ""), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFile, "from-file", "", `Read paths from a file, one per line ("-" for stdin)`)
	cmd.Flags().BoolVar(&allOrphans, "all-orphans", false, "Scan first and delete every orphan found")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	remote.register(cmd)
	batch.register(cmd)

	return cmd
}

// collectPaths merges argument paths with the lines of fromFile. Blank lines
// and lines starting with # are skipped.
func collectPaths(cmd *cobra.Command, args []string, fromFile string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			paths = append(paths, a)
		}
	}

	if fromFile == "" {
		return paths, nil
	}

	var r io.Reader
	if fromFile == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(fromFile)
		if err != nil {
			return nil, fmt.Errorf("open path list: %w", err)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read path list: %w", err)
	}
	return paths, nil
}

// resolveUnderRoot anchors a relative path, as printed by scan, at root. The
// path is not cleaned so ".." segments still reach the deleter and fail there.
func resolveUnderRoot(p, root string) string {
	if filepath.IsAbs(p) || pathcmp.IsWindowsDriveAbs(p) {
		return p
	}
	return strings.TrimRight(root, "/\\") + "/" + p
}

// confirmDelete asks on stdin. A stdin that is a file or pipe rather than a
// terminal cannot answer, so --yes is required there.
func confirmDelete(cmd *cobra.Command, paths []string, root string) (bool, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, errors.New("stdin is not a terminal; pass --yes to delete without confirmation")
	}

	listing := orphanscan.Describe(paths)
	size := "unknown size"
	if listing.TotalBytes > 0 {
		size = humanize.Bytes(uint64(listing.TotalBytes))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Delete %s (%s) under %s? [y/N]: ", english.Plural(len(paths), "file", ""), size, root)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
