// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/autobrr/mediasweep/internal/api/handlers"
	"github.com/autobrr/mediasweep/internal/services/orphanscan"
	"github.com/autobrr/mediasweep/pkg/pathcmp"
)

func RunScanCommand(configPath *string) *cobra.Command {
	var (
		asJSON  bool
		showAll bool
		remote  remoteFlags
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List media files no registry record references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := scanOrphans(cmd, *configPath, &remote)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			printScan(cmd.OutOrStdout(), resp, showAll)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the scan response as JSON")
	cmd.Flags().BoolVar(&showAll, "all", false, "List registered files too")
	remote.register(cmd)

	return cmd
}

// scanOrphans runs a scan locally or on the remote server.
func scanOrphans(cmd *cobra.Command, configPath string, remote *remoteFlags) (*handlers.ScanResponse, error) {
	if remote.enabled() {
		client, err := remote.client()
		if err != nil {
			return nil, err
		}
		return client.Scan(cmd.Context())
	}

	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return nil, err
	}
	local, err := openLocalService(cfg, nil)
	if err != nil {
		return nil, err
	}
	defer local.Close()

	return scanLocal(cmd.Context(), local.svc)
}

func scanLocal(ctx context.Context, svc *orphanscan.Service) (*handlers.ScanResponse, error) {
	res, err := svc.Scan(ctx)
	if err != nil {
		return nil, err
	}
	resp := handlers.NewScanResponse(svc.Root(), res)
	return &resp, nil
}

func printScan(w io.Writer, resp *handlers.ScanResponse, showAll bool) {
	fmt.Fprintf(w, "Root: %s\n", resp.Root)
	fmt.Fprintf(w, "Scanned %s, %s (%s)\n",
		english.Plural(len(resp.AllFiles), "file", ""),
		english.Plural(len(resp.OrphanFiles), "orphan", ""),
		humanize.Bytes(uint64(max(resp.Orphans.TotalBytes, 0))))

	for _, category := range orphanscan.Categories {
		if n := resp.Orphans.ByCategory[category]; n > 0 {
			fmt.Fprintf(w, "  %-9s %d\n", category, n)
		}
	}

	if resp.Warning != "" {
		fmt.Fprintf(w, "\n%s\n", resp.Warning)
	}

	files := resp.Orphans.Files
	if !showAll && len(files) == 0 {
		return
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if showAll {
		orphans := make(map[string]struct{}, len(resp.OrphanFiles))
		for _, p := range resp.OrphanFiles {
			orphans[p] = struct{}{}
		}
		for _, p := range resp.AllFiles {
			status := "registered"
			if _, ok := orphans[p]; ok {
				status = "orphan"
			}
			fmt.Fprintf(tw, "%s\t%s\n", status, pathcmp.RelativeTo(p, resp.Root))
		}
	} else {
		for _, f := range files {
			fmt.Fprintf(tw, "%s\t%s\n", formatSize(f.Size), pathcmp.RelativeTo(f.Path, resp.Root))
		}
	}
	_ = tw.Flush()
}

func formatSize(size int64) string {
	if size < 0 {
		return "missing"
	}
	return humanize.Bytes(uint64(size))
}
