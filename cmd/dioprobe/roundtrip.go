package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aalhour/directfile/blockfile"
	"github.com/aalhour/directfile/internal/logging"
	"github.com/aalhour/directfile/vfs"
)

type roundtripConfig struct {
	mode        string
	records     int
	size        int
	compression string
	checksum    string
	keep        bool
	readers     int
	cacheBytes  uint64
}

func newRoundtripCommand(a *app) *cobra.Command {
	var cfg roundtripConfig

	cmd := &cobra.Command{
		Use:   "roundtrip DIR",
		Short: "Write a scratch block file in DIR through a resolved handle and verify it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.roundtrip(cmd, args[0], cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.mode, "mode", "m", "auto", "requested mode")
	cmd.Flags().IntVarP(&cfg.records, "records", "n", 16, "number of records")
	cmd.Flags().IntVar(&cfg.size, "size", 10000, "bytes per record")
	cmd.Flags().StringVar(&cfg.compression, "compression", "snappy", "none, snappy, zlib, lz4, lz4hc or zstd")
	cmd.Flags().StringVar(&cfg.checksum, "checksum", "xxh3", "none, crc32c or xxh3")
	cmd.Flags().BoolVar(&cfg.keep, "keep", false, "keep the scratch file")
	cmd.Flags().IntVarP(&cfg.readers, "readers", "j", 4, "concurrent readers for the random read pass")
	cmd.Flags().Uint64Var(&cfg.cacheBytes, "cache-bytes", 1<<20, "record cache size for the random read pass, 0 disables it")
	return cmd
}

// recordData is deterministic so the read side can regenerate it.
func recordData(i, size int) []byte {
	line := fmt.Sprintf("record %08d ", i)
	return bytes.Repeat([]byte(line), size/len(line)+1)[:size]
}

func (a *app) roundtrip(cmd *cobra.Command, dir string, cfg roundtripConfig) error {
	if cfg.records < 0 || cfg.size < 0 {
		return fmt.Errorf("records and size must be non-negative")
	}
	if cfg.readers < 1 {
		return fmt.Errorf("readers must be at least 1")
	}
	m, err := vfs.ParseMode(cfg.mode)
	if err != nil {
		return err
	}
	bopts := blockfile.Options{Logger: a.logger}
	if bopts.Compression, err = blockfile.ParseCompression(cfg.compression); err != nil {
		return err
	}
	if bopts.Checksum, err = blockfile.ParseChecksum(cfg.checksum); err != nil {
		return err
	}

	path := filepath.Join(dir, "dioprobe-"+uuid.NewString()+".blk")
	opts := vfs.DefaultOptions()
	opts.Mode = m
	opts.Flag = os.O_RDWR | os.O_CREATE | os.O_EXCL
	opts.Logger = a.logger

	h, rep, err := vfs.Open(path, opts)
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	defer func() {
		_ = h.Close()
		if !cfg.keep {
			_ = os.Remove(path)
		}
	}()
	a.logger.Infof(logging.NSCLI+"scratch file %s: %s", path, rep)

	start := time.Now()
	w, err := blockfile.NewWriter(h, bopts)
	if err != nil {
		return err
	}
	for i := range cfg.records {
		if _, err := w.Append(recordData(i, cfg.size)); err != nil {
			return err
		}
	}
	if err := w.Sync(); err != nil {
		return err
	}
	written := time.Since(start)

	start = time.Now()
	offsets := make([]int64, 0, cfg.records)
	err = blockfile.NewReader(h, bopts).Scan(func(off int64, data []byte) error {
		if !bytes.Equal(data, recordData(len(offsets), cfg.size)) {
			return fmt.Errorf("record %d at offset %d does not match", len(offsets), off)
		}
		offsets = append(offsets, off)
		return nil
	})
	if err != nil {
		return err
	}
	if len(offsets) != cfg.records {
		return fmt.Errorf("read %d records, wrote %d", len(offsets), cfg.records)
	}
	verified := time.Since(start)

	start = time.Now()
	ropts := bopts
	ropts.CacheBytes = cfg.cacheBytes
	r := blockfile.NewReader(h, ropts)
	if err := verifyConcurrent(cmd.Context(), r, offsets, cfg); err != nil {
		return err
	}
	hits, misses := r.CacheStats()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:         %s\n", path)
	fmt.Fprintf(out, "capability:   %s\n", rep.Capability)
	fmt.Fprintf(out, "resolved:     %s\n", h.Mode())
	fmt.Fprintf(out, "requirements: %s\n", h.Requirements())
	fmt.Fprintf(out, "records:      %d x %d bytes, %s/%s, %d bytes on disk\n",
		cfg.records, cfg.size, bopts.Compression, bopts.Checksum, w.Offset())
	fmt.Fprintf(out, "write:        %v\n", written)
	fmt.Fprintf(out, "verify:       %v\n", verified)
	fmt.Fprintf(out, "random read:  %v, %d readers, cache %d hits / %d misses (%.0f%%)\n",
		time.Since(start), cfg.readers, hits, misses, 100*r.CacheHitRate())
	fmt.Fprintln(out, "OK")
	return nil
}

// verifyConcurrent reads every record twice, newest first, from up to
// cfg.readers goroutines sharing r.
func verifyConcurrent(ctx context.Context, r *blockfile.Reader, offsets []int64, cfg roundtripConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.readers)
	for pass := range 2 {
		for i := len(offsets) - 1; i >= 0; i-- {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				data, _, err := r.ReadAt(offsets[i])
				if err != nil {
					return fmt.Errorf("pass %d: record %d: %w", pass, i, err)
				}
				if !bytes.Equal(data, recordData(i, cfg.size)) {
					return fmt.Errorf("pass %d: record %d at offset %d does not match", pass, i, offsets[i])
				}
				return nil
			})
		}
	}
	return g.Wait()
}
