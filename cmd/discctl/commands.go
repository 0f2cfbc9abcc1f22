package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danmuck/discctl/internal/cdrom"
	"github.com/danmuck/discctl/internal/config"
	"github.com/danmuck/discctl/internal/logging"
	"github.com/danmuck/discctl/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	configPath  string
	device      string
	metricsAddr string
	metricsOut  string
	cfg         config.DriveConfig
	log         zerolog.Logger
	open        func(path string) (*cdrom.Drive, error)
}

func newApp() *app {
	return &app{
		cfg: config.DefaultDriveConfig(),
		log: logging.Component("discctl"),
		open: func(path string) (*cdrom.Drive, error) {
			return cdrom.Open(path)
		},
	}
}

func newRootCommand() *cobra.Command {
	return newApp().command()
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "discctl",
		Short:         "Control an optical disc drive",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "drive config file (toml)")
	root.PersistentFlags().StringVarP(&a.device, "device", "d", "", "drive device path (overrides config)")
	root.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve /metrics on this address while the drive is open")
	root.PersistentFlags().StringVar(&a.metricsOut, "metrics-out", "", "write drive metrics to this file on exit (- for stderr)")

	root.AddCommand(
		a.statusCommand(),
		a.tocCommand(),
		a.waitCommand(),
		a.trayCommand("eject", "Open the tray", (*cdrom.Drive).Eject),
		a.trayCommand("close", "Close the tray", (*cdrom.Drive).CloseTray),
		a.lockCommand("lock", true),
		a.lockCommand("unlock", false),
		a.readRawCommand(),
		a.readAudioCommand(),
		a.configCommand(),
	)
	return root
}

func (a *app) loadConfig() error {
	if a.configPath != "" {
		cfg, err := loadDriveConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.device != "" {
		a.cfg.Device = a.device
	}
	return nil
}

func (a *app) withDrive(fn func(*cdrom.Drive) error) (err error) {
	if a.metricsAddr != "" {
		srv, err := observability.ServeMetrics(a.metricsAddr, a.log)
		if err != nil {
			return fmt.Errorf("serve metrics: %w", err)
		}
		a.log.Info().Str("addr", srv.Addr()).Msg("serving metrics")
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Close(ctx); err != nil {
				a.log.Warn().Err(err).Msg("stop metrics server")
			}
		}()
	}
	if a.metricsOut != "" {
		defer func() {
			if dumpErr := a.dumpMetrics(); dumpErr != nil {
				err = errors.Join(err, dumpErr)
			}
		}()
	}

	drive, err := a.open(a.cfg.Device)
	if err != nil {
		return err
	}
	defer func() {
		if err := drive.Close(); err != nil {
			a.log.Warn().Err(err).Msg("release drive")
		}
	}()
	return fn(drive)
}

func (a *app) dumpMetrics() error {
	if a.metricsOut == "-" {
		return observability.WriteMetrics(os.Stderr, prometheus.DefaultGatherer)
	}
	return writeOutput(a.metricsOut, func(w io.Writer) error {
		return observability.WriteMetrics(w, prometheus.DefaultGatherer)
	})
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show drive and disc state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDrive(func(drive *cdrom.Drive) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "device:\t%s\n", drive.Path())
				if status, ok := drive.Status(); ok {
					fmt.Fprintf(out, "status:\t%s\n", status)
				} else {
					fmt.Fprintf(out, "status:\tunknown\n")
				}
				if disc, ok := drive.DiscType(); ok {
					fmt.Fprintf(out, "disc:\t%s\n", disc)
				} else {
					fmt.Fprintf(out, "disc:\tunknown\n")
				}
				if mcn, ok := drive.MCN(); ok {
					fmt.Fprintf(out, "mcn:\t%s\n", mcn)
				}
				if caps, err := drive.Capabilities(); err == nil {
					fmt.Fprintf(out, "caps:\t%#x\n", uint32(caps))
				}
				return nil
			})
		},
	}
}

func (a *app) tocCommand() *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "toc",
		Short: "Print the table of contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDrive(func(drive *cdrom.Drive) error {
				if wait {
					if err := waitForDisc(drive, a.cfg.PollInterval, a.cfg.PollTimeout, a.log); err != nil {
						return err
					}
				}
				tracks, err := drive.Tracks(a.cfg.AddressFormat)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "disc contains %d tracks\n", len(tracks))
				for _, entry := range tracks {
					kind := "audio"
					if entry.IsData() {
						kind = "data"
					}
					fmt.Fprintf(out, "track %2d\t%s\tlba %6d\t%s\n",
						entry.Track, entry.Address.MSF(), entry.Address.LBA(), kind)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the drive to report a disc first")
	return cmd
}

func (a *app) waitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wait",
		Short: "Wait until a disc is loaded and ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDrive(func(drive *cdrom.Drive) error {
				if err := waitForDisc(drive, a.cfg.PollInterval, a.cfg.PollTimeout, a.log); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cdrom.StatusDiscOK)
				return nil
			})
		},
	}
}

func (a *app) trayCommand(use, short string, action func(*cdrom.Drive) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDrive(action)
		},
	}
}

func (a *app) lockCommand(use string, locked bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Set the tray lock (%s)", use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDrive(func(drive *cdrom.Drive) error {
				return drive.SetLock(locked)
			})
		},
	}
}

func (a *app) readRawCommand() *cobra.Command {
	var (
		lba   int32
		count int
		path  string
	)
	cmd := &cobra.Command{
		Use:   "read-raw",
		Short: "Dump raw 2352-byte sectors to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be positive")
			}
			return a.withDrive(func(drive *cdrom.Drive) error {
				return writeOutput(path, func(w io.Writer) error {
					return a.dumpRaw(drive, lba, count, w)
				})
			})
		},
	}
	cmd.Flags().Int32Var(&lba, "lba", 0, "first sector")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of sectors")
	cmd.Flags().StringVarP(&path, "out", "o", "", "output file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) dumpRaw(drive *cdrom.Drive, lba int32, count int, w io.Writer) error {
	buf := make([]byte, cdrom.FrameSizeRaw)
	for i := 0; i < count; i++ {
		addr := cdrom.LogicalAddress(lba + int32(i)).In(a.cfg.AddressFormat)
		if err := drive.ReadRawInto(addr, buf); err != nil {
			return fmt.Errorf("read sector %s: %w", addr, err)
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) readAudioCommand() *cobra.Command {
	var (
		lba    int32
		at     string
		frames int
		path   string
	)
	cmd := &cobra.Command{
		Use:   "read-audio",
		Short: "Extract little-endian 16-bit PCM to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames < 1 {
				return fmt.Errorf("frames must be positive")
			}
			start := lba
			if at != "" {
				msf, err := cdrom.ParseMSF(at)
				if err != nil {
					return err
				}
				start = msf.ToLBA()
			}
			return a.withDrive(func(drive *cdrom.Drive) error {
				return writeOutput(path, func(w io.Writer) error {
					return a.extractAudio(drive, start, frames, w)
				})
			})
		},
	}
	cmd.Flags().Int32Var(&lba, "lba", 0, "first frame")
	cmd.Flags().StringVar(&at, "at", "", "first frame as mm:ss.ff (overrides --lba)")
	cmd.Flags().IntVarP(&frames, "frames", "n", cdrom.FramesPerSecond, "number of frames")
	cmd.Flags().StringVarP(&path, "out", "o", "", "output file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) extractAudio(drive *cdrom.Drive, start int32, frames int, w io.Writer) (err error) {
	if err := drive.RequireAudio(); err != nil {
		return err
	}
	if a.cfg.LockWhileReading {
		if err := drive.SetLock(true); err != nil && !errors.Is(err, cdrom.ErrUnsupported) {
			return err
		}
		defer func() {
			if unlockErr := drive.SetLock(false); unlockErr != nil && !errors.Is(unlockErr, cdrom.ErrUnsupported) {
				err = errors.Join(err, unlockErr)
			}
		}()
	}

	buf := make([]int16, cdrom.AudioSamples(a.cfg.FramesPerRead))
	for done := 0; done < frames; {
		n := min(a.cfg.FramesPerRead, frames-done)
		addr := cdrom.LogicalAddress(start + int32(done)).In(a.cfg.AddressFormat)
		if err := drive.ReadAudioInto(addr, n, buf); err != nil {
			return fmt.Errorf("read audio at %s: %w", addr, err)
		}
		if err := binary.Write(w, binary.LittleEndian, buf[:cdrom.AudioSamples(n)]); err != nil {
			return err
		}
		done += n
		a.log.Debug().Str("at", addr.String()).Int("frames", done).Msg("audio progress")
	}
	return nil
}

func writeOutput(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the drive config file",
	}
	var (
		output string
		force  bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(output, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "discctl.toml", "output path")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
