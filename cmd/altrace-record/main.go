// Command altrace-record runs a small scripted audio session against
// the in-memory fake backend and writes the resulting trace to disk —
// a self-contained demo of the recorder half of the system, since
// there is no real C audio library to intercept from pure Go. It
// follows cwdecoder's cmd/root.go shutdown idiom: a cancellable
// context, SIGINT/SIGTERM wired to cancel it, and a deferred panic
// handler that still leaves a usable (if truncated) trace on disk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/altrace-project/altrace/altrecorder"
	"github.com/altrace-project/altrace/altrecorder/fake"
	"github.com/altrace-project/altrace/internal/config"
	"github.com/altrace-project/altrace/internal/recovery"
	"github.com/altrace-project/altrace/internal/tracefile"
)

var rootCmd = &cobra.Command{
	Use:   "altrace-record",
	Short: "Record a scripted demo audio session to an altrace trace file",
	RunE:  runRecord,
}

func main() {
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "altrace-record: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.Flags().StringP("out", "o", "", "output trace path (default: auto-named from the process name)")
	cobra.CheckErr(viper.BindPFlag("trace_file", rootCmd.Flags().Lookup("out")))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "altrace-record: config error: %v\n", err)
		os.Exit(1)
	}
}

func runRecord(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := settings.TraceFile
	if path == "" {
		path = tracefile.ChooseName("altrace-record")
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}

	backend := fake.New()
	rec := altrecorder.New(backend, out)
	defer recovery.HandlePanicFunc(func() { rec.Close(false) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	clean := runSession(ctx, rec, backend)

	if err := rec.Close(clean); err != nil {
		return fmt.Errorf("close trace: %w", err)
	}
	fmt.Fprintf(os.Stderr, "altrace-record: wrote %s\n", path)
	return nil
}

// runSession plays out seed scenario 2 of the testable-properties list
// almost verbatim: open a device and context, create a buffer and a
// source, play it, and poll until the fake mixer reports STOPPED.
// It returns false if ctx was cancelled before the session finished.
func runSession(ctx context.Context, rec *altrecorder.Recorder, backend *fake.Backend) bool {
	device := rec.AlcOpenDevice("")
	alcCtx := rec.AlcCreateContext(device)
	rec.AlcMakeContextCurrent(alcCtx)

	buffers := rec.AlGenBuffers(alcCtx, 1)
	buffer := buffers[0]
	const formatMono16 = 0x1101
	rec.AlBufferData(alcCtx, buffer, formatMono16, 64000, 44100)

	sources := rec.AlGenSources(alcCtx, 1)
	source := sources[0]
	const paramBuffer = 0x1009
	rec.AlSourceSetInt(alcCtx, source, paramBuffer, int32(buffer))
	rec.AlSourcePlay(alcCtx, source)

	for i := 0; i < 20; i++ {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if i == 10 {
			backend.FinishPlaying(source)
		}
		// AlGetError has no checker tail; a source query does, so each
		// iteration runs the poll that records the STOPPED transition.
		rec.AlGetSourceInt(source, paramBuffer)
		time.Sleep(time.Millisecond)
	}

	rec.AlcDestroyContext(alcCtx)
	rec.AlcCloseDevice(device)
	return true
}
