// Command altrace-dump replays a recorded trace file and prints every
// event to standard output, one line per event, in the style of
// cwdecoder's single-rootCmd CLI (cmd/root.go): viper-backed settings,
// cobra flags overriding the config file, a signal-driven shutdown
// path, and a panic-recovery deferred at the top of main.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/altrace-project/altrace/altfile"
	"github.com/altrace-project/altrace/altplayer"
	"github.com/altrace-project/altrace/internal/config"
	"github.com/altrace-project/altrace/internal/recovery"
)

var rootCmd = &cobra.Command{
	Use:   "altrace-dump",
	Short: "Replay an altrace trace file to standard output",
	RunE:  runDump,
}

func main() {
	defer recovery.HandlePanic()
	Execute()
}

// Execute runs the root command, printing any error to stderr and
// exiting non-zero — the same wrapper cwdecoder's Execute uses.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "altrace-dump: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringP("trace", "t", "", "path to the .altrace file (required)")
	rootCmd.Flags().BoolP("verbose", "v", false, "print a caller-info line before every event")
	rootCmd.Flags().IntP("max-events", "n", 0, "stop after this many events (0 = unbounded)")

	cobra.CheckErr(viper.BindPFlag("trace_file", rootCmd.Flags().Lookup("trace")))
	cobra.CheckErr(viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose")))
	cobra.CheckErr(viper.BindPFlag("max_events", rootCmd.Flags().Lookup("max-events")))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "altrace-dump: config error: %v\n", err)
		os.Exit(1)
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if settings.TraceFile == "" {
		return fmt.Errorf("no trace file given (use --trace or set trace_file)")
	}

	f, err := os.Open(settings.TraceFile)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat trace: %w", err)
	}

	// Ctrl-C cancels playback cleanly via the visitor's Progress hook,
	// the same shutdown idiom cwdecoder uses for its capture loop.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	v := &dumpVisitor{ctx: ctx, verbose: settings.Verbose, max: settings.MaxEvents}
	p := altplayer.New()
	err = p.Play(f, info.Size(), v, nil)
	switch {
	case err == nil:
		return nil
	case err == altplayer.ErrCancelled:
		fmt.Fprintln(os.Stderr, "altrace-dump: playback cancelled")
		return nil
	default:
		return fmt.Errorf("play trace: %w", err)
	}
}

// dumpVisitor embeds NopVisitor and overrides every callback with a
// one-line print, the "small interface, embeddable default" pattern
// altplayer.Visitor documents.
type dumpVisitor struct {
	altplayer.NopVisitor
	ctx     context.Context
	verbose bool
	max     int
	n       int
}

func (v *dumpVisitor) Progress(offset, size int64) bool {
	if v.ctx.Err() != nil {
		return false
	}
	if v.max > 0 && v.n >= v.max {
		return false
	}
	v.n++
	return true
}

func (v *dumpVisitor) prefix(ci altplayer.CallerInfo) string {
	if !v.verbose {
		return ""
	}
	return fmt.Sprintf("[thread %d scope %d off %d] ", ci.ThreadID, ci.TraceScope, ci.Offset)
}

func (v *dumpVisitor) OnAlcOpenDevice(ci altplayer.CallerInfo, name string, device altfile.PtrToken) {
	fmt.Printf("%salcOpenDevice(%q) = %#x\n", v.prefix(ci), name, device)
}

func (v *dumpVisitor) OnAlcCloseDevice(ci altplayer.CallerInfo, device altfile.PtrToken, ok bool) {
	fmt.Printf("%salcCloseDevice(%#x) = %v\n", v.prefix(ci), device, ok)
}

func (v *dumpVisitor) OnAlcCreateContext(ci altplayer.CallerInfo, device, ctx altfile.PtrToken) {
	fmt.Printf("%salcCreateContext(%#x) = %#x\n", v.prefix(ci), device, ctx)
}

func (v *dumpVisitor) OnAlcMakeContextCurrent(ci altplayer.CallerInfo, ctx altfile.PtrToken, ok bool) {
	fmt.Printf("%salcMakeContextCurrent(%#x) = %v\n", v.prefix(ci), ctx, ok)
}

func (v *dumpVisitor) OnAlcDestroyContext(ci altplayer.CallerInfo, ctx altfile.PtrToken) {
	fmt.Printf("%salcDestroyContext(%#x)\n", v.prefix(ci), ctx)
}

func (v *dumpVisitor) OnAlcGetError(ci altplayer.CallerInfo, device altfile.PtrToken, code int32) {
	fmt.Printf("%salcGetError(%#x) = %d\n", v.prefix(ci), device, code)
}

func (v *dumpVisitor) OnAlcCaptureOpenDevice(ci altplayer.CallerInfo, name string, freq, format, bufferSize int32, device altfile.PtrToken) {
	fmt.Printf("%salcCaptureOpenDevice(%q, %d, %#x, %d) = %#x\n", v.prefix(ci), name, freq, format, bufferSize, device)
}

func (v *dumpVisitor) OnAlcCaptureCloseDevice(ci altplayer.CallerInfo, device altfile.PtrToken, ok bool) {
	fmt.Printf("%salcCaptureCloseDevice(%#x) = %v\n", v.prefix(ci), device, ok)
}

func (v *dumpVisitor) OnAlcCaptureStart(ci altplayer.CallerInfo, device altfile.PtrToken) {
	fmt.Printf("%salcCaptureStart(%#x)\n", v.prefix(ci), device)
}

func (v *dumpVisitor) OnAlcCaptureStop(ci altplayer.CallerInfo, device altfile.PtrToken) {
	fmt.Printf("%salcCaptureStop(%#x)\n", v.prefix(ci), device)
}

func (v *dumpVisitor) OnAlGetError(ci altplayer.CallerInfo, code int32) {
	fmt.Printf("%salGetError() = %d\n", v.prefix(ci), code)
}

func (v *dumpVisitor) OnAlGenBuffers(ci altplayer.CallerInfo, names []uint32) {
	fmt.Printf("%salGenBuffers() = %v\n", v.prefix(ci), names)
}

func (v *dumpVisitor) OnAlDeleteBuffers(ci altplayer.CallerInfo, names []uint32, ok bool) {
	fmt.Printf("%salDeleteBuffers(%v) = %v\n", v.prefix(ci), names, ok)
}

func (v *dumpVisitor) OnAlBufferData(ci altplayer.CallerInfo, buffer uint32, format, size, freq int32) {
	fmt.Printf("%salBufferData(%d, %#x, %d, %d)\n", v.prefix(ci), buffer, format, size, freq)
}

func (v *dumpVisitor) OnAlGenSources(ci altplayer.CallerInfo, names []uint32) {
	fmt.Printf("%salGenSources() = %v\n", v.prefix(ci), names)
}

func (v *dumpVisitor) OnAlDeleteSources(ci altplayer.CallerInfo, names []uint32, ok bool) {
	fmt.Printf("%salDeleteSources(%v) = %v\n", v.prefix(ci), names, ok)
}

func (v *dumpVisitor) OnAlSourceSetInt(ci altplayer.CallerInfo, source uint32, param, value int32) {
	fmt.Printf("%salSourcei(%d, %#x, %d)\n", v.prefix(ci), source, param, value)
}

func (v *dumpVisitor) OnAlSourceSetFloat(ci altplayer.CallerInfo, source uint32, param int32, value float32) {
	fmt.Printf("%salSourcef(%d, %#x, %v)\n", v.prefix(ci), source, param, value)
}

func (v *dumpVisitor) OnAlSourcePlay(ci altplayer.CallerInfo, source uint32) {
	fmt.Printf("%salSourcePlay(%d)\n", v.prefix(ci), source)
}

func (v *dumpVisitor) OnAlSourcePause(ci altplayer.CallerInfo, source uint32) {
	fmt.Printf("%salSourcePause(%d)\n", v.prefix(ci), source)
}

func (v *dumpVisitor) OnAlSourceStop(ci altplayer.CallerInfo, source uint32) {
	fmt.Printf("%salSourceStop(%d)\n", v.prefix(ci), source)
}

func (v *dumpVisitor) OnAlSourceRewind(ci altplayer.CallerInfo, source uint32) {
	fmt.Printf("%salSourceRewind(%d)\n", v.prefix(ci), source)
}

func (v *dumpVisitor) OnAlGetSourceInt(ci altplayer.CallerInfo, source uint32, param, value int32) {
	fmt.Printf("%salGetSourcei(%d, %#x) = %d\n", v.prefix(ci), source, param, value)
}

func (v *dumpVisitor) OnAlGetSourceFloat(ci altplayer.CallerInfo, source uint32, param int32, value float32) {
	fmt.Printf("%salGetSourcef(%d, %#x) = %v\n", v.prefix(ci), source, param, value)
}

func (v *dumpVisitor) OnAlSourceQueueBuffers(ci altplayer.CallerInfo, source uint32, buffers []uint32) {
	fmt.Printf("%salSourceQueueBuffers(%d, %v)\n", v.prefix(ci), source, buffers)
}

func (v *dumpVisitor) OnAlSourceUnqueueBuffers(ci altplayer.CallerInfo, source uint32, requested int32, buffers []uint32) {
	fmt.Printf("%salSourceUnqueueBuffers(%d, %d) = %v\n", v.prefix(ci), source, requested, buffers)
}

func (v *dumpVisitor) OnAlDistanceModel(ci altplayer.CallerInfo, model int32) {
	fmt.Printf("%salDistanceModel(%#x)\n", v.prefix(ci), model)
}

func (v *dumpVisitor) OnAlDopplerFactor(ci altplayer.CallerInfo, value float32) {
	fmt.Printf("%salDopplerFactor(%v)\n", v.prefix(ci), value)
}

func (v *dumpVisitor) OnAlDopplerVelocity(ci altplayer.CallerInfo, value float32) {
	fmt.Printf("%salDopplerVelocity(%v)\n", v.prefix(ci), value)
}

func (v *dumpVisitor) OnAlSpeedOfSound(ci altplayer.CallerInfo, value float32) {
	fmt.Printf("%salSpeedOfSound(%v)\n", v.prefix(ci), value)
}

func (v *dumpVisitor) OnAlListenerSetFloat(ci altplayer.CallerInfo, param int32, values []float32) {
	fmt.Printf("%salListenerfv(%#x, %v)\n", v.prefix(ci), param, values)
}

func (v *dumpVisitor) OnAlTracePushScope(ci altplayer.CallerInfo, message string) {
	fmt.Printf("%salTracePushScope(%q)\n", v.prefix(ci), message)
}

func (v *dumpVisitor) OnAlTracePopScope(ci altplayer.CallerInfo) {
	fmt.Printf("%salTracePopScope()\n", v.prefix(ci))
}

func (v *dumpVisitor) OnAlTraceMessage(ci altplayer.CallerInfo, message string) {
	fmt.Printf("%salTraceMessage(%q)\n", v.prefix(ci), message)
}

func (v *dumpVisitor) OnAlTraceBufferLabel(ci altplayer.CallerInfo, buffer uint32, label string) {
	fmt.Printf("%salTraceBufferLabel(%d, %q)\n", v.prefix(ci), buffer, label)
}

func (v *dumpVisitor) OnAlTraceSourceLabel(ci altplayer.CallerInfo, source uint32, label string) {
	fmt.Printf("%salTraceSourceLabel(%d, %q)\n", v.prefix(ci), source, label)
}

func (v *dumpVisitor) OnAlcTraceDeviceLabel(ci altplayer.CallerInfo, device altfile.PtrToken, label string) {
	fmt.Printf("%salcTraceDeviceLabel(%#x, %q)\n", v.prefix(ci), device, label)
}

func (v *dumpVisitor) OnAlcTraceContextLabel(ci altplayer.CallerInfo, ctx altfile.PtrToken, label string) {
	fmt.Printf("%salcTraceContextLabel(%#x, %q)\n", v.prefix(ci), ctx, label)
}

func (v *dumpVisitor) OnALErrorTriggered(ci altplayer.CallerInfo, code int32) {
	fmt.Printf("%s  -> AL error triggered: %d\n", v.prefix(ci), code)
}

func (v *dumpVisitor) OnALCErrorTriggered(ci altplayer.CallerInfo, device altfile.PtrToken, code int32) {
	fmt.Printf("%s  -> ALC error triggered on %#x: %d\n", v.prefix(ci), device, code)
}

func (v *dumpVisitor) OnDeviceStateChangedBool(ci altplayer.CallerInfo, device altfile.PtrToken, param int32, value bool) {
	fmt.Printf("%s  -> device %#x param %#x = %v\n", v.prefix(ci), device, param, value)
}

func (v *dumpVisitor) OnDeviceStateChangedInt(ci altplayer.CallerInfo, device altfile.PtrToken, param int32, value int32) {
	fmt.Printf("%s  -> device %#x param %#x = %d\n", v.prefix(ci), device, param, value)
}

func (v *dumpVisitor) OnContextStateChangedString(ci altplayer.CallerInfo, ctx altfile.PtrToken, param int32, value string) {
	fmt.Printf("%s  -> context %#x param %#x = %q\n", v.prefix(ci), ctx, param, value)
}

func (v *dumpVisitor) OnSourceStateChangedBool(ci altplayer.CallerInfo, source altfile.PtrToken, param int32, value bool) {
	fmt.Printf("%s  -> source %#x param %#x = %v\n", v.prefix(ci), source, param, value)
}

func (v *dumpVisitor) OnSourceStateChangedEnum(ci altplayer.CallerInfo, source altfile.PtrToken, param int32, value int32) {
	fmt.Printf("%s  -> source %#x param %#x = %d\n", v.prefix(ci), source, param, value)
}

func (v *dumpVisitor) OnSourceStateChangedInt(ci altplayer.CallerInfo, source altfile.PtrToken, param int32, value int32) {
	fmt.Printf("%s  -> source %#x param %#x = %d\n", v.prefix(ci), source, param, value)
}

func (v *dumpVisitor) OnSourceStateChangedFloat(ci altplayer.CallerInfo, source altfile.PtrToken, param int32, value float32) {
	fmt.Printf("%s  -> source %#x param %#x = %v\n", v.prefix(ci), source, param, value)
}

func (v *dumpVisitor) OnSourceStateChangedFloat3(ci altplayer.CallerInfo, source altfile.PtrToken, param int32, values [3]float32) {
	fmt.Printf("%s  -> source %#x param %#x = %v\n", v.prefix(ci), source, param, values)
}

func (v *dumpVisitor) OnSourceStateChangedUint(ci altplayer.CallerInfo, source altfile.PtrToken, param int32, value uint32) {
	fmt.Printf("%s  -> source %#x param %#x = %d\n", v.prefix(ci), source, param, value)
}

func (v *dumpVisitor) OnContextStateChangedEnum(ci altplayer.CallerInfo, ctx altfile.PtrToken, param, value int32) {
	fmt.Printf("%s  -> context %#x param %#x = %d\n", v.prefix(ci), ctx, param, value)
}

func (v *dumpVisitor) OnContextStateChangedFloat(ci altplayer.CallerInfo, ctx altfile.PtrToken, param int32, value float32) {
	fmt.Printf("%s  -> context %#x param %#x = %v\n", v.prefix(ci), ctx, param, value)
}

func (v *dumpVisitor) OnListenerStateChangedFloatV(ci altplayer.CallerInfo, ctx altfile.PtrToken, param int32, values []float32) {
	fmt.Printf("%s  -> listener %#x param %#x = %v\n", v.prefix(ci), ctx, param, values)
}

func (v *dumpVisitor) OnBufferStateChangedInt(ci altplayer.CallerInfo, buffer altfile.PtrToken, param, value int32) {
	fmt.Printf("%s  -> buffer %#x param %#x = %d\n", v.prefix(ci), buffer, param, value)
}

func (v *dumpVisitor) EOS(clean bool, finalTimestampMS uint32) {
	fmt.Printf("EOS(clean=%v, t=%dms)\n", clean, finalTimestampMS)
}
