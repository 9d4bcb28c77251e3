// Command altrace-stat replays a trace file and prints aggregate
// statistics: per-event-tag counts, per-thread event counts, and an
// ASCII histogram of per-thread inter-event file-offset deltas built on the scale
// package this module inherited from its teacher's memheat tool
// (scale.Linear buckets a float64 domain into [0,1], same as it once
// bucketed memory-latency heatmap pixels).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/altrace-project/altrace/altfile"
	"github.com/altrace-project/altrace/altplayer"
	"github.com/altrace-project/altrace/internal/config"
	"github.com/altrace-project/altrace/internal/recovery"
	"github.com/altrace-project/altrace/scale"
)

var rootCmd = &cobra.Command{
	Use:   "altrace-stat",
	Short: "Summarize an altrace trace file",
	RunE:  runStat,
}

func main() {
	defer recovery.HandlePanic()
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "altrace-stat: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringP("trace", "t", "", "path to the .altrace file (required)")
	rootCmd.Flags().IntP("max-events", "n", 0, "stop after this many events (0 = unbounded)")

	cobra.CheckErr(viper.BindPFlag("trace_file", rootCmd.Flags().Lookup("trace")))
	cobra.CheckErr(viper.BindPFlag("max_events", rootCmd.Flags().Lookup("max-events")))
}

func initConfig() {
	if err := config.Init(); err != nil {
		log.Fatal("config error", "err", err)
	}
}

// counters accumulates the statistics a single playback pass collects.
type counters struct {
	byTag      map[string]int
	byThread   map[int]int
	deltas     map[int][]float64 // per-thread inter-event file-offset deltas
	lastOffset map[int]int64
	total      int
}

func newCounters() *counters {
	return &counters{
		byTag:      make(map[string]int),
		byThread:   make(map[int]int),
		deltas:     make(map[int][]float64),
		lastOffset: make(map[int]int64),
	}
}

func (c *counters) record(tag string, ci altplayer.CallerInfo) {
	c.total++
	c.byTag[tag]++
	if ci.ThreadID == 0 {
		return // synthetic event, no owning thread
	}
	c.byThread[ci.ThreadID]++
	if prev, ok := c.lastOffset[ci.ThreadID]; ok {
		c.deltas[ci.ThreadID] = append(c.deltas[ci.ThreadID], float64(ci.Offset-prev))
	}
	c.lastOffset[ci.ThreadID] = ci.Offset
}

type statVisitor struct {
	altplayer.NopVisitor
	ctx context.Context
	max int
	n   int
	c   *counters
}

func (v *statVisitor) Progress(offset, size int64) bool {
	if v.ctx.Err() != nil {
		return false
	}
	if v.max > 0 && v.n >= v.max {
		return false
	}
	v.n++
	return true
}

func (v *statVisitor) OnAlcOpenDevice(ci altplayer.CallerInfo, string, altfile.PtrToken) {
	v.c.record("alcOpenDevice", ci)
}
func (v *statVisitor) OnAlcCloseDevice(ci altplayer.CallerInfo, altfile.PtrToken, bool) {
	v.c.record("alcCloseDevice", ci)
}
func (v *statVisitor) OnAlcCreateContext(ci altplayer.CallerInfo, altfile.PtrToken, altfile.PtrToken) {
	v.c.record("alcCreateContext", ci)
}
func (v *statVisitor) OnAlcMakeContextCurrent(ci altplayer.CallerInfo, altfile.PtrToken, bool) {
	v.c.record("alcMakeContextCurrent", ci)
}
func (v *statVisitor) OnAlcDestroyContext(ci altplayer.CallerInfo, altfile.PtrToken) {
	v.c.record("alcDestroyContext", ci)
}
func (v *statVisitor) OnAlcGetError(ci altplayer.CallerInfo, altfile.PtrToken, int32) {
	v.c.record("alcGetError", ci)
}
func (v *statVisitor) OnAlcCaptureOpenDevice(ci altplayer.CallerInfo, string, int32, int32, int32, altfile.PtrToken) {
	v.c.record("alcCaptureOpenDevice", ci)
}
func (v *statVisitor) OnAlcCaptureCloseDevice(ci altplayer.CallerInfo, altfile.PtrToken, bool) {
	v.c.record("alcCaptureCloseDevice", ci)
}
func (v *statVisitor) OnAlcCaptureStart(ci altplayer.CallerInfo, altfile.PtrToken) {
	v.c.record("alcCaptureStart", ci)
}
func (v *statVisitor) OnAlcCaptureStop(ci altplayer.CallerInfo, altfile.PtrToken) {
	v.c.record("alcCaptureStop", ci)
}
func (v *statVisitor) OnAlGetError(ci altplayer.CallerInfo, int32) {
	v.c.record("alGetError", ci)
}
func (v *statVisitor) OnAlGenBuffers(ci altplayer.CallerInfo, []uint32) {
	v.c.record("alGenBuffers", ci)
}
func (v *statVisitor) OnAlDeleteBuffers(ci altplayer.CallerInfo, []uint32, bool) {
	v.c.record("alDeleteBuffers", ci)
}
func (v *statVisitor) OnAlBufferData(ci altplayer.CallerInfo, uint32, int32, int32, int32) {
	v.c.record("alBufferData", ci)
}
func (v *statVisitor) OnAlGenSources(ci altplayer.CallerInfo, []uint32) {
	v.c.record("alGenSources", ci)
}
func (v *statVisitor) OnAlDeleteSources(ci altplayer.CallerInfo, []uint32, bool) {
	v.c.record("alDeleteSources", ci)
}
func (v *statVisitor) OnAlSourceSetInt(ci altplayer.CallerInfo, uint32, int32, int32) {
	v.c.record("alSourcei", ci)
}
func (v *statVisitor) OnAlSourceSetFloat(ci altplayer.CallerInfo, uint32, int32, float32) {
	v.c.record("alSourcef", ci)
}
func (v *statVisitor) OnAlSourcePlay(ci altplayer.CallerInfo, uint32) {
	v.c.record("alSourcePlay", ci)
}
func (v *statVisitor) OnAlSourcePause(ci altplayer.CallerInfo, uint32) {
	v.c.record("alSourcePause", ci)
}
func (v *statVisitor) OnAlSourceStop(ci altplayer.CallerInfo, uint32) {
	v.c.record("alSourceStop", ci)
}
func (v *statVisitor) OnAlSourceRewind(ci altplayer.CallerInfo, uint32) {
	v.c.record("alSourceRewind", ci)
}
func (v *statVisitor) OnAlGetSourceInt(ci altplayer.CallerInfo, uint32, int32, int32) {
	v.c.record("alGetSourcei", ci)
}
func (v *statVisitor) OnAlGetSourceFloat(ci altplayer.CallerInfo, uint32, int32, float32) {
	v.c.record("alGetSourcef", ci)
}
func (v *statVisitor) OnAlSourceQueueBuffers(ci altplayer.CallerInfo, uint32, []uint32) {
	v.c.record("alSourceQueueBuffers", ci)
}
func (v *statVisitor) OnAlSourceUnqueueBuffers(ci altplayer.CallerInfo, uint32, int32, []uint32) {
	v.c.record("alSourceUnqueueBuffers", ci)
}
func (v *statVisitor) OnAlDistanceModel(ci altplayer.CallerInfo, int32) {
	v.c.record("alDistanceModel", ci)
}
func (v *statVisitor) OnAlDopplerFactor(ci altplayer.CallerInfo, float32) {
	v.c.record("alDopplerFactor", ci)
}
func (v *statVisitor) OnAlDopplerVelocity(ci altplayer.CallerInfo, float32) {
	v.c.record("alDopplerVelocity", ci)
}
func (v *statVisitor) OnAlSpeedOfSound(ci altplayer.CallerInfo, float32) {
	v.c.record("alSpeedOfSound", ci)
}
func (v *statVisitor) OnAlListenerSetFloat(ci altplayer.CallerInfo, int32, []float32) {
	v.c.record("alListenerfv", ci)
}
func (v *statVisitor) OnAlTracePushScope(ci altplayer.CallerInfo, string) {
	v.c.record("alTracePushScope", ci)
}
func (v *statVisitor) OnAlTracePopScope(ci altplayer.CallerInfo) {
	v.c.record("alTracePopScope", ci)
}
func (v *statVisitor) OnAlTraceMessage(ci altplayer.CallerInfo, string) {
	v.c.record("alTraceMessage", ci)
}
func (v *statVisitor) OnAlTraceBufferLabel(ci altplayer.CallerInfo, uint32, string) {
	v.c.record("alTraceBufferLabel", ci)
}
func (v *statVisitor) OnAlTraceSourceLabel(ci altplayer.CallerInfo, uint32, string) {
	v.c.record("alTraceSourceLabel", ci)
}
func (v *statVisitor) OnAlcTraceDeviceLabel(ci altplayer.CallerInfo, altfile.PtrToken, string) {
	v.c.record("alcTraceDeviceLabel", ci)
}
func (v *statVisitor) OnAlcTraceContextLabel(ci altplayer.CallerInfo, altfile.PtrToken, string) {
	v.c.record("alcTraceContextLabel", ci)
}
func (v *statVisitor) OnALErrorTriggered(ci altplayer.CallerInfo, int32) {
	v.c.record("alErrorTriggered", ci)
}
func (v *statVisitor) OnALCErrorTriggered(ci altplayer.CallerInfo, altfile.PtrToken, int32) {
	v.c.record("alcErrorTriggered", ci)
}
func (v *statVisitor) OnDeviceStateChangedBool(ci altplayer.CallerInfo, altfile.PtrToken, int32, bool) {
	v.c.record("deviceStateChanged", ci)
}
func (v *statVisitor) OnDeviceStateChangedInt(ci altplayer.CallerInfo, altfile.PtrToken, int32, int32) {
	v.c.record("deviceStateChanged", ci)
}
func (v *statVisitor) OnContextStateChangedString(ci altplayer.CallerInfo, altfile.PtrToken, int32, string) {
	v.c.record("contextStateChanged", ci)
}
func (v *statVisitor) OnSourceStateChangedBool(ci altplayer.CallerInfo, altfile.PtrToken, int32, bool) {
	v.c.record("sourceStateChanged", ci)
}
func (v *statVisitor) OnSourceStateChangedEnum(ci altplayer.CallerInfo, altfile.PtrToken, int32, int32) {
	v.c.record("sourceStateChanged", ci)
}
func (v *statVisitor) OnSourceStateChangedInt(ci altplayer.CallerInfo, altfile.PtrToken, int32, int32) {
	v.c.record("sourceStateChanged", ci)
}
func (v *statVisitor) OnSourceStateChangedFloat(ci altplayer.CallerInfo, altfile.PtrToken, int32, float32) {
	v.c.record("sourceStateChanged", ci)
}
func (v *statVisitor) OnSourceStateChangedFloat3(ci altplayer.CallerInfo, altfile.PtrToken, int32, [3]float32) {
	v.c.record("sourceStateChanged", ci)
}
func (v *statVisitor) OnSourceStateChangedUint(ci altplayer.CallerInfo, altfile.PtrToken, int32, uint32) {
	v.c.record("sourceStateChanged", ci)
}
func (v *statVisitor) OnContextStateChangedEnum(ci altplayer.CallerInfo, altfile.PtrToken, int32, int32) {
	v.c.record("contextStateChanged", ci)
}
func (v *statVisitor) OnContextStateChangedFloat(ci altplayer.CallerInfo, altfile.PtrToken, int32, float32) {
	v.c.record("contextStateChanged", ci)
}
func (v *statVisitor) OnListenerStateChangedFloatV(ci altplayer.CallerInfo, altfile.PtrToken, int32, []float32) {
	v.c.record("listenerStateChanged", ci)
}
func (v *statVisitor) OnBufferStateChangedInt(ci altplayer.CallerInfo, altfile.PtrToken, int32, int32) {
	v.c.record("bufferStateChanged", ci)
}

func runStat(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	c := newCounters()
	v := &statVisitor{ctx: ctx, max: settings.MaxEvents, c: c}
	p := altplayer.New()
	if err := playAndReport(p, f, info.Size(), v); err != nil {
		return err
	}

	printReport(c)
	return nil
}

func playAndReport(p *altplayer.Player, f *os.File, size int64, v *statVisitor) error {
	err := p.Play(f, size, v, nil)
	if err != nil && err != altplayer.ErrCancelled {
		return fmt.Errorf("play trace: %w", err)
	}
	return nil
}

func printReport(c *counters) {
	fmt.Printf("total events: %d\n\n", c.total)

	tags := make([]string, 0, len(c.byTag))
	for t := range c.byTag {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	fmt.Println("event counts:")
	for _, t := range tags {
		fmt.Printf("  %-24s %d\n", t, c.byTag[t])
	}

	threads := make([]int, 0, len(c.byThread))
	for t := range c.byThread {
		threads = append(threads, t)
	}
	sort.Ints(threads)
	fmt.Println("\nper-thread event counts:")
	for _, t := range threads {
		fmt.Printf("  thread %d: %d events\n", t, c.byThread[t])
	}

	fmt.Println("\nper-thread inter-event offset-delta histogram:")
	for _, t := range threads {
		deltas := c.deltas[t]
		if len(deltas) == 0 {
			continue
		}
		printHistogram(t, deltas)
	}
}

// printHistogram buckets deltas into 10 linear-scale bins, the way
// memheat's draw.go bucketed pixel-space latencies before rendering
// them — here rendered as a plain-text bar chart instead of an image.
func printHistogram(thread int, deltas []float64) {
	const bins = 10
	uniform := true
	for _, d := range deltas {
		if d != deltas[0] {
			uniform = false
			break
		}
	}
	counts := make([]int, bins)
	maxCount := 0
	if uniform {
		counts[0] = len(deltas)
		maxCount = len(deltas)
	} else {
		s := scale.NewLinear(deltas)
		for _, d := range deltas {
			frac := s.Of(d)
			bin := int(frac * float64(bins))
			if bin >= bins {
				bin = bins - 1
			}
			if bin < 0 {
				bin = 0
			}
			counts[bin]++
			if counts[bin] > maxCount {
				maxCount = counts[bin]
			}
		}
	}
	if maxCount == 0 {
		return
	}
	fmt.Printf("  thread %d (%d samples):\n", thread, len(deltas))
	// OutputScale maps each bin's [0,1] fill fraction to a bar width in
	// columns, the same role it plays mapping memheat's [0,1] latency
	// buckets to pixel rows before rendering.
	out := scale.NewOutputScale(0, 40)
	for _, n := range counts {
		width, _ := out.Of(float64(n) / float64(maxCount))
		fmt.Printf("    %s\n", strings.Repeat("#", int(width)))
	}
}
