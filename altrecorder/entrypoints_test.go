package altrecorder

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/altrace-project/altrace/altfile"
)

// TestEntrypointTableNamesHaveNoDuplicateTags guards against copy-paste
// drift: two names sharing a tag would mean the player could never
// tell them apart on replay.
func TestEntrypointTableNamesHaveNoDuplicateTags(t *testing.T) {
	seen := make(map[altfile.Tag]string)
	for _, e := range entrypoints {
		if prev, ok := seen[e.Tag]; ok {
			t.Fatalf("tag %v used by both %q and %q", e.Tag, prev, e.Name)
		}
		seen[e.Tag] = e.Name
	}
}

// TestEntrypointTableHasAWrapperMethod asserts every descriptor names
// an entry point with a same-named Recorder method (modulo the
// alSourcei/alSourcef/alTrace* C-name vs. Go-method-name mapping),
// keeping the declarative table and the hand-written wrappers honest
// against each other.
func TestEntrypointTableHasAWrapperMethod(t *testing.T) {
	goName := map[string]string{
		"alcOpenDevice":          "AlcOpenDevice",
		"alcCloseDevice":         "AlcCloseDevice",
		"alcCreateContext":       "AlcCreateContext",
		"alcMakeContextCurrent":  "AlcMakeContextCurrent",
		"alcDestroyContext":      "AlcDestroyContext",
		"alcGetError":            "AlcGetError",
		"alcCaptureOpenDevice":   "AlcCaptureOpenDevice",
		"alcCaptureCloseDevice":  "AlcCaptureCloseDevice",
		"alcCaptureStart":        "AlcCaptureStart",
		"alcCaptureStop":         "AlcCaptureStop",
		"alGetError":             "AlGetError",
		"alGenBuffers":           "AlGenBuffers",
		"alDeleteBuffers":        "AlDeleteBuffers",
		"alBufferData":           "AlBufferData",
		"alGenSources":           "AlGenSources",
		"alDeleteSources":        "AlDeleteSources",
		"alSourcei":              "AlSourceSetInt",
		"alSourcef":              "AlSourceSetFloat",
		"alGetSourcei":           "AlGetSourceInt",
		"alGetSourcef":           "AlGetSourceFloat",
		"alSourcePlay":           "AlSourcePlay",
		"alSourcePause":          "AlSourcePause",
		"alSourceStop":           "AlSourceStop",
		"alSourceRewind":         "AlSourceRewind",
		"alSourceQueueBuffers":   "AlSourceQueueBuffers",
		"alSourceUnqueueBuffers": "AlSourceUnqueueBuffers",
		"alDistanceModel":        "AlDistanceModel",
		"alDopplerFactor":        "AlDopplerFactor",
		"alDopplerVelocity":      "AlDopplerVelocity",
		"alSpeedOfSound":         "AlSpeedOfSound",
		"alListenerf":            "AlListenerSetFloat",
		"alTracePushScope":       "AlTracePushScope",
		"alTracePopScope":        "AlTracePopScope",
		"alTraceMessage":         "AlTraceMessage",
		"alTraceBufferLabel":     "AlTraceBufferLabel",
		"alTraceSourceLabel":     "AlTraceSourceLabel",
		"alcTraceDeviceLabel":    "AlcTraceDeviceLabel",
		"alcTraceContextLabel":   "AlcTraceContextLabel",
	}

	typ := reflect.TypeOf(&Recorder{})
	for _, e := range entrypoints {
		method, ok := goName[e.Name]
		assert.Truef(t, ok, "entry point %q has no Go-name mapping in this test", e.Name)
		if !ok {
			continue
		}
		if _, found := typ.MethodByName(method); !found {
			t.Errorf("entry point %q expects Recorder.%s, which does not exist", e.Name, method)
		}
	}
}

// TestEntrypointNamesLookLikeCIdentifiers is a light sanity check that
// the table was transcribed from the C entry-point names, not
// Go-ified, since that naming is what a captured real trace's
// on-disk tag-to-name mapping (if ever added) would need to agree
// with.
func TestEntrypointNamesLookLikeCIdentifiers(t *testing.T) {
	for _, e := range entrypoints {
		if strings.Contains(e.Name, "_") {
			t.Errorf("entry point name %q contains an underscore; the real API uses camelCase", e.Name)
		}
	}
}
