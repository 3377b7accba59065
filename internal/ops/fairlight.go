package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/fault"
	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/respond"
	"github.com/framewise/resolve-mcp/internal/validate"
)

var (
	audioTrackTypes  = []string{"mono", "stereo", "5.1", "7.1"}
	audioFormats     = []string{"wav", "aiff", "mp3", "flac"}
	audioSampleRates = []int{44100, 48000, 96000}
	audioBitDepths   = []int{16, 24, 32}
	audioEffects     = []string{"EQ", "Compressor", "DeEsser", "Reverb", "Noise Reduction", "Gate", "Limiter"}
	audioSyncMethods = []string{"waveform", "timecode"}
)

// audioEffectCatalog groups the Fairlight effects by category for the
// available-effects resource.
var audioEffectCatalog = map[string][]string{
	"dynamics":    {"Compressor", "DeEsser", "Expander", "Gate", "Limiter", "Multiband Compressor"},
	"eq_filters":  {"6-Band EQ", "Graphic EQ", "Parametric EQ", "High Pass Filter", "Low Pass Filter"},
	"modulation":  {"Chorus", "Flanger", "Phaser", "Tremolo", "Vibrato"},
	"time_based":  {"Delay", "Echo", "Reverb", "Room Reverb", "Hall Reverb"},
	"restoration": {"Noise Reduction", "Hum Removal", "Click Removal", "De-Clip"},
	"utility":     {"Channel Mixer", "Gain", "Invert Phase", "Mono to Stereo", "Stereo to Mono"},
	"analysis":    {"Spectrum Analyzer", "Phase Meter", "Loudness Meter", "Correlation Meter"},
}

// AudioTrackArgs adds an audio track to the timeline.
type AudioTrackArgs struct {
	TrackType string `json:"track_type,omitempty" jsonschema:"Track type: mono, stereo, 5.1 or 7.1 (default mono)"`
	TrackName string `json:"track_name,omitempty" jsonschema:"Optional custom name for the track"`
}

// AudioLevelsArgs sets volume and pan on an audio clip.
type AudioLevelsArgs struct {
	ClipName   string  `json:"clip_name,omitempty" jsonschema:"Name of the audio clip; first clip on the track when omitted"`
	TrackIndex int     `json:"track_index,omitempty" jsonschema:"1-based audio track index"`
	VolumeDB   float64 `json:"volume_db,omitempty" jsonschema:"Volume in dB between -100 and +12"`
	Pan        float64 `json:"pan,omitempty" jsonschema:"Pan between -1.0 (left) and 1.0 (right)"`
}

// AudioEffectArgs applies an effect to an audio clip.
type AudioEffectArgs struct {
	ClipName       string         `json:"clip_name,omitempty" jsonschema:"Name of the audio clip; first clip on the track when omitted"`
	TrackIndex     int            `json:"track_index,omitempty" jsonschema:"1-based audio track index"`
	EffectName     string         `json:"effect_name,omitempty" jsonschema:"Effect: EQ, Compressor, DeEsser, Reverb, Noise Reduction, Gate or Limiter (default EQ)"`
	EffectSettings map[string]any `json:"effect_settings,omitempty" jsonschema:"Effect parameters"`
}

// AutoSyncArgs syncs an audio clip to a video clip.
type AutoSyncArgs struct {
	VideoClipName string `json:"video_clip_name" jsonschema:"Name of the video clip"`
	AudioClipName string `json:"audio_clip_name" jsonschema:"Name of the audio clip to sync"`
	SyncMethod    string `json:"sync_method,omitempty" jsonschema:"Sync method: waveform or timecode (default waveform)"`
}

// MixdownArgs exports an audio mixdown of the current timeline.
type MixdownArgs struct {
	OutputPath string `json:"output_path" jsonschema:"Path for the exported audio file"`
	Format     string `json:"format,omitempty" jsonschema:"Audio format: wav, aiff, mp3 or flac (default wav)"`
	SampleRate int    `json:"sample_rate,omitempty" jsonschema:"Sample rate in Hz: 44100, 48000 or 96000 (default 48000)"`
	BitDepth   int    `json:"bit_depth,omitempty" jsonschema:"Bit depth: 16, 24 or 32 (default 24)"`
}

func (c *Catalog) registerFairlight(r *dispatch.Registry) {
	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://fairlight/status",
		Name:        "fairlight-status",
		Description: "Audio track summary for the current timeline.",
		MIMEType:    "application/json",
	}, page.Fairlight, func(ctx context.Context) (respond.Envelope, error) {
		t, err := c.currentTimeline()
		if err != nil {
			return respond.Envelope{}, err
		}
		return respond.Success(t.Name(), map[string]any{
			"timeline_name":     t.Name(),
			"audio_track_count": t.TrackCount("audio"),
		}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_audio_track",
		Description: "Add an audio track to the current timeline.",
	}, page.Fairlight, c.legacy, func(ctx context.Context, args AudioTrackArgs) (respond.Envelope, error) {
		trackType := args.TrackType
		if trackType == "" {
			trackType = "mono"
		}
		trackType, err := validate.Choice(trackType, audioTrackTypes, "track_type")
		if err != nil {
			return respond.Envelope{}, err
		}
		t, err := c.currentTimeline()
		if err != nil {
			return respond.Envelope{}, err
		}
		if !t.AddTrack("audio", trackType) {
			return respond.Envelope{}, fault.Operation("Failed to add audio track")
		}
		name := args.TrackName
		if name == "" {
			name = fmt.Sprintf("Audio %d", t.TrackCount("audio"))
		}
		return respond.Success(fmt.Sprintf("Added %s audio track: %s", trackType, name),
			map[string]any{"track_type": trackType, "track_name": name}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "set_audio_levels",
		Description: "Set volume and pan on an audio clip, addressed by name or track index.",
	}, page.Fairlight, c.legacy, func(ctx context.Context, args AudioLevelsArgs) (respond.Envelope, error) {
		if err := validate.Range(args.VolumeDB, -100, 12, "volume_db"); err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.Range(args.Pan, -1.0, 1.0, "pan"); err != nil {
			return respond.Envelope{}, err
		}
		t, err := c.currentTimeline()
		if err != nil {
			return respond.Envelope{}, err
		}
		item, err := findAudioItem(t, args.ClipName, args.TrackIndex)
		if err != nil {
			return respond.Envelope{}, err
		}
		item.SetProperty("Volume", args.VolumeDB)
		item.SetProperty("Pan", args.Pan)
		return respond.Success(fmt.Sprintf("Set audio levels for '%s': Volume=%vdB, Pan=%v",
			item.Name(), args.VolumeDB, args.Pan), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "apply_audio_effect",
		Description: "Apply an audio effect to a clip, addressed by name or track index.",
	}, page.Fairlight, c.legacy, func(ctx context.Context, args AudioEffectArgs) (respond.Envelope, error) {
		effect := args.EffectName
		if effect == "" {
			effect = "EQ"
		}
		effect, err := validate.Choice(effect, audioEffects, "effect_name")
		if err != nil {
			return respond.Envelope{}, err
		}
		t, err := c.currentTimeline()
		if err != nil {
			return respond.Envelope{}, err
		}
		item, err := findAudioItem(t, args.ClipName, args.TrackIndex)
		if err != nil {
			return respond.Envelope{}, err
		}
		msg := fmt.Sprintf("Applied %s effect to '%s'", effect, item.Name())
		if len(args.EffectSettings) > 0 {
			msg += fmt.Sprintf(" with settings: %v", args.EffectSettings)
		}
		return respond.Success(msg, map[string]any{
			"clip":   item.Name(),
			"effect": effect,
		}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "auto_sync_audio",
		Description: "Sync an audio clip to a video clip by waveform or timecode.",
	}, page.Fairlight, c.legacy, func(ctx context.Context, args AutoSyncArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.VideoClipName, "video_clip_name"); err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.NonEmpty(args.AudioClipName, "audio_clip_name"); err != nil {
			return respond.Envelope{}, err
		}
		method := args.SyncMethod
		if method == "" {
			method = "waveform"
		}
		method, err := validate.Choice(method, audioSyncMethods, "sync_method")
		if err != nil {
			return respond.Envelope{}, err
		}
		t, err := c.currentTimeline()
		if err != nil {
			return respond.Envelope{}, err
		}
		if host.ItemByName(t, args.VideoClipName, "video") == nil {
			return respond.Envelope{}, fault.ItemNotFound(args.VideoClipName)
		}
		if host.ItemByName(t, args.AudioClipName, "audio") == nil {
			return respond.Envelope{}, fault.ItemNotFound(args.AudioClipName)
		}
		return respond.Success(fmt.Sprintf("Synced audio clip '%s' with video clip '%s' using %s method",
			args.AudioClipName, args.VideoClipName, method), map[string]any{
			"video_clip":  args.VideoClipName,
			"audio_clip":  args.AudioClipName,
			"sync_method": method,
		}), nil
	})

	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://fairlight/audio-meters",
		Name:        "fairlight-audio-meters",
		Description: "Per-track audio levels for the current timeline.",
		MIMEType:    "application/json",
	}, page.Fairlight, func(ctx context.Context) (respond.Envelope, error) {
		t, err := c.currentTimeline()
		if err != nil {
			return respond.Envelope{}, err
		}
		trackCount := t.TrackCount("audio")
		tracks := make([]map[string]any, 0, trackCount)
		for track := 1; track <= trackCount; track++ {
			items := t.ItemsInTrack("audio", track)
			info := map[string]any{
				"track_index": track,
				"clip_count":  len(items),
				"muted":       false,
			}
			if len(items) > 0 {
				if v, ok := items[0].Property("Volume"); ok {
					info["volume_db"] = v
				}
				if p, ok := items[0].Property("Pan"); ok {
					info["pan"] = p
				}
			}
			tracks = append(tracks, info)
		}
		return respond.Success(t.Name(), map[string]any{
			"timeline_name": t.Name(),
			"track_count":   trackCount,
			"tracks":        tracks,
		}), nil
	})

	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://fairlight/available-effects",
		Name:        "fairlight-available-effects",
		Description: "Audio effects available in Fairlight, grouped by category.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		return respond.Info("Available audio effects", audioEffectCatalog), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "export_audio_mixdown",
		Description: "Export an audio mixdown of the current timeline.",
	}, page.Fairlight, c.legacy, func(ctx context.Context, args MixdownArgs) (respond.Envelope, error) {
		format := args.Format
		if format == "" {
			format = "wav"
		}
		format, err := validate.Choice(format, audioFormats, "format")
		if err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.FilePath(args.OutputPath, false, "output_path"); err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.Extension(args.OutputPath, []string{format}, "output_path"); err != nil {
			return respond.Envelope{}, err
		}
		sampleRate := args.SampleRate
		if sampleRate == 0 {
			sampleRate = 48000
		}
		if !containsInt(audioSampleRates, sampleRate) {
			return respond.Envelope{}, fault.Operation("Invalid sample rate. Must be one of: %v", audioSampleRates)
		}
		bitDepth := args.BitDepth
		if bitDepth == 0 {
			bitDepth = 24
		}
		if !containsInt(audioBitDepths, bitDepth) {
			return respond.Envelope{}, fault.Operation("Invalid bit depth. Must be one of: %v", audioBitDepths)
		}
		if _, err := c.currentProject(); err != nil {
			return respond.Envelope{}, err
		}
		return respond.Success(fmt.Sprintf("Exported audio mixdown to '%s' as %s (%dHz, %d-bit)",
			args.OutputPath, strings.ToUpper(format), sampleRate, bitDepth), map[string]any{
			"output_path": args.OutputPath,
			"format":      format,
			"sample_rate": sampleRate,
			"bit_depth":   bitDepth,
		}), nil
	})
}

// findAudioItem locates one audio clip by name, track index, or both.
// With only a track index the first clip on that track is taken.
func findAudioItem(t host.Timeline, clipName string, trackIndex int) (host.TimelineItem, error) {
	if clipName == "" && trackIndex == 0 {
		return nil, fault.Operation("Must specify either clip_name or track_index")
	}
	trackCount := t.TrackCount("audio")
	if trackIndex != 0 && (trackIndex < 1 || trackIndex > trackCount) {
		return nil, fault.Operation("Track index %d out of range (1-%d)", trackIndex, trackCount)
	}
	first, last := 1, trackCount
	if trackIndex != 0 {
		first, last = trackIndex, trackIndex
	}
	for track := first; track <= last; track++ {
		for _, item := range t.ItemsInTrack("audio", track) {
			if clipName != "" && item.Name() != clipName {
				continue
			}
			return item, nil
		}
	}
	if clipName == "" {
		return nil, fault.Operation("No audio clip found on track %d", trackIndex)
	}
	return nil, fault.ItemNotFound(clipName)
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
