package ffprobe

import "testing"

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", CodecName: "h264"},
			{CodecType: "audio", CodecName: "aac", SampleRate: "44100", Channels: 2},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
		},
	}
	if !result.HasVideo() {
		t.Error("expected video stream")
	}
	if !result.HasAudio() {
		t.Error("expected audio stream")
	}
	if result.AudioSampleRate() != 44100 {
		t.Errorf("sample rate = %d, want 44100", result.AudioSampleRate())
	}
	if result.DurationSeconds() != 123.45 {
		t.Errorf("duration = %v, want 123.45", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Errorf("size = %d, want 1000", result.SizeBytes())
	}
}

func TestResultFallsBackToStreamDuration(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "88.2"},
		},
	}
	if result.DurationSeconds() != 88.2 {
		t.Errorf("duration = %v, want stream fallback 88.2", result.DurationSeconds())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", SampleRate: "not-a-rate"},
		},
		Format: Format{
			Duration: "bad",
			Size:     "-1",
		},
	}
	if result.DurationSeconds() != 0 {
		t.Errorf("duration = %v, want 0", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Errorf("size = %d, want 0", result.SizeBytes())
	}
	if result.AudioSampleRate() != 0 {
		t.Errorf("sample rate = %d, want 0", result.AudioSampleRate())
	}
}

func TestResultNoStreams(t *testing.T) {
	var result Result
	if result.HasAudio() || result.HasVideo() {
		t.Error("empty result should report no streams")
	}
	if result.DurationSeconds() != 0 {
		t.Errorf("duration = %v, want 0", result.DurationSeconds())
	}
}
