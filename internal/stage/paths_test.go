package stage

import (
	"path/filepath"
	"testing"

	"lyricreel/internal/catalog"
)

func TestPathsFor(t *testing.T) {
	paths := PathsFor("/work", "/out", catalog.Track{Position: 7, Title: "Hey Jude"})
	want := ArtifactPaths{
		Lyrics: filepath.Join("/work", "07_hey_jude.lyrics.txt"),
		Audio:  filepath.Join("/work", "07_hey_jude.flac"),
		Video:  filepath.Join("/out", "07_hey_jude_lofi_music_video.mp4"),
	}
	if paths != want {
		t.Fatalf("PathsFor = %+v, want %+v", paths, want)
	}
}

func TestPathsForUnsafeTitle(t *testing.T) {
	paths := PathsFor("/work", "/out", catalog.Track{Position: 1, Title: "AC/DC: Live?"})
	if got := filepath.Base(paths.Video); got != "01_acdc_live_lofi_music_video.mp4" {
		t.Fatalf("unexpected video name %q", got)
	}
	if filepath.Dir(paths.Video) != "/out" {
		t.Fatalf("title must not escape output dir: %q", paths.Video)
	}
}

func TestPathsForRepeatedTitle(t *testing.T) {
	first := PathsFor("/work", "/out", catalog.Track{Position: 1, Title: "Intro"})
	again := PathsFor("/work", "/out", catalog.Track{Position: 3, Title: "Intro"})
	if first.Video == again.Video || first.Audio == again.Audio || first.Lyrics == again.Lyrics {
		t.Fatalf("repeated title shares artifacts: %+v vs %+v", first, again)
	}
}

func TestHealthConstructors(t *testing.T) {
	if h := Healthy("lyrics"); !h.Ready || h.Name != "lyrics" {
		t.Fatalf("unexpected healthy record %+v", h)
	}
	if h := Unhealthy("video", "missing binary"); h.Ready || h.Detail != "missing binary" {
		t.Fatalf("unexpected unhealthy record %+v", h)
	}
}
