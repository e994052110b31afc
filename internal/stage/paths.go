package stage

import (
	"fmt"
	"path/filepath"

	"lyricreel/internal/catalog"
	"lyricreel/internal/textutil"
)

// ArtifactPaths are the well-known files the stages hand to each other.
type ArtifactPaths struct {
	Lyrics string
	Audio  string
	Video  string
}

// PathsFor derives a track's artifact locations from its position and title.
// Every stage and the runner's existence check resolve files through this
// function. The position prefix keeps two tracks with the same title (a
// second "Intro") from sharing files.
func PathsFor(workDir, outputDir string, track catalog.Track) ArtifactPaths {
	name := fmt.Sprintf("%02d_%s", track.Position, textutil.ArtifactName(track.Title))
	return ArtifactPaths{
		Lyrics: filepath.Join(workDir, name+".lyrics.txt"),
		Audio:  filepath.Join(workDir, name+".flac"),
		Video:  filepath.Join(outputDir, name+"_lofi_music_video.mp4"),
	}
}
