package probe

import (
	"path"
	"strings"
)

// StreamKind classifies the kind of media a probed URL points at.
type StreamKind int

const (
	KindUnknown StreamKind = iota
	KindAudio
	KindVideo
	KindHLSPlaylist
	KindPLSPlaylist
	KindDASH
	KindICY
)

func (k StreamKind) String() string {
	switch k {
	case KindAudio:
		return "Audio stream"
	case KindVideo:
		return "Video stream"
	case KindHLSPlaylist:
		return "HLS playlist"
	case KindPLSPlaylist:
		return "PLS playlist"
	case KindDASH:
		return "DASH stream"
	case KindICY:
		return "ICY/Shoutcast stream"
	default:
		return "Unknown stream type"
	}
}

// Result is the verdict for a single probed URL. It is immutable once
// returned; every failure mode is expressed here rather than as an error.
type Result struct {
	Valid       bool
	Reason      string
	ContentType string // server-reported, lower-cased; empty if no response
	StatusCode  int    // last observed HTTP status; 0 if no response
	Kind        StreamKind
}

// streamContentTypes are MIME types accepted as evidence of a media stream.
// A Content-Type header matches when it contains any of these as a substring,
// so parameters like "; charset=..." don't defeat the check.
var streamContentTypes = []string{
	"audio/mpeg", "audio/mp3", "audio/aac", "audio/aacp",
	"audio/ogg", "audio/opus", "audio/flac", "audio/wav",
	"audio/x-wav", "audio/wave", "audio/vnd.wave",
	"audio/mp4", "audio/x-m4a", "audio/webm",
	"video/mp4", "video/webm", "video/ogg", "video/x-flv",
	"video/mp2t", "video/3gpp", "video/quicktime",
	"application/vnd.apple.mpegurl", "application/x-mpegurl",
	"application/dash+xml", "application/octet-stream",
}

func isStreamContentType(contentType string) bool {
	for _, t := range streamContentTypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

// contentTypeKind maps a Content-Type header value onto a StreamKind.
func contentTypeKind(contentType string) StreamKind {
	switch {
	case strings.Contains(contentType, "audio"):
		return KindAudio
	case strings.Contains(contentType, "video"):
		return KindVideo
	case strings.Contains(contentType, "mpegurl"), strings.Contains(contentType, "m3u"):
		return KindHLSPlaylist
	case strings.Contains(contentType, "dash"):
		return KindDASH
	default:
		return KindUnknown
	}
}

// extensionKind guesses a StreamKind from the URL path's file extension.
// The guess is advisory: it never decides validity on its own.
func extensionKind(urlPath string) StreamKind {
	switch strings.ToLower(path.Ext(urlPath)) {
	case ".m3u", ".m3u8":
		return KindHLSPlaylist
	case ".pls":
		return KindPLSPlaylist
	case ".mp3", ".aac", ".ogg", ".flac", ".wav", ".m4a":
		return KindAudio
	case ".mp4", ".webm", ".flv", ".ts":
		return KindVideo
	default:
		return KindUnknown
	}
}
