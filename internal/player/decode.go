package player

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
	extOGA  = ".oga"
)

// maxRemoteSize bounds how much of a remote source is buffered in memory.
const maxRemoteSize = 512 << 20

// memFile is an in-memory, seekable copy of a remote source.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

// openSource opens a source url for decoding. Local files are opened
// directly; http(s) sources are downloaded into memory because the decoders
// need to seek.
func openSource(ctx context.Context, client *http.Client, src string) (io.ReadSeekCloser, string, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Bare path (or a Windows drive letter).
		f, err := os.Open(src)
		if err != nil {
			return nil, "", err
		}
		return f, extOf(src), nil
	}

	switch u.Scheme {
	case "file":
		f, err := os.Open(u.Path)
		if err != nil {
			return nil, "", err
		}
		return f, extOf(u.Path), nil
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("fetching %s: status %d", src, resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
		if err != nil {
			return nil, "", err
		}
		ext := extOf(u.Path)
		if ext == "" {
			ext = extFromContentType(resp.Header.Get("Content-Type"))
		}
		return memFile{bytes.NewReader(data)}, ext, nil
	default:
		return nil, "", fmt.Errorf("%w: scheme %q", ErrUnsupportedFormat, u.Scheme)
	}
}

func extOf(p string) string {
	return strings.ToLower(filepath.Ext(p))
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "mpeg"):
		return extMP3
	case strings.Contains(ct, "flac"):
		return extFLAC
	case strings.Contains(ct, "wav"):
		return extWAV
	case strings.Contains(ct, "ogg"):
		return extOGG
	}
	return ""
}

// decode picks a beep decoder from the source extension.
func decode(r io.ReadSeekCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case extMP3:
		return mp3.Decode(r)
	case extFLAC:
		// Skip ID3v2 tag if present (some taggers add it to FLAC files)
		if err := skipID3v2(r); err != nil {
			return nil, beep.Format{}, err
		}
		return flac.Decode(r)
	case extWAV:
		return wav.Decode(r)
	case extOGG, extOGA:
		return vorbis.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the stream.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && n < 10 {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	if string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// syncsafe integer: 7 bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
