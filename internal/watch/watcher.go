// Package watch transcribes audio files dropped into an intake directory,
// writing the rendered transcript next to each recording (or into a
// configured output directory).
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/clinscribe/clinscribe/internal/report"
	"github.com/clinscribe/clinscribe/internal/transcriber"
)

// Runner executes one transcription request end to end.
type Runner interface {
	Run(ctx context.Context, req *transcriber.Request) (*report.Report, error)
}

// Options controls one watcher instance.
type Options struct {
	Dir              string
	OutputDir        string // empty = next to the audio file
	Extensions       []string
	ExpectedSpeakers int
	Diarize          bool
	Language         string
	Prompt           string
}

// Watcher picks up new audio files and transcribes them sequentially.
type Watcher struct {
	runner Runner
	opts   Options
	exts   map[string]bool
}

func New(runner Runner, opts Options) *Watcher {
	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Watcher{runner: runner, opts: opts, exts: exts}
}

// Run blocks until ctx is cancelled, transcribing each new audio file as it
// appears in the watched directory.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.Dir, err)
	}

	log.Printf("watch: watching %s for audio files", w.opts.Dir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !w.exts[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}

			if err := w.process(ctx, event.Name); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("watch: %s: %v", event.Name, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) error {
	if err := waitForSettle(ctx, path); err != nil {
		return err
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}

	log.Printf("watch: transcribing %s (%d bytes)", path, len(audio))

	rep, err := w.runner.Run(ctx, &transcriber.Request{
		Audio:            audio,
		MimeType:         transcriber.MimeForPath(path),
		Prompt:           w.opts.Prompt,
		Language:         w.opts.Language,
		ExpectedSpeakers: w.opts.ExpectedSpeakers,
		Diarize:          w.opts.Diarize,
	})
	if err != nil {
		return err
	}

	outPath := w.outputPath(path)
	if err := os.WriteFile(outPath, []byte(rep.Text), 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	log.Printf("watch: wrote %s (backend=%s fallback=%v)", outPath, rep.Provider, rep.Fallback)
	return nil
}

// outputPath derives a collision-safe transcript path for an audio file.
func (w *Watcher) outputPath(audioPath string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	dir := w.opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(audioPath)
	}

	outPath := filepath.Join(dir, base+".transcript.txt")
	for n := 1; ; n++ {
		if _, err := os.Stat(outPath); os.IsNotExist(err) {
			return outPath
		}
		outPath = filepath.Join(dir, fmt.Sprintf("%s.transcript.%d.txt", base, n))
	}
}

// waitForSettle waits until the file size is stable across two checks, so a
// recording still being copied in is not read half-written. A stable empty
// file settles too; request validation rejects it downstream.
func waitForSettle(ctx context.Context, path string) error {
	const checkInterval = 200 * time.Millisecond

	lastSize := int64(-1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(checkInterval):
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat audio: %w", err)
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()
	}
}
