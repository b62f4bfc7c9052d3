// Command awaken turns a still picture into a short video from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"masterpiece/internal/bootstrap"
	"masterpiece/internal/domain"
	"masterpiece/internal/gate"
	"masterpiece/internal/infra"
	"masterpiece/internal/storage"
	"masterpiece/internal/studio"
	"masterpiece/pkg/zip"
)

type options struct {
	image   string
	prompt  string
	aspect  string
	outDir  string
	name    string
	locale  string
	connect bool
	bundle  bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.image, "image", "", "path to the picture to animate (required)")
	flag.StringVar(&opts.prompt, "prompt", domain.DefaultPrompt, "description of the motion")
	flag.StringVar(&opts.aspect, "aspect", "portrait", "portrait, landscape or auto")
	flag.StringVar(&opts.outDir, "out", ".", "directory for the finished video")
	flag.StringVar(&opts.name, "name", domain.DownloadFilename, "file name of the finished video")
	flag.StringVar(&opts.locale, "locale", localeFromEnv(), "language of progress messages")
	flag.BoolVar(&opts.connect, "connect", false, "ask for an API key when none is selected")
	flag.BoolVar(&opts.bundle, "bundle", false, "also write a zip with the video, the picture and the prompt")
	flag.Parse()

	if strings.TrimSpace(opts.image) == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLoggerTo(os.Stderr, cfg.AppEnv).With().Str("cmd", "awaken").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, &logger, opts); err != nil {
		fmt.Fprintln(os.Stderr, studio.Localize(opts.locale, err.Error()))
		if domain.KindOf(err).Recoverable() {
			fmt.Fprintln(os.Stderr, "Run again with -connect, or set VEO_API_KEY.")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *infra.Config, logger *infra.Logger, opts options) error {
	data, err := os.ReadFile(opts.image)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	img := domain.Image{Data: data, MIMEType: http.DetectContentType(data)}

	out, err := storage.NewFileStore(opts.outDir)
	if err != nil {
		return err
	}

	stack, err := bootstrap.Build(ctx, cfg, logger, bootstrap.Options{
		Prompter: gate.ReaderPrompter{In: os.Stdin, Out: os.Stderr},
		Source:   "cli",
	})
	if err != nil {
		return err
	}
	defer stack.Close()

	st := studio.New(studio.Options{Gate: stack.Gate, Generator: stack.Controller, Blobs: stack.Blobs, Logger: logger})
	defer st.Close()

	if !st.Mount(ctx) {
		if !opts.connect {
			return domain.NewError(domain.KindCredentialMissing, domain.MsgCredentialMissing, nil)
		}
		if err := st.ConnectKey(ctx); err != nil {
			return err
		}
	}
	if _, err := st.SelectImage(img); err != nil {
		return err
	}
	st.SetPrompt(opts.prompt)
	if err := st.Generate(opts.aspect); err != nil {
		return err
	}

	snap, err := waitForOutcome(ctx, st, opts.locale)
	if err != nil {
		return err
	}
	if snap.Error != nil {
		if !snap.APIKeyReady {
			return domain.NewError(domain.KindCredentialInvalid, *snap.Error, nil)
		}
		return errors.New(*snap.Error)
	}
	video, _, ok := st.OpenVideo(snap.VideoID)
	if !ok {
		return errors.New("video handle vanished before it was saved")
	}
	path, err := out.Write(ctx, opts.name, video)
	if err != nil {
		return err
	}
	fmt.Println(path)

	if opts.bundle {
		archive, err := zip.ArchiveAssets([]zip.Asset{
			{Filename: opts.name, Data: video},
			{Filename: "source" + imageExt(img.MIMEType), Data: img.Data},
			{Filename: "prompt.txt", Data: []byte(snap.Prompt + "\n")},
		})
		if err != nil {
			return err
		}
		zipPath, err := out.Write(ctx, strings.TrimSuffix(opts.name, filepath.Ext(opts.name))+".zip", archive)
		if err != nil {
			return err
		}
		fmt.Println(zipPath)
	}
	return nil
}

func imageExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".img"
}

func waitForOutcome(ctx context.Context, st *studio.Studio, locale string) (studio.Snapshot, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	last := ""
	for {
		snap := st.State(locale)
		if !snap.IsLoading {
			return snap, nil
		}
		if snap.ProgressMessage != last {
			last = snap.ProgressMessage
			fmt.Fprintln(os.Stderr, last)
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ticker.C:
		}
	}
}

// localeFromEnv reads LANG-style values such as "id_ID.UTF-8".
func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" && v != "C" && v != "POSIX" {
			v, _, _ = strings.Cut(v, ".")
			return strings.ReplaceAll(v, "_", "-")
		}
	}
	return "en"
}
