package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"videogen/api"
	"videogen/cohere"
	"videogen/config"
	"videogen/elevenlabs"
	"videogen/gemini"
	"videogen/pipeline"
	"videogen/research"
	"videogen/storage"
	"videogen/tui"
	"videogen/types"
	"videogen/upload"
	"videogen/usage"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	var (
		prompt     = flag.String("prompt", "", "topic or idea to narrate")
		duration   = flag.Int("duration", 3, "video length in minutes (3, 5 or 10)")
		voiceID    = flag.String("voice", "", "ElevenLabs voice ID (default voice if empty)")
		textModel  = flag.String("text-model", "", "script model ID (service default if empty)")
		imageModel = flag.String("image-model", "", "image model ID (service default if empty)")
		resName    = flag.String("resolution", "", "output resolution: 1080p, 720p, portrait or square")
		noZoom     = flag.Bool("no-zoom", false, "disable the Ken Burns zoom effect")
		feed       = flag.String("feed", "", "generate from the latest item of an RSS feed (preset name or URL)")
		listModels = flag.Bool("list-models", false, "list available models and voices, then exit")
		serve      = flag.Bool("serve", false, "run the HTTP generation server")
		runTUI     = flag.Bool("tui", false, "attach the terminal UI to a running server")
		serverURL  = flag.String("server", "http://localhost:8080", "server URL for -tui")
		publishS3  = flag.Bool("s3", false, "publish the finished video to S3")
		youtube    = flag.Bool("youtube", false, "upload the finished video to YouTube")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *runTUI {
		runTerminalUI(*serverURL, *prompt, *duration)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	geminiClient, err := gemini.NewClient(cfg.GeminiAPIKey)
	if err != nil {
		fatal(err)
	}
	speechClient, err := elevenlabs.NewClient(cfg.ElevenLabsAPIKey, usage.Default())
	if err != nil {
		fatal(err)
	}

	if *listModels {
		listAvailableModels(geminiClient, speechClient)
		return
	}

	scripts, err := scriptProvider(cfg, geminiClient)
	if err != nil {
		fatal(err)
	}
	images := gemini.NewImageService(geminiClient, usage.Default())

	if *serve {
		runServer(cfg, scripts, speechClient, images)
		return
	}

	req := pipeline.Request{
		Prompt:          strings.TrimSpace(*prompt),
		VoiceID:         *voiceID,
		TextModelID:     *textModel,
		ImageModelID:    *imageModel,
		DurationMinutes: *duration,
		DisableZoom:     *noZoom,
	}
	if *resName != "" {
		res, err := types.ParseResolution(*resName)
		if err != nil {
			fatal(err)
		}
		req.Resolution = res
	}

	if *feed != "" {
		topic, err := research.LatestTopic(research.ResolveFeedURL(*feed))
		if err != nil {
			fatal(fmt.Errorf("fetch feed topic: %w", err))
		}
		fmt.Printf("Generating from feed topic: %s\n", topic.Title)
		req.Prompt = research.BuildPrompt(topic)
	}

	if req.Prompt == "" {
		fmt.Fprintln(os.Stderr, "Usage: videogen -prompt \"your topic\" [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	reporter := pipeline.NewReporter(os.Stdout)
	gen := pipeline.New(scripts, speechClient, images, pipeline.FFmpegCompiler{},
		usage.Default(), reporter, pipeline.WithOutputDir(cfg.OutputDir))

	result, err := gen.Generate(context.Background(), req)
	if err != nil {
		fatal(err)
	}

	publish(cfg, result, *publishS3, *youtube)
}

// scriptProvider picks the text backend from configuration.
func scriptProvider(cfg *config.Config, geminiClient *gemini.Client) (pipeline.ScriptGenerator, error) {
	if cfg.ScriptProvider == config.ProviderCohere {
		return cohere.NewScriptService(cfg.CohereAPIKey, usage.Default())
	}
	return gemini.NewScriptService(geminiClient, usage.Default()), nil
}

func listAvailableModels(geminiClient *gemini.Client, speechClient *elevenlabs.Client) {
	ctx := context.Background()

	for _, kind := range []types.ModelKind{types.ModelKindText, types.ModelKindImage} {
		models, err := geminiClient.ListModels(ctx, kind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not list %s models: %v\n", kind, err)
			continue
		}
		fmt.Printf("%s models:\n", kind)
		for _, m := range models {
			fmt.Printf("  %-42s %s\n", m.ID, m.DisplayName)
		}
		fmt.Println()
	}

	voices, err := speechClient.ListVoices(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not list voices: %v\n", err)
		return
	}
	fmt.Println("voices:")
	for _, v := range voices {
		fmt.Printf("  %-42s %s\n", v.ID, v.DisplayName)
	}
}

func runServer(cfg *config.Config, scripts pipeline.ScriptGenerator,
	speech *elevenlabs.Client, images *gemini.ImageService) {

	server, err := api.NewServer(func(reporter *pipeline.Reporter) api.Runner {
		return pipeline.New(scripts, speech, images, pipeline.FFmpegCompiler{},
			usage.Default(), reporter, pipeline.WithOutputDir(cfg.OutputDir))
	})
	if err != nil {
		fatal(err)
	}
	defer server.Close()

	if cfg.FeedURL != "" {
		schedule := cfg.FeedSchedule
		if schedule == "" {
			schedule = config.DefaultFeedSchedule
		}
		sched, err := api.NewScheduler(server, schedule, research.ResolveFeedURL(cfg.FeedURL), 3)
		if err != nil {
			fatal(err)
		}
		sched.Start()
		defer sched.Stop()
	}

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting generation server")
	if err := http.ListenAndServe(cfg.ListenAddr, server.Router()); err != nil {
		fatal(err)
	}
}

func runTerminalUI(serverURL, prompt string, durationMinutes int) {
	p := tea.NewProgram(tui.NewModel(serverURL, prompt, durationMinutes))
	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

// publish pushes the finished video to the configured optional targets.
func publish(cfg *config.Config, result types.Video, toS3, toYouTube bool) {
	ctx := context.Background()

	if toS3 {
		if cfg.S3Bucket == "" {
			fmt.Fprintln(os.Stderr, "S3_BUCKET is not set; skipping S3 publish")
		} else {
			pub, err := storage.NewPublisher(ctx, storage.Config{Bucket: cfg.S3Bucket, Region: cfg.S3Region})
			if err != nil {
				fmt.Fprintf(os.Stderr, "S3 publish failed: %v\n", err)
			} else if uri, err := pub.PublishVideo(ctx, result.FilePath); err != nil {
				fmt.Fprintf(os.Stderr, "S3 publish failed: %v\n", err)
			} else {
				fmt.Printf("Published to %s\n", uri)
			}
		}
	}

	if toYouTube {
		if cfg.YouTubeServiceAccount == "" {
			fmt.Fprintln(os.Stderr, "YOUTUBE_SERVICE_ACCOUNT_FILE is not set; skipping upload")
			return
		}
		uploader, err := upload.NewUploader(ctx, cfg.YouTubeServiceAccount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "YouTube upload failed: %v\n", err)
			return
		}
		id, err := uploader.UploadVideo(result.FilePath, upload.Metadata{
			Title:       "Generated narration",
			Description: "Narrated video generated from a text prompt.",
			Tags:        []string{"generated", "narration"},
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "YouTube upload failed: %v\n", err)
			return
		}
		fmt.Printf("Uploaded to YouTube: video ID %s\n", id)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
