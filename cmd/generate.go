package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yuja201/S13P31B201-sub000/internal/config"
	"github.com/yuja201/S13P31B201-sub000/internal/generation"
	"github.com/yuja201/S13P31B201-sub000/internal/llm"
	"gopkg.in/yaml.v3"
)

var (
	requestFile string
	modeFlag    string
	workersFlag int
	jsonOutput  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate dummy rows for the tables of a request",
	Long: `
Reads a generation request (JSON or YAML) and generates every table in it.

Examples:
  dummygen generate -r request.json
  dummygen generate -r request.yaml --mode db
  dummygen generate -r request.json --workers 4 --json`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&requestFile, "request", "r", "", "generation request file (.json, .yaml)")
	generateCmd.Flags().StringVar(&modeFlag, "mode", "", "override the request mode (sql or db)")
	generateCmd.Flags().IntVar(&workersFlag, "workers", 0, "tables generated in parallel (default: generation.workers)")
	generateCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the aggregate result as JSON")
	generateCmd.MarkFlagRequired("request")
}

func readRequest(path string) (generation.GenerationRequest, error) {
	var req generation.GenerationRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read request: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return req, fmt.Errorf("failed to parse request %s: %w", path, err)
	}
	return req, nil
}

// newProvider routes "openai:*" and "ollama:*" model ids to their endpoints.
func newProvider(cfg *config.Config) llm.Provider {
	router := llm.NewRouter()
	router.Register("openai", llm.NewOpenAIClient(nil, cfg.Model.BaseURL, cfg.APIKey(), cfg.Model.Timeout))
	router.Register("ollama", llm.NewOpenAIClient(nil, cfg.Model.OllamaURL, "", cfg.Model.Timeout))
	return router
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	req, err := readRequest(requestFile)
	if err != nil {
		return err
	}
	if modeFlag != "" {
		req.Mode = generation.Mode(modeFlag)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	observer := generation.NewChannelObserver(256)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		renderEvents(observer.Events())
	}()

	coordinator := &generation.Coordinator{
		Config:   cfg,
		Provider: newProvider(cfg),
		Observer: observer,
		Logger:   cliLogger{},
		Workers:  workersFlag,
	}

	color.Cyan("🎲 Generating %d table(s)...", len(req.Tables))
	agg, err := coordinator.Run(ctx, req)
	observer.Close()
	wg.Wait()
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(agg)
	}
	printSummary(agg)
	if agg.FailCount > 0 {
		return fmt.Errorf("%d table(s) failed", agg.FailCount)
	}
	return nil
}

func renderEvents(events <-chan generation.Event) {
	for e := range events {
		switch e.Type {
		case generation.EventRowProgress:
			if e.Progress%25 == 0 {
				color.White("   %s %d%%", e.TableName, e.Progress)
			}
		case generation.EventTableComplete:
			color.Green("✅ %s", e.TableName)
		case generation.EventError:
			color.Red("❌ %s", e.Message)
		}
	}
}

func printSummary(agg *generation.AggregateResult) {
	fmt.Println()
	color.Cyan("📊 Summary")
	for _, r := range agg.Results {
		switch {
		case !r.Success:
			color.Red("   %-24s failed", r.TableName)
		case r.Inserted:
			color.Green("   %-24s %d rows inserted", r.TableName, r.Rows)
		default:
			color.Green("   %-24s %d rows → %s", r.TableName, r.Rows, r.OutputPath)
		}
	}
	fmt.Printf("\n   %d succeeded, %d failed\n", agg.SuccessCount, agg.FailCount)
	for _, e := range agg.Errors {
		color.Red("   %s", e)
	}
	if agg.PackagedArtifactPath != "" {
		fmt.Println()
		color.Green("📦 Archive: %s", agg.PackagedArtifactPath)
		color.White("   Run 'dummygen save %s <dest>' to copy it elsewhere", agg.PackagedArtifactPath)
	}
}

// cliLogger prints engine messages, warnings in yellow.
type cliLogger struct{}

func (cliLogger) Printf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	if strings.HasPrefix(msg, "warning: ") {
		color.Yellow("⚠️  %s", strings.TrimPrefix(msg, "warning: "))
		return
	}
	color.New(color.Faint).Println("   " + msg)
}
